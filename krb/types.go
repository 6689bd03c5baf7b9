// krb/types.go

// Package krb parses the compiled binary container consumed by the Kryon
// runtime: header, string table, variables, the element tree, script
// functions, and component definitions. All multi-byte scalars on the
// wire are big-endian.
package krb

// Magic markers. Section magics are matched against the four ASCII bytes
// spelled out in the format, not a numeric constant, since a record's
// magic doubles as a visual sanity check when staring at a hex dump.
var (
	MagicNumber  = [4]byte{'K', 'R', 'Y', 'N'}
	MagicVars    = [4]byte{'V', 'A', 'R', 'S'}
	MagicFunc    = [4]byte{'F', 'U', 'N', 'C'}
	MagicComp    = [4]byte{'C', 'O', 'M', 'P'}
)

// Version this reader was built against. A file whose major differs is
// rejected; minor drift is tolerated and logged, patch drift is accepted
// without a log line.
const (
	SpecVersionMajor = 0
	SpecVersionMinor = 1
	SpecVersionPatch = 0
)

const (
	FlagHasComponentDefs uint16 = 1 << 0
	FlagHasResources     uint16 = 1 << 1
	FlagCompressed       uint16 = 1 << 2
)

// HeaderSize is the fixed byte size of the KRYN header, laid out as:
//
//	magic(4) version(2x3) flags(2)
//	counts: styles(4) themes(4) widgetDefs(4) elements(4) properties(4)
//	size(4) dataChecksum(4) headerChecksum(4)
//	compression(1) uncompressedSize(4)
//	offsets: styles(4) themes(4) widgetDefs(4) widgetInstances(4) scripts(4) resources(4)
//	reserved(19)
//
// 4+2+2+2+2 + 4*5 + 4+4+4 + 1+4 + 4*6 + 19 = 92 bytes total.
const HeaderSize = 92

const ReservedSize = 19

// Header is the fixed-size KRYN container header.
type Header struct {
	Magic   [4]byte
	VerMaj  uint16
	VerMin  uint16
	VerPat  uint16
	Flags   uint16

	StyleCount      uint32
	ThemeCount      uint32
	WidgetDefCount  uint32
	ElementCount    uint32
	PropertyCount   uint32

	TotalSize      uint32
	DataChecksum   uint32
	HeaderChecksum uint32

	Compression      uint8
	UncompressedSize uint32

	StyleOffset           uint32
	ThemeOffset           uint32
	WidgetDefOffset       uint32
	WidgetInstanceOffset  uint32
	ScriptOffset          uint32
	ResourceOffset        uint32

	Reserved [ReservedSize]byte
}

// Neither the string table nor the Variables section has a header offset
// field: the format places both at fixed sequential positions — the
// string table immediately after the header, the Variables section
// immediately after the string table — read in that order before any of
// the six offset-addressed sections, which may appear in any order
// relative to each other.

// ValueTag identifies a Property's runtime variant. The reader takes a
// property's tag from the tag byte stored on the wire after its name
// hex; it does not derive the tag from the property name. Tags never
// mutate except when the directive expander resolves a REFERENCE/TEMPLATE
// into a fresh STRING clone.
type ValueTag uint8

const (
	TagString    ValueTag = 0x01
	TagInteger   ValueTag = 0x02
	TagFloat     ValueTag = 0x03
	TagBoolean   ValueTag = 0x04
	TagColor     ValueTag = 0x05
	TagFunction  ValueTag = 0x06
	TagReference ValueTag = 0x07
	TagTemplate  ValueTag = 0x08
	TagArray     ValueTag = 0x09
	TagASTExpr   ValueTag = 0x0A
)

// TemplateSegmentTag distinguishes a TEMPLATE property's segments.
type TemplateSegmentTag uint8

const (
	SegmentLiteral  TemplateSegmentTag = 0x00
	SegmentVariable TemplateSegmentTag = 0x01
)

// TemplateSegment is one literal-or-variable piece of a TEMPLATE property.
type TemplateSegment struct {
	Tag  TemplateSegmentTag
	Text string // literal text, or the variable name to resolve
}

// PropertyRecord is a single on-the-wire property: a 16-bit name hex, a
// one-byte value tag, and a payload whose shape is dictated by that tag.
// The property-name mapping is not consulted when reading it.
type PropertyRecord struct {
	NameHex uint16
	Tag     ValueTag

	Str       string
	Int       int64
	Float     float64
	Bool      bool
	Color     [4]byte // RGBA
	Function  string
	Reference string
	Segments  []TemplateSegment
	Array     []string
	ASTSource string // opaque expression text, evaluated at read time
}

// HandlerRecord is an explicit event-handler registration carried
// alongside (not instead of) FUNCTION-typed onX properties.
type HandlerRecord struct {
	EventType uint8
	Function  string
}

// ElementRecord is one widget-instance as read from the wire: instance
// id, type hex, parent id, style ref, then properties/handlers/children.
type ElementRecord struct {
	InstanceID uint32
	TypeHex    uint16
	ParentID   uint32
	StyleRef   uint32

	Properties []PropertyRecord
	Handlers   []HandlerRecord
	Children   []*ElementRecord
}

// ElementHeaderSize is the fixed portion of an element record before its
// properties/handlers/children: instance-id(4) type-id(2) parent-id(4)
// style-ref(4) property-count(2) child-count(2) handler-count(2) flags(4).
const ElementHeaderSize = 24

// VariableRecord is one entry of the Variables section: a name, a
// declared type, a value tag (expected to echo the declared type; a
// mismatch is logged and the declared type wins), and a payload.
type VariableRecord struct {
	Name  string
	Type  ValueTag
	Tag   ValueTag
	Value string // canonical UTF-8 form, ready for the Variable Registry
}

// ScriptRecord is one per-function entry of the Scripts section.
type ScriptRecord struct {
	Language string
	Name     string
	Params   []string
	Code     []byte // hex-decoded code-ref string for "lua"; raw code-ref bytes otherwise
}

// ComponentStateVar is one (name, type, default) state-variable entry of
// a Component Definition.
type ComponentStateVar struct {
	Name    string
	Type    ValueTag
	Default string
}

// ComponentParam is one (name, default) parameter entry.
type ComponentParam struct {
	Name    string
	Default string
}

// ComponentRecord is one Component Definition.
type ComponentRecord struct {
	Name      string
	Params    []ComponentParam
	StateVars []ComponentStateVar
	Template  *ElementRecord // nil if the component has no UI template
}

// StyleRecord is a reusable property bag, referenced by element StyleRef.
// Styles are not named by spec.md's core model but are carried forward
// per SPEC_FULL.md's style-resolution fallback chain, grounded in the
// teacher's styling_resolver.go.
type StyleRecord struct {
	ID         uint32
	Name       string
	Properties []PropertyRecord
}

// Document holds an entire parsed KRYN file.
type Document struct {
	Header    Header
	Strings   []string
	Variables []VariableRecord
	Scripts   []ScriptRecord
	Styles    []StyleRecord
	Themes    [][]byte // raw, unparsed: see reader.go
	Roots     []*ElementRecord
	Components []ComponentRecord
}
