// runtime/mapping.go
package runtime

import "github.com/kryonlabs/kryon-runtime/krb"

// ElementType is the resolved, human-readable name of an element's
// TypeHex, the way the teacher's krb.ElemType* constants named a
// KRB v0.4 element's Header.Type byte.
type ElementType string

const (
	ElemApp       ElementType = "App"
	ElemContainer ElementType = "Container"
	ElemRow       ElementType = "Row"
	ElemColumn    ElementType = "Column"
	ElemText      ElementType = "Text"
	ElemButton    ElementType = "Button"
	ElemImage     ElementType = "Image"
	ElemInput     ElementType = "Input"
	ElemPopup     ElementType = "Popup"
	ElemFor       ElementType = "@for"
	ElemIf        ElementType = "@if"
	ElemUnknown   ElementType = "Unknown"
)

// Element-type hex table. 0x8200/0x8201 are called out explicitly by
// spec.md §4.5/§4.9 ("identified by their type hex 0x8200"); the rest
// follow the same high-bit-reserved-range convention the compiler would
// use to keep directive types out of the ordinary widget range.
const (
	TypeHexApp       uint16 = 0x0001
	TypeHexContainer uint16 = 0x0002
	TypeHexRow       uint16 = 0x0003
	TypeHexColumn    uint16 = 0x0004
	TypeHexText      uint16 = 0x0010
	TypeHexButton    uint16 = 0x0011
	TypeHexImage     uint16 = 0x0012
	TypeHexInput     uint16 = 0x0013
	TypeHexPopup     uint16 = 0x0014
	TypeHexFor       uint16 = 0x8200
	TypeHexIf        uint16 = 0x8201
)

var elementTypeNames = map[uint16]ElementType{
	TypeHexApp:       ElemApp,
	TypeHexContainer: ElemContainer,
	TypeHexRow:       ElemRow,
	TypeHexColumn:    ElemColumn,
	TypeHexText:      ElemText,
	TypeHexButton:    ElemButton,
	TypeHexImage:     ElemImage,
	TypeHexInput:     ElemInput,
	TypeHexPopup:     ElemPopup,
	TypeHexFor:       ElemFor,
	TypeHexIf:        ElemIf,
}

// CanonicalElementType resolves a wire type hex to its name, falling
// back to ElemUnknown rather than failing the load. A custom component
// (e.g. "TabBar") still resolves to its ordinary element type here —
// Runtime.CustomComponents (custom.go) looks it up separately, by the
// component instance's definition name, not by TypeHex.
func CanonicalElementType(hex uint16) ElementType {
	if name, ok := elementTypeNames[hex]; ok {
		return name
	}
	return ElemUnknown
}

// IsDirective reports whether a type hex identifies a template element
// that the emitter must skip during render traversal (§4.9/§4.5).
func IsDirective(hex uint16) bool {
	return hex == TypeHexFor || hex == TypeHexIf
}

// propertyNames maps a property's wire NameHex to its canonical name,
// the aliasing table §4.2 resolves every accessor through. Aliases
// (e.g. "bg"/"background") resolve to the same canonical name a
// distinct hex would only exist if the compiler emitted one; since no
// compiler is in scope here, aliases are handled purely in Go via
// propertyAliases below, keeping this table one-entry-per-hex.
var propertyNames = map[uint16]string{
	0x0001: "bg_color",
	0x0002: "fg_color",
	0x0003: "border_color",
	0x0004: "border_width",
	0x0005: "padding",
	0x0006: "gap",
	0x0007: "text_alignment",
	0x0008: "visible",
	0x0009: "text",
	0x000A: "image_source",
	0x000B: "width",
	0x000C: "height",
	0x000D: "onClick",
	0x000E: "onChange",
	0x000F: "variable", // @for/@if: iteration variable name
	0x0010: "array",    // @for: array source
	0x0011: "condition", // @if: boolean expression
	0x0012: "window_width",
	0x0013: "window_height",
	0x0014: "window_title",
	0x0015: "resizable",
	0x0016: "scale_factor",
	0x0017: "style_name",
	0x0018: "position",    // TabBar: pinned edge
	0x0019: "orientation", // TabBar: row/column
}

// propertyAliases maps an accepted alternate spelling to the canonical
// name it reads through §4.2's "resolve property-name alias to
// canonical name" step.
var propertyAliases = map[string]string{
	"bg":         "bg_color",
	"background": "bg_color",
	"color":      "fg_color",
	"fg":         "fg_color",
	"border":     "border_color",
	"align":      "text_alignment",
	"src":        "image_source",
	"value":      "text",
}

// CanonicalPropertyName resolves a wire NameHex to its canonical string
// name.
func CanonicalPropertyName(nameHex uint16) string {
	if n, ok := propertyNames[nameHex]; ok {
		return n
	}
	return ""
}

// ResolveAlias resolves an accessor-supplied name (possibly an alias)
// to its canonical form. Names that are already canonical, or unknown
// entirely, pass through unchanged.
func ResolveAlias(name string) string {
	if canon, ok := propertyAliases[name]; ok {
		return canon
	}
	return name
}

// ValueTag re-exports krb.ValueTag so runtime callers needn't import
// krb just for the tag constants.
type ValueTag = krb.ValueTag

const (
	TagString    = krb.TagString
	TagInteger   = krb.TagInteger
	TagFloat     = krb.TagFloat
	TagBoolean   = krb.TagBoolean
	TagColor     = krb.TagColor
	TagFunction  = krb.TagFunction
	TagReference = krb.TagReference
	TagTemplate  = krb.TagTemplate
	TagArray     = krb.TagArray
	TagASTExpr   = krb.TagASTExpr
)
