// runtime/property.go
package runtime

import (
	"strconv"
	"strings"

	"github.com/kryonlabs/kryon-runtime/krb"
)

// Property is the runtime's live property value, the in-memory
// counterpart of krb.PropertyRecord (§3's tagged-union Property). The
// loader produces these directly from the wire record; the directive
// expander clones and rewrites them in place (§4.5: REFERENCE/TEMPLATE
// collapse to a fresh STRING on substitution).
type Property struct {
	NameHex uint16
	Tag     ValueTag

	Str       string
	Int       int64
	Float     float64
	Bool      bool
	Color     [4]byte
	Function  string
	Reference string
	Segments  []krb.TemplateSegment
	Array     []string
	ASTSource string
}

func propertyFromRecord(r krb.PropertyRecord) Property {
	return Property{
		NameHex: r.NameHex, Tag: r.Tag,
		Str: r.Str, Int: r.Int, Float: r.Float, Bool: r.Bool, Color: r.Color,
		Function: r.Function, Reference: r.Reference, Segments: r.Segments,
		Array: r.Array, ASTSource: r.ASTSource,
	}
}

// Name resolves this property's canonical name through the mapping
// table (§4.2 step 1).
func (p Property) Name() string { return CanonicalPropertyName(p.NameHex) }

// AsString converts a non-bound literal to a string with host numeric
// semantics (§4.2 step 3). Bound variants (REFERENCE/TEMPLATE/
// AST_EXPRESSION) are not resolved here — use (*Element).String, which
// threads the scope walk through binding.go.
func (p Property) AsString(def string) (string, bool) {
	switch p.Tag {
	case TagString:
		return p.Str, true
	case TagInteger:
		return strconv.FormatInt(p.Int, 10), true
	case TagFloat:
		return strconv.FormatFloat(p.Float, 'g', -1, 64), true
	case TagBoolean:
		if p.Bool {
			return "true", true
		}
		return "false", true
	default:
		return def, false
	}
}

// AsInt converts numeric ↔ numeric, and parses decimal or 0x-prefixed
// hex strings, per §4.2 step 3.
func (p Property) AsInt(def int64) (int64, bool) {
	switch p.Tag {
	case TagInteger:
		return p.Int, true
	case TagFloat:
		return int64(p.Float), true
	case TagString:
		s := strings.TrimSpace(p.Str)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			if v, err := strconv.ParseInt(s[2:], 16, 64); err == nil {
				return v, true
			}
			return def, false
		}
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, true
		}
		return def, false
	case TagBoolean:
		if p.Bool {
			return 1, true
		}
		return 0, true
	default:
		return def, false
	}
}

// AsFloat mirrors AsInt for floating-point reads.
func (p Property) AsFloat(def float64) (float64, bool) {
	switch p.Tag {
	case TagFloat:
		return p.Float, true
	case TagInteger:
		return float64(p.Int), true
	case TagString:
		s := strings.TrimSpace(p.Str)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			if v, err := strconv.ParseInt(s[2:], 16, 64); err == nil {
				return float64(v), true
			}
			return def, false
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, true
		}
		return def, false
	case TagBoolean:
		if p.Bool {
			return 1, true
		}
		return 0, true
	default:
		return def, false
	}
}

// AsBool coerces nonzero numbers and "true"/"1"/"yes" strings to true,
// per §4.2 step 3.
func (p Property) AsBool(def bool) (bool, bool) {
	switch p.Tag {
	case TagBoolean:
		return p.Bool, true
	case TagInteger:
		return p.Int != 0, true
	case TagFloat:
		return p.Float != 0, true
	case TagString:
		s := strings.ToLower(strings.TrimSpace(p.Str))
		switch s {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no", "":
			return false, true
		default:
			return def, false
		}
	default:
		return def, false
	}
}

// AsColor parses #RRGGBB[AA], 0x-prefixed hex, or a small named-color
// set, per §4.2 step 3.
func (p Property) AsColor(def [4]byte) ([4]byte, bool) {
	switch p.Tag {
	case TagColor:
		return p.Color, true
	case TagString:
		if c, ok := ParseColor(p.Str); ok {
			return c, true
		}
		return def, false
	default:
		return def, false
	}
}

// AsArray returns an ARRAY property's string items.
func (p Property) AsArray() ([]string, bool) {
	if p.Tag == TagArray {
		return p.Array, true
	}
	return nil, false
}

var namedColors = map[string][4]byte{
	"red":   {0xFF, 0x00, 0x00, 0xFF},
	"green": {0x00, 0x80, 0x00, 0xFF},
	"blue":  {0x00, 0x00, 0xFF, 0xFF},
	"yellow": {0xFF, 0xFF, 0x00, 0xFF},
	"black": {0x00, 0x00, 0x00, 0xFF},
	"white": {0xFF, 0xFF, 0xFF, 0xFF},
	"gray":  {0x80, 0x80, 0x80, 0xFF},
	"grey":  {0x80, 0x80, 0x80, 0xFF},
	"transparent": {0x00, 0x00, 0x00, 0x00},
}

// ParseColor implements §4.2 step 3's color grammar: "#RRGGBB[AA]",
// "0x...", or an enumerated named-color set.
func ParseColor(s string) ([4]byte, bool) {
	var out [4]byte
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, true
	}
	hex := ""
	switch {
	case strings.HasPrefix(s, "#"):
		hex = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		hex = s[2:]
	default:
		return out, false
	}
	switch len(hex) {
	case 6:
		hex += "FF"
	case 8:
		// already has alpha
	default:
		return out, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return out, false
	}
	out[0] = byte(v >> 24)
	out[1] = byte(v >> 16)
	out[2] = byte(v >> 8)
	out[3] = byte(v)
	return out, true
}
