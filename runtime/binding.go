// runtime/binding.go
package runtime

// Resolve implements §4.2 steps 4–6: REFERENCE looks up binding_path via
// the component-scope walk; TEMPLATE concatenates segments, resolving
// each VARIABLE segment the same way; AST_EXPRESSION evaluates against
// the variable registry. Non-bound tags fall through to the plain
// literal conversion in property.go. def is returned verbatim when a
// REFERENCE target is unresolved (§4.2: "return literal fallback if
// unresolved").
func Resolve(rt *Runtime, owner *Element, p Property, def string) string {
	switch p.Tag {
	case TagReference:
		if v, ok := owner.walkScope(rt, p.Reference); ok {
			return v
		}
		return def
	case TagTemplate:
		out := make([]byte, 0, 32)
		for _, seg := range p.Segments {
			switch seg.Tag {
			case 0x00: // SegmentLiteral
				out = append(out, seg.Text...)
			case 0x01: // SegmentVariable
				if v, ok := owner.walkScope(rt, seg.Text); ok {
					out = append(out, v...)
				}
			}
		}
		return string(out)
	case TagASTExpr:
		v, err := evalExpr(p.ASTSource, func(name string) (string, bool) {
			return owner.walkScope(rt, name)
		})
		if err != nil {
			rt.Errors.Warnf(DirectiveMisuse, "AST_EXPRESSION %q: %v", p.ASTSource, err)
			return def
		}
		return v
	default:
		if s, ok := p.AsString(def); ok {
			return s
		}
		return def
	}
}

// String is the element-scoped counterpart of Property.AsString: it
// resolves bindings through the owner's scope walk before falling back
// to def, implementing the full §4.2 accessor contract.
func (e *Element) String(rt *Runtime, name string, def string) string {
	p, ok := rt.PropertyOf(e, name)
	if !ok {
		return def
	}
	return Resolve(rt, e, p, def)
}

// Int is the numeric counterpart of String.
func (e *Element) Int(rt *Runtime, name string, def int64) int64 {
	s := e.String(rt, name, "")
	if s == "" {
		if p, ok := rt.PropertyOf(e, name); ok {
			if v, ok := p.AsInt(def); ok {
				return v
			}
		}
		return def
	}
	if v, ok := (Property{Tag: TagString, Str: s}).AsInt(def); ok {
		return v
	}
	return def
}

// Bool is the boolean counterpart of String.
func (e *Element) Bool(rt *Runtime, name string, def bool) bool {
	p, ok := rt.PropertyOf(e, name)
	if !ok {
		return def
	}
	if p.Tag == TagReference || p.Tag == TagTemplate || p.Tag == TagASTExpr {
		s := Resolve(rt, e, p, "")
		if v, ok := (Property{Tag: TagString, Str: s}).AsBool(def); ok {
			return v
		}
		return def
	}
	if v, ok := p.AsBool(def); ok {
		return v
	}
	return def
}

// Color is the color counterpart of String.
func (e *Element) Color(rt *Runtime, name string, def [4]byte) [4]byte {
	p, ok := rt.PropertyOf(e, name)
	if !ok {
		return def
	}
	if p.Tag == TagReference || p.Tag == TagTemplate {
		s := Resolve(rt, e, p, "")
		if c, ok := ParseColor(s); ok {
			return c
		}
		return def
	}
	if c, ok := p.AsColor(def); ok {
		return c
	}
	return def
}
