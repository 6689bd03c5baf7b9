// runtime/directive.go
package runtime

import (
	"strings"

	"github.com/kryonlabs/kryon-runtime/krb"
)

// ExpandDirectives walks the live tree and re-runs every @for/@if
// template under it (§4.5). It is safe to call on every update-
// triggering pass: expansion is idempotent when the variable state is
// unchanged (§8 property 5), since step 2 always clears exactly the
// siblings the previous pass generated before regenerating them.
func (rt *Runtime) ExpandDirectives(root *Element) {
	rt.expandDirectivesIn(root)
}

func (rt *Runtime) expandDirectivesIn(el *Element) {
	// Copy the children slice before recursing: expansion mutates
	// el.Children in place (removing stale generated siblings, adding
	// fresh ones), so iterating the live slice would skip or revisit
	// entries.
	children := append([]*Element(nil), el.Children...)
	for _, child := range children {
		switch child.Type() {
		case ElemFor:
			rt.expandFor(child)
		case ElemIf:
			rt.expandIf(child)
		}
		rt.expandDirectivesIn(child)
	}
}

func (rt *Runtime) expandFor(forEl *Element) {
	parent := forEl.Parent
	if parent == nil {
		rt.Errors.Warnf(DirectiveMisuse, "@for element %d has no parent; skipping", forEl.ID)
		return
	}

	rt.clearGenerated(parent, forEl)

	variable := forEl.String(rt, "variable", "")
	arraySrc := forEl.String(rt, "array", "")
	if variable == "" || arraySrc == "" {
		rt.Errors.Warnf(DirectiveMisuse, "@for element %d missing variable/array", forEl.ID)
		return
	}

	tokens := tokenizeArray(arraySrc, rt)

	insertAt := indexOf(parent.Children, forEl) + 1
	generated := make([]*Element, 0, len(tokens)*len(forEl.Children))
	for _, v := range tokens {
		for _, tmpl := range forEl.Children {
			clone := cloneWithSubstitution(tmpl, variable, v)
			clone.GeneratedByFor = true
			generated = append(generated, clone)
		}
	}
	insertElements(parent, insertAt, generated, forEl, rt)
	rt.Metrics.ObserveDirectiveExpansion()
}

func (rt *Runtime) expandIf(ifEl *Element) {
	parent := ifEl.Parent
	if parent == nil {
		rt.Errors.Warnf(DirectiveMisuse, "@if element %d has no parent; skipping", ifEl.ID)
		return
	}
	rt.clearGenerated(parent, ifEl)

	condSrc := ifEl.String(rt, "condition", "")
	if condSrc == "" {
		rt.Errors.Warnf(DirectiveMisuse, "@if element %d missing condition", ifEl.ID)
		return
	}
	result, err := evalExpr(condSrc, func(name string) (string, bool) { return ifEl.walkScope(rt, name) })
	if err != nil {
		rt.Errors.Warnf(DirectiveMisuse, "@if element %d: %v", ifEl.ID, err)
		return
	}
	truthy := result == "true"
	if !truthy {
		return
	}

	insertAt := indexOf(parent.Children, ifEl) + 1
	generated := make([]*Element, 0, len(ifEl.Children))
	for _, tmpl := range ifEl.Children {
		clone := cloneWithSubstitution(tmpl, "", "")
		clone.GeneratedByFor = true
		generated = append(generated, clone)
	}
	insertElements(parent, insertAt, generated, ifEl, rt)
	rt.Metrics.ObserveDirectiveExpansion()
}

// clearGenerated removes every element under parent previously
// generated by source, destroying each through the registry so the
// cleanup-correctness invariant (§8 property 6) holds across
// re-expansions too, not just explicit subtree destruction.
func (rt *Runtime) clearGenerated(parent, source *Element) {
	stale := make([]*Element, 0)
	for _, c := range parent.Children {
		if c.GeneratedByFor && c.generatedBy == source {
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		rt.Registry.Destroy(c, rt.onElementDestroyed)
	}
}

func insertElements(parent *Element, at int, generated []*Element, source *Element, rt *Runtime) {
	var alloc func(el *Element)
	alloc = func(el *Element) {
		rt.Registry.Alloc(el)
		for _, c := range el.Children {
			alloc(c)
		}
	}
	for _, g := range generated {
		g.generatedBy = source
		alloc(g)
	}
	head := append([]*Element(nil), parent.Children[:at]...)
	tail := append([]*Element(nil), parent.Children[at:]...)
	parent.Children = append(head, append(generated, tail...)...)
	for _, g := range generated {
		g.Parent = parent
	}
}

func indexOf(list []*Element, target *Element) int {
	for i, e := range list {
		if e == target {
			return i
		}
	}
	return len(list) - 1
}

// tokenizeArray implements §4.5 step 3: literal "[...]" lists or a
// registry variable, tokenized on commas with surrounding whitespace,
// brackets, and double-quotes trimmed from each token; empty tokens are
// skipped, and a missing variable resolves to an empty list.
func tokenizeArray(src string, rt *Runtime) []string {
	raw := src
	if !strings.HasPrefix(src, "[") {
		v, ok := rt.Variables.Get(src)
		if !ok {
			return nil
		}
		raw = v
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, "\"")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// cloneWithSubstitution deep-clones a template element (§4.5 step 4),
// substituting REFERENCE properties whose binding_path matches variable
// with a literal STRING, and resolving matching TEMPLATE segments in
// place, then eagerly collapsing any TEMPLATE left with no remaining
// registry variables to a plain STRING.
func cloneWithSubstitution(tmpl *Element, variable, value string) *Element {
	clone := &Element{
		TypeHex:  tmpl.TypeHex,
		UserID:   tmpl.UserID,
		StyleRef: tmpl.StyleRef,
		Visible:  tmpl.Visible,
		Enabled:  tmpl.Enabled,
		State:    Created,
	}
	clone.Properties = make([]Property, len(tmpl.Properties))
	for i, p := range tmpl.Properties {
		clone.Properties[i] = substituteProperty(p, variable, value)
	}
	clone.Handlers = append([]krb.HandlerRecord(nil), tmpl.Handlers...)
	for _, c := range tmpl.Children {
		clone.AddChild(cloneWithSubstitution(c, variable, value))
	}
	return clone
}

func substituteProperty(p Property, variable, value string) Property {
	if variable == "" {
		return p
	}
	switch p.Tag {
	case TagReference:
		if p.Reference == variable {
			return Property{NameHex: p.NameHex, Tag: TagString, Str: value}
		}
		return p
	case TagTemplate:
		segs := make([]krb.TemplateSegment, len(p.Segments))
		remaining := false
		for i, seg := range p.Segments {
			if seg.Tag == 0x01 && seg.Text == variable {
				segs[i] = krb.TemplateSegment{Tag: 0x00, Text: value}
			} else {
				segs[i] = seg
				if seg.Tag == 0x01 {
					remaining = true
				}
			}
		}
		if !remaining {
			var sb strings.Builder
			for _, seg := range segs {
				sb.WriteString(seg.Text)
			}
			return Property{NameHex: p.NameHex, Tag: TagString, Str: sb.String()}
		}
		return Property{NameHex: p.NameHex, Tag: TagTemplate, Segments: segs}
	default:
		return p
	}
}
