// runtime/element.go
package runtime

import (
	"strconv"

	"github.com/kryonlabs/kryon-runtime/krb"
)

// LifecycleState is one of the states named by §4.4. The update loop
// advances Created elements to Mounted; Registry.Destroy moves an
// element through Unmounting to Destroyed.
type LifecycleState int

const (
	Created LifecycleState = iota
	Mounting
	Mounted
	Updating
	Unmounting
	Destroyed
)

func (s LifecycleState) String() string {
	switch s {
	case Created:
		return "Created"
	case Mounting:
		return "Mounting"
	case Mounted:
		return "Mounted"
	case Updating:
		return "Updating"
	case Unmounting:
		return "Unmounting"
	case Destroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// Element is a node of the live UI tree (§3). The parent→children edge
// is the only owning edge; Parent and the runtime's flat Registry are
// pure borrows, matching the design note's resolution to the source's
// cyclic-ownership problem — destruction always flows from children up.
type Element struct {
	ID       uint32 // stable for the element's lifetime, unique within the runtime
	TypeHex  uint16
	UserID   string
	StyleRef uint32 // 0 means "no style"; resolved through Runtime.Styles

	Parent   *Element
	Children []*Element

	Properties []Property
	Handlers   []krb.HandlerRecord

	State LifecycleState

	Visible bool
	Enabled bool

	LayoutDirty bool
	RenderDirty bool

	Component *ComponentInstance // nil unless this element owns a component instance

	// GeneratedByFor is true for siblings the directive expander
	// produced; they are the ones cleared and re-created on every
	// expansion pass (§4.5 step 2), as opposed to sibling elements that
	// were present in the source tree and must never be touched.
	GeneratedByFor bool

	// generatedBy names the @for/@if element a generated sibling belongs
	// to, so clearGenerated only clears the siblings its own directive
	// produced when several directives share a parent.
	generatedBy *Element

	// Layout results, written by the render-command emitter's layout
	// pass and read back by hit-test (§4.7) and render (§4.9).
	X, Y, W, H float32
}

// Type resolves this element's canonical type name via the mapping.
func (e *Element) Type() ElementType { return CanonicalElementType(e.TypeHex) }

// Property returns the element's own property of the given canonical
// name (after alias resolution), ignoring style fallback. Most callers
// want (*Runtime).PropertyOf instead, which applies the full §4.2 +
// SPEC_FULL style-fallback resolution order.
func (e *Element) Property(name string) (Property, bool) {
	canon := ResolveAlias(name)
	for _, p := range e.Properties {
		if p.Name() == canon {
			return p, true
		}
	}
	return Property{}, false
}

// AddChild appends child under e, setting the back-pointer. Callers
// must not add the same child twice (§3's "children of a parent appear
// at most once" invariant) — AddChild does not itself re-check, since
// every call site in this runtime (loader, directive expander) already
// knows it is building a fresh list.
func (e *Element) AddChild(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// RemoveChild detaches child from e's children list without destroying
// it; used by Registry.Destroy to unlink a destroyed element from its
// parent.
func (e *Element) RemoveChild(child *Element) {
	for i, c := range e.Children {
		if c == child {
			e.Children = append(e.Children[:i], e.Children[i+1:]...)
			return
		}
	}
}

// walkScope implements §3's component-scope walk: starting at e,
// consult each ancestor's component instance (state table, then
// parameters) before falling back to the global registry. A dotted
// "<component-id>.<name>" path whose id names a live instance
// short-circuits via the runtime's instance-by-id index instead of
// walking; any other dotted name (e.g. "root.width") is resolved like
// a plain name.
func (e *Element) walkScope(rt *Runtime, name string) (string, bool) {
	key := strconv.FormatUint(uint64(e.ID), 10) + "\x00" + name
	if v, ok := rt.Variables.cacheGet(key); ok {
		return v, true
	}

	if id, field, ok := splitScopedPath(name); ok {
		if inst := rt.Components.ByID(id); inst != nil {
			if v, ok := inst.resolve(field); ok {
				rt.Variables.cachePut(key, v)
				return v, true
			}
			return "", false
		}
	}
	for cur := e; cur != nil; cur = cur.Parent {
		if cur.Component != nil {
			if v, ok := cur.Component.resolve(name); ok {
				rt.Variables.cachePut(key, v)
				return v, true
			}
		}
	}
	v, ok := rt.Variables.Get(name)
	if ok {
		rt.Variables.cachePut(key, v)
	}
	return v, ok
}

func splitScopedPath(name string) (id, field string, ok bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}
