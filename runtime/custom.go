// runtime/custom.go
package runtime

// DrawKind mirrors render.CommandKind without runtime depending on the
// render package: a CustomComponentHandler's Draw method returns
// DrawOp values, and render.Emitter translates them into its own
// render.Command slice after calling it, keeping the registry itself
// backend-agnostic.
type DrawKind uint8

const (
	DrawRect DrawKind = iota
	DrawText
)

// DrawOp is one draw instruction a CustomComponentHandler emits in
// place of the emitter's default bg_color/text emission for an
// element.
type DrawOp struct {
	Kind       DrawKind
	X, Y, W, H float32
	Color      [4]byte
	Text       string
	FontSize   float32
}

// CustomComponentHandler is the escape hatch SPEC_FULL.md's Runtime-
// Core Expansion item 2 keeps from the teacher's
// CustomComponentHandler/CustomDrawer/CustomEventHandler split
// (render/raylib/custom_tabbar.go, custom_markdownview.go), collapsed
// into one interface and generalized from a KRB custom element type to
// a component instance's definition name (e.g. "TabBar").
type CustomComponentHandler interface {
	// HandleLayoutAdjustment runs after the emitter's ordinary layout
	// pass has already sized and positioned el; it may mutate el.X/el.Y
	// directly and returns the width/height the emitter should record
	// instead of its own computed ones. ok false leaves el's box
	// exactly as ordinary layout left it.
	HandleLayoutAdjustment(rt *Runtime, el *Element, availW, availH float32) (w, h float32, ok bool)

	// Draw emits el's own draw commands in place of the emitter's
	// default bg_color/text emission. ok false leaves the default
	// emission in place.
	Draw(rt *Runtime, el *Element) (ops []DrawOp, ok bool)

	// HandleEvent gives the handler first refusal on a pointer event
	// hit on el (§4.7). handled true stops Dispatch from running el's
	// handler records (Element.Handlers) for that event. Dispatch runs
	// only those records; it does not look up onClick/onChange
	// properties.
	HandleEvent(rt *Runtime, el *Element, e Event) (handled bool)
}

// RegisterCustomComponent wires handler in for every component
// instance whose definition is named typeName, the same
// identifier-keyed registration the teacher's custom_component_registry.go
// used for "TabBar"/"MarkdownView".
func (rt *Runtime) RegisterCustomComponent(typeName string, handler CustomComponentHandler) {
	if rt.CustomComponents == nil {
		rt.CustomComponents = make(map[string]CustomComponentHandler)
	}
	rt.CustomComponents[typeName] = handler
}

// CustomHandlerFor returns the handler registered for el's component
// definition, if el owns a component instance and one is registered.
func (rt *Runtime) CustomHandlerFor(el *Element) (CustomComponentHandler, bool) {
	if el.Component == nil || rt.CustomComponents == nil {
		return nil, false
	}
	h, ok := rt.CustomComponents[el.Component.Def.Name]
	return h, ok
}
