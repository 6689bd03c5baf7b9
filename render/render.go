// Package render implements §4.9's layout pass and render-command
// emitter: it walks a runtime.Element tree, computes each element's
// box, and turns the result into a flat, backend-agnostic command
// buffer. The teacher's Renderer interface (Init/PrepareTree/
// RenderFrame/...) is generalized here into a smaller Backend
// V-table that only needs to execute commands, not understand KRB or
// layout at all — that logic now lives once, in Emitter, instead of
// once per backend.
package render

import "github.com/kryonlabs/kryon-runtime/runtime"

const (
	// MinElementWidth/MinElementHeight are the auto-sizing floors §4.9
	// names for an element with no explicit width/height property.
	MinElementWidth  float32 = 20
	MinElementHeight float32 = 16

	// PopupZIndex is the baseline emission-order position a popup-type
	// element's commands start from, so ordinary flow content never
	// paints over one (§4.9: "popups always emit at z-index >= 1000").
	PopupZIndex = 1000
)

// CommandKind discriminates a Command's payload.
type CommandKind uint8

const (
	CmdDrawRect CommandKind = iota
	CmdDrawText
)

// Command is one flat, backend-agnostic draw instruction. ZIndex
// encodes emission order: the command buffer is always already sorted
// by the order the layout pass produced it, so a backend never needs
// to sort — it just executes the slice in order.
type Command struct {
	Kind   CommandKind
	ZIndex int

	X, Y, W, H float32
	Color      [4]byte

	Text     string
	FontSize float32
}

// Backend is the V-table a rendering surface implements (§4.9). It
// deliberately knows nothing about runtime.Element or KRB — Emitter
// hands it a finished command buffer, the same separation the
// teacher's Init/BeginFrame/RenderFrame/EndFrame split drew between
// window lifecycle and per-element drawing, narrowed down to exactly
// the operations a command buffer needs executed.
type Backend interface {
	BeginFrame() error
	ExecuteCommands(cmds []Command) error
	EndFrame() error

	// MeasureTextWidth reports the pixel width text would occupy at
	// fontSize, used by the layout pass to auto-size Text elements.
	MeasureTextWidth(text string, fontSize float32) float32

	// SetCursor is optional: backends that can't change the system
	// cursor (headless/testing backends) may no-op.
	SetCursor(hint string)
}

// Emitter runs the layout pass over a tree and produces its command
// buffer. It holds no backend reference — Run returns the buffer, and
// the caller hands it to a Backend separately — so the same emitted
// frame can be replayed against more than one backend (e.g. a real one
// plus a headless one recording frames for a test).
type Emitter struct {
	rt *runtime.Runtime
}

// NewEmitter creates an emitter bound to rt's PropertyOf/scope
// resolution.
func NewEmitter(rt *runtime.Runtime) *Emitter {
	return &Emitter{rt: rt}
}

// Run lays out root and every visible descendant, then emits their
// draw commands in a single depth-first, back-to-front pass so later
// commands (higher z-index) naturally paint over earlier ones,
// matching §4.9's "z-index is implied by emission order" rule.
func (e *Emitter) Run(root *runtime.Element, backend Backend) []Command {
	if root == nil {
		return nil
	}
	e.layout(root, 0, 0, float32(e.rt.Config.Width), float32(e.rt.Config.Height), backend)
	var cmds []Command
	e.emit(root, 0, &cmds)
	return cmds
}

// layout computes X/Y/W/H for el and its children within the box
// (originX, originY, availW, availH), following §4.9's three flow
// kinds: Row lays children left-to-right, Column lays them top-to-
// bottom, and Container/everything else stacks children on top of one
// another within the parent's box. Width/height properties override
// the computed size; an element lacking one takes the extent its parent
// makes available on that axis, and where the parent gives none (a Row
// child's width, a Column child's height) a Text element's width is its
// measured text width, floored at MinElementWidth, and any other such
// extent is MinElementWidth/MinElementHeight.
func (e *Emitter) layout(el *runtime.Element, originX, originY, availW, availH float32, backend Backend) {
	if runtime.IsDirective(el.TypeHex) {
		return
	}
	el.X, el.Y = originX, originY
	el.W = e.sizeOf(el, "width", availW, backend)
	el.H = e.sizeOf(el, "height", availH, backend)
	el.Visible = el.Bool(e.rt, "visible", true)
	el.LayoutDirty = false

	// SPEC_FULL.md Runtime-Core Expansion item 2: a registered custom
	// component gets the final say over its own box, the same point in
	// the pass the teacher's HandleLayoutAdjustment ran at (after
	// standard layout, before its children are laid out).
	if h, ok := e.rt.CustomHandlerFor(el); ok {
		if w, ht, adjusted := h.HandleLayoutAdjustment(e.rt, el, availW, availH); adjusted {
			el.W, el.H = w, ht
		}
	}

	visible := e.visibleChildren(el)
	if len(visible) == 0 {
		return
	}
	gap := float32(el.Int(e.rt, "gap", 0))
	padding := float32(el.Int(e.rt, "padding", 0))

	switch el.Type() {
	case runtime.ElemRow:
		x := originX + padding
		childH := el.H - 2*padding
		for _, c := range visible {
			e.layout(c, x, originY+padding, 0, childH, backend)
			x += c.W + gap
		}
	case runtime.ElemColumn:
		y := originY + padding
		childW := el.W - 2*padding
		for _, c := range visible {
			e.layout(c, originX+padding, y, childW, 0, backend)
			y += c.H + gap
		}
	default:
		for _, c := range visible {
			e.layout(c, originX+padding, originY+padding, el.W-2*padding, el.H-2*padding, backend)
		}
	}
}

func (e *Emitter) visibleChildren(el *runtime.Element) []*runtime.Element {
	var out []*runtime.Element
	for _, c := range el.Children {
		if runtime.IsDirective(c.TypeHex) {
			continue
		}
		if !c.Bool(e.rt, "visible", true) {
			c.Visible = false
			continue
		}
		out = append(out, c)
	}
	return out
}

func (e *Emitter) sizeOf(el *runtime.Element, name string, avail float32, backend Backend) float32 {
	if v := el.Int(e.rt, name, -1); v >= 0 {
		return float32(v)
	}
	if avail > 0 {
		return avail
	}
	if name == "width" {
		if el.Type() == runtime.ElemText {
			text := el.String(e.rt, "text", "")
			if w := backend.MeasureTextWidth(text, 18); w > MinElementWidth {
				return w
			}
		}
		return MinElementWidth
	}
	return MinElementHeight
}

func (e *Emitter) emit(el *runtime.Element, z int, cmds *[]Command) int {
	if runtime.IsDirective(el.TypeHex) || !el.Visible {
		return z
	}
	if el.Type() == runtime.ElemPopup && z < PopupZIndex {
		z = PopupZIndex
	}

	if h, ok := e.rt.CustomHandlerFor(el); ok {
		if ops, drew := h.Draw(e.rt, el); drew {
			for _, op := range ops {
				*cmds = append(*cmds, translateDrawOp(op, z))
				z++
			}
			for _, c := range el.Children {
				z = e.emit(c, z, cmds)
			}
			return z
		}
	}

	bg, hasBg := e.rt.PropertyOf(el, "bg_color")
	if hasBg {
		c, _ := bg.AsColor([4]byte{0, 0, 0, 0})
		if c[3] != 0 {
			*cmds = append(*cmds, Command{Kind: CmdDrawRect, ZIndex: z, X: el.X, Y: el.Y, W: el.W, H: el.H, Color: c})
			z++
		}
	}
	if el.Type() == runtime.ElemText || el.Type() == runtime.ElemButton {
		text := el.String(e.rt, "text", "")
		if text != "" {
			fg := el.Color(e.rt, "fg_color", [4]byte{255, 255, 255, 255})
			*cmds = append(*cmds, Command{Kind: CmdDrawText, ZIndex: z, X: el.X, Y: el.Y, Text: text, FontSize: 18, Color: fg})
			z++
		}
	}
	for _, c := range el.Children {
		z = e.emit(c, z, cmds)
	}
	return z
}

// translateDrawOp converts a CustomComponentHandler's backend-agnostic
// runtime.DrawOp into this package's Command, the one place the two
// parallel "draw instruction" types meet.
func translateDrawOp(op runtime.DrawOp, z int) Command {
	kind := CmdDrawRect
	if op.Kind == runtime.DrawText {
		kind = CmdDrawText
	}
	return Command{Kind: kind, ZIndex: z, X: op.X, Y: op.Y, W: op.W, H: op.H, Color: op.Color, Text: op.Text, FontSize: op.FontSize}
}
