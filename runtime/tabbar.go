// runtime/tabbar.go
package runtime

import "strings"

// TabBarHandler adapts the teacher's TabBarHandler
// (render/raylib/custom_tabbar.go): a tab-strip component that pins
// itself to one edge of its parent's box ("position": top/bottom/
// left/right, stretched along "orientation") instead of taking part in
// ordinary Row/Column/Container flow, and shrinks its one main-content
// sibling to make room for itself.
type TabBarHandler struct{}

// NewTabBarHandler creates a ready-to-register handler.
func NewTabBarHandler() *TabBarHandler { return &TabBarHandler{} }

// HandleLayoutAdjustment implements CustomComponentHandler.
func (h *TabBarHandler) HandleLayoutAdjustment(rt *Runtime, el *Element, availW, availH float32) (float32, float32, bool) {
	parent := el.Parent
	if parent == nil {
		return el.W, el.H, false
	}
	position := strings.ToLower(el.String(rt, "position", "bottom"))
	orientation := el.String(rt, "orientation", "row")

	w, ht := el.W, el.H
	switch position {
	case "top", "bottom":
		if orientation == "row" {
			w = parent.W
		}
	case "left", "right":
		if orientation == "column" {
			ht = parent.H
		}
	}

	switch position {
	case "top":
		el.X, el.Y = parent.X, parent.Y
	case "bottom":
		el.X, el.Y = parent.X, parent.Y+parent.H-ht
	case "left":
		el.X, el.Y = parent.X, parent.Y
	case "right":
		el.X, el.Y = parent.X+parent.W-w, parent.Y
	}

	h.shrinkContentSibling(el, position, w, ht)
	return w, ht, true
}

// shrinkContentSibling resizes el's first non-directive sibling so the
// tab bar's pinned edge never overlaps it, mirroring the teacher's
// "adjust siblings to accommodate frame" step.
func (h *TabBarHandler) shrinkContentSibling(el *Element, position string, w, ht float32) {
	parent := el.Parent
	var sibling *Element
	for _, c := range parent.Children {
		if c != el && !IsDirective(c.TypeHex) {
			sibling = c
			break
		}
	}
	if sibling == nil {
		return
	}
	switch position {
	case "bottom":
		sibling.H = el.Y - sibling.Y
	case "top":
		newY := el.Y + ht
		sibling.H = (sibling.Y + sibling.H) - newY
		sibling.Y = newY
	case "left":
		newX := el.X + w
		sibling.W = (sibling.X + sibling.W) - newX
		sibling.X = newX
	case "right":
		sibling.W = el.X - sibling.X
	}
}

// Draw implements CustomComponentHandler: the tab bar's own bg/text
// still come from the emitter's default emission, so it never draws
// anything itself.
func (h *TabBarHandler) Draw(rt *Runtime, el *Element) ([]DrawOp, bool) {
	return nil, false
}

// HandleEvent implements CustomComponentHandler: tab-selection clicks
// are ordinary onClick handlers on the tab bar's children, so the tab
// bar itself never intercepts dispatch.
func (h *TabBarHandler) HandleEvent(rt *Runtime, el *Element, e Event) bool {
	return false
}
