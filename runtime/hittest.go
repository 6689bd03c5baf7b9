// runtime/hittest.go
package runtime

// HitTest returns the deepest visible, enabled element whose layout
// rectangle contains (x, y), per §4.7: "hit-testing walks the tree and
// returns the deepest element under the point; an invisible or
// disabled element, and everything under it, is skipped." Directive
// template elements are never hit since they carry no layout rectangle
// of their own (W/H stay zero) and are excluded from render traversal.
func HitTest(root *Element, x, y float32) *Element {
	if root == nil || !root.Visible || !root.Enabled {
		return nil
	}
	if !contains(root, x, y) {
		return nil
	}
	// Children are walked back-to-front (later siblings drawn on top,
	// per §4.9's emission-order z-index rule) so the topmost visual
	// match wins when two children overlap.
	for i := len(root.Children) - 1; i >= 0; i-- {
		if hit := HitTest(root.Children[i], x, y); hit != nil {
			return hit
		}
	}
	return root
}

func contains(e *Element, x, y float32) bool {
	return x >= e.X && x < e.X+e.W && y >= e.Y && y < e.Y+e.H
}
