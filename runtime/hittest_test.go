package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHitTestDeepestWins covers §8 invariant 7 / scenario E: two
// overlapping elements at the same point must resolve to the deepest,
// visually topmost one (later sibling wins ties), not the shallow
// container that contains both.
func TestHitTestDeepestWins(t *testing.T) {
	root := &Element{TypeHex: TypeHexContainer, Visible: true, Enabled: true, X: 0, Y: 0, W: 100, H: 100}

	back := &Element{TypeHex: TypeHexButton, Visible: true, Enabled: true, X: 10, Y: 10, W: 50, H: 50}
	front := &Element{TypeHex: TypeHexButton, Visible: true, Enabled: true, X: 10, Y: 10, W: 50, H: 50}
	root.AddChild(back)
	root.AddChild(front)

	deepChild := &Element{TypeHex: TypeHexText, Visible: true, Enabled: true, X: 15, Y: 15, W: 10, H: 10}
	front.AddChild(deepChild)

	hit := HitTest(root, 20, 20)
	assert.Same(t, deepChild, hit)
}

func TestHitTestSkipsInvisibleSubtree(t *testing.T) {
	root := &Element{TypeHex: TypeHexContainer, Visible: true, Enabled: true, X: 0, Y: 0, W: 100, H: 100}
	hidden := &Element{TypeHex: TypeHexButton, Visible: false, Enabled: true, X: 0, Y: 0, W: 100, H: 100}
	root.AddChild(hidden)

	hit := HitTest(root, 50, 50)
	assert.Same(t, root, hit)
}

func TestHitTestReturnsNilOutsideBounds(t *testing.T) {
	root := &Element{TypeHex: TypeHexContainer, Visible: true, Enabled: true, X: 0, Y: 0, W: 10, H: 10}
	assert.Nil(t, HitTest(root, 500, 500))
}
