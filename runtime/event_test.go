package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueDrainsFIFO(t *testing.T) {
	q := NewEventQueue()
	q.Push(Event{Type: EventPointerDown, X: 1})
	q.Push(Event{Type: EventPointerUp, X: 2})
	q.Push(Event{Type: EventPointerMove, X: 3})

	drained := q.Drain()
	require.Len(t, drained, 3)
	assert.Equal(t, float32(1), drained[0].X)
	assert.Equal(t, float32(2), drained[1].X)
	assert.Equal(t, float32(3), drained[2].X)
}

func TestEventQueueOverwritesOldestWhenFull(t *testing.T) {
	q := NewEventQueue()
	for i := 0; i < defaultEventQueueCapacity+5; i++ {
		q.Push(Event{Type: EventPointerMove, X: float32(i)})
	}
	drained := q.Drain()
	require.Len(t, drained, defaultEventQueueCapacity)
	assert.Equal(t, float32(5), drained[0].X) // the first 5 pushes were dropped
}

// TestDispatchResizeUpdatesRootVariablesAndMarksDirty covers §8
// scenario F: a window-resize event updates root.width/root.height and
// marks the whole tree render-dirty so bound elements recompute.
func TestDispatchResizeUpdatesRootVariablesAndMarksDirty(t *testing.T) {
	rt := newTestRuntime()
	child := &Element{TypeHex: TypeHexText, Visible: true, Enabled: true}
	rt.Root.AddChild(child)
	rt.Root.RenderDirty, rt.Root.LayoutDirty = false, false
	child.RenderDirty, child.LayoutDirty = false, false

	q := NewEventQueue()
	q.Push(Event{Type: EventWindowResize, Width: 1024, Height: 768})
	rt.Dispatch(q)

	w, ok := rt.Variables.Get("root.width")
	require.True(t, ok)
	assert.Equal(t, "1024", w)
	h, ok := rt.Variables.Get("root.height")
	require.True(t, ok)
	assert.Equal(t, "768", h)
	assert.Equal(t, 1024, rt.Config.Width)
	assert.Equal(t, 768, rt.Config.Height)
	assert.True(t, rt.Root.RenderDirty)
	assert.True(t, child.RenderDirty)
}

type stubInspector struct{ attached bool }

func (s *stubInspector) Attach(rt *Runtime) { s.attached = true }
func (s *stubInspector) Detach()            { s.attached = false }

func TestDispatchCtrlIToggleFlipsInspector(t *testing.T) {
	rt := newTestRuntime()
	insp := &stubInspector{}
	rt.Inspector = insp

	q := NewEventQueue()
	q.Push(Event{Type: EventKeyDown, Key: "ctrl+i"})
	rt.Dispatch(q)
	assert.True(t, insp.attached)

	q.Push(Event{Type: EventKeyDown, Key: "ctrl+i"})
	rt.Dispatch(q)
	assert.False(t, insp.attached)
}
