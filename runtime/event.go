// runtime/event.go
package runtime

import (
	"strconv"
	"strings"
	"sync"
)

// EventType enumerates every input occurrence spec.md §4.7 names:
// "mouse button down/up, mouse move, text input, key down/up, window
// focus, window resize."
type EventType uint8

const (
	EventPointerDown EventType = iota
	EventPointerUp
	EventPointerMove
	EventKeyDown
	EventKeyUp
	EventTextInput
	EventWindowFocus
	EventWindowResize
)

// Event is one queued input occurrence. Only the fields relevant to
// its Type are meaningful: X/Y for pointer events, Key for Key* events,
// Text for EventTextInput, Width/Height for EventWindowResize, Focused
// for EventWindowFocus.
type Event struct {
	Type EventType

	X, Y float32
	Key  string
	Text string

	Width, Height int
	Focused       bool
}

const defaultEventQueueCapacity = 256

// EventQueue is a bounded single-producer/single-consumer ring buffer
// (§4.7: "the backend pushes events from its poll loop; the update
// loop drains them once per frame, in FIFO order"). Push drops the
// oldest unread event rather than blocking the producer, since a
// stalled consumer must never wedge the backend's poll loop.
type EventQueue struct {
	mu    sync.Mutex
	buf   []Event
	head  int
	count int
}

// NewEventQueue creates a queue with the default capacity.
func NewEventQueue() *EventQueue {
	return &EventQueue{buf: make([]Event, defaultEventQueueCapacity)}
}

// Push enqueues an event, overwriting the oldest entry once full.
func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	tail := (q.head + q.count) % len(q.buf)
	q.buf[tail] = e
	if q.count == len(q.buf) {
		q.head = (q.head + 1) % len(q.buf)
	} else {
		q.count++
	}
}

// Drain removes and returns every queued event, oldest first.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Event, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.head = 0
	q.count = 0
	return out
}

// Dispatch drains the queue and applies §4.7's per-type runtime
// effects, in FIFO order: pointer down/up hit-test and call the deepest
// element's matching handler script (unless a registered
// CustomComponentHandler claims the event first); pointer-move updates
// the per-frame cursor vote; window-resize updates the root.width/
// root.height variables and marks the whole tree render-dirty; Ctrl+I
// key-down toggles the debug inspector.
func (rt *Runtime) Dispatch(q *EventQueue) {
	if rt.Root == nil {
		return
	}
	for _, e := range q.Drain() {
		switch e.Type {
		case EventPointerDown, EventPointerUp:
			target := HitTest(rt.Root, e.X, e.Y)
			if target == nil {
				continue
			}
			if h, ok := rt.CustomHandlerFor(target); ok && h.HandleEvent(rt, target, e) {
				continue
			}
			for _, handler := range target.Handlers {
				if handler.EventType == uint8(e.Type) {
					if _, err := rt.CallScript(handler.Function); err != nil {
						rt.Errors.Warnf(ScriptError, "handler %s on element %d: %v", handler.Function, target.ID, err)
					}
				}
			}
		case EventPointerMove:
			rt.cursorVote(e.X, e.Y)
		case EventWindowResize:
			rt.applyResize(e.Width, e.Height)
		case EventKeyDown:
			if strings.EqualFold(e.Key, "ctrl+i") {
				rt.ToggleInspector()
			}
		case EventKeyUp, EventTextInput, EventWindowFocus:
			// No runtime-level effect named by §4.7 beyond the cursor/
			// resize/inspector handling above; still drained so they
			// never pile up unread in the ring buffer.
		}
	}
}

// applyResize implements spec.md §4.7/§8 scenario F: the new viewport
// size is recorded both as the live config (so the next layout pass
// uses it) and as the "root.width"/"root.height" variables a binding
// may reference, and the whole tree is marked render-dirty so every
// element bound to either becomes dirty too.
func (rt *Runtime) applyResize(width, height int) {
	rt.Config.Width = width
	rt.Config.Height = height
	rt.Variables.Set("root.width", strconv.Itoa(width))
	rt.Variables.Set("root.height", strconv.Itoa(height))
	markRenderDirty(rt.Root)
}

// cursorVote resolves the one cursor shape the frame should present:
// the deepest hit element under the pointer wins, falling back to the
// default arrow when nothing is hit (§4.7's "one cursor vote per
// frame").
func (rt *Runtime) cursorVote(x, y float32) {
	target := HitTest(rt.Root, x, y)
	if target == nil {
		rt.CursorHint = "default"
		return
	}
	if target.Type() == ElemButton {
		rt.CursorHint = "pointer"
		return
	}
	rt.CursorHint = "default"
}
