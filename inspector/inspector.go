// Package inspector implements the Ctrl+I debug overlay SPEC_FULL.md's
// Runtime-Core Expansion item 5 names: a point-in-time snapshot of the
// live element tree, uuid-tagged per snapshot so a frontend can tell
// two overlapping captures apart.
package inspector

import (
	"github.com/google/uuid"

	"github.com/kryonlabs/kryon-runtime/runtime"
)

// Snapshot is one captured view of the tree, taken the instant Attach
// toggles on or a caller asks for one.
type Snapshot struct {
	ID    uuid.UUID
	Nodes []Node
}

// Node is one element's inspector-relevant state: identity, geometry,
// and the canonical properties a developer would want to see without
// reaching for the raw wire format.
type Node struct {
	ElementID uint32
	Type      string
	Depth     int
	X, Y, W, H float32
	Visible   bool
	Enabled   bool
}

// Default is the runtime.Inspector the CLI wires in by default: it
// keeps the most recent snapshot in memory and does nothing until a
// caller reads it back via Latest.
type Default struct {
	rt       *runtime.Runtime
	attached bool
	latest   *Snapshot
}

// New creates an unattached inspector.
func New() *Default { return &Default{} }

// Attach implements runtime.Inspector.
func (d *Default) Attach(rt *runtime.Runtime) {
	d.rt = rt
	d.attached = true
	d.Capture()
}

// Detach implements runtime.Inspector.
func (d *Default) Detach() {
	d.attached = false
	d.rt = nil
}

// Capture walks the live tree and records a fresh Snapshot, replacing
// Latest. A no-op if the inspector isn't attached.
func (d *Default) Capture() *Snapshot {
	if !d.attached || d.rt == nil || d.rt.Root == nil {
		return nil
	}
	snap := &Snapshot{ID: uuid.New()}
	walk(d.rt.Root, 0, &snap.Nodes)
	d.latest = snap
	return snap
}

// Latest returns the most recently captured snapshot, or nil if none
// has been taken yet.
func (d *Default) Latest() *Snapshot { return d.latest }

func walk(el *runtime.Element, depth int, out *[]Node) {
	*out = append(*out, Node{
		ElementID: el.ID,
		Type:      string(el.Type()),
		Depth:     depth,
		X:         el.X,
		Y:         el.Y,
		W:         el.W,
		H:         el.H,
		Visible:   el.Visible,
		Enabled:   el.Enabled,
	})
	for _, c := range el.Children {
		walk(c, depth+1, out)
	}
}
