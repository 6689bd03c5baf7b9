// runtime/runtime.go
package runtime

import (
	"fmt"
	"io"

	"github.com/kryonlabs/kryon-runtime/krb"
)

// ScriptInterpreter is the opaque contract §4.8 describes: load a
// function body, call it by name, and be told when an element it may
// hold a reference to is gone. script/lua.Interpreter is the concrete
// gopher-lua-backed implementation; the runtime core never imports it
// directly, so a headless build can run without an interpreter wired
// in at all (Interpreter stays nil and CallScript becomes a no-op).
type ScriptInterpreter interface {
	Load(name string, code []byte) error
	Call(name string, args ...string) (string, error)
	NotifyElementDestroyed(id uint32)
}

// Metrics is the nil-safe instrumentation seam SPEC_FULL.md's Domain
// Stack wires to prometheus/client_golang (see metrics/metrics.go).
// Runtime always holds a non-nil Metrics — NewRuntime defaults to
// noopMetrics — so call sites never branch on whether metrics are
// enabled.
type Metrics interface {
	ObserveDirectiveExpansion()
	ObserveFrame(seconds float64)
	SetElementCount(n int)
	SetComponentCount(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveDirectiveExpansion()    {}
func (noopMetrics) ObserveFrame(seconds float64)  {}
func (noopMetrics) SetElementCount(n int)         {}
func (noopMetrics) SetComponentCount(n int)       {}

// Inspector is the attach/detach seam SPEC_FULL.md's Expansion item 5
// names; the default implementation lives in inspector/inspector.go.
type Inspector interface {
	Attach(rt *Runtime)
	Detach()
}

// Runtime owns every piece of live state a loaded document produces:
// the element tree, the variable registry, component instances, the
// style table, and the collaborators (script, metrics, inspector)
// that cut across all of them. Nothing in this package stores a
// *Runtime back-pointer on Element — every method that needs one of
// these collaborators takes rt explicitly (§9's resolution of the
// source's global mutable runtime pointer).
type Runtime struct {
	Root *Element

	Variables  *VariableRegistry
	Registry   *Registry
	Components *ComponentManager
	Errors     *ErrorLog

	Config Config

	ComponentDefs map[string]*ComponentDefinition
	Styles        map[uint32]krb.StyleRecord
	Scripts       map[string]krb.ScriptRecord

	Interpreter ScriptInterpreter
	Metrics     Metrics
	Inspector   Inspector
	inspectorAttached bool

	// CustomComponents maps a component definition name (e.g. "TabBar")
	// to the native handler SPEC_FULL.md's Runtime-Core Expansion item 2
	// keeps from the teacher's CustomComponentHandler registry (see
	// custom.go). Nil entries are never stored; an unregistered name
	// simply falls through to ordinary layout/draw/event handling.
	CustomComponents map[string]CustomComponentHandler

	// CursorHint is the current frame's cursor-vote result (§4.7),
	// read by the render backend's optional set_cursor call.
	CursorHint string
}

// NewRuntime creates an empty runtime with every collaborator
// initialized except Interpreter/Inspector, which stay nil until a
// caller wires one in.
func NewRuntime() *Runtime {
	return &Runtime{
		Variables:     NewVariableRegistry(),
		Registry:      NewRegistry(),
		Components:    NewComponentManager(),
		Errors:        NewErrorLog(),
		Config:        DefaultConfig(),
		ComponentDefs: make(map[string]*ComponentDefinition),
		Styles:        make(map[uint32]krb.StyleRecord),
		Scripts:       make(map[string]krb.ScriptRecord),
		Metrics:       noopMetrics{},
		CustomComponents: make(map[string]CustomComponentHandler),
	}
}

// Load parses a KRYN container from r and builds the live element
// tree, seeded variable registry, component definitions, and style
// table it describes, running one initial directive-expansion pass
// before returning (§5: "the tree is fully expanded before the first
// frame is rendered").
func Load(r io.ReadSeeker) (*Runtime, error) {
	doc, err := krb.ReadDocument(r)
	if err != nil {
		return nil, newErr("runtime.Load", MalformedContainer, err)
	}

	rt := NewRuntime()

	for _, v := range doc.Variables {
		rt.Variables.Set(v.Name, v.Value)
	}
	rt.Variables.TakeDirty() // seeding is not a mutation the update loop should react to

	for i := range doc.Styles {
		s := doc.Styles[i]
		rt.Styles[s.ID] = s
	}

	for i := range doc.Scripts {
		s := doc.Scripts[i]
		rt.Scripts[s.Name] = s
	}

	for i := range doc.Components {
		c := &doc.Components[i]
		rt.ComponentDefs[c.Name] = &ComponentDefinition{
			Name:      c.Name,
			Params:    c.Params,
			StateVars: c.StateVars,
			Template:  c.Template,
		}
	}

	if len(doc.Roots) == 0 {
		return nil, newErr("runtime.Load", MalformedContainer, fmt.Errorf("document has no root element"))
	}
	root := rt.buildElement(doc.Roots[0])
	rt.Root = root

	if root.Type() == ElemApp {
		rt.Config.ApplyAppProperties(root.Properties)
	}

	rt.ExpandDirectives(rt.Root)
	rt.Metrics.SetElementCount(rt.Registry.Len())
	return rt, nil
}

func (rt *Runtime) buildElement(rec *krb.ElementRecord) *Element {
	el := &Element{
		TypeHex:  rec.TypeHex,
		UserID:   "",
		StyleRef: rec.StyleRef,
		State:    Created,
		Visible:  true,
		Enabled:  true,
	}
	el.Properties = make([]Property, len(rec.Properties))
	for i, p := range rec.Properties {
		el.Properties[i] = propertyFromRecord(p)
	}
	el.Handlers = append([]krb.HandlerRecord(nil), rec.Handlers...)
	rt.Registry.Alloc(el)

	for _, childRec := range rec.Children {
		el.AddChild(rt.buildElement(childRec))
	}
	return el
}

// PropertyOf implements SPEC_FULL.md's Runtime-Core Expansion item 1:
// an element's own property wins; absent that, its style's property of
// the same canonical name; absent that, the caller's default (handled
// by every (*Element) accessor, not here).
func (rt *Runtime) PropertyOf(e *Element, name string) (Property, bool) {
	canon := ResolveAlias(name)
	if p, ok := e.Property(canon); ok {
		return p, true
	}
	if e.StyleRef == 0 {
		return Property{}, false
	}
	style, ok := rt.Styles[e.StyleRef]
	if !ok {
		return Property{}, false
	}
	for _, p := range style.Properties {
		if CanonicalPropertyName(p.NameHex) == canon {
			return propertyFromRecord(p), true
		}
	}
	return Property{}, false
}

// onElementDestroyed runs for every descendant the registry tears
// down, leaves first, implementing §4.8's notify_element_destroyed
// contract and releasing any component instance the element owned.
func (rt *Runtime) onElementDestroyed(el *Element) {
	if el.Component != nil {
		rt.Components.Release(el.Component.ID)
	}
	if rt.Interpreter != nil {
		rt.Interpreter.NotifyElementDestroyed(el.ID)
	}
}

// CallScript dispatches to the registered script function by name via
// the wired interpreter; the function must already have been loaded by
// LoadScripts. A nil Interpreter makes this a
// structured no-op rather than a panic, so headless loads (tests,
// layout-only tooling) never need one wired in.
func (rt *Runtime) CallScript(name string, args ...string) (string, error) {
	if rt.Interpreter == nil {
		return "", nil
	}
	return rt.Interpreter.Call(name, args...)
}

// LoadScripts feeds every parsed script function into the wired
// interpreter. Called once after Load, separately, so a caller that
// wants a headless runtime (no Lua) can skip it entirely.
func (rt *Runtime) LoadScripts() error {
	if rt.Interpreter == nil {
		return nil
	}
	for name, s := range rt.Scripts {
		if s.Language != "lua" {
			rt.Errors.Warnf(ScriptError, "script %q: unsupported language %q, skipped", name, s.Language)
			continue
		}
		if err := rt.Interpreter.Load(name, s.Code); err != nil {
			return newErr("runtime.LoadScripts", ScriptError, fmt.Errorf("%s: %w", name, err))
		}
	}
	return nil
}

// Update advances the runtime by one tick per §5's ordering: advance
// every still-Created element to Mounted, then re-expand directives if
// the variable registry mutated since the last call. Event-queue
// drain and hit-testing are layered in by (*Runtime).Dispatch
// (event.go), which the main loop runs before Update; layout and
// render-command emission live in the render package, which calls back
// into PropertyOf/element accessors.
func (rt *Runtime) Update() {
	mountPending(rt.Root)
	if rt.Variables.TakeDirty() {
		rt.ExpandDirectives(rt.Root)
		markRenderDirty(rt.Root)
	}
	rt.Metrics.SetElementCount(rt.Registry.Len())
	rt.Metrics.SetComponentCount(rt.Components.Len())
}

func markRenderDirty(el *Element) {
	el.RenderDirty = true
	el.LayoutDirty = true
	for _, c := range el.Children {
		markRenderDirty(c)
	}
}

func mountPending(el *Element) {
	if el.State == Created {
		el.State = Mounting
		el.State = Mounted
	}
	for _, c := range el.Children {
		mountPending(c)
	}
}

// ToggleInspector flips the wired Inspector between attached and
// detached, the effect §4.7's Ctrl+I key-down is defined to have. A
// nil Inspector makes this a no-op, the same pattern CallScript uses
// for a nil Interpreter.
func (rt *Runtime) ToggleInspector() {
	if rt.Inspector == nil {
		return
	}
	if rt.inspectorAttached {
		rt.Inspector.Detach()
	} else {
		rt.Inspector.Attach(rt)
	}
	rt.inspectorAttached = !rt.inspectorAttached
}

// Shutdown tears down the whole tree, leaves first, running every
// onElementDestroyed hook along the way (§4.4's destruction order,
// applied to the root rather than one subtree).
func (rt *Runtime) Shutdown() {
	if rt.Root == nil {
		return
	}
	rt.Registry.Destroy(rt.Root, rt.onElementDestroyed)
	rt.Root = nil
}
