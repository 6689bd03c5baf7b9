// runtime/component.go
package runtime

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/kryonlabs/kryon-runtime/krb"
)

// ComponentDefinition is the in-memory form of a krb.ComponentRecord
// (§3's "Component Definition"): name, parameter list with defaults,
// state-variable list with typed defaults, and an optional UI template.
type ComponentDefinition struct {
	Name      string
	Params    []krb.ComponentParam
	StateVars []krb.ComponentStateVar
	Template  *krb.ElementRecord
}

// ComponentInstance is a per-use allocation of a definition's state
// (§3's "Component Instance"). State values use Go's native map rather
// than a hand-rolled open-addressed/chained hash table: the source's
// manual table exists to work around the absence of a map primitive,
// and a reimplementation in a language that already has one gets the
// same O(1)-amortized behavior, 0.75-load-factor growth included, for
// free — hand-rolling it here would just be reproducing a workaround
// the spec's own §9 calls out as source-language baggage.
type ComponentInstance struct {
	ID     string
	Def    *ComponentDefinition
	Params map[string]string
	State  map[string]Property
}

// resolve implements the state-then-parameter half of §3/§4.6's scope
// walk for one instance: state table first, then parameter list.
func (ci *ComponentInstance) resolve(name string) (string, bool) {
	if p, ok := ci.State[name]; ok {
		if s, ok := p.AsString(""); ok {
			return s, true
		}
	}
	if v, ok := ci.Params[name]; ok {
		return v, true
	}
	return "", false
}

// Set stores a new typed value for a state variable, replacing any
// previous type for that name outright (§4.6: "setting to a different
// type frees any owned string" — a plain map assignment already
// achieves this, the old Property is simply dropped).
func (ci *ComponentInstance) Set(name string, p Property) {
	ci.State[name] = p
}

// GetAsString produces the canonical text form §4.6 names: integers in
// decimal, floats with Go's shortest round-trip form, booleans as
// true/false.
func (ci *ComponentInstance) GetAsString(name string) (string, bool) {
	p, ok := ci.State[name]
	if !ok {
		return "", false
	}
	return p.AsString("")
}

// ComponentManager allocates and tracks component instances (§4.6).
type ComponentManager struct {
	mu       sync.Mutex
	byID     map[string]*ComponentInstance
	counters map[string]int
}

// NewComponentManager creates an empty manager.
func NewComponentManager() *ComponentManager {
	return &ComponentManager{byID: make(map[string]*ComponentInstance), counters: make(map[string]int)}
}

// New allocates a fresh instance of def. userID, if non-empty, seeds
// the id prefix instead of the definition name; the runtime rejects a
// userID that already names a live instance, per §4.6's uniqueness
// rule.
func (m *ComponentManager) New(def *ComponentDefinition, userID string) (*ComponentInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := def.Name
	if userID != "" {
		if _, exists := m.byID[userID]; exists {
			return nil, newErr("component.New", InvalidReference, fmt.Errorf("user-id %q already in use", userID))
		}
		prefix = userID
	}
	m.counters[prefix]++
	id := fmt.Sprintf("%s_%d", prefix, m.counters[prefix])

	inst := &ComponentInstance{
		ID:     id,
		Def:    def,
		Params: make(map[string]string, len(def.Params)),
		State:  make(map[string]Property, len(def.StateVars)),
	}
	for _, p := range def.Params {
		inst.Params[p.Name] = p.Default
	}
	for _, sv := range def.StateVars {
		inst.State[sv.Name] = stateDefaultProperty(sv)
	}
	m.byID[id] = inst
	return inst, nil
}

// ByID looks up a live instance by its component-id, used by the
// dotted-path scope shortcut (§3).
func (m *ComponentManager) ByID(id string) *ComponentInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

// Release removes an instance from the manager, called when the owning
// element is destroyed.
func (m *ComponentManager) Release(id string) {
	m.mu.Lock()
	delete(m.byID, id)
	m.mu.Unlock()
}

// Len reports the number of live component instances, read by
// Runtime.Update to keep runtime.Metrics' live_component_instances
// gauge current.
func (m *ComponentManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func stateDefaultProperty(sv krb.ComponentStateVar) Property {
	switch sv.Type {
	case TagInteger:
		v, _ := strconv.ParseInt(sv.Default, 10, 64)
		return Property{Tag: TagInteger, Int: v}
	case TagFloat:
		v, _ := strconv.ParseFloat(sv.Default, 64)
		return Property{Tag: TagFloat, Float: v}
	case TagBoolean:
		return Property{Tag: TagBoolean, Bool: sv.Default == "true"}
	default:
		return Property{Tag: TagString, Str: sv.Default}
	}
}
