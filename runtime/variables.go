// runtime/variables.go
package runtime

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// VariableRegistry is the flat name→value map driving reactivity (§4.3).
// All mutators run on the single runtime thread (§5); Set is not meant
// to be called concurrently, matching the teacher's single-threaded
// render loop.
type VariableRegistry struct {
	mu     sync.RWMutex
	values map[string]string

	dirty      bool
	scopeCache *lru.Cache[string, string]
}

const scopeCacheSize = 512

// NewVariableRegistry creates an empty registry. The optional
// scope-resolution cache named in SPEC_FULL.md's Domain Stack (backed
// by hashicorp/golang-lru) is allocated eagerly but stays empty until
// (*Element).walkScope populates it; Set purges it on every mutation
// so it can never outlive the value it memoized.
func NewVariableRegistry() *VariableRegistry {
	cache, _ := lru.New[string, string](scopeCacheSize)
	return &VariableRegistry{values: make(map[string]string), scopeCache: cache}
}

// Get returns the current value of name, or ("", false) if unset.
func (v *VariableRegistry) Get(name string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.values[name]
	return val, ok
}

// Set stores or replaces name's value and marks the registry dirty,
// satisfying §4.3's full-invalidation floor: the next update pass must
// treat every element as render-dirty. The scope cache is purged
// unconditionally rather than by key, since a changed global can shadow
// or unshadow component-scope lookups that depend on the walk order.
func (v *VariableRegistry) Set(name, value string) {
	v.mu.Lock()
	v.values[name] = value
	v.dirty = true
	v.scopeCache.Purge()
	v.mu.Unlock()
}

// TakeDirty reports whether any Set happened since the last call and
// clears the flag, letting the update loop decide once per frame
// whether to re-run directive expansion and mark the tree render-dirty.
func (v *VariableRegistry) TakeDirty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	d := v.dirty
	v.dirty = false
	return d
}

func (v *VariableRegistry) cacheGet(key string) (string, bool) {
	return v.scopeCache.Get(key)
}

func (v *VariableRegistry) cachePut(key, val string) {
	v.scopeCache.Add(key, val)
}
