package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon-runtime/krb"
)

// TestReactiveCounterUpdatesBoundText covers §8 scenario A: a variable
// mutation must be visible through a REFERENCE-bound property on the
// very next read, once Update has re-synced the tree.
func TestReactiveCounterUpdatesBoundText(t *testing.T) {
	rt := newTestRuntime()
	rt.Variables.Set("count", "0")
	rt.Variables.TakeDirty() // seeding, not the mutation under test

	text := &Element{TypeHex: TypeHexText, Visible: true, Enabled: true}
	text.Properties = []Property{{NameHex: 0x0009, Tag: TagReference, Reference: "count"}}
	rt.Root.AddChild(text)
	rt.Registry.Alloc(text)

	require.Equal(t, "0", text.String(rt, "text", ""))

	rt.Variables.Set("count", "1")
	rt.Update()

	assert.Equal(t, "1", text.String(rt, "text", ""))
}

// TestComponentInstancesHaveIsolatedState covers §8 scenario D: two
// instances of the same component definition must never share state.
func TestComponentInstancesHaveIsolatedState(t *testing.T) {
	rt := newTestRuntime()
	def := &ComponentDefinition{
		Name:      "Counter",
		StateVars: []krb.ComponentStateVar{{Name: "count", Type: TagInteger, Default: "0"}},
	}

	a, err := rt.Components.New(def, "")
	require.NoError(t, err)
	b, err := rt.Components.New(def, "")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	a.Set("count", Property{Tag: TagInteger, Int: 5})

	av, ok := a.GetAsString("count")
	require.True(t, ok)
	bv, ok := b.GetAsString("count")
	require.True(t, ok)

	assert.Equal(t, "5", av)
	assert.Equal(t, "0", bv)
}
