package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon-runtime/krb"
)

func TestPropertyOfFallsBackToStyle(t *testing.T) {
	rt := NewRuntime()
	rt.Styles[1] = krb.StyleRecord{
		ID:   1,
		Name: "panel",
		Properties: []krb.PropertyRecord{
			{NameHex: 0x0001, Tag: TagColor, Color: [4]byte{10, 20, 30, 255}},
		},
	}
	el := &Element{TypeHex: TypeHexContainer, StyleRef: 1, Visible: true, Enabled: true}

	p, ok := rt.PropertyOf(el, "bg_color")
	require.True(t, ok)
	c, ok := p.AsColor([4]byte{})
	require.True(t, ok)
	assert.Equal(t, [4]byte{10, 20, 30, 255}, c)
}

func TestPropertyOfOwnPropertyWinsOverStyle(t *testing.T) {
	rt := NewRuntime()
	rt.Styles[1] = krb.StyleRecord{
		ID: 1,
		Properties: []krb.PropertyRecord{
			{NameHex: 0x0001, Tag: TagColor, Color: [4]byte{1, 1, 1, 1}},
		},
	}
	el := &Element{TypeHex: TypeHexContainer, StyleRef: 1, Visible: true, Enabled: true}
	el.Properties = []Property{{NameHex: 0x0001, Tag: TagColor, Color: [4]byte{9, 9, 9, 9}}}

	p, _ := rt.PropertyOf(el, "bg_color")
	c, _ := p.AsColor([4]byte{})
	assert.Equal(t, [4]byte{9, 9, 9, 9}, c)
}

func TestRegistryDestroyCascadesChildrenFirst(t *testing.T) {
	rt := NewRuntime()
	root := &Element{TypeHex: TypeHexContainer}
	rt.Registry.Alloc(root)
	child := &Element{TypeHex: TypeHexText}
	root.AddChild(child)
	rt.Registry.Alloc(child)
	grandchild := &Element{TypeHex: TypeHexText}
	child.AddChild(grandchild)
	rt.Registry.Alloc(grandchild)

	var order []uint32
	rt.Registry.Destroy(root, func(e *Element) { order = append(order, e.ID) })

	require.Len(t, order, 3)
	assert.Equal(t, grandchild.ID, order[0])
	assert.Equal(t, child.ID, order[1])
	assert.Equal(t, root.ID, order[2])
	assert.Equal(t, 0, rt.Registry.Len())
	assert.Equal(t, Destroyed, root.State)
}

func TestCheckTreeIntegrityDetectsDuplicateChild(t *testing.T) {
	rt := NewRuntime()
	root := &Element{TypeHex: TypeHexContainer}
	rt.Registry.Alloc(root)
	child := &Element{TypeHex: TypeHexText}
	rt.Registry.Alloc(child)
	child.Parent = root
	root.Children = []*Element{child, child}

	err := rt.Registry.CheckTreeIntegrity()
	assert.Error(t, err)
}

func TestComponentScopeWalkPrefersStateOverGlobal(t *testing.T) {
	rt := NewRuntime()
	rt.Variables.Set("label", "global")

	def := &ComponentDefinition{Name: "Widget"}
	inst, err := rt.Components.New(def, "")
	require.NoError(t, err)
	inst.State["label"] = Property{Tag: TagString, Str: "local"}

	el := &Element{TypeHex: TypeHexContainer, Component: inst}
	v, ok := el.walkScope(rt, "label")
	require.True(t, ok)
	assert.Equal(t, "local", v)
}

func TestComponentScopeWalkFallsBackToGlobalRegistry(t *testing.T) {
	rt := NewRuntime()
	rt.Variables.Set("theme", "dark")
	el := &Element{TypeHex: TypeHexContainer}
	v, ok := el.walkScope(rt, "theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}
