package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime() *Runtime {
	rt := NewRuntime()
	rt.Root = &Element{TypeHex: TypeHexContainer, Visible: true, Enabled: true}
	rt.Registry.Alloc(rt.Root)
	return rt
}

func TestExpandForProducesOneClonePerArrayItem(t *testing.T) {
	rt := newTestRuntime()

	forEl := &Element{TypeHex: TypeHexFor, Visible: true, Enabled: true}
	forEl.Properties = []Property{
		{NameHex: 0x000F, Tag: TagString, Str: "item"}, // variable
		{NameHex: 0x0010, Tag: TagString, Str: "[a,b,c]"}, // array
	}
	rt.Root.AddChild(forEl)
	rt.Registry.Alloc(forEl)

	row := &Element{TypeHex: TypeHexText, Visible: true, Enabled: true}
	row.Properties = []Property{{NameHex: 0x0009, Tag: TagReference, Reference: "item"}}
	forEl.AddChild(row)

	rt.ExpandDirectives(rt.Root)

	require.Len(t, rt.Root.Children, 4) // the @for node itself plus 3 generated siblings
	var texts []string
	for _, c := range rt.Root.Children {
		if c.GeneratedByFor {
			p, ok := c.Property("text")
			require.True(t, ok)
			texts = append(texts, p.Str)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestExpandForIsIdempotent(t *testing.T) {
	rt := newTestRuntime()
	forEl := &Element{TypeHex: TypeHexFor, Visible: true, Enabled: true}
	forEl.Properties = []Property{
		{NameHex: 0x000F, Tag: TagString, Str: "item"},
		{NameHex: 0x0010, Tag: TagString, Str: "[x,y]"},
	}
	rt.Root.AddChild(forEl)
	rt.Registry.Alloc(forEl)
	forEl.AddChild(&Element{TypeHex: TypeHexText, Visible: true, Enabled: true})

	rt.ExpandDirectives(rt.Root)
	firstCount := len(rt.Root.Children)
	rt.ExpandDirectives(rt.Root)
	secondCount := len(rt.Root.Children)

	assert.Equal(t, firstCount, secondCount)
}

func TestExpandIfSkipsWhenConditionFalse(t *testing.T) {
	rt := newTestRuntime()
	ifEl := &Element{TypeHex: TypeHexIf, Visible: true, Enabled: true}
	ifEl.Properties = []Property{{NameHex: 0x0011, Tag: TagString, Str: "1 == 2"}}
	rt.Root.AddChild(ifEl)
	rt.Registry.Alloc(ifEl)
	ifEl.AddChild(&Element{TypeHex: TypeHexText, Visible: true, Enabled: true})

	rt.ExpandDirectives(rt.Root)

	require.Len(t, rt.Root.Children, 1) // only the @if node, nothing generated
}

func TestExpandIfGeneratesWhenConditionTrue(t *testing.T) {
	rt := newTestRuntime()
	ifEl := &Element{TypeHex: TypeHexIf, Visible: true, Enabled: true}
	ifEl.Properties = []Property{{NameHex: 0x0011, Tag: TagString, Str: "1 == 1"}}
	rt.Root.AddChild(ifEl)
	rt.Registry.Alloc(ifEl)
	ifEl.AddChild(&Element{TypeHex: TypeHexText, Visible: true, Enabled: true})

	rt.ExpandDirectives(rt.Root)

	require.Len(t, rt.Root.Children, 2)
	assert.True(t, rt.Root.Children[1].GeneratedByFor)
}
