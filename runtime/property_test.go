package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyAsIntConversions(t *testing.T) {
	cases := []struct {
		name string
		p    Property
		want int64
	}{
		{"integer passthrough", Property{Tag: TagInteger, Int: 42}, 42},
		{"float truncates", Property{Tag: TagFloat, Float: 3.9}, 3},
		{"decimal string", Property{Tag: TagString, Str: "17"}, 17},
		{"hex string", Property{Tag: TagString, Str: "0x1A"}, 26},
		{"bool true is 1", Property{Tag: TagBoolean, Bool: true}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, ok := c.p.AsInt(0)
			require.True(t, ok)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestPropertyAsBoolCoercion(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"true", true}, {"1", true}, {"yes", true},
		{"false", false}, {"0", false}, {"no", false}, {"", false},
	}
	for _, c := range cases {
		v, ok := (Property{Tag: TagString, Str: c.s}).AsBool(false)
		require.True(t, ok, c.s)
		assert.Equal(t, c.want, v, c.s)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want [4]byte
	}{
		{"#FF0000", [4]byte{0xFF, 0, 0, 0xFF}},
		{"#00FF0080", [4]byte{0, 0xFF, 0, 0x80}},
		{"0x0000FF", [4]byte{0, 0, 0xFF, 0xFF}},
		{"red", [4]byte{0xFF, 0, 0, 0xFF}},
		{"transparent", [4]byte{0, 0, 0, 0}},
	}
	for _, c := range cases {
		got, ok := ParseColor(c.in)
		require.True(t, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseColorRejectsGarbage(t *testing.T) {
	_, ok := ParseColor("not-a-color")
	assert.False(t, ok)
}
