package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	k, err := Parse("KeyD")
	require.NoError(t, err)
	assert.Equal(t, PhysicalKey("KeyD"), k)

	k, err = Parse(" space ")
	require.NoError(t, err)
	assert.Equal(t, Space, k)

	k, err = Parse("num7")
	require.NoError(t, err)
	assert.Equal(t, PhysicalKey("Num7"), k)

	_, err = Parse("KeyÄ")
	assert.Error(t, err)
}

func TestDisplayAndName(t *testing.T) {
	assert.Equal(t, "D", PhysicalKey("KeyD").Display())
	assert.Equal(t, "F11", PhysicalKey("F11").Display())
	assert.Equal(t, "Bogus", PhysicalKey("Bogus").Display())
	assert.Equal(t, "DF", Name([]PhysicalKey{"KeyD", "KeyF"}))
	assert.False(t, PhysicalKey("Bogus").Valid())
	assert.True(t, ShiftLeft.Valid())
}

func TestFromTerminal(t *testing.T) {
	tests := []struct {
		in   string
		want PhysicalKey
		ok   bool
	}{
		{"d", "KeyD", true},
		{"D", "KeyD", true},
		{" ", Space, true},
		{"space", Space, true},
		{"enter", Return, true},
		{"3", "Num3", true},
		{"f5", "F5", true},
		{";", SemiColon, true},
		{"ctrl+c", "", false},
	}
	for _, tt := range tests {
		got, ok := FromTerminal(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
