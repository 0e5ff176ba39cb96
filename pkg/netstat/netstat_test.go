package netstat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWildcard(t *testing.T) {
	assert.True(t, IsWildcard("0.0.0.0"))
	assert.True(t, IsWildcard("::"))
	assert.True(t, IsWildcard("*"))

	assert.False(t, IsWildcard("127.0.0.1"))
	assert.False(t, IsWildcard("::1"))
	assert.False(t, IsWildcard("10.0.0.5"))
	assert.False(t, IsWildcard(""))
}

func TestPortKeyIncludesInterface(t *testing.T) {
	a := Port{Number: 3000, Interface: "0.0.0.0"}
	b := Port{Number: 3000, Interface: "127.0.0.1"}

	assert.Equal(t, "0.0.0.0:3000", a.Key())
	assert.NotEqual(t, a.Key(), b.Key(), "the same number on different interfaces is two endpoints")
}

func TestSortPorts(t *testing.T) {
	ports := []Port{
		{Number: 8080, Interface: "::"},
		{Number: 80, Interface: "0.0.0.0"},
		{Number: 8080, Interface: "0.0.0.0"},
	}
	SortPorts(ports)

	assert.Equal(t, []Port{
		{Number: 80, Interface: "0.0.0.0"},
		{Number: 8080, Interface: "0.0.0.0"},
		{Number: 8080, Interface: "::"},
	}, ports)
}
