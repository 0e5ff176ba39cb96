package watcher

import (
	"errors"
	"testing"
	"time"

	"portwatch/pkg/netstat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSampler replays a settable port set.
type fakeSampler struct {
	ports []netstat.Port
	err   error
}

func (f *fakeSampler) Sample() ([]netstat.Port, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]netstat.Port, len(f.ports))
	copy(out, f.ports)
	return out, nil
}

func port(n int, iface string) netstat.Port {
	return netstat.Port{Number: n, Interface: iface}
}

func TestInitTakesBaselineWithoutEvents(t *testing.T) {
	sampler := &fakeSampler{ports: []netstat.Port{port(3000, "0.0.0.0"), port(5432, "127.0.0.1")}}
	w := New(sampler, time.Second)

	var events []netstat.Port
	w.OnOpened(func(p netstat.Port) { events = append(events, p) })
	w.OnClosed(func(p netstat.Port) { events = append(events, p) })

	require.NoError(t, w.Init())
	assert.Empty(t, events, "baseline must not fire events")
	assert.Len(t, w.Known(), 2)
}

func TestCheckReportsSymmetricDifference(t *testing.T) {
	sampler := &fakeSampler{ports: []netstat.Port{port(3000, "0.0.0.0"), port(5432, "127.0.0.1")}}
	w := New(sampler, time.Second)
	require.NoError(t, w.Init())

	// 5432 goes away, 8080 comes up, 3000 stays.
	sampler.ports = []netstat.Port{port(3000, "0.0.0.0"), port(8080, "0.0.0.0")}

	opened, closed, err := w.Check()
	require.NoError(t, err)
	assert.Equal(t, []netstat.Port{port(8080, "0.0.0.0")}, opened)
	assert.Equal(t, []netstat.Port{port(5432, "127.0.0.1")}, closed)
}

func TestCheckTwiceWithoutChangeIsQuiet(t *testing.T) {
	sampler := &fakeSampler{ports: []netstat.Port{port(3000, "0.0.0.0")}}
	w := New(sampler, time.Second)
	require.NoError(t, w.Init())

	sampler.ports = []netstat.Port{port(3000, "0.0.0.0"), port(9090, "::")}

	opened, closed, err := w.Check()
	require.NoError(t, err)
	assert.Len(t, opened, 1)
	assert.Empty(t, closed)

	opened, closed, err = w.Check()
	require.NoError(t, err)
	assert.Empty(t, opened, "second pass over the same state must be quiet")
	assert.Empty(t, closed)
}

func TestInterfaceChangeIsCloseThenOpen(t *testing.T) {
	sampler := &fakeSampler{ports: []netstat.Port{port(4000, "127.0.0.1")}}
	w := New(sampler, time.Second)
	require.NoError(t, w.Init())

	// Same number, rebound to the wildcard interface.
	sampler.ports = []netstat.Port{port(4000, "0.0.0.0")}

	opened, closed, err := w.Check()
	require.NoError(t, err)
	assert.Equal(t, []netstat.Port{port(4000, "0.0.0.0")}, opened)
	assert.Equal(t, []netstat.Port{port(4000, "127.0.0.1")}, closed)
}

func TestCallbacksFireInRegistrationOrder(t *testing.T) {
	sampler := &fakeSampler{}
	w := New(sampler, time.Second)
	require.NoError(t, w.Init())

	var order []string
	w.OnOpened(func(netstat.Port) { order = append(order, "first") })
	w.OnOpened(func(netstat.Port) { order = append(order, "second") })

	sampler.ports = []netstat.Port{port(3000, "0.0.0.0")}
	_, _, err := w.Check()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestCheckPropagatesSamplerError(t *testing.T) {
	sampler := &fakeSampler{ports: []netstat.Port{port(3000, "0.0.0.0")}}
	w := New(sampler, time.Second)
	require.NoError(t, w.Init())

	sampler.err = errors.New("netlink unavailable")
	_, _, err := w.Check()
	require.Error(t, err)

	// The known set must survive a failed pass.
	sampler.err = nil
	opened, closed, err := w.Check()
	require.NoError(t, err)
	assert.Empty(t, opened)
	assert.Empty(t, closed)
}

func TestKnownReturnsSortedSnapshot(t *testing.T) {
	sampler := &fakeSampler{ports: []netstat.Port{port(9000, "0.0.0.0"), port(80, "0.0.0.0"), port(443, "::")}}
	w := New(sampler, time.Second)
	require.NoError(t, w.Init())

	known := w.Known()
	require.Len(t, known, 3)
	assert.Equal(t, 80, known[0].Number)
	assert.Equal(t, 443, known[1].Number)
	assert.Equal(t, 9000, known[2].Number)
}
