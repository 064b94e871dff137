package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(capacity int) (*clientLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	cl := newClientLimiter(10, 10)
	cl.now = clock.now
	cl.max = capacity
	return cl, clock
}

func TestClientLimiter_SweepsIdleClients(t *testing.T) {
	cl, clock := newTestLimiter(maxTrackedClients)

	require.True(t, cl.allow("10.0.0.1"))
	require.True(t, cl.allow("10.0.0.2"))
	clock.advance(9 * time.Minute)
	require.True(t, cl.allow("10.0.0.2"))

	clock.advance(3 * time.Minute)
	require.True(t, cl.allow("10.0.0.3"))

	assert.NotContains(t, cl.m, "10.0.0.1")
	assert.Contains(t, cl.m, "10.0.0.2")
	assert.Contains(t, cl.m, "10.0.0.3")
}

func TestClientLimiter_CapEvictsLeastRecentlySeen(t *testing.T) {
	cl, clock := newTestLimiter(2)

	for _, ip := range []string{"a", "b", "c"} {
		require.True(t, cl.allow(ip))
		clock.advance(time.Second)
	}

	assert.Len(t, cl.m, 2)
	assert.NotContains(t, cl.m, "a")
}

func TestClientLimiter_LimitsPerClient(t *testing.T) {
	cl := newClientLimiter(0.001, 1)

	assert.True(t, cl.allow("a"))
	assert.False(t, cl.allow("a"))
	assert.True(t, cl.allow("b"))
}
