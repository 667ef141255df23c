package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)}
}

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string, int](2, time.Minute)

	c.Set("a", 1)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	c.Set("a", 2)
	got, _ = c.Get("a")
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Size())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string, int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b was least recently used")
	assert.True(t, okC)
}

func TestLRUCache_TTL(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[string, int](10, time.Minute)
	c.SetClock(clock.now)

	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(30 * time.Second)
	c.Set("b", 3)
	clock.advance(45 * time.Second)

	_, ok := c.Get("a")
	assert.False(t, ok, "a expired")
	assert.Equal(t, 1, c.Size(), "expired entry removed on read")

	clock.advance(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_DeleteFuncAndKeys(t *testing.T) {
	c := NewLRUCache[string, int](10, time.Minute)
	c.Set("keep", 1)
	c.Set("drop-1", 2)
	c.Set("drop-2", 3)

	removed := c.DeleteFunc(func(k string) bool { return len(k) > 4 })
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"keep"}, c.Keys())

	c.Delete("keep")
	assert.Empty(t, c.Keys())
}

type countingCleaner struct{ calls, removes int }

func (c *countingCleaner) CleanExpired() int {
	c.calls++
	return c.removes
}

func TestManager_Sweep(t *testing.T) {
	var reported int
	m := NewManager(func(removed int) { reported += removed })
	a := &countingCleaner{removes: 2}
	b := &countingCleaner{removes: 1}
	m.Register(a)
	m.Register(b)

	assert.Equal(t, 3, m.Sweep())
	assert.Equal(t, 3, reported)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
}

func TestManager_StartStop(t *testing.T) {
	m := NewManager(nil)
	m.Register(NewLRUCache[string, int](1, time.Minute))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
}
