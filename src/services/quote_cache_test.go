package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestQuoteCacheExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)}
	c := NewQuoteCache[float64](5*time.Minute, clock.Now)

	c.Set("ZEAL", 745.5)
	v, ok := c.Get("ZEAL")
	assert.True(t, ok)
	assert.Equal(t, 745.5, v)

	clock.Advance(4*time.Minute + 59*time.Second)
	_, ok = c.Get("ZEAL")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("ZEAL")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestQuoteCacheClear(t *testing.T) {
	c := NewQuoteCache[string](time.Minute, nil)
	c.Set("a", "1")
	c.Set("b", "2")
	assert.Equal(t, 2, c.Len())
	c.Clear()
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}
