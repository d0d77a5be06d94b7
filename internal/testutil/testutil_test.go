package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock(t *testing.T) {
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	c := NewStepClock(start, time.Minute)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Minute), c.Now())
	assert.Equal(t, start.Add(2*time.Minute), c.Now())

	c.Reset()
	assert.Equal(t, start, c.Now())
}

func TestStepClock_Concurrent(t *testing.T) {
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	c := NewStepClock(start, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(50*time.Second), c.Now())
}

func TestFixedIDGenerator(t *testing.T) {
	g := NewFixedIDGenerator("a", "b")

	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
