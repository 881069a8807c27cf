package proc

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogBufferDropsOldest(t *testing.T) {
	b := NewLogBuffer(3)
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		b.Append(l)
	}
	assert.Equal(t, []string{"c", "d", "e"}, b.Snapshot())
	assert.Equal(t, []string{"d", "e"}, b.Last(2))
	assert.Equal(t, []string{"c", "d", "e"}, b.Last(10))
	assert.Equal(t, 3, b.Len())

	b.Reset()
	assert.Empty(t, b.Snapshot())
}

func TestLogBufferSnapshotIsCopy(t *testing.T) {
	b := NewLogBuffer(2)
	b.Append("a")
	snap := b.Snapshot()
	b.Append("b")
	b.Append("c")
	assert.Equal(t, []string{"a"}, snap)
}

func TestLogBufferConcurrentReads(t *testing.T) {
	b := NewLogBuffer(50)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Append(fmt.Sprint(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			snap := b.Snapshot()
			assert.LessOrEqual(t, len(snap), 50)
		}
	}()
	wg.Wait()
	assert.Equal(t, "999", b.Last(1)[0])
}

func TestJVMArguments(t *testing.T) {
	assert.Equal(t, "-Xms1G -Xmx1G", NewJVMArguments().String())
	a := NewJVMArguments().WithInitialMemory("512M").WithMaxMemory("4G").WithAggressive(true)
	assert.Contains(t, a.String(), "-Xms512M -Xmx4G -XX:+UseG1GC")
	assert.Len(t, a.Fields(), 12)
}
