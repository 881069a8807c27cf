package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 10 * time.Millisecond

func touch(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestExternalChangeFiresOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	touch(t, path, "pvp=true\n", base)

	var calls atomic.Int32
	var seen atomic.Value
	w, err := New(path, tick, func(p string, mod time.Time) {
		assert.Equal(t, path, p)
		seen.Store(mod)
		calls.Add(1)
	})
	require.NoError(t, err)
	w.Start()
	defer w.Stop()
	assert.True(t, w.Running())

	changed := base.Add(time.Minute)
	touch(t, path, "pvp=false\n", changed)

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, tick)
	time.Sleep(5 * tick)
	assert.EqualValues(t, 1, calls.Load())
	assert.True(t, changed.Equal(seen.Load().(time.Time)))

	// 内容不变，只改修改时间也会触发
	touch(t, path, "pvp=false\n", changed.Add(time.Minute))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, tick)
}

func TestOwnWriteDoesNotFire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	touch(t, path, "pvp=true\n", base)

	var calls atomic.Int32
	w, err := New(path, tick, func(string, time.Time) { calls.Add(1) })
	require.NoError(t, err)
	w.Start()

	w.Stop()
	assert.False(t, w.Running())
	touch(t, path, "pvp=false\n", base.Add(time.Minute))
	w.Start()

	time.Sleep(10 * tick)
	w.Stop()
	assert.EqualValues(t, 0, calls.Load())
}

func TestStopsWhenFileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	touch(t, path, "", time.Now())

	w, err := New(path, tick, nil)
	require.NoError(t, err)
	w.Start()
	require.NoError(t, os.Remove(path))

	assert.Eventually(t, func() bool { return !w.Running() }, time.Second, tick)
	w.Stop()
}

func TestStoppedWatcherDoesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	touch(t, path, "", time.Now().Add(-time.Hour))

	var calls atomic.Int32
	w, err := New(path, tick, func(string, time.Time) { calls.Add(1) })
	require.NoError(t, err)
	assert.False(t, w.Running())
	w.Stop()

	touch(t, path, "x", time.Now())
	time.Sleep(5 * tick)
	assert.EqualValues(t, 0, calls.Load())
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), tick, nil)
	assert.Error(t, err)
}
