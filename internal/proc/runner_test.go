package proc

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/System-rat/mcsmp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstance struct {
	dir      string
	exists   bool
	watching atomic.Int32
}

func (f *fakeInstance) Name() string         { return "alpha" }
func (f *fakeInstance) PhysicalPath() string { return f.dir }
func (f *fakeInstance) Exists() bool         { return f.exists }
func (f *fakeInstance) StartWatcher()        { f.watching.Add(1) }

// fakeJava 写一个代替 java 的 shell 脚本
func fakeJava(t *testing.T, body string) (string, *fakeInstance) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	java := filepath.Join(dir, "java")
	require.NoError(t, os.WriteFile(java, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return java, &fakeInstance{dir: dir, exists: true}
}

func TestNewRunnerRequiresExistingInstance(t *testing.T) {
	_, err := NewRunner(&fakeInstance{dir: t.TempDir()}, RunnerConfig{})
	assert.Error(t, err)
}

func TestLogCapacity(t *testing.T) {
	java, inst := fakeJava(t, "for l in a b c d e; do echo $l; done")
	r, err := NewRunner(inst, RunnerConfig{Java: java, LogLimit: 3})
	require.NoError(t, err)

	require.NoError(t, r.Start())
	r.Wait()

	assert.Equal(t, []string{"c", "d", "e"}, r.Log())
	assert.Equal(t, []string{"e"}, r.Last(1))
	assert.False(t, r.Running())
	assert.Equal(t, models.StatusExited, r.GetDetail().Status)
	assert.EqualValues(t, 1, inst.watching.Load())
}

func TestStderrIsCaptured(t *testing.T) {
	java, inst := fakeJava(t, "echo out; echo err 1>&2; echo out2")
	var lines atomic.Int32
	r, err := NewRunner(inst, RunnerConfig{Java: java, OnLine: func(string) { lines.Add(1) }})
	require.NoError(t, err)

	require.NoError(t, r.Start())
	r.Wait()
	assert.Equal(t, []string{"out", "err", "out2"}, r.Log())
	assert.EqualValues(t, 3, lines.Load())
}

func TestStopSendsShutdownCommand(t *testing.T) {
	java, inst := fakeJava(t, `echo ready
while read line; do
  echo "got $line"
  if [ "$line" = stop ]; then exit 0; fi
done`)
	exited := make(chan struct{})
	r, err := NewRunner(inst, RunnerConfig{Java: java, OnExit: func(*Runner) { close(exited) }})
	require.NoError(t, err)

	require.NoError(t, r.Start())
	require.NoError(t, r.Start(), "start while running is a no-op")
	assert.True(t, r.Running())
	assert.NotZero(t, r.GetDetail().Pid)

	require.NoError(t, r.SendText("say hi\n"))
	assert.Eventually(t, func() bool {
		return len(r.Log()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, r.Stop())
	assert.False(t, r.Running())
	assert.Equal(t, []string{"ready", "got say hi", "got stop"}, r.Log())
	assert.Equal(t, models.StatusStopped, r.GetDetail().Status)
	<-exited

	assert.NoError(t, r.Stop(), "stop when idle is a no-op")
	assert.NoError(t, r.SendText("ignored\n"))
}

func TestStopContextKills(t *testing.T) {
	java, inst := fakeJava(t, "exec sleep 30")
	r, err := NewRunner(inst, RunnerConfig{Java: java})
	require.NoError(t, err)
	require.NoError(t, r.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = r.StopContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, r.Running())
}

func TestArgumentsOverride(t *testing.T) {
	java, inst := fakeJava(t, `for a in "$@"; do echo "$a"; done`)
	require.NoError(t, os.WriteFile(filepath.Join(inst.dir, ArgumentsFile), []byte("-Xmx2G\n-Dmotd='a b'\n"), 0644))
	r, err := NewRunner(inst, RunnerConfig{Java: java})
	require.NoError(t, err)

	require.NoError(t, r.Start())
	r.Wait()
	assert.Equal(t, []string{"-Xmx2G", "-Dmotd=a b", "-jar", filepath.Join(inst.dir, JarFile)}, r.Log())
}

func TestDefaultArguments(t *testing.T) {
	java, inst := fakeJava(t, `for a in "$@"; do echo "$a"; done`)
	r, err := NewRunner(inst, RunnerConfig{Java: java, JvmArgs: NewJVMArguments().WithMaxMemory("2G")})
	require.NoError(t, err)

	require.NoError(t, r.Start())
	r.Wait()
	assert.Equal(t, []string{"-Xms1G", "-Xmx2G", "-jar", filepath.Join(inst.dir, JarFile)}, r.Log())
}

func TestSpawnFailure(t *testing.T) {
	inst := &fakeInstance{dir: t.TempDir(), exists: true}
	r, err := NewRunner(inst, RunnerConfig{Java: filepath.Join(inst.dir, "no-such-java")})
	require.NoError(t, err)

	err = r.Start()
	assert.ErrorIs(t, err, models.ErrProcessSpawn)
	assert.False(t, r.Running())
	assert.Equal(t, models.StatusError, r.GetDetail().Status)
	assert.EqualValues(t, 0, inst.watching.Load())
}
