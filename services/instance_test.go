package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/System-rat/mcsmp/internal/models"
	"github.com/System-rat/mcsmp/internal/properties"
	"github.com/System-rat/mcsmp/internal/versions"
	"github.com/System-rat/mcsmp/internal/versions/versionstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOptions(t *testing.T) (*versionstest.Launcher, InstanceOptions) {
	t.Helper()
	l := versionstest.New(t, []string{"1.20", "1.19"}, []string{"23w31a"})
	return l, InstanceOptions{Catalog: l.Catalog(), PollInterval: 10 * time.Millisecond, VerifyChecksum: true}
}

func createInstance(t *testing.T, opts InstanceOptions, name, version string) (*ServerInstance, string) {
	t.Helper()
	ctx := context.Background()
	v, err := opts.Catalog.Resolve(ctx, version)
	require.NoError(t, err)
	inst, err := NewInstance(v, name, opts)
	require.NoError(t, err)
	parent := t.TempDir()
	require.NoError(t, inst.CreateAt(ctx, parent))
	t.Cleanup(inst.StopWatcher)
	return inst, parent
}

func TestCreateAt(t *testing.T) {
	l, opts := newOptions(t)
	var progressed int
	opts.Progress = func(total int64) func(int) {
		assert.EqualValues(t, len(versionstest.Jar("1.19")), total)
		return func(n int) { progressed += n }
	}
	inst, parent := createInstance(t, opts, "alpha", "1.19")

	dir := filepath.Join(parent, "alpha")
	assert.True(t, inst.Exists())
	assert.Equal(t, dir, inst.PhysicalPath())
	assert.True(t, inst.WatcherRunning())

	eula, err := os.ReadFile(filepath.Join(dir, EulaFile))
	require.NoError(t, err)
	assert.Equal(t, "eula=true\n", string(eula))
	assert.FileExists(t, filepath.Join(dir, PropertiesFile))
	jar, err := os.ReadFile(filepath.Join(dir, "server.jar"))
	require.NoError(t, err)
	assert.Equal(t, versionstest.Jar("1.19"), jar)
	assert.NoFileExists(t, filepath.Join(dir, "server.jar.part"))
	assert.Equal(t, len(jar), progressed)
	assert.EqualValues(t, 1, l.Downloads.Load())
}

func TestCreateAtAlreadyExists(t *testing.T) {
	_, opts := newOptions(t)
	parent := t.TempDir()
	dir := filepath.Join(parent, "alpha")
	require.NoError(t, os.Mkdir(dir, 0755))

	v, err := opts.Catalog.Resolve(context.Background(), "1.20")
	require.NoError(t, err)
	inst, err := NewInstance(v, "alpha", opts)
	require.NoError(t, err)

	err = inst.CreateAt(context.Background(), parent)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
	assert.False(t, inst.Exists())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateAtCleansUpOnFailure(t *testing.T) {
	l, opts := newOptions(t)
	l.BadChecksum.Store(true)

	v, err := opts.Catalog.Resolve(context.Background(), "1.20")
	require.NoError(t, err)
	inst, err := NewInstance(v, "alpha", opts)
	require.NoError(t, err)
	parent := t.TempDir()

	err = inst.CreateAt(context.Background(), parent)
	assert.ErrorIs(t, err, models.ErrIntegrityMismatch)
	assert.NoDirExists(t, filepath.Join(parent, "alpha"))
	assert.False(t, inst.Exists())
}

func TestNewInstanceRejectsBadNames(t *testing.T) {
	v := versions.NewVersion("1.20", versions.ChannelRelease, "", nil)
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := NewInstance(v, name, InstanceOptions{})
		assert.ErrorIs(t, err, models.ErrValidation, name)
	}
}

func TestDeleteInstance(t *testing.T) {
	_, opts := newOptions(t)
	inst, parent := createInstance(t, opts, "alpha", "1.20")

	require.NoError(t, inst.Delete())
	assert.False(t, inst.Exists())
	assert.False(t, inst.WatcherRunning())
	assert.NoDirExists(t, filepath.Join(parent, "alpha"))
	assert.NoError(t, inst.Delete())
}

func TestDownloadVersionAndLatest(t *testing.T) {
	l, opts := newOptions(t)
	ctx := context.Background()
	inst, _ := createInstance(t, opts, "alpha", "1.19")

	need, err := inst.NeedsUpdate(ctx, false)
	require.NoError(t, err)
	assert.True(t, need)

	updated, err := inst.DownloadLatest(ctx, false)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, "1.20", inst.Version().ID)

	updated, err = inst.DownloadLatest(ctx, false)
	require.NoError(t, err)
	assert.False(t, updated)
	need, err = inst.NeedsUpdate(ctx, false)
	require.NoError(t, err)
	assert.False(t, need)

	updated, err = inst.DownloadVersion(ctx, "1.20")
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = inst.DownloadVersion(ctx, "23w31a")
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, versions.ChannelSnapshot, inst.Version().Channel)
	assert.EqualValues(t, 3, l.Downloads.Load())

	jar, err := os.ReadFile(filepath.Join(inst.PhysicalPath(), "server.jar"))
	require.NoError(t, err)
	assert.Equal(t, versionstest.Jar("23w31a"), jar)

	_, err = inst.DownloadVersion(ctx, "not-a-version")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "23w31a", inst.Version().ID)
}

func TestWriteProperties(t *testing.T) {
	_, opts := newOptions(t)
	inst, _ := createInstance(t, opts, "alpha", "1.20")

	require.NoError(t, inst.Properties().Set("max_players", 5))
	require.NoError(t, inst.WriteProperties())
	assert.True(t, inst.WatcherRunning())

	data, err := os.ReadFile(filepath.Join(inst.PhysicalPath(), PropertiesFile))
	require.NoError(t, err)
	assert.Equal(t, "max-players=5\n", string(data))
}

func TestApplyPropertiesPersistsOverPendingEdit(t *testing.T) {
	_, opts := newOptions(t)
	inst, _ := createInstance(t, opts, "alpha", "1.20")

	path := filepath.Join(inst.PhysicalPath(), PropertiesFile)
	require.NoError(t, os.WriteFile(path, []byte("max-players=99\n"), 0644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	require.NoError(t, inst.ApplyProperties(map[properties.Key]any{"max_players": 7}))
	assert.True(t, inst.WatcherRunning())

	assert.Never(t, func() bool {
		n, err := inst.Properties().Int("max_players")
		return err != nil || n != 7
	}, 200*time.Millisecond, 10*time.Millisecond)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max-players=7\n")
}

func TestApplyPropertiesErrors(t *testing.T) {
	_, opts := newOptions(t)
	inst, _ := createInstance(t, opts, "alpha", "1.20")
	path := filepath.Join(inst.PhysicalPath(), PropertiesFile)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = inst.ApplyProperties(map[properties.Key]any{"max_players": "many"})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.True(t, inst.WatcherRunning())
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	v := versions.NewVersion("1.20", versions.ChannelRelease, "", nil)
	fresh, err := NewInstance(v, "beta", opts)
	require.NoError(t, err)
	err = fresh.ApplyProperties(map[properties.Key]any{"max_players": 7})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRefreshPropertiesRequiresCreatedInstance(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile(PropertiesFile, []byte("motd=from-cwd\n"), 0644))

	v := versions.NewVersion("1.20", versions.ChannelRelease, "", nil)
	inst, err := NewInstance(v, "alpha", InstanceOptions{})
	require.NoError(t, err)
	assert.False(t, inst.Exists())

	err = inst.RefreshProperties()
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = inst.Properties().String(properties.Key("motd"))
	assert.Error(t, err)
}

func TestExternalEditIsReloaded(t *testing.T) {
	_, opts := newOptions(t)
	inst, _ := createInstance(t, opts, "alpha", "1.20")

	path := filepath.Join(inst.PhysicalPath(), PropertiesFile)
	require.NoError(t, os.WriteFile(path, []byte("motd=edited\n"), 0644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Eventually(t, func() bool {
		motd, err := inst.Properties().String(properties.Key("motd"))
		return err == nil && motd == "edited"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoadInstance(t *testing.T) {
	_, opts := newOptions(t)
	inst, _ := createInstance(t, opts, "alpha", "23w31a")
	require.NoError(t, inst.Properties().Set("pvp", false))
	require.NoError(t, inst.WriteProperties())

	loaded, err := LoadInstance(context.Background(), inst.PhysicalPath(), opts)
	require.NoError(t, err)
	assert.Equal(t, "alpha", loaded.Name())
	assert.True(t, loaded.Version().Equal(inst.Version()))
	assert.True(t, loaded.Exists())
	pvp, err := loaded.Properties().Get("pvp")
	require.NoError(t, err)
	assert.Equal(t, false, pvp)
}

func TestLoadInstanceWithoutJar(t *testing.T) {
	_, opts := newOptions(t)
	_, err := LoadInstance(context.Background(), t.TempDir(), opts)
	assert.Error(t, err)
}

func TestAutostartMarker(t *testing.T) {
	_, opts := newOptions(t)
	inst, _ := createInstance(t, opts, "alpha", "1.20")

	assert.False(t, inst.Autostart())
	require.NoError(t, inst.SetAutostart(true))
	assert.True(t, inst.Autostart())
	require.NoError(t, inst.SetAutostart(false))
	assert.False(t, inst.Autostart())
	require.NoError(t, inst.SetAutostart(false))
}
