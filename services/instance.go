package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/System-rat/mcsmp/internal/archive"
	"github.com/System-rat/mcsmp/internal/logger"
	"github.com/System-rat/mcsmp/internal/models"
	"github.com/System-rat/mcsmp/internal/proc"
	"github.com/System-rat/mcsmp/internal/properties"
	"github.com/System-rat/mcsmp/internal/versions"
	"github.com/System-rat/mcsmp/internal/watcher"
)

const (
	PropertiesFile = "server.properties"
	EulaFile       = "eula.txt"
	AutostartFile  = ".autostart"
	VersionEntry   = "version.json"

	eulaContent = "eula=true\n"
	partSuffix  = ".part"
)

// VersionCatalog 实例和连接器使用的版本目录
type VersionCatalog interface {
	Resolve(ctx context.Context, id string) (*versions.Version, error)
	Latest(ctx context.Context, channel versions.Channel) (*versions.Version, error)
	Invalidate()
}

// ProgressFactory 根据声明的文件大小创建下载进度回调
type ProgressFactory func(total int64) func(int)

/**
 * Server instance options
 * @property {VersionCatalog} Catalog - Version resolution
 * @property {archive.Reader} Archive - Reads version.json from server.jar
 * @property {time.Duration} PollInterval - server.properties polling interval
 * @property {bool} VerifyChecksum - Check the SHA-1 of every download
 * @property {ProgressFactory} Progress - Download progress reporting, may be nil
 */
type InstanceOptions struct {
	Catalog        VersionCatalog
	Archive        archive.Reader
	PollInterval   time.Duration
	VerifyChecksum bool
	Progress       ProgressFactory
}

/**
 * A game server instance and its directory
 * @description
 * - Not materialized until CreateAt or LoadInstance, PhysicalPath is empty before that
 * - server.properties is kept in sync by a ConfigWatcher once the directory exists
 */
type ServerInstance struct {
	mu         sync.RWMutex
	version    *versions.Version
	name       string
	properties *properties.Store
	path       string
	exists     bool
	watcher    *watcher.ConfigWatcher
	opts       InstanceOptions
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid server name %q: %w", name, models.ErrValidation)
	}
	return nil
}

// NewInstance 使用指定版本创建尚未落盘的实例
func NewInstance(version *versions.Version, name string, opts InstanceOptions) (*ServerInstance, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if version == nil {
		return nil, fmt.Errorf("server %s: no version: %w", name, models.ErrNotFound)
	}
	props, _ := properties.NewStore()
	if opts.Archive == nil {
		opts.Archive = archive.NewZipReader()
	}
	return &ServerInstance{version: version, name: name, properties: props, opts: opts}, nil
}

// NewInstanceFromLatest 使用最新的正式版或快照创建实例
func NewInstanceFromLatest(ctx context.Context, name string, snapshot bool, opts InstanceOptions) (*ServerInstance, error) {
	v, err := opts.Catalog.Latest(ctx, channelOf(snapshot))
	if err != nil {
		return nil, err
	}
	return NewInstance(v, name, opts)
}

/**
 * Reconstruct an instance from an existing directory
 * @param {context.Context} ctx - Request context
 * @param {string} dir - Instance directory, its base name is the instance name
 * @param {InstanceOptions} opts - Instance options
 * @returns {*ServerInstance} Existing instance
 * @returns {error} Returns error if server.jar has no readable version or the version is unknown
 * @description
 * - Reads the version id from version.json inside server.jar and resolves it
 * - Parses server.properties when present
 */
func LoadInstance(ctx context.Context, dir string, opts InstanceOptions) (*ServerInstance, error) {
	if opts.Archive == nil {
		opts.Archive = archive.NewZipReader()
	}
	data, err := opts.Archive.ReadEntry(filepath.Join(dir, proc.JarFile), VersionEntry)
	if err != nil {
		return nil, fmt.Errorf("reading version of %s: %w", dir, err)
	}
	var info struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing %s of %s: %w", VersionEntry, dir, err)
	}
	v, err := opts.Catalog.Resolve(ctx, info.ID)
	if err != nil {
		return nil, err
	}

	s, err := NewInstance(v, filepath.Base(dir), opts)
	if err != nil {
		return nil, err
	}
	s.path = dir
	s.exists = true
	if err := s.RefreshProperties(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

func channelOf(snapshot bool) versions.Channel {
	if snapshot {
		return versions.ChannelSnapshot
	}
	return versions.ChannelRelease
}

func (s *ServerInstance) Name() string {
	return s.name
}

func (s *ServerInstance) Version() *versions.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *ServerInstance) Properties() *properties.Store {
	return s.properties
}

func (s *ServerInstance) PhysicalPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

func (s *ServerInstance) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists
}

func (s *ServerInstance) file(name string) string {
	return filepath.Join(s.PhysicalPath(), name)
}

/**
 * Materialize the instance under parentDir
 * @param {context.Context} ctx - Request context, bounds the download
 * @param {string} parentDir - Directory that holds instances
 * @returns {error} Wraps models.ErrAlreadyExists if <parentDir>/<name> exists
 * @description
 * - Writes server.properties and eula.txt, then downloads server.jar
 * - Removes the new directory again if any step fails
 * - Starts the properties watcher on success
 */
func (s *ServerInstance) CreateAt(ctx context.Context, parentDir string) (err error) {
	dir := filepath.Join(parentDir, s.name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("server %s: %w", s.name, models.ErrAlreadyExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return err
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("server %s: %w", s.name, models.ErrAlreadyExists)
		}
		return err
	}
	defer func() {
		if err != nil {
			if rerr := os.RemoveAll(dir); rerr != nil {
				logger.Warnf("Failed to clean up %s: %v", dir, rerr)
			}
		}
	}()

	if err := os.WriteFile(filepath.Join(dir, PropertiesFile), []byte(s.properties.ToConfigText()), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, EulaFile), []byte(eulaContent), 0644); err != nil {
		return err
	}
	if err := s.downloadBinary(ctx, s.Version(), dir); err != nil {
		return err
	}

	s.mu.Lock()
	s.path = dir
	s.exists = true
	s.mu.Unlock()
	s.StartWatcher()
	logger.Infof("Server '%s' (%s) created at %s", s.name, s.Version(), dir)
	return nil
}

// Delete 删除实例目录，实例不存在时不做任何事
func (s *ServerInstance) Delete() error {
	if !s.Exists() {
		return nil
	}
	s.StopWatcher()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(s.path); err != nil {
		return err
	}
	s.exists = false
	s.watcher = nil
	logger.Infof("Server '%s' deleted (%s)", s.name, s.path)
	return nil
}

// downloadBinary 先下载到 server.jar.part，成功后再替换 server.jar
func (s *ServerInstance) downloadBinary(ctx context.Context, v *versions.Version, dir string) error {
	info, err := v.DownloadInfo(ctx)
	if err != nil {
		return err
	}
	var onProgress func(int)
	if s.opts.Progress != nil {
		onProgress = s.opts.Progress(info.Size)
	}
	target := filepath.Join(dir, proc.JarFile)
	part := target + partSuffix
	if err := info.Download(ctx, part, onProgress); err != nil {
		os.Remove(part)
		return err
	}
	if s.opts.VerifyChecksum {
		if err := info.CheckIntegrity(part); err != nil {
			os.Remove(part)
			return err
		}
	}
	if err := os.Rename(part, target); err != nil {
		return err
	}
	recordDownload(string(v.Channel), info.Size)
	logger.Infof("Downloaded %s for server '%s'", v, s.name)
	return nil
}

/**
 * Switch the instance to another version
 * @param {context.Context} ctx - Request context
 * @param {string} id - Version identifier
 * @returns {bool} Whether a download happened
 * @returns {error} Wraps models.ErrNotFound if id is unknown
 */
func (s *ServerInstance) DownloadVersion(ctx context.Context, id string) (bool, error) {
	if cur := s.Version(); cur != nil && cur.ID == id {
		return false, nil
	}
	v, err := s.opts.Catalog.Resolve(ctx, id)
	if err != nil {
		return false, err
	}
	return true, s.switchTo(ctx, v)
}

// DownloadLatest 更新到最新的正式版或快照，已是最新时不做任何事
func (s *ServerInstance) DownloadLatest(ctx context.Context, snapshot bool) (bool, error) {
	latest, err := s.opts.Catalog.Latest(ctx, channelOf(snapshot))
	if err != nil {
		return false, err
	}
	if latest.Equal(s.Version()) {
		return false, nil
	}
	return true, s.switchTo(ctx, latest)
}

func (s *ServerInstance) switchTo(ctx context.Context, v *versions.Version) error {
	if s.Exists() {
		if err := s.downloadBinary(ctx, v, s.PhysicalPath()); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.version = v
	s.mu.Unlock()
	return nil
}

// NeedsUpdate 当前版本与对应渠道的最新版本不同时返回 true
func (s *ServerInstance) NeedsUpdate(ctx context.Context, snapshot bool) (bool, error) {
	latest, err := s.opts.Catalog.Latest(ctx, channelOf(snapshot))
	if err != nil {
		return false, err
	}
	return !latest.Equal(s.Version()), nil
}

// RefreshProperties 从 server.properties 重新读取属性
func (s *ServerInstance) RefreshProperties() error {
	if !s.Exists() {
		return fmt.Errorf("server %s: not created: %w", s.name, models.ErrNotFound)
	}
	data, err := os.ReadFile(s.file(PropertiesFile))
	if err != nil {
		return err
	}
	store, err := properties.FromConfigText(string(data))
	if err != nil {
		return err
	}
	s.properties.Replace(store)
	return nil
}

// WriteProperties 写入 server.properties，写入期间暂停监视
func (s *ServerInstance) WriteProperties() error {
	if !s.Exists() {
		return fmt.Errorf("server %s: not created: %w", s.name, models.ErrNotFound)
	}
	defer s.pauseWatcher()()
	return s.writePropertiesFile()
}

/**
 * Apply property values and persist them
 * @param {map[properties.Key]any} values - Values to merge into the current properties
 * @returns {error} Wraps models.ErrNotFound if the instance is not created, models.ErrValidation for bad values
 * @description
 * - The watcher stays paused from the merge until the file is written,
 *   so an external edit in between cannot revert the merged values
 */
func (s *ServerInstance) ApplyProperties(values map[properties.Key]any) error {
	if !s.Exists() {
		return fmt.Errorf("server %s: not created: %w", s.name, models.ErrNotFound)
	}
	defer s.pauseWatcher()()
	if err := s.properties.Apply(values); err != nil {
		return err
	}
	return s.writePropertiesFile()
}

func (s *ServerInstance) writePropertiesFile() error {
	return os.WriteFile(s.file(PropertiesFile), []byte(s.properties.ToConfigText()), 0644)
}

// pauseWatcher 停止正在运行的监视，返回恢复函数
func (s *ServerInstance) pauseWatcher() func() {
	s.mu.RLock()
	w := s.watcher
	s.mu.RUnlock()
	if w == nil || !w.Running() {
		return func() {}
	}
	w.Stop()
	return w.Start
}

/**
 * Start watching server.properties
 * @description
 * - The watcher is created on first use, once the file exists
 * - External edits reload the properties
 */
func (s *ServerInstance) StartWatcher() {
	s.mu.Lock()
	if !s.exists {
		s.mu.Unlock()
		return
	}
	if s.watcher == nil {
		w, err := watcher.New(filepath.Join(s.path, PropertiesFile), s.opts.PollInterval, s.onPropertiesChanged)
		if err != nil {
			s.mu.Unlock()
			logger.Debugf("Server '%s': not watching properties: %v", s.name, err)
			return
		}
		s.watcher = w
	}
	w := s.watcher
	s.mu.Unlock()
	w.Start()
}

func (s *ServerInstance) StopWatcher() {
	s.mu.RLock()
	w := s.watcher
	s.mu.RUnlock()
	if w != nil {
		w.Stop()
	}
}

func (s *ServerInstance) WatcherRunning() bool {
	s.mu.RLock()
	w := s.watcher
	s.mu.RUnlock()
	return w != nil && w.Running()
}

func (s *ServerInstance) onPropertiesChanged(path string, modTime time.Time) {
	if err := s.RefreshProperties(); err != nil {
		logger.Warnf("Server '%s': failed to reload %s: %v", s.name, path, err)
		return
	}
	incrementPropertyResync(s.name)
	logger.Infof("Server '%s': reloaded %s (modified %s)", s.name, path, modTime.Format(time.RFC3339))
}

func (s *ServerInstance) Autostart() bool {
	if !s.Exists() {
		return false
	}
	_, err := os.Stat(s.file(AutostartFile))
	return err == nil
}

// SetAutostart 创建或删除 .autostart 标记文件
func (s *ServerInstance) SetAutostart(on bool) error {
	if !s.Exists() {
		return fmt.Errorf("server %s: not created: %w", s.name, models.ErrNotFound)
	}
	if !on {
		if err := os.Remove(s.file(AutostartFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(s.file(AutostartFile), nil, 0644)
}
