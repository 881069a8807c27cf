package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/System-rat/mcsmp/internal/env"
	"github.com/System-rat/mcsmp/internal/logger"
	"github.com/System-rat/mcsmp/internal/models"
	"github.com/System-rat/mcsmp/internal/proc"

	"golang.org/x/sync/errgroup"
)

/**
 * Connector configuration
 * @property {string} Path - Directory holding one sub-directory per instance
 * @property {string} Java - Java executable
 * @property {*proc.JVMArguments} JvmArgs - Default launch arguments
 * @property {int} LogLimit - Output lines kept per server
 * @property {time.Duration} StopTimeout - Graceful stop limit before killing, 0 waits forever
 * @property {io.Writer} Output - Receives every output line of every server, may be nil
 */
type ConnectorConfig struct {
	Path        string
	Java        string
	JvmArgs     *proc.JVMArguments
	LogLimit    int
	StopTimeout time.Duration
	Instance    InstanceOptions
	Output      io.Writer
}

// ManagedServer 实例及其运行器
type ManagedServer struct {
	Instance *ServerInstance
	Runner   *proc.Runner
}

func (m *ManagedServer) Name() string {
	return m.Instance.Name()
}

func (m *ManagedServer) Detail(withProperties bool) models.ServerDetail {
	d := models.ServerDetail{
		Name:      m.Instance.Name(),
		Exists:    m.Instance.Exists(),
		Path:      m.Instance.PhysicalPath(),
		Autostart: m.Instance.Autostart(),
		Running:   m.Runner.Running(),
		Runner:    m.Runner.GetDetail(),
	}
	if v := m.Instance.Version(); v != nil {
		d.Version = v.ID
		d.Channel = string(v.Channel)
	}
	if withProperties {
		d.Properties = m.Instance.Properties()
	}
	return d
}

/**
 * Connector 管理本机所有服务器实例
 * @description
 * - 显式创建并传递，不使用全局单例
 * - 持有实例/运行器对、版本缓存的定时失效以及自动启动
 */
type Connector struct {
	cfg       ConnectorConfig
	catalog   VersionCatalog
	servers   map[string]*ManagedServer
	mutex     sync.RWMutex
	startTime time.Time
}

func NewConnector(cfg ConnectorConfig, catalog VersionCatalog) *Connector {
	if cfg.JvmArgs == nil {
		cfg.JvmArgs = proc.NewJVMArguments()
	}
	if cfg.Java == "" {
		cfg.Java = "java"
	}
	cfg.Instance.Catalog = catalog
	return &Connector{
		cfg:       cfg,
		catalog:   catalog,
		servers:   make(map[string]*ManagedServer),
		startTime: time.Now(),
	}
}

func (c *Connector) Catalog() VersionCatalog {
	return c.catalog
}

func (c *Connector) Path() string {
	return c.cfg.Path
}

func (c *Connector) newRunner(inst *ServerInstance) (*proc.Runner, error) {
	name := inst.Name()
	out := c.cfg.Output
	return proc.NewRunner(inst, proc.RunnerConfig{
		Java:     c.cfg.Java,
		JvmArgs:  c.cfg.JvmArgs,
		LogLimit: c.cfg.LogLimit,
		OnLine: func(line string) {
			incrementLogLines(name)
			if out != nil {
				fmt.Fprintln(out, line)
			}
		},
		OnExit:   func(*proc.Runner) { c.updateRunningGauge() },
	})
}

/**
 * Load instances from the instances directory
 * @param {context.Context} ctx - Request context
 * @returns {error} Returns error if the directory cannot be read
 * @description
 * - Every sub-directory with a readable server.jar becomes a managed server
 * - Directories that cannot be loaded are skipped with a warning
 */
func (c *Connector) Load(ctx context.Context) error {
	if err := os.MkdirAll(c.cfg.Path, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(c.cfg.Path)
	if err != nil {
		return err
	}
	loaded := make(map[string]*ManagedServer)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(c.cfg.Path, e.Name())
		inst, err := LoadInstance(ctx, dir, c.cfg.Instance)
		if err != nil {
			logger.Warnf("Skipping %s: %v", dir, err)
			continue
		}
		runner, err := c.newRunner(inst)
		if err != nil {
			logger.Warnf("Skipping %s: %v", dir, err)
			continue
		}
		inst.StartWatcher()
		loaded[inst.Name()] = &ManagedServer{Instance: inst, Runner: runner}
	}

	c.mutex.Lock()
	for name, m := range loaded {
		if _, ok := c.servers[name]; !ok {
			c.servers[name] = m
		}
	}
	c.mutex.Unlock()
	logger.Infof("Loaded %d servers from %s", len(loaded), c.cfg.Path)
	return nil
}

/**
 * Create a new server instance
 * @param {context.Context} ctx - Request context
 * @param {string} name - Instance name, also its directory name
 * @param {string} version - Version id, empty for the latest of the channel
 * @param {bool} snapshot - Use the snapshot channel when version is empty
 * @returns {*ManagedServer} The new server
 * @returns {error} Wraps models.ErrAlreadyExists, models.ErrNotFound or a download error
 */
func (c *Connector) CreateServer(ctx context.Context, name, version string, snapshot bool) (*ManagedServer, error) {
	c.mutex.RLock()
	_, taken := c.servers[name]
	c.mutex.RUnlock()
	if taken {
		return nil, fmt.Errorf("server %s: %w", name, models.ErrAlreadyExists)
	}

	var inst *ServerInstance
	var err error
	if version == "" {
		inst, err = NewInstanceFromLatest(ctx, name, snapshot, c.cfg.Instance)
	} else {
		v, rerr := c.catalog.Resolve(ctx, version)
		if rerr != nil {
			return nil, rerr
		}
		inst, err = NewInstance(v, name, c.cfg.Instance)
	}
	if err != nil {
		return nil, err
	}
	if err := inst.CreateAt(ctx, c.cfg.Path); err != nil {
		return nil, err
	}
	runner, err := c.newRunner(inst)
	if err != nil {
		return nil, err
	}
	m := &ManagedServer{Instance: inst, Runner: runner}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.servers[name]; ok {
		return nil, fmt.Errorf("server %s: %w", name, models.ErrAlreadyExists)
	}
	c.servers[name] = m
	return m, nil
}

// DeleteServer 停止正在运行的进程后删除实例目录
func (c *Connector) DeleteServer(ctx context.Context, name string) error {
	m, err := c.Server(name)
	if err != nil {
		return err
	}
	logger.Warnf("Deleting server: %s", name)
	if err := c.stopRunner(ctx, m.Runner); err != nil {
		return err
	}
	if err := m.Instance.Delete(); err != nil {
		return err
	}
	c.mutex.Lock()
	delete(c.servers, name)
	c.mutex.Unlock()
	return nil
}

/**
 * Update the server binary
 * @param {context.Context} ctx - Request context
 * @param {string} name - Server name
 * @param {string} version - Target version id, empty for the latest of the channel
 * @param {bool} snapshot - Use the snapshot channel when version is empty
 * @returns {bool} Whether a download happened
 * @returns {error} Wraps models.ErrServerRunning if the server is running
 */
func (c *Connector) UpdateServer(ctx context.Context, name, version string, snapshot bool) (bool, error) {
	m, err := c.Server(name)
	if err != nil {
		return false, err
	}
	if m.Runner.Running() {
		return false, fmt.Errorf("server %s: %w", name, models.ErrServerRunning)
	}
	if version != "" {
		return m.Instance.DownloadVersion(ctx, version)
	}
	return m.Instance.DownloadLatest(ctx, snapshot)
}

func (c *Connector) Server(name string) (*ManagedServer, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	m, ok := c.servers[name]
	if !ok {
		return nil, fmt.Errorf("server %s: %w", name, models.ErrNotFound)
	}
	return m, nil
}

// Servers 按名称排序返回实例，filter 不为空时按名称做不区分大小写的子串匹配
func (c *Connector) Servers(filter string) []*ManagedServer {
	filter = strings.ToLower(filter)
	c.mutex.RLock()
	out := make([]*ManagedServer, 0, len(c.servers))
	for name, m := range c.servers {
		if filter == "" || strings.Contains(strings.ToLower(name), filter) {
			out = append(out, m)
		}
	}
	c.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (c *Connector) RunningServers() []*ManagedServer {
	var out []*ManagedServer
	for _, m := range c.Servers("") {
		if m.Runner.Running() {
			out = append(out, m)
		}
	}
	return out
}

func (c *Connector) StartServer(name string) error {
	m, err := c.Server(name)
	if err != nil {
		return err
	}
	if err := m.Runner.Start(); err != nil {
		return err
	}
	c.updateRunningGauge()
	return nil
}

func (c *Connector) StopServer(ctx context.Context, name string) error {
	m, err := c.Server(name)
	if err != nil {
		return err
	}
	return c.stopRunner(ctx, m.Runner)
}

func (c *Connector) stopRunner(ctx context.Context, r *proc.Runner) error {
	if c.cfg.StopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.StopTimeout)
		defer cancel()
	}
	err := r.StopContext(ctx)
	c.updateRunningGauge()
	return err
}

// SendCommand 向服务器控制台发送一条命令
func (c *Connector) SendCommand(name, command string) error {
	m, err := c.Server(name)
	if err != nil {
		return err
	}
	if !m.Runner.Running() {
		return fmt.Errorf("server %s: %w", name, models.ErrServerStopped)
	}
	if !strings.HasSuffix(command, "\n") {
		command += "\n"
	}
	return m.Runner.SendText(command)
}

// Log 返回最新的 limit 行输出
func (c *Connector) Log(name string, limit int) ([]string, error) {
	m, err := c.Server(name)
	if err != nil {
		return nil, err
	}
	return m.Runner.Last(limit), nil
}

// Autostart 启动带有 .autostart 标记的实例
func (c *Connector) Autostart() {
	for _, m := range c.Servers("") {
		if !m.Instance.Autostart() {
			continue
		}
		if err := m.Runner.Start(); err != nil {
			logger.Errorf("Autostart of '%s' failed: %v", m.Name(), err)
			continue
		}
		logger.Infof("Autostarted server '%s'", m.Name())
	}
	c.updateRunningGauge()
}

/**
 * Periodically drop the version manifest cache
 * @param {context.Context} ctx - The goroutine exits when ctx ends
 * @param {time.Duration} interval - Cache lifetime, not positive disables the timer
 */
func (c *Connector) StartInvalidator(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		logger.Info("Version cache invalidation is disabled (interval <= 0)")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.catalog.Invalidate()
			}
		}
	}()
}

/**
 * Stop all running servers concurrently
 * @param {context.Context} ctx - Bounds every graceful stop
 * @returns {error} First stop error
 */
func (c *Connector) StopAll(ctx context.Context) error {
	var g errgroup.Group
	for _, m := range c.RunningServers() {
		m := m
		g.Go(func() error {
			m.Instance.StopWatcher()
			if err := c.stopRunner(ctx, m.Runner); err != nil {
				return fmt.Errorf("stopping %s: %w", m.Name(), err)
			}
			return nil
		})
	}
	err := g.Wait()
	for _, m := range c.Servers("") {
		m.Instance.StopWatcher()
	}
	return err
}

func (c *Connector) updateRunningGauge() {
	setRunningServers(len(c.RunningServers()))
}

/**
 * Get health check response
 * @returns {models.HealthResponse} Uptime, request counters and server counts
 */
func (c *Connector) GetHealthz() models.HealthResponse {
	uptime := time.Since(c.startTime)
	return models.HealthResponse{
		Version:   env.Version,
		StartTime: c.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    uptime.String(),
		Metrics: models.Metrics{
			TotalRequests:  GetTotalRequestCount(),
			ErrorRequests:  GetTotalErrorCount(),
			TotalServers:   len(c.Servers("")),
			RunningServers: len(c.RunningServers()),
		},
	}
}
