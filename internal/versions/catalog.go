package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/System-rat/mcsmp/internal/logger"
	"github.com/System-rat/mcsmp/internal/models"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	DefaultTimeout     = 30 * time.Second

	// JSON 响应大小上限
	maxJSONResponseBytes = 10 << 20
)

type Channel string

const (
	ChannelRelease  Channel = "release"
	ChannelSnapshot Channel = "snapshot"
)

// Manifest 版本清单文件
type Manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []ManifestEntry `json:"versions"`
}

type ManifestEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
}

/**
 * Version catalog configuration
 * @property {string} ManifestURL - Version manifest location
 * @property {time.Duration} Timeout - Bound of each manifest and detail request, binary downloads are bounded only by their context
 * @property {*http.Client} Client - HTTP client used for manifest, detail and binary requests, should carry no Timeout of its own
 */
type CatalogConfig struct {
	ManifestURL string
	Timeout     time.Duration
	Client      *http.Client
}

func (c *CatalogConfig) Correct() {
	if c.ManifestURL == "" {
		c.ManifestURL = DefaultManifestURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Client == nil {
		// 不设置 Client.Timeout，否则会截断耗时较长的二进制下载
		c.Client = &http.Client{}
	}
}

// catalogState 一次拉取得到的不可变状态
type catalogState struct {
	manifest       *Manifest
	releases       []*Version
	snapshots      []*Version
	latestRelease  *Version
	latestSnapshot *Version
}

/**
 * Cached view of the remote version manifest
 * @description
 * - The manifest is fetched once and reused until Invalidate
 * - Readers always see one complete state, never a mix of two fetches
 * - Concurrent first fetches share one request
 */
type Catalog struct {
	cfg        CatalogConfig
	mu         sync.RWMutex
	state      *catalogState
	generation uint64
	group      singleflight.Group
}

func NewCatalog(cfg CatalogConfig) *Catalog {
	cfg.Correct()
	return &Catalog{cfg: cfg}
}

func (c *Catalog) load(ctx context.Context) (*catalogState, error) {
	c.mu.RLock()
	st, gen := c.state, c.generation
	c.mu.RUnlock()
	if st != nil {
		return st, nil
	}

	// 共享的拉取不能被第一个调用方的取消打断，超时由 getJSON 控制
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		m, err := c.fetchManifest(fetchCtx)
		if err != nil {
			return nil, err
		}
		st := buildState(m, c)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation == gen {
			c.state = st
		}
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalogState), nil
}

func (c *Catalog) fetchManifest(ctx context.Context) (*Manifest, error) {
	logger.Debugf("fetching version manifest from %s", c.cfg.ManifestURL)
	var m Manifest
	if err := getJSON(ctx, c.cfg.Client, c.cfg.Timeout, c.cfg.ManifestURL, &m); err != nil {
		return nil, fmt.Errorf("fetching version manifest: %w", err)
	}
	return &m, nil
}

func buildState(m *Manifest, c *Catalog) *catalogState {
	st := &catalogState{manifest: m}
	for _, e := range m.Versions {
		switch Channel(e.Type) {
		case ChannelRelease:
			st.releases = append(st.releases, newVersion(e.ID, ChannelRelease, e.URL, c))
		case ChannelSnapshot:
			st.snapshots = append(st.snapshots, newVersion(e.ID, ChannelSnapshot, e.URL, c))
		}
	}
	if len(st.snapshots) > 0 {
		st.latestSnapshot = st.snapshots[0]
	}
	for _, v := range st.releases {
		if v.ID == m.Latest.Release {
			st.latestRelease = v
			break
		}
	}
	return st
}

// Manifest 返回缓存的版本清单，首次调用时拉取
func (c *Catalog) Manifest(ctx context.Context) (*Manifest, error) {
	st, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.manifest, nil
}

func (c *Catalog) Releases(ctx context.Context) ([]*Version, error) {
	st, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]*Version(nil), st.releases...), nil
}

func (c *Catalog) Snapshots(ctx context.Context) ([]*Version, error) {
	st, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]*Version(nil), st.snapshots...), nil
}

func (c *Catalog) LatestRelease(ctx context.Context) (*Version, error) {
	return c.Latest(ctx, ChannelRelease)
}

func (c *Catalog) LatestSnapshot(ctx context.Context) (*Version, error) {
	return c.Latest(ctx, ChannelSnapshot)
}

/**
 * Get latest version of a channel
 * @param {context.Context} ctx - Request context
 * @param {Channel} channel - release or snapshot
 * @returns {*Version} The declared latest release, or the first snapshot entry
 * @returns {error} Wraps models.ErrNotFound if the manifest has no such version
 */
func (c *Catalog) Latest(ctx context.Context, channel Channel) (*Version, error) {
	st, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	v := st.latestRelease
	if channel == ChannelSnapshot {
		v = st.latestSnapshot
	}
	if v == nil {
		return nil, fmt.Errorf("latest %s: %w", channel, models.ErrNotFound)
	}
	return v, nil
}

/**
 * Resolve a version identifier
 * @param {context.Context} ctx - Request context
 * @param {string} id - Version identifier, e.g. "1.20"
 * @returns {*Version} Matching release, or snapshot if no release matches
 * @returns {error} Wraps models.ErrNotFound if the id is unknown
 */
func (c *Catalog) Resolve(ctx context.Context, id string) (*Version, error) {
	st, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range st.releases {
		if v.ID == id {
			return v, nil
		}
	}
	for _, v := range st.snapshots {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, fmt.Errorf("version %q: %w", id, models.ErrNotFound)
}

// Invalidate 清空缓存，下一次调用重新拉取清单
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.state = nil
	c.generation++
	c.mu.Unlock()
	logger.Debug("version manifest cache invalidated")
}

// getJSON 拉取并解析一个 JSON 文档，timeout 覆盖连接和读取响应体
func getJSON(ctx context.Context, client *http.Client, timeout time.Duration, url string, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := get(ctx, client, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %v: %w", url, err, models.ErrTransport)
	}
	return nil
}

func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %v: %w", err, models.ErrTransport)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrTransport)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d: %w", url, resp.StatusCode, models.ErrTransport)
	}
	return resp, nil
}
