package versions

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

/**
 * A game server version listed in the manifest
 * @property {string} ID - Version identifier
 * @property {Channel} Channel - release or snapshot
 * @property {string} ManifestURL - Per-version detail document
 */
type Version struct {
	ID          string  `json:"id"`
	Channel     Channel `json:"channel"`
	ManifestURL string  `json:"url"`

	client  *http.Client
	timeout time.Duration
	mu      sync.Mutex
	info   *DownloadInfo
}

func newVersion(id string, channel Channel, url string, c *Catalog) *Version {
	return &Version{ID: id, Channel: channel, ManifestURL: url, client: c.cfg.Client, timeout: c.cfg.Timeout}
}

// NewVersion 创建不经过清单的版本，client 为空时使用 http.DefaultClient
func NewVersion(id string, channel Channel, manifestURL string, client *http.Client) *Version {
	if client == nil {
		client = http.DefaultClient
	}
	return &Version{ID: id, Channel: channel, ManifestURL: manifestURL, client: client, timeout: DefaultTimeout}
}

// Equal 标识、渠道和详情地址都相同时两个版本相等
func (v *Version) Equal(o *Version) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.ID == o.ID && v.Channel == o.Channel && v.ManifestURL == o.ManifestURL
}

func (v *Version) String() string {
	return fmt.Sprintf("%s (%s)", v.ID, v.Channel)
}

type versionDetail struct {
	Downloads struct {
		Server *struct {
			URL  string `json:"url"`
			Size int64  `json:"size"`
			SHA1 string `json:"sha1"`
		} `json:"server"`
	} `json:"downloads"`
}

/**
 * Get server binary download information
 * @param {context.Context} ctx - Request context
 * @returns {*DownloadInfo} Binary url, size and SHA-1, fetched once and memoized
 * @returns {error} Wraps models.ErrTransport on fetch failure, models.ErrNotFound if the version has no server binary
 */
func (v *Version) DownloadInfo(ctx context.Context) (*DownloadInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.info != nil {
		return v.info, nil
	}
	var detail versionDetail
	if err := getJSON(ctx, v.client, v.timeout, v.ManifestURL, &detail); err != nil {
		return nil, fmt.Errorf("fetching details of %s: %w", v.ID, err)
	}
	s := detail.Downloads.Server
	if s == nil || s.URL == "" {
		return nil, fmt.Errorf("version %s has no server download: %w", v.ID, errNoServer)
	}
	v.info = &DownloadInfo{URL: s.URL, Size: s.Size, SHA1: s.SHA1, client: v.client}
	return v.info, nil
}
