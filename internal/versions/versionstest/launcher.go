// Package versionstest provides a fake launcher metadata server for tests.
package versionstest

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/System-rat/mcsmp/internal/versions"

	"github.com/klauspost/compress/zip"
)

/**
 * Fake launcher metadata server
 * @description
 * - Serves /manifest.json, /v/<id>.json and /jar/<id>.jar over TLS
 * - Every jar is a zip holding version.json with the version id
 */
type Launcher struct {
	*httptest.Server
	Releases  []string
	Snapshots []string

	ManifestHits atomic.Int32
	Downloads    atomic.Int32
	// 为 true 时详情里的 sha1 与实际文件不符
	BadChecksum atomic.Bool
}

// New 启动服务器，releases[0] 和 snapshots[0] 是最新版本
func New(t testing.TB, releases, snapshots []string) *Launcher {
	t.Helper()
	l := &Launcher{Releases: releases, Snapshots: snapshots}
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", l.manifest)
	mux.HandleFunc("/v/", l.detail)
	mux.HandleFunc("/jar/", l.jar)
	l.Server = httptest.NewTLSServer(mux)
	t.Cleanup(l.Close)
	return l
}

func (l *Launcher) Catalog() *versions.Catalog {
	return versions.NewCatalog(versions.CatalogConfig{ManifestURL: l.URL + "/manifest.json", Client: l.Client()})
}

func (l *Launcher) manifest(w http.ResponseWriter, r *http.Request) {
	l.ManifestHits.Add(1)
	var m versions.Manifest
	if len(l.Releases) > 0 {
		m.Latest.Release = l.Releases[0]
	}
	if len(l.Snapshots) > 0 {
		m.Latest.Snapshot = l.Snapshots[0]
	}
	for _, id := range l.Snapshots {
		m.Versions = append(m.Versions, versions.ManifestEntry{ID: id, Type: "snapshot", URL: l.URL + "/v/" + id + ".json"})
	}
	for _, id := range l.Releases {
		m.Versions = append(m.Versions, versions.ManifestEntry{ID: id, Type: "release", URL: l.URL + "/v/" + id + ".json"})
	}
	_ = json.NewEncoder(w).Encode(m)
}

func (l *Launcher) detail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v/"), ".json")
	data := Jar(id)
	sum := sha1.Sum(data)
	hash := hex.EncodeToString(sum[:])
	if l.BadChecksum.Load() {
		hash = strings.Repeat("0", len(hash))
	}
	fmt.Fprintf(w, `{"id":%q,"downloads":{"server":{"url":"%s/jar/%s.jar","size":%d,"sha1":"%s"}}}`,
		id, l.URL, id, len(data), hash)
}

func (l *Launcher) jar(w http.ResponseWriter, r *http.Request) {
	l.Downloads.Add(1)
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/jar/"), ".jar")
	_, _ = w.Write(Jar(id))
}

// Jar 返回包含 version.json 的 zip 内容
func Jar(id string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("version.json")
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(f, `{"id":%q,"name":%q,"world_version":3463}`, id, id)
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
