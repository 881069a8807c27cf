package versions

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/System-rat/mcsmp/internal/models"
)

var errNoServer = fmt.Errorf("no server binary: %w", models.ErrNotFound)

const chunkSize = 32 * 1024

/**
 * Server binary location
 * @property {string} URL - Binary URL
 * @property {int64} Size - Declared size in bytes
 * @property {string} SHA1 - Declared hex SHA-1
 */
type DownloadInfo struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
	SHA1 string `json:"sha1"`

	client *http.Client
}

// ChecksumError 下载文件的校验和与清单不一致
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s: expected %s, got %s", e.Filename, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error { return models.ErrIntegrityMismatch }

/**
 * Download the binary to target
 * @param {context.Context} ctx - Request context, cancelling aborts the transfer
 * @param {string} target - Destination file, truncated if it exists
 * @param {func(int)} onProgress - Called with the byte count of every written chunk, may be nil
 * @returns {error} Wraps models.ErrTransport on network failure
 * @description
 * - The checksum is not verified, call Verify or CheckIntegrity afterwards
 * - No resume and no retry
 */
func (d *DownloadInfo) Download(ctx context.Context, target string, onProgress func(int)) (err error) {
	client := d.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := get(ctx, client, d.URL)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", d.URL, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return werr
			}
			if onProgress != nil {
				onProgress(n)
			}
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("downloading %s: %v: %w", d.URL, rerr, models.ErrTransport)
		}
	}
}

// Verify 重新计算文件的 SHA-1 并与清单比较
func (d *DownloadInfo) Verify(target string) (bool, error) {
	got, err := ComputeFileHash(target)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(got, d.SHA1), nil
}

// CheckIntegrity 校验失败时返回 *ChecksumError
func (d *DownloadInfo) CheckIntegrity(target string) error {
	got, err := ComputeFileHash(target)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, d.SHA1) {
		return &ChecksumError{Filename: target, Expected: strings.ToLower(d.SHA1), Got: got}
	}
	return nil
}

// ComputeFileHash 返回文件的 SHA-1 十六进制摘要
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
