package archive

import (
	"fmt"
	"io"

	"github.com/System-rat/mcsmp/internal/models"

	"github.com/klauspost/compress/zip"
)

// 单个条目读取上限
const maxEntryBytes = 16 << 20

// Reader 从归档文件中读取指定条目
type Reader interface {
	ReadEntry(archivePath, entry string) ([]byte, error)
}

// ZipReader 读取 zip 格式归档（server.jar）
type ZipReader struct{}

func NewZipReader() *ZipReader {
	return &ZipReader{}
}

/**
 * Read one entry of a zip archive
 * @param {string} archivePath - Zip file
 * @param {string} entry - Entry name, e.g. "version.json"
 * @returns {[]byte} Entry bytes
 * @returns {error} Wraps models.ErrNotFound if the entry does not exist
 */
func (ZipReader) ReadEntry(archivePath, entry string) ([]byte, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s in %s: %w", entry, archivePath, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxEntryBytes))
		if err != nil {
			return nil, fmt.Errorf("reading %s in %s: %w", entry, archivePath, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s in %s: %w", entry, archivePath, models.ErrNotFound)
}
