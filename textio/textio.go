package textio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// ErrDecode marks content that is not valid in the requested encoding.
var ErrDecode = errors.New("decode error")

const (
	UTF8    = "utf-8"
	GBK     = "gbk"
	GB18030 = "gb18030"
)

// ReadText reads path and returns its content as UTF-8.
// A leading UTF-8 BOM is dropped.
func ReadText(path, enc string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(b, enc)
}

func Decode(b []byte, enc string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", UTF8, "utf8":
		b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid utf-8", ErrDecode)
		}
		return string(b), nil
	case GBK:
		return decodeWith(simplifiedchinese.GBK, b)
	case GB18030:
		return decodeWith(simplifiedchinese.GB18030, b)
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
}

func decodeWith(e encoding.Encoding, b []byte) (string, error) {
	out, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(out), nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never see a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, perm)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// FS is the on-disk implementation of the small file interface the
// splitters depend on.
type FS struct{}

// Exists reports whether path names anything, a dangling symlink included.
func (FS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (FS) WriteFile(path string, data []byte) error { return WriteFileAtomic(path, data, 0o644) }

func (FS) Remove(path string) error { return os.Remove(path) }
