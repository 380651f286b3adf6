package textio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDecodeUTF8StripsBOM(t *testing.T) {
	s, err := Decode([]byte("\xef\xbb\xbf第一章"), UTF8)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s != "第一章" {
		t.Fatalf("got %q", s)
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xfe, 0x41}, "")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expect ErrDecode, got %v", err)
	}
}

func TestDecodeGBK(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("第1章 开端"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s, err := Decode(raw, "GBK")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s != "第1章 开端" {
		t.Fatalf("got %q", s)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if _, err := Decode([]byte("x"), "big5"); err == nil {
		t.Fatalf("expect error for unsupported encoding")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.txt")
	if err := WriteFileAtomic(p, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write v1: %v", err)
	}
	if err := WriteFileAtomic(p, []byte("v2"), 0o644); err != nil {
		t.Fatalf("write v2: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "v2" {
		t.Fatalf("unexpected file %v %q", err, string(b))
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("tmp file not cleaned: %s", e.Name())
		}
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope", "out.txt")
	if err := WriteFileAtomic(p, []byte("x"), 0o644); err == nil {
		t.Fatalf("expect error for missing directory")
	}
}

func TestFSExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a《上》.txt")
	ok, err := FS{}.Exists(p)
	if err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := (FS{}).Exists(p); err != nil || !ok {
		t.Fatalf("existing file: ok=%v err=%v", ok, err)
	}
}
