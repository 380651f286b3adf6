package wordcount

import (
	"errors"
	"io/fs"

	"github.com/ibreez3/novel-prep/textio"
)

var (
	// ErrNoTextFiles is returned when a folder holds no *.txt files.
	ErrNoTextFiles = errors.New("no .txt files found")
	// ErrWithinLimit is returned when a file at or under Limit reaches the splitter.
	ErrWithinLimit = errors.New("file within limit")
)

// Kind is a coarse failure category used in logs and batch summaries.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindRead        Kind = "read"
	KindDecode      Kind = "decode"
	KindWrite       Kind = "write"
	KindEmptyFolder Kind = "empty_folder"
	KindUnknown     Kind = "unknown"
)

// Classify maps err to a Kind using sentinel errors and error types only.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrNoTextFiles) {
		return KindEmptyFolder
	}
	if errors.Is(err, ErrWrite) {
		return KindWrite
	}
	if errors.Is(err, textio.ErrDecode) {
		return KindDecode
	}
	if errors.Is(err, fs.ErrNotExist) {
		return KindNotFound
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return KindRead
	}
	return KindUnknown
}
