package wordcount

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrWrite marks a failure while writing a part file.
	ErrWrite = errors.New("write part")
	// ErrPartExists is returned, wrapped in ErrWrite, when a part's file name
	// is already taken. Nothing is written in that case.
	ErrPartExists = errors.New("part file already exists")
)

// FileWriter is the file-system surface ApplySplit needs.
type FileWriter interface {
	Exists(path string) (bool, error)
	WriteFile(path string, data []byte) error
	Remove(path string) error
}

// SplitLines breaks content on "\n". Joining the result with "\n" gives the
// content back unchanged.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}

// SplitPoints walks lines keeping a running character count and records a
// boundary after the line where the total first reaches k*Limit, for the
// k-th boundary. Thresholds are cumulative, so the last part may come out
// short. The result always has n+1 entries, starts at 0 and ends at
// len(lines); if a single line crosses several thresholds the missing
// boundaries collapse onto the end and yield empty trailing parts.
func SplitPoints(lines []string, n int) []int {
	if n < 1 {
		n = 1
	}
	points := make([]int, 1, n+1)
	total := 0
	for i, line := range lines {
		total += CountChars(line)
		if total >= len(points)*Limit && len(points) < n {
			points = append(points, i+1)
		}
	}
	for len(points) < n+1 {
		points = append(points, len(lines))
	}
	return points
}

// PartPath is the file a part is written to: the source directory, the
// source base name and the part label.
func PartPath(src, label string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(filepath.Dir(src), base+label+".txt")
}

// ApplySplit writes lines[points[i]:points[i+1]] for every part and removes
// src once all parts are on disk. Existing files are never overwritten: if a
// part name is taken nothing is written. If a part cannot be written the
// parts written so far are removed and src is left untouched.
func ApplySplit(w FileWriter, src string, lines []string, points []int, labels []string) ([]string, error) {
	if len(points) != len(labels)+1 {
		return nil, fmt.Errorf("split %s: %d points for %d labels", src, len(points), len(labels))
	}
	dests := make([]string, len(labels))
	for i, label := range labels {
		dests[i] = PartPath(src, label)
		taken, err := w.Exists(dests[i])
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrWrite, filepath.Base(dests[i]), err)
		}
		if taken {
			return nil, fmt.Errorf("%w %s: %w", ErrWrite, filepath.Base(dests[i]), ErrPartExists)
		}
	}
	written := make([]string, 0, len(labels))
	for i := range labels {
		start, end := points[i], points[i+1]
		if start < 0 || end > len(lines) || start > end {
			rollback(w, written)
			return nil, fmt.Errorf("split %s: bad range [%d,%d) of %d lines", src, start, end, len(lines))
		}
		dest := dests[i]
		if err := w.WriteFile(dest, []byte(strings.Join(lines[start:end], "\n"))); err != nil {
			rollback(w, written)
			return nil, fmt.Errorf("%w %s: %w", ErrWrite, filepath.Base(dest), err)
		}
		written = append(written, dest)
	}
	if err := w.Remove(src); err != nil {
		return written, fmt.Errorf("%w: remove original %s: %w", ErrWrite, filepath.Base(src), err)
	}
	return written, nil
}

func rollback(w FileWriter, written []string) {
	for _, p := range written {
		_ = w.Remove(p)
	}
}
