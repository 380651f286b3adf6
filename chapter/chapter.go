package chapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/textio"
)

// ErrNoChapters is returned when no line looks like a chapter header.
var ErrNoChapters = errors.New("no chapter headers found")

// headerRe matches "第12章 标题". Full-width digits and the ideographic space
// are accepted as well.
var headerRe = regexp.MustCompile(`^第(\p{Nd}+)章[\s\p{Zs}]+(.+)$`)

var invalidName = strings.NewReplacer("<", "", ">", "", ":", "", "\"", "", "/", "", "\\", "", "|", "", "?", "", "*", "")

type Chapter struct {
	Number string
	Title  string
	Lines  []string
}

// Content is the chapter text, header line included.
func (c Chapter) Content() string { return strings.Join(c.Lines, "\n") }

// FileName is 第NNNN章_title.txt with the number padded to four digits and
// characters that are invalid in file names removed from the title.
func (c Chapter) FileName() string {
	num := c.Number
	if n := len([]rune(num)); n < 4 {
		num = strings.Repeat("0", 4-n) + num
	}
	return fmt.Sprintf("第%s章_%s.txt", num, invalidName.Replace(c.Title))
}

// Split cuts content into chapters. Every line is trimmed; text before the
// first header is dropped.
func Split(content string) []Chapter {
	var chapters []Chapter
	var cur *Chapter
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if m := headerRe.FindStringSubmatch(line); m != nil {
			if cur != nil {
				chapters = append(chapters, *cur)
			}
			cur = &Chapter{Number: m[1], Title: strings.TrimSpace(m[2]), Lines: []string{line}}
			continue
		}
		if cur != nil {
			cur.Lines = append(cur.Lines, line)
		}
	}
	if cur != nil {
		chapters = append(chapters, *cur)
	}
	return chapters
}

// Splitter reads a novel file and writes one file per chapter.
type Splitter struct {
	Encoding string
	OutRoot  string
	Log      *zap.Logger
}

func NewSplitter(encoding, outRoot string, log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{Encoding: encoding, OutRoot: outRoot, Log: log}
}

// OutputDir is the folder the chapters of path are written to: the source
// base name under OutRoot.
func (s *Splitter) OutputDir(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(s.OutRoot, base)
}

// SplitFile splits path and returns the output folder and the written files.
func (s *Splitter) SplitFile(path string) (string, []string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("novel file %s: %w", path, err)
	}
	content, err := textio.ReadText(path, s.Encoding)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	chapters := Split(content)
	if len(chapters) == 0 {
		return "", nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoChapters)
	}
	dir := s.OutputDir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	s.Log.Info("splitting novel", zap.String("file", filepath.Base(path)), zap.Int("chapters", len(chapters)), zap.String("out", dir))
	files, err := s.WriteChapters(dir, chapters)
	if err != nil {
		return dir, files, err
	}
	s.Log.Info("chapters written", zap.Int("count", len(files)), zap.String("out", dir))
	return dir, files, nil
}

func (s *Splitter) WriteChapters(dir string, chapters []Chapter) ([]string, error) {
	files := make([]string, 0, len(chapters))
	for _, c := range chapters {
		p := filepath.Join(dir, c.FileName())
		if err := textio.WriteFileAtomic(p, []byte(c.Content()), 0o644); err != nil {
			return files, fmt.Errorf("write %s: %w", c.FileName(), err)
		}
		s.Log.Debug("created", zap.String("file", c.FileName()))
		files = append(files, p)
	}
	return files, nil
}
