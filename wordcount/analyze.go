package wordcount

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/textio"
)

const (
	StatusSafe    = "✅ Safe"
	StatusTooLong = "⚠️ Too Long"
)

// FileStat is the count of one analyzed file. Err is set when the file could
// not be read; its Count is then 0.
type FileStat struct {
	Name  string `json:"filename"`
	Path  string `json:"path"`
	Count int    `json:"word_count"`
	Err   error  `json:"-"`
}

func (f FileStat) Status() string {
	if f.Count > Limit {
		return StatusTooLong
	}
	return StatusSafe
}

// Report is the result of analyzing one folder.
type Report struct {
	Folder  string     `json:"folder"`
	Files   []FileStat `json:"files"`
	Long    []FileStat `json:"long"`
	CSVPath string     `json:"csv_path"`
}

// Analyze counts every *.txt file directly under folder, writes the CSV
// report next to them and returns the files sorted by count, largest first.
func Analyze(folder string, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rep := Report{Folder: folder}
	info, err := os.Stat(folder)
	if err != nil {
		return rep, fmt.Errorf("folder %s: %w", folder, err)
	}
	if !info.IsDir() {
		return rep, fmt.Errorf("%s is not a folder", folder)
	}
	paths, err := ListText(folder)
	if err != nil {
		return rep, err
	}
	if len(paths) == 0 {
		return rep, fmt.Errorf("%s: %w", folder, ErrNoTextFiles)
	}
	log.Info("analyzing folder", zap.String("folder", folder), zap.Int("files", len(paths)))

	for _, p := range paths {
		st := FileStat{Name: filepath.Base(p), Path: p}
		content, err := textio.ReadText(p, textio.UTF8)
		if err != nil {
			st.Err = err
			log.Warn("read failed", zap.String("file", st.Name), zap.String("kind", string(Classify(err))), zap.Error(err))
		} else {
			st.Count = CountChars(content)
		}
		log.Debug("counted", zap.String("file", st.Name), zap.Int("count", st.Count))
		rep.Files = append(rep.Files, st)
	}
	sort.SliceStable(rep.Files, func(i, j int) bool {
		if rep.Files[i].Count != rep.Files[j].Count {
			return rep.Files[i].Count > rep.Files[j].Count
		}
		return rep.Files[i].Name < rep.Files[j].Name
	})
	for _, f := range rep.Files {
		if f.Count > Limit {
			rep.Long = append(rep.Long, f)
		}
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		abs = folder
	}
	rep.CSVPath = filepath.Join(folder, filepath.Base(abs)+"_words_count.csv")
	if err := WriteCSV(rep.CSVPath, rep.Files); err != nil {
		return rep, fmt.Errorf("write report: %w", err)
	}
	log.Info("report saved", zap.String("csv", rep.CSVPath), zap.Int("long", len(rep.Long)))
	return rep, nil
}

// WriteCSV writes filename,word_count,status rows with a UTF-8 BOM so that
// spreadsheet tools pick the right encoding.
func WriteCSV(path string, files []FileStat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString("\ufeff"); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"filename", "word_count", "status"}); err != nil {
		return err
	}
	for _, st := range files {
		if err := w.Write([]string{st.Name, strconv.Itoa(st.Count), st.Status()}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ListText returns the *.txt files directly under folder, sorted by name.
func ListText(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(folder, e.Name()))
	}
	return paths, nil
}
