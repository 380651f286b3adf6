package wordcount

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/textio"
)

// SplitJob is one file selected for splitting together with its count from
// the analysis.
type SplitJob struct {
	Name  string `json:"filename"`
	Path  string `json:"path"`
	Count int    `json:"word_count"`
}

type SplitResult struct {
	Job   SplitJob `json:"job"`
	Parts []string `json:"parts,omitempty"`
	Err   error    `json:"-"`
	Error string   `json:"error,omitempty"`
	Kind  Kind     `json:"kind,omitempty"`
}

type BatchSummary struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []SplitResult `json:"results"`
}

// Plan turns the long files of rep into split jobs. selected lists file
// names to keep; nil keeps every long file. Names that are not long files
// are ignored.
func Plan(rep Report, selected []string) []SplitJob {
	var keep map[string]bool
	if selected != nil {
		keep = make(map[string]bool, len(selected))
		for _, name := range selected {
			keep[name] = true
		}
	}
	var jobs []SplitJob
	for _, f := range rep.Long {
		if keep != nil && !keep[f.Name] {
			continue
		}
		jobs = append(jobs, SplitJob{Name: f.Name, Path: f.Path, Count: f.Count})
	}
	return jobs
}

// Executor runs split jobs one file at a time.
type Executor struct {
	FS  FileWriter
	Log *zap.Logger
}

func NewExecutor(fs FileWriter, log *zap.Logger) *Executor {
	if fs == nil {
		fs = textio.FS{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{FS: fs, Log: log}
}

// Execute splits one file. Errors are returned in the result, never raised.
// Parts left on disk by a failed run (the source could not be removed) are
// still listed in Parts.
func (e *Executor) Execute(job SplitJob) SplitResult {
	res := SplitResult{Job: job}
	parts, err := e.split(job)
	res.Parts = parts
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		res.Kind = Classify(err)
		e.Log.Warn("split failed", zap.String("file", job.Name), zap.String("kind", string(res.Kind)), zap.Int("parts_left", len(parts)), zap.Error(err))
		return res
	}
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = filepath.Base(p)
	}
	e.Log.Info("split done", zap.String("file", job.Name), zap.Strings("parts", names))
	return res
}

func (e *Executor) split(job SplitJob) ([]string, error) {
	if job.Count <= Limit {
		return nil, fmt.Errorf("%s (%d): %w", job.Name, job.Count, ErrWithinLimit)
	}
	content, err := textio.ReadText(job.Path, textio.UTF8)
	if err != nil {
		return nil, err
	}
	lines := SplitLines(content)
	plan := PlanParts(job.Count)
	points := SplitPoints(lines, plan.N)
	e.Log.Debug("split plan", zap.String("file", job.Name), zap.Int("parts", plan.N), zap.Ints("points", points))
	return ApplySplit(e.FS, job.Path, lines, points, plan.Labels)
}

// ExecuteAll runs every job in order; a failing file never stops the rest.
func (e *Executor) ExecuteAll(jobs []SplitJob) BatchSummary {
	var sum BatchSummary
	for _, job := range jobs {
		res := e.Execute(job)
		if res.Err != nil {
			sum.Failed++
		} else {
			sum.Succeeded++
		}
		sum.Results = append(sum.Results, res)
	}
	e.Log.Info("split batch finished", zap.Int("succeeded", sum.Succeeded), zap.Int("failed", sum.Failed))
	return sum
}
