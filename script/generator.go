package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ibreez3/novel-prep/textio"
)

// ErrNoTextFiles is returned by Folder when nothing matches *.txt.
var ErrNoTextFiles = errors.New("no .txt files in folder")

type Generator struct {
	Client         Client
	Model          string
	Log            func(string)
	Logger         *zap.Logger
	RequestTimeout time.Duration
	// OnResult, when set, is called after each file of a Folder run.
	OnResult func(FileResult)
	limiter  *rate.Limiter
}

func NewGenerator(cli Client, model string) *Generator {
	return &Generator{Client: cli, Model: model, Logger: zap.NewNop(), limiter: rate.NewLimiter(rate.Inf, 1)}
}

// WithLogger sets the progress sink, typically a run log.
func (g *Generator) WithLogger(log func(string)) *Generator {
	g.Log = log
	return g
}

func (g *Generator) WithZap(l *zap.Logger) *Generator {
	if l != nil {
		g.Logger = l
	}
	return g
}

// WithDelay spaces consecutive requests by at least d.
func (g *Generator) WithDelay(d time.Duration) *Generator {
	if d <= 0 {
		g.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		g.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
	return g
}

func (g *Generator) WithResultHook(fn func(FileResult)) *Generator {
	g.OnResult = fn
	return g
}

func (g *Generator) WithRequestTimeout(d time.Duration) *Generator {
	g.RequestTimeout = d
	return g
}

func (g *Generator) progress(msg string) {
	if g.Log != nil {
		g.Log(msg)
	}
	g.Logger.Debug(msg)
}

// Ping sends a trivial request to check the key and endpoint.
func (g *Generator) Ping(ctx context.Context) error {
	_, err := g.chat(ctx, "Test")
	return err
}

func (g *Generator) chat(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	if g.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.RequestTimeout)
		defer cancel()
	}
	return g.Client.Chat(ctx, g.Model, "", prompt)
}

// DefaultOutput is the script path for a single input: same name, .json.
func DefaultOutput(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".json"
}

// File converts one text file and writes the JSON array to out (DefaultOutput
// when empty).
func (g *Generator) File(ctx context.Context, prompt, in, out string) (Summary, error) {
	name := filepath.Base(in)
	text, err := textio.ReadText(in, textio.UTF8)
	if err != nil {
		g.progress(fmt.Sprintf("读取文件时出错：%s - %v", name, err))
		return Summary{}, err
	}
	if out == "" {
		out = DefaultOutput(in)
	}
	g.progress(fmt.Sprintf("正在处理: %s", name))
	t0 := time.Now()
	resp, err := g.chat(ctx, BuildPrompt(prompt, text))
	if err != nil {
		g.progress(fmt.Sprintf("处理失败: %s - %v", name, err))
		return Summary{}, fmt.Errorf("llm %s: %w", name, err)
	}
	arr := ExtractArray(resp)
	if err := CheckArray(arr); err != nil {
		g.progress(fmt.Sprintf("JSON 格式验证失败: %s", name))
		return Summary{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Summary{}, err
	}
	if err := textio.WriteFileAtomic(out, Format(arr), 0o644); err != nil {
		g.progress(fmt.Sprintf("处理失败: %s - %v", name, err))
		return Summary{}, err
	}
	sum := Summarize(arr)
	g.progress(fmt.Sprintf("完成: %s -> %s（%d 段，%d 个角色）", name, filepath.Base(out), sum.Entries, len(sum.Speakers)))
	g.Logger.Info("script saved",
		zap.String("file", name),
		zap.String("output", out),
		zap.Int("entries", sum.Entries),
		zap.Duration("took", time.Since(t0)),
	)
	return sum, nil
}

// FileResult is the outcome of one file in a folder run.
type FileResult struct {
	Name    string  `json:"name"`
	Output  string  `json:"output"`
	OK      bool    `json:"ok"`
	Summary Summary `json:"summary"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// DefaultFolderOutput is folder + "_json".
func DefaultFolderOutput(folder string) string {
	return filepath.Clean(folder) + "_json"
}

// ListInputs returns the names of *.txt files (any case) in folder, sorted.
func ListInputs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Folder converts every text file of folder one at a time. A failed file is
// recorded and the run moves on.
func (g *Generator) Folder(ctx context.Context, folder, prompt, outDir string) ([]FileResult, error) {
	names, err := ListInputs(folder)
	if err != nil {
		return nil, fmt.Errorf("folder %s: %w", folder, err)
	}
	if len(names) == 0 {
		g.progress("错误：文件夹中没有找到 .txt 文件")
		return nil, fmt.Errorf("%s: %w", folder, ErrNoTextFiles)
	}
	if outDir == "" {
		outDir = DefaultFolderOutput(folder)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	results := make([]FileResult, 0, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		g.progress(fmt.Sprintf("进度 %d/%d: %s", i+1, len(names), name))
		out := filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name))+".json")
		sum, err := g.File(ctx, prompt, filepath.Join(folder, name), out)
		r := FileResult{Name: name, Output: out, OK: err == nil, Summary: sum, Err: err}
		if err != nil {
			r.Error = err.Error()
			g.Logger.Warn("script failed", zap.String("file", name), zap.Error(err))
		}
		results = append(results, r)
		if g.OnResult != nil {
			g.OnResult(r)
		}
	}
	return results, nil
}

// Counts returns how many results succeeded and failed.
func Counts(results []FileResult) (ok, failed int) {
	for _, r := range results {
		if r.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
