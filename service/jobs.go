package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/script"
)

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "completed"
	JobFailed  JobStatus = "failed"
)

var (
	ErrBadRequest  = errors.New("bad request")
	ErrJobNotFound = errors.New("job not found")
)

type Job struct {
	ID        string              `json:"id"`
	Status    JobStatus           `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
	Total     int                 `json:"total"`
	Dir       string              `json:"dir"`
	Error     string              `json:"error,omitempty"`
	LogPath   string              `json:"log"`
	Results   []script.FileResult `json:"results,omitempty"`
}

// ScriptRequest names exactly one of Path or Folder.
type ScriptRequest struct {
	Path     string `json:"path"`
	Folder   string `json:"folder"`
	Output   string `json:"output"`
	Prompt   string `json:"prompt"`
	Provider string `json:"provider"`
}

// ClientFactory builds the LLM client for a job's effective config.
type ClientFactory func(ctx context.Context, cfg config.Config) (script.Client, error)

type Manager struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	logs      map[string]*JobLogger
	cfg       config.Config
	newClient ClientFactory
	log       *zap.Logger
}

func NewManager(cfg config.Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{jobs: map[string]*Job{}, logs: map[string]*JobLogger{}, cfg: cfg, newClient: NewClient, log: log}
}

func (m *Manager) WithClientFactory(f ClientFactory) *Manager {
	m.newClient = f
	return m
}

// Get returns a copy of the job so callers never race the worker.
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	cp := *j
	cp.Results = append([]script.FileResult(nil), j.Results...)
	return cp, true
}

// ReadLog returns the run log of job id. A job whose log could not be
// created reads as empty.
func (m *Manager) ReadLog(id string) ([]byte, error) {
	m.mu.Lock()
	_, ok := m.jobs[id]
	jl := m.logs[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	if jl == nil {
		return nil, nil
	}
	return jl.Read()
}

func (m *Manager) update(j *Job, fn func(*Job)) {
	m.mu.Lock()
	fn(j)
	j.UpdatedAt = time.Now()
	m.mu.Unlock()
}

// StartScript validates the request, registers a job and runs it in the
// background. Inputs are checked before the job is registered.
func (m *Manager) StartScript(req ScriptRequest) (Job, error) {
	req.Path = strings.TrimSpace(req.Path)
	req.Folder = strings.TrimSpace(req.Folder)
	if (req.Path == "") == (req.Folder == "") {
		return Job{}, fmt.Errorf("%w: give either path or folder", ErrBadRequest)
	}
	cfg := m.cfg
	if req.Provider != "" {
		cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	}
	if err := cfg.Validate(); err != nil {
		return Job{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if req.Prompt == "" {
		req.Prompt = script.DefaultPrompt
	}
	j := &Job{Status: JobPending, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if req.Folder != "" {
		names, err := script.ListInputs(req.Folder)
		if err != nil {
			return Job{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if len(names) == 0 {
			return Job{}, fmt.Errorf("%w: %s: %w", ErrBadRequest, req.Folder, script.ErrNoTextFiles)
		}
		j.Total = len(names)
		j.Dir = req.Output
		if j.Dir == "" {
			j.Dir = script.DefaultFolderOutput(req.Folder)
		}
	} else {
		if _, err := os.Stat(req.Path); err != nil {
			return Job{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		j.Total = 1
		j.Dir = req.Output
		if j.Dir == "" {
			j.Dir = script.DefaultOutput(req.Path)
		}
	}
	j.ID = "job-" + uuid.NewString()
	m.mu.Lock()
	m.jobs[j.ID] = j
	cp := *j
	m.mu.Unlock()
	go m.runScript(cfg, req, j)
	return cp, nil
}

func (m *Manager) runScript(cfg config.Config, req ScriptRequest, j *Job) {
	m.update(j, func(j *Job) { j.Status = JobRunning })
	jl, err := NewJobLogger(cfg.Output.Dir, j.ID, m.log)
	progress := func(string) {}
	if err == nil {
		m.update(j, func(j *Job) { j.LogPath = jl.Path() })
		m.mu.Lock()
		m.logs[j.ID] = jl
		m.mu.Unlock()
		progress = jl.Log
	} else {
		m.log.Warn("job log unavailable", zap.String("job", j.ID), zap.Error(err))
	}
	progress(fmt.Sprintf("[任务开始] provider=%s model=%s", cfg.LLM.Provider, cfg.Model()))

	fail := func(err error) {
		progress(fmt.Sprintf("[任务失败] %s", err.Error()))
		m.log.Error("script job failed", zap.String("job", j.ID), zap.Error(err))
		m.update(j, func(j *Job) {
			j.Status = JobFailed
			j.Error = err.Error()
		})
	}

	timeoutMin := cfg.Server.JobTimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 60
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMin)*time.Minute)
	defer cancel()

	cli, err := m.newClient(ctx, cfg)
	if err != nil {
		fail(err)
		return
	}
	gen := script.NewGenerator(cli, cfg.Model()).
		WithLogger(progress).
		WithZap(m.log.With(zap.String("job", j.ID))).
		WithDelay(time.Duration(cfg.LLM.DelayMs) * time.Millisecond).
		WithRequestTimeout(time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second).
		WithResultHook(func(r script.FileResult) {
			m.update(j, func(j *Job) {
				j.Results = append(j.Results, r)
				if r.OK {
					j.Completed++
				} else {
					j.Failed++
				}
			})
		})

	if req.Folder != "" {
		results, err := gen.Folder(ctx, req.Folder, req.Prompt, j.Dir)
		if err != nil {
			fail(err)
			return
		}
		ok, failed := script.Counts(results)
		progress(fmt.Sprintf("[任务结束] 成功 %d 个，失败 %d 个", ok, failed))
	} else {
		sum, err := gen.File(ctx, req.Prompt, req.Path, j.Dir)
		r := script.FileResult{Name: filepath.Base(req.Path), Output: j.Dir, OK: err == nil, Summary: sum, Err: err}
		if err != nil {
			r.Error = err.Error()
		}
		gen.OnResult(r)
		if err != nil {
			fail(err)
			return
		}
		progress("[任务结束] 成功 1 个，失败 0 个")
	}
	m.update(j, func(j *Job) { j.Status = JobDone })
}
