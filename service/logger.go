package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobLogger is the run log of one script job: the progress lines a user
// reads back through the server, stored at {base}/jobs/{id}.log. Every line
// is mirrored to zap at debug level with the job ID attached.
type JobLogger struct {
	mu   sync.Mutex
	path string
	zl   *zap.Logger
}

func NewJobLogger(baseDir, jobID string, zl *zap.Logger) (*JobLogger, error) {
	logsDir := filepath.Join(baseDir, "jobs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	if zl == nil {
		zl = zap.NewNop()
	}
	return &JobLogger{path: filepath.Join(logsDir, jobID+".log"), zl: zl.With(zap.String("job", jobID))}, nil
}

// Log appends "[2006-01-02 15:04:05] msg". A failed append is reported to
// zap and otherwise ignored so progress never stops a job.
func (l *JobLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl.Debug("progress", zap.String("msg", msg))
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l.zl.Warn("run log append failed", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), msg); err != nil {
		l.zl.Warn("run log append failed", zap.Error(err))
	}
}

// Read returns the run log so far. A job that has not logged anything yet
// reads as empty.
func (l *JobLogger) Read() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return b, err
}

func (l *JobLogger) Path() string { return l.path }
