package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/chapter"
	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/logging"
	"github.com/ibreez3/novel-prep/service"
	"github.com/ibreez3/novel-prep/textio"
	"github.com/ibreez3/novel-prep/wordcount"
)

type AnalyzeReq struct {
	Folder string `json:"folder"`
}

type SplitReq struct {
	Folder string   `json:"folder"`
	Files  []string `json:"files"`
}

type ChaptersReq struct {
	Path     string `json:"path"`
	Out      string `json:"out"`
	Encoding string `json:"encoding"`
}

// FileView is a FileStat with its status label spelled out.
type FileView struct {
	Name   string `json:"filename"`
	Count  int    `json:"word_count"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Parts  int    `json:"parts,omitempty"`
}

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.Log.Level, isatty.IsTerminal(os.Stdout.Fd()))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	mgr := service.NewManager(cfg, logger)
	r := newRouter(cfg, mgr, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("listening", zap.String("addr", addr), zap.String("provider", cfg.LLM.Provider))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newRouter(cfg config.Config, mgr *service.Manager, logger *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.POST("/api/analyze", func(c *gin.Context) {
		var req AnalyzeReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Folder == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing folder"})
			return
		}
		rep, err := wordcount.Analyze(req.Folder, logger)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": wordcount.Classify(err)})
			return
		}
		views := make([]FileView, 0, len(rep.Files))
		for _, f := range rep.Files {
			v := FileView{Name: f.Name, Count: f.Count, Status: f.Status()}
			if f.Err != nil {
				v.Error = f.Err.Error()
			}
			if f.Count > wordcount.Limit {
				v.Parts = wordcount.PlanParts(f.Count).N
			}
			views = append(views, v)
		}
		c.JSON(http.StatusOK, gin.H{
			"folder": rep.Folder,
			"csv":    rep.CSVPath,
			"files":  views,
			"long":   len(rep.Long),
			"limit":  wordcount.Limit,
		})
	})

	r.POST("/api/split", func(c *gin.Context) {
		var req SplitReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Folder == "" || len(req.Files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "folder and files are required"})
			return
		}
		rep, err := wordcount.Analyze(req.Folder, logger)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": wordcount.Classify(err)})
			return
		}
		jobs := wordcount.Plan(rep, req.Files)
		sum := wordcount.NewExecutor(textio.FS{}, logger).ExecuteAll(jobs)
		c.JSON(http.StatusOK, sum)
	})

	r.POST("/api/chapters", func(c *gin.Context) {
		var req ChaptersReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Path == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing path"})
			return
		}
		if req.Out == "" {
			req.Out = cfg.Chapter.OutDir
		}
		if req.Encoding == "" {
			req.Encoding = cfg.Chapter.Encoding
		}
		dir, files, err := chapter.NewSplitter(req.Encoding, req.Out, logger).SplitFile(req.Path)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "dir": dir, "files": files})
			return
		}
		c.JSON(http.StatusOK, gin.H{"dir": dir, "files": files, "count": len(files)})
	})

	r.POST("/api/script", func(c *gin.Context) {
		var req service.ScriptRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		job, err := mgr.StartScript(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": job.ID, "total": job.Total})
	})

	r.GET("/api/presets", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.GetPresets(cfg))
	})

	r.GET("/api/progress", func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
			return
		}
		j, ok := mgr.Get(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": j.Status, "completed": j.Completed, "failed": j.Failed, "total": j.Total, "dir": j.Dir, "error": j.Error, "log": j.LogPath, "results": j.Results})
	})

	r.GET("/api/log", func(c *gin.Context) {
		b, err := mgr.ReadLog(c.Query("id"))
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", b)
	})

	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, wordcount.ErrNoTextFiles):
		return http.StatusNotFound
	case errors.Is(err, chapter.ErrNoChapters), errors.Is(err, textio.ErrDecode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
