package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/script"
	"github.com/ibreez3/novel-prep/service"
)

type echoClient struct{}

func (echoClient) Chat(ctx context.Context, model, system, user string) (string, error) {
	return `[{"speaker":"旁白","content":"x","tone":"neutral","intensity":5,"delay":300}]`, nil
}

func setup(t *testing.T) (*gin.Engine, config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var cfg config.Config
	cfg.LLM.Provider = config.ProviderGemini
	cfg.Gemini.Model = "mock"
	cfg.Chapter.Encoding = "utf-8"
	cfg.Chapter.OutDir = t.TempDir()
	cfg.Output.Dir = t.TempDir()
	mgr := service.NewManager(cfg, zap.NewNop()).WithClientFactory(func(context.Context, config.Config) (script.Client, error) {
		return echoClient{}, nil
	})
	return newRouter(cfg, mgr, zap.NewNop()), cfg
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func longText(lines, per int) string {
	row := strings.Repeat("字", per)
	out := make([]string, lines)
	for i := range out {
		out[i] = row
	}
	return strings.Join(out, "\n")
}

func novelFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{"long.txt": longText(50, 100), "short.txt": "很短的一章"}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestAnalyzeAndSplit(t *testing.T) {
	r, _ := setup(t)
	dir := novelFolder(t)

	w := do(t, r, http.MethodPost, "/api/analyze", AnalyzeReq{Folder: dir})
	if w.Code != http.StatusOK {
		t.Fatalf("analyze %d: %s", w.Code, w.Body)
	}
	var rep struct {
		CSV   string     `json:"csv"`
		Files []FileView `json:"files"`
		Long  int        `json:"long"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Long != 1 || rep.Files[0].Name != "long.txt" || rep.Files[0].Count != 5000 || rep.Files[0].Parts != 2 {
		t.Fatalf("report=%+v", rep)
	}
	if _, err := os.Stat(rep.CSV); err != nil {
		t.Fatalf("csv: %v", err)
	}

	w = do(t, r, http.MethodPost, "/api/split", SplitReq{Folder: dir, Files: []string{"long.txt"}})
	if w.Code != http.StatusOK {
		t.Fatalf("split %d: %s", w.Code, w.Body)
	}
	var sum struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &sum)
	if sum.Succeeded != 1 || sum.Failed != 0 {
		t.Fatalf("summary=%s", w.Body)
	}
	for _, name := range []string{"long《上》.txt", "long《下》.txt", "short.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "long.txt")); !os.IsNotExist(err) {
		t.Fatalf("source should be removed")
	}
}

func TestAnalyzeErrors(t *testing.T) {
	r, _ := setup(t)
	if w := do(t, r, http.MethodPost, "/api/analyze", AnalyzeReq{Folder: filepath.Join(t.TempDir(), "nope")}); w.Code != http.StatusNotFound {
		t.Fatalf("missing folder: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/analyze", AnalyzeReq{Folder: t.TempDir()}); w.Code != http.StatusNotFound {
		t.Fatalf("empty folder: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/split", SplitReq{Folder: t.TempDir()}); w.Code != http.StatusBadRequest {
		t.Fatalf("split without files: %d", w.Code)
	}
}

func TestChapters(t *testing.T) {
	r, cfg := setup(t)
	src := filepath.Join(t.TempDir(), "novel.txt")
	body := "序言\n第1章 开端\n  正文一  \n第12章 风起/云涌\n正文二\n"
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	w := do(t, r, http.MethodPost, "/api/chapters", ChaptersReq{Path: src})
	if w.Code != http.StatusOK {
		t.Fatalf("chapters %d: %s", w.Code, w.Body)
	}
	var res struct {
		Dir   string   `json:"dir"`
		Count int      `json:"count"`
		Files []string `json:"files"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Count != 2 || res.Dir != filepath.Join(cfg.Chapter.OutDir, "novel") {
		t.Fatalf("res=%+v", res)
	}
	if filepath.Base(res.Files[1]) != "第0012章_风起云涌.txt" {
		t.Fatalf("files=%v", res.Files)
	}

	noHeaders := filepath.Join(t.TempDir(), "plain.txt")
	_ = os.WriteFile(noHeaders, []byte("没有章节标题"), 0o644)
	if w := do(t, r, http.MethodPost, "/api/chapters", ChaptersReq{Path: noHeaders}); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no chapters: %d", w.Code)
	}
}

func TestScriptJob(t *testing.T) {
	r, _ := setup(t)
	in := filepath.Join(t.TempDir(), "ch1.txt")
	_ = os.WriteFile(in, []byte("正文"), 0o644)

	w := do(t, r, http.MethodPost, "/api/script", service.ScriptRequest{Path: in})
	if w.Code != http.StatusOK {
		t.Fatalf("script %d: %s", w.Code, w.Body)
	}
	var started struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &started)
	if started.ID == "" {
		t.Fatalf("no id: %s", w.Body)
	}

	var prog struct {
		Status    string `json:"status"`
		Completed int    `json:"completed"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w = do(t, r, http.MethodGet, "/api/progress?id="+started.ID, nil)
		_ = json.Unmarshal(w.Body.Bytes(), &prog)
		if prog.Status == string(service.JobDone) || prog.Status == string(service.JobFailed) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if prog.Status != string(service.JobDone) || prog.Completed != 1 {
		t.Fatalf("progress=%+v", prog)
	}
	if _, err := os.Stat(strings.TrimSuffix(in, ".txt") + ".json"); err != nil {
		t.Fatalf("output: %v", err)
	}
	w = do(t, r, http.MethodGet, "/api/log?id="+started.ID, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "完成") {
		t.Fatalf("log %d: %s", w.Code, w.Body)
	}

	if w := do(t, r, http.MethodPost, "/api/script", service.ScriptRequest{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty request: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/progress?id=missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/log?id=missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown log id: %d", w.Code)
	}
}

func TestPresets(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodGet, "/api/presets", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"default_provider":"gemini"`) {
		t.Fatalf("presets %d: %s", w.Code, w.Body)
	}
}
