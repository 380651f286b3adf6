package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/chapter"
	"github.com/ibreez3/novel-prep/script"
	"github.com/ibreez3/novel-prep/textio"
	"github.com/ibreez3/novel-prep/wordcount"
)

// MockClient answers every request with one narration line per paragraph
// of the chapter text it was given.
type MockClient struct{}

func (m *MockClient) Chat(ctx context.Context, model, system, user string) (string, error) {
	const marker = "以下是需要处理的小说文本：\n"
	i := strings.Index(user, marker)
	if i < 0 {
		return `[{"speaker":"旁白","content":"测试","tone":"neutral","intensity":5,"delay":500}]`, nil
	}
	text := user[i+len(marker):]
	if j := strings.Index(text, "\n\n请严格按照"); j >= 0 {
		text = text[:j]
	}
	var lines []script.Line
	for _, p := range strings.Split(text, "\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lines = append(lines, script.Line{Speaker: "旁白", Content: p, Tone: "neutral", Intensity: 5, Delay: 500})
	}
	b, _ := json.Marshal(lines)
	return "```json\n" + string(b) + "\n```", nil
}

func main() {
	base := filepath.Join("output", "jobs", "mock-run")
	_ = os.RemoveAll(base)
	if err := os.MkdirAll(base, 0o755); err != nil {
		fmt.Println("创建目录失败:", err)
		os.Exit(1)
	}
	log := zap.NewExample()
	defer func() { _ = log.Sync() }()

	novel := filepath.Join(base, "测试作品.txt")
	var b strings.Builder
	b.WriteString("作者的话\n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "第%d章 测试章节%d\n", i, i)
		rows := 5
		if i == 2 {
			rows = 120
		}
		for k := 0; k < rows; k++ {
			b.WriteString(strings.Repeat("这是章节正文示例", 6) + "\n")
		}
	}
	if err := textio.WriteFileAtomic(novel, []byte(b.String()), 0o644); err != nil {
		fmt.Println("写入失败:", err)
		os.Exit(1)
	}

	dir, files, err := chapter.NewSplitter(textio.UTF8, base, log).SplitFile(novel)
	if err != nil || len(files) != 3 {
		fmt.Println("章节拆分失败:", err, len(files))
		os.Exit(2)
	}

	rep, err := wordcount.Analyze(dir, log)
	if err != nil {
		fmt.Println("字数统计失败:", err)
		os.Exit(3)
	}
	sum := wordcount.NewExecutor(textio.FS{}, log).ExecuteAll(wordcount.Plan(rep, nil))
	if len(rep.Long) != 1 || sum.Failed != 0 {
		fmt.Println("长章节拆分异常:", len(rep.Long), sum.Failed)
		os.Exit(4)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	gen := script.NewGenerator(&MockClient{}, "mock").WithZap(log).WithDelay(10 * time.Millisecond)
	results, err := gen.Folder(ctx, dir, script.DefaultPrompt, "")
	if err != nil {
		fmt.Println("脚本生成失败:", err)
		os.Exit(5)
	}
	ok, failed := script.Counts(results)
	fmt.Println("章节:", len(files), "长章节:", len(rep.Long), "脚本成功:", ok, "失败:", failed)
	if failed != 0 {
		os.Exit(6)
	}
	for _, r := range results {
		if _, e := os.Stat(r.Output); e != nil {
			fmt.Println("缺少文件:", r.Output)
			os.Exit(7)
		}
	}
	fmt.Println("流程验证通过:", script.DefaultFolderOutput(dir))
}
