package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

type fakeClient struct {
	mu      sync.Mutex
	replies map[string]string
	calls   []time.Time
	prompts []string
	err     error
}

func (f *fakeClient) Chat(ctx context.Context, model, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, time.Now())
	f.prompts = append(f.prompts, user)
	if f.err != nil {
		return "", f.err
	}
	for marker, reply := range f.replies {
		if strings.Contains(user, marker) {
			return reply, nil
		}
	}
	return `[{"speaker":"旁白","content":"默认","tone":"neutral","intensity":5,"delay":500}]`, nil
}

func TestExtractArray(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[{"a":1}]`, `[{"a":1}]`},
		{"prose", "好的，以下是结果：\n[{\"a\":1}]\n希望有帮助。", `[{"a":1}]`},
		{"fenced", "```json\n[1,2]\n```", `[1,2]`},
		{"fenced no lang", "```\n[\"x\"]\n```", `["x"]`},
		{"nested", `[{"a":[1,2]},{"b":[3]}] trailing`, `[{"a":[1,2]},{"b":[3]}]`},
		{"no array", `  {"a":1}  `, `{"a":1}`},
	}
	for _, c := range cases {
		if got := ExtractArray(c.in); got != c.want {
			t.Fatalf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}

func TestCheckArray(t *testing.T) {
	if err := CheckArray(`[{"speaker":"旁白"}]`); err != nil {
		t.Fatalf("array rejected: %v", err)
	}
	if err := CheckArray(`[]`); err != nil {
		t.Fatalf("empty array rejected: %v", err)
	}
	for _, bad := range []string{`{"a":1}`, `[1,2`, `not json`, ``} {
		if err := CheckArray(bad); !errors.Is(err, ErrInvalidJSON) {
			t.Fatalf("CheckArray(%q)=%v", bad, err)
		}
	}
}

func TestFormatKeepsChinese(t *testing.T) {
	out := string(Format(`[{"speaker":"旁白","content":"夜深了。窗外的风声越来越紧，他却迟迟没有睡意。","tone":"neutral"}]`))
	if !strings.Contains(out, "夜深了。窗外") || strings.Contains(out, `\u`) {
		t.Fatalf("unexpected escaping: %s", out)
	}
	if !strings.Contains(out, "\n  ") {
		t.Fatalf("expected two-space indentation: %s", out)
	}
	if !gjson.Valid(out) {
		t.Fatalf("formatted output invalid")
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(`[
		{"speaker":"旁白","content":"a","tone":"neutral","intensity":5,"delay":500},
		{"speaker":"张三","content":"b","tone":"愤怒","intensity":"8","delay":800.0},
		{"speaker":"旁白","content":"c","tone":"neutral","intensity":null,"delay":"x"}
	]`)
	if sum.Entries != 3 || sum.DelayMs != 1300 {
		t.Fatalf("summary=%+v", sum)
	}
	if len(sum.Speakers) != 2 || sum.Speakers[0] != "旁白" || sum.Speakers[1] != "张三" {
		t.Fatalf("speakers=%v", sum.Speakers)
	}
	if got := Summarize(`[1,"two",3]`); got.Entries != 3 {
		t.Fatalf("non-object entries=%d", got.Entries)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("指令", "正文内容")
	if !strings.Contains(p, "指令\n\n以下是需要处理的小说文本：\n正文内容") {
		t.Fatalf("prompt layout: %q", p)
	}
	if !strings.HasSuffix(p, "请严格按照上述要求处理，输出完整的JSON格式。\n") {
		t.Fatalf("prompt tail: %q", p)
	}
}

func TestFileWritesDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "第0001章_开端.txt")
	if err := os.WriteFile(in, []byte("夜深了。"), 0o644); err != nil {
		t.Fatal(err)
	}
	cli := &fakeClient{replies: map[string]string{"夜深了": "```json\n[{\"speaker\":\"旁白\",\"content\":\"夜深了。\",\"tone\":\"neutral\",\"intensity\":5,\"delay\":600}]\n```"}}
	var logs []string
	g := NewGenerator(cli, "mock").WithLogger(func(s string) { logs = append(logs, s) })
	sum, err := g.File(context.Background(), DefaultPrompt, in, "")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if sum.Entries != 1 {
		t.Fatalf("entries=%d", sum.Entries)
	}
	b, err := os.ReadFile(filepath.Join(dir, "第0001章_开端.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if gjson.GetBytes(b, "0.delay").Int() != 600 {
		t.Fatalf("output=%s", b)
	}
	if !strings.Contains(cli.prompts[0], "以下是需要处理的小说文本") {
		t.Fatalf("prompt not built")
	}
	if len(logs) == 0 || !strings.HasPrefix(logs[len(logs)-1], "完成") {
		t.Fatalf("logs=%v", logs)
	}
}

func TestFileInvalidJSONWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.txt")
	_ = os.WriteFile(in, []byte("坏"), 0o644)
	g := NewGenerator(&fakeClient{replies: map[string]string{"坏": "抱歉，我无法完成。"}}, "mock")
	_, err := g.File(context.Background(), "p", in, "")
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("no output expected")
	}
}

func TestFolderContinuesAfterFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chapters")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"1.txt": "好", "2.TXT": "坏", "3.txt": "好", "notes.md": "x"} {
		_ = os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644)
	}
	cli := &fakeClient{replies: map[string]string{"坏": "{}"}}
	g := NewGenerator(cli, "mock").WithDelay(40 * time.Millisecond)
	results, err := g.Folder(context.Background(), dir, "p", "")
	if err != nil {
		t.Fatalf("folder: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results=%d", len(results))
	}
	ok, failed := Counts(results)
	if ok != 2 || failed != 1 || results[1].Name != "2.TXT" || results[1].OK {
		t.Fatalf("results=%+v", results)
	}
	if _, err := os.Stat(filepath.Join(dir+"_json", "3.json")); err != nil {
		t.Fatalf("missing output: %v", err)
	}
	for i := 1; i < len(cli.calls); i++ {
		if gap := cli.calls[i].Sub(cli.calls[i-1]); gap < 30*time.Millisecond {
			t.Fatalf("requests %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestFolderEmpty(t *testing.T) {
	g := NewGenerator(&fakeClient{}, "mock")
	if _, err := g.Folder(context.Background(), t.TempDir(), "p", ""); !errors.Is(err, ErrNoTextFiles) {
		t.Fatalf("err=%v", err)
	}
}

func TestPingPropagatesError(t *testing.T) {
	g := NewGenerator(&fakeClient{err: errors.New("401 unauthorized")}, "mock")
	if err := g.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
}
