package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatServer(t *testing.T, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		if seen != nil {
			_ = json.Unmarshal(b, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChat(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"[{\"speaker\":\"旁白\"}]"}}]}`, &req)
	cli := NewClient("sk-test", srv.URL+"/v1/")
	got, err := cli.Chat(context.Background(), "m", "", "正文")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got != `[{"speaker":"旁白"}]` {
		t.Fatalf("content=%q", got)
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("empty system prompt should be omitted: %v", req["messages"])
	}
}

func TestChatNoChoices(t *testing.T) {
	srv := chatServer(t, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
	_, err := NewClient("sk-test", srv.URL+"/v1/").Chat(context.Background(), "m", "sys", "u")
	if !errors.Is(err, ErrNoChoices) {
		t.Fatalf("err=%v", err)
	}
}
