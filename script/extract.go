package script

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ErrInvalidJSON is returned when the model reply holds no JSON array.
var ErrInvalidJSON = errors.New("response is not a JSON array")

// ExtractArray pulls the JSON array out of a model reply: a fenced code block
// is unwrapped first, then everything from the first '[' to the last ']' is
// kept. Without brackets the reply is returned as is.
func ExtractArray(s string) string {
	if i := strings.Index(s, "```"); i != -1 {
		if j := strings.Index(s[i+3:], "```"); j != -1 {
			content := s[i+3 : i+3+j]
			if nl := strings.IndexByte(content, '\n'); nl != -1 && nl < 16 {
				if header := content[:nl]; !strings.ContainsAny(header, "{}[]") {
					content = content[nl+1:]
				}
			}
			s = content
		}
	}
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start == -1 || end < start {
		return strings.TrimSpace(s)
	}
	return s[start : end+1]
}

// CheckArray is the only check made on model output: valid JSON with an
// array at the top level.
func CheckArray(s string) error {
	if !gjson.Valid(s) || !gjson.Parse(s).IsArray() {
		return ErrInvalidJSON
	}
	return nil
}

// Format re-indents a JSON document with two spaces. Non-ASCII text is kept
// as is.
func Format(s string) []byte {
	return pretty.PrettyOptions([]byte(s), &pretty.Options{Indent: "  "})
}
