package script

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Line is one narration or dialogue entry of a generated script.
type Line struct {
	Speaker   string `json:"speaker"`
	Content   string `json:"content"`
	Tone      string `json:"tone"`
	Intensity Number `json:"intensity"`
	Delay     Number `json:"delay"`
}

// Number accepts 5, 5.0 and "5". Anything else decodes to 0; script output
// is never rejected on field types.
type Number int

func (n *Number) UnmarshalJSON(b []byte) error {
	var i int
	if err := json.Unmarshal(b, &i); err == nil {
		*n = Number(i)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, e := strconv.ParseFloat(strings.TrimSpace(s), 64); e == nil {
			*n = Number(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// Summary describes a saved script for progress messages.
type Summary struct {
	Entries  int      `json:"entries"`
	Speakers []string `json:"speakers"`
	DelayMs  int      `json:"delay_ms"`
}

// Summarize reads a checked JSON array. Elements that are not objects only
// count towards Entries.
func Summarize(arr string) Summary {
	var sum Summary
	seen := map[string]bool{}
	var lines []Line
	if err := json.Unmarshal([]byte(arr), &lines); err != nil {
		sum.Entries = len(gjson.Parse(arr).Array())
		return sum
	}
	sum.Entries = len(lines)
	for _, l := range lines {
		sum.DelayMs += int(l.Delay)
		if l.Speaker != "" && !seen[l.Speaker] {
			seen[l.Speaker] = true
			sum.Speakers = append(sum.Speakers, l.Speaker)
		}
	}
	return sum
}
