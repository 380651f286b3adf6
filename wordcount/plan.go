package wordcount

import "strconv"

// PartPlan is the number of parts a long file is cut into and the suffix
// appended to the base name of each part.
type PartPlan struct {
	N      int      `json:"parts"`
	Labels []string `json:"labels"`
}

// Rule maps a character-count range [Min, Max) to a plan. Max <= 0 means
// unbounded.
type Rule struct {
	Min    int
	Max    int
	Parts  func(count int) int
	Labels func(n int) []string
}

func (r Rule) matches(count int) bool {
	return count >= r.Min && (r.Max <= 0 || count < r.Max)
}

var (
	twoLabels   = []string{"《上》", "《下》"}
	threeLabels = []string{"《上》", "《中》", "《下》"}
)

// Rules is evaluated in order; the first match wins. Counts that match no
// rule fall back to numbered parts.
var Rules = []Rule{
	{Min: Limit + 1, Max: 2 * Limit, Parts: fixed(2), Labels: func(int) []string { return twoLabels }},
	{Min: 2 * Limit, Max: 3 * Limit, Parts: fixed(3), Labels: func(int) []string { return threeLabels }},
}

var fallback = Rule{Parts: numberedParts, Labels: numberedLabels}

// PlanParts decides how many parts a file of count characters is split into.
// Callers only split files with count > Limit.
func PlanParts(count int) PartPlan {
	rule := fallback
	for _, r := range Rules {
		if r.matches(count) {
			rule = r
			break
		}
	}
	n := rule.Parts(count)
	if n < 1 {
		n = 1
	}
	labels := rule.Labels(n)
	out := make([]string, n)
	copy(out, labels)
	return PartPlan{N: n, Labels: out}
}

func fixed(n int) func(int) int {
	return func(int) int { return n }
}

func numberedParts(count int) int {
	if count <= 0 {
		return 1
	}
	return (count-1)/Limit + 1
}

func numberedLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = "《" + strconv.Itoa(i+1) + "》"
	}
	return labels
}
