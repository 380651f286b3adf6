package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// parseSelection turns "a", "" or "1, 3" into zero-based indexes below n.
// Duplicates collapse and the result is sorted.
func parseSelection(input string, n int) ([]int, error) {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "":
		return nil, nil
	case "a", "all":
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	seen := map[int]bool{}
	var out []int
	for _, tok := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == '，' || r == ' ' }) {
		k, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", tok)
		}
		if k < 1 || k > n {
			return nil, fmt.Errorf("%d out of range 1-%d", k, n)
		}
		if !seen[k-1] {
			seen[k-1] = true
			out = append(out, k-1)
		}
	}
	sort.Ints(out)
	return out, nil
}

// confirmed accepts y and yes in any case; anything else, including an
// empty answer, means no.
func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "是":
		return true
	}
	return false
}
