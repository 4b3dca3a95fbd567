// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"sort"
	"strconv"
	"strings"
)

// ParseSelection parses a 1-based selection expression over n results.
// Accepted forms, comma separated: a single index "3", a range "2-5",
// and "all". Invalid tokens and out-of-range indices are skipped. The
// returned indices are sorted and unique.
func ParseSelection(expr string, n int) []int {
	expr = strings.TrimSpace(expr)
	if n <= 0 || expr == "" {
		return nil
	}

	if strings.EqualFold(expr, "all") {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i + 1
		}
		return indices
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if lo, hi, ok := parseRange(token); ok {
			for i := lo; i <= hi; i++ {
				if i >= 1 && i <= n {
					seen[i] = true
				}
			}
			continue
		}

		idx, err := strconv.Atoi(token)
		if err != nil || idx < 1 || idx > n {
			continue
		}
		seen[idx] = true
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// parseRange parses "lo-hi" with lo <= hi.
func parseRange(token string) (lo, hi int, ok bool) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}
