package utils

import "strings"

// UniqueStrings removes duplicates while preserving the first occurrence order.
// It never returns nil so that JSON columns render as [] rather than null.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeSymbol trims and upper-cases a ticker.
// Examples:
//
//	" nq1! " -> NQ1!
//	es       -> ES
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// SplitList splits a delimited cell such as "ICT-FVG; Breaker" into trimmed,
// non-empty items.
func SplitList(cell string, sep string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
