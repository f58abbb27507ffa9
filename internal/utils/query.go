package utils

import (
	"strconv"
	"strings"

	"campus-directory/internal/models"
)

// ParseQueryList handles both repeated and comma-separated query params.
// Empty entries are dropped.
// Example:
//
//	?category=cafe,library   → ["cafe","library"]
//	?category=cafe&category=library  → ["cafe","library"]
func ParseQueryList(q map[string][]string, key string) []string {
	values := q[key]

	if len(values) == 0 {
		return nil
	}

	var cleaned []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				cleaned = append(cleaned, p)
			}
		}
	}
	return cleaned
}

// ParseBool reads a boolean query value; anything unparseable is false.
func ParseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// ExpandCategoryGroups resolves category group names (e.g. "restaurants")
// into OSM categories and merges them with explicit categories, without
// duplicates. Unknown group names are ignored.
func ExpandCategoryGroups(groups, categories []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	for _, c := range categories {
		add(c)
	}
	for _, g := range groups {
		for _, c := range models.CategoryGroups[strings.ToLower(g)] {
			add(c)
		}
	}
	return out
}
