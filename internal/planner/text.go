package planner

import (
	"regexp"
	"sort"
	"strings"
)

func containsAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

var keywordTokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_-]{2,}`)

// keywordTokens extracts lowercase identifier-shaped tokens from text,
// preserving first-seen order and dropping duplicates, for use as the
// "context terms" a phase's file ranking is biased toward.
func keywordTokens(text string) []string {
	matches := keywordTokenRe.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// dedupe preserves first-seen order while dropping blanks and repeats.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		cleaned := strings.TrimSpace(item)
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		out = append(out, cleaned)
	}
	return out
}

func hasSuffixAny(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsString(s string, sub []string) bool {
	for _, v := range sub {
		if s == v {
			return true
		}
	}
	return false
}

// partitionFiles splits a flat filesHint list into implementation, test,
// and doc buckets by path shape, mirroring the planner's own test/doc
// detection heuristics rather than relying on file extension alone.
func partitionFiles(filesHint []string) (impl, tests, docs []string) {
	for _, item := range filesHint {
		lowered := strings.ToLower(item)
		switch {
		case strings.Contains(lowered, "tests/") || strings.HasPrefix(lowered, "tests") ||
			strings.Contains(lowered, "test_") || strings.HasSuffix(lowered, "_test.py") ||
			strings.Contains(lowered, "/spec") || strings.Contains(lowered, "__tests__"):
			tests = append(tests, item)
		case lowered == "readme.md" || strings.HasPrefix(lowered, "docs/") ||
			strings.HasSuffix(lowered, ".md") || strings.Contains(lowered, "changelog"):
			docs = append(docs, item)
		default:
			impl = append(impl, item)
		}
	}
	return
}

// rankedFileSubset scores candidates by preferred/context term hits (ties
// broken by earliest original index, so the ranking is stable) and returns
// at most maxItems, falling back to the raw candidate prefix when nothing
// scores above zero.
func rankedFileSubset(candidates []string, preferredTerms, contextTerms, fallback []string, maxItems int) []string {
	if len(candidates) == 0 {
		return firstN(dedupe(fallback), maxItems)
	}

	type scored struct {
		score int
		index int
		path  string
	}
	rows := make([]scored, len(candidates))
	for i, path := range candidates {
		lowered := strings.ToLower(path)
		score := 0
		for _, term := range preferredTerms {
			if strings.Contains(lowered, term) {
				score += 4
			}
		}
		for _, term := range contextTerms {
			if strings.Contains(lowered, term) {
				score += 1
			}
		}
		rows[i] = scored{score: score, index: i, path: path}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].index < rows[j].index
	})

	var chosen []string
	for _, r := range rows {
		if r.score <= 0 {
			break
		}
		chosen = append(chosen, r.path)
		if len(chosen) >= maxItems {
			break
		}
	}
	if len(chosen) == 0 {
		chosen = firstN(candidates, maxItems)
	}
	return firstN(dedupe(append(chosen, fallback...)), maxItems)
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
