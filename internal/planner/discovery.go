package planner

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// RepoRoot resolves the checked-out working copy for repo under baseDir's
// repos/ directory. Discovery is a best-effort hint source: a missing repo
// simply yields no file hints rather than an error.
func RepoRoot(baseDir, repo string) string {
	return filepath.Join(baseDir, "repos", repo)
}

func priorityScore(path string) int {
	lowered := strings.ToLower(path)
	score := 0
	for index, marker := range repoScanPriorities {
		switch {
		case strings.HasSuffix(marker, "/"):
			if strings.HasPrefix(lowered, marker) {
				score += 100 - index
			}
		case lowered == marker:
			score += 120 - index
		case strings.Contains(lowered, marker):
			score += 40 - index
		}
	}
	if strings.HasSuffix(lowered, ".md") || strings.HasSuffix(lowered, ".txt") {
		score -= 5
	}
	return score
}

// DiscoverRepoFileHints performs a shallow (depth <= 2) scan of repoScanRoots
// and returns up to maxItems paths ranked by priorityScore, used to seed a
// plan's top-level filesHint when the caller supplied none.
func DiscoverRepoFileHints(repoRoot string, maxItems int) []string {
	info, err := os.Stat(repoRoot)
	if err != nil || !info.IsDir() {
		return nil
	}

	var candidates []string
	for _, rel := range repoScanRoots {
		root := repoRoot
		if rel != "" {
			root = filepath.Join(repoRoot, rel)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		sort.Slice(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
		})
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if entry.IsDir() {
				nestedPath := filepath.Join(root, entry.Name())
				nested, err := os.ReadDir(nestedPath)
				if err != nil {
					continue
				}
				sort.Slice(nested, func(i, j int) bool {
					return strings.ToLower(nested[i].Name()) < strings.ToLower(nested[j].Name())
				})
				if len(nested) > 4 {
					nested = nested[:4]
				}
				for _, child := range nested {
					if strings.HasPrefix(child.Name(), ".") || child.IsDir() {
						continue
					}
					rel, _ := filepath.Rel(repoRoot, filepath.Join(nestedPath, child.Name()))
					candidates = append(candidates, rel)
				}
			} else {
				rel, _ := filepath.Rel(repoRoot, filepath.Join(root, entry.Name()))
				candidates = append(candidates, rel)
			}
		}
	}

	unique := dedupe(candidates)
	sort.SliceStable(unique, func(i, j int) bool {
		si, sj := priorityScore(unique[i]), priorityScore(unique[j])
		if si != sj {
			return si > sj
		}
		return strings.ToLower(unique[i]) < strings.ToLower(unique[j])
	})
	return firstN(unique, maxItems)
}

func codePriorityScore(path string) int {
	lowered := strings.ToLower(path)
	if strings.Contains(lowered, ".bak") || hasSuffixAny(lowered, []string{"~", ".tmp", ".orig"}) {
		return -100
	}
	if hasSuffixAny(lowered, []string{".md", ".txt", ".css", ".scss", ".sass"}) {
		return -50
	}
	if strings.Contains(lowered, "test") || strings.Contains(lowered, "spec") {
		return -20
	}
	score := 0
	switch {
	case hasPrefixAny(lowered, []string{"src/lib/", "src/app/", "src/components/"}):
		score += 95
	case hasPrefixAny(lowered, []string{"src/", "app/", "server/", "backend/", "frontend/"}):
		score += 75
	case hasPrefixAny(lowered, []string{"scripts/", "prisma/"}):
		score += 50
	}
	if hasSuffixAny(lowered, codeFileExtensions) {
		score += 35
	}
	if containsString(lowered, configFallbackFiles) {
		score += 10
	}
	for _, term := range implementationFileTerms {
		if strings.Contains(lowered, term) {
			score += 6
		}
	}
	for _, term := range foundationFileTerms {
		if strings.Contains(lowered, term) {
			score += 4
		}
	}
	return score
}

func testPriorityScore(path string) int {
	lowered := strings.ToLower(path)
	if strings.Contains(lowered, ".bak") || hasSuffixAny(lowered, []string{"~", ".tmp", ".orig"}) {
		return -100
	}
	if hasSuffixAny(lowered, []string{".md", ".txt", ".json", ".css", ".scss", ".sass"}) {
		return -100
	}
	score := 0
	isTestLike := false
	if strings.Contains(lowered, "tests/") || strings.HasPrefix(lowered, "tests") {
		score += 90
		isTestLike = true
	}
	if strings.Contains(lowered, "test_") || hasSuffixAny(lowered, []string{"_test.py", ".spec.ts", ".spec.js", ".test.ts", ".test.js"}) {
		score += 70
		isTestLike = true
	}
	if strings.Contains(lowered, "__tests__") || strings.Contains(lowered, "/spec") {
		score += 60
		isTestLike = true
	}
	if !isTestLike {
		return 0
	}
	if hasSuffixAny(lowered, codeFileExtensions) {
		score += 15
	}
	return score
}

// DiscoverReadmeHeadings parses repoRoot's README.md (if present) and
// returns up to maxItems top-level (H1/H2) section titles, in document
// order. Used to seed a docs-only subtask's definition-of-done with the
// actual sections a writer would need to keep consistent, rather than a
// generic "update the docs" instruction.
func DiscoverReadmeHeadings(repoRoot string, maxItems int) []string {
	var content []byte
	for _, name := range []string{"README.md", "Readme.md", "readme.md"} {
		raw, err := os.ReadFile(filepath.Join(repoRoot, name))
		if err == nil {
			content = raw
			break
		}
	}
	if content == nil {
		return nil
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(content))

	var headings []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level > 2 {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(content))
			}
		}
		if title := strings.TrimSpace(buf.String()); title != "" {
			headings = append(headings, title)
		}
		return ast.WalkContinue, nil
	})
	return firstN(headings, maxItems)
}

// PhaseFileHints is the per-phase file-hint discovery result: the
// implementation/test/doc candidate sets a subtask builder ranks from.
type PhaseFileHints struct {
	Implementation []string
	Tests          []string
	Docs           []string
}

// DiscoverRepoPhaseHints walks repoScanRoots up to depth 3 and buckets every
// file found into implementation/tests/docs by score, used once per plan()
// call to seed every subtask-builder's candidate pool.
func DiscoverRepoPhaseHints(repoRoot string, maxImplementation, maxTests, maxDocs int) PhaseFileHints {
	info, err := os.Stat(repoRoot)
	if err != nil || !info.IsDir() {
		return PhaseFileHints{}
	}

	var candidates []string
	for _, rel := range repoScanRoots {
		root := repoRoot
		if rel != "" {
			root = filepath.Join(repoRoot, rel)
		}
		if st, err := os.Stat(root); err != nil || !st.IsDir() {
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			relFromRepo, _ := filepath.Rel(repoRoot, path)
			for _, part := range strings.Split(relFromRepo, string(filepath.Separator)) {
				if strings.HasPrefix(part, ".") {
					return nil
				}
			}
			relFromRoot, _ := filepath.Rel(root, path)
			depth := len(strings.Split(relFromRoot, string(filepath.Separator)))
			if depth > 3 {
				return nil
			}
			candidates = append(candidates, relFromRepo)
			return nil
		})
	}

	unique := dedupe(candidates)
	var docs, tests, implementation, configFallback []string
	for _, path := range unique {
		lowered := strings.ToLower(path)
		switch {
		case strings.HasSuffix(lowered, ".md") || strings.HasPrefix(lowered, "docs/"):
			docs = append(docs, path)
		case testPriorityScore(path) > 0:
			tests = append(tests, path)
		}
	}
	testSet := make(map[string]bool, len(tests))
	for _, t := range tests {
		testSet[t] = true
	}
	for _, path := range unique {
		if codePriorityScore(path) > 0 && !testSet[path] {
			implementation = append(implementation, path)
		}
		if containsString(strings.ToLower(path), configFallbackFiles) {
			configFallback = append(configFallback, path)
		}
	}

	sort.SliceStable(implementation, func(i, j int) bool {
		si, sj := codePriorityScore(implementation[i]), codePriorityScore(implementation[j])
		if si != sj {
			return si > sj
		}
		return strings.ToLower(implementation[i]) < strings.ToLower(implementation[j])
	})
	sort.SliceStable(tests, func(i, j int) bool {
		si, sj := testPriorityScore(tests[i]), testPriorityScore(tests[j])
		if si != sj {
			return si > sj
		}
		return strings.ToLower(tests[i]) < strings.ToLower(tests[j])
	})
	sort.SliceStable(docs, func(i, j int) bool {
		si, sj := priorityScore(docs[i]), priorityScore(docs[j])
		if si != sj {
			return si > sj
		}
		return strings.ToLower(docs[i]) < strings.ToLower(docs[j])
	})
	implementation = dedupe(append(implementation, configFallback...))

	return PhaseFileHints{
		Implementation: firstN(implementation, maxImplementation),
		Tests:          firstN(tests, maxTests),
		Docs:           firstN(docs, maxDocs),
	}
}
