package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepoFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "README.md"), "# widgets")
	mustWriteFile(t, filepath.Join(root, "go.mod"), "module widgets")
	mustWriteFile(t, filepath.Join(root, "src", "handler.go"), "package src")
	mustWriteFile(t, filepath.Join(root, "tests", "handler_test.go"), "package tests")
	mustWriteFile(t, filepath.Join(root, "docs", "guide.md"), "# guide")
	return root
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRepoRootJoinsBaseDirAndRepo(t *testing.T) {
	assert.Equal(t, filepath.Join("/base", "repos", "acme/widgets"), RepoRoot("/base", "acme/widgets"))
}

func TestDiscoverRepoFileHintsReturnsNilForMissingRepo(t *testing.T) {
	hints := DiscoverRepoFileHints(filepath.Join(t.TempDir(), "does-not-exist"), 6)
	assert.Nil(t, hints)
}

func TestDiscoverRepoFileHintsFindsTopLevelFiles(t *testing.T) {
	root := writeRepoFixture(t)
	hints := DiscoverRepoFileHints(root, 6)
	assert.Contains(t, hints, "README.md")
	assert.Contains(t, hints, "go.mod")
}

func TestDiscoverRepoPhaseHintsBucketsByKind(t *testing.T) {
	root := writeRepoFixture(t)
	hints := DiscoverRepoPhaseHints(root, 6, 4, 3)
	assert.Contains(t, hints.Implementation, filepath.Join("src", "handler.go"))
	assert.Contains(t, hints.Tests, filepath.Join("tests", "handler_test.go"))
	assert.Contains(t, hints.Docs, filepath.Join("docs", "guide.md"))
}

func TestDiscoverRepoPhaseHintsReturnsEmptyForMissingRepo(t *testing.T) {
	hints := DiscoverRepoPhaseHints(filepath.Join(t.TempDir(), "missing"), 6, 4, 3)
	assert.Empty(t, hints.Implementation)
	assert.Empty(t, hints.Tests)
	assert.Empty(t, hints.Docs)
}

func TestDiscoverReadmeHeadingsReturnsTopLevelSectionsInOrder(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "README.md"), "# Widgets\n\n## Installation\n\nRun `go install`.\n\n## Usage\n\nSee examples.\n\n### Advanced\n\nskipped, too deep\n")

	headings := DiscoverReadmeHeadings(root, 6)
	assert.Equal(t, []string{"Widgets", "Installation", "Usage"}, headings)
}

func TestDiscoverReadmeHeadingsReturnsNilWhenReadmeMissing(t *testing.T) {
	assert.Nil(t, DiscoverReadmeHeadings(t.TempDir(), 6))
}
