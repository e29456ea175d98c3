package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeIdentifierCollapsesDisallowedRuns(t *testing.T) {
	assert.Equal(t, "fix-the-bug", SanitizeIdentifier("fix the!!! bug"))
	assert.Equal(t, "a-b", SanitizeIdentifier("a///b"))
}

func TestSanitizeIdentifierTrimsLeadingAndTrailingSeparators(t *testing.T) {
	assert.Equal(t, "task", SanitizeIdentifier("   "))
	assert.Equal(t, "abc", SanitizeIdentifier("--abc__"))
}

func TestSanitizeIdentifierPreservesAlreadyCleanValue(t *testing.T) {
	assert.Equal(t, "S1-fix_bug", SanitizeIdentifier("S1-fix_bug"))
}

func TestSubtasksByIDIndexesByIDAndSharesBackingArray(t *testing.T) {
	plan := &Plan{Subtasks: []Subtask{
		{ID: "S1", Title: "first"},
		{ID: "S2", Title: "second"},
	}}

	byID := plan.SubtasksByID()
	require := func(cond bool) {
		if !cond {
			t.Fatal("expected subtask present")
		}
	}
	require(byID["S1"] != nil)
	require(byID["S2"] != nil)
	assert.Equal(t, "first", byID["S1"].Title)

	byID["S1"].Title = "renamed"
	assert.Equal(t, "renamed", plan.Subtasks[0].Title)
}
