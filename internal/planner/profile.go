package planner

import "strings"

// TaskProfile classifies a task request along three axes the engine uses to
// pick which subtask-builder to run: is this pure analysis, pure docs, or a
// code change (possibly needing a foundation split first).
type TaskProfile struct {
	FilesHint              []string
	ImplementationFiles    []string
	TestFiles              []string
	DocFiles               []string
	DocsRequested          bool
	TestsRequested         bool
	DocsOnly               bool
	AnalysisOnly           bool
	RequiresFoundationSplit bool
}

var conjunctionTokens = []string{" and ", " then ", " also ", " plus ", "以及", "并且"}

// buildTaskProfile scores the combined title+objective text against the
// term lists and a handful of complexity signals (long objective, several
// files hinted, explicit constraints, foundation-split terms, conjunctions
// joining multiple asks) to decide whether a foundation subtask is needed
// ahead of the main implementation subtask.
func buildTaskProfile(title, objective string, filesHint []string, hasExplicitFilesHint bool, hasConstraints bool) TaskProfile {
	combined := title + "\n" + objective
	implFiles, testFiles, docFiles := partitionFiles(filesHint)

	docsRequested := containsAny(combined, docActionTerms) || (hasExplicitFilesHint && len(docFiles) > 0)
	codeRequested := containsAny(combined, codeChangeTerms) || (hasExplicitFilesHint && len(implFiles) > 0)
	analysisRequested := containsAny(combined, analysisTerms)
	docsOnly := docsRequested && !analysisRequested && !codeRequested && len(testFiles) == 0
	analysisOnly := analysisRequested && !codeRequested && !docsRequested

	complexityScore := 0
	if len(objective) >= 140 {
		complexityScore++
	}
	if len(filesHint) >= 3 {
		complexityScore++
	}
	if hasConstraints {
		complexityScore++
	}
	if containsAny(combined, foundationSplitTerms) {
		complexityScore++
	}
	lowered := strings.ToLower(combined)
	for _, token := range conjunctionTokens {
		if strings.Contains(lowered, token) {
			complexityScore++
			break
		}
	}

	testsRequested := !docsOnly && !analysisOnly
	requiresFoundationSplit := !docsOnly && !analysisOnly &&
		(complexityScore >= 3 || containsAny(combined, foundationSplitTerms))

	return TaskProfile{
		FilesHint:               filesHint,
		ImplementationFiles:     implFiles,
		TestFiles:               testFiles,
		DocFiles:                docFiles,
		DocsRequested:           docsRequested,
		TestsRequested:          testsRequested,
		DocsOnly:                docsOnly,
		AnalysisOnly:            analysisOnly,
		RequiresFoundationSplit: requiresFoundationSplit,
	}
}

// phaseFiles ranks the repo's discovered file hints (or the profile's own
// explicit hints) into the four pools each subtask builder draws from:
// foundation, implementation, validation, documentation.
func phaseFiles(repoRoot, title, objective string, profile TaskProfile, hasExplicitFilesHint bool) map[string][]string {
	contextTerms := keywordTokens(title + " " + objective)
	discovered := DiscoverRepoPhaseHints(repoRoot, 6, 4, 3)

	var implementationFiles, testFiles, docFiles []string
	if hasExplicitFilesHint {
		implementationFiles = orElse(profile.ImplementationFiles, discovered.Implementation)
		testFiles = orElse(profile.TestFiles, discovered.Tests)
		docFiles = orElse(profile.DocFiles, discovered.Docs)
	} else {
		implementationFiles = discovered.Implementation
		testFiles = discovered.Tests
		docFiles = discovered.Docs
	}

	foundationFallback := firstN(implementationFiles, 2)
	if len(foundationFallback) == 0 {
		foundationFallback = firstN(profile.FilesHint, 2)
	}
	foundation := rankedFileSubset(implementationFiles, foundationFileTerms, contextTerms, foundationFallback, 4)

	implFallback := firstN(implementationFiles, 3)
	if len(implFallback) == 0 {
		implFallback = foundation
	}
	primaryImpl := rankedFileSubset(implementationFiles, implementationFileTerms, contextTerms, implFallback, 4)

	validationCandidates := testFiles
	if len(validationCandidates) == 0 {
		validationCandidates = implementationFiles
	}
	validationFallback := append(firstN(testFiles, 2), firstN(primaryImpl, 2)...)
	if len(validationFallback) == 0 {
		validationFallback = []string{"tests/"}
	}
	validation := rankedFileSubset(validationCandidates, []string{"test", "spec", "fixture", "integration", "e2e"}, contextTerms, validationFallback, 4)

	docCandidates := docFiles
	if len(docCandidates) == 0 {
		docCandidates = profile.FilesHint
	}
	docFallback := firstN(docFiles, 2)
	if len(docFallback) == 0 {
		docFallback = []string{"README.md", "docs/"}
	}
	documentation := rankedFileSubset(docCandidates, docFileTerms, contextTerms, docFallback, 4)

	return map[string][]string{
		"foundation":     foundation,
		"implementation": primaryImpl,
		"validation":     validation,
		"documentation":  documentation,
	}
}

func orElse(primary, fallback []string) []string {
	if len(primary) > 0 {
		return primary
	}
	return fallback
}
