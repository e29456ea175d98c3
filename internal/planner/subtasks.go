package planner

import (
	"fmt"

	"github.com/zoeorch/zoeorch/internal/models"
)

func mergeDoD(phaseItems, globalItems []string) []string {
	return dedupe(append(append([]string{}, phaseItems...), globalItems...))
}

func subtask(id, title, description, agent, model, effort string, dependsOn, filesHint, dod []string, prompt string) models.Subtask {
	return models.Subtask{
		ID:               id,
		Title:            title,
		Description:      description,
		Agent:            agent,
		Model:            model,
		Effort:           effort,
		WorktreeStrategy: "isolated",
		DependsOn:        dependsOn,
		FilesHint:        filesHint,
		Prompt:           prompt,
		DefinitionOfDone: dod,
	}
}

type routing struct {
	agent, model, effort string
}

// planAnalysisTask builds the single-subtask plan for a pure-analysis
// request: inspect and report, never implement.
func planAnalysisTask(repo, title, objective string, hasConstraints bool, profile TaskProfile, r routing, globalDoD []string) []models.Subtask {
	dod := mergeDoD([]string{
		"Summarize the current implementation state with concrete file-level findings.",
		"Capture recommended next actions in a checked-in note or report file when no existing artifact is provided.",
	}, globalDoD)
	description := "Inspect the relevant code and document the current state, blockers, and recommended next steps."
	prompt := buildPrompt(promptInput{
		repo: repo, planTitle: title, objective: objective,
		subtaskID: "S1", subtaskTitle: "Analyze the current state", description: description,
		hasConstraints: hasConstraints, definitionOfDone: dod, filesHint: profile.FilesHint,
		phaseBoundary: "Focus on analysis and reporting. Do not implement speculative code changes unless they are required to make the report accurate.",
	})
	return []models.Subtask{subtask("S1", "Analyze the current state", description, r.agent, r.model, r.effort, nil, profile.FilesHint, dod, prompt)}
}

// planDocsOnlyTask builds the single-subtask plan for a docs-only request.
func planDocsOnlyTask(repo, title, objective string, hasConstraints bool, profile TaskProfile, r routing, globalDoD []string, repoRoot string) []models.Subtask {
	filesHint := profile.DocFiles
	if len(filesHint) == 0 {
		filesHint = []string{"README.md", "docs/"}
	}
	baseDoD := []string{
		"Update the requested documentation or written guidance.",
		"Keep examples, command snippets, and terminology internally consistent.",
	}
	for _, heading := range DiscoverReadmeHeadings(repoRoot, 6) {
		baseDoD = append(baseDoD, fmt.Sprintf("Keep the %q section accurate if it's affected by this change.", heading))
	}
	dod := mergeDoD(baseDoD, globalDoD)
	description := "Make the requested documentation changes and keep the written guidance consistent with the current repository behavior."
	prompt := buildPrompt(promptInput{
		repo: repo, planTitle: title, objective: objective,
		subtaskID: "S1", subtaskTitle: "Update documentation", description: description,
		hasConstraints: hasConstraints, definitionOfDone: dod, filesHint: filesHint,
		phaseBoundary: "Stay within docs, examples, and text-based guidance unless a tiny supporting code snippet must be corrected for accuracy.",
	})
	return []models.Subtask{subtask("S1", "Update documentation", description, r.agent, r.model, r.effort, nil, filesHint, dod, prompt)}
}

// planCodeChangeTasks builds the 2-4 subtask chain for a code-change
// request: an optional foundation subtask, the primary implementation
// subtask, an optional validation subtask, and an optional docs subtask,
// each depending on the one before it.
func planCodeChangeTasks(repo, title, objective string, hasConstraints bool, profile TaskProfile, r routing, globalDoD []string, repoRoot string, hasExplicitFilesHint bool) []models.Subtask {
	var subtasks []models.Subtask
	var dependencyChain []string

	phases := phaseFiles(repoRoot, title, objective, profile, hasExplicitFilesHint)
	implFiles := phases["implementation"]
	if len(implFiles) == 0 {
		implFiles = orElse(profile.ImplementationFiles, profile.FilesHint)
	}
	testFiles := phases["validation"]
	if len(testFiles) == 0 {
		testFiles = profile.TestFiles
		if len(testFiles) == 0 {
			testFiles = []string{"tests/"}
		}
	}
	docFiles := phases["documentation"]
	if len(docFiles) == 0 {
		docFiles = profile.DocFiles
		if len(docFiles) == 0 {
			docFiles = []string{"README.md", "docs/"}
		}
	}

	if profile.RequiresFoundationSplit {
		foundationFiles := phases["foundation"]
		if len(foundationFiles) == 0 {
			foundationFiles = implFiles
		}
		dod := mergeDoD([]string{
			"Extract or reshape the core implementation surface needed for the requested change.",
			"Leave the codebase in a stable state that the follow-up implementation step can build on directly.",
		}, globalDoD)
		description := "Make the structural or foundational code changes required before the main behavior update lands."
		prompt := buildPrompt(promptInput{
			repo: repo, planTitle: title, objective: objective,
			subtaskID: "S1", subtaskTitle: "Prepare the implementation surface", description: description,
			hasConstraints: hasConstraints, definitionOfDone: dod, filesHint: foundationFiles,
			phaseBoundary: "Focus on foundation work only. Do not absorb the follow-up validation or documentation work into this step.",
		})
		subtasks = append(subtasks, subtask("S1", "Prepare the implementation surface", description, r.agent, r.model, r.effort, nil, foundationFiles, dod, prompt))
		dependencyChain = []string{"S1"}
	}

	implID := fmt.Sprintf("S%d", len(subtasks)+1)
	implDoD := mergeDoD([]string{
		"Complete the primary behavior change requested by the objective.",
		"Keep the implementation scoped to the affected feature area.",
	}, globalDoD)
	implDescription := fmt.Sprintf("Implement the main repository change for '%s' and wire it through the affected code paths.", title)
	implPrompt := buildPrompt(promptInput{
		repo: repo, planTitle: title, objective: objective,
		subtaskID: implID, subtaskTitle: "Land the primary implementation", description: implDescription,
		hasConstraints: hasConstraints, definitionOfDone: implDoD, filesHint: implFiles, dependsOn: dependencyChain,
		phaseBoundary: "Focus on the code path changes. Defer dedicated validation and docs work to later subtasks unless a minimal adjustment is required to keep the change correct.",
	})
	subtasks = append(subtasks, subtask(implID, "Land the primary implementation", implDescription, r.agent, r.model, r.effort, append([]string{}, dependencyChain...), implFiles, implDoD, implPrompt))
	dependencyChain = []string{implID}

	if profile.TestsRequested {
		validationID := fmt.Sprintf("S%d", len(subtasks)+1)
		validationDoD := mergeDoD([]string{
			"Add or update focused validation that proves the requested behavior.",
			"Make sure the relevant tests or checks would fail without the implementation change.",
		}, globalDoD)
		description := "Add or adjust the most relevant tests, checks, or validation artifacts for the preceding implementation change."
		prompt := buildPrompt(promptInput{
			repo: repo, planTitle: title, objective: objective,
			subtaskID: validationID, subtaskTitle: "Add validation and regression coverage", description: description,
			hasConstraints: hasConstraints, definitionOfDone: validationDoD, filesHint: testFiles, dependsOn: dependencyChain,
			phaseBoundary: "Stay focused on tests, checks, and validation. Do not reopen broad implementation work unless the earlier subtask left a small correctness gap.",
		})
		subtasks = append(subtasks, subtask(validationID, "Add validation and regression coverage", description, r.agent, r.model, r.effort, append([]string{}, dependencyChain...), testFiles, validationDoD, prompt))
		dependencyChain = []string{validationID}
	}

	if profile.DocsRequested {
		docsID := fmt.Sprintf("S%d", len(subtasks)+1)
		docsDoD := mergeDoD([]string{
			"Update documentation or operator guidance affected by the change.",
			"Keep docs aligned with the behavior and commands introduced by earlier subtasks.",
		}, globalDoD)
		description := "Update the repository documentation, README, or handoff notes that should change after the implementation and validation work."
		prompt := buildPrompt(promptInput{
			repo: repo, planTitle: title, objective: objective,
			subtaskID: docsID, subtaskTitle: "Update documentation and handoff notes", description: description,
			hasConstraints: hasConstraints, definitionOfDone: docsDoD, filesHint: docFiles, dependsOn: dependencyChain,
			phaseBoundary: "Stay within docs and handoff artifacts. Do not introduce fresh feature work in this subtask.",
		})
		subtasks = append(subtasks, subtask(docsID, "Update documentation and handoff notes", description, r.agent, r.model, r.effort, append([]string{}, dependencyChain...), docFiles, docsDoD, prompt))
	}

	return subtasks
}
