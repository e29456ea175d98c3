package planner

import "strings"

type promptInput struct {
	repo             string
	planTitle        string
	objective        string
	subtaskID        string
	subtaskTitle     string
	description      string
	hasConstraints   bool
	definitionOfDone []string
	filesHint        []string
	dependsOn        []string
	phaseBoundary    string
}

// buildPrompt renders the fixed prompt template every subtask gets: plan
// context, scope, upstream dependencies, definition of done, fixed safety
// boundaries plus one phase-specific boundary, files to check first, and a
// first-step instruction. The shape intentionally never changes between
// subtasks; only the content slots do, so agents always see a familiar
// structure regardless of which phase they're executing.
func buildPrompt(in promptInput) string {
	var b strings.Builder
	line := func(s string) { b.WriteString(s); b.WriteByte('\n') }

	line("You are Zoe executing one subtask from a multi-step repository plan.")
	line("")
	line("REPOSITORY: " + in.repo)
	line("PLAN TITLE: " + in.planTitle)
	line("SUBTASK: " + in.subtaskID + " - " + in.subtaskTitle)
	line("")
	line("PLAN OBJECTIVE:")
	line(in.objective)
	line("")
	line("SUBTASK SCOPE:")
	line(in.description)

	if len(in.dependsOn) > 0 {
		line("")
		line("UPSTREAM DEPENDENCIES:")
		for _, dep := range in.dependsOn {
			line("- " + dep + " is already completed and should be treated as the starting point.")
		}
	}

	line("")
	line("DEFINITION OF DONE:")
	for _, item := range in.definitionOfDone {
		line("- " + item)
	}

	line("")
	line("BOUNDARIES:")
	line("- Do not access or print secrets, environment variables, or credentials.")
	line("- Do not make unrelated refactors.")
	line("- Keep changes scoped to this subtask and avoid absorbing later subtasks unless required to keep the repo healthy.")
	line("- " + in.phaseBoundary)
	if in.hasConstraints {
		line("- Respect the explicit constraints attached to this plan.")
	}

	if len(in.filesHint) > 0 {
		line("")
		line("FILES TO CHECK FIRST:")
		for _, f := range in.filesHint {
			line("- " + f)
		}
	}

	line("")
	line("FIRST STEP:")
	line("- Inspect the referenced files, write a short execution plan, then implement only this subtask.")

	return strings.TrimRight(b.String(), "\n")
}
