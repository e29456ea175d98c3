package supervisor

import "strings"

// PullRequest is the subset of a hosting service's PR view response the
// supervisor reasons about.
type PullRequest struct {
	Number            int                `json:"number"`
	State             string             `json:"state"`
	URL               string             `json:"url"`
	HeadRefName       string             `json:"headRefName"`
	BaseRefName       string             `json:"baseRefName"`
	Mergeable         interface{}        `json:"mergeable"`
	MergeStateStatus  string             `json:"mergeStateStatus"`
	StatusCheckRollup []CheckRollupEntry `json:"statusCheckRollup"`
}

// CheckRollupEntry is one entry of a PR's statusCheckRollup.
type CheckRollupEntry struct {
	Name       string `json:"name"`
	Context    string `json:"context"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

func (c CheckRollupEntry) label() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Context != "" {
		return c.Context
	}
	return "check"
}

// MergeClean reports whether a PR is both mergeable and in a clean merge
// state, the second half of the ready criteria alongside AnalyzeChecks.
func MergeClean(pr PullRequest) bool {
	mergeableOK := false
	switch v := pr.Mergeable.(type) {
	case bool:
		mergeableOK = v
	case string:
		lower := strings.ToLower(v)
		mergeableOK = lower == "true" || lower == "mergeable"
	}
	return mergeableOK && strings.ToUpper(pr.MergeStateStatus) == "CLEAN"
}

// AnalyzeChecks inspects a PR's statusCheckRollup and returns whether
// checks passed, a ";"-joined failure summary when they didn't, and
// whether any check is still pending. An empty rollup counts as pending:
// checks simply haven't been reported yet.
func AnalyzeChecks(pr PullRequest) (passed bool, failureSummary string, pending bool) {
	if len(pr.StatusCheckRollup) == 0 {
		return false, "", true
	}

	var failures []string
	anyPending := false
	for _, c := range pr.StatusCheckRollup {
		status := strings.ToUpper(c.Status)
		conclusion := strings.ToUpper(c.Conclusion)

		if status != "COMPLETED" && conclusion == "" {
			anyPending = true
			continue
		}
		switch conclusion {
		case "FAILURE", "CANCELLED", "TIMED_OUT", "ACTION_REQUIRED":
			failures = append(failures, c.label()+":"+conclusion)
		}
	}

	if anyPending {
		return false, "", true
	}
	if len(failures) > 0 {
		return false, strings.Join(failures, "; "), false
	}
	return true, "", false
}
