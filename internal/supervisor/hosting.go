package supervisor

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
)

// HostingClient is the surface the supervisor needs from a version-control
// hosting service's CLI. The default implementation shells out to gh; a
// fake implementation can stand in for it in tests.
type HostingClient interface {
	PRView(repoDir, branch string) (*PullRequest, error)
	LatestRunFailureLog(repoDir, branch string) (string, error)
}

// GHClient invokes the `gh` CLI in repoDir.
type GHClient struct{}

func (GHClient) PRView(repoDir, branch string) (*PullRequest, error) {
	out, err := run(repoDir, "gh", "pr", "view", branch, "--json",
		"number,state,url,headRefName,baseRefName,mergeable,mergeStateStatus,statusCheckRollup")
	if err != nil || strings.TrimSpace(out) == "" {
		return nil, nil
	}
	var pr PullRequest
	if err := json.Unmarshal([]byte(out), &pr); err != nil {
		return nil, nil
	}
	return &pr, nil
}

type runListEntry struct {
	DatabaseID int64  `json:"databaseId"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	HTMLURL    string `json:"htmlUrl"`
}

// LatestRunFailureLog returns a human-readable tail of the most recent
// failed workflow run for branch, or "" if the latest run didn't fail.
// Logs are truncated to their last 2,000 characters, the part most likely
// to contain the actual error.
func (GHClient) LatestRunFailureLog(repoDir, branch string) (string, error) {
	out, err := run(repoDir, "gh", "run", "list", "--branch", branch, "--limit", "1",
		"--json", "databaseId,status,conclusion,htmlUrl")
	if err != nil || strings.TrimSpace(out) == "" {
		return "", nil
	}
	var runs []runListEntry
	if err := json.Unmarshal([]byte(out), &runs); err != nil || len(runs) == 0 {
		return "", nil
	}
	latest := runs[0]
	if strings.ToUpper(latest.Conclusion) != "FAILURE" || latest.DatabaseID == 0 {
		return "", nil
	}

	logs, err := run(repoDir, "gh", "run", "view", strconv.FormatInt(latest.DatabaseID, 10), "--log-failed")
	if err != nil || strings.TrimSpace(logs) == "" {
		return "CI run failure: " + latest.HTMLURL, nil
	}
	if len(logs) > 2000 {
		logs = logs[len(logs)-2000:]
	}
	return "CI run failure (" + latest.HTMLURL + ") tail:\n" + logs, nil
}

func run(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}
