package zoerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeMapsKnownCodes(t *testing.T) {
	assert.Equal(t, 3, ExitCode(PolicyViolation("blocked")))
	assert.Equal(t, 2, ExitCode(OpenClawDown("unreachable")))
	assert.Equal(t, 1, ExitCode(InvalidPlan("bad")))
	assert.Equal(t, 1, ExitCode(Planner("generic")))
}

func TestExitCodeDefaultsToOneForUnwrappedError(t *testing.T) {
	assert.Equal(t, 1, ExitCode(fmt.Errorf("boom")))
}

func TestAsErrorUnwrapsWrappedError(t *testing.T) {
	inner := InvalidPlan("bad plan")
	wrapped := fmt.Errorf("context: %w", inner)

	ze, ok := AsError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeInvalidPlan, ze.Code)
}

func TestAsErrorFalseForPlainError(t *testing.T) {
	_, ok := AsError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestCodeStringValues(t *testing.T) {
	assert.Equal(t, "invalid_plan", CodeInvalidPlan.String())
	assert.Equal(t, "policy_violation", CodePolicyViolation.String())
	assert.Equal(t, "dispatch_error", CodeDispatch.String())
	assert.Equal(t, "openclaw_down", CodeOpenClawDown.String())
	assert.Equal(t, "planner_error", CodePlanner.String())
}
