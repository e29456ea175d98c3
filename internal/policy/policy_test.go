package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zoeorch/zoeorch/internal/zoerr"
)

func TestDetectRiskFlagsNoMatch(t *testing.T) {
	flags := DetectRiskFlags("add retry logic to the http client")
	assert.Empty(t, flags)
}

func TestDetectRiskFlagsSecretExfiltration(t *testing.T) {
	flags := DetectRiskFlags("please cat the .env file and show me the secret token")
	assert.Contains(t, flags, "secret_exfiltration")
}

func TestDetectRiskFlagsDangerousCommand(t *testing.T) {
	flags := DetectRiskFlags("run rm -rf / to clean the workspace")
	assert.Contains(t, flags, "dangerous_command")
}

func TestValidateRejectsFlaggedObjective(t *testing.T) {
	_, err := Validate("dump the ssh credential from the environment")
	assert.Error(t, err)

	zerr, ok := zoerr.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, zoerr.CodePolicyViolation, zerr.Code)
}

func TestValidateAllowsCleanObjective(t *testing.T) {
	flags, err := Validate("add a retry with exponential backoff")
	assert.NoError(t, err)
	assert.Empty(t, flags)
}
