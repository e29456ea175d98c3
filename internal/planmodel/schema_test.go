package planmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPlanJSON() []byte {
	return []byte(`{
		"planId": "p1",
		"repo": "acme/widgets",
		"title": "add retries",
		"requestedBy": "alice",
		"requestedAt": 1700000000000,
		"objective": "add retry logic to the http client",
		"version": "1.0",
		"subtasks": [
			{
				"id": "t1",
				"title": "implement retries",
				"description": "add retry logic",
				"agent": "codex",
				"model": "gpt-5.3-codex",
				"effort": "medium",
				"worktreeStrategy": "isolated",
				"prompt": "add retry logic to the http client"
			}
		]
	}`)
}

func TestValidateSchemaAcceptsWellFormedPlan(t *testing.T) {
	assert.NoError(t, ValidateSchema(validPlanJSON()))
}

func TestValidateSchemaRejectsMissingRequiredField(t *testing.T) {
	bad := []byte(`{"repo": "acme/widgets", "subtasks": []}`)
	err := ValidateSchema(bad)
	assert.Error(t, err)
}

func TestValidateSchemaRejectsWrongType(t *testing.T) {
	bad := []byte(`{
		"planId": "p1", "repo": "acme/widgets", "title": "t",
		"requestedBy": "alice", "objective": "o", "version": "1.0",
		"subtasks": "not-an-array"
	}`)
	assert.Error(t, ValidateSchema(bad))
}

func TestValidateSchemaRejectsBadAgentEnum(t *testing.T) {
	bad := []byte(`{
		"planId": "p1", "repo": "acme/widgets", "title": "t",
		"requestedBy": "alice", "objective": "o", "version": "1.0",
		"subtasks": [{
			"id": "t1", "title": "t", "description": "d",
			"agent": "not-a-real-agent", "model": "m", "effort": "medium",
			"worktreeStrategy": "isolated", "prompt": "p"
		}]
	}`)
	assert.Error(t, ValidateSchema(bad))
}

func TestValidateSchemaRejectsMalformedJSON(t *testing.T) {
	assert.Error(t, ValidateSchema([]byte(`{not json`)))
}
