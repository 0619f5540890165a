package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_Values(t *testing.T) {
	tests := []struct {
		name   string
		status CheckStatus
		want   string
	}{
		{"pass", StatusPass, "pass"},
		{"fail", StatusFail, "fail"},
		{"warning", StatusWarning, "warning"},
		{"unknown", StatusUnknown, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}

func TestCheckStatus_IsIssue(t *testing.T) {
	assert.False(t, StatusPass.IsIssue())
	assert.True(t, StatusFail.IsIssue())
	assert.True(t, StatusWarning.IsIssue())
	assert.False(t, StatusUnknown.IsIssue())
}

func TestSummarize_CountsWarningsAsIssues(t *testing.T) {
	results := []CheckResult{
		{ID: "a", Status: StatusPass},
		{ID: "b", Status: StatusFail},
		{ID: "c", Status: StatusWarning},
		{ID: "d", Status: StatusUnknown},
		{ID: "e", Status: StatusPass},
	}

	s := Summarize(results)

	assert.Equal(t, 5, s.TotalChecks)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Warnings)
	assert.Equal(t, 1, s.Unknown)
	assert.Equal(t, 2, s.Issues)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, AuditSummary{}, s)
}

func TestCheckResult_DurationNotSerialized(t *testing.T) {
	r := CheckResult{ID: "firewall", Status: StatusPass, Duration: 5, DurationMS: 12}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "Duration")
	assert.Equal(t, float64(12), m["duration_ms"])
	assert.Equal(t, "pass", m["status"])
}
