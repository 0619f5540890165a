package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/bastion/internal/types"
)

func TestJSONFormatter_RoundTrip(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer

	require.NoError(t, (&JSONFormatter{}).Write(&buf, report))

	var decoded types.AuditReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, report.Version, decoded.Version)
	assert.True(t, report.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, report.System, decoded.System)
	assert.Equal(t, report.Summary, decoded.Summary)
	require.Len(t, decoded.Results, len(report.Results))
	for i, r := range decoded.Results {
		assert.Equal(t, report.Results[i].ID, r.ID)
		assert.Equal(t, report.Results[i].Status, r.Status)
		assert.Equal(t, report.Results[i].Evidence, r.Evidence)
		assert.Equal(t, report.Results[i].DurationMS, r.DurationMS)
	}
}

func TestJSONFormatter_FieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, newTestReport()))

	out := buf.String()
	for _, key := range []string{`"total_checks": 4`, `"issues": 2`, `"unknown": 1`, `"elevated": true`, `"status": "fail"`, `"manual_steps"`} {
		assert.Contains(t, out, key)
	}
}

func TestJSONFormatter_NoHTMLEscaping(t *testing.T) {
	report := newEmptyReport()
	report.Results = []types.CheckResult{{ID: "x", Status: types.StatusFail, Evidence: "a < b && c > d"}}
	var buf bytes.Buffer

	require.NoError(t, (&JSONFormatter{}).Write(&buf, report))
	assert.Contains(t, buf.String(), "a < b && c > d")
}

func TestJSONFormatter_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, newEmptyReport()))

	var decoded types.AuditReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Empty(t, decoded.Results)
	assert.Contains(t, buf.String(), `"results": []`)
}
