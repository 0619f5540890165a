package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonlLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var lines []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		lines = append(lines, m)
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestJSONLFormatter_Write(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Write(&buf, report))

	lines := jsonlLines(t, buf.Bytes())
	require.Len(t, lines, 1+len(report.Results))

	header := lines[0]
	assert.Equal(t, "header", header["type"])
	assert.Equal(t, "1.0.0", header["version"])
	assert.Equal(t, "2026-01-15T10:30:00Z", header["timestamp"])
	system := header["system"].(map[string]any)
	assert.Equal(t, "WS-0142", system["hostname"])
	summary := header["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["total_checks"])
	assert.Equal(t, float64(2), summary["failed"])

	for i, line := range lines[1:] {
		assert.Equal(t, "result", line["type"])
		result := line["result"].(map[string]any)
		assert.Equal(t, report.Results[i].ID, result["id"])
		assert.Equal(t, string(report.Results[i].Status), result["status"])
	}
}

func TestJSONLFormatter_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Write(&buf, newEmptyReport()))

	lines := jsonlLines(t, buf.Bytes())
	require.Len(t, lines, 1)
	assert.Equal(t, "header", lines[0]["type"])
}
