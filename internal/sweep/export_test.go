package sweep

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleMatches() []Match {
	mod := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	return []Match{
		{Path: `C:\Users\alice\Downloads\setup.exe`, Size: 1536, Modified: mod, Attributes: "Archive"},
		{Path: `C:\Users\bob\Music\a "quoted", name.mp3`, Size: 5 * 1024 * 1024, Modified: mod.Add(time.Hour), Attributes: "Hidden, ReadOnly", Reviewed: true},
		{Path: "/tmp/empty.zip", Size: 0, Modified: mod.Add(-24 * time.Hour), Attributes: "Normal"},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatCSV, sampleMatches()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Path,Size,SizeFormatted,Modified,Attributes,Reviewed", lines[0])
	assert.Equal(t, `"C:\Users\alice\Downloads\setup.exe",1536,"1.5 KB","2025-03-14 15:09:26","Archive",False`, lines[1])
	assert.Equal(t, `"C:\Users\bob\Music\a ""quoted"", name.mp3",5242880,"5 MB","2025-03-14 16:09:26","Hidden, ReadOnly",True`, lines[2])
}

func TestExportCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatCSV, nil))
	assert.Equal(t, "Path,Size,SizeFormatted,Modified,Attributes,Reviewed\r\n", buf.String())
}

func TestExportCSV_RoundTrip(t *testing.T) {
	matches := sampleMatches()
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatCSV, matches))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(matches))
	for i, m := range matches {
		assert.Equal(t, m.Path, parsed[i].Path)
		assert.Equal(t, m.Size, parsed[i].Size)
		assert.True(t, m.Modified.Equal(parsed[i].Modified), "modified %d", i)
		assert.Equal(t, m.Attributes, parsed[i].Attributes)
		assert.Equal(t, m.Reviewed, parsed[i].Reviewed)
	}
}

func TestExportCSV_RoundTripFromSweep(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"a.exe", "b.exe", "sub/c.exe"} {
		writeFile(t, root+"/"+n, 2048)
	}
	sw := runSweep(t, newTestScanner(root), Config{Extensions: []string{".exe"}})
	require.NoError(t, sw.MarkReviewed(0))

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatCSV, sw.Results()))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	results := sw.Results()
	require.Len(t, parsed, len(results))
	for i, m := range results {
		assert.Equal(t, m.Path, parsed[i].Path)
		assert.Equal(t, m.Size, parsed[i].Size)
		assert.True(t, m.Modified.Truncate(time.Second).Equal(parsed[i].Modified))
		assert.Equal(t, m.Attributes, parsed[i].Attributes)
		assert.Equal(t, m.Reviewed, parsed[i].Reviewed)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "header"},
		{"wrong header", "File,Size,SizeFormatted,Modified,Attributes,Reviewed\n", "unexpected column 1"},
		{"bad size", "Path,Size,SizeFormatted,Modified,Attributes,Reviewed\n\"a\",x,\"1 B\",\"2025-01-01 00:00:00\",\"Normal\",False\n", "invalid size"},
		{"bad time", "Path,Size,SizeFormatted,Modified,Attributes,Reviewed\n\"a\",1,\"1 B\",\"yesterday\",\"Normal\",False\n", "invalid modified"},
		{"bad flag", "Path,Size,SizeFormatted,Modified,Attributes,Reviewed\n\"a\",1,\"1 B\",\"2025-01-01 00:00:00\",\"Normal\",maybe\n", "invalid reviewed"},
		{"short row", "Path,Size,SizeFormatted,Modified,Attributes,Reviewed\n\"a\",1\n", "wrong number of fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatJSON, sampleMatches()))

	var records []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)
	assert.Equal(t, Record{
		Path:          `C:\Users\alice\Downloads\setup.exe`,
		Size:          1536,
		SizeFormatted: "1.5 KB",
		Modified:      "2025-03-14 15:09:26",
		Attributes:    "Archive",
		Reviewed:      false,
	}, records[0])
	assert.True(t, records[1].Reviewed)
	assert.Contains(t, buf.String(), `"size_formatted": "5 MB"`)
}

func TestExportJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatYAML, sampleMatches()))

	var records []Record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "/tmp/empty.zip", records[2].Path)
	assert.Equal(t, "0 B", records[2].SizeFormatted)
	assert.Equal(t, "Hidden, ReadOnly", records[1].Attributes)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	err := Export(&bytes.Buffer{}, Format("xml"), sampleMatches())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromPath("results.csv"))
	assert.Equal(t, FormatJSON, FormatFromPath("results.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("out/results.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("results.yaml"))
	assert.Equal(t, FormatCSV, FormatFromPath("results"))
}
