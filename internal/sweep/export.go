package sweep

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeLayout is the timestamp format used in exports.
const TimeLayout = "2006-01-02 15:04:05"

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// csvHeader is the first row of a CSV export.
var csvHeader = []string{"Path", "Size", "SizeFormatted", "Modified", "Attributes", "Reviewed"}

// FormatFromPath picks a format from a file extension. Unknown extensions
// export as CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Record is the exported form of a Match.
type Record struct {
	Path          string `json:"path" yaml:"path"`
	Size          int64  `json:"size" yaml:"size"`
	SizeFormatted string `json:"size_formatted" yaml:"size_formatted"`
	Modified      string `json:"modified" yaml:"modified"`
	Attributes    string `json:"attributes" yaml:"attributes"`
	Reviewed      bool   `json:"reviewed" yaml:"reviewed"`
}

// NewRecord converts a match for export.
func NewRecord(m Match) Record {
	return Record{
		Path:          m.Path,
		Size:          m.Size,
		SizeFormatted: FormatSize(m.Size),
		Modified:      m.Modified.Format(TimeLayout),
		Attributes:    m.Attributes,
		Reviewed:      m.Reviewed,
	}
}

// Export writes the matches in discovery order.
func Export(w io.Writer, format Format, matches []Match) error {
	records := make([]Record, len(matches))
	for i, m := range matches {
		records[i] = NewRecord(m)
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// writeCSV quotes every text field and leaves the size and reviewed columns
// bare; encoding/csv only quotes when it has to.
func writeCSV(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",") + "\r\n"); err != nil {
		return err
	}
	for _, r := range records {
		line := strings.Join([]string{
			quote(r.Path),
			strconv.FormatInt(r.Size, 10),
			quote(r.SizeFormatted),
			quote(r.Modified),
			quote(r.Attributes),
			formatBool(r.Reviewed),
		}, ",")
		if _, err := bw.WriteString(line + "\r\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ReadCSV parses a CSV export back into matches. Modified times are read in
// the local time zone.
func ReadCSV(r io.Reader) ([]Match, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range csvHeader {
		if header[i] != h {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, header[i], h)
		}
	}

	var matches []Match
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		m, err := parseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func parseRow(row []string) (Match, error) {
	size, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return Match{}, fmt.Errorf("invalid size %q", row[1])
	}
	modified, err := time.ParseInLocation(TimeLayout, row[3], time.Local)
	if err != nil {
		return Match{}, fmt.Errorf("invalid modified time %q", row[3])
	}
	reviewed, err := strconv.ParseBool(row[5])
	if err != nil {
		return Match{}, fmt.Errorf("invalid reviewed flag %q", row[5])
	}
	return Match{
		Path:       row[0],
		Size:       size,
		Modified:   modified,
		Attributes: row[4],
		Reviewed:   reviewed,
	}, nil
}
