// Package ingest loads delimited SAP extract files into tables
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// WarningKind classifies a recoverable parse problem
type WarningKind string

const (
	WarningShortRow      WarningKind = "short_row"
	WarningLongRow       WarningKind = "long_row"
	WarningDuplicateHead WarningKind = "duplicate_header"
	WarningEmptyHeader   WarningKind = "empty_header"
)

// ParseWarning is a recoverable problem found while reading a file
type ParseWarning struct {
	Line    int         `json:"line"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// DefaultKeyColumns lists the identifier columns normalized per file type
var DefaultKeyColumns = map[models.FileType][]string{
	models.FileTypePA0001:  {"Pers.No."},
	models.FileTypePA0002:  {"Pers.No."},
	models.FileTypePA0006:  {"Pers.No."},
	models.FileTypePA0105:  {"Pers.No."},
	models.FileTypePA0008:  {"Pers.No."},
	models.FileTypePA0014:  {"Pers.No."},
	models.FileTypeHRP1000: {"Object ID"},
	models.FileTypeHRP1001: {"Source ID", "Target object ID"},
}

// Options controls how a file is read
type Options struct {
	// Delimiter is detected from the header line when zero
	Delimiter rune
	// KeyColumns are normalized with models.NormalizeID after reading
	KeyColumns []string
}

// Result is a parsed table plus what was learned reading it
type Result struct {
	Table     *models.Table  `json:"table"`
	Encoding  string         `json:"encoding"`
	Delimiter string         `json:"delimiter"`
	Warnings  []ParseWarning `json:"warnings,omitempty"`
}

// ErrNoHeader is returned for input without a header line
var ErrNoHeader = errors.New("file has no header row")

// Read parses a delimited file into a table named name. Ragged rows are
// padded or truncated to the header width and reported as warnings.
func Read(r io.Reader, name string, opts Options) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return Parse(raw, name, opts)
}

// Parse is Read over bytes already in memory
func Parse(raw []byte, name string, opts Options) (*Result, error) {
	data, enc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	result := &Result{Encoding: enc, Delimiter: string(delim)}
	columns := normalizeHeader(header, result)
	table := models.NewTable(name, columns...)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(record) {
			continue
		}
		switch {
		case len(record) < len(columns):
			result.Warnings = append(result.Warnings, ParseWarning{
				Line:    line,
				Kind:    WarningShortRow,
				Message: fmt.Sprintf("expected %d fields, got %d; padded with empty cells", len(columns), len(record)),
			})
		case len(record) > len(columns):
			result.Warnings = append(result.Warnings, ParseWarning{
				Line:    line,
				Kind:    WarningLongRow,
				Message: fmt.Sprintf("expected %d fields, got %d; extra fields dropped", len(columns), len(record)),
			})
		}
		row := make(models.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		table.Append(row)
	}

	for _, col := range opts.KeyColumns {
		table.NormalizeIDColumn(col)
	}
	result.Table = table
	return result, nil
}

// normalizeHeader trims header names and makes them unique
func normalizeHeader(header []string, result *Result) []string {
	seen := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
			result.Warnings = append(result.Warnings, ParseWarning{
				Line: 1, Kind: WarningEmptyHeader,
				Message: fmt.Sprintf("column %d has no name; using %s", i+1, name),
			})
		}
		if n := seen[name]; n > 0 {
			renamed := fmt.Sprintf("%s_%d", name, n+1)
			result.Warnings = append(result.Warnings, ParseWarning{
				Line: 1, Kind: WarningDuplicateHead,
				Message: fmt.Sprintf("duplicate column %q renamed to %q", name, renamed),
			})
			seen[name]++
			name = renamed
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}
	return columns
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
