// Package export writes tables as delimited text
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// Delimiters accepted by ParseDelimiter, keyed by name
var Delimiters = map[string]rune{
	"comma":     ',',
	"semicolon": ';',
	"tab":       '\t',
	"pipe":      '|',
}

// ParseDelimiter accepts a delimiter name or a single character; empty means comma
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	if d, ok := Delimiters[strings.ToLower(s)]; ok {
		return d, nil
	}
	if r := []rune(s); len(r) == 1 && r[0] != '"' && r[0] != '\r' && r[0] != '\n' {
		return r[0], nil
	}
	return 0, fmt.Errorf("unsupported delimiter %q", s)
}

// WriteDelimited writes the header and every row in the table's column order
func WriteDelimited(w io.Writer, table *models.Table, delim rune) error {
	if table == nil {
		return fmt.Errorf("no table to export")
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, c := range table.Columns {
			record[j] = row[c]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName builds the download name for an output table
func FileName(name string, delim rune) string {
	ext := ".csv"
	if delim == '\t' {
		ext = ".tsv"
	}
	return strings.ReplaceAll(name, " ", "_") + ext
}
