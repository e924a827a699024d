package models

import (
	"strconv"
	"strings"
)

// FileType identifies a conventional SAP extract category
type FileType string

const (
	FileTypePA0001  FileType = "PA0001" // Organizational assignment
	FileTypePA0002  FileType = "PA0002" // Personal data
	FileTypePA0006  FileType = "PA0006" // Addresses
	FileTypePA0105  FileType = "PA0105" // Communication
	FileTypePA0008  FileType = "PA0008" // Basic pay
	FileTypePA0014  FileType = "PA0014" // Recurring payments/deductions
	FileTypeHRP1000 FileType = "HRP1000"
	FileTypeHRP1001 FileType = "HRP1001"
)

// KnownFileTypes lists every file type the service accepts
var KnownFileTypes = []FileType{
	FileTypePA0001, FileTypePA0002, FileTypePA0006, FileTypePA0105,
	FileTypePA0008, FileTypePA0014, FileTypeHRP1000, FileTypeHRP1001,
}

// IsValid reports whether the file type is one of the known extract categories
func (f FileType) IsValid() bool {
	for _, known := range KnownFileTypes {
		if f == known {
			return true
		}
	}
	return false
}

// Row is a single record keyed by column name. A missing key is an empty cell.
type Row map[string]string

// Table is a named rectangular dataset with a stable column order
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable creates an empty table with the given columns
func NewTable(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Name:    name,
		Columns: cols,
		Rows:    []Row{},
	}
}

// Len returns the number of rows; a nil table has zero rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table is nil or has no rows
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// HasColumn reports whether the column is declared on the table
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn declares a column if it is not present yet
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Append adds a row. Columns are not inferred from the row's keys.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Value returns the cell at row i, column col, or "" when absent
func (t *Table) Value(i int, col string) string {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][col]
}

// Column returns every value of a column in row order
func (t *Table) Column(name string) []string {
	values := make([]string, t.Len())
	for i := range values {
		values[i] = t.Rows[i][name]
	}
	return values
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	clone := NewTable(t.Name, t.Columns...)
	clone.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		clone.Rows[i] = cp
	}
	return clone
}

// Head returns a table holding at most the first n rows. Rows are shared, not copied.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return nil
	}
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	head := NewTable(t.Name, t.Columns...)
	head.Rows = t.Rows[:n]
	return head
}

// EmptyCells counts cells that are missing or blank across declared columns
func (t *Table) EmptyCells() (empty int, total int) {
	for _, row := range t.Rows {
		for _, c := range t.Columns {
			total++
			if strings.TrimSpace(row[c]) == "" {
				empty++
			}
		}
	}
	return empty, total
}

// NormalizeID converts an identifier to its canonical string form.
// Spreadsheet exports often render integer ids as floats ("50001234.0").
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !strings.Contains(id, ".") {
		return id
	}
	f, err := strconv.ParseFloat(id, 64)
	if err != nil || f != float64(int64(f)) {
		return id
	}
	return strconv.FormatInt(int64(f), 10)
}

// NormalizeIDColumn rewrites a column in place with NormalizeID
func (t *Table) NormalizeIDColumn(col string) {
	if !t.HasColumn(col) {
		return
	}
	for _, row := range t.Rows {
		if v, ok := row[col]; ok {
			row[col] = NormalizeID(v)
		}
	}
}
