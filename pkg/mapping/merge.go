package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// ConflictPolicy decides which side-table row joins when a key repeats
type ConflictPolicy string

const (
	// FirstWins keeps the first row per key
	FirstWins ConflictPolicy = "first_wins"
	// LastWins keeps the last row per key
	LastWins ConflictPolicy = "last_wins"
	// ErrorOnConflict fails the merge when rows sharing a key differ
	ErrorOnConflict ConflictPolicy = "error_on_conflict"
)

// IsValid reports whether the policy is known
func (p ConflictPolicy) IsValid() bool {
	switch p {
	case "", FirstWins, LastWins, ErrorOnConflict:
		return true
	}
	return false
}

// ErrMergeConflict is returned under ErrorOnConflict
var ErrMergeConflict = errors.New("conflicting rows for merge key")

// Side is a table left-joined onto the merge base
type Side struct {
	File  models.FileType
	Table *models.Table
}

// MergeStats describes what a merge consumed and produced
type MergeStats struct {
	Rows       map[models.FileType]int `json:"rows"`
	UniqueKeys map[models.FileType]int `json:"unique_keys"`
	Matched    map[models.FileType]int `json:"matched"`
	// Columns maps each merged side's columns to their names in the output
	Columns    map[models.FileType]map[string]string `json:"columns"`
	Skipped    []models.FileType                     `json:"skipped,omitempty"`
	OutputRows int                                   `json:"output_rows"`
}

// Merge left-joins each side onto base by key. Base rows are kept as they
// are, including duplicates; each side contributes at most one row per key
// chosen by policy. Side columns that collide with existing ones are renamed
// with a _<FILE> suffix. Sides without the key column or without rows are
// skipped and listed in the stats.
func Merge(baseFile models.FileType, base *models.Table, sides []Side, key string, policy ConflictPolicy) (*models.Table, *MergeStats, error) {
	if base == nil {
		return nil, nil, models.MissingFileError(string(baseFile))
	}
	if !base.HasColumn(key) {
		return nil, nil, models.MissingColumnError(string(baseFile), key)
	}
	if policy == "" {
		policy = FirstWins
	}
	if !policy.IsValid() {
		return nil, nil, fmt.Errorf("unknown conflict policy %q", policy)
	}

	merged := base.Clone()
	merged.Name = string(baseFile)
	stats := &MergeStats{
		Rows:       map[models.FileType]int{baseFile: base.Len()},
		UniqueKeys: map[models.FileType]int{baseFile: countUnique(base, key)},
		Matched:    map[models.FileType]int{},
		Columns:    map[models.FileType]map[string]string{},
	}

	for _, side := range sides {
		if side.Table.IsEmpty() || !side.Table.HasColumn(key) {
			stats.Skipped = append(stats.Skipped, side.File)
			continue
		}
		index, err := indexSide(side, key, policy)
		if err != nil {
			return nil, nil, err
		}
		stats.Rows[side.File] = side.Table.Len()
		stats.UniqueKeys[side.File] = len(index)

		rename := make(map[string]string, len(side.Table.Columns))
		for _, col := range side.Table.Columns {
			if col == key {
				continue
			}
			target := col
			if merged.HasColumn(col) {
				target = col + "_" + string(side.File)
			}
			rename[col] = target
			merged.AddColumn(target)
		}
		contributed := make(map[string]string, len(rename)+1)
		contributed[key] = key
		for col, target := range rename {
			contributed[col] = target
		}
		stats.Columns[side.File] = contributed

		matched := 0
		for _, row := range merged.Rows {
			match, ok := index[strings.TrimSpace(row[key])]
			if !ok {
				continue
			}
			matched++
			for col, target := range rename {
				row[target] = match[col]
			}
		}
		stats.Matched[side.File] = matched
	}
	stats.OutputRows = merged.Len()
	return merged, stats, nil
}

func indexSide(side Side, key string, policy ConflictPolicy) (map[string]models.Row, error) {
	index := make(map[string]models.Row, side.Table.Len())
	for _, row := range side.Table.Rows {
		k := strings.TrimSpace(row[key])
		if k == "" {
			continue
		}
		prev, exists := index[k]
		switch {
		case !exists:
			index[k] = row
		case policy == LastWins:
			index[k] = row
		case policy == ErrorOnConflict && !sameRow(prev, row, side.Table.Columns):
			return nil, fmt.Errorf("%w: %s key %q", ErrMergeConflict, side.File, k)
		}
	}
	return index, nil
}

func sameRow(a, b models.Row, columns []string) bool {
	for _, c := range columns {
		if a[c] != b[c] {
			return false
		}
	}
	return true
}

func countUnique(t *models.Table, key string) int {
	seen := make(map[string]struct{}, t.Len())
	for _, row := range t.Rows {
		if k := strings.TrimSpace(row[key]); k != "" {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}
