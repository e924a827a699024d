package hierarchy

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/transform"
)

// Bucket labels used when a column is absent or a value cannot be read
const (
	AllTypes    = "All"
	UnknownYear = "Unknown"
)

// LevelCount is the number of emitted nodes at one level
type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// ValueCount is the number of object records carrying one value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Stats describes the shape of a leveled forest and the objects it came from
type Stats struct {
	TotalUnits         int          `json:"total_units"`
	TotalRelationships int          `json:"total_relationships"`
	MaxDepth           int          `json:"max_depth"`
	LevelCounts        []LevelCount `json:"level_counts"`
	TopLevelUnits      int          `json:"top_level_units"`
	BottomLevelUnits   int          `json:"bottom_level_units"`
	// AvgChildren is the mean number of children over nodes that have any
	AvgChildren   float64      `json:"avg_children"`
	TypeBreakdown []ValueCount `json:"type_breakdown"`
	StartYears    []ValueCount `json:"start_years"`
}

// Statistics summarizes a build result together with its input tables.
// Type and start-year buckets count every object record, emitted or not.
func (b *Builder) Statistics(nodes, edges *models.Table, r *models.HierarchyResult) *Stats {
	o := b.opts
	st := &Stats{
		TotalUnits:         nodes.Len(),
		TotalRelationships: edges.Len(),
		LevelCounts:        []LevelCount{},
	}
	if r != nil {
		st.MaxDepth = r.MaxLevel
		for level := 1; level <= r.MaxLevel; level++ {
			st.LevelCounts = append(st.LevelCounts, LevelCount{Level: level, Count: len(r.NodesAtLevel(level))})
		}
		if n := len(st.LevelCounts); n > 0 {
			st.TopLevelUnits = st.LevelCounts[0].Count
			st.BottomLevelUnits = st.LevelCounts[n-1].Count
		}

		parents := make(map[string]bool)
		for _, a := range r.Associations {
			parents[a.TargetID] = true
		}
		if len(parents) > 0 {
			avg := float64(len(r.Associations)) / float64(len(parents))
			st.AvgChildren = math.Round(avg*100) / 100
		}
	}

	if nodes.HasColumn(o.TypeColumn) {
		st.TypeBreakdown = countValues(nodes, func(row models.Row) string {
			return strings.TrimSpace(row[o.TypeColumn])
		})
		sort.SliceStable(st.TypeBreakdown, func(i, j int) bool {
			return st.TypeBreakdown[i].Count > st.TypeBreakdown[j].Count
		})
	} else {
		st.TypeBreakdown = []ValueCount{{Value: AllTypes, Count: nodes.Len()}}
	}

	if nodes.HasColumn(o.StartColumn) {
		st.StartYears = countValues(nodes, func(row models.Row) string {
			if d, ok := transform.ParseDate(row[o.StartColumn]); ok {
				return strconv.Itoa(d.Year())
			}
			return UnknownYear
		})
		sort.SliceStable(st.StartYears, func(i, j int) bool {
			x, y := st.StartYears[i].Value, st.StartYears[j].Value
			if (x == UnknownYear) != (y == UnknownYear) {
				return y == UnknownYear
			}
			return x < y
		})
	} else {
		st.StartYears = []ValueCount{{Value: UnknownYear, Count: nodes.Len()}}
	}
	return st
}

// countValues counts rows per key in order of first appearance. Blank keys
// count as "Unknown".
func countValues(t *models.Table, key func(models.Row) string) []ValueCount {
	var out []ValueCount
	index := make(map[string]int)
	for _, row := range t.Rows {
		k := key(row)
		if k == "" {
			k = "Unknown"
		}
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, ValueCount{Value: k, Count: 1})
	}
	if out == nil {
		out = []ValueCount{}
	}
	return out
}
