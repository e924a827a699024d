// Package hierarchy rebuilds an organizational forest from flat object and
// relationship extracts and assigns every reachable object a level.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// PathSeparator joins object ids from root to node in HierarchyNode.Path
const PathSeparator = " / "

// DefaultMaxLevels bounds traversal depth on pathological input
const DefaultMaxLevels = 20

// Options names the columns the builder reads and tunes traversal
type Options struct {
	IDColumn     string
	NameColumn   string
	SourceColumn string // child id on an edge
	TargetColumn string // parent id on an edge
	StatusColumn string
	StartColumn  string
	EndColumn    string
	TypeColumn   string // object type, read only by Statistics

	// ActiveStatus is the status value of edges that take part. Edges are
	// not filtered when the status column is absent.
	ActiveStatus     string
	MaxLevels        int
	RelationshipType string
}

// DefaultOptions matches the HRP1000/HRP1001 extract layout
func DefaultOptions() Options {
	return Options{
		IDColumn:         "Object ID",
		NameColumn:       "Name",
		SourceColumn:     "Source ID",
		TargetColumn:     "Target object ID",
		StatusColumn:     "Planning status",
		StartColumn:      "Start date",
		EndColumn:        "End Date",
		TypeColumn:       "Object type",
		ActiveStatus:     "1",
		MaxLevels:        DefaultMaxLevels,
		RelationshipType: "Reports To",
	}
}

// withDefaults fills zero fields from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&o.IDColumn, d.IDColumn)
	fill(&o.NameColumn, d.NameColumn)
	fill(&o.SourceColumn, d.SourceColumn)
	fill(&o.TargetColumn, d.TargetColumn)
	fill(&o.StatusColumn, d.StatusColumn)
	fill(&o.StartColumn, d.StartColumn)
	fill(&o.EndColumn, d.EndColumn)
	fill(&o.TypeColumn, d.TypeColumn)
	fill(&o.ActiveStatus, d.ActiveStatus)
	fill(&o.RelationshipType, d.RelationshipType)
	if o.MaxLevels <= 0 {
		o.MaxLevels = d.MaxLevels
	}
	return o
}

// Builder levels hierarchies. It keeps no state between builds.
type Builder struct {
	opts Options
}

// New creates a builder; zero option fields take their defaults
func New(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

// Options returns the effective options
func (b *Builder) Options() Options {
	return b.opts
}

// Build is New(opts).Build(nodes, edges)
func Build(nodes, edges *models.Table, opts Options) (*models.HierarchyResult, error) {
	return New(opts).Build(nodes, edges)
}

type edge struct {
	child, parent string
	row           models.Row
}

// Build levels the forest breadth-first from its roots. Missing required
// columns are configuration errors; every data anomaly is absorbed into the
// result and its counters.
func (b *Builder) Build(nodes, edges *models.Table) (*models.HierarchyResult, error) {
	o := b.opts
	if err := b.checkColumns(nodes, edges); err != nil {
		return nil, err
	}

	res := &models.HierarchyResult{
		LevelCap:     o.MaxLevels,
		Nodes:        []models.HierarchyNode{},
		Associations: []models.Association{},
		RootIDs:      []string{},
		NodeColumns:  append([]string(nil), nodes.Columns...),
		EdgeColumns:  append([]string(nil), edges.Columns...),
	}

	// Node index in table order; the first record of a repeated id wins
	order := make([]string, 0, nodes.Len())
	position := make(map[string]int, nodes.Len())
	records := make(map[string]models.Row, nodes.Len())
	for _, row := range nodes.Rows {
		id := models.NormalizeID(row[o.IDColumn])
		if id == "" {
			continue
		}
		if _, dup := position[id]; dup {
			res.DuplicateIDs = appendOnce(res.DuplicateIDs, id)
			continue
		}
		position[id] = len(order)
		order = append(order, id)
		records[id] = row
	}
	res.NodesInput = len(order)

	// Active edges whose endpoints both exist
	filterStatus := edges.HasColumn(o.StatusColumn)
	children := make(map[string][]edge)
	parents := make(map[string][]string)
	seen := make(map[[2]string]bool, edges.Len())
	res.EdgesInput = edges.Len()
	for _, row := range edges.Rows {
		if filterStatus && models.NormalizeID(row[o.StatusColumn]) != o.ActiveStatus {
			res.InactiveEdges++
			continue
		}
		child := models.NormalizeID(row[o.SourceColumn])
		parent := models.NormalizeID(row[o.TargetColumn])
		_, childOK := position[child]
		_, parentOK := position[parent]
		if !childOK || !parentOK || child == parent {
			res.DroppedEdges++
			continue
		}
		if seen[[2]string{parent, child}] {
			continue
		}
		seen[[2]string{parent, child}] = true
		children[parent] = append(children[parent], edge{child: child, parent: parent, row: row})
		parents[child] = append(parents[child], parent)
	}
	for _, list := range children {
		sort.SliceStable(list, func(i, j int) bool {
			return position[list[i].child] < position[list[j].child]
		})
	}
	for _, id := range order {
		if len(parents[id]) > 1 {
			res.MultiParentIDs = append(res.MultiParentIDs, id)
		}
	}

	// Roots in node-table order
	var current []edge
	for _, id := range order {
		if len(parents[id]) == 0 {
			res.RootIDs = append(res.RootIDs, id)
			current = append(current, edge{child: id})
		}
	}

	processed := make(map[string]bool, len(order))
	paths := make(map[string]string, len(order))
	level := 1
	for len(current) > 0 && level <= o.MaxLevels {
		var next []edge
		for _, e := range current {
			if processed[e.child] {
				continue
			}
			processed[e.child] = true
			node := b.node(e, level, records)
			if e.parent != "" {
				node.Path = paths[e.parent] + PathSeparator + e.child
			}
			paths[e.child] = node.Path
			res.Nodes = append(res.Nodes, node)
			if e.parent != "" {
				res.Associations = append(res.Associations, b.association(e, level, records))
			}
			for _, c := range children[e.child] {
				if !processed[c.child] {
					next = append(next, c)
				}
			}
			res.MaxLevel = level
		}
		current = next
		level++
	}
	for _, e := range current {
		if !processed[e.child] {
			res.Truncated = true
			break
		}
	}

	res.NodesEmitted = len(res.Nodes)
	res.NodesDropped = res.NodesInput - res.NodesEmitted
	for _, id := range order {
		if !processed[id] {
			res.UnreachableIDs = append(res.UnreachableIDs, id)
		}
	}
	return res, nil
}

func (b *Builder) checkColumns(nodes, edges *models.Table) error {
	o := b.opts
	if nodes == nil {
		return models.MissingFileError(string(models.FileTypeHRP1000))
	}
	if edges == nil {
		return models.MissingFileError(string(models.FileTypeHRP1001))
	}
	for _, col := range []string{o.IDColumn, o.NameColumn} {
		if !nodes.HasColumn(col) {
			return models.MissingColumnError(string(models.FileTypeHRP1000), col)
		}
	}
	for _, col := range []string{o.SourceColumn, o.TargetColumn} {
		if !edges.HasColumn(col) {
			return models.MissingColumnError(string(models.FileTypeHRP1001), col)
		}
	}
	return nil
}

func (b *Builder) node(e edge, level int, records map[string]models.Row) models.HierarchyNode {
	o := b.opts
	rec := records[e.child]
	n := models.HierarchyNode{
		ObjectID:   e.child,
		Name:       rec[o.NameColumn],
		Level:      level,
		ParentID:   e.parent,
		Path:       e.child,
		Attributes: rec,
	}
	if e.parent != "" {
		n.ParentName = records[e.parent][o.NameColumn]
	}
	return n
}

func (b *Builder) association(e edge, level int, records map[string]models.Row) models.Association {
	o := b.opts
	child := records[e.child]
	a := models.Association{
		SourceID:         e.child,
		TargetID:         e.parent,
		Level:            level,
		ChildName:        child[o.NameColumn],
		ParentName:       records[e.parent][o.NameColumn],
		RelationshipType: o.RelationshipType,
		PlanningStatus:   o.ActiveStatus,
		StartDate:        firstNonEmpty(e.row[o.StartColumn], child[o.StartColumn]),
		EndDate:          firstNonEmpty(e.row[o.EndColumn], child[o.EndColumn]),
		Attributes:       e.row,
	}
	return a
}

func appendOnce(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
