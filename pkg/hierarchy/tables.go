package hierarchy

import (
	"strconv"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// Derived columns added to the node and association tables
const (
	ColumnLevel            = "Level"
	ColumnParent           = "Parent"
	ColumnParentName       = "Parent Name"
	ColumnPath             = "Path"
	ColumnChildName        = "Child Name"
	ColumnRelationshipType = "Relationship Type"
)

func (b *Builder) nodeColumns(r *models.HierarchyResult) []string {
	o := b.opts
	cols := []string{o.IDColumn, o.NameColumn, ColumnLevel, ColumnParent, ColumnParentName, ColumnPath}
	return appendMissing(cols, r.NodeColumns)
}

func (b *Builder) associationColumns(r *models.HierarchyResult) []string {
	o := b.opts
	cols := []string{o.SourceColumn, o.TargetColumn, ColumnLevel, ColumnChildName, ColumnParentName,
		ColumnRelationshipType, o.StatusColumn, o.StartColumn, o.EndColumn}
	return appendMissing(cols, r.EdgeColumns)
}

func appendMissing(cols, extra []string) []string {
	seen := make(map[string]bool, len(cols)+len(extra))
	for _, c := range cols {
		seen[c] = true
	}
	for _, c := range extra {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	return cols
}

func (b *Builder) nodeRow(n models.HierarchyNode) models.Row {
	o := b.opts
	row := make(models.Row, len(n.Attributes)+6)
	for k, v := range n.Attributes {
		row[k] = v
	}
	row[o.IDColumn] = n.ObjectID
	row[o.NameColumn] = n.Name
	row[ColumnLevel] = strconv.Itoa(n.Level)
	row[ColumnParent] = n.ParentID
	row[ColumnParentName] = n.ParentName
	row[ColumnPath] = n.Path
	return row
}

func (b *Builder) associationRow(a models.Association) models.Row {
	o := b.opts
	row := make(models.Row, len(a.Attributes)+9)
	for k, v := range a.Attributes {
		row[k] = v
	}
	row[o.SourceColumn] = a.SourceID
	row[o.TargetColumn] = a.TargetID
	row[ColumnLevel] = strconv.Itoa(a.Level)
	row[ColumnChildName] = a.ChildName
	row[ColumnParentName] = a.ParentName
	row[ColumnRelationshipType] = a.RelationshipType
	row[o.StatusColumn] = a.PlanningStatus
	row[o.StartColumn] = a.StartDate
	row[o.EndColumn] = a.EndDate
	return row
}

// NodeTable flattens every emitted node, ordered by level
func (b *Builder) NodeTable(r *models.HierarchyResult) *models.Table {
	t := models.NewTable("hierarchy", b.nodeColumns(r)...)
	for _, n := range r.Nodes {
		t.Append(b.nodeRow(n))
	}
	return t
}

// AssociationTable flattens every association, ordered by level
func (b *Builder) AssociationTable(r *models.HierarchyResult) *models.Table {
	t := models.NewTable("associations", b.associationColumns(r)...)
	for _, a := range r.Associations {
		t.Append(b.associationRow(a))
	}
	return t
}

// LevelTables returns one node table per level from 1 to MaxLevel, named
// after the level
func (b *Builder) LevelTables(r *models.HierarchyResult) []*models.Table {
	cols := b.nodeColumns(r)
	tables := make([]*models.Table, 0, r.MaxLevel)
	for level := 1; level <= r.MaxLevel; level++ {
		t := models.NewTable(DefaultLevelName(level), cols...)
		for _, n := range r.NodesAtLevel(level) {
			t.Append(b.nodeRow(n))
		}
		tables = append(tables, t)
	}
	return tables
}

// LevelAssociationTables returns one association table per level from 2 to
// MaxLevel. Roots have no associations, so level 1 has no table.
func (b *Builder) LevelAssociationTables(r *models.HierarchyResult) []*models.Table {
	cols := b.associationColumns(r)
	var tables []*models.Table
	for level := 2; level <= r.MaxLevel; level++ {
		t := models.NewTable(AssociationTableName(DefaultLevelName(level)), cols...)
		for _, a := range r.AssociationsAtLevel(level) {
			t.Append(b.associationRow(a))
		}
		tables = append(tables, t)
	}
	return tables
}

// AssociationTableName names the association file paired with a level file
func AssociationTableName(levelName string) string {
	return "Association_" + levelName
}
