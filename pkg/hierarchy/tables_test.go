package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

func TestLevelName(t *testing.T) {
	assert.Equal(t, "Level1_LegalEntity", DefaultLevelName(1))
	assert.Equal(t, "Level7_Team", DefaultLevelName(7))
	assert.Equal(t, "Level8_Unit", DefaultLevelName(8))
	assert.Equal(t, "Level20_Unit", DefaultLevelName(20))
}

func TestTables(t *testing.T) {
	b := New(DefaultOptions())
	res, err := b.Build(nodeTable("A", "B", "C", "D"), edgeTable("B", "A", "C", "A", "D", "B"))
	require.NoError(t, err)

	nodes := b.NodeTable(res)
	assert.Equal(t, []string{"Object ID", "Name", "Level", "Parent", "Parent Name", "Path", "Start date", "End Date"}, nodes.Columns)
	require.Equal(t, 4, nodes.Len())
	assert.Equal(t, "3", nodes.Value(3, "Level"))
	assert.Equal(t, "B", nodes.Value(3, "Parent"))
	assert.Equal(t, "", nodes.Value(0, "Parent"))

	assoc := b.AssociationTable(res)
	assert.Equal(t, []string{"Source ID", "Target object ID", "Level", "Child Name", "Parent Name",
		"Relationship Type", "Planning status", "Start date", "End Date", "Relationship"}, assoc.Columns)
	require.Equal(t, 3, assoc.Len())
	assert.Equal(t, "A002", assoc.Value(0, "Relationship"))
	// Edges carry no dates, so the child's dates are used
	assert.Equal(t, "01.01.2020", assoc.Value(0, "Start date"))

	levels := b.LevelTables(res)
	require.Len(t, levels, 3)
	assert.Equal(t, "Level1_LegalEntity", levels[0].Name)
	assert.Equal(t, 1, levels[0].Len())
	assert.Equal(t, 2, levels[1].Len())
	assert.Equal(t, 1, levels[2].Len())

	assocLevels := b.LevelAssociationTables(res)
	require.Len(t, assocLevels, 2)
	assert.Equal(t, "Association_Level2_BusinessUnit", assocLevels[0].Name)
	assert.Equal(t, 2, assocLevels[0].Len())
	assert.Equal(t, 1, assocLevels[1].Len())
}

func TestTables_EdgeDatesWin(t *testing.T) {
	edges := models.NewTable("HRP1001", "Source ID", "Target object ID", "Planning status", "Start date", "End Date")
	edges.Append(models.Row{"Source ID": "B", "Target object ID": "A", "Planning status": "1", "Start date": "05.05.2021", "End Date": ""})
	res, err := Build(nodeTable("A", "B"), edges, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Associations, 1)
	assert.Equal(t, "05.05.2021", res.Associations[0].StartDate)
	assert.Equal(t, "31.12.9999", res.Associations[0].EndDate)
}
