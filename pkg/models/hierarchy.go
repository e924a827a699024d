package models

// HierarchyNode is one org object placed at a level of the forest
type HierarchyNode struct {
	ObjectID   string `json:"object_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	ParentID   string `json:"parent_id,omitempty"`
	ParentName string `json:"parent_name,omitempty"`
	Path       string `json:"path"`
	// Attributes carries the original node record through unchanged
	Attributes Row `json:"attributes,omitempty"`
}

// IsRoot reports whether the node has no parent
func (n HierarchyNode) IsRoot() bool {
	return n.ParentID == ""
}

// Association links a non-root node to its parent
type Association struct {
	SourceID         string `json:"source_id"`
	TargetID         string `json:"target_id"`
	Level            int    `json:"level"`
	ChildName        string `json:"child_name"`
	ParentName       string `json:"parent_name"`
	RelationshipType string `json:"relationship_type"`
	PlanningStatus   string `json:"planning_status"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	// Attributes carries the original relationship record through unchanged
	Attributes Row `json:"attributes,omitempty"`
}

// HierarchyResult is the leveled forest produced from node and edge tables.
// Nodes are ordered by level, then by their position in the node table.
type HierarchyResult struct {
	Nodes        []HierarchyNode `json:"nodes"`
	Associations []Association   `json:"associations"`
	MaxLevel     int             `json:"max_level"`
	RootIDs      []string        `json:"root_ids"`

	// LevelCap is the deepest level the builder was allowed to emit
	LevelCap       int      `json:"level_cap"`
	NodesInput     int      `json:"nodes_input"`
	NodesEmitted   int      `json:"nodes_emitted"`
	NodesDropped   int      `json:"nodes_dropped"`
	Truncated      bool     `json:"truncated"`
	EdgesInput     int      `json:"edges_input"`
	InactiveEdges  int      `json:"inactive_edges"`
	DroppedEdges   int      `json:"dropped_edges"`
	UnreachableIDs []string `json:"unreachable_ids,omitempty"`
	DuplicateIDs   []string `json:"duplicate_ids,omitempty"`
	MultiParentIDs []string `json:"multi_parent_ids,omitempty"`

	// Source column layouts, used to render result tables
	NodeColumns []string `json:"node_columns,omitempty"`
	EdgeColumns []string `json:"edge_columns,omitempty"`
}

// NodesAtLevel returns the nodes emitted at one level in result order
func (r *HierarchyResult) NodesAtLevel(level int) []HierarchyNode {
	var out []HierarchyNode
	for _, n := range r.Nodes {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

// AssociationsAtLevel returns the associations whose child sits at level
func (r *HierarchyResult) AssociationsAtLevel(level int) []Association {
	var out []Association
	for _, a := range r.Associations {
		if a.Level == level {
			out = append(out, a)
		}
	}
	return out
}
