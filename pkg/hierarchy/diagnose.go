package hierarchy

import (
	"fmt"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// maxSampleIDs bounds the ids listed in issue details
const maxSampleIDs = 10

// Diagnose turns the anomalies a build absorbed into validation issues
func Diagnose(r *models.HierarchyResult) []models.ValidationIssue {
	var issues []models.ValidationIssue
	hrp1000 := string(models.FileTypeHRP1000)
	hrp1001 := string(models.FileTypeHRP1001)

	switch {
	case r.Truncated:
		issues = append(issues, models.NewIssue(models.IssueHierarchyTruncated, models.SeverityHigh,
			"Hierarchy truncated",
			fmt.Sprintf("Traversal stopped at level %d with %d of %d org units not placed.", r.LevelCap, r.NodesDropped, r.NodesInput),
			"Check HRP1001 for relationship cycles or raise the level limit if the organization is genuinely this deep.",
		).WithSource(hrp1001, "").WithDetails(map[string]any{
			"level_cap":     r.LevelCap,
			"nodes_dropped": r.NodesDropped,
			"sample_ids":    sample(r.UnreachableIDs),
		}))
	case r.NodesDropped > 0:
		issues = append(issues, models.NewIssue(models.IssueUnreachableNodes, models.SeverityHigh,
			"Org units not reachable from any root",
			fmt.Sprintf("%d of %d org units are only connected through relationship cycles and were not placed in any level.", r.NodesDropped, r.NodesInput),
			"Break the cycles in HRP1001 so every unit reports up to a top-level unit.",
		).WithSource(hrp1001, "").WithDetails(map[string]any{
			"nodes_dropped": r.NodesDropped,
			"sample_ids":    sample(r.UnreachableIDs),
		}))
	}

	if r.DroppedEdges > 0 {
		issues = append(issues, models.NewIssue(models.IssueDanglingEdges, models.SeverityMedium,
			"Relationships ignored",
			fmt.Sprintf("%d active relationships reference org units missing from HRP1000 or point to themselves.", r.DroppedEdges),
			"Make sure HRP1000 contains every object referenced in HRP1001.",
		).WithSource(hrp1001, "").WithDetails(map[string]any{
			"dropped_edges": r.DroppedEdges,
		}))
	}

	if len(r.DuplicateIDs) > 0 {
		issues = append(issues, models.NewIssue(models.IssueDuplicateNodeIDs, models.SeverityMedium,
			"Duplicate object IDs",
			fmt.Sprintf("%d object IDs appear more than once in HRP1000; the first record of each was used.", len(r.DuplicateIDs)),
			"Remove historical or duplicate records from the HRP1000 extract.",
		).WithSource(hrp1000, "").WithDetails(map[string]any{
			"duplicate_count": len(r.DuplicateIDs),
			"sample_ids":      sample(r.DuplicateIDs),
		}))
	}

	if len(r.MultiParentIDs) > 0 {
		issues = append(issues, models.NewIssue(models.IssueMultipleParents, models.SeverityMedium,
			"Org units with several parents",
			fmt.Sprintf("%d org units have more than one active parent; each was placed under the first parent reached.", len(r.MultiParentIDs)),
			"Delimit outdated relationships so each unit reports to a single parent.",
		).WithSource(hrp1001, "").WithDetails(map[string]any{
			"count":      len(r.MultiParentIDs),
			"sample_ids": sample(r.MultiParentIDs),
		}))
	}
	return issues
}

func sample(ids []string) []string {
	if len(ids) > maxSampleIDs {
		return ids[:maxSampleIDs]
	}
	return ids
}
