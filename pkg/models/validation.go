package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity ranks a validation issue
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// IsBlocking reports whether issues of this severity block downstream processing
func (s Severity) IsBlocking() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// IssueType is a stable code identifying the kind of data problem
type IssueType string

const (
	IssueMissingFile           IssueType = "MISSING_FILE"
	IssueMissingOptionalFile   IssueType = "MISSING_OPTIONAL_FILE"
	IssueMissingRequiredColumn IssueType = "MISSING_REQUIRED_COLUMN"
	IssueEmptyKeys             IssueType = "EMPTY_KEYS"
	IssueDuplicateKeys         IssueType = "DUPLICATE_KEYS"
	IssueOrphanedKeys          IssueType = "ORPHANED_KEYS"
	IssueHighNullRate          IssueType = "HIGH_NULL_RATE"
	IssueSignificantDataLoss   IssueType = "SIGNIFICANT_DATA_LOSS"
	IssueMinorDataLoss         IssueType = "MINOR_DATA_LOSS"
	IssueProcessingAnomaly     IssueType = "PROCESSING_ANOMALY"
	IssueMissingOutput         IssueType = "MISSING_OUTPUT"
	IssueEmptyOutput           IssueType = "EMPTY_OUTPUT"
	IssueMissingCriticalField  IssueType = "MISSING_CRITICAL_FIELD"
	IssueHighEmptyOutput       IssueType = "HIGH_EMPTY_OUTPUT"
	IssueHierarchyTruncated    IssueType = "HIERARCHY_TRUNCATED"
	IssueUnreachableNodes      IssueType = "UNREACHABLE_NODES"
	IssueDanglingEdges         IssueType = "DANGLING_EDGES"
	IssueDuplicateNodeIDs      IssueType = "DUPLICATE_NODE_IDS"
	IssueMultipleParents       IssueType = "MULTIPLE_PARENTS"
	IssueTransformFailed       IssueType = "TRANSFORM_FAILED"
)

// ValidationIssue is one data problem found after processing. Issues are
// reported, never returned as errors.
type ValidationIssue struct {
	ID          string         `json:"id"`
	Type        IssueType      `json:"type"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Action      string         `json:"action"`
	Source      string         `json:"source,omitempty"`
	Field       string         `json:"field,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewIssue creates an issue with a fresh id and the current time
func NewIssue(typ IssueType, severity Severity, title, description, action string) ValidationIssue {
	return ValidationIssue{
		ID:          uuid.NewString(),
		Type:        typ,
		Severity:    severity,
		Title:       title,
		Description: description,
		Action:      action,
		Timestamp:   time.Now().UTC(),
	}
}

// WithSource sets the affected source and field
func (v ValidationIssue) WithSource(source, field string) ValidationIssue {
	v.Source = source
	v.Field = field
	return v
}

// WithDetails attaches structured details
func (v ValidationIssue) WithDetails(details map[string]any) ValidationIssue {
	v.Details = details
	return v
}
