package models

// TransformKind names a cell transformation. Values match the labels stored
// in column mapping documents exactly.
type TransformKind string

const (
	TransformNone         TransformKind = "None"
	TransformTitleCase    TransformKind = "Title Case"
	TransformUppercase    TransformKind = "UPPERCASE"
	TransformLowercase    TransformKind = "lowercase"
	TransformTrim         TransformKind = "Trim Whitespace"
	TransformConcatenate  TransformKind = "Concatenate"
	TransformDateISO      TransformKind = "Date Format (YYYY-MM-DD)"
	TransformDateYearMon  TransformKind = "Date Format (YYYY-MM)"
	TransformStatus       TransformKind = "Status Mapping"
	TransformNumberFormat TransformKind = "Number Format"
	TransformLookup       TransformKind = "Lookup Value"
	TransformCustom       TransformKind = "Custom"
)

// TransformKinds lists every supported transformation
var TransformKinds = []TransformKind{
	TransformNone, TransformTitleCase, TransformUppercase, TransformLowercase,
	TransformTrim, TransformConcatenate, TransformDateISO, TransformDateYearMon,
	TransformStatus, TransformNumberFormat, TransformLookup, TransformCustom,
}

// IsValid reports whether the kind is supported. The empty kind is treated as None.
func (k TransformKind) IsValid() bool {
	if k == "" {
		return true
	}
	for _, known := range TransformKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Scope selects which output a mapping rule applies to
type Scope string

const (
	ScopeLevel       Scope = "Level"
	ScopeAssociation Scope = "Association"
	ScopeBoth        Scope = "Both"
	ScopeEmployee    Scope = "Employee"
	ScopePayroll     Scope = "Payroll"
)

// IsValid reports whether the scope is known. The empty scope applies everywhere.
func (s Scope) IsValid() bool {
	switch s {
	case "", ScopeLevel, ScopeAssociation, ScopeBoth, ScopeEmployee, ScopePayroll:
		return true
	}
	return false
}

// Matches reports whether a rule scoped to s applies to the requested scope
func (s Scope) Matches(requested Scope) bool {
	return s == requested || s == ScopeBoth || (s == "" && requested != "")
}

// MappingRule produces one output column from zero or one source columns
type MappingRule struct {
	TargetField     string        `json:"target_field" yaml:"target_field"`
	TargetLabel     string        `json:"target_label,omitempty" yaml:"target_label,omitempty"`
	SourceFile      FileType      `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	SourceColumn    string        `json:"source_column,omitempty" yaml:"source_column,omitempty"`
	Transformation  TransformKind `json:"transformation" yaml:"transformation"`
	SecondaryColumn string        `json:"secondary_column,omitempty" yaml:"secondary_column,omitempty"`
	DefaultValue    string        `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	PicklistSource  string        `json:"picklist_source,omitempty" yaml:"picklist_source,omitempty"`
	PicklistColumn  string        `json:"picklist_column,omitempty" yaml:"picklist_column,omitempty"`
	CustomFunc      string        `json:"custom_func,omitempty" yaml:"custom_func,omitempty"`
	AppliesTo       Scope         `json:"applies_to" yaml:"applies_to"`
	Category        string        `json:"category,omitempty" yaml:"category,omitempty"`
}

// TemplateField is one declared column of an output template
type TemplateField struct {
	TargetField string `json:"target_field" yaml:"target_field"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// RuleStatus tags the outcome of applying one mapping rule
type RuleStatus string

const (
	TransformStatusSuccess RuleStatus = "success"
	TransformStatusMissing RuleStatus = "missing"
	TransformStatusError   RuleStatus = "error"
)

// TransformLogEntry records what happened to one mapping rule during a build
type TransformLogEntry struct {
	TargetField    string        `json:"target_field"`
	SourceFile     FileType      `json:"source_file,omitempty"`
	SourceColumn   string        `json:"source_column,omitempty"`
	Transformation TransformKind `json:"transformation"`
	Status         RuleStatus    `json:"status"`
	Message        string        `json:"message,omitempty"`
	Rows           int           `json:"rows"`
}
