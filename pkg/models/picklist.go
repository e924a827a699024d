package models

// DefaultPicklistKeyColumn is the key column picklist rows are matched on
const DefaultPicklistKeyColumn = "status_code"

// DefaultPicklistLabelColumn is returned when a lookup names no column
const DefaultPicklistLabelColumn = "status_label"

// Picklist is a small reference table translating codes to labels
type Picklist struct {
	Name      string `json:"name" yaml:"name"`
	KeyColumn string `json:"key_column,omitempty" yaml:"key_column,omitempty"`
	Table     *Table `json:"table" yaml:"-"`
}

// Key returns the column rows are matched on
func (p *Picklist) Key() string {
	if p.KeyColumn == "" {
		return DefaultPicklistKeyColumn
	}
	return p.KeyColumn
}
