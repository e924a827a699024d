package models

import "time"

// App names one of the transformation workflows
type App string

const (
	AppEmployee App = "employee"
	AppPayroll  App = "payroll"
	AppOrg      App = "org"
)

// Apps lists every workflow
var Apps = []App{AppEmployee, AppPayroll, AppOrg}

// IsValid reports whether the app is known
func (a App) IsValid() bool {
	switch a {
	case AppEmployee, AppPayroll, AppOrg:
		return true
	}
	return false
}

// DocumentKind names a configuration document kept per app
type DocumentKind string

const (
	DocumentTemplate       DocumentKind = "template"
	DocumentColumnMappings DocumentKind = "column_mappings"
	DocumentPicklists      DocumentKind = "picklists"
)

// DocumentKinds lists the configuration documents of an app
var DocumentKinds = []DocumentKind{DocumentTemplate, DocumentColumnMappings, DocumentPicklists}

// IsValid reports whether the document kind is known
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentTemplate, DocumentColumnMappings, DocumentPicklists:
		return true
	}
	return false
}

// ValidationRun summarizes one persisted validation pass
type ValidationRun struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	App        App    `json:"app"`
	Score      int    `json:"score"`
	Status     string `json:"status"`
	Ready      bool   `json:"ready"`
	IssueCount int    `json:"issue_count"`
	ErrorCount int    `json:"error_count"`
	// TransferRate is nil when no transfer comparison was possible
	TransferRate *float64  `json:"transfer_rate,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
