package health

import "github.com/hrmigrate/hrmigrate/pkg/models"

// FileCheck declares a source file the scorer expects
type FileCheck struct {
	File  models.FileType
	Label string
	// Weight is deducted when a required file or its key column is missing
	Weight   int
	Optional bool
	// KeyColumn defaults to Input.KeyColumn
	KeyColumn string
	// Columns must be present besides the key
	Columns []string
	// Linked files are checked for keys unknown to the base file
	Linked bool
}

// EmployeeFiles are the PA infotypes behind the employee output
var EmployeeFiles = []FileCheck{
	{File: models.FileTypePA0002, Label: "Personal Data", Weight: 40, Columns: []string{"First name", "Last name"}},
	{File: models.FileTypePA0001, Label: "Work Information", Weight: 30, Linked: true},
	{File: models.FileTypePA0006, Label: "Address Data", Optional: true, Linked: true},
	{File: models.FileTypePA0105, Label: "Contact Info", Optional: true, Linked: true},
}

// EmployeeCriticalFields must exist in the employee output
var EmployeeCriticalFields = []string{"USERID", "FIRSTNAME", "LASTNAME"}

// PayrollFiles are the PA infotypes behind the payroll output
var PayrollFiles = []FileCheck{
	{File: models.FileTypePA0008, Label: "Basic Pay", Weight: 40, Columns: []string{"Amount"}},
	{File: models.FileTypePA0014, Label: "Recurring Payments", Optional: true, Linked: true},
}

// PayrollCriticalFields must exist in the payroll output
var PayrollCriticalFields = []string{"EMPLOYEE_ID", "AMOUNT"}

// OrgFiles are the object and relationship extracts behind the hierarchy
var OrgFiles = []FileCheck{
	{File: models.FileTypeHRP1000, Label: "Org Objects", Weight: 40, KeyColumn: "Object ID", Columns: []string{"Name"}},
	{File: models.FileTypeHRP1001, Label: "Org Relationships", Weight: 30, KeyColumn: "Source ID", Columns: []string{"Target object ID"}},
}
