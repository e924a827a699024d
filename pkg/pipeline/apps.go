package pipeline

import (
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/health"
	"github.com/hrmigrate/hrmigrate/pkg/mapping"
	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/transform"
)

// Output table names
const (
	OutputEmployee              = "Employee"
	OutputPayroll               = "Payroll"
	OutputHierarchy             = "Hierarchy"
	OutputHierarchyAssociations = "Hierarchy_Associations"
)

// flatApp describes a workflow that merges PA infotypes onto a base file and
// maps the merged table to a single output
type flatApp struct {
	app       models.App
	base      models.FileType
	sides     []models.FileType
	key       string
	scope     models.Scope
	output    string
	variant   transform.StatusVariant
	files     []health.FileCheck
	critical  []string
	multiRows bool
}

var employeeApp = flatApp{
	app:      models.AppEmployee,
	base:     models.FileTypePA0002,
	sides:    []models.FileType{models.FileTypePA0001, models.FileTypePA0006, models.FileTypePA0105},
	key:      mapping.EmployeeKey,
	scope:    models.ScopeEmployee,
	output:   OutputEmployee,
	variant:  transform.StatusEmployee,
	files:    health.EmployeeFiles,
	critical: health.EmployeeCriticalFields,
}

// PA0008 carries one row per wage type, so employees repeat
var payrollApp = flatApp{
	app:       models.AppPayroll,
	base:      models.FileTypePA0008,
	sides:     []models.FileType{models.FileTypePA0014},
	key:       mapping.EmployeeKey,
	scope:     models.ScopePayroll,
	output:    OutputPayroll,
	variant:   transform.StatusPayroll,
	files:     health.PayrollFiles,
	critical:  health.PayrollCriticalFields,
	multiRows: true,
}

func (a flatApp) fileTypes() []models.FileType {
	return append([]models.FileType{a.base}, a.sides...)
}

var orgFiles = []models.FileType{models.FileTypeHRP1000, models.FileTypeHRP1001}

// appsUsing lists the workflows reading a file type
func appsUsing(ft models.FileType) []models.App {
	var apps []models.App
	for _, a := range []flatApp{employeeApp, payrollApp} {
		for _, f := range a.fileTypes() {
			if f == ft {
				apps = append(apps, a.app)
			}
		}
	}
	for _, f := range orgFiles {
		if f == ft {
			apps = append(apps, models.AppOrg)
		}
	}
	return apps
}

// ownsOutput reports whether a generated output belongs to app
func ownsOutput(app models.App, name string) bool {
	switch app {
	case models.AppEmployee:
		return name == OutputEmployee
	case models.AppPayroll:
		return name == OutputPayroll
	case models.AppOrg:
		return name == OutputHierarchy || name == OutputHierarchyAssociations ||
			strings.HasPrefix(name, "Level") || strings.HasPrefix(name, "Association_")
	}
	return false
}
