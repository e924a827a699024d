package mapping

import "github.com/hrmigrate/hrmigrate/pkg/models"

// EmployeeKey joins the PA infotypes
const EmployeeKey = "Pers.No."

// DefaultEmployeeRules maps merged PA0002/PA0001/PA0006/PA0105 data to the
// employee import layout
func DefaultEmployeeRules() []models.MappingRule {
	return []models.MappingRule{
		{TargetField: "STATUS", TargetLabel: "Employment Status", SourceFile: models.FileTypePA0002, SourceColumn: "Employee status", Transformation: models.TransformStatus, DefaultValue: "Active", AppliesTo: models.ScopeEmployee, Category: "Work Info"},
		{TargetField: "USERID", TargetLabel: "Unique Employee ID", SourceFile: models.FileTypePA0002, SourceColumn: EmployeeKey, Transformation: models.TransformNone, AppliesTo: models.ScopeEmployee, Category: "Core Info"},
		{TargetField: "USERNAME", TargetLabel: "Employee Display Name", SourceFile: models.FileTypePA0002, SourceColumn: "First name", SecondaryColumn: "Last name", Transformation: models.TransformConcatenate, AppliesTo: models.ScopeEmployee, Category: "Core Info"},
		{TargetField: "FIRSTNAME", TargetLabel: "First Name", SourceFile: models.FileTypePA0002, SourceColumn: "First name", Transformation: models.TransformTitleCase, AppliesTo: models.ScopeEmployee, Category: "Core Info"},
		{TargetField: "LASTNAME", TargetLabel: "Last Name", SourceFile: models.FileTypePA0002, SourceColumn: "Last name", Transformation: models.TransformTitleCase, AppliesTo: models.ScopeEmployee, Category: "Core Info"},
		{TargetField: "EMAIL", TargetLabel: "Email Address", SourceFile: models.FileTypePA0105, SourceColumn: "Communication", Transformation: models.TransformLowercase, AppliesTo: models.ScopeEmployee, Category: "Contact Info"},
		{TargetField: "DEPARTMENT", TargetLabel: "Department", SourceFile: models.FileTypePA0001, SourceColumn: "Organizational unit", Transformation: models.TransformTitleCase, DefaultValue: "General", AppliesTo: models.ScopeEmployee, Category: "Work Info"},
		{TargetField: "HIREDATE", TargetLabel: "Hire Date", SourceFile: models.FileTypePA0001, SourceColumn: "Start date", Transformation: models.TransformDateISO, AppliesTo: models.ScopeEmployee, Category: "Work Info"},
		{TargetField: "BIZ_PHONE", TargetLabel: "Business Phone", SourceFile: models.FileTypePA0105, SourceColumn: "Communication", Transformation: models.TransformNone, AppliesTo: models.ScopeEmployee, Category: "Contact Info"},
		{TargetField: "MANAGER", TargetLabel: "Manager", SourceFile: models.FileTypePA0001, SourceColumn: "Name of superior (OM)", Transformation: models.TransformTitleCase, DefaultValue: "NO_MANAGER", AppliesTo: models.ScopeEmployee, Category: "Work Info"},
	}
}

// DefaultPayrollRules maps merged PA0008/PA0014 data to the payroll layout
func DefaultPayrollRules() []models.MappingRule {
	return []models.MappingRule{
		{TargetField: "EMPLOYEE_ID", TargetLabel: "Employee Identifier", SourceFile: models.FileTypePA0008, SourceColumn: EmployeeKey, Transformation: models.TransformNone, AppliesTo: models.ScopePayroll, Category: "Core Info"},
		{TargetField: "WAGE_TYPE", TargetLabel: "Wage Type Code", SourceFile: models.FileTypePA0008, SourceColumn: "Wage Type", Transformation: models.TransformNone, AppliesTo: models.ScopePayroll, Category: "Pay Info"},
		{TargetField: "AMOUNT", TargetLabel: "Payment Amount", SourceFile: models.FileTypePA0008, SourceColumn: "Amount", Transformation: models.TransformNumberFormat, DefaultValue: "0.00", AppliesTo: models.ScopePayroll, Category: "Pay Info"},
		{TargetField: "CURRENCY", TargetLabel: "Currency Code", SourceFile: models.FileTypePA0008, SourceColumn: "Currency", Transformation: models.TransformUppercase, DefaultValue: "USD", AppliesTo: models.ScopePayroll, Category: "Pay Info"},
		{TargetField: "PAY_PERIOD", TargetLabel: "Pay Period", SourceFile: models.FileTypePA0008, SourceColumn: "Pay Period", Transformation: models.TransformDateYearMon, AppliesTo: models.ScopePayroll, Category: "Pay Info"},
		{TargetField: "PAYMENT_DATE", TargetLabel: "Payment Date", SourceFile: models.FileTypePA0008, SourceColumn: "Payment Date", Transformation: models.TransformDateISO, AppliesTo: models.ScopePayroll, Category: "Pay Info"},
		{TargetField: "RECURRING_AMOUNT", TargetLabel: "Recurring Amount", SourceFile: models.FileTypePA0014, SourceColumn: "Recurring Amount", Transformation: models.TransformNumberFormat, DefaultValue: "0.00", AppliesTo: models.ScopePayroll, Category: "Deductions"},
		{TargetField: "DEDUCTION_TYPE", TargetLabel: "Deduction Type", SourceFile: models.FileTypePA0014, SourceColumn: "Deduction Type", Transformation: models.TransformTitleCase, DefaultValue: "None", AppliesTo: models.ScopePayroll, Category: "Deductions"},
		{TargetField: "STATUS", TargetLabel: "Payment Status", SourceFile: models.FileTypePA0008, SourceColumn: "Status", Transformation: models.TransformStatus, DefaultValue: "Pending", AppliesTo: models.ScopePayroll, Category: "Pay Info"},
		{TargetField: "COST_CENTER", TargetLabel: "Cost Center", SourceFile: models.FileTypePA0008, SourceColumn: "Cost Center", Transformation: models.TransformNone, DefaultValue: "0000", AppliesTo: models.ScopePayroll, Category: "Pay Info"},
	}
}

// DefaultOrgRules maps hierarchy levels and associations to the foundation
// object layout
func DefaultOrgRules() []models.MappingRule {
	return []models.MappingRule{
		{TargetField: "externalCode", TargetLabel: "External Code", SourceFile: models.FileTypeHRP1000, SourceColumn: "Object ID", Transformation: models.TransformNone, AppliesTo: models.ScopeLevel},
		{TargetField: "Operator", TargetLabel: "Operator", SourceFile: models.FileTypeHRP1000, Transformation: models.TransformNone, DefaultValue: "N/A", AppliesTo: models.ScopeLevel},
		{TargetField: "effectiveStartDate", TargetLabel: "Effective Start Date", SourceFile: models.FileTypeHRP1000, SourceColumn: "Start date", Transformation: models.TransformDateISO, AppliesTo: models.ScopeLevel},
		{TargetField: "effectiveEndDate", TargetLabel: "Effective End Date", SourceFile: models.FileTypeHRP1000, SourceColumn: "End Date", Transformation: models.TransformDateISO, AppliesTo: models.ScopeLevel},
		{TargetField: "name.en_US", TargetLabel: "Name (English US)", SourceFile: models.FileTypeHRP1000, SourceColumn: "Name", Transformation: models.TransformTrim, AppliesTo: models.ScopeLevel},
		{TargetField: "name.defaultValue", TargetLabel: "Name (Default)", SourceFile: models.FileTypeHRP1000, SourceColumn: "Name", Transformation: models.TransformTitleCase, AppliesTo: models.ScopeLevel},
		{TargetField: "effectiveStatus", TargetLabel: "Status", SourceFile: models.FileTypeHRP1000, SourceColumn: "Planning status", Transformation: models.TransformLookup, DefaultValue: "Active", PicklistSource: "status_mapping.csv", PicklistColumn: "status_label", AppliesTo: models.ScopeLevel},
		{TargetField: "Object abbr.", TargetLabel: "Object Abbreviation", SourceFile: models.FileTypeHRP1000, SourceColumn: "Object abbr.", Transformation: models.TransformNone, AppliesTo: models.ScopeLevel},

		{TargetField: "externalCode", TargetLabel: "External Code", SourceFile: models.FileTypeHRP1001, SourceColumn: "Source ID", Transformation: models.TransformNone, AppliesTo: models.ScopeAssociation},
		{TargetField: "effectiveStartDate", TargetLabel: "Effective Start Date", SourceFile: models.FileTypeHRP1001, SourceColumn: "Start date", Transformation: models.TransformDateISO, AppliesTo: models.ScopeAssociation},
		{TargetField: "effectiveEndDate", TargetLabel: "Effective End Date", SourceFile: models.FileTypeHRP1001, SourceColumn: "End Date", Transformation: models.TransformDateISO, AppliesTo: models.ScopeAssociation},
		{TargetField: "cust_toLegalEntity.externalCode", TargetLabel: "Parent Entity Code", SourceFile: models.FileTypeHRP1001, SourceColumn: "Target object ID", Transformation: models.TransformNone, AppliesTo: models.ScopeAssociation},
		{TargetField: "relationshipType", TargetLabel: "Relationship Type", SourceFile: models.FileTypeHRP1001, SourceColumn: "Relationship", Transformation: models.TransformUppercase, DefaultValue: "REPORTS_TO", AppliesTo: models.ScopeAssociation},
		{TargetField: "effectiveStatus", TargetLabel: "Status", SourceFile: models.FileTypeHRP1001, SourceColumn: "Planning status", Transformation: models.TransformLookup, DefaultValue: "Active", PicklistSource: "status_mapping.csv", PicklistColumn: "status_label", AppliesTo: models.ScopeAssociation},
	}
}

// TemplateFromRules derives a template from rule order
func TemplateFromRules(rules []models.MappingRule) []models.TemplateField {
	seen := make(map[string]bool, len(rules))
	fields := make([]models.TemplateField, 0, len(rules))
	for _, r := range rules {
		if seen[r.TargetField] {
			continue
		}
		seen[r.TargetField] = true
		fields = append(fields, models.TemplateField{TargetField: r.TargetField, Label: r.TargetLabel})
	}
	return fields
}

// EmployeeTemplate is the fixed employee import layout
func EmployeeTemplate() []models.TemplateField {
	return requireAll(TemplateFromRules(DefaultEmployeeRules()), "USERID", "FIRSTNAME", "LASTNAME")
}

// PayrollTemplate is the fixed payroll import layout
func PayrollTemplate() []models.TemplateField {
	return requireAll(TemplateFromRules(DefaultPayrollRules()), "EMPLOYEE_ID", "AMOUNT")
}

// LevelTemplate is the layout of each per-level org unit file
func LevelTemplate() []models.TemplateField {
	return requireAll(TemplateFromRules(FilterRules(DefaultOrgRules(), models.ScopeLevel)), "externalCode")
}

// AssociationTemplate is the layout of each per-level association file
func AssociationTemplate() []models.TemplateField {
	return requireAll(TemplateFromRules(FilterRules(DefaultOrgRules(), models.ScopeAssociation)),
		"externalCode", "cust_toLegalEntity.externalCode")
}

func requireAll(fields []models.TemplateField, required ...string) []models.TemplateField {
	for i := range fields {
		for _, r := range required {
			if fields[i].TargetField == r {
				fields[i].Required = true
			}
		}
	}
	return fields
}
