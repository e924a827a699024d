package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

func TestFilterRules(t *testing.T) {
	rules := []models.MappingRule{
		{TargetField: "a", AppliesTo: models.ScopeLevel},
		{TargetField: "b", AppliesTo: models.ScopeAssociation},
		{TargetField: "c", AppliesTo: models.ScopeBoth},
		{TargetField: "d"},
	}
	names := func(rs []models.MappingRule) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.TargetField)
		}
		return out
	}
	assert.Equal(t, []string{"a", "c", "d"}, names(FilterRules(rules, models.ScopeLevel)))
	assert.Equal(t, []string{"b", "c", "d"}, names(FilterRules(rules, models.ScopeAssociation)))
	assert.Equal(t, []string{"c", "d"}, names(FilterRules(rules, models.ScopeEmployee)))
}

func TestValidateAll_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, ValidateAll(DefaultEmployeeRules(), nil))
	assert.NoError(t, ValidateAll(DefaultPayrollRules(), nil))
	// Level and Association share target names without conflicting
	assert.NoError(t, ValidateAll(DefaultOrgRules(), nil))
}

func TestValidateAll_Errors(t *testing.T) {
	err := ValidateAll([]models.MappingRule{{TargetField: "x", AppliesTo: "Somewhere"}}, nil)
	assert.ErrorIs(t, err, models.ErrMalformedRule)

	err = ValidateAll([]models.MappingRule{
		{TargetField: "x", AppliesTo: models.ScopeLevel},
		{TargetField: "x", AppliesTo: models.ScopeBoth},
	}, nil)
	assert.ErrorIs(t, err, models.ErrMalformedRule)
	assert.Contains(t, err.Error(), "Level rules")
}

func TestTemplates(t *testing.T) {
	tpl := EmployeeTemplate()
	assert.Len(t, tpl, 10)
	assert.Equal(t, "STATUS", tpl[0].TargetField)
	assert.True(t, tpl[1].Required)
	assert.False(t, tpl[0].Required)

	assoc := AssociationTemplate()
	assert.Equal(t, "externalCode", assoc[0].TargetField)
	assert.Len(t, LevelTemplate(), 8)
	assert.Len(t, PayrollTemplate(), 10)
}
