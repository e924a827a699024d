package mapping

import (
	"fmt"
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/transform"
)

// FilterRules keeps the rules applying to scope, in their configured order
func FilterRules(rules []models.MappingRule, scope models.Scope) []models.MappingRule {
	var out []models.MappingRule
	for _, r := range rules {
		if r.AppliesTo.Matches(scope) {
			out = append(out, r)
		}
	}
	return out
}

// ValidateRules checks rules that will be applied together. The first
// problem is returned as a *models.ConfigError.
func ValidateRules(rules []models.MappingRule, registry *transform.Registry) error {
	if registry == nil {
		registry = transform.Default
	}
	seen := make(map[string]int, len(rules))
	for i, r := range rules {
		name := ruleName(r, i)
		if strings.TrimSpace(r.TargetField) == "" {
			return models.MalformedRuleError(name, "target field is empty")
		}
		if prev, dup := seen[name]; dup {
			return models.MalformedRuleError(name, fmt.Sprintf("target field also defined by rule #%d", prev+1))
		}
		seen[name] = i
		if !r.Transformation.IsValid() {
			return models.MalformedRuleError(name, fmt.Sprintf("unknown transformation %q", r.Transformation))
		}
		if r.SourceFile != "" && !r.SourceFile.IsValid() {
			return models.MalformedRuleError(name, fmt.Sprintf("unknown source file %q", r.SourceFile))
		}
		switch r.Transformation {
		case models.TransformLookup:
			if r.PicklistSource == "" {
				return models.MalformedRuleError(name, "Lookup Value requires a picklist source")
			}
		case models.TransformCustom:
			if _, ok := registry.Get(r.CustomFunc); !ok {
				return models.MalformedRuleError(name, fmt.Sprintf("custom function %q is not registered", r.CustomFunc))
			}
		}
	}
	return nil
}

// ValidateAll checks every scope present in a full rule list
func ValidateAll(rules []models.MappingRule, registry *transform.Registry) error {
	scopes := map[models.Scope]bool{}
	for i, r := range rules {
		if !r.AppliesTo.IsValid() {
			return models.MalformedRuleError(ruleName(r, i), fmt.Sprintf("unknown scope %q", r.AppliesTo))
		}
		if r.AppliesTo != models.ScopeBoth && r.AppliesTo != "" {
			scopes[r.AppliesTo] = true
		}
	}
	if len(scopes) == 0 {
		return ValidateRules(rules, registry)
	}
	for _, scope := range []models.Scope{models.ScopeLevel, models.ScopeAssociation, models.ScopeEmployee, models.ScopePayroll} {
		if !scopes[scope] {
			continue
		}
		if err := ValidateRules(FilterRules(rules, scope), registry); err != nil {
			return fmt.Errorf("%s rules: %w", scope, err)
		}
	}
	return nil
}

func ruleName(r models.MappingRule, i int) string {
	if strings.TrimSpace(r.TargetField) == "" {
		return fmt.Sprintf("#%d", i+1)
	}
	return r.TargetField
}
