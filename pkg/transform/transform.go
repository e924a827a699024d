// Package transform implements the cell-level transformations applied by
// mapping rules. Every function here is pure and total: a failed
// transformation falls back to a usable value instead of stopping the run.
package transform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hrmigrate/hrmigrate/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrUnparsable marks a value that could not be interpreted and was passed through
	ErrUnparsable = errors.New("unparsable value")
	// ErrUnknownKind marks a transformation label outside the supported set
	ErrUnknownKind = errors.New("unknown transformation")
	// ErrNoLookup marks a Lookup Value rule applied without a resolver
	ErrNoLookup = errors.New("no picklist resolver configured")
	// ErrCustomFailed marks a registered custom function that errored or panicked
	ErrCustomFailed = errors.New("custom transformation failed")
)

// StatusVariant selects the status code table used by Status Mapping
type StatusVariant string

const (
	StatusEmployee StatusVariant = "employee"
	StatusPayroll  StatusVariant = "payroll"
)

var statusTables = map[StatusVariant]map[string]string{
	StatusEmployee: {"1": "Active", "2": "Inactive", "3": "Pending", "0": "Terminated"},
	StatusPayroll:  {"1": "Processed", "2": "Pending", "3": "Cancelled", "0": "Draft"},
}

var statusDefaults = map[StatusVariant]string{
	StatusEmployee: "Active",
	StatusPayroll:  "Pending",
}

// Lookuper resolves a code through a named picklist
type Lookuper interface {
	Lookup(code, picklist, column, def string) string
}

// Config carries the per-rule settings a transformation may need
type Config struct {
	DefaultValue   string
	PicklistSource string
	PicklistColumn string
	CustomFunc     string
	StatusVariant  StatusVariant
	Lookup         Lookuper
	Registry       *Registry
}

// ConfigFromRule builds a Config from a mapping rule. Lookup, Registry and
// StatusVariant are left for the caller to fill.
func ConfigFromRule(rule models.MappingRule) Config {
	return Config{
		DefaultValue:   rule.DefaultValue,
		PicklistSource: rule.PicklistSource,
		PicklistColumn: rule.PicklistColumn,
		CustomFunc:     rule.CustomFunc,
	}
}

// Apply transforms one cell. It never fails; see Try for the failure detail.
func Apply(value string, kind models.TransformKind, cfg Config, secondary string) string {
	out, _ := Try(value, kind, cfg, secondary)
	return out
}

// Try transforms one cell and reports why a fallback value was used, if it was.
// The returned string is always the value Apply would return.
func Try(value string, kind models.TransformKind, cfg Config, secondary string) (string, error) {
	switch kind {
	case models.TransformNone, "":
		return value, nil
	case models.TransformTitleCase:
		return titleCase(value), nil
	case models.TransformUppercase:
		return strings.ToUpper(value), nil
	case models.TransformLowercase:
		return strings.ToLower(value), nil
	case models.TransformTrim:
		return strings.TrimSpace(value), nil
	case models.TransformConcatenate:
		return Concatenate(value, secondary), nil
	case models.TransformDateISO:
		return reformatDate(value, "2006-01-02")
	case models.TransformDateYearMon:
		return reformatDate(value, "2006-01")
	case models.TransformStatus:
		return mapStatus(value, cfg), nil
	case models.TransformNumberFormat:
		return FormatNumber(value)
	case models.TransformLookup:
		if cfg.Lookup == nil {
			return value, ErrNoLookup
		}
		return cfg.Lookup.Lookup(value, cfg.PicklistSource, cfg.PicklistColumn, cfg.DefaultValue), nil
	case models.TransformCustom:
		return applyCustom(value, secondary, cfg)
	default:
		return value, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Concatenate joins two values with a single space, omitting empty sides
func Concatenate(a, b string) string {
	aEmpty := strings.TrimSpace(a) == ""
	bEmpty := strings.TrimSpace(b) == ""
	switch {
	case aEmpty && bEmpty:
		return ""
	case aEmpty:
		return b
	case bEmpty:
		return a
	}
	return a + " " + b
}

// FormatNumber renders a number with exactly two decimals after removing
// thousands separators. Unparsable input yields "0.00".
func FormatNumber(value string) (string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "0.00", fmt.Errorf("%w: number %q", ErrUnparsable, value)
	}
	return strconv.FormatFloat(f, 'f', 2, 64), nil
}

// StatusLabel maps a status code for the given variant. Unknown codes fall
// back to def, then to the variant's default label.
func StatusLabel(code string, variant StatusVariant, def string) string {
	table, ok := statusTables[variant]
	if !ok {
		variant = StatusEmployee
		table = statusTables[StatusEmployee]
	}
	if label, ok := table[models.NormalizeID(code)]; ok {
		return label
	}
	if def != "" {
		return def
	}
	return statusDefaults[variant]
}

func mapStatus(value string, cfg Config) string {
	return StatusLabel(value, cfg.StatusVariant, cfg.DefaultValue)
}

func titleCase(value string) string {
	if value == "" {
		return ""
	}
	// Casers carry state and are not safe for concurrent use
	return cases.Title(language.Und).String(value)
}

func applyCustom(value, secondary string, cfg Config) (out string, err error) {
	reg := cfg.Registry
	if reg == nil {
		reg = Default
	}
	fn, ok := reg.Get(cfg.CustomFunc)
	if !ok {
		return value, fmt.Errorf("%w: %q", ErrUnknownFunc, cfg.CustomFunc)
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = value, fmt.Errorf("%w: %s: %v", ErrCustomFailed, cfg.CustomFunc, r)
		}
	}()
	result, ferr := fn(value, secondary)
	if ferr != nil {
		return value, fmt.Errorf("%w: %s: %v", ErrCustomFailed, cfg.CustomFunc, ferr)
	}
	return result, nil
}
