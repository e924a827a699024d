package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

type stubLookup struct {
	calls []string
}

func (s *stubLookup) Lookup(code, picklist, column, def string) string {
	s.calls = append(s.calls, code+"|"+picklist+"|"+column+"|"+def)
	if code == "1" {
		return "Active Employee"
	}
	return def
}

func TestApply_StringKinds(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.TransformKind
		value string
		want  string
	}{
		{"none passes through", models.TransformNone, "  Raw ", "  Raw "},
		{"empty kind is none", "", "x", "x"},
		{"title case", models.TransformTitleCase, "jOHN smith", "John Smith"},
		{"uppercase", models.TransformUppercase, "usd", "USD"},
		{"lowercase", models.TransformLowercase, "John.Doe@Example.COM", "john.doe@example.com"},
		{"trim", models.TransformTrim, "\t Berlin  ", "Berlin"},
		{"title case empty", models.TransformTitleCase, "", ""},
		{"uppercase empty", models.TransformUppercase, "", ""},
		{"trim blank", models.TransformTrim, "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.value, tt.kind, Config{}, ""))
		})
	}
}

func TestApply_Concatenate(t *testing.T) {
	assert.Equal(t, "John Smith", Apply("John", models.TransformConcatenate, Config{}, "Smith"))
	assert.Equal(t, "John", Apply("John", models.TransformConcatenate, Config{}, ""))
	assert.Equal(t, "Smith", Apply("", models.TransformConcatenate, Config{}, "Smith"))
	assert.Equal(t, "", Apply("", models.TransformConcatenate, Config{}, ""))
	assert.Equal(t, "John", Apply("John", models.TransformConcatenate, Config{}, "   "))
}

func TestApply_DateISO(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"16.02.2009", "2009-02-16"},
		{"1.2.2009", "2009-02-01"},
		{"16.02.2009 00:00:00", "2009-02-16"},
		{"00.00.0000", "00.00.0000"},
		{"31.02.2009", "31.02.2009"},
		{"16.02.09", "16.02.09"},
		{"02/16/2009", "2009-02-16"},
		{"16/02/2009", "2009-02-16"},
		{"03/04/2009", "2009-03-04"},
		{"2009/02/16", "2009-02-16"},
		{"2009-02-16", "2009-02-16"},
		{"2009-02-16 08:30:00", "2009-02-16"},
		{"20090216", "2009-02-16"},
		{"not a date", "not a date"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.value, models.TransformDateISO, Config{}, ""))
		})
	}
}

func TestApply_DateYearMonth(t *testing.T) {
	assert.Equal(t, "2009-02", Apply("16.02.2009", models.TransformDateYearMon, Config{}, ""))
	assert.Equal(t, "2021-12", Apply("2021-12-31", models.TransformDateYearMon, Config{}, ""))
	assert.Equal(t, "00.00.0000", Apply("00.00.0000", models.TransformDateYearMon, Config{}, ""))
}

func TestTry_ReportsUnparsableDate(t *testing.T) {
	out, err := Try("00.00.0000", models.TransformDateISO, Config{}, "")
	assert.Equal(t, "00.00.0000", out)
	assert.True(t, errors.Is(err, ErrUnparsable))

	out, err = Try("", models.TransformDateISO, Config{}, "")
	assert.Equal(t, "", out)
	assert.NoError(t, err)
}

func TestApply_StatusMapping(t *testing.T) {
	emp := Config{StatusVariant: StatusEmployee}
	pay := Config{StatusVariant: StatusPayroll}

	assert.Equal(t, "Active", Apply("1", models.TransformStatus, emp, ""))
	assert.Equal(t, "Inactive", Apply("2", models.TransformStatus, emp, ""))
	assert.Equal(t, "Pending", Apply("3", models.TransformStatus, emp, ""))
	assert.Equal(t, "Terminated", Apply("0", models.TransformStatus, emp, ""))
	assert.Equal(t, "Active", Apply("1.0", models.TransformStatus, emp, ""))
	assert.Equal(t, "Active", Apply("9", models.TransformStatus, emp, ""))
	assert.Equal(t, "Unknown", Apply("9", models.TransformStatus, Config{StatusVariant: StatusEmployee, DefaultValue: "Unknown"}, ""))

	assert.Equal(t, "Processed", Apply("1", models.TransformStatus, pay, ""))
	assert.Equal(t, "Draft", Apply("0", models.TransformStatus, pay, ""))
	assert.Equal(t, "Pending", Apply("x", models.TransformStatus, pay, ""))
	assert.Equal(t, "Pending", Apply("", models.TransformStatus, pay, ""))

	// An unset variant uses the employee table
	assert.Equal(t, "Inactive", Apply("2", models.TransformStatus, Config{}, ""))
}

func TestApply_NumberFormat(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"1234.5", "1234.50"},
		{"1,234,567.891", "1234567.89"},
		{"  42 ", "42.00"},
		{"-3.14159", "-3.14"},
		{"abc", "0.00"},
		{"", "0.00"},
		{"NaN", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.value, models.TransformNumberFormat, Config{}, ""))
		})
	}
}

func TestApply_Lookup(t *testing.T) {
	stub := &stubLookup{}
	cfg := Config{
		DefaultValue:   "Unknown",
		PicklistSource: "status_mapping.csv",
		PicklistColumn: "status_label",
		Lookup:         stub,
	}
	assert.Equal(t, "Active Employee", Apply("1", models.TransformLookup, cfg, ""))
	assert.Equal(t, "Unknown", Apply("7", models.TransformLookup, cfg, ""))
	assert.Equal(t, []string{
		"1|status_mapping.csv|status_label|Unknown",
		"7|status_mapping.csv|status_label|Unknown",
	}, stub.calls)

	out, err := Try("1", models.TransformLookup, Config{}, "")
	assert.Equal(t, "1", out)
	assert.ErrorIs(t, err, ErrNoLookup)
}

func TestApply_Custom(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("reverse_join", func(value, secondary string) (string, error) {
		return secondary + "," + value, nil
	}))
	require.NoError(t, reg.Register("always_fails", func(value, _ string) (string, error) {
		return "", errors.New("boom")
	}))
	require.NoError(t, reg.Register("panics", func(value, _ string) (string, error) {
		panic("bad input")
	}))

	cfg := Config{Registry: reg, CustomFunc: "reverse_join"}
	assert.Equal(t, "Smith,John", Apply("John", models.TransformCustom, cfg, "Smith"))

	out, err := Try("John", models.TransformCustom, Config{Registry: reg, CustomFunc: "always_fails"}, "")
	assert.Equal(t, "John", out)
	assert.ErrorIs(t, err, ErrCustomFailed)

	out, err = Try("John", models.TransformCustom, Config{Registry: reg, CustomFunc: "panics"}, "")
	assert.Equal(t, "John", out)
	assert.ErrorIs(t, err, ErrCustomFailed)

	out, err = Try("John", models.TransformCustom, Config{Registry: reg, CustomFunc: "missing"}, "")
	assert.Equal(t, "John", out)
	assert.ErrorIs(t, err, ErrUnknownFunc)
}

func TestApply_CustomDefaultRegistry(t *testing.T) {
	cfg := func(name string) Config { return Config{CustomFunc: name} }
	assert.Equal(t, "Anna", Apply("Anna Maria", models.TransformCustom, cfg("extract_first_word"), ""))
	assert.Equal(t, "1234", Apply("0001234", models.TransformCustom, cfg("strip_leading_zeros"), ""))
	assert.Equal(t, "0", Apply("0000", models.TransformCustom, cfg("strip_leading_zeros"), ""))
	assert.Equal(t, "", Apply("00.00.0000", models.TransformCustom, cfg("german_date"), ""))
	assert.Equal(t, "2009-02-16", Apply("16.02.2009", models.TransformCustom, cfg("german_date"), ""))
	assert.Equal(t, "JS", Apply("john", models.TransformCustom, cfg("initials"), "smith"))
	assert.Equal(t, "example.com", Apply("a@Example.com", models.TransformCustom, cfg("email_domain"), ""))
}

func TestApply_UnknownKindPassesThrough(t *testing.T) {
	out, err := Try("value", models.TransformKind("Reverse"), Config{}, "")
	assert.Equal(t, "value", out)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

// Every kind must return without panicking for awkward input
func TestApply_Totality(t *testing.T) {
	inputs := []string{"", " ", "00.00.0000", "//", "..", "--", "\x00", "ümlaut", "1e400", ",,,"}
	cfg := Config{Lookup: &stubLookup{}, CustomFunc: "initials"}
	for _, kind := range models.TransformKinds {
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				Apply(in, kind, cfg, in)
			}, "kind %q input %q", kind, in)
		}
	}
}
