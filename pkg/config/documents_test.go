package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

const mappingsYAML = `
version: "2"
rules:
  - target_field: USERID
    source_file: PA0002
    source_column: Pers.No.
    applies_to: Employee
  - target_field: LASTNAME
    source_file: PA0002
    source_column: Last name
    transformation: UPPERCASE
    applies_to: Employee
`

func TestParseMappings(t *testing.T) {
	doc, err := ParseMappings([]byte(mappingsYAML))
	require.NoError(t, err)
	assert.Equal(t, "2", doc.Version)
	require.Len(t, doc.Rules, 2)
	assert.Equal(t, models.TransformNone, doc.Rules[0].Transformation)
	assert.Equal(t, models.TransformUppercase, doc.Rules[1].Transformation)
	assert.Equal(t, models.FileTypePA0002, doc.Rules[1].SourceFile)
}

func TestParseMappings_JSON(t *testing.T) {
	doc, err := ParseMappings([]byte(`{"rules":[{"target_field":"AMOUNT","transformation":"Number Format","applies_to":"Payroll"}]}`))
	require.NoError(t, err)
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, models.ScopePayroll, doc.Rules[0].AppliesTo)
}

func TestParseMappings_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":         "rules: [",
		"unknown kind":   "rules:\n  - target_field: X\n    transformation: Reverse\n",
		"duplicate":      "rules:\n  - target_field: X\n  - target_field: X\n",
		"lookup":         "rules:\n  - target_field: X\n    transformation: Lookup Value\n",
		"unknown scope":  "rules:\n  - target_field: X\n    applies_to: Everything\n",
		"unknown custom": "rules:\n  - target_field: X\n    transformation: Custom\n    custom_func: nope\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMappings([]byte(data))
			assert.Error(t, err)
		})
	}

	_, err := ParseMappings([]byte(tests["duplicate"]))
	assert.True(t, models.IsConfigError(err))
}

func TestParseTemplate(t *testing.T) {
	doc, err := ParseTemplate([]byte(`
templates:
  Level:
    - target_field: externalCode
      required: true
    - target_field: name
`))
	require.NoError(t, err)
	fields := doc.For(models.ScopeLevel)
	require.Len(t, fields, 2)
	assert.True(t, fields[0].Required)
	assert.Nil(t, doc.For(models.ScopeAssociation))

	_, err = ParseTemplate([]byte("templates:\n  Nowhere:\n    - target_field: x\n"))
	assert.Error(t, err)
}

func TestParsePicklists(t *testing.T) {
	doc, err := ParsePicklists([]byte(`
picklists:
  - name: status_mapping.csv
    path: picklists/status_mapping.csv
  - name: departments
    key_column: code
    path: mem://localhost/departments.csv
`))
	require.NoError(t, err)
	require.Len(t, doc.Picklists, 2)
	assert.Equal(t, "code", doc.Picklists[1].KeyColumn)

	_, err = ParsePicklists([]byte("picklists:\n  - name: x\n"))
	assert.Error(t, err)
}

func TestDefaultDocuments(t *testing.T) {
	org := DefaultDocuments(models.AppOrg)
	assert.NotEmpty(t, org.Template.For(models.ScopeLevel))
	assert.NotEmpty(t, org.Template.For(models.ScopeAssociation))
	assert.NotEmpty(t, org.Mappings.Rules)

	emp := DefaultDocuments(models.AppEmployee)
	assert.NotEmpty(t, emp.Template.For(models.ScopeEmployee))
	assert.Equal(t, "status_mapping.csv", emp.Picklists.Picklists[0].Name)
}

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()

	docs, err := LoadDocuments(dir, models.AppEmployee)
	require.NoError(t, err)
	assert.Equal(t, DefaultDocuments(models.AppEmployee).Mappings, docs.Mappings)

	mappings, err := ParseMappings([]byte(mappingsYAML))
	require.NoError(t, err)
	require.NoError(t, WriteDocument(dir, models.AppEmployee, models.DocumentColumnMappings, mappings))

	docs, err = LoadDocuments(dir, models.AppEmployee)
	require.NoError(t, err)
	assert.Len(t, docs.Mappings.Rules, 2)
	assert.Equal(t, "2", docs.Mappings.Version)
	// Other documents keep their defaults
	assert.NotEmpty(t, docs.Template.For(models.ScopeEmployee))

	_, err = LoadDocuments(dir, models.App("finance"))
	assert.Error(t, err)
}

func TestLoadDocuments_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := DocumentPath(dir, models.AppPayroll, models.DocumentTemplate)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("templates: ["), 0644))

	_, err := LoadDocuments(dir, models.AppPayroll)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestDocuments_SetMismatch(t *testing.T) {
	docs := DefaultDocuments(models.AppPayroll)
	assert.Error(t, docs.Set(models.DocumentTemplate, &MappingsDocument{}))
	require.NoError(t, docs.Set(models.DocumentColumnMappings, &MappingsDocument{Version: "9"}))
	assert.Equal(t, "9", docs.Get(models.DocumentColumnMappings).(*MappingsDocument).Version)
}
