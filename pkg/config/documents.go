package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hrmigrate/hrmigrate/pkg/mapping"
	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// DocumentVersion is written into documents that carry no version
const DocumentVersion = "1"

// TemplateDocument declares the output columns per scope
type TemplateDocument struct {
	Version   string                                  `json:"version" yaml:"version"`
	Templates map[models.Scope][]models.TemplateField `json:"templates" yaml:"templates"`
}

// For returns the template fields of a scope
func (d *TemplateDocument) For(scope models.Scope) []models.TemplateField {
	if d == nil {
		return nil
	}
	return d.Templates[scope]
}

// MappingsDocument is the ordered list of mapping rules of an app
type MappingsDocument struct {
	Version string               `json:"version" yaml:"version"`
	Rules   []models.MappingRule `json:"rules" yaml:"rules"`
}

// PicklistSource locates one reference table. Path is resolved against the
// configuration directory unless it is absolute or carries a URL scheme.
type PicklistSource struct {
	Name      string            `json:"name" yaml:"name"`
	KeyColumn string            `json:"key_column,omitempty" yaml:"key_column,omitempty"`
	Path      string            `json:"path" yaml:"path"`
	Codes     map[string]string `json:"codes,omitempty" yaml:"codes,omitempty"`
}

// PicklistsDocument lists the reference tables of an app
type PicklistsDocument struct {
	Version   string           `json:"version" yaml:"version"`
	Picklists []PicklistSource `json:"picklists" yaml:"picklists"`
}

// Documents is the full configuration of one app
type Documents struct {
	App       models.App         `json:"app"`
	Template  *TemplateDocument  `json:"template"`
	Mappings  *MappingsDocument  `json:"column_mappings"`
	Picklists *PicklistsDocument `json:"picklists"`
}

// Get returns the document of the given kind
func (d *Documents) Get(kind models.DocumentKind) any {
	switch kind {
	case models.DocumentTemplate:
		return d.Template
	case models.DocumentColumnMappings:
		return d.Mappings
	case models.DocumentPicklists:
		return d.Picklists
	}
	return nil
}

// Set replaces the document of the given kind
func (d *Documents) Set(kind models.DocumentKind, doc any) error {
	switch v := doc.(type) {
	case *TemplateDocument:
		if kind == models.DocumentTemplate {
			d.Template = v
			return nil
		}
	case *MappingsDocument:
		if kind == models.DocumentColumnMappings {
			d.Mappings = v
			return nil
		}
	case *PicklistsDocument:
		if kind == models.DocumentPicklists {
			d.Picklists = v
			return nil
		}
	}
	return fmt.Errorf("document %T does not match kind %s", doc, kind)
}

// DefaultDocuments returns the built-in configuration of an app
func DefaultDocuments(app models.App) *Documents {
	docs := &Documents{
		App: app,
		Picklists: &PicklistsDocument{
			Version: DocumentVersion,
			Picklists: []PicklistSource{
				{Name: "status_mapping.csv", Path: "picklists/status_mapping.csv"},
			},
		},
	}
	switch app {
	case models.AppEmployee:
		docs.Template = &TemplateDocument{Version: DocumentVersion, Templates: map[models.Scope][]models.TemplateField{
			models.ScopeEmployee: mapping.EmployeeTemplate(),
		}}
		docs.Mappings = &MappingsDocument{Version: DocumentVersion, Rules: mapping.DefaultEmployeeRules()}
	case models.AppPayroll:
		docs.Template = &TemplateDocument{Version: DocumentVersion, Templates: map[models.Scope][]models.TemplateField{
			models.ScopePayroll: mapping.PayrollTemplate(),
		}}
		docs.Mappings = &MappingsDocument{Version: DocumentVersion, Rules: mapping.DefaultPayrollRules()}
	case models.AppOrg:
		docs.Template = &TemplateDocument{Version: DocumentVersion, Templates: map[models.Scope][]models.TemplateField{
			models.ScopeLevel:       mapping.LevelTemplate(),
			models.ScopeAssociation: mapping.AssociationTemplate(),
		}}
		docs.Mappings = &MappingsDocument{Version: DocumentVersion, Rules: mapping.DefaultOrgRules()}
	}
	return docs
}

// DocumentPath returns where a document of app is stored below dir
func DocumentPath(dir string, app models.App, kind models.DocumentKind) string {
	return filepath.Join(dir, string(app), string(kind)+".yaml")
}

// LoadDocuments reads the documents of app from dir. A document without a
// file falls back to its built-in default.
func LoadDocuments(dir string, app models.App) (*Documents, error) {
	if !app.IsValid() {
		return nil, fmt.Errorf("unknown app %q", app)
	}
	docs := DefaultDocuments(app)
	for _, kind := range models.DocumentKinds {
		path := DocumentPath(dir, app, kind)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s document %s: %w", kind, path, err)
		}
		doc, err := ParseDocument(kind, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := docs.Set(kind, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// ParseDocument parses YAML (or JSON) data as a document of the given kind
func ParseDocument(kind models.DocumentKind, data []byte) (any, error) {
	switch kind {
	case models.DocumentTemplate:
		return ParseTemplate(data)
	case models.DocumentColumnMappings:
		return ParseMappings(data)
	case models.DocumentPicklists:
		return ParsePicklists(data)
	}
	return nil, fmt.Errorf("unknown document kind %q", kind)
}

// ParseTemplate parses a template document
func ParseTemplate(data []byte) (*TemplateDocument, error) {
	var doc TemplateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse template YAML: %w", err)
	}
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	for scope, fields := range doc.Templates {
		if !scope.IsValid() || scope == "" {
			return nil, models.MalformedRuleError(string(scope), "unknown template scope")
		}
		for _, f := range fields {
			if f.TargetField == "" {
				return nil, models.MalformedRuleError(string(scope), "template field without target_field")
			}
		}
	}
	return &doc, nil
}

// ParseMappings parses a column mappings document. Rules without a
// transformation default to None.
func ParseMappings(data []byte) (*MappingsDocument, error) {
	var doc MappingsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse column mappings YAML: %w", err)
	}
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	for i := range doc.Rules {
		r := &doc.Rules[i]
		if r.Transformation == "" {
			r.Transformation = models.TransformNone
		}
	}
	if err := mapping.ValidateAll(doc.Rules, nil); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParsePicklists parses a picklists document
func ParsePicklists(data []byte) (*PicklistsDocument, error) {
	var doc PicklistsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse picklists YAML: %w", err)
	}
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	for _, p := range doc.Picklists {
		if p.Name == "" || p.Path == "" {
			return nil, models.MalformedRuleError(p.Name, "picklist needs a name and a path")
		}
	}
	return &doc, nil
}

// MarshalDocument serializes a document to YAML
func MarshalDocument(doc any) ([]byte, error) {
	return yaml.Marshal(doc)
}

// WriteDocument writes a document of app below dir
func WriteDocument(dir string, app models.App, kind models.DocumentKind, doc any) error {
	data, err := MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", kind, err)
	}
	path := DocumentPath(dir, app, kind)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s document %s: %w", kind, path, err)
	}
	return nil
}
