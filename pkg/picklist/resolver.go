// Package picklist resolves raw extract codes to display labels through small
// reference tables.
package picklist

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/hrmigrate/hrmigrate/pkg/ingest"
	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// StatusPicklist is the conventional status reference table
const StatusPicklist = "status_mapping.csv"

// StatusCodes translates raw SAP status codes to the short codes keyed in
// the status picklist
var StatusCodes = map[string]string{
	"1": "ACT",
	"2": "INA",
	"3": "PND",
	"0": "DEL",
}

// Resolver holds named picklists. Tables are loaded up front and only read
// during lookups, so one resolver may serve concurrent mapping runs.
type Resolver struct {
	mu       sync.RWMutex
	lists    map[string]*models.Picklist
	codeMaps map[string]map[string]string
}

// NewResolver creates a resolver with the status code indirection installed
func NewResolver() *Resolver {
	r := &Resolver{
		lists:    make(map[string]*models.Picklist),
		codeMaps: make(map[string]map[string]string),
	}
	r.SetCodeMap(StatusPicklist, StatusCodes)
	return r
}

// canonical strips the .csv suffix so "status_mapping" and
// "status_mapping.csv" name the same picklist
func canonical(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".csv")
}

// Add registers or replaces a picklist
func (r *Resolver) Add(p *models.Picklist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[canonical(p.Name)] = p
}

// LoadCSV parses a delimited reference table and registers it under name
func (r *Resolver) LoadCSV(name string, rd io.Reader) (*models.Picklist, error) {
	res, err := ingest.Read(rd, name, ingest.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to load picklist %s: %w", name, err)
	}
	return r.Register(name, "", res.Table)
}

// Register adds a parsed table as a picklist keyed on keyColumn, or on the
// default key column when keyColumn is empty
func (r *Resolver) Register(name, keyColumn string, table *models.Table) (*models.Picklist, error) {
	p := &models.Picklist{Name: name, KeyColumn: keyColumn, Table: table}
	if !table.HasColumn(p.Key()) {
		return nil, models.MissingColumnError(name, p.Key())
	}
	r.Add(p)
	return p, nil
}

// SetCodeMap installs a raw-code to key-code translation applied before
// rows of the named picklist are matched
func (r *Resolver) SetCodeMap(name string, codes map[string]string) {
	cp := make(map[string]string, len(codes))
	for k, v := range codes {
		cp[k] = v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codeMaps[canonical(name)] = cp
}

// Get returns the named picklist
func (r *Resolver) Get(name string) (*models.Picklist, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.lists[canonical(name)]
	return p, ok
}

// Names lists the registered picklists in sorted order
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.lists))
	for _, p := range r.lists {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves code through the named picklist. An unknown picklist or
// unmatched code yields def. A matched row returns column when the picklist
// has it, otherwise the status_label column.
func (r *Resolver) Lookup(code, name, column, def string) string {
	r.mu.RLock()
	p, ok := r.lists[canonical(name)]
	codes := r.codeMaps[canonical(name)]
	r.mu.RUnlock()
	if !ok || p.Table == nil {
		return def
	}

	key := models.NormalizeID(code)
	if mapped, ok := codes[key]; ok {
		key = mapped
	}

	keyCol := p.Key()
	for _, row := range p.Table.Rows {
		if strings.TrimSpace(row[keyCol]) != key {
			continue
		}
		if column != "" && p.Table.HasColumn(column) {
			return row[column]
		}
		if p.Table.HasColumn(models.DefaultPicklistLabelColumn) {
			return row[models.DefaultPicklistLabelColumn]
		}
		return def
	}
	return def
}
