package transform

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// ErrUnknownFunc marks a custom transformation name that was never registered
var ErrUnknownFunc = errors.New("unknown custom function")

// Func is a vetted custom transformation. It receives the primary value and
// the row-aligned secondary value.
type Func func(value, secondary string) (string, error)

var funcName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry holds named custom transformations. Administrators reference them
// by name from mapping rules; no rule text is ever evaluated as code.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds a function under name. Names are lower snake case and may
// only be registered once.
func (r *Registry) Register(name string, fn Func) error {
	if !funcName.MatchString(name) {
		return fmt.Errorf("invalid custom function name %q", name)
	}
	if fn == nil {
		return fmt.Errorf("custom function %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("custom function %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// MustRegister is Register for package initialization
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns the function registered under name
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names lists registered functions in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default is the registry used when a Config names none
var Default = NewRegistry()

func init() {
	Default.MustRegister("extract_first_word", func(value, _ string) (string, error) {
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return value, nil
		}
		return fields[0], nil
	})
	Default.MustRegister("strip_leading_zeros", func(value, _ string) (string, error) {
		trimmed := strings.TrimLeft(strings.TrimSpace(value), "0")
		if trimmed == "" && strings.TrimSpace(value) != "" {
			return "0", nil
		}
		return trimmed, nil
	})
	Default.MustRegister("german_date", func(value, _ string) (string, error) {
		s := strings.TrimSpace(value)
		if s == "" || s == "00.00.0000" {
			return "", nil
		}
		if t, ok := parseDotted(s); ok {
			return t.Format("2006-01-02"), nil
		}
		return value, nil
	})
	Default.MustRegister("initials", func(value, secondary string) (string, error) {
		var b strings.Builder
		for _, part := range strings.Fields(value + " " + secondary) {
			r, _ := utf8.DecodeRuneInString(part)
			b.WriteRune(unicode.ToUpper(r))
		}
		return b.String(), nil
	})
	Default.MustRegister("email_domain", func(value, _ string) (string, error) {
		at := strings.LastIndexByte(value, '@')
		if at < 0 {
			return "", nil
		}
		return strings.ToLower(value[at+1:]), nil
	})
}
