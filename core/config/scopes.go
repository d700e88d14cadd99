package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scope describes one synchronization perimeter: where its source records
// come from and which feature handles them.
type Scope struct {
	// Name is the scope identifier used on the command line.
	Name string
	// Kind selects the handling feature ("user" or "axe").
	Kind string
	// Query is the built-in extraction query against the ERP.
	Query string
	// SQLFile is the per-scope override file name looked up in QueryDir.
	SQLFile string
	// TypeFilter keeps only source rows whose typ column matches. Axis
	// scopes share one extraction query and split on this value.
	TypeFilter string
	// AxeName is the French display name used to resolve the axis
	// identifier from the company's custom axes. Empty for static axes.
	AxeName string
	// AxeID is the static axis identifier, when the platform defines one.
	AxeID string
}

// DefaultScopes returns the built-in scope registry, in execution order.
// Users run first so axis values never reference missing people.
func DefaultScopes() []Scope {
	return []Scope{
		{
			Name:    "users",
			Kind:    "user",
			Query:   "SELECT * FROM iris_N2F_User",
			SQLFile: "get-agresso-n2f-users.sql",
		},
		{
			Name:       "projects",
			Kind:       "axe",
			Query:      "SELECT * FROM iris_N2F_CustomAxes",
			SQLFile:    "get-agresso-n2f-customaxes.sql",
			TypeFilter: "PROJECT",
			AxeID:      "projects",
		},
		{
			Name:       "plates",
			Kind:       "axe",
			Query:      "SELECT * FROM iris_N2F_CustomAxes",
			SQLFile:    "get-agresso-n2f-customaxes.sql",
			TypeFilter: "PLAQUE",
			AxeName:    "plaque",
		},
		{
			Name:       "subposts",
			Kind:       "axe",
			Query:      "SELECT * FROM iris_N2F_CustomAxes",
			SQLFile:    "get-agresso-n2f-customaxes.sql",
			TypeFilter: "SUBPOST",
			AxeName:    "subpost",
		},
	}
}

// ScopeNames lists the registry names plus the "all" pseudo-scope.
func ScopeNames() []string {
	names := make([]string, 0, len(DefaultScopes())+1)
	for _, s := range DefaultScopes() {
		names = append(names, s.Name)
	}
	return append(names, "all")
}

// SelectScopes resolves the requested scope names against the registry.
// "all" expands to every scope; unknown names are an error.
func SelectScopes(requested []string) ([]Scope, error) {
	registry := DefaultScopes()
	if len(requested) == 0 {
		return registry, nil
	}

	byName := make(map[string]Scope, len(registry))
	for _, s := range registry {
		byName[s.Name] = s
	}

	var selected []Scope
	seen := make(map[string]struct{})
	for _, name := range requested {
		if name == "all" {
			return registry, nil
		}
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown scope %q", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, s)
	}
	return selected, nil
}

// ScopeQuery returns the extraction query for a scope, preferring a
// per-scope SQL file in QueryDir over the built-in query.
func (c *Config) ScopeQuery(s Scope) (string, error) {
	if c.QueryDir == "" {
		return s.Query, nil
	}
	path := filepath.Join(c.QueryDir, s.SQLFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s.Query, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read scope query %s: %w", path, err)
	}
	return string(data), nil
}
