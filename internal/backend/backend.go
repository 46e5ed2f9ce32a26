// Package backend provides a uniform interface over text-generation
// providers, per-provider health tracking, and an ordered fallback chain.
package backend

import (
	"context"
)

// Reply is a provider response parsed and validated against a Schema.
type Reply struct {
	Backend string
	Fields  map[string]interface{}
}

// Number returns a numeric field, or 0 if absent.
func (r *Reply) Number(name string) float64 {
	if v, ok := r.Fields[name].(float64); ok {
		return v
	}
	return 0
}

// String returns a string field, or "" if absent.
func (r *Reply) String(name string) string {
	if v, ok := r.Fields[name].(string); ok {
		return v
	}
	return ""
}

// Strings returns a string-list field, or nil if absent.
func (r *Reply) Strings(name string) []string {
	if v, ok := r.Fields[name].([]string); ok {
		return v
	}
	return nil
}

// Adapter is a single inference provider. Invoke requests output in the
// schema's shape and returns a validated reply or a *CallError.
type Adapter interface {
	Name() string
	Invoke(ctx context.Context, prompt string, schema *Schema) (*Reply, error)
}

// Runner is what agents call: the fallback chain, or a stub in tests.
type Runner interface {
	Run(ctx context.Context, prompt string, schema *Schema) (*Reply, error)
}
