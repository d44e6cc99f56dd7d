// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package formatters renders redaction results for output. Formatters
// register themselves in a registry keyed by name so the CLI and the web
// server share one lookup path.
package formatters

import (
	"fmt"
	"strings"

	"pii-redact/internal/pipeline"
)

// Options configures output rendering.
type Options struct {
	// Verbose includes per-span detail and the model explanation.
	Verbose bool

	// NoColor disables terminal colors.
	NoColor bool
}

// Formatter renders a pipeline result in one output format.
type Formatter interface {
	// Format renders result according to the formatter's output format.
	Format(result *pipeline.Result, options Options) (string, error)

	// Name returns the format name used to select it (e.g. "text").
	Name() string

	// FileExtension returns the recommended file extension.
	FileExtension() string
}

// Registry holds all registered formatters.
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates an empty formatter registry.
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[string]Formatter)}
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Name()] = f
}

// Get retrieves a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	f, ok := r.formatters[name]
	return f, ok
}

// List returns the registered formatter names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	return names
}

// Resolve returns the named formatter or an error listing what exists.
func (r *Registry) Resolve(name string) (Formatter, error) {
	if f, ok := r.Get(name); ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown output format %q (available: %s)", name, strings.Join(r.List(), ", "))
}
