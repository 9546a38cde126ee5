// Package output provides formatters for displaying levelzap run reports and
// journal listings in various output formats (plain, table, json, yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// Result contains the complete output data for formatting. Exactly one of
// Report, Analysis, Logs, or Validity is populated per invocation, selected
// by Mode.
type Result struct {
	// Mode names the operation: flatten, revert, cleanup, analyze, logs,
	// or verify.
	Mode string `json:"mode" yaml:"mode"`

	// Root is the target directory the operation ran against.
	Root string `json:"root" yaml:"root"`

	// DryRun indicates a simulated run.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// JournalID identifies the journal a run persisted, when it did.
	JournalID string `json:"journal_id,omitempty" yaml:"journal_id,omitempty"`

	// Report holds the flatten/revert/cleanup run summary.
	Report *types.Report `json:"report,omitempty" yaml:"report,omitempty"`

	// Analysis holds the read-only size/count totals.
	Analysis *types.Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// Logs holds journal summaries for listing.
	Logs []journal.Summary `json:"logs,omitempty" yaml:"logs,omitempty"`

	// Validity holds a journal verification report.
	Validity *journal.ValidityReport `json:"validity,omitempty" yaml:"validity,omitempty"`
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns the formatter names registered in the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
