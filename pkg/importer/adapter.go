// Package importer fetches public trademark registers and writes them in the
// dataset directory layout: one <code>/manifest.yaml + data.gob per country.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter turns one upstream source into per-country datasets.
type Adapter interface {
	// ID is the unique adapter name (e.g. "latip-bundle").
	ID() string
	// Format is the upstream file format ("json", "csv").
	Format() string
	Description() string
	// DefaultURL seeds the sources database.
	DefaultURL() string
	License() string
	// Import fetches sourceURL (http(s), file:// or a local path) and writes
	// one dataset directory per country under outputDir.
	Import(ctx context.Context, sourceURL, outputDir string) (*Report, error)
}

// Report summarises an import.
type Report struct {
	Countries map[string]int // code -> records written
	Skipped   int            // rows rejected by validation
}

// Total is the number of records written across all countries.
func (r *Report) Total() int {
	var n int
	for _, c := range r.Countries {
		n += c
	}
	return n
}

// Codes returns the imported country codes in sorted order.
func (r *Report) Codes() []string {
	codes := make([]string, 0, len(r.Countries))
	for c := range r.Countries {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
