package trademark

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RamsisDev/Latip-Hackaton/pkg/similarity"
)

// Source tells a Store where its registers live. Dir is a directory of
// per-country registers; BundleFile is a JSON bundle. Either or both may be set.
type Source struct {
	Dir        string
	BundleFile string
}

// Store holds the current engine and swaps it wholesale on Reload, so a
// search never sees a half-loaded dataset.
type Store struct {
	mu        sync.RWMutex
	engine    *Engine
	source    Source
	labels    Labels
	threshold float64
	rounding  similarity.Rounding
}

// NewStore creates an empty store. Base labels are extended by any labels
// found in register manifests.
func NewStore(src Source, labels Labels, threshold float64, rounding similarity.Rounding) *Store {
	if labels == nil {
		labels = DefaultLabels()
	}
	s := &Store{
		source:    src,
		labels:    labels,
		threshold: threshold,
		rounding:  rounding,
	}
	s.engine = s.newEngine(NewDataset(nil), labels)
	return s
}

// Load reads every configured source and replaces the current dataset.
func (s *Store) Load() error {
	if s.source.Dir == "" && s.source.BundleFile == "" {
		return errors.New("no dataset source configured")
	}

	records := make(map[string][]Record)
	labels := s.labels

	if s.source.BundleFile != "" {
		ds, err := LoadJSONFile(s.source.BundleFile)
		if err != nil {
			return err
		}
		for _, code := range ds.Countries() {
			records[code] = append(records[code], ds.Records(code)...)
		}
	}
	if s.source.Dir != "" {
		ds, dirLabels, err := LoadDir(s.source.Dir)
		if err != nil {
			return err
		}
		for _, code := range ds.Countries() {
			records[code] = append(records[code], ds.Records(code)...)
		}
		labels = labels.Merge(dirLabels)
	}

	engine := s.newEngine(NewDataset(records), labels)

	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()
	return nil
}

// Reload reloads all registers from their sources (hot reload).
func (s *Store) Reload() error {
	if err := s.Load(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

func (s *Store) newEngine(ds *Dataset, labels Labels) *Engine {
	return NewEngine(ds, labels, WithThreshold(s.threshold), WithRounding(s.rounding))
}

// Engine returns the current engine snapshot.
func (s *Store) Engine() *Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Search runs query against the current snapshot.
func (s *Store) Search(query, region string) []Match {
	return s.Engine().Search(query, region)
}

// CountryInfo is the public summary of one loaded register.
type CountryInfo struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Records int    `json:"records"`
}

// Countries lists every country with records, sorted by code.
func (s *Store) Countries() []CountryInfo {
	e := s.Engine()
	codes := e.dataset.Countries()
	out := make([]CountryInfo, 0, len(codes))
	for _, code := range codes {
		out = append(out, CountryInfo{
			Code:    code,
			Label:   e.labels.Label(code),
			Records: len(e.dataset.Records(code)),
		})
	}
	return out
}

// CountryCount returns the number of loaded countries.
func (s *Store) CountryCount() int {
	return len(s.Engine().dataset.codes)
}

// TotalRecords returns the number of records across all countries.
func (s *Store) TotalRecords() int {
	return s.Engine().dataset.Len()
}
