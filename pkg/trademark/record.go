// Package trademark holds the read-only trademark reference dataset and the
// ranking engine that searches it for names similar to a query.
package trademark

import (
	"maps"
	"slices"
	"sort"
	"strings"
)

// Record is one registered trademark.
type Record struct {
	Name             string `json:"name" validate:"required"`
	Country          string `json:"country"`
	OriginCountry    string `json:"originCountry,omitempty"`
	RegistrationDate string `json:"registrationDate,omitempty"`
	FileNumber       string `json:"fileNumber,omitempty"`
	Holder           string `json:"holder,omitempty"`
	Agent            string `json:"agent,omitempty"`
	SectionType      string `json:"sectionType,omitempty"`
	SectionText      string `json:"sectionText,omitempty"`
}

// Dataset maps a country code to its ordered trademark records.
// It is never mutated after construction and is safe for concurrent reads.
type Dataset struct {
	byCountry map[string][]Record
	codes     []string
}

// NewDataset builds a Dataset from per-country record lists. Country codes
// are upper-cased and every record is stamped with the code it is filed
// under. Keys that differ only in case are merged in sorted key order. The
// input map and slices are copied.
func NewDataset(records map[string][]Record) *Dataset {
	ds := &Dataset{byCountry: make(map[string][]Record, len(records))}
	for _, raw := range slices.Sorted(maps.Keys(records)) {
		recs := records[raw]
		code := canonicalCode(raw)
		if code == "" {
			continue
		}
		list := make([]Record, 0, len(ds.byCountry[code])+len(recs))
		list = append(list, ds.byCountry[code]...)
		for _, r := range recs {
			r.Country = code
			list = append(list, r)
		}
		ds.byCountry[code] = list
	}
	ds.codes = make([]string, 0, len(ds.byCountry))
	for code := range ds.byCountry {
		ds.codes = append(ds.codes, code)
	}
	sort.Strings(ds.codes)
	return ds
}

// Countries returns the country codes in sorted order.
func (d *Dataset) Countries() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.codes))
	copy(out, d.codes)
	return out
}

// Records returns the records filed under code, or nil if the code is absent.
// Callers must not modify the returned slice.
func (d *Dataset) Records(code string) []Record {
	if d == nil {
		return nil
	}
	return d.byCountry[canonicalCode(code)]
}

// Len returns the total number of records across all countries.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, recs := range d.byCountry {
		n += len(recs)
	}
	return n
}

func canonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
