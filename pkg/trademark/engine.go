package trademark

import (
	"sort"

	"github.com/RamsisDev/Latip-Hackaton/pkg/similarity"
)

// DefaultThreshold is the minimum Dice score a candidate needs to be reported.
const DefaultThreshold = 0.30

// StatusUnknown is reported while the dataset carries no registration status.
const StatusUnknown = "N/A"

// Match is one ranked search hit.
type Match struct {
	Name              string `json:"name"`
	SimilarityPercent int    `json:"similarity_percent"`
	Country           string `json:"country"`
	Status            string `json:"status"`
	FileNumber        string `json:"file_number"`
}

// Engine ranks dataset records by name similarity. It holds no mutable state
// and may be shared across goroutines.
type Engine struct {
	dataset   *Dataset
	labels    Labels
	threshold float64
	rounding  similarity.Rounding
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets the minimum score (0..1) a candidate must reach.
func WithThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

// WithRounding sets how scores are converted to percentages.
func WithRounding(r similarity.Rounding) Option {
	return func(e *Engine) { e.rounding = r }
}

// NewEngine returns an Engine over ds. A nil labels table falls back to raw codes.
func NewEngine(ds *Dataset, labels Labels, opts ...Option) *Engine {
	e := &Engine{
		dataset:   ds,
		labels:    labels,
		threshold: DefaultThreshold,
		rounding:  similarity.RoundHalfUp,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Threshold returns the configured minimum score.
func (e *Engine) Threshold() float64 { return e.threshold }

// Dataset returns the dataset the engine searches.
func (e *Engine) Dataset() *Dataset { return e.dataset }

// Labels returns the engine's country label table.
func (e *Engine) Labels() Labels { return e.labels }

type scored struct {
	rec   *Record
	score float64
}

// Search scores every record of the selected region against query and returns
// those at or above the threshold, best first. Equal scores keep pool order.
// Region "global" (or "") searches all countries in sorted code order; an
// unknown region yields an empty result.
func (e *Engine) Search(query, region string) []Match {
	pool := e.pool(region)

	hits := make([]scored, 0, len(pool))
	for i := range pool {
		s := similarity.Dice(query, pool[i].Name)
		if s < e.threshold {
			continue
		}
		hits = append(hits, scored{rec: &pool[i], score: s})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = Match{
			Name:              h.rec.Name,
			SimilarityPercent: e.rounding.Percent(h.score),
			Country:           e.labels.Label(h.rec.Country),
			Status:            StatusUnknown,
			FileNumber:        h.rec.FileNumber,
		}
	}
	return out
}

func (e *Engine) pool(region string) []Record {
	if e.dataset == nil {
		return nil
	}
	if !isGlobal(region) {
		return e.dataset.Records(region)
	}
	all := make([]Record, 0, e.dataset.Len())
	for _, code := range e.dataset.codes {
		all = append(all, e.dataset.byCountry[code]...)
	}
	return all
}

// Search is a one-shot form of Engine.Search with explicit collaborators.
func Search(query, region string, ds *Dataset, labels Labels, threshold float64) []Match {
	return NewEngine(ds, labels, WithThreshold(threshold)).Search(query, region)
}
