package trademark

import (
	"sync"
	"testing"

	"github.com/RamsisDev/Latip-Hackaton/pkg/similarity"
)

func names(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestSearch_ThresholdFiltering(t *testing.T) {
	ds := NewDataset(map[string][]Record{
		"EC": {{Name: "Alpha", FileNumber: "EC-001"}, {Name: "Zzz", FileNumber: "EC-002"}},
	})

	got := Search("Alpha", "EC", ds, DefaultLabels(), 0.3)
	if len(got) != 1 {
		t.Fatalf("matches = %v, want only Alpha", names(got))
	}
	m := got[0]
	if m.Name != "Alpha" || m.SimilarityPercent != 100 {
		t.Errorf("match = %+v, want Alpha at 100%%", m)
	}
	if m.Country != "Ecuador" {
		t.Errorf("Country = %q, want Ecuador", m.Country)
	}
	if m.Status != StatusUnknown {
		t.Errorf("Status = %q, want %q", m.Status, StatusUnknown)
	}
	if m.FileNumber != "EC-001" {
		t.Errorf("FileNumber = %q, want EC-001", m.FileNumber)
	}
}

func TestSearch_GlobalAggregation(t *testing.T) {
	ds := NewDataset(map[string][]Record{
		"PE": {{Name: "Delto"}},
		"EC": {{Name: "Delta"}},
	})
	e := NewEngine(ds, DefaultLabels())

	for _, region := range []string{"global", "GLOBAL", ""} {
		got := e.Search("Delta", region)
		if len(got) != 2 {
			t.Fatalf("region %q: matches = %v, want 2", region, names(got))
		}
		if got[0].Name != "Delta" || got[0].Country != "Ecuador" || got[0].SimilarityPercent != 100 {
			t.Errorf("region %q: first = %+v, want Delta/Ecuador/100", region, got[0])
		}
		if got[1].Name != "Delto" || got[1].Country != "Peru" || got[1].SimilarityPercent != 75 {
			t.Errorf("region %q: second = %+v, want Delto/Peru/75", region, got[1])
		}
	}
}

func TestSearch_StableTies(t *testing.T) {
	ds := NewDataset(map[string][]Record{
		"MX": {{Name: "Alphc"}, {Name: "Alpha"}, {Name: "Alphb"}},
		"AR": {{Name: "Alphd"}},
	})
	e := NewEngine(ds, nil)

	// Alphb, Alphc and Alphd all share three of four bigrams with Alpha.
	got := names(e.Search("Alpha", "global"))
	want := []string{"Alpha", "Alphd", "Alphc", "Alphb"}
	if len(got) != len(want) {
		t.Fatalf("matches = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("matches = %v, want %v", got, want)
		}
	}

	got = names(e.Search("Alpha", "MX"))
	want = []string{"Alpha", "Alphc", "Alphb"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MX matches = %v, want %v", got, want)
		}
	}
}

func TestSearch_UnknownRegion(t *testing.T) {
	ds := NewDataset(map[string][]Record{"EC": {{Name: "Alpha"}}})
	got := NewEngine(ds, DefaultLabels()).Search("Alpha", "ZZ")
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("matches = %v, want none", names(got))
	}
}

func TestSearch_RegionCaseInsensitive(t *testing.T) {
	ds := NewDataset(map[string][]Record{"ec": {{Name: "Alpha"}}})
	got := NewEngine(ds, DefaultLabels()).Search("alpha", " ec ")
	if len(got) != 1 || got[0].Country != "Ecuador" {
		t.Errorf("matches = %+v, want Alpha in Ecuador", got)
	}
}

func TestSearch_EmptyInputs(t *testing.T) {
	ds := NewDataset(map[string][]Record{"EC": {{Name: "Alpha"}, {Name: "Beta"}}})
	e := NewEngine(ds, DefaultLabels())

	for _, q := range []string{"", "   ", "\t"} {
		if got := e.Search(q, "global"); len(got) != 0 {
			t.Errorf("Search(%q) = %v, want none", q, names(got))
		}
	}
	if got := NewEngine(NewDataset(nil), nil).Search("Alpha", "global"); len(got) != 0 {
		t.Errorf("empty dataset matches = %v, want none", names(got))
	}
	if got := NewEngine(nil, nil).Search("Alpha", "EC"); len(got) != 0 {
		t.Errorf("nil dataset matches = %v, want none", names(got))
	}
}

func TestSearch_LabelFallback(t *testing.T) {
	ds := NewDataset(map[string][]Record{"XK": {{Name: "Kosovar"}}})
	got := NewEngine(ds, DefaultLabels()).Search("Kosovar", "XK")
	if len(got) != 1 || got[0].Country != "XK" {
		t.Errorf("matches = %+v, want raw code XK as country", got)
	}
}

func TestSearch_ThresholdAndRoundingOptions(t *testing.T) {
	// "Alpha" vs "Alfa": al only shared -> 2*1/(4+3) = 0.2857 -> 29%.
	ds := NewDataset(map[string][]Record{"CL": {{Name: "Alfa"}}})

	if got := NewEngine(ds, nil).Search("Alpha", "CL"); len(got) != 0 {
		t.Errorf("default threshold matches = %v, want none", names(got))
	}
	got := NewEngine(ds, nil, WithThreshold(0.25)).Search("Alpha", "CL")
	if len(got) != 1 || got[0].SimilarityPercent != 29 {
		t.Errorf("matches = %+v, want Alfa at 29%%", got)
	}

	// abcdefghi and abzzzzzzz have eight bigrams each and share only "ab",
	// so the score is 2/16 = 0.125, an exact half percent.
	half := NewDataset(map[string][]Record{"CL": {{Name: "abcdefghi"}}})
	up := NewEngine(half, nil, WithThreshold(0.1), WithRounding(similarity.RoundHalfUp)).Search("abzzzzzzz", "CL")
	even := NewEngine(half, nil, WithThreshold(0.1), WithRounding(similarity.RoundHalfEven)).Search("abzzzzzzz", "CL")
	if len(up) != 1 || up[0].SimilarityPercent != 13 {
		t.Errorf("half_up = %+v, want 13%%", up)
	}
	if len(even) != 1 || even[0].SimilarityPercent != 12 {
		t.Errorf("half_even = %+v, want 12%%", even)
	}
}

func TestSearch_ConcurrentReaders(t *testing.T) {
	ds := NewDataset(map[string][]Record{
		"BR": {{Name: "TechFlow Solutions"}, {Name: "TechFlex Corp"}},
		"MX": {{Name: "TekFlo Systems"}},
	})
	e := NewEngine(ds, DefaultLabels())
	want := names(e.Search("TechFlow", "global"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := names(e.Search("TechFlow", "global"))
			if len(got) != len(want) {
				t.Errorf("concurrent search = %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestDataset(t *testing.T) {
	ds := NewDataset(map[string][]Record{
		"pe": {{Name: "A"}},
		"AR": {{Name: "B"}, {Name: "C"}},
		"  ": {{Name: "dropped"}},
	})
	codes := ds.Countries()
	if len(codes) != 2 || codes[0] != "AR" || codes[1] != "PE" {
		t.Errorf("Countries = %v, want [AR PE]", codes)
	}
	if ds.Len() != 3 {
		t.Errorf("Len = %d, want 3", ds.Len())
	}
	if recs := ds.Records("pe"); len(recs) != 1 || recs[0].Country != "PE" {
		t.Errorf("Records(pe) = %+v, want one record stamped PE", recs)
	}
}

func TestDataset_CaseDuplicateKeys(t *testing.T) {
	records := map[string][]Record{
		"ec": {{Name: "Alphb", FileNumber: "ec-1"}},
		"EC": {{Name: "Alphc", FileNumber: "EC-1"}},
	}
	for i := 0; i < 100; i++ {
		ds := NewDataset(records)
		if got := ds.Records("EC"); len(got) != 2 || got[0].FileNumber != "EC-1" || got[1].FileNumber != "ec-1" {
			t.Fatalf("run %d: Records(EC) = %+v, want EC-1 then ec-1", i, got)
		}
		if got := names(Search("Alpha", "EC", ds, nil, DefaultThreshold)); len(got) != 2 || got[0] != "Alphc" || got[1] != "Alphb" {
			t.Fatalf("run %d: Search = %v, want [Alphc Alphb]", i, got)
		}
	}
}
