package trademark

import (
	"encoding/gob"
	"fmt"
	"os"
)

func loadGob(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var recs []Record
	if err := gob.NewDecoder(f).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return recs, nil
}

// SaveGob writes one country's records to a gob file at path.
func SaveGob(recs []Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(recs); err != nil {
		f.Close()
		return fmt.Errorf("encode gob: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gob file: %w", err)
	}
	return nil
}
