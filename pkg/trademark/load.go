package trademark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var validate = validator.New()

func validateCode(code string) error {
	if err := validate.Var(strings.TrimSpace(code), "required,len=2,alpha"); err != nil {
		return fmt.Errorf("invalid country code %q: %w", code, err)
	}
	return nil
}

// ValidCode reports whether code is a two-letter country code.
func ValidCode(code string) bool {
	return validateCode(code) == nil
}

func validRecord(r *Record) bool {
	r.Name = strings.TrimSpace(r.Name)
	return validate.Struct(r) == nil
}

// rawRecord accepts both the Spanish keys of the bundled register export and
// their English equivalents.
type rawRecord struct {
	Nombre        string `json:"nombre"`
	PaisOrigen    string `json:"pais_origen"`
	FechaRegistro string `json:"fecha_registro"`
	Expediente    string `json:"expediente"`
	Titular       string `json:"titular"`
	Agente        string `json:"agente"`
	TipoSeccion   string `json:"tipo_seccion"`
	TextoSeccion  string `json:"texto_seccion"`

	Name             string `json:"name"`
	OriginCountry    string `json:"originCountry"`
	RegistrationDate string `json:"registrationDate"`
	FileNumber       string `json:"fileNumber"`
	Holder           string `json:"holder"`
	Agent            string `json:"agent"`
	SectionType      string `json:"sectionType"`
	SectionText      string `json:"sectionText"`
}

func (r rawRecord) record() Record {
	first := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return Record{
		Name:             first(r.Nombre, r.Name),
		OriginCountry:    first(r.PaisOrigen, r.OriginCountry),
		RegistrationDate: first(r.FechaRegistro, r.RegistrationDate),
		FileNumber:       first(r.Expediente, r.FileNumber),
		Holder:           first(r.Titular, r.Holder),
		Agent:            first(r.Agente, r.Agent),
		SectionType:      first(r.TipoSeccion, r.SectionType),
		SectionText:      first(r.TextoSeccion, r.SectionText),
	}
}

// ParseJSON decodes a register bundle, an object of country code to record
// array, into typed records. Records without a name are dropped and counted.
// Codes that differ only in case are merged in sorted key order.
func ParseJSON(r io.Reader) (map[string][]Record, int, error) {
	var raw map[string][]rawRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decode bundle: %w", err)
	}

	out := make(map[string][]Record, len(raw))
	var skipped int
	for _, code := range slices.Sorted(maps.Keys(raw)) {
		list := raw[code]
		if err := validateCode(code); err != nil {
			return nil, 0, err
		}
		recs := make([]Record, 0, len(list))
		for _, rr := range list {
			rec := rr.record()
			if !validRecord(&rec) {
				skipped++
				continue
			}
			recs = append(recs, rec)
		}
		key := canonicalCode(code)
		out[key] = append(out[key], recs...)
	}
	return out, skipped, nil
}

// LoadJSON reads a register bundle and returns it as a Dataset.
func LoadJSON(r io.Reader) (*Dataset, error) {
	records, skipped, err := ParseJSON(r)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.Warn("records without a name skipped", "skipped", skipped)
	}
	return NewDataset(records), nil
}

// LoadJSONFile is LoadJSON on a file path.
func LoadJSONFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	ds, err := LoadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", path, err)
	}
	return ds, nil
}

// LoadCountry reads dir/manifest.yaml and the records it points to. A
// data.gob next to the manifest takes priority over the declared CSV.
func LoadCountry(dir string) (*Manifest, []Record, error) {
	m, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, nil, err
	}

	gobPath := filepath.Join(dir, "data.gob")
	if _, err := os.Stat(gobPath); err == nil {
		recs, err := loadGob(gobPath)
		if err != nil {
			return nil, nil, fmt.Errorf("register %s: %w", m.ID, err)
		}
		return m, recs, nil
	}

	recs, err := loadCSV(filepath.Join(dir, m.DataFile), m)
	if err != nil {
		return nil, nil, fmt.Errorf("register %s: %w", m.ID, err)
	}
	return m, recs, nil
}

// LoadDir loads every subdirectory of root that holds a manifest.yaml.
// Labels declared in manifests are returned so callers can merge them.
func LoadDir(root string) (*Dataset, Labels, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("read datasets dir %s: %w", root, err)
	}

	records := make(map[string][]Record)
	labels := make(Labels)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "manifest.yaml")); err != nil {
			continue
		}
		m, recs, err := LoadCountry(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("load register %s: %w", entry.Name(), err)
		}
		records[m.Country] = append(records[m.Country], recs...)
		if m.Label != "" {
			labels[m.Country] = m.Label
		}
	}
	return NewDataset(records), labels, nil
}

func loadCSV(path string, m *Manifest) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if enc := m.Format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := m.Format.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	cols := m.Columns.withDefaults()
	idx := map[string]int{"name": 0}
	if m.Format.HasHeader {
		header, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		pos := make(map[string]int, len(header))
		for i, h := range header {
			pos[strings.TrimSpace(h)] = i
		}
		nameIdx, ok := pos[cols.Name]
		if !ok {
			return nil, fmt.Errorf("name column %q not found in header %v", cols.Name, header)
		}
		idx = map[string]int{"name": nameIdx}
		for key, col := range map[string]string{
			"origin": cols.OriginCountry, "date": cols.RegistrationDate, "file": cols.FileNumber,
			"holder": cols.Holder, "agent": cols.Agent, "stype": cols.SectionType, "stext": cols.SectionText,
		} {
			if i, ok := pos[col]; ok {
				idx[key] = i
			}
		}
	}

	field := func(row []string, key string) string {
		i, ok := idx[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var recs []Record
	var skipped int
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := Record{
			Name:             field(row, "name"),
			OriginCountry:    field(row, "origin"),
			RegistrationDate: field(row, "date"),
			FileNumber:       field(row, "file"),
			Holder:           field(row, "holder"),
			Agent:            field(row, "agent"),
			SectionType:      field(row, "stype"),
			SectionText:      field(row, "stext"),
		}
		if !validRecord(&rec) {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}

	if skipped > 0 {
		slog.Warn("rows without a trademark name skipped", "register", m.ID, "skipped", skipped)
	}
	return recs, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
