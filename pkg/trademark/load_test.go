package trademark

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestRegister writes a manifest + data file for one country under root.
func writeTestRegister(t *testing.T, root, code, manifestExtra, data string) string {
	t.Helper()
	dir := filepath.Join(root, strings.ToLower(code))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `id: marks-` + strings.ToLower(code) + `
country: ` + code + `
version: "2025-01"
source: unit test
data_file: data.csv
format:
  delimiter: ";"
  has_header: true
` + manifestExtra
	if err := os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestParseJSON(t *testing.T) {
	bundle := `{
  "EC": [
    {"nombre": "Alpha", "expediente": "SENADI-2020-1", "titular": "Alpha S.A.", "fecha_registro": "2020-01-02"},
    {"nombre": "   "},
    {"name": "Beta", "fileNumber": "SENADI-2021-9"}
  ],
  "pe": [{"nombre": "Delto", "pais_origen": "CL"}]
}`
	records, skipped, err := ParseJSON(strings.NewReader(bundle))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	ec := records["EC"]
	if len(ec) != 2 {
		t.Fatalf("EC records = %d, want 2", len(ec))
	}
	if ec[0].Name != "Alpha" || ec[0].FileNumber != "SENADI-2020-1" || ec[0].Holder != "Alpha S.A." {
		t.Errorf("EC[0] = %+v", ec[0])
	}
	if ec[1].Name != "Beta" || ec[1].FileNumber != "SENADI-2021-9" {
		t.Errorf("EC[1] = %+v", ec[1])
	}
	pe := records["PE"]
	if len(pe) != 1 || pe[0].OriginCountry != "CL" {
		t.Errorf("PE = %+v, want one record with origin CL", pe)
	}
}

func TestParseJSON_CaseDuplicateCodes(t *testing.T) {
	bundle := `{"ec": [{"nombre": "Alpha"}], "EC": [{"nombre": "Beta"}, {"nombre": ""}]}`
	for i := 0; i < 50; i++ {
		records, skipped, err := ParseJSON(strings.NewReader(bundle))
		if err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if skipped != 1 {
			t.Errorf("skipped = %d, want 1", skipped)
		}
		ec := records["EC"]
		if len(ec) != 2 || ec[0].Name != "Beta" || ec[1].Name != "Alpha" {
			t.Fatalf("run %d: EC = %+v, want Beta then Alpha", i, ec)
		}
		if _, ok := records["ec"]; ok {
			t.Fatal("lower-case key must be merged into EC")
		}
	}
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"malformed", `{"EC": [`},
		{"not an object", `[1, 2]`},
		{"bad code", `{"ECU": [{"nombre": "Alpha"}]}`},
		{"reserved global", `{"global": [{"nombre": "Alpha"}]}`},
	}
	for _, tt := range tests {
		if _, _, err := ParseJSON(strings.NewReader(tt.input)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marcas.json")
	os.WriteFile(path, []byte(`{"EC": [{"nombre": "Alpha"}], "PE": [{"nombre": "Delto"}]}`), 0o644)

	ds, err := LoadJSONFile(path)
	if err != nil {
		t.Fatalf("LoadJSONFile: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len = %d, want 2", ds.Len())
	}
	if _, err := LoadJSONFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing bundle")
	}
}

func TestLoadCountry_CSV(t *testing.T) {
	dir := writeTestRegister(t, t.TempDir(), "CO", `columns:
  name: marca
  file_number: expediente
  holder: titular
`, "marca;expediente;titular\nCafé Sol;CO-1;Sol SAS\n;CO-2;nobody\nLuna;CO-3;Luna Ltda\n")

	m, recs, err := LoadCountry(dir)
	if err != nil {
		t.Fatalf("LoadCountry: %v", err)
	}
	if m.Country != "CO" {
		t.Errorf("Country = %q, want CO", m.Country)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2 (empty name skipped)", len(recs))
	}
	if recs[0].Name != "Café Sol" || recs[0].FileNumber != "CO-1" || recs[0].Holder != "Sol SAS" {
		t.Errorf("recs[0] = %+v", recs[0])
	}
}

func TestLoadCountry_MissingNameColumn(t *testing.T) {
	dir := writeTestRegister(t, t.TempDir(), "CO", "", "marca;expediente\nLuna;CO-3\n")
	if _, _, err := LoadCountry(dir); err == nil {
		t.Error("expected error for missing name column")
	}
}

func TestLoadCountry_Latin1(t *testing.T) {
	dir := writeTestRegister(t, t.TempDir(), "AR", "", "")
	manifest := `country: AR
data_file: data.csv
format:
  delimiter: ";"
  encoding: iso-8859-1
  has_header: false
`
	os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644)
	os.WriteFile(filepath.Join(dir, "data.csv"), []byte("Caf\xe9 Porte\xf1o\n"), 0o644)

	m, recs, err := LoadCountry(dir)
	if err != nil {
		t.Fatalf("LoadCountry: %v", err)
	}
	if m.ID != "marks-AR" {
		t.Errorf("ID = %q, want default marks-AR", m.ID)
	}
	if len(recs) != 1 || recs[0].Name != "Café Porteño" {
		t.Errorf("records = %+v, want Café Porteño", recs)
	}
}

func TestLoadCountry_PrefersGob(t *testing.T) {
	dir := writeTestRegister(t, t.TempDir(), "MX", "", "name\nFromCSV\n")
	if err := SaveGob([]Record{{Name: "FromGob", FileNumber: "MX-9"}}, filepath.Join(dir, "data.gob")); err != nil {
		t.Fatalf("SaveGob: %v", err)
	}

	_, recs, err := LoadCountry(dir)
	if err != nil {
		t.Fatalf("LoadCountry: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "FromGob" || recs[0].FileNumber != "MX-9" {
		t.Errorf("records = %+v, want gob data", recs)
	}
}

func TestSaveGob_WriteErrors(t *testing.T) {
	recs := []Record{{Name: "Alpha"}}
	if err := SaveGob(recs, filepath.Join(t.TempDir(), "missing", "data.gob")); err == nil {
		t.Error("expected error for a missing directory")
	}
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full")
	}
	if err := SaveGob(recs, "/dev/full"); err == nil {
		t.Error("expected error writing to a full device")
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"nocountry.yaml": "id: x\n",
		"badcode.yaml":   "country: Mexico\n",
		"broken.yaml":    "country: [\n",
	} {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte(body), 0o644)
		if _, err := LoadManifest(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWriteManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{ID: "marks-pe", Country: "PE", Label: "Perú", Source: "INDECOPI", DataFile: "data.gob"}
	if err := WriteManifest(dir, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	got, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if got.ID != "marks-pe" || got.Label != "Perú" || got.DataFile != "data.gob" {
		t.Errorf("manifest = %+v", got)
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeTestRegister(t, root, "EC", "label: República del Ecuador\n", "name;file_number\nAlpha;EC-1\n")
	writeTestRegister(t, root, "PE", "", "name;file_number\nDelto;PE-1\nDelta;PE-2\n")
	os.MkdirAll(filepath.Join(root, "_download"), 0o755)
	os.WriteFile(filepath.Join(root, "README"), []byte("not a register"), 0o644)

	ds, labels, err := LoadDir(root)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("Len = %d, want 3", ds.Len())
	}
	if labels["EC"] != "República del Ecuador" {
		t.Errorf("EC label = %q", labels["EC"])
	}
	if _, ok := labels["PE"]; ok {
		t.Error("PE declared no label")
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
