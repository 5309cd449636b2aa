package trademark

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes one country's trademark register: where it came from
// and how to read its data file.
type Manifest struct {
	ID        string     `yaml:"id" json:"id"`
	Country   string     `yaml:"country" json:"country"`
	Label     string     `yaml:"label,omitempty" json:"label,omitempty"`
	Version   string     `yaml:"version" json:"version"`
	Source    string     `yaml:"source" json:"source"`
	SourceURL string     `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	License   string     `yaml:"license" json:"license"`
	DataFile  string     `yaml:"data_file" json:"data_file"`
	Format    FormatSpec `yaml:"format,omitempty" json:"-"`
	Columns   ColumnMap  `yaml:"columns,omitempty" json:"-"`
}

// FormatSpec describes the CSV layout of a data file.
type FormatSpec struct {
	Delimiter string `yaml:"delimiter,omitempty"`
	Encoding  string `yaml:"encoding,omitempty"`
	HasHeader bool   `yaml:"has_header"`
}

// ColumnMap names the CSV header column holding each record field.
// Unset entries use the field's snake_case name.
type ColumnMap struct {
	Name             string `yaml:"name,omitempty"`
	OriginCountry    string `yaml:"origin_country,omitempty"`
	RegistrationDate string `yaml:"registration_date,omitempty"`
	FileNumber       string `yaml:"file_number,omitempty"`
	Holder           string `yaml:"holder,omitempty"`
	Agent            string `yaml:"agent,omitempty"`
	SectionType      string `yaml:"section_type,omitempty"`
	SectionText      string `yaml:"section_text,omitempty"`
}

func (c ColumnMap) withDefaults() ColumnMap {
	def := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return ColumnMap{
		Name:             def(c.Name, "name"),
		OriginCountry:    def(c.OriginCountry, "origin_country"),
		RegistrationDate: def(c.RegistrationDate, "registration_date"),
		FileNumber:       def(c.FileNumber, "file_number"),
		Holder:           def(c.Holder, "holder"),
		Agent:            def(c.Agent, "agent"),
		SectionType:      def(c.SectionType, "section_type"),
		SectionText:      def(c.SectionText, "section_text"),
	}
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Country == "" {
		return nil, fmt.Errorf("manifest %s: missing country", path)
	}
	if err := validateCode(m.Country); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.Country = canonicalCode(m.Country)
	if m.ID == "" {
		m.ID = "marks-" + m.Country
	}
	if m.DataFile == "" {
		m.DataFile = "data.csv"
	}
	return &m, nil
}

// WriteManifest writes m as YAML to dir/manifest.yaml.
func WriteManifest(dir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "manifest.yaml"), data, 0o644)
}
