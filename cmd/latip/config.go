package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RamsisDev/Latip-Hackaton/pkg/similarity"
	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr          string            `yaml:"addr"           validate:"required"`
	DatasetsDir   string            `yaml:"datasets_dir"`
	DatasetFile   string            `yaml:"dataset_file"`
	AccountsDB    string            `yaml:"accounts_db"`
	SourcesDB     string            `yaml:"sources_db"`
	CheckInterval time.Duration     `yaml:"check_interval" validate:"gte=0"`
	LogLevel      string            `yaml:"log_level"      validate:"oneof=debug info warn error"`
	Labels        map[string]string `yaml:"labels"         validate:"dive,keys,required,endkeys,required"`
	Search        searchConfig      `yaml:"search"`
	Accounts      accountsConfig    `yaml:"accounts"`
	QUIC          quicConfig        `yaml:"quic"`
}

type searchConfig struct {
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`
	Rounding  string  `yaml:"rounding"  validate:"oneof=half_up half_even"`
	Cost      int     `yaml:"cost"      validate:"gte=1"`
}

type accountsConfig struct {
	StartingTokens int `yaml:"starting_tokens" validate:"gte=0"`
}

type quicConfig struct {
	Enabled  bool     `yaml:"enabled"`
	CertFile string   `yaml:"cert_file" validate:"required_with=KeyFile"`
	KeyFile  string   `yaml:"key_file"  validate:"required_with=CertFile"`
	Hosts    []string `yaml:"hosts"`
}

func defaultConfig() config {
	return config{
		Addr:          ":8080",
		DatasetsDir:   "datasets",
		AccountsDB:    "accounts.db",
		CheckInterval: 24 * time.Hour,
		LogLevel:      "info",
		Search: searchConfig{
			Threshold: trademark.DefaultThreshold,
			Rounding:  similarity.RoundHalfUp.String(),
			Cost:      1,
		},
		Accounts: accountsConfig{StartingTokens: 5},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := validator.New().Struct(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) rounding() similarity.Rounding {
	r, _ := similarity.ParseRounding(c.Search.Rounding)
	return r
}

// sourcesDB defaults to sources.db inside the datasets directory.
func (c config) sourcesDB() string {
	if c.SourcesDB != "" {
		return c.SourcesDB
	}
	return filepath.Join(c.DatasetsDir, "sources.db")
}

// datasetSource uses the datasets directory when it exists or when no
// bundle file is configured, so a missing directory is reported at load.
func (c config) datasetSource() trademark.Source {
	src := trademark.Source{BundleFile: c.DatasetFile}
	if c.DatasetsDir != "" {
		if _, err := os.Stat(c.DatasetsDir); err == nil || c.DatasetFile == "" {
			src.Dir = c.DatasetsDir
		}
	}
	return src
}

func (c config) labels() trademark.Labels {
	return trademark.DefaultLabels().Merge(c.Labels)
}

func (c config) newStore() *trademark.Store {
	return trademark.NewStore(c.datasetSource(), c.labels(), c.Search.Threshold, c.rounding())
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
