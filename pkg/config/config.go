// Package config loads the analysis configuration from YAML, applies
// defaults and environment overrides, and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/logging"
	"github.com/dd0wney/cluso-asgraph/pkg/validation"
)

// ErrInvalid wraps every configuration validation failure
var ErrInvalid = errors.New("invalid configuration")

// Snapshot cache backends
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendS3     = "s3"
	BackendNone   = "none"
)

// MaxWorkers bounds the worker pool size
const MaxWorkers = 1024

// Config is the full configuration of an analysis run
type Config struct {
	DataDir     string       `yaml:"data_dir" validate:"required"`
	OutputDir   string       `yaml:"output_dir" validate:"required"`
	Workers     int          `yaml:"workers" validate:"gte=0,lte=1024"`
	LogLevel    string       `yaml:"log_level"`
	MetricsFile string       `yaml:"metrics_file"`
	Cache       CacheConfig  `yaml:"cache"`
	Report      ReportConfig `yaml:"report"`
	Build       BuildConfig  `yaml:"build"`
}

// CacheConfig selects the snapshot store. Dir is used by the file and
// badger backends and defaults to output_dir/snapshots, the bucket
// settings by s3; s3 credentials come from the standard AWS environment.
type CacheConfig struct {
	Backend  string `yaml:"backend" validate:"required,oneof=file badger s3 none"`
	Dir      string `yaml:"dir"`
	ReadOnly bool   `yaml:"read_only"`

	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
}

// ReportConfig controls the figure tables
type ReportConfig struct {
	FillMissingYears bool `yaml:"fill_missing_years"`
	Summary          bool `yaml:"summary"`
}

// BuildConfig controls graph construction
type BuildConfig struct {
	CollapsePrepending bool `yaml:"collapse_prepending"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		DataDir:   "data",
		OutputDir: "output",
		LogLevel:  "info",
		Cache: CacheConfig{
			Backend: BackendFile,
		},
		Report: ReportConfig{
			Summary: true,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies the
// LOG_LEVEL environment override and validates the result. An empty
// path yields the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv applies environment overrides
func (c *Config) ApplyEnv() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// Validate checks struct tags first, then the rules spanning fields
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	cv := validation.NewConfigValidator("config")
	cv.Custom("log_level", func() error {
		_, err := logging.LookupLevel(c.LogLevel)
		return err
	})
	cv.When(c.Cache.Backend == BackendS3, func(v *validation.ConfigValidator) {
		v.Required("cache.bucket", c.Cache.Bucket)
	})
	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// CacheDir returns the directory of the file and badger caches
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(c.OutputDir, "snapshots")
}

// EffectiveWorkers resolves a zero worker count to the number of CPUs
func (c *Config) EffectiveWorkers() int {
	return min(validation.DefaultOrInt(c.Workers, runtime.NumCPU()), MaxWorkers)
}

// Level returns the parsed log level
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// BuildOptions returns the graph builder options
func (c *Config) BuildOptions() asgraph.BuildOptions {
	return asgraph.BuildOptions{CollapsePrepending: c.Build.CollapsePrepending}
}
