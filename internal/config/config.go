package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/dusk-indust/traitgen/internal/rules"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultCount             = 10
	DefaultFramesRequired    = 1
	DefaultBatchWidth        = 50
	DefaultAttemptMultiplier = 10
	DefaultAssetsDir         = "assets"
	DefaultOutputDir         = "output"
)

// FileNames are the project file names Load looks for, in order.
var FileNames = []string{"traitgen.yml", "traitgen.yaml"}

// ProjectConfig holds project-level settings loaded from traitgen.yml.
type ProjectConfig struct {
	AssetsDir         string       `yaml:"assetsDir,omitempty"`
	OutputDir         string       `yaml:"outputDir,omitempty"`
	Count             int          `yaml:"count,omitempty"`
	FramesRequired    int          `yaml:"framesRequired,omitempty"`
	BatchWidth        int          `yaml:"batchWidth,omitempty"`
	AttemptMultiplier int          `yaml:"attemptMultiplier,omitempty"`
	Verbose           bool         `yaml:"verbose,omitempty"`
	Rules             rules.Config `yaml:"rules"`

	// baseDir is the project directory; default asset and output
	// directories are resolved against it.
	baseDir string
}

// envOverrides mirrors the settings that may be overridden from the
// environment. Unset variables leave the pointers nil.
type envOverrides struct {
	AssetsDir      *string `env:"TRAITGEN_ASSETS_DIR"`
	OutputDir      *string `env:"TRAITGEN_OUTPUT_DIR"`
	Count          *int    `env:"TRAITGEN_COUNT"`
	FramesRequired *int    `env:"TRAITGEN_FRAMES_REQUIRED"`
	BatchWidth     *int    `env:"TRAITGEN_BATCH_WIDTH"`
	Verbose        *bool   `env:"TRAITGEN_VERBOSE"`
}

// Load attempts to read traitgen.yml or traitgen.yaml from the given
// directory. Returns a zero-value config rooted at dir (not an error) if no
// config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		cfg, err := LoadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return &ProjectConfig{baseDir: dir}, nil
}

// LoadFile reads one project file. Relative assetsDir and outputDir are
// resolved against the file's directory.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	base := filepath.Dir(path)
	cfg.baseDir = base
	cfg.AssetsDir = resolve(base, cfg.AssetsDir)
	cfg.OutputDir = resolve(base, cfg.OutputDir)
	return &cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ApplyEnv overlays TRAITGEN_* variables onto c. A nil environ reads the
// process environment.
func (c *ProjectConfig) ApplyEnv(environ map[string]string) error {
	var ov envOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&ov, opts); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	if ov.AssetsDir != nil {
		c.AssetsDir = *ov.AssetsDir
	}
	if ov.OutputDir != nil {
		c.OutputDir = *ov.OutputDir
	}
	if ov.Count != nil {
		c.Count = *ov.Count
	}
	if ov.FramesRequired != nil {
		c.FramesRequired = *ov.FramesRequired
	}
	if ov.BatchWidth != nil {
		c.BatchWidth = *ov.BatchWidth
	}
	if ov.Verbose != nil {
		c.Verbose = *ov.Verbose
	}
	return nil
}

// ApplyDefaults fills unset fields. Zero and negative counts fall back to
// the default. Default directories sit next to the project file.
func (c *ProjectConfig) ApplyDefaults() {
	if c.AssetsDir == "" {
		c.AssetsDir = resolve(c.baseDir, DefaultAssetsDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = resolve(c.baseDir, DefaultOutputDir)
	}
	if c.Count <= 0 {
		c.Count = DefaultCount
	}
	if c.FramesRequired <= 0 {
		c.FramesRequired = DefaultFramesRequired
	}
	if c.BatchWidth <= 0 {
		c.BatchWidth = DefaultBatchWidth
	}
	if c.AttemptMultiplier <= 0 {
		c.AttemptMultiplier = DefaultAttemptMultiplier
	}
}
