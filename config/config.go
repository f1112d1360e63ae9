// Package config loads the yaml configuration and applies environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Data      DataConfig      `yaml:"data"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Training  TrainingConfig  `yaml:"training"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
}

type DataConfig struct {
	Path string `yaml:"path"`
}

type ArtifactsConfig struct {
	Dir         string `yaml:"dir"`
	ModelFile   string `yaml:"model_file"`
	EncoderFile string `yaml:"encoder_file"`
}

type TrainingConfig struct {
	ModelType       string  `yaml:"model_type"`
	NumTrees        int     `yaml:"num_trees"`
	MaxDepth        int     `yaml:"max_depth"`
	MinSamplesSplit int     `yaml:"min_samples_split"`
	TestRatio       float64 `yaml:"test_ratio"`
	Seed            int64   `yaml:"seed"`
}

// DatabaseConfig points at the run history. An empty path disables it.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func Default() *Config {
	return &Config{
		Data: DataConfig{Path: "data/triage.csv"},
		Artifacts: ArtifactsConfig{
			Dir:         "models",
			ModelFile:   "random_forest_model.gob",
			EncoderFile: "label_encoder.gob",
		},
		Training: TrainingConfig{
			ModelType:       "random_forest",
			NumTrees:        120,
			MinSamplesSplit: 2,
			TestRatio:       0.2,
			Seed:            42,
		},
		Database: DatabaseConfig{Path: "data/vitalsfirst.db"},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path over the defaults. A missing file leaves the defaults in
// place. A .env file in the working directory is loaded first, then
// VITALSFIRST_* variables override individual keys.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := Default()
	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(config); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides keys from VITALSFIRST_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Data.Path = getEnv("VITALSFIRST_DATA_PATH", c.Data.Path)
	c.Artifacts.Dir = getEnv("VITALSFIRST_MODEL_DIR", c.Artifacts.Dir)
	c.Training.ModelType = getEnv("VITALSFIRST_MODEL_TYPE", c.Training.ModelType)
	c.Database.Path = getEnv("VITALSFIRST_DB_PATH", c.Database.Path)
	c.Log.Level = getEnv("VITALSFIRST_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("VITALSFIRST_LOG_FILE", c.Log.File)

	if value, ok := os.LookupEnv("VITALSFIRST_NUM_TREES"); ok {
		trees, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid VITALSFIRST_NUM_TREES %q: %w", value, err)
		}
		c.Training.NumTrees = trees
	}
	if value, ok := os.LookupEnv("VITALSFIRST_SEED"); ok {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid VITALSFIRST_SEED %q: %w", value, err)
		}
		c.Training.Seed = seed
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Training.NumTrees <= 0 {
		return fmt.Errorf("training.num_trees must be positive, got %d", c.Training.NumTrees)
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("training.test_ratio must be in (0, 1), got %g", c.Training.TestRatio)
	}
	if c.Training.MaxDepth < 0 {
		return fmt.Errorf("training.max_depth must not be negative, got %d", c.Training.MaxDepth)
	}
	if c.Artifacts.Dir == "" {
		return errors.New("artifacts.dir is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
