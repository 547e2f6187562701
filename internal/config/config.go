// Package config loads server settings from an optional YAML file with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/topicflow/topicflow-backend/internal/pkg/envutil"
)

type Config struct {
	Port          string   `yaml:"port"`
	DBPath        string   `yaml:"db_path"`
	ScraperDBPath string   `yaml:"scraper_db_path"`
	SnapshotPath  string   `yaml:"snapshot_path"`
	LogMode       string   `yaml:"log_mode"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

func defaults() Config {
	return Config{
		Port:    "8000",
		DBPath:  "data/knowledge_graph.db",
		LogMode: "development",
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
	}
}

// Load reads the YAML file at path when it exists, then applies env overrides.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.DBPath = envutil.String("DB_PATH", cfg.DBPath)
	cfg.ScraperDBPath = envutil.String("SCRAPER_DB_PATH", cfg.ScraperDBPath)
	cfg.SnapshotPath = envutil.String("SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	return cfg, nil
}
