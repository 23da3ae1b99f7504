package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nwade/fabriclens/pkg/analysis"
)

// Config is the optional YAML configuration for an analysis run. Every field
// has a working default so the binary runs without a config file.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Output   OutputConfig   `yaml:"output"`
}

type CatalogConfig struct {
	Dir     string `yaml:"dir"`
	Dataset string `yaml:"dataset"`
}

type AnalysisConfig struct {
	FexLeafThreshold int `yaml:"fex_leaf_threshold"`
}

type OverlayConfig struct {
	L3VNIStart int `yaml:"l3_vni_start"`
	L2VNIStart int `yaml:"l2_vni_start"`
	VLANStart  int `yaml:"vlan_start"`
}

type OutputConfig struct {
	Pretty bool `yaml:"pretty"`
}

func defaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			Dir:     "./data/fabriclens",
			Dataset: "default",
		},
		Analysis: AnalysisConfig{
			FexLeafThreshold: analysis.DefaultFexLeafThreshold,
		},
		Output: OutputConfig{
			Pretty: true,
		},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults
// untouched.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Catalog.Dir == "" {
		cfg.Catalog.Dir = defaultConfig().Catalog.Dir
	}
	if cfg.Catalog.Dataset == "" {
		cfg.Catalog.Dataset = defaultConfig().Catalog.Dataset
	}
	if cfg.Analysis.FexLeafThreshold <= 0 {
		cfg.Analysis.FexLeafThreshold = defaultConfig().Analysis.FexLeafThreshold
	}
	return cfg, nil
}
