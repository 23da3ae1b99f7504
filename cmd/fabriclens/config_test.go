package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nwade/fabriclens/pkg/analysis"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Catalog.Dir != "./data/fabriclens" {
		t.Errorf("expected default dir, got %q", cfg.Catalog.Dir)
	}
	if cfg.Catalog.Dataset != "default" {
		t.Errorf("expected default dataset, got %q", cfg.Catalog.Dataset)
	}
	if cfg.Analysis.FexLeafThreshold != analysis.DefaultFexLeafThreshold {
		t.Errorf("expected library default threshold, got %d", cfg.Analysis.FexLeafThreshold)
	}
	if !cfg.Output.Pretty {
		t.Error("expected pretty output by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabriclens.yaml")
	body := `catalog:
  dir: /var/lib/fabriclens
  dataset: dc-east
analysis:
  fex_leaf_threshold: 5
overlay:
  l3_vni_start: 90000
  vlan_start: 2000
output:
  pretty: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Catalog.Dir != "/var/lib/fabriclens" {
		t.Errorf("dir not applied: %q", cfg.Catalog.Dir)
	}
	if cfg.Catalog.Dataset != "dc-east" {
		t.Errorf("dataset not applied: %q", cfg.Catalog.Dataset)
	}
	if cfg.Analysis.FexLeafThreshold != 5 {
		t.Errorf("threshold not applied: %d", cfg.Analysis.FexLeafThreshold)
	}
	if cfg.Overlay.L3VNIStart != 90000 || cfg.Overlay.VLANStart != 2000 {
		t.Errorf("overlay starts not applied: %+v", cfg.Overlay)
	}
	if cfg.Overlay.L2VNIStart != 0 {
		t.Errorf("unset overlay start should stay zero, got %d", cfg.Overlay.L2VNIStart)
	}
	if cfg.Output.Pretty {
		t.Error("pretty should be disabled")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabriclens.yaml")
	body := `analysis:
  fex_leaf_threshold: -1
catalog:
  dataset: ""
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Analysis.FexLeafThreshold != analysis.DefaultFexLeafThreshold {
		t.Errorf("negative threshold should fall back to default, got %d", cfg.Analysis.FexLeafThreshold)
	}
	if cfg.Catalog.Dataset != "default" {
		t.Errorf("empty dataset should fall back, got %q", cfg.Catalog.Dataset)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig("/nonexistent/fabriclens.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("catalog: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
