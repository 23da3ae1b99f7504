package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nwade/fabriclens/pkg/analysis"
	"github.com/nwade/fabriclens/pkg/catalog"
	"github.com/nwade/fabriclens/pkg/ingest"
	"github.com/nwade/fabriclens/pkg/logging"
	"github.com/nwade/fabriclens/pkg/planner"
	"github.com/nwade/fabriclens/pkg/translate"
	"github.com/nwade/fabriclens/pkg/validation"
)

// Report is the full JSON output of one run: the analyzer fan-out plus every
// translator view of the dataset.
type Report struct {
	Dataset     catalog.Dataset               `json:"dataset"`
	Assessment  *planner.Assessment           `json:"assessment"`
	Contracts   translate.ContractAnalysis    `json:"contract_analysis"`
	ACLs        translate.AllTranslations     `json:"acl_translations"`
	Overlay     translate.OverlayMapping      `json:"evpn_overlay"`
	VPCDomains  translate.VPCDomainsResult    `json:"vpc_domains"`
	ESI         translate.ESIResult           `json:"esi_mappings"`
	L3Outs      translate.L3OutResult         `json:"l3outs"`
	BGP         translate.BGPResult           `json:"bgp_peers"`
	OSPF        translate.OSPFResult          `json:"ospf_interfaces"`
	BorderLeafs translate.BorderLeafResult    `json:"border_leafs"`
	Complexity  translate.MigrationComplexity `json:"migration_complexity"`

	VLANPools     analysis.VLANPoolsResult          `json:"vlan_pools"`
	VLANConflicts analysis.VLANConflictsResult      `json:"vlan_conflicts"`
	VLANPlan      analysis.VLANMigrationPlan        `json:"vlan_migration_plan"`
	PortChannels  translate.PortChannelsResult      `json:"port_channels"`
	DualHomed     translate.DualHomedResult         `json:"dual_homed_servers"`
	Interfaces    analysis.InterfaceInventoryResult `json:"interface_inventory"`
}

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	dataDir := flag.String("data", "", "Catalog directory (overrides config)")
	dataset := flag.String("dataset", "", "Dataset name (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.Catalog.Dir = *dataDir
	}
	if *dataset != "" {
		cfg.Catalog.Dataset = *dataset
	}

	log.Printf("🔍 FabricLens starting...")
	log.Printf("📂 Catalog directory: %s", cfg.Catalog.Dir)
	log.Printf("🗂  Dataset: %s", cfg.Catalog.Dataset)

	logger := logging.NewDefaultLogger()
	backend, err := catalog.NewFileBackend(cfg.Catalog.Dir)
	if err != nil {
		log.Fatalf("Failed to open catalog directory: %v", err)
	}
	store, err := catalog.NewStore(backend, logger)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}

	if err := validation.ValidateDatasetRequest(&validation.DatasetRequest{Name: cfg.Catalog.Dataset}); err != nil {
		log.Fatalf("Invalid dataset name: %v", err)
	}
	ds, err := findOrCreateDataset(store, cfg.Catalog.Dataset)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}

	if paths := flag.Args(); len(paths) > 0 {
		if err := validation.ValidateUploadRequest(&validation.UploadRequest{DatasetID: ds.ID, Paths: paths}); err != nil {
			log.Fatalf("Invalid upload request: %v", err)
		}
		loader := ingest.NewLoader(logger)
		batch := loader.LoadBatch(paths)
		if len(batch.Records) == 0 && len(batch.Assets) == 0 {
			log.Fatalf("No usable records in %d input file(s)", len(paths))
		}
		if _, err := store.AppendBatch(ds.ID, batch.Records, batch.Assets); err != nil {
			log.Fatalf("Failed to store batch: %v", err)
		}
		log.Printf("📥 Loaded %d records, %d assets (%d file(s) skipped)",
			len(batch.Records), len(batch.Assets), len(batch.Skipped))
	}

	if err := validation.ValidateAssessmentRequest(&validation.AssessmentRequest{
		DatasetID:        ds.ID,
		FexLeafThreshold: cfg.Analysis.FexLeafThreshold,
	}); err != nil {
		log.Fatalf("Invalid assessment request: %v", err)
	}
	report, err := buildReport(context.Background(), store, logger, ds.ID, cfg)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	var out []byte
	if cfg.Output.Pretty {
		out, err = json.MarshalIndent(report, "", "  ")
	} else {
		out, err = json.Marshal(report)
	}
	if err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	log.Printf("✅ Analysis complete")
}

func findOrCreateDataset(store *catalog.Store, name string) (catalog.Dataset, error) {
	for _, ds := range store.List() {
		if ds.Name == name {
			return ds, nil
		}
	}
	return store.Create(name, "")
}

func buildReport(ctx context.Context, store *catalog.Store, logger logging.Logger, datasetID string, cfg Config) (*Report, error) {
	ds, err := store.Get(datasetID)
	if err != nil {
		return nil, err
	}
	g, err := store.Graph(datasetID)
	if err != nil {
		return nil, err
	}
	assets, err := store.Assets(datasetID)
	if err != nil {
		return nil, err
	}

	assessment, err := planner.New(logger).Assess(ctx, g, planner.Options{
		FexLeafThreshold: cfg.Analysis.FexLeafThreshold,
		Assets:           assets,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{Dataset: ds, Assessment: assessment}
	if report.Contracts, err = translate.AnalyzeContracts(ctx, g); err != nil {
		return nil, err
	}
	if report.ACLs, err = translate.TranslateAllContracts(ctx, g); err != nil {
		return nil, err
	}
	starts := translate.OverlayStarts{
		L3VNI: cfg.Overlay.L3VNIStart,
		L2VNI: cfg.Overlay.L2VNIStart,
		VLAN:  cfg.Overlay.VLANStart,
	}
	if report.Overlay, err = translate.MapOverlayFrom(ctx, g, starts); err != nil {
		return nil, err
	}
	if report.VPCDomains, err = translate.AnalyzeVPCDomains(ctx, g); err != nil {
		return nil, err
	}
	if report.ESI, err = translate.MapESI(ctx, g); err != nil {
		return nil, err
	}
	if report.L3Outs, err = translate.AnalyzeL3Outs(ctx, g); err != nil {
		return nil, err
	}
	if report.BGP, err = translate.AnalyzeBGP(ctx, g); err != nil {
		return nil, err
	}
	if report.OSPF, err = translate.AnalyzeOSPF(ctx, g); err != nil {
		return nil, err
	}
	if report.BorderLeafs, err = translate.IdentifyBorderLeafs(ctx, g); err != nil {
		return nil, err
	}
	if report.Complexity, err = translate.AssessMigrationComplexity(ctx, g); err != nil {
		return nil, err
	}
	if report.VLANPools, err = analysis.AnalyzeVLANPools(ctx, g); err != nil {
		return nil, err
	}
	if report.VLANConflicts, err = analysis.DetectVLANConflicts(ctx, g); err != nil {
		return nil, err
	}
	if report.VLANPlan, err = analysis.PlanVLANMigration(ctx, g); err != nil {
		return nil, err
	}
	if report.PortChannels, err = translate.AnalyzePortChannels(ctx, g); err != nil {
		return nil, err
	}
	if report.DualHomed, err = translate.IdentifyDualHomedServers(ctx, g); err != nil {
		return nil, err
	}
	if report.Interfaces, err = analysis.InterfaceInventory(ctx, g); err != nil {
		return nil, err
	}
	return report, nil
}
