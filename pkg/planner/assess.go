package planner

import (
	"context"
	"sync"
	"time"

	"github.com/nwade/fabriclens/pkg/analysis"
	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/logging"
	"github.com/nwade/fabriclens/pkg/metrics"
	"github.com/nwade/fabriclens/pkg/record"
)

// RiskAssessment combines coupling, VLAN, and complexity risk into one score.
type RiskAssessment struct {
	CouplingRisk   int    `json:"coupling_risk"`
	VLANRisk       int    `json:"vlan_risk"`
	ComplexityRisk int    `json:"complexity_risk"`
	OverallRisk    int    `json:"overall_risk"`
	RiskLevel      string `json:"risk_level"`
}

// Assessment is the full analyzer fan-out over one dataset.
type Assessment struct {
	PortUtilization []analysis.FexUtilization        `json:"port_utilization"`
	LeafFex         analysis.LeafFexResult           `json:"leaf_fex_mapping"`
	BDEPG           analysis.BDEPGResult             `json:"bd_epg_mapping"`
	VLANs           analysis.VLANResult              `json:"vlan_distribution"`
	EPGComplexity   []analysis.EPGComplexityScore    `json:"epg_complexity"`
	VPCSymmetry     analysis.VPCSymmetryResult       `json:"vpc_symmetry"`
	ContractScopes  []analysis.ContractScope         `json:"contract_scopes"`
	MigrationFlags  []analysis.MigrationFlag         `json:"migration_flags"`
	RackGrouping    *analysis.RackGroupingResult     `json:"rack_grouping,omitempty"`
	AssetMatch      *analysis.AssetCorrelationResult `json:"asset_correlation,omitempty"`
	Coupling        CouplingResult                   `json:"coupling_analysis"`
	VLANSharing     VLANSharingResult                `json:"vlan_sharing"`
	Waves           WavesResult                      `json:"migration_waves"`
	Risk            RiskAssessment                   `json:"risk_assessment"`
}

// Options tunes an assessment run.
type Options struct {
	FexLeafThreshold int
	Assets           []record.Asset
}

// Planner runs the full assessment pipeline.
type Planner struct {
	log logging.Logger
}

func New(log logging.Logger) *Planner {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Planner{log: log}
}

// Assess fans the independent analyzers out over the immutable graph, waits
// for all of them, then derives coupling, waves, and the combined risk
// assessment. The first analyzer error wins; remaining results are dropped.
func (p *Planner) Assess(ctx context.Context, g *graph.Graph, opts Options) (*Assessment, error) {
	start := time.Now()
	var (
		a      Assessment
		wg     sync.WaitGroup
		mu     sync.Mutex
		runErr error
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if runErr == nil {
			runErr = err
		}
	}
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.Now()
			if err := fn(); err != nil {
				fail(err)
				return
			}
			metrics.AnalyzerDuration.WithLabelValues(name).Observe(time.Since(t).Seconds())
		}()
	}

	run("port_utilization", func() error {
		r, err := analysis.PortUtilization(ctx, g)
		a.PortUtilization = r
		return err
	})
	run("leaf_fex_mapping", func() error {
		r, err := analysis.LeafFexMapping(ctx, g, opts.FexLeafThreshold)
		a.LeafFex = r
		return err
	})
	run("bd_epg_mapping", func() error {
		r, err := analysis.BDEPGMapping(ctx, g)
		a.BDEPG = r
		return err
	})
	run("vlan_distribution", func() error {
		r, err := analysis.VLANDistribution(ctx, g)
		a.VLANs = r
		return err
	})
	run("epg_complexity", func() error {
		r, err := analysis.EPGComplexity(ctx, g)
		a.EPGComplexity = r
		return err
	})
	run("vpc_symmetry", func() error {
		r, err := analysis.VPCSymmetry(ctx, g)
		a.VPCSymmetry = r
		return err
	})
	run("contract_scopes", func() error {
		r, err := analysis.ContractScopes(ctx, g)
		a.ContractScopes = r
		return err
	})
	run("migration_flags", func() error {
		r, err := analysis.MigrationFlags(ctx, g)
		a.MigrationFlags = r
		return err
	})
	if len(opts.Assets) > 0 {
		run("rack_grouping", func() error {
			r, err := analysis.RackGrouping(ctx, g, opts.Assets)
			a.RackGrouping = &r
			return err
		})
		run("asset_correlation", func() error {
			r, err := analysis.AssetCorrelation(ctx, g, opts.Assets)
			a.AssetMatch = &r
			return err
		})
	}
	run("coupling", func() error {
		r, err := Couplings(ctx, g)
		a.Coupling = r
		return err
	})
	run("vlan_sharing", func() error {
		r, err := VLANSharing(ctx, g)
		a.VLANSharing = r
		return err
	})

	wg.Wait()
	if runErr != nil {
		return nil, runErr
	}

	waves, err := MigrationWaves(ctx, g)
	if err != nil {
		return nil, err
	}
	a.Waves = waves
	a.Risk = assessRisk(a.Coupling, a.VLANSharing)

	p.log.Info("assessment complete",
		logging.RecordCount(g.Len()),
		logging.Int("coupling_issues", a.Coupling.Statistics.TotalIssues),
		logging.Int("overall_risk", a.Risk.OverallRisk),
		logging.Duration("elapsed", time.Since(start)))
	metrics.AssessmentsTotal.Inc()

	return &a, nil
}

func assessRisk(coupling CouplingResult, sharing VLANSharingResult) RiskAssessment {
	vlanRisk := sharing.Statistics.MultiTenantVLANs * 5
	if vlanRisk > 50 {
		vlanRisk = 50
	}
	complexityRisk := coupling.Statistics.HighSeverity*10 + coupling.Statistics.MediumSeverity*5
	if complexityRisk > 50 {
		complexityRisk = 50
	}
	overall := coupling.MigrationRiskScore + vlanRisk/2 + complexityRisk/2
	if overall > 100 {
		overall = 100
	}

	level := "LOW - Straightforward migration"
	switch {
	case overall >= 70:
		level = "HIGH - Complex migration requiring extensive planning"
	case overall >= 40:
		level = "MEDIUM - Moderate migration complexity"
	}

	return RiskAssessment{
		CouplingRisk:   coupling.MigrationRiskScore,
		VLANRisk:       vlanRisk,
		ComplexityRisk: complexityRisk,
		OverallRisk:    overall,
		RiskLevel:      level,
	}
}
