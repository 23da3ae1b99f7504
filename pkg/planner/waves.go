package planner

import (
	"context"
	"sort"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// Wave names, in migration order.
const (
	WaveStandalone = "wave1_standalone"
	WaveLow        = "wave2_low_coupling"
	WaveMedium     = "wave3_medium_coupling"
	WaveHigh       = "wave4_high_coupling"
)

// WaveNames lists the four waves in order.
var WaveNames = []string{WaveStandalone, WaveLow, WaveMedium, WaveHigh}

// waveEffortHours is the per-EPG effort estimate for each wave.
var waveEffortHours = map[string]float64{
	WaveStandalone: 1,
	WaveLow:        2,
	WaveMedium:     4,
	WaveHigh:       8,
}

var waveDescriptions = map[string]string{
	WaveStandalone: "Standalone EPGs with no coupling issues",
	WaveLow:        "Lightly coupled EPGs, migrate individually",
	WaveMedium:     "Coupled EPGs requiring coordinated scheduling",
	WaveHigh:       "Heavily coupled EPGs, migrate as grouped cutovers",
}

// WaveEPG is one EPG placed in a migration wave.
type WaveEPG struct {
	EPG         string `json:"epg"`
	Tenant      string `json:"tenant"`
	DeviceCount int    `json:"device_count"`
	PathCount   int    `json:"path_count"`
	Issues      int    `json:"issues"`
}

// WaveSummary aggregates one wave.
type WaveSummary struct {
	Wave           string  `json:"wave"`
	EPGCount       int     `json:"epg_count"`
	EstimatedHours float64 `json:"estimated_hours"`
	EstimatedDays  float64 `json:"estimated_days"`
	Description    string  `json:"description"`
}

// WavesResult is the migration wave partition.
type WavesResult struct {
	Waves            map[string][]WaveEPG `json:"waves"`
	Summary          []WaveSummary        `json:"summary"`
	TotalEPGs        int                  `json:"total_epgs"`
	TotalEffortHours float64              `json:"total_effort_hours"`
	TotalEffortDays  float64              `json:"total_effort_days"`
}

// MigrationWaves partitions every EPG with path attachments into exactly one
// of four waves. An EPG with no referencing issue is standalone; any
// referencing high-severity issue puts it in the high wave; more than one
// medium issue or more than two devices makes it medium; anything else is
// low.
func MigrationWaves(ctx context.Context, g *graph.Graph) (WavesResult, error) {
	maps, err := buildCouplingMaps(ctx, g)
	if err != nil {
		return WavesResult{}, err
	}
	coupling, err := Couplings(ctx, g)
	if err != nil {
		return WavesResult{}, err
	}

	// Index issues back to the EPGs they reference. Device-spanning issues
	// name their EPG directly; shared-VLAN issues reference every EPG using
	// the VLAN. The aggregated cross-tenant issue names no EPG and therefore
	// gates no wave.
	epgHigh := map[string]int{}
	epgMedium := map[string]int{}
	for _, issue := range coupling.Issues {
		var touched []string
		switch {
		case issue.EPG != "":
			touched = []string{issue.EPG}
		case issue.Type == IssueSharedVLAN:
			if vc := maps.vlans[issue.VLAN]; vc != nil {
				touched = sortedKeys(vc.epgs)
			}
		}
		for _, dn := range touched {
			switch issue.Severity {
			case SeverityHigh:
				epgHigh[dn]++
			case SeverityMedium:
				epgMedium[dn]++
			}
		}
	}

	result := WavesResult{Waves: map[string][]WaveEPG{}}
	for _, name := range WaveNames {
		result.Waves[name] = []WaveEPG{}
	}

	epgDns := make([]string, 0, len(maps.epgs))
	for dn := range maps.epgs {
		epgDns = append(epgDns, dn)
	}
	sort.Strings(epgDns)

	for _, dn := range epgDns {
		select {
		case <-ctx.Done():
			return WavesResult{}, ctx.Err()
		default:
		}
		epg := maps.epgs[dn]
		high := epgHigh[dn]
		medium := epgMedium[dn]

		wave := WaveStandalone
		switch {
		case high > 0:
			wave = WaveHigh
		case medium+high == 0:
			wave = WaveStandalone
		case medium > 1 || len(epg.devices) > 2:
			wave = WaveMedium
		default:
			wave = WaveLow
		}

		result.Waves[wave] = append(result.Waves[wave], WaveEPG{
			EPG:         record.EPGName(dn),
			Tenant:      epg.tenant,
			DeviceCount: len(epg.devices),
			PathCount:   epg.pathCount,
			Issues:      high + medium,
		})
	}

	for _, name := range WaveNames {
		epgs := result.Waves[name]
		hours := float64(len(epgs)) * waveEffortHours[name]
		result.Summary = append(result.Summary, WaveSummary{
			Wave:           name,
			EPGCount:       len(epgs),
			EstimatedHours: hours,
			EstimatedDays:  hours / 8,
			Description:    waveDescriptions[name],
		})
		result.TotalEPGs += len(epgs)
		result.TotalEffortHours += hours
	}
	result.TotalEffortDays = result.TotalEffortHours / 8

	return result, nil
}
