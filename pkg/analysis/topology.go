package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// DefaultFexLeafThreshold is the attached-FEX count above which a leaf is
// flagged as overloaded.
const DefaultFexLeafThreshold = 12

// fexPortCounts maps port-expander model families to their front-panel port
// count. Matching is by substring so suffixed SKUs resolve to the family.
var fexPortCounts = []struct {
	model string
	ports int
}{
	{"N2K-C2248TP", 48},
	{"N2K-C2348UPQ", 48},
	{"N2K-C2232PP", 32},
	{"N2K-C2348TQ", 48},
	{"N2K-C2224TP", 24},
	{"N2K-C2232TM", 32},
	{"N2K-C2248PQ", 48},
}

const defaultFexPorts = 48

// FexPortCount resolves a FEX model string to its front-panel port count.
func FexPortCount(model string) int {
	for _, m := range fexPortCounts {
		if strings.Contains(model, m.model) {
			return m.ports
		}
	}
	return defaultFexPorts
}

// FexUtilization is the per-device result of the port utilization analyzer.
type FexUtilization struct {
	FexID          string  `json:"fex_id"`
	Serial         string  `json:"serial"`
	Model          string  `json:"model"`
	LeafID         string  `json:"leaf_id"`
	TotalPorts     int     `json:"total_ports"`
	ConnectedPorts int     `json:"connected_ports"`
	UtilizationPct float64 `json:"utilization_pct"`
	Status         string  `json:"status"`
	Score          int     `json:"consolidation_score"`
	Recommendation string  `json:"recommendation"`
}

// PortUtilization scores every FEX as a consolidation candidate. A port
// counts as connected when its interface id carries the FEX prefix and the
// interface is operationally up. Results are sorted by score, best candidate
// first.
func PortUtilization(ctx context.Context, g *graph.Graph) ([]FexUtilization, error) {
	fexes := g.OfType(record.TypeFex)
	if len(fexes) == 0 {
		return nil, ctxErr(ctx)
	}
	interfaces := g.OfType(record.TypePhysIf)

	results := make([]FexUtilization, 0, len(fexes))
	for _, r := range fexes {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		fex := r.AsFex()
		totalPorts := FexPortCount(fex.Model)

		prefix := "eth" + fex.ID + "/"
		ifaceCount := 0
		connected := 0
		for _, ir := range interfaces {
			pi := ir.AsPhysIf()
			if !strings.Contains(pi.ID, prefix) {
				continue
			}
			ifaceCount++
			if pi.OperSt == "up" {
				connected++
			}
		}

		utilization := 0.0
		if totalPorts > 0 {
			utilization = float64(connected) / float64(totalPorts) * 100
		}
		score := consolidationScore(utilization, fex.OperSt, ifaceCount)

		results = append(results, FexUtilization{
			FexID:          fex.ID,
			Serial:         fex.Serial,
			Model:          fex.Model,
			LeafID:         record.NodeID(fex.Dn),
			TotalPorts:     totalPorts,
			ConnectedPorts: connected,
			UtilizationPct: round2(utilization),
			Status:         fex.OperSt,
			Score:          score,
			Recommendation: consolidationRecommendation(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

func consolidationScore(utilization float64, status string, interfaceCount int) int {
	score := 0

	switch {
	case utilization < 20:
		score += 40
	case utilization < 40:
		score += 30
	case utilization < 60:
		score += 15
	default:
		score += 5
	}

	switch status {
	case "down":
		score += 30
	case "up":
		score += 10
	}

	switch {
	case interfaceCount < 5:
		score += 20
	case interfaceCount < 10:
		score += 10
	}

	// Completely unused devices get an extra nudge.
	if utilization == 0 {
		score += 10
	}

	return capScore(score)
}

func consolidationRecommendation(score int) string {
	switch {
	case score >= 80:
		return "Strong candidate for consolidation or decommission"
	case score >= 60:
		return "Consider consolidation with other low-utilization FEX"
	case score >= 40:
		return "Monitor utilization trends"
	default:
		return "Retain - adequate utilization"
	}
}

// AttachedFex summarizes one FEX hanging off a leaf.
type AttachedFex struct {
	FexID  string `json:"fex_id"`
	Serial string `json:"serial"`
	Model  string `json:"model"`
	Status string `json:"status"`
}

// LeafMapping is one leaf with its attached FEX devices.
type LeafMapping struct {
	LeafID     string        `json:"leaf_id"`
	LeafName   string        `json:"leaf_name"`
	LeafModel  string        `json:"leaf_model"`
	LeafSerial string        `json:"leaf_serial"`
	FexCount   int           `json:"fex_count"`
	Attached   []AttachedFex `json:"attached_fex"`
	Overloaded bool          `json:"overloaded"`
}

// LeafFexStats aggregates the leaf-FEX topology.
type LeafFexStats struct {
	TotalLeafs      int     `json:"total_leafs"`
	TotalFex        int     `json:"total_fex"`
	AvgFexPerLeaf   float64 `json:"avg_fex_per_leaf"`
	OverloadedLeafs int     `json:"overloaded_leafs"`
}

// LeafFexResult is the leaf-FEX mapping analyzer output.
type LeafFexResult struct {
	Mappings   []LeafMapping `json:"mappings"`
	Statistics LeafFexStats  `json:"statistics"`
}

// LeafFexMapping attaches each FEX to the leaf named in its dn and flags
// leaves carrying more FEX than the threshold (0 selects the default).
func LeafFexMapping(ctx context.Context, g *graph.Graph, threshold int) (LeafFexResult, error) {
	if threshold <= 0 {
		threshold = DefaultFexLeafThreshold
	}

	fexes := g.OfType(record.TypeFex)
	var mappings []LeafMapping
	for _, lr := range g.OfType(record.TypeFabricNode) {
		if err := ctxErr(ctx); err != nil {
			return LeafFexResult{}, err
		}
		leaf := lr.AsFabricNode()
		if leaf.Role != "leaf" {
			continue
		}

		var attached []AttachedFex
		marker := "node-" + leaf.ID
		for _, fr := range fexes {
			fex := fr.AsFex()
			if strings.Contains(fex.Dn, marker) {
				attached = append(attached, AttachedFex{
					FexID:  fex.ID,
					Serial: fex.Serial,
					Model:  fex.Model,
					Status: fex.OperSt,
				})
			}
		}

		mappings = append(mappings, LeafMapping{
			LeafID:     leaf.ID,
			LeafName:   leaf.Name,
			LeafModel:  leaf.Model,
			LeafSerial: leaf.Serial,
			FexCount:   len(attached),
			Attached:   attached,
			Overloaded: len(attached) > threshold,
		})
	}

	stats := LeafFexStats{
		TotalLeafs: len(mappings),
		TotalFex:   len(fexes),
	}
	attachedTotal := 0
	for _, m := range mappings {
		attachedTotal += m.FexCount
		if m.Overloaded {
			stats.OverloadedLeafs++
		}
	}
	if len(mappings) > 0 {
		stats.AvgFexPerLeaf = round2(float64(attachedTotal) / float64(len(mappings)))
	}

	return LeafFexResult{Mappings: mappings, Statistics: stats}, nil
}
