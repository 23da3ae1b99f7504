package analysis

import (
	"context"
	"sort"
	"strconv"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// AsymmetricBinding reports two nodes carrying different VLAN sets for the
// same EPG.
type AsymmetricBinding struct {
	EPG            string   `json:"epg"`
	Node1          string   `json:"node1"`
	Node1VLANs     []string `json:"node1_vlans"`
	Node2          string   `json:"node2"`
	Node2VLANs     []string `json:"node2_vlans"`
	MissingInNode1 []string `json:"missing_in_node1"`
	MissingInNode2 []string `json:"missing_in_node2"`
}

// VPCSymmetryStats aggregates the symmetry check.
type VPCSymmetryStats struct {
	TotalEPGsChecked int     `json:"total_epgs_checked"`
	AsymmetricEPGs   int     `json:"asymmetric_epgs"`
	SymmetryRate     float64 `json:"symmetry_rate"`
}

// VPCSymmetryResult is the dual-homing symmetry analyzer output.
type VPCSymmetryResult struct {
	AsymmetricBindings []AsymmetricBinding `json:"asymmetric_bindings"`
	Statistics         VPCSymmetryStats    `json:"statistics"`
}

// VPCSymmetry checks that every EPG carries the same VLAN set on every node
// it binds to. Every node pair is compared, so an asymmetry between the
// first and last node of a wide EPG is still caught. Nodes are visited in
// sorted order so the report is deterministic.
func VPCSymmetry(ctx context.Context, g *graph.Graph) (VPCSymmetryResult, error) {
	epgPaths := map[string][]record.PathAttachment{}
	for _, pr := range g.OfType(record.TypePathAttachment) {
		epgDn := record.EPGPath(pr.Dn)
		epgPaths[epgDn] = append(epgPaths[epgDn], pr.AsPathAttachment())
	}

	epgDns := make([]string, 0, len(epgPaths))
	for dn := range epgPaths {
		epgDns = append(epgDns, dn)
	}
	sort.Strings(epgDns)

	var result VPCSymmetryResult
	asymmetricEPGs := 0
	for _, epgDn := range epgDns {
		if err := ctxErr(ctx); err != nil {
			return VPCSymmetryResult{}, err
		}

		nodeVLANs := map[string]map[string]bool{}
		for _, path := range epgPaths[epgDn] {
			node := record.NodeID(path.TargetDn)
			vlan, ok := record.VLANID(path.Encap)
			if node == "" || !ok {
				continue
			}
			if nodeVLANs[node] == nil {
				nodeVLANs[node] = map[string]bool{}
			}
			nodeVLANs[node][strconv.Itoa(vlan)] = true
		}
		if len(nodeVLANs) < 2 {
			continue
		}

		nodes := make([]string, 0, len(nodeVLANs))
		for node := range nodeVLANs {
			nodes = append(nodes, node)
		}
		sort.Strings(nodes)

		epgAsymmetric := false
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i], nodes[j]
				missingInA := setDiff(nodeVLANs[b], nodeVLANs[a])
				missingInB := setDiff(nodeVLANs[a], nodeVLANs[b])
				if len(missingInA) == 0 && len(missingInB) == 0 {
					continue
				}
				epgAsymmetric = true
				result.AsymmetricBindings = append(result.AsymmetricBindings, AsymmetricBinding{
					EPG:            record.EPGName(epgDn),
					Node1:          a,
					Node1VLANs:     setList(nodeVLANs[a]),
					Node2:          b,
					Node2VLANs:     setList(nodeVLANs[b]),
					MissingInNode1: missingInA,
					MissingInNode2: missingInB,
				})
			}
		}
		if epgAsymmetric {
			asymmetricEPGs++
		}
	}

	result.Statistics = VPCSymmetryStats{
		TotalEPGsChecked: len(epgPaths),
		AsymmetricEPGs:   asymmetricEPGs,
		SymmetryRate:     100,
	}
	if len(epgPaths) > 0 {
		result.Statistics.SymmetryRate = round2(
			float64(len(epgPaths)-asymmetricEPGs) / float64(len(epgPaths)) * 100)
	}
	return result, nil
}

func setDiff(a, b map[string]bool) []string {
	var out []string
	for v := range a {
		if !b[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func setList(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
