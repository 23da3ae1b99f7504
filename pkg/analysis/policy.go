package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// BDMapping is one bridge domain with its member EPGs and subnets.
type BDMapping struct {
	BDName       string   `json:"bd_name"`
	Tenant       string   `json:"tenant"`
	VRF          string   `json:"vrf"`
	EPGCount     int      `json:"epg_count"`
	EPGs         []string `json:"epgs"`
	Subnets      []string `json:"subnets"`
	ARPFlood     string   `json:"arp_flood"`
	UnicastRoute string   `json:"unicast_route"`
}

// BDEPGStats aggregates the bridge-domain mapping.
type BDEPGStats struct {
	TotalBDs          int `json:"total_bds"`
	TotalEPGs         int `json:"total_epgs"`
	BDsWithoutEPGs    int `json:"bds_without_epgs"`
	BDsWithoutSubnets int `json:"bds_without_subnets"`
}

// BDEPGResult is the bridge-domain to EPG mapping analyzer output.
type BDEPGResult struct {
	Mappings   []BDMapping `json:"mappings"`
	Statistics BDEPGStats  `json:"statistics"`
}

// BDEPGMapping associates EPGs with their bridge domains. Membership needs
// both a matching bd name and an identical tenant token; name equality alone
// crosses tenant boundaries.
func BDEPGMapping(ctx context.Context, g *graph.Graph) (BDEPGResult, error) {
	epgs := g.OfType(record.TypeEPG)
	subnets := g.OfType(record.TypeSubnet)

	var result BDEPGResult
	for _, br := range g.OfType(record.TypeBridgeDomain) {
		if err := ctxErr(ctx); err != nil {
			return BDEPGResult{}, err
		}
		bd := br.AsBridgeDomain()
		tenant := record.Tenant(bd.Dn)

		var members []string
		for _, er := range epgs {
			epg := er.AsEPG()
			if epg.BridgeDomain == bd.Name && record.Tenant(epg.Dn) == tenant {
				members = append(members, epg.Name)
			}
		}

		var ips []string
		for _, sr := range subnets {
			if record.IsAncestor(bd.Dn, sr.Dn) {
				ips = append(ips, sr.AsSubnet().IP)
			}
		}

		result.Mappings = append(result.Mappings, BDMapping{
			BDName:       bd.Name,
			Tenant:       tenant,
			VRF:          bd.VRF,
			EPGCount:     len(members),
			EPGs:         members,
			Subnets:      ips,
			ARPFlood:     bd.ARPFlood,
			UnicastRoute: bd.UnicastRoute,
		})
	}

	result.Statistics = BDEPGStats{
		TotalBDs:  len(result.Mappings),
		TotalEPGs: len(epgs),
	}
	for _, m := range result.Mappings {
		if m.EPGCount == 0 {
			result.Statistics.BDsWithoutEPGs++
		}
		if len(m.Subnets) == 0 {
			result.Statistics.BDsWithoutSubnets++
		}
	}
	return result, nil
}

// VLANBinding is one path attachment carrying a VLAN.
type VLANBinding struct {
	EPGDn string `json:"epg_dn"`
	Path  string `json:"path"`
	Mode  string `json:"mode"`
}

// VLANOverlap flags a VLAN id shared by more than one EPG.
type VLANOverlap struct {
	VLAN          int      `json:"vlan"`
	EPGCount      int      `json:"epg_count"`
	EPGs          []string `json:"epgs"`
	TotalBindings int      `json:"total_bindings"`
	Severity      string   `json:"severity"`
}

// VLANStats aggregates VLAN usage.
type VLANStats struct {
	TotalVLANsUsed       int    `json:"total_vlans_used"`
	VLANRange            string `json:"vlan_range"`
	OverlapCount         int    `json:"overlap_count"`
	TotalPathAttachments int    `json:"total_path_attachments"`
}

// VLANResult is the VLAN distribution analyzer output.
type VLANResult struct {
	Usage      map[int][]VLANBinding `json:"vlan_usage"`
	Overlaps   []VLANOverlap         `json:"overlaps"`
	Statistics VLANStats             `json:"statistics"`
}

// VLANDistribution maps VLAN ids to the EPG bindings using them and flags
// ids shared across EPGs. More than three distinct EPGs on one VLAN is high
// severity, two or three is medium.
func VLANDistribution(ctx context.Context, g *graph.Graph) (VLANResult, error) {
	paths := g.OfType(record.TypePathAttachment)
	result := VLANResult{Usage: map[int][]VLANBinding{}}

	for _, pr := range paths {
		if err := ctxErr(ctx); err != nil {
			return VLANResult{}, err
		}
		path := pr.AsPathAttachment()
		vlan, ok := record.VLANID(path.Encap)
		if !ok {
			continue
		}
		result.Usage[vlan] = append(result.Usage[vlan], VLANBinding{
			EPGDn: record.EPGPath(pr.Dn),
			Path:  path.TargetDn,
			Mode:  path.Mode,
		})
	}

	vlans := make([]int, 0, len(result.Usage))
	for vlan := range result.Usage {
		vlans = append(vlans, vlan)
	}
	sort.Ints(vlans)

	for _, vlan := range vlans {
		bindings := result.Usage[vlan]
		distinct := map[string]bool{}
		for _, b := range bindings {
			distinct[b.EPGDn] = true
		}
		if len(distinct) <= 1 {
			continue
		}
		epgs := make([]string, 0, len(distinct))
		for dn := range distinct {
			epgs = append(epgs, dn)
		}
		sort.Strings(epgs)
		severity := SeverityMedium
		if len(distinct) > 3 {
			severity = SeverityHigh
		}
		result.Overlaps = append(result.Overlaps, VLANOverlap{
			VLAN:          vlan,
			EPGCount:      len(distinct),
			EPGs:          epgs,
			TotalBindings: len(bindings),
			Severity:      severity,
		})
	}

	result.Statistics = VLANStats{
		TotalVLANsUsed:       len(vlans),
		VLANRange:            "N/A",
		OverlapCount:         len(result.Overlaps),
		TotalPathAttachments: len(paths),
	}
	if len(vlans) > 0 {
		result.Statistics.VLANRange = fmt.Sprintf("%d-%d", vlans[0], vlans[len(vlans)-1])
	}
	return result, nil
}

// EPGComplexityScore is one EPG with its scored binding footprint.
type EPGComplexityScore struct {
	EPGName         string `json:"epg_name"`
	Tenant          string `json:"tenant"`
	BridgeDomain    string `json:"bd"`
	PathCount       int    `json:"path_count"`
	VLANCount       int    `json:"vlan_count"`
	NodeCount       int    `json:"node_count"`
	ComplexityScore int    `json:"complexity_score"`
	ComplexityLevel string `json:"complexity_level"`
}

// EPGComplexity scores each EPG by its path attachment spread, VLAN
// diversity, and node fan-out. Results are sorted by score, most complex
// first.
func EPGComplexity(ctx context.Context, g *graph.Graph) ([]EPGComplexityScore, error) {
	paths := g.OfType(record.TypePathAttachment)

	var results []EPGComplexityScore
	for _, er := range g.OfType(record.TypeEPG) {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		epg := er.AsEPG()

		pathCount := 0
		vlans := map[int]bool{}
		nodes := map[string]bool{}
		for _, pr := range paths {
			if !strings.Contains(pr.Dn, epg.Dn) {
				continue
			}
			pathCount++
			path := pr.AsPathAttachment()
			if vlan, ok := record.VLANID(path.Encap); ok {
				vlans[vlan] = true
			}
			if node := record.NodeID(path.TargetDn); node != "" {
				nodes[node] = true
			}
		}

		score := epgComplexityScore(pathCount, len(vlans), len(nodes))
		results = append(results, EPGComplexityScore{
			EPGName:         epg.Name,
			Tenant:          record.Tenant(epg.Dn),
			BridgeDomain:    epg.BridgeDomain,
			PathCount:       pathCount,
			VLANCount:       len(vlans),
			NodeCount:       len(nodes),
			ComplexityScore: score,
			ComplexityLevel: complexityLevel(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ComplexityScore > results[j].ComplexityScore
	})
	return results, nil
}

func epgComplexityScore(pathCount, vlanCount, nodeCount int) int {
	score := 0

	switch {
	case pathCount > 20:
		score += 40
	case pathCount > 10:
		score += 30
	case pathCount > 5:
		score += 20
	default:
		score += 10
	}

	switch {
	case vlanCount > 5:
		score += 30
	case vlanCount > 2:
		score += 20
	default:
		score += 10
	}

	switch {
	case nodeCount > 10:
		score += 30
	case nodeCount > 5:
		score += 20
	default:
		score += 10
	}

	return capScore(score)
}

// ContractScope is one contract with its scope classification.
type ContractScope struct {
	ContractName string `json:"contract_name"`
	Tenant       string `json:"tenant"`
	Scope        string `json:"scope"`
	Priority     string `json:"priority"`
	Complexity   string `json:"complexity"`
}

// ContractScopes classifies each contract by its enforcement scope. Global
// scope is high complexity, tenant scope medium, VRF-local low.
func ContractScopes(ctx context.Context, g *graph.Graph) ([]ContractScope, error) {
	var results []ContractScope
	for _, cr := range g.OfType(record.TypeContract) {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		c := cr.AsContract()
		complexity := ComplexityLow
		switch c.Scope {
		case "global":
			complexity = ComplexityHigh
		case "tenant":
			complexity = ComplexityMedium
		}
		results = append(results, ContractScope{
			ContractName: c.Name,
			Tenant:       record.Tenant(c.Dn),
			Scope:        c.Scope,
			Priority:     c.Priority,
			Complexity:   complexity,
		})
	}
	return results, nil
}

// MigrationFlag is one configuration pattern that complicates migration.
type MigrationFlag struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Count          int    `json:"count"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// MigrationFlags scans for configuration patterns that complicate a
// migration: unbound EPGs, bridge domains without subnets, unused VRFs, and
// heavily shared VLANs.
func MigrationFlags(ctx context.Context, g *graph.Graph) ([]MigrationFlag, error) {
	var flags []MigrationFlag

	paths := g.OfType(record.TypePathAttachment)
	unbound := 0
	for _, er := range g.OfType(record.TypeEPG) {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		bound := false
		for _, pr := range paths {
			if strings.Contains(pr.Dn, er.Dn) {
				bound = true
				break
			}
		}
		if !bound {
			unbound++
		}
	}
	if unbound > 0 {
		flags = append(flags, MigrationFlag{
			Severity:       SeverityMedium,
			Category:       "unbound_epgs",
			Count:          unbound,
			Message:        fmt.Sprintf("%d EPGs without path attachments", unbound),
			Recommendation: "Review EPGs for unused policies or missing bindings",
		})
	}

	subnets := g.OfType(record.TypeSubnet)
	bds := g.OfType(record.TypeBridgeDomain)
	noSubnet := 0
	for _, br := range bds {
		has := false
		for _, sr := range subnets {
			if strings.Contains(sr.Dn, br.Dn) {
				has = true
				break
			}
		}
		if !has {
			noSubnet++
		}
	}
	if noSubnet > 0 {
		flags = append(flags, MigrationFlag{
			Severity:       SeverityLow,
			Category:       "bds_without_subnets",
			Count:          noSubnet,
			Message:        fmt.Sprintf("%d Bridge Domains without subnets", noSubnet),
			Recommendation: "Verify L2 vs L3 forwarding requirements",
		})
	}

	unusedVRFs := 0
	for _, vr := range g.OfType(record.TypeVRF) {
		vrf := vr.AsVRF()
		used := false
		for _, br := range bds {
			if br.AsBridgeDomain().VRF == vrf.Name {
				used = true
				break
			}
		}
		if !used {
			unusedVRFs++
		}
	}
	if unusedVRFs > 0 {
		flags = append(flags, MigrationFlag{
			Severity:       SeverityLow,
			Category:       "unused_vrfs",
			Count:          unusedVRFs,
			Message:        fmt.Sprintf("%d VRFs without Bridge Domains", unusedVRFs),
			Recommendation: "Clean up unused VRF instances before migration",
		})
	}

	vlanResult, err := VLANDistribution(ctx, g)
	if err != nil {
		return nil, err
	}
	highOverlaps := 0
	for _, o := range vlanResult.Overlaps {
		if o.Severity == SeverityHigh {
			highOverlaps++
		}
	}
	if highOverlaps > 0 {
		flags = append(flags, MigrationFlag{
			Severity:       SeverityHigh,
			Category:       "vlan_overlaps",
			Count:          highOverlaps,
			Message:        fmt.Sprintf("%d VLANs with high EPG overlap (>3 EPGs)", highOverlaps),
			Recommendation: "Review VLAN allocation strategy for migration",
		})
	}

	return flags, nil
}
