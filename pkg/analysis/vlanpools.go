package analysis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// VLANRange is one encap block inside a pool.
type VLANRange struct {
	From           int    `json:"from_vlan"`
	To             int    `json:"to_vlan"`
	AllocationMode string `json:"allocation_mode"`
	Role           string `json:"role"`
	Count          int    `json:"vlan_count"`
}

// PoolDomain is a domain (physical, vmm, l3) bound to a pool.
type PoolDomain struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Dn   string `json:"dn"`
}

// PoolOverlap records the VLAN ids one pool shares with another.
type PoolOverlap struct {
	PoolName string `json:"pool_name"`
	PoolDn   string `json:"pool_dn"`
	VLANs    []int  `json:"overlapping_vlans"`
	Count    int    `json:"overlap_count"`
}

// VLANPoolInfo is the per-pool inventory row.
type VLANPoolInfo struct {
	Name                string        `json:"name"`
	Dn                  string        `json:"dn"`
	AllocationMode      string        `json:"allocation_mode"`
	Ranges              []VLANRange   `json:"ranges"`
	RangeCount          int           `json:"range_count"`
	VLANCount           int           `json:"vlan_count"`
	Fragmentation       string        `json:"fragmentation"`
	Domains             []PoolDomain  `json:"domains"`
	DomainCount         int           `json:"domain_count"`
	Overlaps            []PoolOverlap `json:"overlaps"`
	MigrationComplexity string        `json:"migration_complexity"`
}

// PoolFragmentation counts pools per fragmentation band: one range is
// contiguous, up to five is moderate, beyond that high.
type PoolFragmentation struct {
	High       int `json:"highly_fragmented"`
	Moderate   int `json:"moderately_fragmented"`
	Contiguous int `json:"contiguous"`
}

// VLANPoolsResult is the fabric-wide pool inventory.
type VLANPoolsResult struct {
	Pools               []VLANPoolInfo    `json:"pools"`
	TotalPools          int               `json:"total_pools"`
	AllocationModes     map[string]int    `json:"allocation_modes"`
	TotalVLANsAllocated int               `json:"total_vlans_allocated"`
	Fragmentation       PoolFragmentation `json:"fragmentation"`
}

// AnalyzeVLANPools inventories every namespace pool with its encap blocks,
// bound domains, cross-pool overlaps, and a per-pool migration complexity
// rating.
func AnalyzeVLANPools(ctx context.Context, g *graph.Graph) (VLANPoolsResult, error) {
	pools := g.OfType(record.TypeVLANPool)
	result := VLANPoolsResult{
		TotalPools:      len(pools),
		AllocationModes: map[string]int{"static": 0, "dynamic": 0},
	}

	for _, pr := range pools {
		if err := ctxErr(ctx); err != nil {
			return VLANPoolsResult{}, err
		}
		allocMode := pr.AttrDefault("allocMode", "static")
		if _, ok := result.AllocationModes[allocMode]; ok {
			result.AllocationModes[allocMode]++
		}

		ranges := rangesForPool(g, pr.Dn)
		vlanCount := 0
		for _, r := range ranges {
			vlanCount += r.Count
		}
		result.TotalVLANsAllocated += vlanCount

		var fragmentation string
		switch {
		case len(ranges) <= 1:
			result.Fragmentation.Contiguous++
			fragmentation = "contiguous"
		case len(ranges) <= 5:
			result.Fragmentation.Moderate++
			fragmentation = "moderate"
		default:
			result.Fragmentation.High++
			fragmentation = "high"
		}

		domains := domainsForPool(g, pr.Dn)
		overlaps := poolOverlaps(g, pr.Dn, ranges)

		result.Pools = append(result.Pools, VLANPoolInfo{
			Name:                pr.Attr("name"),
			Dn:                  pr.Dn,
			AllocationMode:      allocMode,
			Ranges:              ranges,
			RangeCount:          len(ranges),
			VLANCount:           vlanCount,
			Fragmentation:       fragmentation,
			Domains:             domains,
			DomainCount:         len(domains),
			Overlaps:            overlaps,
			MigrationComplexity: poolMigrationComplexity(allocMode, len(ranges), vlanCount, len(overlaps)),
		})
	}

	return result, nil
}

// NamespaceConflict is one VLAN id allocated to more than one domain type.
type NamespaceConflict struct {
	VLANID       int          `json:"vlan_id"`
	Domains      []PoolDomain `json:"domains"`
	ConflictType string       `json:"conflict_type"`
	Severity     string       `json:"severity"`
	Description  string       `json:"description"`
}

// PoolOverlapPair is an overlap between two named pools.
type PoolOverlapPair struct {
	Pool1    string `json:"pool1"`
	Pool2    string `json:"pool2"`
	VLANs    []int  `json:"overlapping_vlans"`
	Severity string `json:"severity"`
}

// ConflictRecommendation is a remediation suggestion for the namespace.
type ConflictRecommendation struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Action   string `json:"action"`
	Details  string `json:"details"`
}

// VLANConflictsResult is the namespace conflict report.
type VLANConflictsResult struct {
	Conflicts       []NamespaceConflict      `json:"conflicts"`
	PoolOverlaps    []PoolOverlapPair        `json:"pool_overlaps"`
	Recommendations []ConflictRecommendation `json:"recommendations"`
	ConflictCount   int                      `json:"conflict_count"`
	OverlapCount    int                      `json:"overlap_count"`
}

// DetectVLANConflicts finds overlapping pool ranges and VLAN ids allocated
// across more than one domain type.
func DetectVLANConflicts(ctx context.Context, g *graph.Graph) (VLANConflictsResult, error) {
	poolAnalysis, err := AnalyzeVLANPools(ctx, g)
	if err != nil {
		return VLANConflictsResult{}, err
	}

	var result VLANConflictsResult
	for i, p1 := range poolAnalysis.Pools {
		for _, p2 := range poolAnalysis.Pools[i+1:] {
			overlap := rangeOverlap(p1.Ranges, p2.Ranges)
			if len(overlap) == 0 {
				continue
			}
			severity := "low"
			if len(overlap) > 100 {
				severity = "high"
			} else if len(overlap) > 10 {
				severity = "medium"
			}
			result.PoolOverlaps = append(result.PoolOverlaps, PoolOverlapPair{
				Pool1:    p1.Name,
				Pool2:    p2.Name,
				VLANs:    overlap,
				Severity: severity,
			})
		}
	}

	// Per-VLAN domain bindings, expanded through each domain's pool ranges.
	vlanDomains := make(map[int]map[PoolDomain]bool)
	for _, pool := range poolAnalysis.Pools {
		if err := ctxErr(ctx); err != nil {
			return VLANConflictsResult{}, err
		}
		for _, dom := range pool.Domains {
			for _, r := range pool.Ranges {
				for id := r.From; id <= r.To; id++ {
					if vlanDomains[id] == nil {
						vlanDomains[id] = make(map[PoolDomain]bool)
					}
					vlanDomains[id][dom] = true
				}
			}
		}
	}

	var conflictIDs []int
	for id, doms := range vlanDomains {
		types := make(map[string]bool)
		for d := range doms {
			types[d.Type] = true
		}
		if len(types) > 1 {
			conflictIDs = append(conflictIDs, id)
		}
	}
	sort.Ints(conflictIDs)

	for _, id := range conflictIDs {
		var domains []PoolDomain
		types := make(map[string]bool)
		for d := range vlanDomains[id] {
			domains = append(domains, d)
			types[d.Type] = true
		}
		sort.Slice(domains, func(i, j int) bool {
			if domains[i].Type != domains[j].Type {
				return domains[i].Type < domains[j].Type
			}
			return domains[i].Name < domains[j].Name
		})
		typeNames := make([]string, 0, len(types))
		for t := range types {
			typeNames = append(typeNames, t)
		}
		sort.Strings(typeNames)
		result.Conflicts = append(result.Conflicts, NamespaceConflict{
			VLANID:       id,
			Domains:      domains,
			ConflictType: "cross_domain",
			Severity:     "high",
			Description: fmt.Sprintf("VLAN %d used in multiple domain types: %s",
				id, strings.Join(typeNames, ", ")),
		})
	}

	if len(result.PoolOverlaps) > 0 {
		result.Recommendations = append(result.Recommendations, ConflictRecommendation{
			Priority: "high",
			Category: "pool_overlap",
			Title:    fmt.Sprintf("%d VLAN pool overlaps detected", len(result.PoolOverlaps)),
			Action:   "Review and consolidate overlapping VLAN pools",
			Details:  "Overlapping pools can cause encapsulation conflicts",
		})
	}
	if len(result.Conflicts) > 0 {
		result.Recommendations = append(result.Recommendations, ConflictRecommendation{
			Priority: "critical",
			Category: "namespace_conflict",
			Title:    fmt.Sprintf("%d VLAN namespace conflicts detected", len(result.Conflicts)),
			Action:   "Resolve VLAN ID conflicts before migration",
			Details:  "Same VLAN used for different purposes in different domains",
		})
	}

	result.ConflictCount = len(result.Conflicts)
	result.OverlapCount = len(result.PoolOverlaps)
	return result, nil
}

// VLANRemap maps one VLAN id to its replacement.
type VLANRemap struct {
	OldVLAN int    `json:"old_vlan"`
	NewVLAN int    `json:"new_vlan"`
	Reason  string `json:"reason"`
}

// ConsolidationOpportunity flags a lightly used pool worth shrinking.
type ConsolidationOpportunity struct {
	PoolName       string  `json:"pool_name"`
	AllocatedVLANs int     `json:"allocated_vlans"`
	UsedVLANs      int     `json:"used_vlans"`
	Utilization    float64 `json:"utilization"`
	Recommendation string  `json:"recommendation"`
}

// VLANRiskFactor is one migration risk with its mitigation.
type VLANRiskFactor struct {
	Factor     string `json:"factor"`
	Impact     string `json:"impact"`
	Mitigation string `json:"mitigation"`
}

// VLANMigrationPlan is the re-numbering / consolidation strategy for moving
// the VLAN namespace to another platform.
type VLANMigrationPlan struct {
	Strategy      string                     `json:"migration_strategy"`
	Reasons       []string                   `json:"strategy_reasons"`
	Mapping       []VLANRemap                `json:"vlan_mapping"`
	Consolidation []ConsolidationOpportunity `json:"consolidation_opportunities"`
	RiskLevel     string                     `json:"risk_level"`
	RiskFactors   []VLANRiskFactor           `json:"risk_factors"`
	Steps         []string                   `json:"migration_steps"`
}

// renumberStart is the first VLAN id handed out when conflicts force a
// re-numbering.
const renumberStart = 2000

// PlanVLANMigration picks a migration strategy from the pool inventory,
// namespace conflicts, and observed VLAN usage. Later strategy triggers win:
// a fragmented or under-used namespace downgrades a renumbering plan to a
// consolidation plan while keeping both reasons.
func PlanVLANMigration(ctx context.Context, g *graph.Graph) (VLANMigrationPlan, error) {
	poolAnalysis, err := AnalyzeVLANPools(ctx, g)
	if err != nil {
		return VLANMigrationPlan{}, err
	}
	conflicts, err := DetectVLANConflicts(ctx, g)
	if err != nil {
		return VLANMigrationPlan{}, err
	}

	allocated := make(map[int]bool)
	for _, pool := range poolAnalysis.Pools {
		for _, r := range pool.Ranges {
			for id := r.From; id <= r.To; id++ {
				allocated[id] = true
			}
		}
	}
	used := make(map[int]bool)
	for _, pa := range g.OfType(record.TypePathAttachment) {
		if id, ok := record.VLANID(pa.Attr("encap")); ok {
			used[id] = true
		}
	}
	utilization := 0.0
	if len(allocated) > 0 {
		utilization = float64(len(used)) / float64(len(allocated)) * 100
	}

	plan := VLANMigrationPlan{Strategy: "direct_mapping"}
	if conflicts.ConflictCount > 0 {
		plan.Strategy = "renumbering_required"
		plan.Reasons = append(plan.Reasons, "Namespace conflicts detected")
	}
	if poolAnalysis.Fragmentation.High > 0 {
		plan.Strategy = "consolidation"
		plan.Reasons = append(plan.Reasons, "Highly fragmented VLAN pools")
	}
	if utilization < 50 {
		plan.Strategy = "consolidation"
		plan.Reasons = append(plan.Reasons, "Low VLAN utilization (<50%)")
	}

	if plan.Strategy == "renumbering_required" {
		next := renumberStart
		for _, c := range conflicts.Conflicts {
			plan.Mapping = append(plan.Mapping, VLANRemap{
				OldVLAN: c.VLANID,
				NewVLAN: next,
				Reason:  "Conflict resolution",
			})
			next++
		}
	}

	if plan.Strategy == "consolidation" {
		for _, pool := range poolAnalysis.Pools {
			poolVLANs := make(map[int]bool)
			for _, r := range pool.Ranges {
				for id := r.From; id <= r.To; id++ {
					poolVLANs[id] = true
				}
			}
			usedInPool := 0
			for id := range poolVLANs {
				if used[id] {
					usedInPool++
				}
			}
			poolUtil := 0.0
			if len(poolVLANs) > 0 {
				poolUtil = float64(usedInPool) / float64(len(poolVLANs)) * 100
			}
			if poolUtil < 30 && len(poolVLANs) > 50 {
				plan.Consolidation = append(plan.Consolidation, ConsolidationOpportunity{
					PoolName:       pool.Name,
					AllocatedVLANs: len(poolVLANs),
					UsedVLANs:      usedInPool,
					Utilization:    round2(poolUtil),
					Recommendation: "Consolidate with other pools or reduce range",
				})
			}
		}
	}

	if len(used) > 500 {
		plan.RiskFactors = append(plan.RiskFactors, VLANRiskFactor{
			Factor:     "High VLAN count",
			Impact:     "Complex migration with many VLAN translations",
			Mitigation: "Automate VLAN mapping with scripts",
		})
	}
	if conflicts.ConflictCount > 10 {
		plan.RiskFactors = append(plan.RiskFactors, VLANRiskFactor{
			Factor:     "Multiple namespace conflicts",
			Impact:     "Requires careful VLAN renumbering",
			Mitigation: "Plan cutover in maintenance window with rollback plan",
		})
	}
	if poolAnalysis.AllocationModes["dynamic"] > 0 {
		plan.RiskFactors = append(plan.RiskFactors, VLANRiskFactor{
			Factor:     "Dynamic VLAN allocation in use",
			Impact:     "Target platform may not support dynamic allocation",
			Mitigation: "Convert to static allocation before migration",
		})
	}
	switch {
	case len(plan.RiskFactors) > 2:
		plan.RiskLevel = "high"
	case len(plan.RiskFactors) > 0:
		plan.RiskLevel = "medium"
	default:
		plan.RiskLevel = "low"
	}

	plan.Steps = migrationSteps(plan.Strategy)
	return plan, nil
}

func rangesForPool(g *graph.Graph, poolDn string) []VLANRange {
	var ranges []VLANRange
	for _, br := range g.DescendantsOfType(poolDn, record.TypeEncapBlock) {
		from := parseVLANToken(br.AttrDefault("from", "vlan-1"))
		to := parseVLANToken(br.AttrDefault("to", "vlan-1"))
		ranges = append(ranges, VLANRange{
			From:           from,
			To:             to,
			AllocationMode: br.AttrDefault("allocMode", "inherit"),
			Role:           br.AttrDefault("role", "external"),
			Count:          to - from + 1,
		})
	}
	return ranges
}

// parseVLANToken reads "vlan-100" or a bare "100". Unparseable tokens yield 0.
func parseVLANToken(s string) int {
	if id, ok := record.VLANID(s); ok {
		return id
	}
	id, _ := strconv.Atoi(s)
	return id
}

func domainsForPool(g *graph.Graph, poolDn string) []PoolDomain {
	var domains []PoolDomain
	for _, kind := range []struct {
		domType    string
		recordType string
	}{
		{"physical", record.TypePhysDomain},
		{"vmm", record.TypeVMMDomain},
		{"l3", record.TypeL3Domain},
	} {
		for _, dom := range g.OfType(kind.recordType) {
			if domainUsesPool(g, dom.Dn, poolDn) {
				domains = append(domains, PoolDomain{
					Type: kind.domType,
					Name: dom.Attr("name"),
					Dn:   dom.Dn,
				})
			}
		}
	}
	return domains
}

func domainUsesPool(g *graph.Graph, domainDn, poolDn string) bool {
	for _, relType := range []string{
		record.TypeInfraVLANRel, record.TypeVMMVLANRel, record.TypeL3VLANRel,
	} {
		for _, rel := range g.OfType(relType) {
			if strings.HasPrefix(rel.Dn, domainDn) && rel.Attr("tDn") == poolDn {
				return true
			}
		}
	}
	return false
}

func poolOverlaps(g *graph.Graph, poolDn string, ranges []VLANRange) []PoolOverlap {
	var overlaps []PoolOverlap
	for _, other := range g.OfType(record.TypeVLANPool) {
		if other.Dn == poolDn {
			continue
		}
		otherRanges := rangesForPool(g, other.Dn)
		shared := rangeOverlap(ranges, otherRanges)
		if len(shared) == 0 {
			continue
		}
		overlaps = append(overlaps, PoolOverlap{
			PoolName: other.Attr("name"),
			PoolDn:   other.Dn,
			VLANs:    shared,
			Count:    len(shared),
		})
	}
	return overlaps
}

func rangeOverlap(a, b []VLANRange) []int {
	inA := make(map[int]bool)
	for _, r := range a {
		for id := r.From; id <= r.To; id++ {
			inA[id] = true
		}
	}
	var shared []int
	seen := make(map[int]bool)
	for _, r := range b {
		for id := r.From; id <= r.To; id++ {
			if inA[id] && !seen[id] {
				shared = append(shared, id)
				seen[id] = true
			}
		}
	}
	sort.Ints(shared)
	return shared
}

// poolMigrationComplexity scores a pool: dynamic allocation +30, fragmented
// ranges +10/+20, pool size +10/+20, +15 per overlapping pool. Bands at 30
// and 60.
func poolMigrationComplexity(allocMode string, rangeCount, vlanCount, overlapCount int) string {
	score := 0
	if allocMode == "dynamic" {
		score += 30
	}
	if rangeCount > 5 {
		score += 20
	} else if rangeCount > 1 {
		score += 10
	}
	if vlanCount > 500 {
		score += 20
	} else if vlanCount > 100 {
		score += 10
	}
	score += overlapCount * 15

	if score < 30 {
		return "low"
	}
	if score < 60 {
		return "medium"
	}
	return "high"
}

func migrationSteps(strategy string) []string {
	switch strategy {
	case "direct_mapping":
		return []string{
			"1. Document current VLAN allocations",
			"2. Configure same VLAN IDs on target platform",
			"3. Migrate EPG-by-EPG with VLAN preservation",
			"4. Verify VLAN connectivity after each EPG migration",
		}
	case "renumbering_required":
		return []string{
			"1. Document all current VLAN assignments",
			"2. Generate conflict-free VLAN mapping",
			"3. Pre-configure new VLANs on target platform",
			"4. Migrate with VLAN translation (staged approach)",
			"5. Update documentation and network diagrams",
			"6. Verify end-to-end connectivity",
		}
	case "consolidation":
		return []string{
			"1. Analyze VLAN usage and identify unused VLANs",
			"2. Design consolidated VLAN scheme",
			"3. Create VLAN mapping (old to new)",
			"4. Configure target platform with optimized VLAN ranges",
			"5. Migrate with VLAN consolidation",
			"6. Reclaim unused VLAN IDs",
		}
	}
	return []string{"Custom migration plan required"}
}
