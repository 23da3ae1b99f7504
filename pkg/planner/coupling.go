// Package planner aggregates analyzer output into coupling issues, a
// migration risk score, and per-EPG migration waves.
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// Issue types emitted by the coupling analysis.
const (
	IssueMultiDevice      = "multi_device"
	IssueMixedDeviceTypes = "mixed_device_types"
	IssueSharedVLAN       = "shared_vlan"
	IssueCrossTenant      = "cross_tenant_contracts"
)

// Severity levels and their risk weights.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

var severityWeights = map[string]int{
	SeverityHigh:   10,
	SeverityMedium: 5,
	SeverityLow:    2,
}

// deviceCoupling tracks what one switch or FEX carries.
type deviceCoupling struct {
	class   string
	epgs    map[string]bool
	vlans   map[int]bool
	tenants map[string]bool
}

// epgCoupling tracks where one EPG is bound.
type epgCoupling struct {
	tenant    string
	devices   map[string]bool
	classes   map[string]bool
	vlans     map[int]bool
	pathCount int
}

// vlanCoupling tracks who shares one VLAN id.
type vlanCoupling struct {
	devices map[string]bool
	epgs    map[string]bool
	tenants map[string]bool
}

// couplingMaps are the three co-derived indexes built in one pass over the
// path attachments.
type couplingMaps struct {
	devices map[string]*deviceCoupling
	epgs    map[string]*epgCoupling
	vlans   map[int]*vlanCoupling
}

// deviceFromTarget classifies a path target as a FEX or leaf port. FEX ports
// carry a three-part interface id whose first component is the FEX id.
func deviceFromTarget(targetDn string) (device, class string) {
	nodeID := record.NodeID(targetDn)
	if nodeID == "" {
		// Static path targets address the switch as paths-<id>.
		if i := strings.Index(targetDn, "paths-"); i >= 0 {
			rest := targetDn[i+len("paths-"):]
			for _, c := range rest {
				if c < '0' || c > '9' {
					break
				}
				nodeID += string(c)
			}
		}
	}
	if fexID, ok := fexFromInterface(targetDn); ok {
		return "fex-" + fexID, "fex"
	}
	if nodeID == "" {
		return "", ""
	}
	return "leaf-" + nodeID, "leaf"
}

// fexFromInterface extracts a FEX id from an ethA/B/C interface reference.
func fexFromInterface(targetDn string) (string, bool) {
	i := strings.Index(targetDn, "eth")
	if i < 0 {
		return "", false
	}
	rest := targetDn[i+len("eth"):]
	parts := strings.SplitN(rest, "/", 4)
	if len(parts) < 3 {
		return "", false
	}
	for _, p := range parts[:3] {
		if p == "" || !allDigits(strings.TrimRight(p, "]")) {
			return "", false
		}
	}
	return parts[0], true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func buildCouplingMaps(ctx context.Context, g *graph.Graph) (couplingMaps, error) {
	maps := couplingMaps{
		devices: map[string]*deviceCoupling{},
		epgs:    map[string]*epgCoupling{},
		vlans:   map[int]*vlanCoupling{},
	}
	for _, pr := range g.OfType(record.TypePathAttachment) {
		select {
		case <-ctx.Done():
			return couplingMaps{}, ctx.Err()
		default:
		}
		path := pr.AsPathAttachment()
		epgDn := record.EPGPath(pr.Dn)
		if epgDn == "" {
			continue
		}
		tenant := record.Tenant(epgDn)
		device, class := deviceFromTarget(path.TargetDn)
		vlan, hasVLAN := record.VLANID(path.Encap)

		epg := maps.epgs[epgDn]
		if epg == nil {
			epg = &epgCoupling{
				tenant:  tenant,
				devices: map[string]bool{},
				classes: map[string]bool{},
				vlans:   map[int]bool{},
			}
			maps.epgs[epgDn] = epg
		}
		epg.pathCount++
		if hasVLAN {
			epg.vlans[vlan] = true
		}

		if device != "" {
			epg.devices[device] = true
			epg.classes[class] = true

			dev := maps.devices[device]
			if dev == nil {
				dev = &deviceCoupling{
					class:   class,
					epgs:    map[string]bool{},
					vlans:   map[int]bool{},
					tenants: map[string]bool{},
				}
				maps.devices[device] = dev
			}
			dev.epgs[epgDn] = true
			dev.tenants[tenant] = true
			if hasVLAN {
				dev.vlans[vlan] = true
			}
		}

		if hasVLAN {
			vc := maps.vlans[vlan]
			if vc == nil {
				vc = &vlanCoupling{
					devices: map[string]bool{},
					epgs:    map[string]bool{},
					tenants: map[string]bool{},
				}
				maps.vlans[vlan] = vc
			}
			vc.epgs[epgDn] = true
			vc.tenants[tenant] = true
			if device != "" {
				vc.devices[device] = true
			}
		}
	}
	return maps, nil
}

// CouplingIssue is one coupling finding.
type CouplingIssue struct {
	Type            string   `json:"issue_type"`
	Severity        string   `json:"severity"`
	EPG             string   `json:"epg,omitempty"`
	VLAN            int      `json:"vlan,omitempty"`
	Devices         []string `json:"devices,omitempty"`
	Count           int      `json:"count,omitempty"`
	Description     string   `json:"description"`
	MigrationImpact string   `json:"migration_impact"`
}

// CouplingStats aggregates the issue set.
type CouplingStats struct {
	TotalIssues          int `json:"total_issues"`
	HighSeverity         int `json:"high_severity"`
	MediumSeverity       int `json:"medium_severity"`
	LowSeverity          int `json:"low_severity"`
	MultiDeviceEPGs      int `json:"multi_device_epgs"`
	SharedVLANs          int `json:"shared_vlans"`
	CrossTenantContracts int `json:"cross_tenant_contracts"`
}

// DeviceDensity is a device carrying enough EPGs to complicate cutover.
type DeviceDensity struct {
	Device    string `json:"device"`
	EPGCount  int    `json:"epg_count"`
	VLANCount int    `json:"vlan_count"`
}

// CouplingResult is the coupling analysis output.
type CouplingResult struct {
	Issues             []CouplingIssue `json:"issues"`
	Statistics         CouplingStats   `json:"statistics"`
	MigrationRiskScore int             `json:"migration_risk_score"`
	HighDensityDevices []DeviceDensity `json:"high_density_devices"`
}

// highDensityThreshold is the EPG count above which a device is reported as
// high density.
const highDensityThreshold = 10

// Couplings classifies coupling between EPGs, devices, VLANs, and tenants.
// EPGs spanning devices, VLANs spanning EPGs, and tenant-crossing contracts
// each contribute weighted issues to the migration risk score.
func Couplings(ctx context.Context, g *graph.Graph) (CouplingResult, error) {
	maps, err := buildCouplingMaps(ctx, g)
	if err != nil {
		return CouplingResult{}, err
	}

	var result CouplingResult

	epgDns := make([]string, 0, len(maps.epgs))
	for dn := range maps.epgs {
		epgDns = append(epgDns, dn)
	}
	sort.Strings(epgDns)

	for _, dn := range epgDns {
		epg := maps.epgs[dn]
		if len(epg.devices) <= 1 {
			continue
		}
		result.Statistics.MultiDeviceEPGs++

		issueType := IssueMultiDevice
		if len(epg.classes) > 1 {
			issueType = IssueMixedDeviceTypes
		}
		severity := SeverityMedium
		if len(epg.devices) > 3 {
			severity = SeverityHigh
		}
		result.Issues = append(result.Issues, CouplingIssue{
			Type:     issueType,
			Severity: severity,
			EPG:      dn,
			Devices:  sortedKeys(epg.devices),
			Description: fmt.Sprintf("EPG %s spans %d devices",
				record.EPGName(dn), len(epg.devices)),
			MigrationImpact: "All devices must be migrated together or L2-extended",
		})
	}

	vlanIDs := make([]int, 0, len(maps.vlans))
	for vlan := range maps.vlans {
		vlanIDs = append(vlanIDs, vlan)
	}
	sort.Ints(vlanIDs)

	for _, vlan := range vlanIDs {
		vc := maps.vlans[vlan]
		if len(vc.epgs) <= 1 {
			continue
		}
		result.Statistics.SharedVLANs++
		result.Issues = append(result.Issues, CouplingIssue{
			Type:     IssueSharedVLAN,
			Severity: SeverityMedium,
			VLAN:     vlan,
			Description: fmt.Sprintf("VLAN %d is shared by %d EPGs across %d devices",
				vlan, len(vc.epgs), len(vc.devices)),
			MigrationImpact: "VLAN remapping required before independent migration",
		})
	}

	crossTenant := 0
	for _, cr := range g.OfType(record.TypeContract) {
		c := cr.AsContract()
		if c.Scope == "tenant" || c.Scope == "global" {
			crossTenant++
		}
	}
	result.Statistics.CrossTenantContracts = crossTenant
	if crossTenant > 0 {
		result.Issues = append(result.Issues, CouplingIssue{
			Type:     IssueCrossTenant,
			Severity: SeverityHigh,
			Count:    crossTenant,
			Description: fmt.Sprintf("%d contracts reach beyond their VRF scope",
				crossTenant),
			MigrationImpact: "Dependent tenants must migrate together or keep L3 reachability",
		})
	}

	score := 0
	for _, issue := range result.Issues {
		switch issue.Severity {
		case SeverityHigh:
			result.Statistics.HighSeverity++
		case SeverityMedium:
			result.Statistics.MediumSeverity++
		case SeverityLow:
			result.Statistics.LowSeverity++
		}
		score += severityWeights[issue.Severity]
	}
	if score > 100 {
		score = 100
	}
	result.MigrationRiskScore = score
	result.Statistics.TotalIssues = len(result.Issues)

	for _, device := range sortedKeys2(maps.devices) {
		dev := maps.devices[device]
		if len(dev.epgs) > highDensityThreshold {
			result.HighDensityDevices = append(result.HighDensityDevices, DeviceDensity{
				Device:    device,
				EPGCount:  len(dev.epgs),
				VLANCount: len(dev.vlans),
			})
		}
	}
	sort.SliceStable(result.HighDensityDevices, func(i, j int) bool {
		return result.HighDensityDevices[i].EPGCount > result.HighDensityDevices[j].EPGCount
	})

	return result, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys2(m map[string]*deviceCoupling) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
