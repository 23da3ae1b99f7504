package planner

import (
	"context"
	"sort"

	"github.com/nwade/fabriclens/pkg/graph"
)

// VLANSharingIssue describes how widely one VLAN id is shared.
type VLANSharingIssue struct {
	VLAN          int      `json:"vlan"`
	EPGCount      int      `json:"epg_count"`
	DeviceCount   int      `json:"device_count"`
	TenantCount   int      `json:"tenant_count"`
	EPGs          []string `json:"epgs"`
	Severity      string   `json:"severity"`
	MigrationRisk string   `json:"migration_risk"`
}

// VLANSharingStats aggregates VLAN sharing.
type VLANSharingStats struct {
	TotalVLANsUsed   int `json:"total_vlans_used"`
	SharedVLANs      int `json:"shared_vlans"`
	MultiTenantVLANs int `json:"multi_tenant_vlans"`
	MultiDeviceVLANs int `json:"multi_device_vlans"`
}

// VLANSharingResult is the detailed VLAN sharing analysis output.
type VLANSharingResult struct {
	SharingIssues []VLANSharingIssue `json:"sharing_issues"`
	Statistics    VLANSharingStats   `json:"statistics"`
}

// VLANSharing reports every VLAN shared by more than one EPG together with
// its device and tenant spread. Issues are sorted widest sharing first.
func VLANSharing(ctx context.Context, g *graph.Graph) (VLANSharingResult, error) {
	maps, err := buildCouplingMaps(ctx, g)
	if err != nil {
		return VLANSharingResult{}, err
	}

	var result VLANSharingResult
	result.Statistics.TotalVLANsUsed = len(maps.vlans)

	vlanIDs := make([]int, 0, len(maps.vlans))
	for vlan := range maps.vlans {
		vlanIDs = append(vlanIDs, vlan)
	}
	sort.Ints(vlanIDs)

	for _, vlan := range vlanIDs {
		vc := maps.vlans[vlan]
		if len(vc.tenants) > 1 {
			result.Statistics.MultiTenantVLANs++
		}
		if len(vc.devices) > 1 {
			result.Statistics.MultiDeviceVLANs++
		}
		if len(vc.epgs) <= 1 {
			continue
		}
		result.Statistics.SharedVLANs++

		severity := SeverityMedium
		if len(vc.epgs) > 3 {
			severity = SeverityHigh
		}
		risk := SeverityLow
		switch {
		case len(vc.tenants) > 1:
			risk = SeverityHigh
		case len(vc.devices) > 1:
			risk = SeverityMedium
		}

		result.SharingIssues = append(result.SharingIssues, VLANSharingIssue{
			VLAN:          vlan,
			EPGCount:      len(vc.epgs),
			DeviceCount:   len(vc.devices),
			TenantCount:   len(vc.tenants),
			EPGs:          sortedKeys(vc.epgs),
			Severity:      severity,
			MigrationRisk: risk,
		})
	}

	sort.SliceStable(result.SharingIssues, func(i, j int) bool {
		return result.SharingIssues[i].EPGCount > result.SharingIssues[j].EPGCount
	})
	return result, nil
}
