package translate

import (
	"context"
	"fmt"
	"sort"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// Overlay id allocation bases. L3 VNIs number routing contexts, L2 VNIs and
// VLANs number bridge domains.
const (
	L3VNIStart = 50000
	L2VNIStart = 10000
	VLANStart  = 100
)

// L3VNI is the routed overlay segment allocated for one routing context.
type L3VNI struct {
	Name     string `json:"name"`
	VNI      int    `json:"l3_vni"`
	RD       string `json:"rd"`
	RTImport string `json:"rt_import"`
	RTExport string `json:"rt_export"`
}

// OverlaySubnet is a gateway prefix carried from a bridge domain to its
// overlay segment.
type OverlaySubnet struct {
	IP    string `json:"ip"`
	Scope string `json:"scope"`
}

// L2VNI is the bridged overlay segment allocated for one bridge domain.
type L2VNI struct {
	Name           string          `json:"name"`
	VNI            int             `json:"l2_vni"`
	VLAN           int             `json:"vlan"`
	VRF            string          `json:"vrf"`
	Subnets        []OverlaySubnet `json:"subnets"`
	ARPSuppression bool            `json:"arp_suppression"`
}

// EPGVLAN is a workload grouping inheriting its bridge domain's overlay ids.
type EPGVLAN struct {
	Name         string `json:"name"`
	VLAN         int    `json:"vlan"`
	L2VNI        int    `json:"l2_vni"`
	BridgeDomain string `json:"bd"`
}

// OverlayMapping is the complete fabric-to-overlay id assignment, keyed by
// source object dn.
type OverlayMapping struct {
	L3VNIs map[string]L3VNI   `json:"l3_vnis"`
	L2VNIs map[string]L2VNI   `json:"l2_vnis"`
	VLANs  map[string]EPGVLAN `json:"vlans"`
}

// OverlayStarts overrides the allocation bases. Zero fields fall back to the
// package defaults.
type OverlayStarts struct {
	L3VNI int
	L2VNI int
	VLAN  int
}

func (s OverlayStarts) withDefaults() OverlayStarts {
	if s.L3VNI <= 0 {
		s.L3VNI = L3VNIStart
	}
	if s.L2VNI <= 0 {
		s.L2VNI = L2VNIStart
	}
	if s.VLAN <= 0 {
		s.VLAN = VLANStart
	}
	return s
}

// MapOverlay allocates overlay ids for every routing context, bridge domain,
// and workload grouping in the graph using the default bases. Allocation
// order is a stable sort on object name (dn as tie break), so the same export
// always yields the same ids regardless of input order.
func MapOverlay(ctx context.Context, g *graph.Graph) (OverlayMapping, error) {
	return MapOverlayFrom(ctx, g, OverlayStarts{})
}

// MapOverlayFrom is MapOverlay with caller-chosen allocation bases.
func MapOverlayFrom(ctx context.Context, g *graph.Graph, starts OverlayStarts) (OverlayMapping, error) {
	starts = starts.withDefaults()
	mapping := OverlayMapping{
		L3VNIs: make(map[string]L3VNI),
		L2VNIs: make(map[string]L2VNI),
		VLANs:  make(map[string]EPGVLAN),
	}

	for idx, vr := range sortByName(g.OfType(record.TypeVRF)) {
		if err := ctxErr(ctx); err != nil {
			return OverlayMapping{}, err
		}
		vrf := vr.AsVRF()
		vni := starts.L3VNI + idx
		rt := fmt.Sprintf("%d:%d", vni, vni)
		mapping.L3VNIs[vr.Dn] = L3VNI{
			Name:     vrf.Name,
			VNI:      vni,
			RD:       "auto",
			RTImport: rt,
			RTExport: rt,
		}
	}

	for idx, br := range sortByName(g.OfType(record.TypeBridgeDomain)) {
		if err := ctxErr(ctx); err != nil {
			return OverlayMapping{}, err
		}
		bd := br.AsBridgeDomain()

		var subnets []OverlaySubnet
		for _, sr := range g.DescendantsOfType(br.Dn, record.TypeSubnet) {
			subnet := sr.AsSubnet()
			subnets = append(subnets, OverlaySubnet{IP: subnet.IP, Scope: subnet.Scope})
		}

		mapping.L2VNIs[br.Dn] = L2VNI{
			Name:           bd.Name,
			VNI:            starts.L2VNI + idx,
			VLAN:           starts.VLAN + idx,
			VRF:            bd.VRF,
			Subnets:        subnets,
			ARPSuppression: true,
		}
	}

	// EPGs take the ids of their bridge domain. The bd reference is a bare
	// name, so resolution also requires tenant equality.
	for _, er := range g.OfType(record.TypeEPG) {
		epg := er.AsEPG()
		tenant := record.Tenant(er.Dn)
		for bdDn, l2 := range mapping.L2VNIs {
			if l2.Name == epg.BridgeDomain && record.Tenant(bdDn) == tenant {
				mapping.VLANs[er.Dn] = EPGVLAN{
					Name:         epg.Name,
					VLAN:         l2.VLAN,
					L2VNI:        l2.VNI,
					BridgeDomain: epg.BridgeDomain,
				}
				break
			}
		}
	}

	return mapping, nil
}

// sortByName orders records by name with dn as the tie break. OfType shares
// its backing slice, so sort a copy.
func sortByName(records []record.Record) []record.Record {
	sorted := make([]record.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		ni, nj := sorted[i].Attr("name"), sorted[j].Attr("name")
		if ni != nj {
			return ni < nj
		}
		return sorted[i].Dn < sorted[j].Dn
	})
	return sorted
}
