package translate

import (
	"context"
	"testing"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

func overlayFixture() *graph.Graph {
	return graph.Build([]record.Record{
		// dn order differs from name order on purpose: allocation must
		// follow the name sort.
		rec(record.TypeVRF, "uni/tn-prod/ctx-1", map[string]string{"name": "zeta"}),
		rec(record.TypeVRF, "uni/tn-prod/ctx-2", map[string]string{"name": "alpha"}),
		rec(record.TypeBridgeDomain, "uni/tn-prod/BD-1",
			map[string]string{"name": "bd-web", "vrf": "alpha"}),
		rec(record.TypeBridgeDomain, "uni/tn-prod/BD-2",
			map[string]string{"name": "bd-app", "vrf": "alpha"}),
		rec(record.TypeSubnet, "uni/tn-prod/BD-2/subnet-[10.2.0.1/24]",
			map[string]string{"ip": "10.2.0.1/24", "scope": "public"}),
		rec(record.TypeEPG, "uni/tn-prod/ap-a/epg-app",
			map[string]string{"name": "app", "bd": "bd-app"}),
		// Same bd name in another tenant with no bridge domain there: the
		// EPG must stay unmapped instead of borrowing tn-prod's ids.
		rec(record.TypeEPG, "uni/tn-dev/ap-a/epg-app",
			map[string]string{"name": "app", "bd": "bd-app"}),
	})
}

func TestMapOverlayNameSortedAllocation(t *testing.T) {
	mapping, err := MapOverlay(context.Background(), overlayFixture())
	if err != nil {
		t.Fatal(err)
	}

	alpha := mapping.L3VNIs["uni/tn-prod/ctx-2"]
	zeta := mapping.L3VNIs["uni/tn-prod/ctx-1"]
	if alpha.VNI != 50000 || zeta.VNI != 50001 {
		t.Errorf("L3 VNIs: alpha=%d zeta=%d, want name-sorted 50000/50001", alpha.VNI, zeta.VNI)
	}
	if alpha.RTImport != "50000:50000" || alpha.RTExport != "50000:50000" {
		t.Errorf("alpha RT = %s / %s", alpha.RTImport, alpha.RTExport)
	}
	if alpha.RD != "auto" {
		t.Errorf("alpha RD = %q", alpha.RD)
	}

	app := mapping.L2VNIs["uni/tn-prod/BD-2"]
	web := mapping.L2VNIs["uni/tn-prod/BD-1"]
	if app.VNI != 10000 || app.VLAN != 100 {
		t.Errorf("bd-app = vni %d vlan %d, want first slot", app.VNI, app.VLAN)
	}
	if web.VNI != 10001 || web.VLAN != 101 {
		t.Errorf("bd-web = vni %d vlan %d", web.VNI, web.VLAN)
	}
	if len(app.Subnets) != 1 || app.Subnets[0].IP != "10.2.0.1/24" || app.Subnets[0].Scope != "public" {
		t.Errorf("bd-app subnets = %+v", app.Subnets)
	}
	if !app.ARPSuppression {
		t.Error("ARP suppression not set")
	}
}

func TestMapOverlayEPGInheritsBDIds(t *testing.T) {
	mapping, err := MapOverlay(context.Background(), overlayFixture())
	if err != nil {
		t.Fatal(err)
	}

	epg, ok := mapping.VLANs["uni/tn-prod/ap-a/epg-app"]
	if !ok {
		t.Fatal("tn-prod app EPG not mapped")
	}
	if epg.VLAN != 100 || epg.L2VNI != 10000 || epg.BridgeDomain != "bd-app" {
		t.Errorf("epg mapping = %+v", epg)
	}

	if _, ok := mapping.VLANs["uni/tn-dev/ap-a/epg-app"]; ok {
		t.Error("tn-dev EPG mapped across tenants by bd name alone")
	}
}

func TestMapOverlayDeterministic(t *testing.T) {
	first, err := MapOverlay(context.Background(), overlayFixture())
	if err != nil {
		t.Fatal(err)
	}
	second, err := MapOverlay(context.Background(), overlayFixture())
	if err != nil {
		t.Fatal(err)
	}

	for dn, want := range first.L3VNIs {
		if got := second.L3VNIs[dn]; got != want {
			t.Errorf("%s: %+v != %+v", dn, got, want)
		}
	}
	for dn, want := range first.VLANs {
		if got := second.VLANs[dn]; got != want {
			t.Errorf("%s: %+v != %+v", dn, got, want)
		}
	}
}

func TestMapOverlayFromCustomStarts(t *testing.T) {
	mapping, err := MapOverlayFrom(context.Background(), overlayFixture(), OverlayStarts{
		L3VNI: 90000,
		L2VNI: 20000,
		VLAN:  2000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := mapping.L3VNIs["uni/tn-prod/ctx-2"].VNI; got != 90000 {
		t.Errorf("alpha VNI = %d, want 90000", got)
	}
	app := mapping.L2VNIs["uni/tn-prod/BD-2"]
	if app.VNI != 20000 || app.VLAN != 2000 {
		t.Errorf("bd-app = vni %d vlan %d", app.VNI, app.VLAN)
	}
}

func TestOverlayStartsZeroFallsBack(t *testing.T) {
	s := OverlayStarts{}.withDefaults()
	if s.L3VNI != L3VNIStart || s.L2VNI != L2VNIStart || s.VLAN != VLANStart {
		t.Errorf("defaults = %+v", s)
	}
}

func TestMapOverlayEmptyGraph(t *testing.T) {
	mapping, err := MapOverlay(context.Background(), graph.Build(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(mapping.L3VNIs) != 0 || len(mapping.L2VNIs) != 0 || len(mapping.VLANs) != 0 {
		t.Errorf("empty graph produced mappings: %+v", mapping)
	}
}
