package graph

import (
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nwade/fabriclens/pkg/metrics"
	"github.com/nwade/fabriclens/pkg/record"
)

func rec(t, dn string, attrs map[string]string) record.Record {
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrs["dn"] = dn
	return record.Record{Type: t, Attributes: attrs, Dn: dn}
}

func fabricFixture() *Graph {
	return Build([]record.Record{
		rec(record.TypeTenant, "uni/tn-prod", map[string]string{"name": "prod"}),
		rec(record.TypeBridgeDomain, "uni/tn-prod/BD-web", map[string]string{"name": "web"}),
		rec(record.TypeSubnet, "uni/tn-prod/BD-web/subnet-[10.0.0.1/24]", map[string]string{"ip": "10.0.0.1/24"}),
		rec(record.TypeEPG, "uni/tn-prod/ap-app1/epg-frontend", map[string]string{"name": "frontend"}),
		rec(record.TypeProvider, "uni/tn-prod/ap-app1/epg-frontend/rsprov-web-svc",
			map[string]string{"tnVzBrCPName": "web-svc"}),
		rec(record.TypeConsumer, "uni/tn-prod/ap-app1/epg-backend/rscons-web-svc",
			map[string]string{"tnVzBrCPName": "web-svc"}),
		rec(record.TypeContract, "uni/tn-prod/brc-web-svc", map[string]string{"name": "web-svc"}),
		rec(record.TypeSubject, "uni/tn-prod/brc-web-svc/subj-http", map[string]string{"name": "http"}),
		rec(record.TypeSubjFilterAtt, "uni/tn-prod/brc-web-svc/subj-http/rssubjFiltAtt-allow-http",
			map[string]string{"tnVzFilterName": "allow-http"}),
		rec(record.TypeL3Out, "uni/tn-prod/out-wan", map[string]string{"name": "wan"}),
		rec(record.TypeVRFRelation, "uni/tn-prod/out-wan/rsectx",
			map[string]string{"tnFvCtxName": "prod-vrf"}),
		rec(record.TypeNodeAtt, "uni/tn-prod/out-wan/lnodep-border/rsnodeL3OutAtt-[topology/pod-1/node-101]",
			map[string]string{"tDn": "topology/pod-1/node-101"}),
	})
}

func TestBuildIndexesByDnAndType(t *testing.T) {
	g := fabricFixture()

	if g.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", g.Len())
	}
	r, ok := g.Lookup("uni/tn-prod/BD-web")
	if !ok || r.Type != record.TypeBridgeDomain {
		t.Fatalf("Lookup BD: ok=%v type=%q", ok, r.Type)
	}
	if got := len(g.OfType(record.TypeEPG)); got != 1 {
		t.Errorf("OfType(fvAEPg) = %d records, want 1", got)
	}
	if _, ok := g.Lookup("uni/tn-missing"); ok {
		t.Error("Lookup of absent dn should miss")
	}
}

func TestDuplicateDnLastWins(t *testing.T) {
	g := Build([]record.Record{
		rec(record.TypeEPG, "uni/tn-a/ap-x/epg-y", map[string]string{"name": "old"}),
		rec(record.TypeEPG, "uni/tn-a/ap-x/epg-y", map[string]string{"name": "new"}),
	})
	if g.Duplicates() != 1 {
		t.Fatalf("Duplicates() = %d, want 1", g.Duplicates())
	}
	r, _ := g.Lookup("uni/tn-a/ap-x/epg-y")
	if r.Attr("name") != "new" {
		t.Errorf("kept record name = %q, want last-wins", r.Attr("name"))
	}
	if got := len(g.OfType(record.TypeEPG)); got != 1 {
		t.Errorf("type bucket holds %d records after collapse, want 1", got)
	}
}

func TestDescendantsAndChildren(t *testing.T) {
	g := fabricFixture()

	desc := g.Descendants("uni/tn-prod/BD-web")
	if len(desc) != 1 || desc[0].Type != record.TypeSubnet {
		t.Fatalf("Descendants(BD) = %v", desc)
	}

	// Sibling with a shared name prefix must not leak into the range.
	g2 := Build([]record.Record{
		rec(record.TypeBridgeDomain, "uni/tn-a/BD-web", nil),
		rec(record.TypeBridgeDomain, "uni/tn-a/BD-web2", nil),
		rec(record.TypeSubnet, "uni/tn-a/BD-web/subnet-[10.1.0.1/24]", nil),
	})
	if got := len(g2.Descendants("uni/tn-a/BD-web")); got != 1 {
		t.Errorf("prefix sibling leaked: got %d descendants", got)
	}

	kids := g.Children("uni/tn-prod")
	names := map[string]bool{}
	for _, k := range kids {
		names[k.Dn] = true
	}
	if !names["uni/tn-prod/BD-web"] || !names["uni/tn-prod/brc-web-svc"] {
		t.Errorf("Children(tenant) missing direct children: %v", names)
	}
	if names["uni/tn-prod/BD-web/subnet-[10.0.0.1/24]"] {
		t.Error("Children(tenant) must not include grandchildren")
	}
}

func TestAncestorOfType(t *testing.T) {
	g := fabricFixture()
	r, ok := g.AncestorOfType("uni/tn-prod/BD-web/subnet-[10.0.0.1/24]", record.TypeTenant)
	if !ok || r.Dn != "uni/tn-prod" {
		t.Fatalf("AncestorOfType = %v, %v", r.Dn, ok)
	}
	if _, ok := g.AncestorOfType("uni/tn-prod", record.TypeVRF); ok {
		t.Error("no VRF ancestor expected")
	}
}

func TestContractBindings(t *testing.T) {
	g := fabricFixture()

	prov := g.ProvidersOf("web-svc")
	want := []string{"uni/tn-prod/ap-app1/epg-frontend"}
	if !reflect.DeepEqual(prov, want) {
		t.Errorf("ProvidersOf = %v, want %v", prov, want)
	}

	cons := g.ConsumersOf("web-svc")
	if len(cons) != 1 || cons[0] != "uni/tn-prod/ap-app1/epg-backend" {
		t.Errorf("ConsumersOf = %v", cons)
	}

	if got := g.ProvidersOf("absent"); got != nil {
		t.Errorf("ProvidersOf(absent) = %v, want nil", got)
	}
}

func TestSubjectFilters(t *testing.T) {
	g := fabricFixture()
	got := g.SubjectFilters("uni/tn-prod/brc-web-svc/subj-http")
	want := []string{"uni/tn-prod/flt-allow-http"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SubjectFilters = %v, want %v", got, want)
	}
}

func TestL3OutRelations(t *testing.T) {
	g := fabricFixture()
	if vrf := g.VRFForL3Out("uni/tn-prod/out-wan"); vrf != "prod-vrf" {
		t.Errorf("VRFForL3Out = %q", vrf)
	}
	nodes := g.NodesForL3Out("uni/tn-prod/out-wan")
	if len(nodes) != 1 || nodes[0] != "101" {
		t.Errorf("NodesForL3Out = %v", nodes)
	}
	if vrf := g.VRFForL3Out("uni/tn-prod/out-missing"); vrf != "" {
		t.Errorf("unbound L3Out should yield empty VRF, got %q", vrf)
	}
}

func TestEmptyGraphQueriesAreTotal(t *testing.T) {
	g := Build(nil)
	if g.Len() != 0 {
		t.Fatalf("Len() = %d", g.Len())
	}
	if got := g.Descendants("uni/tn-a"); got != nil {
		t.Errorf("Descendants on empty graph = %v", got)
	}
	if got := g.OfType(record.TypeEPG); got != nil {
		t.Errorf("OfType on empty graph = %v", got)
	}
}

func TestBuildRecordsMetrics(t *testing.T) {
	dupBefore := testutil.ToFloat64(metrics.GraphDuplicateDns)

	g := Build([]record.Record{
		rec(record.TypeTenant, "uni/tn-prod", nil),
		rec(record.TypeEPG, "uni/tn-prod/ap-a/epg-web", nil),
		rec(record.TypeEPG, "uni/tn-prod/ap-a/epg-web", nil),
	})

	if got := testutil.ToFloat64(metrics.GraphRecordsTotal); got != float64(g.Len()) {
		t.Errorf("records gauge = %v, want %d", got, g.Len())
	}
	if got := testutil.ToFloat64(metrics.GraphDuplicateDns); got != dupBefore+1 {
		t.Errorf("duplicate counter = %v, want %v", got, dupBefore+1)
	}
}
