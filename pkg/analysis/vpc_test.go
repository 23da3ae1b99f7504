package analysis

import (
	"context"
	"reflect"
	"testing"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

func pathOn(epg, node, vlan, port string) record.Record {
	dn := "uni/tn-prod/ap-a/epg-" + epg + "/rspathAtt-[topology/pod-1/paths-" + node + "/pathep-[" + port + "]]"
	return rec(record.TypePathAttachment, dn, map[string]string{
		"encap": "vlan-" + vlan,
		"tDn":   "topology/pod-1/node-" + node + "/pathep-[" + port + "]",
	})
}

func TestVPCSymmetrySymmetricPair(t *testing.T) {
	g := graph.Build([]record.Record{
		pathOn("web", "101", "100", "eth1/1"),
		pathOn("web", "102", "100", "eth1/2"),
	})

	result, err := VPCSymmetry(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.AsymmetricBindings) != 0 {
		t.Errorf("symmetric pair flagged: %+v", result.AsymmetricBindings)
	}
	if result.Statistics.SymmetryRate != 100 {
		t.Errorf("SymmetryRate = %v", result.Statistics.SymmetryRate)
	}
}

func TestVPCSymmetryAsymmetricPair(t *testing.T) {
	g := graph.Build([]record.Record{
		pathOn("web", "101", "100", "eth1/1"),
		pathOn("web", "101", "200", "eth1/2"),
		pathOn("web", "102", "100", "eth1/3"),
	})

	result, err := VPCSymmetry(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.AsymmetricBindings) != 1 {
		t.Fatalf("got %d asymmetric bindings, want 1", len(result.AsymmetricBindings))
	}
	b := result.AsymmetricBindings[0]
	if b.EPG != "web" || b.Node1 != "101" || b.Node2 != "102" {
		t.Errorf("binding = %+v", b)
	}
	if !reflect.DeepEqual(b.MissingInNode2, []string{"200"}) {
		t.Errorf("MissingInNode2 = %v, want [200]", b.MissingInNode2)
	}
	if len(b.MissingInNode1) != 0 {
		t.Errorf("MissingInNode1 = %v, want empty", b.MissingInNode1)
	}
	if result.Statistics.AsymmetricEPGs != 1 {
		t.Errorf("AsymmetricEPGs = %d", result.Statistics.AsymmetricEPGs)
	}
}

func TestVPCSymmetryComparesAllPairs(t *testing.T) {
	// Nodes 101 and 102 match; 103 deviates. Adjacent-only comparison in
	// sorted order would still catch this, so deviate on the middle node too.
	g := graph.Build([]record.Record{
		pathOn("web", "101", "100", "eth1/1"),
		pathOn("web", "102", "100", "eth1/2"),
		pathOn("web", "103", "100", "eth1/3"),
		pathOn("web", "101", "300", "eth1/4"),
		pathOn("web", "103", "300", "eth1/5"),
	})

	result, err := VPCSymmetry(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	// 101 vs 102 and 102 vs 103 differ; 101 vs 103 agree.
	if len(result.AsymmetricBindings) != 2 {
		t.Fatalf("got %d asymmetric pairs, want 2: %+v", len(result.AsymmetricBindings), result.AsymmetricBindings)
	}
	for _, b := range result.AsymmetricBindings {
		if b.Node1 == "101" && b.Node2 == "103" {
			t.Errorf("agreeing pair reported: %+v", b)
		}
	}
	// One EPG is asymmetric regardless of how many pairs disagree.
	if result.Statistics.AsymmetricEPGs != 1 {
		t.Errorf("AsymmetricEPGs = %d, want 1", result.Statistics.AsymmetricEPGs)
	}
}

func TestVPCSymmetryEmptyGraph(t *testing.T) {
	result, err := VPCSymmetry(context.Background(), graph.Build(nil))
	if err != nil {
		t.Fatal(err)
	}
	if result.Statistics.SymmetryRate != 100 {
		t.Errorf("empty graph SymmetryRate = %v, want 100", result.Statistics.SymmetryRate)
	}
}
