package translate

import (
	"context"
	"testing"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

func vpcFixture() *graph.Graph {
	return graph.Build([]record.Record{
		rec(record.TypeFabricNode, "topology/pod-1/node-101",
			map[string]string{"id": "101", "name": "leaf-101", "role": "leaf"}),
		rec(record.TypeFabricNode, "topology/pod-1/node-102",
			map[string]string{"id": "102", "name": "leaf-102", "role": "leaf"}),
		rec(record.TypeVPCDomain, "topology/pod-1/node-101/sys/vpc/inst/dom-101",
			map[string]string{"id": "101", "operSt": "up", "virtualIp": "10.0.0.50/32", "role": "primary"}),
		rec(record.TypeVPCDomain, "topology/pod-1/node-102/sys/vpc/inst/dom-101",
			map[string]string{"id": "101", "operSt": "up", "virtualIp": "10.0.0.50/32", "role": "secondary"}),
		// Domain with a lone member.
		rec(record.TypeVPCDomain, "topology/pod-1/node-103/sys/vpc/inst/dom-202",
			map[string]string{"id": "202", "operSt": "up"}),
	})
}

func TestAnalyzeVPCDomainsPairing(t *testing.T) {
	result, err := AnalyzeVPCDomains(context.Background(), vpcFixture())
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalDomains != 3 {
		t.Fatalf("TotalDomains = %d", result.TotalDomains)
	}
	if len(result.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(result.Pairs))
	}

	pair := result.Pairs[0]
	if pair.DomainID != "101" || pair.Node1 != "101" || pair.Node2 != "102" {
		t.Errorf("pair = %+v", pair)
	}
	if pair.Node1Name != "leaf-101" || pair.Node2Name != "leaf-102" {
		t.Errorf("pair names = %s / %s", pair.Node1Name, pair.Node2Name)
	}
	if pair.Status != "active" {
		t.Errorf("pair status = %s", pair.Status)
	}
	if pair.VirtualIP != "10.0.0.50/32" {
		t.Errorf("pair virtual ip = %s", pair.VirtualIP)
	}

	if len(result.Warnings) != 1 || result.Warnings[0].DomainID != "202" {
		t.Errorf("warnings = %+v", result.Warnings)
	}

	paired := 0
	for _, d := range result.Domains {
		if d.PeerDetected {
			paired++
		}
	}
	if paired != 2 {
		t.Errorf("peer_detected on %d domains, want 2", paired)
	}
}

func TestAnalyzeVPCDomainsDegraded(t *testing.T) {
	g := graph.Build([]record.Record{
		rec(record.TypeVPCDomain, "topology/pod-1/node-101/sys/vpc/inst/dom-7",
			map[string]string{"id": "7", "operSt": "up"}),
		rec(record.TypeVPCDomain, "topology/pod-1/node-102/sys/vpc/inst/dom-7",
			map[string]string{"id": "7", "operSt": "down"}),
	})
	result, err := AnalyzeVPCDomains(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Pairs) != 1 || result.Pairs[0].Status != "degraded" {
		t.Errorf("pairs = %+v", result.Pairs)
	}
	// No fabricNode records: names fall back to node-<id>.
	if result.Pairs[0].Node1Name != "node-101" {
		t.Errorf("Node1Name = %s", result.Pairs[0].Node1Name)
	}
}

func TestMapESI(t *testing.T) {
	result, err := MapESI(context.Background(), vpcFixture())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Mappings) != 1 {
		t.Fatalf("got %d mappings, want 1", len(result.Mappings))
	}

	m := result.Mappings[0]
	if m.ESI != "00:00:00:00:00:00:0065:00:00" {
		t.Errorf("ESI = %s", m.ESI)
	}
	if m.LACPSystemID != "00:00:00:00:0065" {
		t.Errorf("LACP system id = %s", m.LACPSystemID)
	}
	if m.Pair != "leaf-101 <-> leaf-102" {
		t.Errorf("pair label = %s", m.Pair)
	}

	// Single-member warning rides along.
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %+v", result.Warnings)
	}
}

func TestMapESINonNumericDomain(t *testing.T) {
	g := graph.Build([]record.Record{
		rec(record.TypeVPCDomain, "topology/pod-1/node-101/sys/vpc/inst/dom-x",
			map[string]string{"id": "bogus", "operSt": "up"}),
		rec(record.TypeVPCDomain, "topology/pod-1/node-102/sys/vpc/inst/dom-x",
			map[string]string{"id": "bogus", "operSt": "up"}),
	})
	result, err := MapESI(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Mappings) != 0 {
		t.Errorf("mappings = %+v", result.Mappings)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %+v", result.Warnings)
	}
}
