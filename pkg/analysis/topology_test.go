package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

func rec(t, dn string, attrs map[string]string) record.Record {
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrs["dn"] = dn
	return record.Record{Type: t, Attributes: attrs, Dn: dn}
}

// fexFixture builds a leaf with one FEX carrying upPorts up interfaces and
// downPorts down interfaces.
func fexFixture(model string, upPorts, downPorts int) *graph.Graph {
	records := []record.Record{
		rec(record.TypeFabricNode, "topology/pod-1/node-101",
			map[string]string{"id": "101", "name": "leaf-101", "role": "leaf", "serial": "LEAF101"}),
		rec(record.TypeFex, "topology/pod-1/node-101/sys/extch-201",
			map[string]string{"id": "201", "ser": "FEX201", "model": model, "operSt": "up"}),
	}
	port := 1
	for i := 0; i < upPorts; i++ {
		records = append(records, rec(record.TypePhysIf,
			fmt.Sprintf("topology/pod-1/node-101/sys/phys-[eth201/1/%d]", port),
			map[string]string{"id": fmt.Sprintf("eth201/1/%d", port), "operSt": "up"}))
		port++
	}
	for i := 0; i < downPorts; i++ {
		records = append(records, rec(record.TypePhysIf,
			fmt.Sprintf("topology/pod-1/node-101/sys/phys-[eth201/1/%d]", port),
			map[string]string{"id": fmt.Sprintf("eth201/1/%d", port), "operSt": "down"}))
		port++
	}
	return graph.Build(records)
}

func TestPortUtilizationWorkedExample(t *testing.T) {
	// 48-port model with 10 connected interfaces: 20.83% utilized, in the
	// monitor band.
	g := fexFixture("N2K-C2248TP-1GE", 10, 0)

	results, err := PortUtilization(context.Background(), g)
	if err != nil {
		t.Fatalf("PortUtilization: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.TotalPorts != 48 {
		t.Errorf("TotalPorts = %d, want 48", r.TotalPorts)
	}
	if r.ConnectedPorts != 10 {
		t.Errorf("ConnectedPorts = %d, want 10", r.ConnectedPorts)
	}
	if r.UtilizationPct != 20.83 {
		t.Errorf("UtilizationPct = %v, want 20.83", r.UtilizationPct)
	}
	if r.LeafID != "101" {
		t.Errorf("LeafID = %q, want 101", r.LeafID)
	}
	if r.Recommendation != "Monitor utilization trends" {
		t.Errorf("Recommendation = %q", r.Recommendation)
	}
}

func TestConsolidationScoreBoundaries(t *testing.T) {
	// Exactly 20% sits in the second band.
	if got := consolidationScore(20, "", 100); got != 30 {
		t.Errorf("score(20%%) = %d, want 30", got)
	}
	// Zero utilization collects the lowest-band and unused bonuses.
	if got := consolidationScore(0, "", 100); got != 50 {
		t.Errorf("score(0%%) = %d, want 50", got)
	}
	// Fully loaded device with no bonuses.
	if got := consolidationScore(90, "", 100); got != 5 {
		t.Errorf("score(90%%) = %d, want 5", got)
	}
	// Down and unused device maxes out but stays capped.
	if got := consolidationScore(0, "down", 0); got != 100 {
		t.Errorf("score(down, unused) = %d, want capped 100", got)
	}
}

func TestConsolidationRecommendationBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{80, "Strong candidate for consolidation or decommission"},
		{60, "Consider consolidation with other low-utilization FEX"},
		{40, "Monitor utilization trends"},
		{39, "Retain - adequate utilization"},
	}
	for _, c := range cases {
		if got := consolidationRecommendation(c.score); got != c.want {
			t.Errorf("recommendation(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestPortUtilizationSortedByScore(t *testing.T) {
	records := []record.Record{
		rec(record.TypeFex, "topology/pod-1/node-101/sys/extch-201",
			map[string]string{"id": "201", "model": "N2K-C2248TP", "operSt": "up"}),
		rec(record.TypeFex, "topology/pod-1/node-101/sys/extch-202",
			map[string]string{"id": "202", "model": "N2K-C2248TP", "operSt": "down"}),
	}
	for i := 1; i <= 30; i++ {
		records = append(records, rec(record.TypePhysIf,
			fmt.Sprintf("topology/pod-1/node-101/sys/phys-[eth201/1/%d]", i),
			map[string]string{"id": fmt.Sprintf("eth201/1/%d", i), "operSt": "up"}))
	}
	g := graph.Build(records)

	results, err := PortUtilization(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	// The idle, down device is the stronger candidate.
	if results[0].FexID != "202" {
		t.Errorf("first result = %s, want the down FEX", results[0].FexID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by score descending")
	}
}

func TestPortUtilizationIdempotent(t *testing.T) {
	g := fexFixture("N2K-C2232PP-10GE", 5, 3)

	first, err := PortUtilization(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	second, err := PortUtilization(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("result sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("result %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFexPortCount(t *testing.T) {
	cases := []struct {
		model string
		want  int
	}{
		{"N2K-C2248TP-1GE", 48},
		{"N2K-C2232PP-10GE", 32},
		{"N2K-C2224TP-1GE", 24},
		{"N2K-C2348UPQ-10GE", 48},
		{"SOME-FUTURE-MODEL", 48},
		{"", 48},
	}
	for _, c := range cases {
		if got := FexPortCount(c.model); got != c.want {
			t.Errorf("FexPortCount(%q) = %d, want %d", c.model, got, c.want)
		}
	}
}

func TestLeafFexMapping(t *testing.T) {
	records := []record.Record{
		rec(record.TypeFabricNode, "topology/pod-1/node-101",
			map[string]string{"id": "101", "name": "leaf-101", "role": "leaf"}),
		rec(record.TypeFabricNode, "topology/pod-1/node-102",
			map[string]string{"id": "102", "name": "leaf-102", "role": "leaf"}),
		rec(record.TypeFabricNode, "topology/pod-1/node-201",
			map[string]string{"id": "201", "name": "spine-201", "role": "spine"}),
	}
	// Three FEX on leaf 101, none on 102.
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("10%d", i+1)
		records = append(records, rec(record.TypeFex,
			fmt.Sprintf("topology/pod-1/node-101/sys/extch-%s", id),
			map[string]string{"id": id, "ser": "F" + id, "model": "N2K-C2248TP"}))
	}
	g := graph.Build(records)

	result, err := LeafFexMapping(context.Background(), g, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result.Statistics.TotalLeafs != 2 {
		t.Errorf("TotalLeafs = %d, want 2 (spine excluded)", result.Statistics.TotalLeafs)
	}
	if result.Statistics.TotalFex != 3 {
		t.Errorf("TotalFex = %d", result.Statistics.TotalFex)
	}
	if result.Statistics.AvgFexPerLeaf != 1.5 {
		t.Errorf("AvgFexPerLeaf = %v, want 1.5", result.Statistics.AvgFexPerLeaf)
	}
	if result.Statistics.OverloadedLeafs != 1 {
		t.Errorf("OverloadedLeafs = %d, want 1 at threshold 2", result.Statistics.OverloadedLeafs)
	}
	for _, m := range result.Mappings {
		switch m.LeafID {
		case "101":
			if m.FexCount != 3 || !m.Overloaded {
				t.Errorf("leaf 101 = %+v", m)
			}
		case "102":
			if m.FexCount != 0 || m.Overloaded {
				t.Errorf("leaf 102 = %+v", m)
			}
		}
	}
}

func TestLeafFexMappingDefaultThreshold(t *testing.T) {
	records := []record.Record{
		rec(record.TypeFabricNode, "topology/pod-1/node-101",
			map[string]string{"id": "101", "role": "leaf"}),
	}
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("1%02d", i)
		records = append(records, rec(record.TypeFex,
			fmt.Sprintf("topology/pod-1/node-101/sys/extch-%s", id),
			map[string]string{"id": id}))
	}
	g := graph.Build(records)

	result, err := LeafFexMapping(context.Background(), g, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Exactly 12 FEX is at the default threshold, not over it.
	if result.Statistics.OverloadedLeafs != 0 {
		t.Errorf("12 FEX should not overload the default threshold")
	}
}

func TestAnalyzersHonorCancellation(t *testing.T) {
	g := fexFixture("N2K-C2248TP", 4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := PortUtilization(ctx, g); err == nil {
		t.Error("PortUtilization ignored cancelled context")
	}
	if _, err := LeafFexMapping(ctx, g, 0); err == nil {
		t.Error("LeafFexMapping ignored cancelled context")
	}
}
