package planner

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// binding is one randomly generated EPG-to-port attachment.
type binding struct {
	EPG  int
	Node int
	VLAN int
}

func bindingGen() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 30),
		gen.IntRange(101, 112),
		gen.IntRange(100, 120),
	).Map(func(vals []interface{}) binding {
		return binding{EPG: vals[0].(int), Node: vals[1].(int), VLAN: vals[2].(int)}
	})
}

// TestWavePartitionProperties verifies that wave assignment is a total
// partition for arbitrary attachment patterns.
func TestWavePartitionProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("every EPG lands in exactly one wave", prop.ForAll(
		func(bindings []binding) bool {
			var records []record.Record
			for i, b := range bindings {
				epg := fmt.Sprintf("epg%d", b.EPG)
				dn := fmt.Sprintf("uni/tn-t/ap-a/epg-%s/rspathAtt-[topology/pod-1/paths-%d/pathep-[eth1/%d]]",
					epg, b.Node, i+1)
				records = append(records, record.Record{
					Type: record.TypePathAttachment,
					Dn:   dn,
					Attributes: map[string]string{
						"dn":    dn,
						"encap": fmt.Sprintf("vlan-%d", b.VLAN),
						"tDn":   fmt.Sprintf("topology/pod-1/node-%d/pathep-[eth1/%d]", b.Node, i+1),
					},
				})
			}
			g := graph.Build(records)

			waves, err := MigrationWaves(context.Background(), g)
			if err != nil {
				return false
			}

			// Wave counts must sum to the distinct EPG count.
			distinct := map[int]bool{}
			for _, b := range bindings {
				distinct[b.EPG] = true
			}
			counted := 0
			seen := map[string]bool{}
			for _, name := range WaveNames {
				for _, e := range waves.Waves[name] {
					if seen[e.EPG] {
						return false // EPG in two waves
					}
					seen[e.EPG] = true
					counted++
				}
			}
			return counted == len(distinct) && waves.TotalEPGs == len(distinct)
		},
		gen.SliceOf(bindingGen()),
	))

	properties.Property("effort totals are consistent with wave sizes", prop.ForAll(
		func(bindings []binding) bool {
			var records []record.Record
			for i, b := range bindings {
				epg := fmt.Sprintf("epg%d", b.EPG)
				dn := fmt.Sprintf("uni/tn-t/ap-a/epg-%s/rspathAtt-[topology/pod-1/paths-%d/pathep-[eth1/%d]]",
					epg, b.Node, i+1)
				records = append(records, record.Record{
					Type: record.TypePathAttachment,
					Dn:   dn,
					Attributes: map[string]string{
						"dn":    dn,
						"encap": fmt.Sprintf("vlan-%d", b.VLAN),
						"tDn":   fmt.Sprintf("topology/pod-1/node-%d/pathep-[eth1/%d]", b.Node, i+1),
					},
				})
			}
			g := graph.Build(records)

			waves, err := MigrationWaves(context.Background(), g)
			if err != nil {
				return false
			}
			var hours float64
			for _, s := range waves.Summary {
				if s.EPGCount != len(waves.Waves[s.Wave]) {
					return false
				}
				hours += s.EstimatedHours
			}
			return hours == waves.TotalEffortHours
		},
		gen.SliceOf(bindingGen()),
	))

	properties.TestingRun(t)
}
