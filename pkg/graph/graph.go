// Package graph builds an immutable relationship graph over a fabric
// configuration export. Records are indexed by dn, bucketed by type, and
// held in a sorted dn index so ancestry queries are range scans.
package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/nwade/fabriclens/pkg/logging"
	"github.com/nwade/fabriclens/pkg/metrics"
	"github.com/nwade/fabriclens/pkg/record"
)

// Graph is an immutable index over a set of records. All query methods are
// safe for concurrent use.
type Graph struct {
	byDn   map[string]record.Record
	byType map[string][]record.Record
	dns    []string

	duplicates int
}

// Build indexes records into a Graph. Duplicate dns keep the last record seen.
func Build(records []record.Record) *Graph {
	return BuildWithLogger(records, logging.NewNopLogger())
}

// BuildWithLogger is Build with duplicate-dn warnings routed to log.
func BuildWithLogger(records []record.Record, log logging.Logger) *Graph {
	start := time.Now()
	g := &Graph{
		byDn:   make(map[string]record.Record, len(records)),
		byType: make(map[string][]record.Record),
	}
	for _, r := range records {
		if r.Dn == "" {
			continue
		}
		if prev, ok := g.byDn[r.Dn]; ok {
			g.duplicates++
			log.Warn("duplicate dn, keeping last record",
				logging.Dn(r.Dn),
				logging.RecordType(r.Type),
				logging.String("previous_type", prev.Type))
			// Replace in the type bucket rather than appending twice.
			g.replaceInBucket(prev, r)
			g.byDn[r.Dn] = r
			continue
		}
		g.byDn[r.Dn] = r
		g.byType[r.Type] = append(g.byType[r.Type], r)
	}
	g.dns = make([]string, 0, len(g.byDn))
	for dn := range g.byDn {
		g.dns = append(g.dns, dn)
	}
	sort.Strings(g.dns)

	metrics.GraphBuildDuration.Observe(time.Since(start).Seconds())
	metrics.GraphRecordsTotal.Set(float64(len(g.byDn)))
	metrics.GraphDuplicateDns.Add(float64(g.duplicates))
	return g
}

func (g *Graph) replaceInBucket(prev, next record.Record) {
	bucket := g.byType[prev.Type]
	for i, r := range bucket {
		if r.Dn == prev.Dn {
			if prev.Type == next.Type {
				bucket[i] = next
				return
			}
			g.byType[prev.Type] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if prev.Type != next.Type {
		g.byType[next.Type] = append(g.byType[next.Type], next)
	}
}

// Len reports the number of distinct dns indexed.
func (g *Graph) Len() int { return len(g.byDn) }

// Duplicates reports how many duplicate dns were collapsed during Build.
func (g *Graph) Duplicates() int { return g.duplicates }

// Lookup returns the record at dn.
func (g *Graph) Lookup(dn string) (record.Record, bool) {
	r, ok := g.byDn[dn]
	return r, ok
}

// OfType returns all records of the given type tag in insertion order.
// The returned slice is shared; callers must not mutate it.
func (g *Graph) OfType(t string) []record.Record {
	return g.byType[t]
}

// Types returns the distinct type tags present, sorted.
func (g *Graph) Types() []string {
	out := make([]string, 0, len(g.byType))
	for t := range g.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// descendantRange returns the half-open index range of dns strictly under dn.
func (g *Graph) descendantRange(dn string) (int, int) {
	prefix := dn + "/"
	lo := sort.SearchStrings(g.dns, prefix)
	hi := lo
	for hi < len(g.dns) && strings.HasPrefix(g.dns[hi], prefix) {
		hi++
	}
	return lo, hi
}

// Descendants returns every record whose dn is strictly under dn, in dn order.
func (g *Graph) Descendants(dn string) []record.Record {
	lo, hi := g.descendantRange(dn)
	if lo == hi {
		return nil
	}
	out := make([]record.Record, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, g.byDn[g.dns[i]])
	}
	return out
}

// DescendantsOfType returns descendants of dn restricted to one type tag.
func (g *Graph) DescendantsOfType(dn, t string) []record.Record {
	lo, hi := g.descendantRange(dn)
	var out []record.Record
	for i := lo; i < hi; i++ {
		if r := g.byDn[g.dns[i]]; r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Children returns the immediate children of dn, in dn order.
func (g *Graph) Children(dn string) []record.Record {
	lo, hi := g.descendantRange(dn)
	var out []record.Record
	depth := strings.Count(dn, "/") + 1
	for i := lo; i < hi; i++ {
		child := g.dns[i]
		if strings.Count(child, "/") == depth {
			out = append(out, g.byDn[child])
		}
	}
	return out
}

// IsAncestor reports whether a is b or a containing dn of b.
func (g *Graph) IsAncestor(a, b string) bool {
	return record.IsAncestor(a, b)
}

// AncestorOfType walks up the dn path looking for an indexed record of type t.
func (g *Graph) AncestorOfType(dn, t string) (record.Record, bool) {
	for {
		idx := strings.LastIndex(dn, "/")
		if idx < 0 {
			return record.Record{}, false
		}
		dn = dn[:idx]
		if r, ok := g.byDn[dn]; ok && r.Type == t {
			return r, true
		}
	}
}
