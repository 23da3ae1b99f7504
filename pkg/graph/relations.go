package graph

import (
	"fmt"
	"strings"

	"github.com/nwade/fabriclens/pkg/record"
)

// ProvidersOf returns the dns of EPGs that provide the named contract.
// The EPG dn is recovered by stripping the relation segment from the
// fvRsProv dn.
func (g *Graph) ProvidersOf(contract string) []string {
	return g.contractBindings(record.TypeProvider, "/rsprov-", contract)
}

// ConsumersOf returns the dns of EPGs that consume the named contract.
func (g *Graph) ConsumersOf(contract string) []string {
	return g.contractBindings(record.TypeConsumer, "/rscons-", contract)
}

func (g *Graph) contractBindings(relType, relSegment, contract string) []string {
	var out []string
	for _, r := range g.byType[relType] {
		if r.Attr("tnVzBrCPName") != contract {
			continue
		}
		epgDn := record.Parent(r.Dn, relSegment)
		if epgDn != "" {
			out = append(out, epgDn)
		}
	}
	return out
}

// SubjectFilters returns the constructed filter dns referenced by a contract
// subject through its vzRsSubjFiltAtt children.
func (g *Graph) SubjectFilters(subjectDn string) []string {
	tenant := record.Tenant(subjectDn)
	var out []string
	for _, r := range g.DescendantsOfType(subjectDn, record.TypeSubjFilterAtt) {
		name := r.Attr("tnVzFilterName")
		if name == "" {
			continue
		}
		out = append(out, fmt.Sprintf("uni/tn-%s/flt-%s", tenant, name))
	}
	return out
}

// VRFForL3Out resolves the VRF name an L3Out is bound to via its l3extRsEctx
// child. Empty when unbound.
func (g *Graph) VRFForL3Out(l3outDn string) string {
	for _, r := range g.DescendantsOfType(l3outDn, record.TypeVRFRelation) {
		if name := r.Attr("tnFvCtxName"); name != "" {
			return name
		}
	}
	return ""
}

// NodesForL3Out returns the border leaf node ids attached to an L3Out through
// its node profiles.
func (g *Graph) NodesForL3Out(l3outDn string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range g.DescendantsOfType(l3outDn, record.TypeNodeAtt) {
		target := r.Attr("tDn")
		if target == "" {
			target = r.Dn
		}
		id := record.NodeID(target)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// TenantOf returns the tenant token of a dn, falling back to "unknown".
func (g *Graph) TenantOf(dn string) string {
	return record.Tenant(dn)
}

// EPGsUnderTenant returns EPG records whose dn sits under the tenant dn.
func (g *Graph) EPGsUnderTenant(tenantDn string) []record.Record {
	var out []record.Record
	for _, r := range g.byType[record.TypeEPG] {
		if record.IsAncestor(tenantDn, r.Dn) {
			out = append(out, r)
		}
	}
	return out
}

// PathAttachmentsOf returns the path attachments under an EPG dn.
func (g *Graph) PathAttachmentsOf(epgDn string) []record.Record {
	return g.DescendantsOfType(epgDn, record.TypePathAttachment)
}

// HasServiceGraphs reports whether any contract carries a service graph
// attachment.
func (g *Graph) HasServiceGraphs() bool {
	if len(g.byType[record.TypeServiceGraph]) > 0 {
		return true
	}
	for _, r := range g.byType[record.TypeContract] {
		if strings.Contains(r.Dn, "/rtgraphatt") {
			return true
		}
	}
	return false
}
