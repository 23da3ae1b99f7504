package translate

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// VPCDomainInfo is one switch's side of an aggregation domain.
type VPCDomainInfo struct {
	ID           string `json:"id"`
	Dn           string `json:"dn"`
	NodeID       string `json:"node_id"`
	PeerIP       string `json:"peer_ip,omitempty"`
	VirtualIP    string `json:"virtual_ip,omitempty"`
	Status       string `json:"status,omitempty"`
	Role         string `json:"role,omitempty"`
	PeerDetected bool   `json:"peer_detected"`
}

// VPCPair is two switches sharing one aggregation domain id.
type VPCPair struct {
	DomainID  string `json:"vpc_domain_id"`
	Node1     string `json:"node1"`
	Node2     string `json:"node2"`
	Node1Name string `json:"node1_name"`
	Node2Name string `json:"node2_name"`
	Status    string `json:"status"`
	VirtualIP string `json:"virtual_ip,omitempty"`
}

// VPCWarning flags a domain that cannot be translated cleanly.
type VPCWarning struct {
	DomainID string `json:"vpc_domain_id"`
	NodeID   string `json:"node_id,omitempty"`
	Message  string `json:"message"`
}

// VPCDomainsResult is the aggregation-domain inventory.
type VPCDomainsResult struct {
	Domains      []VPCDomainInfo `json:"vpc_domains"`
	Pairs        []VPCPair       `json:"vpc_pairs"`
	TotalDomains int             `json:"total_domains"`
	Warnings     []VPCWarning    `json:"warnings"`
}

// ESIMapping assigns an ethernet-segment identifier and LACP system id to
// one aggregation-domain pair. Both identifiers derive from the domain id
// so the two peers always compute the same values.
type ESIMapping struct {
	DomainID     string `json:"vpc_domain_id"`
	Pair         string `json:"vpc_pair"`
	ESI          string `json:"recommended_esi"`
	LACPSystemID string `json:"lacp_system_id"`
	Node1        string `json:"node1"`
	Node2        string `json:"node2"`
	VirtualIP    string `json:"virtual_ip,omitempty"`
}

// ESIResult is the full pair-to-segment translation.
type ESIResult struct {
	Mappings []ESIMapping `json:"esi_mappings"`
	Warnings []VPCWarning `json:"warnings"`
}

// AnalyzeVPCDomains inventories aggregation domains and pairs up the two
// nodes that share each domain id. Domains with a lone member are reported
// as warnings rather than pairs.
func AnalyzeVPCDomains(ctx context.Context, g *graph.Graph) (VPCDomainsResult, error) {
	result := VPCDomainsResult{Warnings: []VPCWarning{}}
	byID := make(map[string][]int)

	for _, dr := range g.OfType(record.TypeVPCDomain) {
		if err := ctxErr(ctx); err != nil {
			return VPCDomainsResult{}, err
		}
		dom := dr.AsVPCDomain()
		info := VPCDomainInfo{
			ID:        dom.ID,
			Dn:        dr.Dn,
			NodeID:    record.NodeID(dr.Dn),
			PeerIP:    dom.PeerIP,
			VirtualIP: dom.VirtualIP,
			Status:    dom.OperSt,
			Role:      dom.Role,
		}
		result.Domains = append(result.Domains, info)
		if dom.ID != "" {
			byID[dom.ID] = append(byID[dom.ID], len(result.Domains)-1)
		}
	}
	result.TotalDomains = len(result.Domains)

	for _, id := range sortedDomainIDs(byID) {
		members := byID[id]
		switch len(members) {
		case 2:
			a, b := &result.Domains[members[0]], &result.Domains[members[1]]
			status := "degraded"
			if a.Status == "up" && b.Status == "up" {
				status = "active"
			}
			result.Pairs = append(result.Pairs, VPCPair{
				DomainID:  id,
				Node1:     a.NodeID,
				Node2:     b.NodeID,
				Node1Name: nodeName(g, a.NodeID),
				Node2Name: nodeName(g, b.NodeID),
				Status:    status,
				VirtualIP: a.VirtualIP,
			})
			a.PeerDetected = true
			b.PeerDetected = true
		case 1:
			m := result.Domains[members[0]]
			result.Warnings = append(result.Warnings, VPCWarning{
				DomainID: id,
				NodeID:   m.NodeID,
				Message:  fmt.Sprintf("VPC domain %s has only one member", id),
			})
		}
	}

	return result, nil
}

// MapESI translates every aggregation-domain pair into an ethernet-segment
// identifier plus matching LACP system id. Single-member domain warnings
// are carried through.
func MapESI(ctx context.Context, g *graph.Graph) (ESIResult, error) {
	domains, err := AnalyzeVPCDomains(ctx, g)
	if err != nil {
		return ESIResult{}, err
	}

	result := ESIResult{Warnings: domains.Warnings}
	for _, pair := range domains.Pairs {
		id, err := strconv.Atoi(pair.DomainID)
		if err != nil {
			result.Warnings = append(result.Warnings, VPCWarning{
				DomainID: pair.DomainID,
				Message:  fmt.Sprintf("VPC domain id %q is not numeric, cannot derive ESI", pair.DomainID),
			})
			continue
		}
		result.Mappings = append(result.Mappings, ESIMapping{
			DomainID:     pair.DomainID,
			Pair:         fmt.Sprintf("%s <-> %s", pair.Node1Name, pair.Node2Name),
			ESI:          fmt.Sprintf("00:00:00:00:00:00:%04x:00:00", id),
			LACPSystemID: fmt.Sprintf("00:00:00:00:%04x", id),
			Node1:        pair.Node1,
			Node2:        pair.Node2,
			VirtualIP:    pair.VirtualIP,
		})
	}

	return result, nil
}

func sortedDomainIDs(byID map[string][]int) []string {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func nodeName(g *graph.Graph, nodeID string) string {
	if nodeID == "" {
		return ""
	}
	for _, nr := range g.OfType(record.TypeFabricNode) {
		node := nr.AsFabricNode()
		if node.ID == nodeID && node.Name != "" {
			return node.Name
		}
	}
	return "node-" + nodeID
}
