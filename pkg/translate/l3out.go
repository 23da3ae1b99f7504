package translate

import (
	"context"
	"sort"
	"strings"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// InterfaceProfile names an external-facing interface profile.
type InterfaceProfile struct {
	Name string `json:"name"`
	Dn   string `json:"dn"`
}

// ExternalEPGInfo is one external grouping with its reachable prefixes.
type ExternalEPGInfo struct {
	Name    string   `json:"name"`
	Dn      string   `json:"dn"`
	Subnets []string `json:"subnets"`
}

// L3OutInfo describes one external connection: routing protocols, border
// leaves, interfaces, and its migration complexity rating.
type L3OutInfo struct {
	Name                string             `json:"name"`
	Dn                  string             `json:"dn"`
	Tenant              string             `json:"tenant"`
	VRF                 string             `json:"vrf"`
	Protocols           []string           `json:"protocols"`
	BorderLeafs         []string           `json:"border_leafs"`
	BorderLeafCount     int                `json:"border_leaf_count"`
	Interfaces          []InterfaceProfile `json:"interfaces"`
	InterfaceCount      int                `json:"interface_count"`
	ExternalEPGs        []ExternalEPGInfo  `json:"external_epgs"`
	ExternalSubnetCount int                `json:"external_subnet_count"`
	MigrationComplexity string             `json:"migration_complexity"`
}

// L3OutResult is the external-connectivity inventory.
type L3OutResult struct {
	L3Outs           []L3OutInfo    `json:"l3outs"`
	TotalL3Outs      int            `json:"total_l3outs"`
	Protocols        map[string]int `json:"protocols"`
	BorderLeafs      []string       `json:"border_leafs"`
	VRFsWithExternal []string       `json:"vrfs_with_external"`
}

// AnalyzeL3Outs inventories every external connection with its routing
// protocols (detected by scanning child records), border leaves, external
// groupings, and a per-connection complexity rating.
func AnalyzeL3Outs(ctx context.Context, g *graph.Graph) (L3OutResult, error) {
	result := L3OutResult{
		Protocols: map[string]int{"bgp": 0, "ospf": 0, "static": 0, "multiple": 0, "unknown": 0},
	}
	allLeafs := make(map[string]bool)
	vrfSet := make(map[string]bool)

	for _, lr := range g.OfType(record.TypeL3Out) {
		if err := ctxErr(ctx); err != nil {
			return L3OutResult{}, err
		}
		tenant := record.TenantOrCommon(lr.Dn)

		vrf := g.VRFForL3Out(lr.Dn)
		if vrf == "" {
			vrf = "unknown"
		}

		protocols := l3outProtocols(g, lr.Dn)
		if len(protocols) > 1 {
			result.Protocols["multiple"]++
		} else {
			result.Protocols[protocols[0]]++
		}

		leafs := g.NodesForL3Out(lr.Dn)
		for _, leaf := range leafs {
			allLeafs[leaf] = true
		}

		var interfaces []InterfaceProfile
		for _, ir := range g.DescendantsOfType(lr.Dn, record.TypeIfProfile) {
			interfaces = append(interfaces, InterfaceProfile{Name: ir.Attr("name"), Dn: ir.Dn})
		}

		externalEPGs, subnetCount := externalEPGsFor(g, lr.Dn)

		result.L3Outs = append(result.L3Outs, L3OutInfo{
			Name:                lr.Attr("name"),
			Dn:                  lr.Dn,
			Tenant:              tenant,
			VRF:                 vrf,
			Protocols:           protocols,
			BorderLeafs:         leafs,
			BorderLeafCount:     len(leafs),
			Interfaces:          interfaces,
			InterfaceCount:      len(interfaces),
			ExternalEPGs:        externalEPGs,
			ExternalSubnetCount: subnetCount,
			MigrationComplexity: l3outComplexity(protocols, len(leafs), subnetCount),
		})
		vrfSet[tenant+":"+vrf] = true
	}

	result.TotalL3Outs = len(result.L3Outs)
	result.BorderLeafs = sortedSet(allLeafs)
	result.VRFsWithExternal = sortedSet(vrfSet)
	return result, nil
}

// l3outProtocols detects the routing protocols configured under an external
// connection by the presence of peer, interface, and static-route children.
func l3outProtocols(g *graph.Graph, l3outDn string) []string {
	var protocols []string
	if len(g.DescendantsOfType(l3outDn, record.TypeBGPPeer)) > 0 {
		protocols = append(protocols, "bgp")
	}
	if len(g.DescendantsOfType(l3outDn, record.TypeOSPFIf)) > 0 {
		protocols = append(protocols, "ospf")
	}
	if len(g.DescendantsOfType(l3outDn, record.TypeStaticRoute)) > 0 {
		protocols = append(protocols, "static")
	}
	if len(protocols) == 0 {
		return []string{"unknown"}
	}
	return protocols
}

// l3outComplexity scores one external connection. Protocol mixing and BGP
// weigh heaviest, then per-leaf spread and external prefix volume.
func l3outComplexity(protocols []string, borderLeafs, subnets int) string {
	score := 0
	if len(protocols) > 1 {
		score += 30
	}
	for _, p := range protocols {
		switch p {
		case "bgp":
			score += 20
		case "ospf":
			score += 15
		}
	}
	score += borderLeafs * 5
	if subnets > 30 {
		subnets = 30
	}
	score += subnets
	return complexityLevel(score)
}

func externalEPGsFor(g *graph.Graph, l3outDn string) ([]ExternalEPGInfo, int) {
	var epgs []ExternalEPGInfo
	total := 0
	for _, er := range g.DescendantsOfType(l3outDn, record.TypeExternalEPG) {
		var subnets []string
		for _, sr := range g.DescendantsOfType(er.Dn, record.TypeExtSubnet) {
			if ip := sr.Attr("ip"); ip != "" {
				subnets = append(subnets, ip)
			}
		}
		total += len(subnets)
		epgs = append(epgs, ExternalEPGInfo{Name: er.Attr("name"), Dn: er.Dn, Subnets: subnets})
	}
	return epgs, total
}

// BGPPeerInfo is one external routing neighbor with its session
// classification.
type BGPPeerInfo struct {
	PeerIP             string `json:"peer_ip"`
	RemoteAS           string `json:"remote_as"`
	LocalAS            string `json:"local_as,omitempty"`
	SessionType        string `json:"session_type"`
	L3Out              string `json:"l3out"`
	NodeID             string `json:"node_id,omitempty"`
	NodeName           string `json:"node_name"`
	AdminState         string `json:"admin_state,omitempty"`
	PasswordConfigured bool   `json:"password_configured"`
	TTLSecurity        string `json:"ttl_security,omitempty"`
	Dn                 string `json:"dn"`
}

// BGPResult summarizes BGP peering across all external connections.
type BGPResult struct {
	Peers        []BGPPeerInfo `json:"bgp_peers"`
	ASNumbers    []string      `json:"as_numbers"`
	PeerCount    int           `json:"peer_count"`
	EBGPSessions int           `json:"ebgp_sessions"`
	IBGPSessions int           `json:"ibgp_sessions"`
}

// AnalyzeBGP classifies every BGP peer as eBGP or iBGP by comparing the
// remote AS against the local AS profile covering the peer. Peers without a
// resolvable local AS stay unknown.
func AnalyzeBGP(ctx context.Context, g *graph.Graph) (BGPResult, error) {
	var result BGPResult
	asSet := make(map[string]bool)

	for _, pr := range g.OfType(record.TypeBGPPeer) {
		if err := ctxErr(ctx); err != nil {
			return BGPResult{}, err
		}
		peer := pr.AsBGPPeer()
		localAS := localASForPeer(g, pr.Dn)

		sessionType := "unknown"
		if peer.RemoteAS != "" && localAS != "" {
			if peer.RemoteAS == localAS {
				sessionType = "iBGP"
				result.IBGPSessions++
			} else {
				sessionType = "eBGP"
				result.EBGPSessions++
			}
		}

		nodeID := record.NodeID(pr.Dn)
		result.Peers = append(result.Peers, BGPPeerInfo{
			PeerIP:             peer.Addr,
			RemoteAS:           peer.RemoteAS,
			LocalAS:            localAS,
			SessionType:        sessionType,
			L3Out:              record.L3OutName(pr.Dn),
			NodeID:             nodeID,
			NodeName:           nodeName(g, nodeID),
			AdminState:         peer.AdminSt,
			PasswordConfigured: peer.Password != "",
			TTLSecurity:        peer.TTL,
			Dn:                 pr.Dn,
		})

		if peer.RemoteAS != "" {
			asSet[peer.RemoteAS] = true
		}
		if localAS != "" {
			asSet[localAS] = true
		}
	}

	result.PeerCount = len(result.Peers)
	result.ASNumbers = sortedSet(asSet)
	return result, nil
}

// localASForPeer finds the AS profile whose parent scope covers the peer dn.
func localASForPeer(g *graph.Graph, peerDn string) string {
	for _, ar := range g.OfType(record.TypeBGPASProf) {
		parent := ar.Dn
		if i := strings.LastIndex(parent, "/"); i >= 0 {
			parent = parent[:i]
		}
		if strings.HasPrefix(peerDn, parent) {
			return ar.Attr("asn")
		}
	}
	return ""
}

// OSPFInterfaceInfo is one OSPF-enabled external interface.
type OSPFInterfaceInfo struct {
	Dn             string `json:"dn"`
	L3Out          string `json:"l3out"`
	NodeID         string `json:"node_id,omitempty"`
	NodeName       string `json:"node_name"`
	Area           string `json:"area,omitempty"`
	InterfaceType  string `json:"interface_type"`
	AuthType       string `json:"authentication_type"`
	AuthConfigured bool   `json:"authentication_configured"`
}

// OSPFResult summarizes OSPF usage across all external connections.
type OSPFResult struct {
	Interfaces      []OSPFInterfaceInfo `json:"ospf_interfaces"`
	Areas           []string            `json:"areas"`
	TotalInterfaces int                 `json:"total_interfaces"`
	InterfaceTypes  map[string]int      `json:"interface_types"`
}

// AnalyzeOSPF inventories OSPF interfaces with their areas, resolved from
// the OSPF external profile of the same connection.
func AnalyzeOSPF(ctx context.Context, g *graph.Graph) (OSPFResult, error) {
	result := OSPFResult{
		InterfaceTypes: map[string]int{"p2p": 0, "broadcast": 0, "unknown": 0},
	}
	areaSet := make(map[string]bool)

	for _, ir := range g.OfType(record.TypeOSPFIf) {
		if err := ctxErr(ctx); err != nil {
			return OSPFResult{}, err
		}

		area := ospfAreaFor(g, ir.Dn)
		if area != "" {
			areaSet[area] = true
		}

		ifType := "unknown"
		lower := strings.ToLower(ir.Dn)
		switch {
		case strings.Contains(lower, "p2p"):
			ifType = "p2p"
		case strings.Contains(lower, "bcast"):
			ifType = "broadcast"
		}
		result.InterfaceTypes[ifType]++

		nodeID := record.NodeID(ir.Dn)
		result.Interfaces = append(result.Interfaces, OSPFInterfaceInfo{
			Dn:             ir.Dn,
			L3Out:          record.L3OutName(ir.Dn),
			NodeID:         nodeID,
			NodeName:       nodeName(g, nodeID),
			Area:           area,
			InterfaceType:  ifType,
			AuthType:       ir.AttrDefault("authType", "none"),
			AuthConfigured: ir.Attr("authKey") != "",
		})
	}

	result.TotalInterfaces = len(result.Interfaces)
	result.Areas = sortedSet(areaSet)
	return result, nil
}

// ospfAreaFor resolves the area of an OSPF interface. The external profile
// sits on a sibling branch under the connection, so the match is on tenant
// and connection name rather than dn prefix.
func ospfAreaFor(g *graph.Graph, ospfIfDn string) string {
	tenant := record.Tenant(ospfIfDn)
	l3out := record.L3OutName(ospfIfDn)
	for _, er := range g.OfType(record.TypeOSPFExt) {
		if record.Tenant(er.Dn) == tenant && record.L3OutName(er.Dn) == l3out {
			return er.AttrDefault("areaId", "0.0.0.0")
		}
	}
	return ""
}

// BorderLeafInfo is one switch carrying external connectivity.
type BorderLeafInfo struct {
	NodeID             string   `json:"node_id"`
	NodeName           string   `json:"node_name"`
	L3Outs             []string `json:"l3outs"`
	L3OutCount         int      `json:"l3out_count"`
	ExternalInterfaces []string `json:"external_interfaces"`
	InterfaceCount     int      `json:"interface_count"`
}

// BorderLeafResult maps every border leaf to the external connections it
// terminates.
type BorderLeafResult struct {
	BorderLeafs       []BorderLeafInfo `json:"border_leafs"`
	TotalCount        int              `json:"total_count"`
	L3OutDistribution map[int]int      `json:"l3out_distribution"`
}

// IdentifyBorderLeafs resolves which switches terminate external
// connections, via the node attachments under each connection's node
// profiles.
func IdentifyBorderLeafs(ctx context.Context, g *graph.Graph) (BorderLeafResult, error) {
	result := BorderLeafResult{L3OutDistribution: map[int]int{}}
	nodeL3Outs := make(map[string]map[string]bool)

	for _, lr := range g.OfType(record.TypeL3Out) {
		if err := ctxErr(ctx); err != nil {
			return BorderLeafResult{}, err
		}
		name := lr.Attr("name")
		for _, nodeID := range g.NodesForL3Out(lr.Dn) {
			if nodeL3Outs[nodeID] == nil {
				nodeL3Outs[nodeID] = make(map[string]bool)
			}
			nodeL3Outs[nodeID][name] = true
		}
	}

	for _, nodeID := range sortedSet(setKeysOf(nodeL3Outs)) {
		l3outs := sortedSet(nodeL3Outs[nodeID])

		var interfaces []string
		marker := "node-" + nodeID
		for _, ir := range g.OfType(record.TypeIfProfile) {
			if strings.Contains(ir.Dn, marker) {
				interfaces = append(interfaces, ir.AttrDefault("name", ir.Dn))
			}
		}

		result.BorderLeafs = append(result.BorderLeafs, BorderLeafInfo{
			NodeID:             nodeID,
			NodeName:           nodeName(g, nodeID),
			L3Outs:             l3outs,
			L3OutCount:         len(l3outs),
			ExternalInterfaces: interfaces,
			InterfaceCount:     len(interfaces),
		})
		result.L3OutDistribution[len(l3outs)]++
	}

	result.TotalCount = len(result.BorderLeafs)
	return result, nil
}

func setKeysOf(m map[string]map[string]bool) map[string]bool {
	keys := make(map[string]bool, len(m))
	for k := range m {
		keys[k] = true
	}
	return keys
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
