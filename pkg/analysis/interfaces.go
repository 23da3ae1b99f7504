package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// NeighborInfo is the device seen on the far side of a link, from LLDP or
// CDP adjacency records. LLDP wins when both protocols report.
type NeighborInfo struct {
	Device   string `json:"device"`
	Port     string `json:"port"`
	Protocol string `json:"protocol"`
}

// InterfaceInfo is one physical port with its state, neighbor, and workload
// bindings.
type InterfaceInfo struct {
	ID          string        `json:"id"`
	Dn          string        `json:"dn"`
	NodeID      string        `json:"node_id"`
	NodeName    string        `json:"node_name"`
	State       string        `json:"state"`
	AdminState  string        `json:"admin_state"`
	Speed       string        `json:"speed"`
	MTU         string        `json:"mtu,omitempty"`
	Usage       string        `json:"usage,omitempty"`
	Description string        `json:"description,omitempty"`
	Neighbor    *NeighborInfo `json:"neighbor,omitempty"`
	EPGs        []string      `json:"epgs,omitempty"`
}

// InterfaceInventoryResult is the fabric-wide port inventory.
type InterfaceInventoryResult struct {
	TotalInterfaces int             `json:"total_interfaces"`
	ByState         map[string]int  `json:"by_state"`
	BySpeed         map[string]int  `json:"by_speed"`
	Used            int             `json:"used"`
	Unused          int             `json:"unused"`
	UtilizationRate float64         `json:"utilization_rate"`
	Interfaces      []InterfaceInfo `json:"interfaces"`
}

// InterfaceInventory surveys every physical interface: operational state,
// speed distribution, discovered neighbors, and the workload groupings bound
// to each port. A down port marked for discovery counts as unused, any other
// down port as used.
func InterfaceInventory(ctx context.Context, g *graph.Graph) (InterfaceInventoryResult, error) {
	nodeNames := make(map[string]string)
	for _, nr := range g.OfType(record.TypeFabricNode) {
		n := nr.AsFabricNode()
		nodeNames[n.ID] = n.Name
	}

	result := InterfaceInventoryResult{
		ByState: map[string]int{"up": 0, "down": 0, "unused": 0, "unknown": 0},
		BySpeed: map[string]int{},
	}

	for _, ir := range g.OfType(record.TypePhysIf) {
		if err := ctxErr(ctx); err != nil {
			return InterfaceInventoryResult{}, err
		}
		phys := ir.AsPhysIf()
		result.TotalInterfaces++

		var state string
		switch phys.OperSt {
		case "up":
			state = "up"
			result.ByState["up"]++
			result.Used++
		case "down":
			if phys.Usage == "discovery" || phys.Usage == "unused" {
				state = "unused"
				result.ByState["unused"]++
				result.Unused++
			} else {
				state = "down"
				result.ByState["down"]++
				result.Used++
			}
		default:
			state = "unknown"
			result.ByState["unknown"]++
		}

		if phys.Speed != "" && phys.Speed != "unknown" {
			result.BySpeed[phys.Speed]++
		}

		nodeID := record.NodeID(phys.Dn)
		nodeName := nodeNames[nodeID]
		if nodeName == "" {
			nodeName = "node-" + nodeID
		}

		result.Interfaces = append(result.Interfaces, InterfaceInfo{
			ID:          phys.ID,
			Dn:          phys.Dn,
			NodeID:      nodeID,
			NodeName:    nodeName,
			State:       state,
			AdminState:  phys.AdminSt,
			Speed:       phys.Speed,
			MTU:         phys.MTU,
			Usage:       phys.Usage,
			Description: phys.Descr,
			Neighbor:    neighborFor(g, phys.Dn),
			EPGs:        epgsOnInterface(g, phys.Dn),
		})
	}

	if result.TotalInterfaces > 0 {
		result.UtilizationRate = round2(float64(result.Used) / float64(result.TotalInterfaces) * 100)
	}
	return result, nil
}

func neighborFor(g *graph.Graph, ifaceDn string) *NeighborInfo {
	for _, nr := range g.OfType(record.TypeLLDPNeighbor) {
		if strings.Contains(nr.Dn, ifaceDn) {
			return &NeighborInfo{
				Device:   nr.Attr("sysName"),
				Port:     nr.Attr("portIdV"),
				Protocol: "LLDP",
			}
		}
	}
	for _, nr := range g.OfType(record.TypeCDPNeighbor) {
		if strings.Contains(nr.Dn, ifaceDn) {
			return &NeighborInfo{
				Device:   nr.Attr("devId"),
				Port:     nr.Attr("portId"),
				Protocol: "CDP",
			}
		}
	}
	return nil
}

func epgsOnInterface(g *graph.Graph, ifaceDn string) []string {
	seen := make(map[string]bool)
	var epgs []string
	for _, pa := range g.OfType(record.TypePathAttachment) {
		att := pa.AsPathAttachment()
		if !strings.Contains(att.TargetDn, ifaceDn) {
			continue
		}
		name := record.EPGName(pa.Dn)
		if name == record.UnknownName || seen[name] {
			continue
		}
		seen[name] = true
		epgs = append(epgs, name)
	}
	sort.Strings(epgs)
	return epgs
}
