package translate

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// PortChannelInfo is one aggregated interface and its translation target.
type PortChannelInfo struct {
	ID            string `json:"id"`
	Dn            string `json:"dn"`
	NodeID        string `json:"node_id"`
	IsVPC         bool   `json:"is_vpc"`
	Status        string `json:"status"`
	LACPMode      string `json:"lacp_mode"`
	Speed         string `json:"speed"`
	MemberCount   int    `json:"member_count"`
	Description   string `json:"description,omitempty"`
	Usage         string `json:"usage,omitempty"`
	MigrationType string `json:"migration_type"`
}

// PortChannelsResult splits the aggregated interfaces into paired (MLAG/ESI
// bound) and standard LAGs.
type PortChannelsResult struct {
	Total               int               `json:"total_port_channels"`
	VPCPortChannels     []PortChannelInfo `json:"vpc_port_channels"`
	RegularPortChannels []PortChannelInfo `json:"regular_port_channels"`
	LACPModes           map[string]int    `json:"lacp_modes"`
}

// AnalyzePortChannels inventories every aggregated interface, resolves its
// LACP mode, and tags each with the link-aggregation construct it maps to
// on the target platform.
func AnalyzePortChannels(ctx context.Context, g *graph.Graph) (PortChannelsResult, error) {
	result := PortChannelsResult{
		LACPModes: map[string]int{"active": 0, "passive": 0, "on": 0, "unknown": 0},
	}

	for _, pc := range g.OfType(record.TypePortChannel) {
		if err := ctxErr(ctx); err != nil {
			return PortChannelsResult{}, err
		}
		isVPC := strings.Contains(strings.ToLower(pc.Dn), "vpc-")
		if !isVPC {
			for _, vi := range g.OfType(record.TypeVPCIf) {
				if strings.Contains(vi.Dn, pc.Dn) {
					isVPC = true
					break
				}
			}
		}

		lacpMode := "unknown"
		for _, le := range g.OfType(record.TypeLACPEntity) {
			if strings.Contains(le.Dn, pc.Dn) {
				lacpMode = strings.ToLower(le.AttrDefault("mode", "unknown"))
				break
			}
		}
		if _, ok := result.LACPModes[lacpMode]; !ok {
			lacpMode = "unknown"
		}
		result.LACPModes[lacpMode]++

		members, _ := strconv.Atoi(pc.AttrDefault("activePorts", "0"))
		migrationType := "Standard LAG"
		if isVPC {
			migrationType = "MLAG/ESI"
		}
		info := PortChannelInfo{
			ID:            pc.Attr("id"),
			Dn:            pc.Dn,
			NodeID:        record.NodeID(pc.Dn),
			IsVPC:         isVPC,
			Status:        pc.AttrDefault("operSt", "unknown"),
			LACPMode:      lacpMode,
			Speed:         pc.AttrDefault("speed", "unknown"),
			MemberCount:   members,
			Description:   pc.Attr("descr"),
			Usage:         pc.Attr("usage"),
			MigrationType: migrationType,
		}
		if isVPC {
			result.VPCPortChannels = append(result.VPCPortChannels, info)
		} else {
			result.RegularPortChannels = append(result.RegularPortChannels, info)
		}
		result.Total++
	}

	return result, nil
}

// EndpointConnection is one path binding of an endpoint group attachment.
type EndpointConnection struct {
	Path  string `json:"path"`
	IsVPC bool   `json:"is_vpc"`
}

// EndpointAttachment groups the path bindings of one endpoint (an EPG plus
// encap) and classifies its redundancy.
type EndpointAttachment struct {
	Endpoint       string               `json:"endpoint"`
	EPG            string               `json:"epg"`
	Encap          string               `json:"encap"`
	Connections    []EndpointConnection `json:"connections"`
	RedundancyType string               `json:"redundancy_type"`
	ESIReady       bool                 `json:"esi_ready"`
	Complexity     string               `json:"migration_complexity"`
	Priority       int                  `json:"priority"`
	Reason         string               `json:"reason"`
}

// DualHomedResult is the endpoint redundancy survey used to plan ethernet
// segments on the target platform.
type DualHomedResult struct {
	Endpoints         []EndpointAttachment `json:"endpoints"`
	ESICandidates     []EndpointAttachment `json:"esi_candidates"`
	MigrationPriority []EndpointAttachment `json:"migration_priority"`
	DualHomedCount    int                  `json:"dual_homed_count"`
}

// IdentifyDualHomedServers groups path attachments by endpoint (EPG and
// encap) and classifies each as paired dual-homed, multi-attached, or
// single-homed. Paired dual-homed endpoints map directly to ethernet
// segments and migrate first.
func IdentifyDualHomedServers(ctx context.Context, g *graph.Graph) (DualHomedResult, error) {
	byEndpoint := make(map[string][]EndpointConnection)
	epgs := make(map[string]string)
	encaps := make(map[string]string)

	for _, pa := range g.OfType(record.TypePathAttachment) {
		if err := ctxErr(ctx); err != nil {
			return DualHomedResult{}, err
		}
		epg := record.EPGPath(pa.Dn)
		if epg == "" {
			continue
		}
		encap := pa.Attr("encap")
		key := epg + ":" + encap
		tDn := pa.Attr("tDn")
		byEndpoint[key] = append(byEndpoint[key], EndpointConnection{
			Path:  tDn,
			IsVPC: strings.Contains(strings.ToLower(tDn), "vpc-"),
		})
		epgs[key] = epg
		encaps[key] = encap
	}

	keys := make([]string, 0, len(byEndpoint))
	for k := range byEndpoint {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result DualHomedResult
	for _, key := range keys {
		conns := byEndpoint[key]
		vpcCount := 0
		for _, c := range conns {
			if c.IsVPC {
				vpcCount++
			}
		}

		att := EndpointAttachment{
			Endpoint:    key,
			EPG:         epgs[key],
			Encap:       encaps[key],
			Connections: conns,
		}
		switch {
		case len(conns) >= 2 && vpcCount >= 2:
			att.RedundancyType = "vpc_dual_homed"
			att.ESIReady = true
			att.Complexity = "low"
			att.Priority = 1
			att.Reason = "VPC dual-homed, direct ESI mapping available"
		case len(conns) >= 2:
			att.RedundancyType = "multi_attached"
			att.Complexity = "medium"
			att.Priority = 2
			att.Reason = "Multiple attachments, needs manual review"
		default:
			att.RedundancyType = "single_homed"
			att.Complexity = "low"
			att.Priority = 3
			att.Reason = "Single-homed, no redundancy requirements"
		}

		result.Endpoints = append(result.Endpoints, att)
		if att.ESIReady {
			result.ESICandidates = append(result.ESICandidates, att)
			result.DualHomedCount++
		}
	}

	result.MigrationPriority = append([]EndpointAttachment(nil), result.Endpoints...)
	sort.SliceStable(result.MigrationPriority, func(i, j int) bool {
		return result.MigrationPriority[i].Priority < result.MigrationPriority[j].Priority
	})
	return result, nil
}
