package analysis

import (
	"context"
	"sort"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// RackDevice is one inventory row placed in a rack, annotated with the fabric
// device it matched, if any.
type RackDevice struct {
	Serial string `json:"serial"`
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Site   string `json:"site"`
}

// Rack groups the devices sharing one rack location.
type Rack struct {
	Devices  []RackDevice `json:"devices"`
	Site     string       `json:"site"`
	Building string       `json:"building"`
	Hall     string       `json:"hall"`
}

// RackMismatch flags a rack whose devices report more than one site.
type RackMismatch struct {
	Rack        string   `json:"rack"`
	Sites       []string `json:"sites"`
	DeviceCount int      `json:"device_count"`
	Issue       string   `json:"issue"`
}

// RackStats aggregates the rack grouping.
type RackStats struct {
	TotalRacks      int     `json:"total_racks"`
	TotalDevices    int     `json:"total_devices"`
	MismatchedRacks int     `json:"mismatched_racks"`
	CorrelationRate float64 `json:"correlation_rate"`
}

// RackGroupingResult is the rack grouping analyzer output.
type RackGroupingResult struct {
	Racks      map[string]Rack `json:"racks"`
	Mismatches []RackMismatch  `json:"mismatches"`
	Statistics RackStats       `json:"statistics"`
}

// serialIndex maps fabric device serials to their kind and id.
type serialIndex struct {
	fexBySerial  map[string]string
	leafBySerial map[string]string
}

func indexSerials(g *graph.Graph) serialIndex {
	idx := serialIndex{
		fexBySerial:  make(map[string]string),
		leafBySerial: make(map[string]string),
	}
	for _, r := range g.OfType(record.TypeFex) {
		fex := r.AsFex()
		if fex.Serial != "" {
			idx.fexBySerial[fex.Serial] = fex.ID
		}
	}
	for _, r := range g.OfType(record.TypeFabricNode) {
		node := r.AsFabricNode()
		if node.Role == "leaf" && node.Serial != "" {
			idx.leafBySerial[node.Serial] = node.ID
		}
	}
	return idx
}

// RackGrouping groups inventory assets by rack, taking the rack's location
// from the first device seen and flagging racks that mix sites.
func RackGrouping(ctx context.Context, g *graph.Graph, assets []record.Asset) (RackGroupingResult, error) {
	result := RackGroupingResult{Racks: map[string]Rack{}}
	if len(assets) == 0 {
		return result, ctxErr(ctx)
	}

	idx := indexSerials(g)

	for _, asset := range assets {
		if err := ctxErr(ctx); err != nil {
			return RackGroupingResult{}, err
		}
		rackName := asset.Rack
		if rackName == "" {
			rackName = "Unknown"
		}

		deviceType := "unknown"
		deviceID := ""
		if id, ok := idx.fexBySerial[asset.SerialNumber]; ok {
			deviceType, deviceID = "fex", id
		} else if id, ok := idx.leafBySerial[asset.SerialNumber]; ok {
			deviceType, deviceID = "leaf", id
		}

		rack, seen := result.Racks[rackName]
		if !seen {
			rack = Rack{Site: asset.Site, Building: asset.Building, Hall: asset.Hall}
		}
		rack.Devices = append(rack.Devices, RackDevice{
			Serial: asset.SerialNumber,
			Type:   deviceType,
			ID:     deviceID,
			Site:   asset.Site,
		})
		result.Racks[rackName] = rack
	}

	for rackName, rack := range result.Racks {
		sites := map[string]bool{}
		for _, d := range rack.Devices {
			if d.Site != "" {
				sites[d.Site] = true
			}
		}
		if len(sites) > 1 {
			list := make([]string, 0, len(sites))
			for s := range sites {
				list = append(list, s)
			}
			sort.Strings(list)
			result.Mismatches = append(result.Mismatches, RackMismatch{
				Rack:        rackName,
				Sites:       list,
				DeviceCount: len(rack.Devices),
				Issue:       "Devices from multiple sites in same rack",
			})
		}
	}
	sort.Slice(result.Mismatches, func(i, j int) bool {
		return result.Mismatches[i].Rack < result.Mismatches[j].Rack
	})

	result.Statistics = RackStats{
		TotalRacks:      len(result.Racks),
		TotalDevices:    len(assets),
		MismatchedRacks: len(result.Mismatches),
		CorrelationRate: round2(float64(len(idx.fexBySerial)+len(idx.leafBySerial)) / float64(len(assets)) * 100),
	}
	return result, nil
}

// CorrelatedDevice is an inventory row matched against the fabric.
type CorrelatedDevice struct {
	Serial string `json:"serial"`
	Rack   string `json:"rack,omitempty"`
	Site   string `json:"site,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// CorrelationStats aggregates the asset correlation.
type CorrelationStats struct {
	TotalInventory int `json:"total_cmdb_records"`
	TotalFabric    int `json:"total_aci_devices"`
	Matched        int `json:"matched_devices"`
	UnmatchedCMDB  int `json:"unmatched_cmdb"`
	UnmatchedACI   int `json:"unmatched_aci"`
}

// AssetCorrelationResult splits devices into matched, inventory-only, and
// fabric-only sets.
type AssetCorrelationResult struct {
	Correlated       []CorrelatedDevice `json:"correlated"`
	UncorrelatedCMDB []CorrelatedDevice `json:"uncorrelated_cmdb"`
	UncorrelatedACI  []CorrelatedDevice `json:"uncorrelated_aci"`
	CorrelationRate  float64            `json:"correlation_rate"`
	Statistics       CorrelationStats   `json:"statistics"`
}

// AssetCorrelation matches fabric device serials against the inventory and
// reports both directions of the difference.
func AssetCorrelation(ctx context.Context, g *graph.Graph, assets []record.Asset) (AssetCorrelationResult, error) {
	var result AssetCorrelationResult
	if len(assets) == 0 {
		return result, ctxErr(ctx)
	}

	idx := indexSerials(g)
	fabricSerials := make(map[string]bool, len(idx.fexBySerial)+len(idx.leafBySerial))
	for s := range idx.fexBySerial {
		fabricSerials[s] = true
	}
	for s := range idx.leafBySerial {
		fabricSerials[s] = true
	}

	inventorySerials := map[string]bool{}
	for _, asset := range assets {
		if err := ctxErr(ctx); err != nil {
			return AssetCorrelationResult{}, err
		}
		inventorySerials[asset.SerialNumber] = true
		if fabricSerials[asset.SerialNumber] {
			result.Correlated = append(result.Correlated, CorrelatedDevice{
				Serial: asset.SerialNumber,
				Rack:   asset.Rack,
				Site:   asset.Site,
			})
		} else {
			result.UncorrelatedCMDB = append(result.UncorrelatedCMDB, CorrelatedDevice{
				Serial: asset.SerialNumber,
				Rack:   asset.Rack,
				Site:   asset.Site,
				Reason: "Not found in fabric",
			})
		}
	}

	fabricOnly := make([]string, 0)
	for s := range fabricSerials {
		if !inventorySerials[s] {
			fabricOnly = append(fabricOnly, s)
		}
	}
	sort.Strings(fabricOnly)
	for _, s := range fabricOnly {
		result.UncorrelatedACI = append(result.UncorrelatedACI, CorrelatedDevice{
			Serial: s,
			Reason: "Not found in inventory",
		})
	}

	if len(inventorySerials) > 0 {
		result.CorrelationRate = round2(float64(len(result.Correlated)) / float64(len(inventorySerials)) * 100)
	}
	result.Statistics = CorrelationStats{
		TotalInventory: len(assets),
		TotalFabric:    len(fabricSerials),
		Matched:        len(result.Correlated),
		UnmatchedCMDB:  len(result.UncorrelatedCMDB),
		UnmatchedACI:   len(result.UncorrelatedACI),
	}
	return result, nil
}
