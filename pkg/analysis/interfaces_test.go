package analysis

import (
	"context"
	"testing"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

func interfaceFixture() *graph.Graph {
	return graph.Build([]record.Record{
		rec(record.TypeFabricNode, "topology/pod-1/node-101",
			map[string]string{"id": "101", "name": "leaf-101", "role": "leaf"}),
		rec(record.TypePhysIf, "topology/pod-1/node-101/sys/phys-[eth1/1]",
			map[string]string{"id": "eth1/1", "operSt": "up", "adminSt": "up", "operSpeed": "10G"}),
		rec(record.TypePhysIf, "topology/pod-1/node-101/sys/phys-[eth1/2]",
			map[string]string{"id": "eth1/2", "operSt": "down", "usage": "discovery"}),
		rec(record.TypePhysIf, "topology/pod-1/node-101/sys/phys-[eth1/3]",
			map[string]string{"id": "eth1/3", "operSt": "down", "usage": "epg", "operSpeed": "10G"}),
		rec(record.TypePhysIf, "topology/pod-1/node-999/sys/phys-[eth1/4]",
			map[string]string{"id": "eth1/4"}),
		rec(record.TypeLLDPNeighbor, "topology/pod-1/node-101/sys/phys-[eth1/1]/lldp/adj-1",
			map[string]string{"sysName": "core-sw1", "portIdV": "Ethernet1/10"}),
		rec(record.TypeCDPNeighbor, "topology/pod-1/node-101/sys/phys-[eth1/3]/cdp/adj-1",
			map[string]string{"devId": "old-sw2", "portId": "Gi0/1"}),
		rec(record.TypePathAttachment, "uni/tn-prod/ap-web/epg-web/rspathAtt-1",
			map[string]string{"encap": "vlan-100", "tDn": "topology/pod-1/node-101/sys/phys-[eth1/1]"}),
	})
}

func TestInterfaceInventory(t *testing.T) {
	result, err := InterfaceInventory(context.Background(), interfaceFixture())
	if err != nil {
		t.Fatalf("InterfaceInventory: %v", err)
	}

	if result.TotalInterfaces != 4 {
		t.Fatalf("TotalInterfaces = %d, want 4", result.TotalInterfaces)
	}
	// up and in-service down are used; a down discovery port is unused.
	if result.ByState["up"] != 1 || result.ByState["down"] != 1 ||
		result.ByState["unused"] != 1 || result.ByState["unknown"] != 1 {
		t.Errorf("ByState = %v", result.ByState)
	}
	if result.Used != 2 || result.Unused != 1 {
		t.Errorf("Used/Unused = %d/%d, want 2/1", result.Used, result.Unused)
	}
	if result.UtilizationRate != 50 {
		t.Errorf("UtilizationRate = %v, want 50", result.UtilizationRate)
	}
	if result.BySpeed["10G"] != 2 {
		t.Errorf("BySpeed = %v, want two 10G ports", result.BySpeed)
	}

	byID := make(map[string]InterfaceInfo)
	for _, i := range result.Interfaces {
		byID[i.ID] = i
	}

	up := byID["eth1/1"]
	if up.NodeName != "leaf-101" || up.NodeID != "101" || up.State != "up" {
		t.Errorf("eth1/1 = %+v", up)
	}
	if up.Neighbor == nil || up.Neighbor.Protocol != "LLDP" ||
		up.Neighbor.Device != "core-sw1" || up.Neighbor.Port != "Ethernet1/10" {
		t.Errorf("eth1/1 neighbor = %+v", up.Neighbor)
	}
	if len(up.EPGs) != 1 || up.EPGs[0] != "web" {
		t.Errorf("eth1/1 EPGs = %v", up.EPGs)
	}

	if n := byID["eth1/3"].Neighbor; n == nil || n.Protocol != "CDP" || n.Device != "old-sw2" {
		t.Errorf("eth1/3 neighbor = %+v", n)
	}
	if byID["eth1/2"].State != "unused" || byID["eth1/2"].Neighbor != nil {
		t.Errorf("eth1/2 = %+v", byID["eth1/2"])
	}

	unknown := byID["eth1/4"]
	if unknown.State != "unknown" || unknown.NodeName != "node-999" {
		t.Errorf("eth1/4 = %+v", unknown)
	}
}

func TestInterfaceInventoryEmpty(t *testing.T) {
	result, err := InterfaceInventory(context.Background(), graph.Build(nil))
	if err != nil {
		t.Fatalf("InterfaceInventory: %v", err)
	}
	if result.TotalInterfaces != 0 || result.UtilizationRate != 0 {
		t.Errorf("empty fabric inventory = %+v", result)
	}
}
