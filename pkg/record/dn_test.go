package record

import "testing"

// TestTenant_Present tests tenant extraction from a standard address
func TestTenant_Present(t *testing.T) {
	if got := Tenant("uni/tn-Prod/ap-web/epg-frontend"); got != "Prod" {
		t.Errorf("Tenant = %q, want Prod", got)
	}
}

// TestTenant_Missing tests the documented fallback sentinel
func TestTenant_Missing(t *testing.T) {
	if got := Tenant("topology/pod-1/node-101"); got != "unknown" {
		t.Errorf("Tenant fallback = %q, want unknown", got)
	}
}

// TestTenantOrCommon_Missing tests the shared-namespace fallback on policy paths
func TestTenantOrCommon_Missing(t *testing.T) {
	if got := TenantOrCommon("uni/flt-icmp"); got != "common" {
		t.Errorf("TenantOrCommon fallback = %q, want common", got)
	}
}

// TestTenant_PrefixNotSegment verifies tn- must start a segment
func TestTenant_PrefixNotSegment(t *testing.T) {
	if got := Tenant("uni/xtn-nope/ap-a"); got != "unknown" {
		t.Errorf("Tenant = %q, want unknown for mid-segment token", got)
	}
}

// TestNodeID tests numeric device id extraction
func TestNodeID(t *testing.T) {
	cases := []struct {
		dn   string
		want string
	}{
		{"topology/pod-1/node-101/sys/extch-201", "101"},
		{"topology/pod-1/protpaths-101-102/pathep-[po1]", ""},
		{"uni/tn-Prod", ""},
		{"topology/pod-1/node-204abc", "204"},
	}
	for _, c := range cases {
		if got := NodeID(c.dn); got != c.want {
			t.Errorf("NodeID(%q) = %q, want %q", c.dn, got, c.want)
		}
	}
}

// TestEPGPath tests endpoint-group prefix capture from a path-attachment dn
func TestEPGPath(t *testing.T) {
	dn := "uni/tn-Prod/ap-web/epg-frontend/rspathAtt-[topology/pod-1/paths-101/pathep-[eth1/1]]"
	want := "uni/tn-Prod/ap-web/epg-frontend"
	if got := EPGPath(dn); got != want {
		t.Errorf("EPGPath = %q, want %q", got, want)
	}
	if got := EPGPath("uni/tn-Prod/BD-db"); got != "" {
		t.Errorf("EPGPath on non-epg dn = %q, want empty", got)
	}
}

// TestEPGName tests name extraction with fallback
func TestEPGName(t *testing.T) {
	if got := EPGName("uni/tn-Prod/ap-web/epg-frontend"); got != "frontend" {
		t.Errorf("EPGName = %q", got)
	}
	if got := EPGName("uni/tn-Prod/ap-web"); got != "unknown" {
		t.Errorf("EPGName fallback = %q, want unknown", got)
	}
}

// TestVLANID tests encapsulation parsing
func TestVLANID(t *testing.T) {
	if id, ok := VLANID("vlan-2104"); !ok || id != 2104 {
		t.Errorf("VLANID(vlan-2104) = %d, %v", id, ok)
	}
	if _, ok := VLANID("vxlan-90001"); ok {
		t.Error("VLANID should reject non-vlan encapsulation")
	}
	if _, ok := VLANID("vlan-"); ok {
		t.Error("VLANID should reject empty id")
	}
}

// TestIsAncestor tests the prefix-plus-separator containment rule
func TestIsAncestor(t *testing.T) {
	if !IsAncestor("uni/tn-Prod/BD-db", "uni/tn-Prod/BD-db/subnet-[10.0.0.1/24]") {
		t.Error("expected subnet under its bridge domain")
	}
	if IsAncestor("uni/tn-Prod/BD-db", "uni/tn-Prod/BD-db2") {
		t.Error("sibling with shared string prefix must not match")
	}
	if !IsAncestor("uni/tn-Prod", "uni/tn-Prod") {
		t.Error("a dn contains itself")
	}
	if IsAncestor("", "uni/tn-Prod") {
		t.Error("empty ancestor must not match")
	}
}

// TestLastName tests final-segment name extraction
func TestLastName(t *testing.T) {
	if got := LastName("uni/tn-Prod/brc-web-to-db"); got != "web-to-db" {
		t.Errorf("LastName = %q", got)
	}
	if got := LastName("uni"); got != "" {
		t.Errorf("LastName without token = %q, want empty", got)
	}
}

// TestParent strips a relation suffix
func TestParent(t *testing.T) {
	dn := "uni/tn-Prod/ap-web/epg-frontend/rsprov-web-to-db"
	if got := Parent(dn, "/rsprov-"); got != "uni/tn-Prod/ap-web/epg-frontend" {
		t.Errorf("Parent = %q", got)
	}
}

// TestInterfaceID tests physical and aggregate port extraction
func TestInterfaceID(t *testing.T) {
	if got := InterfaceID("topology/pod-1/paths-101/pathep-[eth1/1]/phys-[eth1/1]"); got != "eth1/1" {
		t.Errorf("InterfaceID phys = %q", got)
	}
	if got := InterfaceID("topology/pod-1/node-101/sys/aggr-[po5]"); got != "po5" {
		t.Errorf("InterfaceID aggr = %q", got)
	}
	if got := InterfaceID("uni/tn-Prod"); got != "unknown" {
		t.Errorf("InterfaceID fallback = %q", got)
	}
}

// TestAttrDefault verifies checked defaults on the attribute map
func TestAttrDefault(t *testing.T) {
	r := Record{Type: TypeContract, Attributes: map[string]string{"name": "c1"}}
	c := r.AsContract()
	if c.Scope != "context" {
		t.Errorf("default scope = %q, want context", c.Scope)
	}
	if c.Priority != "default" {
		t.Errorf("default priority = %q", c.Priority)
	}
}
