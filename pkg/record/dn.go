package record

import (
	"strconv"
	"strings"
)

// Fallback sentinels for token extraction. Downstream grouping keys off these
// exact values, so they must not change.
const (
	UnknownTenant = "unknown"
	CommonTenant  = "common"
	UnknownName   = "unknown"
)

// segmentAfter scans a slash-separated dn for the first segment beginning with
// the given prefix token and returns the remainder of that segment.
func segmentAfter(dn, prefix string) (string, bool) {
	for len(dn) > 0 {
		seg := dn
		if i := strings.IndexByte(dn, '/'); i >= 0 {
			seg = dn[:i]
			dn = dn[i+1:]
		} else {
			dn = ""
		}
		if strings.HasPrefix(seg, prefix) {
			return seg[len(prefix):], true
		}
	}
	return "", false
}

// Tenant extracts the owning-tenant token (tn-<name>) from a dn. Missing
// tokens resolve to the "unknown" sentinel used by the analyzers.
func Tenant(dn string) string {
	if name, ok := segmentAfter(dn, "tn-"); ok {
		return name
	}
	return UnknownTenant
}

// TenantOrCommon is Tenant with the "common" fallback used on policy paths,
// where objects without a tenant token live in the shared namespace.
func TenantOrCommon(dn string) string {
	if name, ok := segmentAfter(dn, "tn-"); ok {
		return name
	}
	return CommonTenant
}

// NodeID extracts the numeric device id following a node- token. Returns ""
// when the dn carries no node token.
func NodeID(dn string) string {
	rest, ok := segmentAfter(dn, "node-")
	if !ok {
		return ""
	}
	// Some addresses embed the node token mid-segment (e.g. paths-101); keep
	// only the leading digits.
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return rest[:i]
		}
	}
	return rest
}

// EPGPath captures the endpoint-group prefix (uni/tn-X/ap-Y/epg-Z) from a
// longer dn such as a path-attachment address. Returns "" when the dn does
// not address an endpoint group.
func EPGPath(dn string) string {
	i := strings.Index(dn, "/epg-")
	if i < 0 {
		return ""
	}
	end := i + len("/epg-")
	for end < len(dn) && dn[end] != '/' {
		end++
	}
	prefix := dn[:end]
	if !strings.HasPrefix(prefix, "uni/tn-") || !strings.Contains(prefix, "/ap-") {
		return ""
	}
	return prefix
}

// EPGName extracts the endpoint-group name from a dn, with the "unknown"
// sentinel when absent.
func EPGName(dn string) string {
	if name, ok := segmentAfter(dn, "epg-"); ok {
		return name
	}
	return UnknownName
}

// L3OutName extracts the external-routing boundary name (out-<name>), with
// the "unknown" sentinel when absent.
func L3OutName(dn string) string {
	if name, ok := segmentAfter(dn, "out-"); ok {
		return name
	}
	return UnknownName
}

// LastName returns the name portion of the final dn segment (the part after
// the first '-'), or "" when the segment carries no prefix token.
func LastName(dn string) string {
	seg := dn
	if i := strings.LastIndexByte(dn, '/'); i >= 0 {
		seg = dn[i+1:]
	}
	if i := strings.IndexByte(seg, '-'); i >= 0 {
		return seg[i+1:]
	}
	return ""
}

// Parent strips the relation segment suffix (e.g. "/rsprov-web") from a dn,
// yielding the owning object's address.
func Parent(dn, relPrefix string) string {
	if i := strings.LastIndex(dn, relPrefix); i >= 0 {
		return dn[:i]
	}
	return dn
}

// VLANID parses a VLAN identifier from an encapsulation string of the form
// "vlan-<id>". The second return is false for any other encoding.
func VLANID(encap string) (int, bool) {
	const p = "vlan-"
	if !strings.HasPrefix(encap, p) {
		return 0, false
	}
	id, err := strconv.Atoi(encap[len(p):])
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsAncestor reports whether ancestor contains descendant in the address
// hierarchy: equal, or a strict prefix followed by a segment separator.
func IsAncestor(ancestor, descendant string) bool {
	if ancestor == "" || len(descendant) < len(ancestor) {
		return false
	}
	if descendant == ancestor {
		return true
	}
	return strings.HasPrefix(descendant, ancestor) && descendant[len(ancestor)] == '/'
}

// InterfaceID extracts the interface identifier from a physical or aggregate
// port address, e.g. phys-[eth1/1] or aggr-[po1]. Returns "unknown" when the
// dn matches neither form.
func InterfaceID(dn string) string {
	for _, p := range []string{"phys-[", "aggr-["} {
		if i := strings.Index(dn, p); i >= 0 {
			rest := dn[i+len(p):]
			if j := strings.IndexByte(rest, ']'); j >= 0 {
				return rest[:j]
			}
		}
	}
	return "unknown"
}
