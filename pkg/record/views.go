package record

// Typed views over the duck-typed attribute map. Each view decodes the
// attributes one analyzer family relies on; absent attributes become checked
// zero values or documented defaults instead of runtime lookups.

// FabricNode is a switching device in the fabric (leaf, spine, controller).
type FabricNode struct {
	ID     string
	Name   string
	Role   string
	Model  string
	Serial string
	Dn     string
}

func (r Record) AsFabricNode() FabricNode {
	return FabricNode{
		ID:     r.Attr("id"),
		Name:   r.Attr("name"),
		Role:   r.Attr("role"),
		Model:  r.Attr("model"),
		Serial: r.Attr("serial"),
		Dn:     r.Dn,
	}
}

// Fex is a port-expansion device sharing a parent leaf's control plane.
type Fex struct {
	ID     string
	Serial string
	Model  string
	OperSt string
	Dn     string
}

func (r Record) AsFex() Fex {
	return Fex{
		ID:     r.Attr("id"),
		Serial: r.Attr("ser"),
		Model:  r.Attr("model"),
		OperSt: r.AttrDefault("operSt", "unknown"),
		Dn:     r.Dn,
	}
}

// EPG is a workload grouping bound to a bridge domain.
type EPG struct {
	Name         string
	BridgeDomain string
	Dn           string
}

func (r Record) AsEPG() EPG {
	return EPG{
		Name:         r.Attr("name"),
		BridgeDomain: r.Attr("bd"),
		Dn:           r.Dn,
	}
}

// BridgeDomain is a Layer-2 segmentation scope.
type BridgeDomain struct {
	Name         string
	VRF          string
	ARPFlood     string
	UnicastRoute string
	Dn           string
}

func (r Record) AsBridgeDomain() BridgeDomain {
	return BridgeDomain{
		Name:         r.Attr("name"),
		VRF:          r.Attr("vrf"),
		ARPFlood:     r.AttrDefault("arpFlood", "no"),
		UnicastRoute: r.AttrDefault("unicastRoute", "yes"),
		Dn:           r.Dn,
	}
}

// VRF is a routing context.
type VRF struct {
	Name string
	Dn   string
}

func (r Record) AsVRF() VRF {
	return VRF{Name: r.Attr("name"), Dn: r.Dn}
}

// Contract is a permit-oriented policy object between provider and consumer
// groupings. Scope defaults to "context" (VRF-local).
type Contract struct {
	Name     string
	Scope    string
	Priority string
	Descr    string
	Dn       string
}

func (r Record) AsContract() Contract {
	return Contract{
		Name:     r.Attr("name"),
		Scope:    r.AttrDefault("scope", "context"),
		Priority: r.AttrDefault("prio", "default"),
		Descr:    r.Attr("descr"),
		Dn:       r.Dn,
	}
}

// FilterEntry is one match clause inside a policy filter.
type FilterEntry struct {
	Name      string
	Protocol  string
	EtherType string
	SrcFrom   string
	SrcTo     string
	DstFrom   string
	DstTo     string
	Stateful  bool
	Fragments bool
	Dn        string
}

func (r Record) AsFilterEntry() FilterEntry {
	return FilterEntry{
		Name:      r.Attr("name"),
		Protocol:  r.AttrDefault("prot", "ip"),
		EtherType: r.AttrDefault("etherT", "ip"),
		SrcFrom:   r.AttrDefault("sFromPort", "unspecified"),
		SrcTo:     r.AttrDefault("sToPort", "unspecified"),
		DstFrom:   r.AttrDefault("dFromPort", "unspecified"),
		DstTo:     r.AttrDefault("dToPort", "unspecified"),
		Stateful:  r.Attr("stateful") == "yes",
		Fragments: r.Attr("applyToFrag") == "yes",
		Dn:        r.Dn,
	}
}

// PathAttachment binds a workload grouping to a switch port with a VLAN
// encapsulation.
type PathAttachment struct {
	Encap    string
	TargetDn string
	Mode     string
	State    string
	Dn       string
}

func (r Record) AsPathAttachment() PathAttachment {
	return PathAttachment{
		Encap:    r.Attr("encap"),
		TargetDn: r.Attr("tDn"),
		Mode:     r.AttrDefault("mode", "regular"),
		State:    r.Attr("state"),
		Dn:       r.Dn,
	}
}

// Subnet is an addressed prefix owned by a bridge domain.
type Subnet struct {
	IP    string
	Scope string
	Dn    string
}

func (r Record) AsSubnet() Subnet {
	return Subnet{
		IP:    r.Attr("ip"),
		Scope: r.AttrDefault("scope", "private"),
		Dn:    r.Dn,
	}
}

// PhysIf is a physical interface with operational state.
type PhysIf struct {
	ID      string
	OperSt  string
	AdminSt string
	Speed   string
	MTU     string
	Usage   string
	Descr   string
	Dn      string
}

func (r Record) AsPhysIf() PhysIf {
	return PhysIf{
		ID:      r.Attr("id"),
		OperSt:  r.AttrDefault("operSt", "unknown"),
		AdminSt: r.AttrDefault("adminSt", "unknown"),
		Speed:   r.AttrDefault("operSpeed", "unknown"),
		MTU:     r.Attr("operMtu"),
		Usage:   r.Attr("usage"),
		Descr:   r.Attr("descr"),
		Dn:      r.Dn,
	}
}

// VPCDomain is one side of an aggregation-domain pair.
type VPCDomain struct {
	ID        string
	PeerIP    string
	VirtualIP string
	OperSt    string
	Role      string
	Dn        string
}

func (r Record) AsVPCDomain() VPCDomain {
	return VPCDomain{
		ID:        r.Attr("id"),
		PeerIP:    r.Attr("peerIp"),
		VirtualIP: r.Attr("virtualIp"),
		OperSt:    r.Attr("operSt"),
		Role:      r.Attr("role"),
		Dn:        r.Dn,
	}
}

// BGPPeer is an external routing neighbor on a boundary.
type BGPPeer struct {
	Addr     string
	RemoteAS string
	AdminSt  string
	Password string
	TTL      string
	Dn       string
}

func (r Record) AsBGPPeer() BGPPeer {
	return BGPPeer{
		Addr:     r.Attr("addr"),
		RemoteAS: r.Attr("asn"),
		AdminSt:  r.Attr("adminSt"),
		Password: r.Attr("password"),
		TTL:      r.Attr("ttl"),
		Dn:       r.Dn,
	}
}
