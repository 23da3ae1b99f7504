package record

// Record is a single managed object from a fabric controller export: a type
// tag, a flat attribute map, and a hierarchical distinguished name.
type Record struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Dn         string            `json:"dn"`
}

// Attr returns the named attribute, or the empty string when absent.
func (r Record) Attr(key string) string {
	return r.Attributes[key]
}

// AttrDefault returns the named attribute, or def when absent or empty.
func (r Record) AttrDefault(key, def string) string {
	if v, ok := r.Attributes[key]; ok && v != "" {
		return v
	}
	return def
}

// Controller object class tags recognized by the analyzers. The export uses
// these verbatim as the per-item key, so they double as bucket names.
const (
	TypeTenant         = "fvTenant"
	TypeVRF            = "fvCtx"
	TypeBridgeDomain   = "fvBD"
	TypeEPG            = "fvAEPg"
	TypeSubnet         = "fvSubnet"
	TypePathAttachment = "fvRsPathAtt"
	TypeProvider       = "fvRsProv"
	TypeConsumer       = "fvRsCons"

	TypeContract      = "vzBrCP"
	TypeSubject       = "vzSubj"
	TypeFilter        = "vzFilter"
	TypeFilterEntry   = "vzEntry"
	TypeSubjFilterAtt = "vzRsSubjFiltAtt"
	TypeServiceGraph  = "vzRtGraphAtt"

	TypeFabricNode   = "fabricNode"
	TypeFex          = "eqptFex"
	TypePhysIf       = "ethpmPhysIf"
	TypePhysDomain   = "physDomP"
	TypeVMMDomain    = "vmmDomP"
	TypeL3Domain     = "l3extDomP"
	TypeLLDPNeighbor = "lldpAdjEp"
	TypeCDPNeighbor  = "cdpAdjEp"

	TypeVLANPool   = "fvnsVlanInstP"
	TypeEncapBlock = "fvnsEncapBlk"
	// Domain-to-pool relations, one per domain flavor.
	TypeInfraVLANRel = "infraRsVlanNs"
	TypeVMMVLANRel   = "vmmRsVlanNs"
	TypeL3VLANRel    = "l3extRsVlanNs"

	TypeVPCDomain   = "vpcDom"
	TypePortChannel = "pcAggrIf"
	TypeLACPEntity  = "lacpEntity"
	TypeVPCIf       = "vpcIf"

	TypeL3Out       = "l3extOut"
	TypeExternalEPG = "l3extInstP"
	TypeExtSubnet   = "l3extSubnet"
	TypeNodeProfile = "l3extLNodeP"
	TypeIfProfile   = "l3extLIfP"
	TypeVRFRelation = "l3extRsEctx"
	TypeNodeAtt     = "l3extRsNodeL3OutAtt"
	TypeBGPPeer     = "bgpPeerP"
	TypeBGPASProf   = "bgpAsP"
	TypeOSPFIf      = "ospfIfP"
	TypeOSPFExt     = "ospfExtP"
	TypeStaticRoute = "ipRouteP"
)

// Asset is one row of the optional asset-correlation (CMDB) dataset, keyed by
// serial number.
type Asset struct {
	SerialNumber string `json:"serial_number"`
	Rack         string `json:"rack"`
	Building     string `json:"building"`
	Hall         string `json:"hall"`
	Site         string `json:"site"`
}
