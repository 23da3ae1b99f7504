package translate

import (
	"context"
	"fmt"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// ACL rule numbering starts at 10 and advances in steps of 10 so operators
// can splice manual rules between generated ones.
const (
	aclSequenceStart = 10
	aclSequenceStep  = 10
)

// ACLRule is one line of a translated access list. Source and destination
// stay "any" until subnet planning substitutes concrete prefixes.
type ACLRule struct {
	Sequence    int    `json:"sequence"`
	Action      string `json:"action"`
	Protocol    string `json:"protocol"`
	Source      string `json:"source"`
	SourcePort  string `json:"source_port,omitempty"`
	Destination string `json:"destination"`
	DestPort    string `json:"dest_port,omitempty"`
	Established bool   `json:"established"`
	Log         bool   `json:"log"`
	Description string `json:"description"`
}

// ACL is a directional access list bound to a set of workload groupings.
type ACL struct {
	Name        string    `json:"name"`
	Direction   string    `json:"direction"`
	AppliedTo   []string  `json:"applied_to"`
	Rules       []ACLRule `json:"rules"`
	Description string    `json:"description"`
}

// EPGRef names a workload grouping on one side of a contract.
type EPGRef struct {
	Name   string `json:"name"`
	Dn     string `json:"dn"`
	Tenant string `json:"tenant"`
}

// SubjectInfo is one contract subject with its resolved filter references.
type SubjectInfo struct {
	Name             string   `json:"name"`
	Dn               string   `json:"dn"`
	Filters          []string `json:"filters"`
	FilterEntryCount int      `json:"filter_entry_count"`
}

// ContractInfo is the per-contract row of the contract analysis.
type ContractInfo struct {
	Name         string        `json:"name"`
	Dn           string        `json:"dn"`
	Scope        string        `json:"scope"`
	Description  string        `json:"description,omitempty"`
	Subjects     []SubjectInfo `json:"subjects"`
	Providers    []EPGRef      `json:"providers"`
	Consumers    []EPGRef      `json:"consumers"`
	Complexity   string        `json:"complexity"`
	SubjectCount int           `json:"subject_count"`
	RuleCount    int           `json:"rule_count"`
}

// ContractAnalysis summarizes every contract in the fabric before
// translation.
type ContractAnalysis struct {
	Contracts      []ContractInfo `json:"contracts"`
	TotalContracts int            `json:"total_contracts"`
	Scopes         map[string]int `json:"scopes"`
	Complexity     map[string]int `json:"complexity"`
}

// ACLTranslation is the full translation of one contract: the shared rule
// set plus the directional provider and consumer lists and rendered vendor
// configurations.
type ACLTranslation struct {
	ContractName    string            `json:"contract_name"`
	Rules           []ACLRule         `json:"acl_rules"`
	ProviderACL     ACL               `json:"provider_acl"`
	ConsumerACL     ACL               `json:"consumer_acl"`
	ConfigTemplates map[string]string `json:"config_templates"`
}

// TranslationSummary totals a batch translation run.
type TranslationSummary struct {
	TotalContracts int `json:"total_contracts"`
	TotalACLs      int `json:"total_acls_generated"`
	TotalRules     int `json:"total_rules"`
}

// AllTranslations holds the translation of every contract in the graph.
type AllTranslations struct {
	Translations []ACLTranslation   `json:"translations"`
	Summary      TranslationSummary `json:"summary"`
}

// AnalyzeContracts inventories contracts with their subjects, bindings, and
// a size-based complexity rating. Complexity counts subjects plus distinct
// filters: up to 2 simple, up to 5 medium, beyond that complex.
func AnalyzeContracts(ctx context.Context, g *graph.Graph) (ContractAnalysis, error) {
	analysis := ContractAnalysis{
		Scopes:     map[string]int{"tenant": 0, "vrf": 0, "global": 0, "application-profile": 0},
		Complexity: map[string]int{"simple": 0, "medium": 0, "complex": 0},
	}

	for _, cr := range g.OfType(record.TypeContract) {
		if err := ctxErr(ctx); err != nil {
			return ContractAnalysis{}, err
		}
		contract := cr.AsContract()

		subjects := contractSubjects(g, cr.Dn)
		filterCount := 0
		ruleCount := 0
		for _, s := range subjects {
			filterCount += len(s.Filters)
			ruleCount += s.FilterEntryCount
		}

		complexity := "complex"
		switch n := len(subjects) + filterCount; {
		case n <= 2:
			complexity = "simple"
		case n <= 5:
			complexity = "medium"
		}
		analysis.Complexity[complexity]++

		// "context" is the VRF-local scope on the wire.
		scopeKey := contract.Scope
		if scopeKey == "context" {
			scopeKey = "vrf"
		}
		if _, ok := analysis.Scopes[scopeKey]; ok {
			analysis.Scopes[scopeKey]++
		}

		analysis.Contracts = append(analysis.Contracts, ContractInfo{
			Name:         contract.Name,
			Dn:           cr.Dn,
			Scope:        contract.Scope,
			Description:  contract.Descr,
			Subjects:     subjects,
			Providers:    epgRefs(g, g.ProvidersOf(contract.Name)),
			Consumers:    epgRefs(g, g.ConsumersOf(contract.Name)),
			Complexity:   complexity,
			SubjectCount: len(subjects),
			RuleCount:    ruleCount,
		})
	}

	analysis.TotalContracts = len(analysis.Contracts)
	return analysis, nil
}

// TranslateContract converts one contract into directional ACLs. Permit
// rules follow subject and filter discovery order; a closing explicit
// deny-all rule is always emitted so the translated list fails closed even
// on platforms without an implicit deny.
func TranslateContract(ctx context.Context, g *graph.Graph, contractDn string) (ACLTranslation, error) {
	cr, ok := g.Lookup(contractDn)
	if !ok || cr.Type != record.TypeContract {
		return ACLTranslation{}, fmt.Errorf("contract not found: %s", contractDn)
	}
	if err := ctxErr(ctx); err != nil {
		return ACLTranslation{}, err
	}
	contract := cr.AsContract()

	var rules []ACLRule
	sequence := aclSequenceStart
	for _, subject := range contractSubjects(g, contractDn) {
		for _, filterDn := range subject.Filters {
			filterName := record.LastName(filterDn)
			for _, er := range g.DescendantsOfType(filterDn, record.TypeFilterEntry) {
				entry := er.AsFilterEntry()
				rules = append(rules, entryToRule(entry, sequence,
					fmt.Sprintf("%s:%s:%s", contract.Name, subject.Name, filterName)))
				sequence += aclSequenceStep
			}
		}
	}
	rules = append(rules, ACLRule{
		Sequence:    sequence,
		Action:      "deny",
		Protocol:    "ip",
		Source:      "any",
		Destination: "any",
		Description: fmt.Sprintf("%s: deny all", contract.Name),
	})

	providers := epgRefs(g, g.ProvidersOf(contract.Name))
	consumers := epgRefs(g, g.ConsumersOf(contract.Name))

	providerACL := ACL{
		Name:        fmt.Sprintf("ACL_%s_PROVIDER_OUT", contract.Name),
		Direction:   "outbound",
		AppliedTo:   refNames(providers),
		Rules:       rules,
		Description: fmt.Sprintf("Outbound ACL for provider EPGs of contract %s", contract.Name),
	}
	consumerACL := ACL{
		Name:        fmt.Sprintf("ACL_%s_CONSUMER_IN", contract.Name),
		Direction:   "inbound",
		AppliedTo:   refNames(consumers),
		Rules:       ReverseRules(rules),
		Description: fmt.Sprintf("Inbound ACL for consumer EPGs of contract %s", contract.Name),
	}

	return ACLTranslation{
		ContractName: contract.Name,
		Rules:        rules,
		ProviderACL:  providerACL,
		ConsumerACL:  consumerACL,
		ConfigTemplates: map[string]string{
			"ios":   renderFlatACL("Cisco IOS ACL Configuration", "ip access-list extended", " ", providerACL),
			"nxos":  renderFlatACL("Cisco NX-OS ACL Configuration", "ip access-list", "  ", providerACL),
			"eos":   renderFlatACL("Arista EOS ACL Configuration", "ip access-list", "   ", providerACL),
			"junos": renderJunosFilter(providerACL),
		},
	}, nil
}

// TranslateAllContracts runs TranslateContract over every contract in the
// graph. Rules are counted once per contract even though each contract
// yields a provider and a consumer list.
func TranslateAllContracts(ctx context.Context, g *graph.Graph) (AllTranslations, error) {
	contracts := g.OfType(record.TypeContract)
	all := AllTranslations{
		Summary: TranslationSummary{TotalContracts: len(contracts)},
	}

	for _, cr := range contracts {
		translation, err := TranslateContract(ctx, g, cr.Dn)
		if err != nil {
			return AllTranslations{}, err
		}
		all.Translations = append(all.Translations, translation)
		all.Summary.TotalACLs += 2
		all.Summary.TotalRules += len(translation.Rules)
	}

	return all, nil
}

// ReverseRules swaps source and destination (address and port) on every
// rule, preserving sequence numbers. Applying it twice restores the input
// up to the description suffix.
func ReverseRules(rules []ACLRule) []ACLRule {
	reversed := make([]ACLRule, len(rules))
	for i, r := range rules {
		reversed[i] = ACLRule{
			Sequence:    r.Sequence,
			Action:      r.Action,
			Protocol:    r.Protocol,
			Source:      r.Destination,
			SourcePort:  r.DestPort,
			Destination: r.Source,
			DestPort:    r.SourcePort,
			Established: r.Established,
			Log:         r.Log,
			Description: r.Description + " (reversed)",
		}
	}
	return reversed
}

func entryToRule(entry record.FilterEntry, sequence int, description string) ACLRule {
	protocol := entry.Protocol
	if protocol == "unspecified" {
		protocol = "ip"
	}
	return ACLRule{
		Sequence:    sequence,
		Action:      "permit",
		Protocol:    protocol,
		Source:      "any",
		SourcePort:  formatPortRange(entry.SrcFrom, entry.SrcTo),
		Destination: "any",
		DestPort:    formatPortRange(entry.DstFrom, entry.DstTo),
		Established: entry.Stateful,
		Description: description,
	}
}

// formatPortRange renders a port clause: empty when unbounded, the name for
// named ports, "eq N" for a single port, "range A B" otherwise.
func formatPortRange(from, to string) string {
	if from == "" || from == "unspecified" {
		return ""
	}
	if !allDigits(from) {
		return from
	}
	if to == "unspecified" || from == to {
		return "eq " + from
	}
	return fmt.Sprintf("range %s %s", from, to)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func contractSubjects(g *graph.Graph, contractDn string) []SubjectInfo {
	var subjects []SubjectInfo
	for _, sr := range g.DescendantsOfType(contractDn, record.TypeSubject) {
		filters := g.SubjectFilters(sr.Dn)
		entries := 0
		for _, f := range filters {
			entries += len(g.DescendantsOfType(f, record.TypeFilterEntry))
		}
		subjects = append(subjects, SubjectInfo{
			Name:             sr.Attr("name"),
			Dn:               sr.Dn,
			Filters:          filters,
			FilterEntryCount: entries,
		})
	}
	return subjects
}

func epgRefs(g *graph.Graph, dns []string) []EPGRef {
	var refs []EPGRef
	for _, dn := range dns {
		r, ok := g.Lookup(dn)
		if !ok {
			continue
		}
		refs = append(refs, EPGRef{
			Name:   r.Attr("name"),
			Dn:     dn,
			Tenant: record.TenantOrCommon(dn),
		})
	}
	return refs
}

func refNames(refs []EPGRef) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}
