package translate

import (
	"fmt"
	"strings"
)

// renderFlatACL renders the Cisco-style flat list formats. IOS, NX-OS, and
// EOS differ only in the access-list keyword and the rule indent.
func renderFlatACL(header, listKeyword, indent string, acl ACL) string {
	var b strings.Builder
	fmt.Fprintf(&b, "! %s\n", header)
	fmt.Fprintf(&b, "! %s\n", acl.Description)
	fmt.Fprintf(&b, "%s %s\n", listKeyword, acl.Name)

	for _, rule := range acl.Rules {
		fmt.Fprintf(&b, "%s%d %s %s %s", indent, rule.Sequence, rule.Action, rule.Protocol, rule.Source)
		if rule.SourcePort != "" {
			fmt.Fprintf(&b, " %s", rule.SourcePort)
		}
		fmt.Fprintf(&b, " %s", rule.Destination)
		if rule.DestPort != "" {
			fmt.Fprintf(&b, " %s", rule.DestPort)
		}
		if rule.Established {
			b.WriteString(" established")
		}
		if rule.Log {
			b.WriteString(" log")
		}
		b.WriteByte('\n')
	}

	b.WriteString("!\n")
	return b.String()
}

// renderJunosFilter renders the equivalent firewall filter in Junos block
// syntax, one term per rule.
func renderJunosFilter(acl ACL) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/* %s */\n", acl.Description)
	b.WriteString("firewall {\n")
	b.WriteString("    family inet {\n")
	fmt.Fprintf(&b, "        filter %s {\n", acl.Name)

	for _, rule := range acl.Rules {
		fmt.Fprintf(&b, "            term term-%d {\n", rule.Sequence)
		b.WriteString("                from {\n")
		if rule.Protocol != "ip" {
			fmt.Fprintf(&b, "                    protocol %s;\n", rule.Protocol)
		}
		if rule.Source != "any" {
			fmt.Fprintf(&b, "                    source-address %s;\n", rule.Source)
		}
		if rule.SourcePort != "" {
			fmt.Fprintf(&b, "                    source-port %s;\n", rule.SourcePort)
		}
		if rule.Destination != "any" {
			fmt.Fprintf(&b, "                    destination-address %s;\n", rule.Destination)
		}
		if rule.DestPort != "" {
			fmt.Fprintf(&b, "                    destination-port %s;\n", rule.DestPort)
		}
		b.WriteString("                }\n")
		fmt.Fprintf(&b, "                then %s;\n", rule.Action)
		b.WriteString("            }\n")
	}

	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}
