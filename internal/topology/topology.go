// Package topology derives P2P wiring from node descriptors: the port
// set a firewall must admit and the peer/bootstrap multiaddress lists
// each node is started with.
//
// All functions are pure and deterministic; inter-node addresses are
// built from internal IPs only, so validator traffic never leaves the
// private network.
package topology

import (
	"sort"
	"strconv"
	"strings"

	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
)

// PortSpec is one protocol/port pair derived from a listen address.
type PortSpec struct {
	Protocol string
	Port     int
}

// DerivePorts extracts the deduplicated set of tcp/udp ports from all
// nodes' listen addresses. Output order is stable regardless of input
// order: protocol first, then numeric port ascending.
func DerivePorts(nodes []descriptor.Node) []PortSpec {
	seen := make(map[PortSpec]struct{})
	var ports []PortSpec
	for _, node := range nodes {
		for _, addr := range node.ListenAddresses {
			for _, spec := range portsFromAddress(addr) {
				if _, ok := seen[spec]; ok {
					continue
				}
				seen[spec] = struct{}{}
				ports = append(ports, spec)
			}
		}
	}
	sort.Slice(ports, func(i, j int) bool {
		if ports[i].Protocol != ports[j].Protocol {
			return ports[i].Protocol < ports[j].Protocol
		}
		return ports[i].Port < ports[j].Port
	})
	return ports
}

// portsFromAddress scans the token pairs of a multiaddress and keeps
// tcp/udp components with a numeric port.
func portsFromAddress(addr string) []PortSpec {
	tokens := strings.Split(strings.TrimPrefix(addr, "/"), "/")
	var specs []PortSpec
	for i := 0; i+1 < len(tokens); i += 2 {
		proto := strings.ToLower(tokens[i])
		if proto != "tcp" && proto != "udp" {
			continue
		}
		port, err := strconv.Atoi(tokens[i+1])
		if err != nil {
			continue
		}
		specs = append(specs, PortSpec{Protocol: proto, Port: port})
	}
	return specs
}

// NormalizeForInternal rewrites a wildcard or loopback host component to
// the node's internal IP. Any other host, and every protocol/port/
// trailing component, is preserved verbatim.
func NormalizeForInternal(addr, internalIP string) string {
	tokens := strings.Split(addr, "/")
	// /ip4/<host>/... splits as ["", "ip4", "<host>", ...]
	if len(tokens) < 3 || internalIP == "" {
		return addr
	}
	switch tokens[2] {
	case "0.0.0.0", "127.0.0.1", "::", "::1":
		tokens[2] = internalIP
	}
	return strings.Join(tokens, "/")
}

// BuildPeerAddresses computes each node's peer list: for node n, the
// normalized first listen address of every *other* node m with a known
// internal IP, suffixed with m's peer identity, comma-joined. Nodes
// without a resolvable internal IP contribute nothing; they are simply
// not dialable yet.
func BuildPeerAddresses(nodes []descriptor.Node, internalIPs map[string]string) map[string]string {
	peers := make(map[string]string, len(nodes))
	for _, node := range nodes {
		var entries []string
		seen := make(map[string]struct{})
		for _, other := range nodes {
			if other.NodeName == node.NodeName {
				continue
			}
			entry, ok := peerEntry(other, internalIPs)
			if !ok {
				continue
			}
			if _, dup := seen[entry]; dup {
				continue
			}
			seen[entry] = struct{}{}
			entries = append(entries, entry)
		}
		peers[node.NodeName] = strings.Join(entries, ",")
	}
	return peers
}

// BuildBootAddresses flattens all boot nodes into the one shared
// bootstrap CSV every validator starts from.
func BuildBootAddresses(bootNodes []descriptor.Node, internalIPs map[string]string) string {
	var entries []string
	seen := make(map[string]struct{})
	for _, node := range bootNodes {
		entry, ok := peerEntry(node, internalIPs)
		if !ok {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		entries = append(entries, entry)
	}
	return strings.Join(entries, ",")
}

func peerEntry(node descriptor.Node, internalIPs map[string]string) (string, bool) {
	ip := internalIPs[node.NodeName]
	if ip == "" || len(node.ListenAddresses) == 0 {
		return "", false
	}
	return NormalizeForInternal(node.ListenAddresses[0], ip) + "/p2p/" + node.PeerID, true
}
