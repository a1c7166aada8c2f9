// Package descriptor defines the static node declarations the deployment
// tool operates on: validators and boot nodes with their libp2p identity
// and listen addresses.
package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Node describes a single validator or boot node. Boot nodes carry no
// on-chain address; for them Address is empty.
type Node struct {
	NodeName        string   `json:"node_name"`
	Team            string   `json:"team"`
	Address         string   `json:"address,omitempty"`
	PeerID          string   `json:"peer_id"`
	ListenAddresses []string `json:"listen_addresses"`
}

// IsValidator reports whether the node is a validator (has an address).
func (n Node) IsValidator() bool {
	return n.Address != ""
}

// Set is the full current deployment: all validators plus all boot nodes.
type Set struct {
	Validators []Node
	BootNodes  []Node
}

// All returns validators followed by boot nodes.
func (s Set) All() []Node {
	all := make([]Node, 0, len(s.Validators)+len(s.BootNodes))
	all = append(all, s.Validators...)
	all = append(all, s.BootNodes...)
	return all
}

// LoadValidators reads the merged validator list from a JSON array file.
func LoadValidators(path string) ([]Node, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read validators file: %w", err)
	}

	var validators []Node
	if err := json.Unmarshal(data, &validators); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(validators))
	for _, v := range validators {
		if v.NodeName == "" {
			return nil, fmt.Errorf("%s: validator %s has no node_name", path, v.Address)
		}
		if len(v.ListenAddresses) == 0 {
			return nil, fmt.Errorf("%s: validator %s has no listen_addresses", path, v.NodeName)
		}
		if _, dup := seen[v.NodeName]; dup {
			return nil, fmt.Errorf("%s: duplicate node_name %q", path, v.NodeName)
		}
		seen[v.NodeName] = struct{}{}
	}
	return validators, nil
}

// LoadBootNodes scans the per-team directories under baseDir for
// boot_node.json files, one boot node per team. Teams without one are
// simply skipped; a deployment with zero boot nodes is valid.
func LoadBootNodes(baseDir string) ([]Node, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", baseDir, err)
	}

	var bootNodes []Node
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(baseDir, entry.Name(), "boot_node.json")
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var node Node
		if err := json.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if node.Team == "" {
			node.Team = entry.Name()
		}
		if node.NodeName == "" {
			return nil, fmt.Errorf("%s: boot node has no node_name", path)
		}
		if len(node.ListenAddresses) == 0 {
			return nil, fmt.Errorf("%s: boot node has no listen_addresses", path)
		}
		bootNodes = append(bootNodes, node)
	}
	return bootNodes, nil
}

// LoadSet loads the full descriptor set: the merged validators file plus
// every team's boot node declaration.
func LoadSet(validatorsFile, validatorsDir string) (Set, error) {
	validators, err := LoadValidators(validatorsFile)
	if err != nil {
		return Set{}, err
	}
	bootNodes, err := LoadBootNodes(validatorsDir)
	if err != nil {
		return Set{}, err
	}

	names := make(map[string]struct{}, len(validators))
	for _, v := range validators {
		names[v.NodeName] = struct{}{}
	}
	for _, b := range bootNodes {
		if _, dup := names[b.NodeName]; dup {
			return Set{}, fmt.Errorf("boot node %q collides with a validator node_name", b.NodeName)
		}
	}
	return Set{Validators: validators, BootNodes: bootNodes}, nil
}
