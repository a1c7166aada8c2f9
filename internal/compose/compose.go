// Package compose renders the validator set into a docker-compose file
// for local, single-host test runs. It reuses the per-team runtime
// configs; network-level placeholders render empty since a local run
// has no provisioned topology.
package compose

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/deploy"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

// Service is one docker-compose service entry.
type Service struct {
	Image       string            `yaml:"image"`
	Ports       []string          `yaml:"ports,omitempty"`
	Volumes     []string          `yaml:"volumes"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Command     []string          `yaml:"command,omitempty"`
}

// File is the generated docker-compose document.
type File struct {
	Services map[string]Service `yaml:"services"`
}

// Generate builds a compose file from the validator set. Validators
// whose team has no runtime config are skipped with a warning, matching
// the tolerant behavior expected of local tooling.
func Generate(cfg *config.Config, validators []descriptor.Node) (*File, error) {
	file := &File{Services: make(map[string]Service)}

	runtimes := make(map[string]*config.RuntimeConfig)
	for _, node := range validators {
		rc, ok := runtimes[node.Team]
		if !ok {
			path, err := cfg.ValidatorRunFile(node.Team)
			if err != nil {
				log.Printf("Skipping validator %s: no runtime config for team %s", node.Address, node.Team)
				runtimes[node.Team] = nil
				continue
			}
			rc, err = config.LoadRuntime(path)
			if err != nil {
				return nil, fmt.Errorf("team %s: %w", node.Team, err)
			}
			runtimes[node.Team] = rc
		}
		if rc == nil {
			log.Printf("Skipping validator %s: no runtime config for team %s", node.Address, node.Team)
			continue
		}

		service, err := buildService(cfg, node, rc)
		if err != nil {
			return nil, fmt.Errorf("validator %s: %w", node.NodeName, err)
		}
		file.Services[node.NodeName] = service
	}
	return file, nil
}

func buildService(cfg *config.Config, node descriptor.Node, rc *config.RuntimeConfig) (Service, error) {
	vars := deploy.Vars{
		"node_name":        node.NodeName,
		"peer_id":          node.PeerID,
		"team":             node.Team,
		"address":          node.Address,
		"listen_addresses": strings.Join(node.ListenAddresses, ","),
		"network":          cfg.Network,
		"bootstrap_addrs":  "",
		"peer_addrs":       "",
		"validator_addrs":  "",
	}

	command, err := deploy.SubstituteAll(rc.Cmd, vars)
	if err != nil {
		return Service{}, err
	}

	env := make(map[string]string, len(rc.Env))
	for k, v := range rc.Env {
		rendered, err := deploy.Substitute(v, vars)
		if err != nil {
			return Service{}, fmt.Errorf("env %s: %w", k, err)
		}
		env[k] = rendered
	}

	var ports []string
	for _, spec := range topology.DerivePorts([]descriptor.Node{node}) {
		ports = append(ports, fmt.Sprintf("%d:%d/%s", spec.Port, spec.Port, spec.Protocol))
	}

	return Service{
		Image: rc.Image,
		Ports: ports,
		Volumes: []string{
			"./" + cfg.ValidatorIdentityFile(node.Team, node.Address) + ":" + rc.P2PIdentityPath,
		},
		Environment: env,
		Command:     command,
	}, nil
}

// Write marshals the compose file to path.
func Write(file *File, path string) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode compose file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
