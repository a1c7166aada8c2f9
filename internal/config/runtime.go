package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// RuntimeConfig is a team's per-node container runtime configuration
// (run.yaml). Cmd entries may contain {{placeholder}} tokens that are
// substituted at deploy time.
type RuntimeConfig struct {
	Image           string            `mapstructure:"image"`
	DataDir         string            `mapstructure:"data_dir"`
	P2PIdentityPath string            `mapstructure:"p2p_identity_path"`
	Env             map[string]string `mapstructure:"env"`
	Cmd             []string          `mapstructure:"cmd"`
	DBDiskGB        int               `mapstructure:"db_disk_gb"`
}

// LoadRuntime reads and decodes a per-team run.yaml file.
func LoadRuntime(path string) (*RuntimeConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read runtime config: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml %s: %w", path, err)
	}

	var cfg RuntimeConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode runtime config %s: %w", path, err)
	}

	if cfg.Image == "" {
		return nil, fmt.Errorf("%s: 'image' is required", path)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "/data"
	}
	if cfg.P2PIdentityPath == "" {
		cfg.P2PIdentityPath = "/identity.json"
	}
	if cfg.DBDiskGB == 0 {
		cfg.DBDiskGB = DefaultDiskSizeGB
	}
	return &cfg, nil
}

// ValidatorRunFile resolves a team's validator run config, preferring
// run_validator.yaml over the legacy run.yaml.
func (c *Config) ValidatorRunFile(team string) (string, error) {
	return firstExisting(
		filepath.Join(c.ValidatorsDir, team, "run_validator.yaml"),
		filepath.Join(c.ValidatorsDir, team, "run.yaml"),
	)
}

// BootRunFile resolves a team's boot node run config, preferring
// run_boot.yaml under the team's validator directory over a standalone
// boot_nodes/<team>/run.yaml.
func (c *Config) BootRunFile(team string) (string, error) {
	return firstExisting(
		filepath.Join(c.ValidatorsDir, team, "run_boot.yaml"),
		filepath.Join(c.BootNodesDir, team, "run.yaml"),
	)
}

// ValidatorIdentityFile returns the local path of a validator's keypair.
func (c *Config) ValidatorIdentityFile(team, address string) string {
	return filepath.Join(c.ValidatorsDir, team, "id_"+address+".json")
}

// BootIdentityFile returns the local path of a boot node's keypair.
func (c *Config) BootIdentityFile(team string) string {
	return filepath.Join(c.ValidatorsDir, team, "id_boot.json")
}

func firstExisting(paths ...string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no runtime config found, tried: %v", paths)
}
