// Package config holds all configuration for a deployment run.
//
// Configuration is resolved exactly once at the process boundary
// ([FromEnv]) and passed into components explicitly; nothing below the
// CLI layer reads environment state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults for optional settings.
const (
	DefaultNetwork        = "interop"
	DefaultSSHUser        = "root"
	DefaultLedgerPath     = ".deployed-state.json"
	DefaultValidatorsFile = "network-config/validators.json"
	DefaultValidatorsDir  = "validators"
	DefaultBootNodesDir   = "boot_nodes"
	DefaultServerType     = "cx22"
	DefaultImage          = "debian-12"
	DefaultNetworkCIDR    = "10.0.0.0/16"
	DefaultDiskSizeGB     = 50
)

// Config is the explicit configuration for one deployment run.
type Config struct {
	// Cloud scope and credentials.
	Token    string
	Location string

	// Chain network name passed to every container.
	Network string

	// Remote access.
	SSHKeyPath string
	SSHUser    string

	// Instance shape.
	ServerType string
	Image      string

	// Private network the nodes communicate over.
	NetworkCIDR string

	// Local layout.
	ValidatorsFile string
	ValidatorsDir  string
	BootNodesDir   string
	LedgerPath     string

	Timeouts *Timeouts
}

// FromEnv builds the run configuration from the environment. Required
// variables are HCLOUD_TOKEN and HCLOUD_LOCATION; everything else has a
// default. Errors are reported before any side effect happens.
func FromEnv() (*Config, error) {
	token := os.Getenv("HCLOUD_TOKEN")
	location := os.Getenv("HCLOUD_LOCATION")
	if token == "" || location == "" {
		return nil, fmt.Errorf("HCLOUD_TOKEN and HCLOUD_LOCATION must be set")
	}

	keyPath := getenv("INTEROP_SSH_KEY", "")
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory for default SSH key: %w", err)
		}
		keyPath = filepath.Join(home, ".ssh", "interop.pem")
	}

	return &Config{
		Token:          token,
		Location:       location,
		Network:        getenv("INTEROP_NETWORK", DefaultNetwork),
		SSHKeyPath:     keyPath,
		SSHUser:        getenv("INTEROP_SSH_USER", DefaultSSHUser),
		ServerType:     getenv("INTEROP_SERVER_TYPE", DefaultServerType),
		Image:          getenv("INTEROP_IMAGE", DefaultImage),
		NetworkCIDR:    getenv("INTEROP_NETWORK_CIDR", DefaultNetworkCIDR),
		ValidatorsFile: getenv("INTEROP_VALIDATORS_FILE", DefaultValidatorsFile),
		ValidatorsDir:  getenv("INTEROP_VALIDATORS_DIR", DefaultValidatorsDir),
		BootNodesDir:   getenv("INTEROP_BOOT_NODES_DIR", DefaultBootNodesDir),
		LedgerPath:     getenv("INTEROP_LEDGER", DefaultLedgerPath),
		Timeouts:       LoadTimeouts(),
	}, nil
}

// Defaults returns a configuration with only the local-layout defaults
// filled in, for commands that never touch the cloud (compose, merge,
// validate). Environment overrides for the layout still apply.
func Defaults() *Config {
	return &Config{
		Network:        getenv("INTEROP_NETWORK", DefaultNetwork),
		ValidatorsFile: getenv("INTEROP_VALIDATORS_FILE", DefaultValidatorsFile),
		ValidatorsDir:  getenv("INTEROP_VALIDATORS_DIR", DefaultValidatorsDir),
		BootNodesDir:   getenv("INTEROP_BOOT_NODES_DIR", DefaultBootNodesDir),
		LedgerPath:     getenv("INTEROP_LEDGER", DefaultLedgerPath),
	}
}

// ProviderScope identifies the provider-and-zone scope of a run, as
// recorded in the ledger metadata.
func (c *Config) ProviderScope() string {
	return "hcloud/" + c.Location
}

// RemoteHome returns the SSH user's home directory on the nodes.
func (c *Config) RemoteHome() string {
	if c.SSHUser == "root" {
		return "/root"
	}
	return "/home/" + c.SSHUser
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
