package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	hc "github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/deploy"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/orchestration"
	"github.com/eqlabs/starknet-consensus-interop/internal/platform/hcloud"
	"github.com/eqlabs/starknet-consensus-interop/internal/platform/ssh"
)

func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origLoadSet := loadSet
	origEnsureKeyPair := ensureKeyPair
	origNewProvisioner := newProvisioner
	origNewDeployer := newDeployer
	t.Cleanup(func() {
		loadConfig = origLoadConfig
		loadSet = origLoadSet
		ensureKeyPair = origEnsureKeyPair
		newProvisioner = origNewProvisioner
		newDeployer = origNewDeployer
	})
}

type noopDeployer struct{ deployed []string }

func (d *noopDeployer) DeployBootNode(_ context.Context, t deploy.Target, _ string) error {
	d.deployed = append(d.deployed, t.Node.NodeName)
	return nil
}

func (d *noopDeployer) DeployValidator(_ context.Context, t deploy.Target, _, _ string) error {
	d.deployed = append(d.deployed, t.Node.NodeName)
	return nil
}

func TestDeploy_InvalidStage(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func() (*config.Config, error) {
		t.Error("config must not be loaded for an invalid stage")
		return nil, nil
	}

	err := Deploy(context.Background(), "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid stage")
}

func TestDeploy_ConfigErrorPropagates(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func() (*config.Config, error) {
		return nil, errors.New("HCLOUD_TOKEN and HCLOUD_LOCATION must be set")
	}

	err := Deploy(context.Background(), "all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HCLOUD_TOKEN")
}

func TestDeploy_EmptyNodeSet(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func() (*config.Config, error) {
		return &config.Config{ValidatorsFile: "v.json", ValidatorsDir: "validators"}, nil
	}
	loadSet = func(_, _ string) (descriptor.Set, error) {
		return descriptor.Set{}, nil
	}

	err := Deploy(context.Background(), "all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no nodes declared")
}

func TestDeploy_InfraStage(t *testing.T) {
	saveAndRestoreFactories(t)
	dir := t.TempDir()

	cfg := &config.Config{
		Token:         "tok",
		Location:      "hel1",
		Network:       "interop",
		SSHUser:       "root",
		NetworkCIDR:   "10.0.0.0/16",
		ValidatorsDir: filepath.Join(dir, "validators"),
		BootNodesDir:  filepath.Join(dir, "boot_nodes"),
		LedgerPath:    filepath.Join(dir, ".deployed-state.json"),
		SSHKeyPath:    filepath.Join(dir, "interop.pem"),
		Timeouts:      config.LoadTimeouts(),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ValidatorsDir, "acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ValidatorsDir, "acme", "run_validator.yaml"),
		[]byte("image: ghcr.io/acme/node:v1\n"), 0o644))

	loadConfig = func() (*config.Config, error) { return cfg, nil }
	loadSet = func(_, _ string) (descriptor.Set, error) {
		return descriptor.Set{
			Validators: []descriptor.Node{{
				NodeName:        "acme-validator-0",
				Team:            "acme",
				Address:         "0x1a",
				PeerID:          "12D3KooWAlpha",
				ListenAddresses: []string{"/ip4/0.0.0.0/tcp/30333"},
			}},
		}, nil
	}
	ensureKeyPair = func(_ string) (*ssh.KeyPair, error) {
		return &ssh.KeyPair{PrivateKey: []byte("priv"), PublicKey: []byte("ssh-rsa AAAA")}, nil
	}
	var registeredKey string
	provider := &hcloud.MockProvisioner{
		EnsureSSHKeyFunc: func(_ context.Context, name, publicKey string) (*hc.SSHKey, error) {
			registeredKey = publicKey
			return &hc.SSHKey{ID: 1, Name: name}, nil
		},
	}
	newProvisioner = func(_ *config.Config) hcloud.Provisioner { return provider }
	deployer := &noopDeployer{}
	newDeployer = func(_ *config.Config, _ []byte) orchestration.Deployer { return deployer }

	require.NoError(t, Deploy(context.Background(), "infra"))
	assert.Equal(t, "ssh-rsa AAAA", registeredKey)
	assert.FileExists(t, cfg.LedgerPath)
	assert.Empty(t, deployer.deployed, "infra stage must not deploy containers")
}
