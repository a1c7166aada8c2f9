package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
)

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := &config.Config{
		Network:       "interop",
		ValidatorsDir: "validators",
		BootNodesDir:  "boot_nodes",
	}
	require.NoError(t, os.MkdirAll(filepath.Join("validators", "acme"), 0o755))
	runYAML := []byte(`image: ghcr.io/acme/node:v1
env:
  NETWORK: "{{network}}"
cmd:
  - "--name={{node_name}}"
  - "--bootstrap={{bootstrap_addrs}}"
`)
	require.NoError(t, os.WriteFile(filepath.Join("validators", "acme", "run_validator.yaml"), runYAML, 0o644))
	return cfg
}

func validators() []descriptor.Node {
	return []descriptor.Node{
		{
			NodeName:        "acme-validator-0",
			Team:            "acme",
			Address:         "0x1a",
			PeerID:          "12D3KooWAlpha",
			ListenAddresses: []string{"/ip4/0.0.0.0/tcp/30333", "/ip4/0.0.0.0/udp/30333"},
		},
		{
			NodeName:        "zeta-validator-0",
			Team:            "zeta",
			Address:         "0x2b",
			PeerID:          "12D3KooWBravo",
			ListenAddresses: []string{"/ip4/0.0.0.0/tcp/31000"},
		},
	}
}

func TestGenerate(t *testing.T) {
	cfg := fixtureConfig(t)

	file, err := Generate(cfg, validators())
	require.NoError(t, err)

	// The team without a runtime config is skipped, not fatal.
	require.Len(t, file.Services, 1)
	service := file.Services["acme-validator-0"]
	assert.Equal(t, "ghcr.io/acme/node:v1", service.Image)
	assert.Equal(t, []string{"30333:30333/tcp", "30333:30333/udp"}, service.Ports)
	assert.Equal(t, []string{"./validators/acme/id_0x1a.json:/identity.json"}, service.Volumes)
	assert.Equal(t, "interop", service.Environment["NETWORK"])
	assert.Equal(t, []string{"--name=acme-validator-0", "--bootstrap="}, service.Command)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := fixtureConfig(t)

	file, err := Generate(cfg, validators()[:1])
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, Write(file, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded File
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, file.Services["acme-validator-0"].Command, decoded.Services["acme-validator-0"].Command)
}
