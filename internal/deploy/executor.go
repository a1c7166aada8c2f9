// Package deploy materializes node containers on provisioned instances.
// It renders the per-team runtime configuration into a docker run
// invocation and drives it over SSH. The executor keeps no state
// between nodes; a failed node never affects the others.
package deploy

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/eqlabs/starknet-consensus-interop/internal/config"
	"github.com/eqlabs/starknet-consensus-interop/internal/descriptor"
	"github.com/eqlabs/starknet-consensus-interop/internal/platform/ssh"
	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

const (
	sshPort       = 22
	portProbeWait = 3 * time.Second

	// Host-side paths staged on every instance.
	remoteDataMount = "/mnt/data"

	installDocker = "command -v docker >/dev/null 2>&1 || (apt-get update -qq && apt-get install -y -qq docker.io)"
)

// Runner is the remote shell surface the executor drives. *ssh.Client
// satisfies it; tests substitute a fake.
type Runner interface {
	Connect(ctx context.Context) error
	Close() error
	Run(ctx context.Context, command string) (string, error)
	Upload(ctx context.Context, content []byte, remotePath string) error
}

// Target is one node resolved and ready for deployment.
type Target struct {
	Node       descriptor.Node
	ExternalIP string
	Runtime    *config.RuntimeConfig

	// DataDevice is the attached volume's device path. Validators only.
	DataDevice string
}

// Executor deploys containers onto provisioned instances.
type Executor struct {
	cfg *config.Config

	// Factory seams so tests can fake the remote side.
	newRunner   func(host string) (Runner, error)
	waitForPort func(ctx context.Context, host string) error
}

// NewExecutor creates an executor that connects over SSH with the given
// private key.
func NewExecutor(cfg *config.Config, privateKey []byte) *Executor {
	return &Executor{
		cfg: cfg,
		newRunner: func(host string) (Runner, error) {
			return ssh.NewClient(&ssh.Config{
				Host:        host,
				User:        cfg.SSHUser,
				PrivateKey:  privateKey,
				DialTimeout: cfg.Timeouts.SSHDial,
				MaxRetries:  cfg.Timeouts.SSHAuthRetries,
				RetryDelay:  cfg.Timeouts.SSHAuthDelay,
			})
		},
		waitForPort: func(ctx context.Context, host string) error {
			return ssh.WaitForPort(ctx, host, sshPort, portProbeWait, cfg.Timeouts.SSHPortWait)
		},
	}
}

// DeployBootNode deploys a boot node container. Boot nodes run with
// host networking and discover the other boot nodes via peerAddrs.
// peer_addrs and bootstrap_addrs are aliases for the same list, so
// team run configs may use either.
func (e *Executor) DeployBootNode(ctx context.Context, t Target, peerAddrs string) error {
	vars := e.baseVars(t.Node)
	vars["peer_addrs"] = peerAddrs
	vars["bootstrap_addrs"] = peerAddrs

	cmd, err := e.buildCommand(t, vars, false)
	if err != nil {
		return fmt.Errorf("boot node %s: %w", t.Node.NodeName, err)
	}
	return e.deploy(ctx, t, cmd, e.cfg.BootIdentityFile(t.Node.Team), false)
}

// DeployValidator deploys a validator container. Validators bootstrap
// from bootstrapAddrs (peer_addrs aliases the same list), peer with
// validatorAddrs, and publish the ports derived from their own listen
// addresses.
func (e *Executor) DeployValidator(ctx context.Context, t Target, bootstrapAddrs, validatorAddrs string) error {
	vars := e.baseVars(t.Node)
	vars["address"] = t.Node.Address
	vars["bootstrap_addrs"] = bootstrapAddrs
	vars["peer_addrs"] = bootstrapAddrs
	vars["validator_addrs"] = validatorAddrs

	cmd, err := e.buildCommand(t, vars, true)
	if err != nil {
		return fmt.Errorf("validator %s: %w", t.Node.NodeName, err)
	}
	return e.deploy(ctx, t, cmd, e.cfg.ValidatorIdentityFile(t.Node.Team, t.Node.Address), true)
}

func (e *Executor) baseVars(node descriptor.Node) Vars {
	return Vars{
		"node_name":        node.NodeName,
		"peer_id":          node.PeerID,
		"team":             node.Team,
		"listen_addresses": strings.Join(node.ListenAddresses, ","),
		"network":          e.cfg.Network,
	}
}

// buildCommand renders the runtime config into a docker invocation.
func (e *Executor) buildCommand(t Target, vars Vars, validator bool) (*DockerCommand, error) {
	rc := t.Runtime

	args, err := SubstituteAll(rc.Cmd, vars)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(rc.Env))
	for k := range rc.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]EnvVar, 0, len(keys))
	for _, k := range keys {
		value, err := Substitute(rc.Env[k], vars)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", k, err)
		}
		env = append(env, EnvVar{Key: k, Value: value})
	}

	cmd := &DockerCommand{
		Name:    t.Node.NodeName,
		Image:   rc.Image,
		Restart: "unless-stopped",
		Mounts:  []Mount{{Source: e.remoteIdentityPath(), Target: rc.P2PIdentityPath}},
		Env:     env,
		Args:    args,
	}
	if validator {
		cmd.Publish = topology.DerivePorts([]descriptor.Node{t.Node})
		cmd.Mounts = append(cmd.Mounts, Mount{Source: remoteDataMount, Target: rc.DataDir})
	} else {
		cmd.HostNetwork = true
	}
	return cmd, nil
}

// deploy runs the per-node protocol. Each step's failure aborts this
// node only.
func (e *Executor) deploy(ctx context.Context, t Target, cmd *DockerCommand, identityFile string, validator bool) error {
	name := t.Node.NodeName
	log.Printf("Deploying %s to %s", name, t.ExternalIP)

	if err := e.waitForPort(ctx, t.ExternalIP); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	runner, err := e.newRunner(t.ExternalIP)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := runner.Connect(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer func() { _ = runner.Close() }()

	if _, err := runner.Run(ctx, installDocker); err != nil {
		return fmt.Errorf("%s: docker install: %w", name, err)
	}

	if err := e.stageIdentity(ctx, runner, identityFile); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if validator {
		if err := e.mountDataVolume(ctx, runner, t.DataDevice); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if err := e.startContainer(ctx, runner, cmd); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	log.Printf("Deployed %s", name)
	return nil
}

// stageIdentity uploads the node's keypair file and normalizes its
// ownership and permissions.
func (e *Executor) stageIdentity(ctx context.Context, runner Runner, localPath string) error {
	content, err := os.ReadFile(localPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read identity file: %w", err)
	}

	remotePath := e.remoteIdentityPath()
	if err := runner.Upload(ctx, content, remotePath); err != nil {
		return fmt.Errorf("failed to upload identity file: %w", err)
	}

	fix := fmt.Sprintf("chown %s: %s && chmod 644 %s", e.cfg.SSHUser, remotePath, remotePath)
	if _, err := runner.Run(ctx, fix); err != nil {
		return fmt.Errorf("failed to fix identity permissions: %w", err)
	}
	return nil
}

// mountDataVolume waits for the attached volume's device to settle and
// mounts it. Mounting is skipped when the mount point is already live,
// so re-runs are safe.
func (e *Executor) mountDataVolume(ctx context.Context, runner Runner, device string) error {
	if device == "" {
		return fmt.Errorf("no data volume device resolved")
	}

	settle := fmt.Sprintf("udevadm settle --timeout=%d && test -b %s", int(e.cfg.Timeouts.DiskSettle.Seconds()), device)
	if _, err := runner.Run(ctx, settle); err != nil {
		return fmt.Errorf("data volume device %s not visible: %w", device, err)
	}

	mount := fmt.Sprintf("mkdir -p %[1]s && (mountpoint -q %[1]s || mount -o discard,defaults %[2]s %[1]s) && chown %[3]s: %[1]s",
		remoteDataMount, device, e.cfg.SSHUser)
	if _, err := runner.Run(ctx, mount); err != nil {
		return fmt.Errorf("failed to mount data volume %s: %w", device, err)
	}
	return nil
}

// startContainer replaces any previous container of the same name with
// a fresh one running the rendered invocation.
func (e *Executor) startContainer(ctx context.Context, runner Runner, cmd *DockerCommand) error {
	cleanup := fmt.Sprintf("docker stop %[1]s >/dev/null 2>&1 || true; docker rm %[1]s >/dev/null 2>&1 || true", cmd.Name)
	if _, err := runner.Run(ctx, cleanup); err != nil {
		return fmt.Errorf("failed to remove previous container: %w", err)
	}

	if _, err := runner.Run(ctx, "docker pull "+shellQuote(cmd.Image)); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", cmd.Image, err)
	}

	if _, err := runner.Run(ctx, cmd.Render()); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

func (e *Executor) remoteIdentityPath() string {
	return path.Join(e.cfg.RemoteHome(), "identity.json")
}
