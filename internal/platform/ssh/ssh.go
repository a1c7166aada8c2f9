// Package ssh provides the SSH client used to deploy containers on
// provisioned instances. It handles connection establishment with retry
// logic, key-based authentication, command execution, and file upload.
//
// Host key verification is disabled: instances are freshly created by
// the same run and their host keys are not known beforehand.
package ssh

import (
	"context"
	"fmt"
	"net"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/eqlabs/starknet-consensus-interop/internal/util/retry"
	"github.com/eqlabs/starknet-consensus-interop/internal/util/wait"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 5
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// A freshly booted instance accepts TCP before sshd has loaded the
	// authorized key, so failed auth is retried. If zero,
	// defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts. It
	// doubles on each attempt. If zero, defaultRetryDelay is used.
	RetryDelay time.Duration
}

// Client executes commands and uploads files on a remote instance.
// Connect must be called before Run or Upload; the connection is then
// reused for the whole deployment of the node.
type Client struct {
	config *Config
	signer ssh.Signer
	conn   *ssh.Client
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Connect establishes the SSH connection with retry logic.
func (c *Client) Connect(ctx context.Context) error {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // Instances are created by this run
		Timeout:         c.config.DialTimeout,
	}

	addr := net.JoinHostPort(c.config.Host, fmt.Sprintf("%d", c.config.Port))
	err := retry.WithExponentialBackoff(ctx, func() error {
		conn, dialErr := ssh.Dial("tcp", addr, config)
		if dialErr != nil {
			return dialErr
		}
		c.conn = conn
		return nil
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return fmt.Errorf("failed to establish SSH connection to %s after %d retry attempts: %w",
			addr, c.config.MaxRetries, err)
	}
	return nil
}

// Close tears down the connection. Safe to call on a never-connected client.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Run executes a command on the remote host.
// Returns command output (stdout+stderr) and any execution error.
func (c *Client) Run(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.conn == nil {
		return "", fmt.Errorf("not connected to %s", c.config.Host)
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
			c.config.Host, err, command, string(output))
	}
	return string(output), nil
}

// Upload writes content to remotePath over SFTP, creating parent
// directories as needed.
func (c *Client) Upload(ctx context.Context, content []byte, remotePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.conn == nil {
		return fmt.Errorf("not connected to %s", c.config.Host)
	}

	client, err := sftp.NewClient(c.conn)
	if err != nil {
		return fmt.Errorf("failed to open SFTP session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = client.Close() }()

	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		if err := client.MkdirAll(dir); err != nil {
			return fmt.Errorf("failed to create %s on %s: %w", dir, c.config.Host, err)
		}
	}

	file, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create %s on %s: %w", remotePath, c.config.Host, err)
	}
	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s on %s: %w", remotePath, c.config.Host, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s on %s: %w", remotePath, c.config.Host, err)
	}
	return nil
}

// WaitForPort blocks until host:port accepts TCP connections, probing at
// the given interval up to the deadline.
func WaitForPort(ctx context.Context, host string, port int, interval, deadline time.Duration) error {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	err := wait.Poll(ctx, interval, deadline, func(_ context.Context) (bool, error) {
		conn, err := net.DialTimeout("tcp", addr, interval)
		if err != nil {
			return false, nil
		}
		_ = conn.Close()
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("port %s did not open in time: %w", addr, err)
	}
	return nil
}
