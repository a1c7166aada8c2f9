package deploy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eqlabs/starknet-consensus-interop/internal/topology"
)

// Mount maps a host path into the container.
type Mount struct {
	Source string
	Target string
}

// EnvVar is one container environment variable.
type EnvVar struct {
	Key   string
	Value string
}

// DockerCommand is the structured form of a docker run invocation.
// Clauses are collected as typed fields and assembled into a shell
// command only at render time, in a fixed order, so the invocation is
// deterministic and individually inspectable in tests.
type DockerCommand struct {
	Name        string
	Image       string
	Restart     string
	HostNetwork bool
	Publish     []topology.PortSpec
	Mounts      []Mount
	Env         []EnvVar
	Args        []string
}

// Render assembles the final docker run command line.
func (c *DockerCommand) Render() string {
	parts := []string{"docker", "run", "-d", "--name", shellQuote(c.Name)}
	if c.Restart != "" {
		parts = append(parts, "--restart", c.Restart)
	}
	if c.HostNetwork {
		parts = append(parts, "--network", "host")
	}
	for _, p := range c.Publish {
		parts = append(parts, "-p", fmt.Sprintf("%d:%d/%s", p.Port, p.Port, p.Protocol))
	}
	for _, m := range c.Mounts {
		parts = append(parts, "-v", shellQuote(m.Source+":"+m.Target))
	}
	for _, e := range c.Env {
		parts = append(parts, "-e", shellQuote(e.Key+"="+e.Value))
	}
	parts = append(parts, shellQuote(c.Image))
	for _, a := range c.Args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

var shellSafeRe = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

// shellQuote single-quotes s unless it consists only of characters the
// shell treats literally.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if shellSafeRe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
