package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable wait and retry bounds.
// Each value can be overridden via an environment variable.
type Timeouts struct {
	OperationPoll   time.Duration // Interval between cloud operation status checks
	InstanceStart   time.Duration // Deadline for a started instance to reach running
	AddressAssign   time.Duration // Deadline for a public address to be assigned
	SSHPortWait     time.Duration // Deadline for the SSH port to accept connections
	DiskSettle      time.Duration // Deadline for an attached volume device to settle
	SSHAuthRetries  int           // Auth attempts against a freshly booted node
	SSHAuthDelay    time.Duration // Initial delay between auth attempts (doubles)
	SSHDial         time.Duration // TCP dial timeout for SSH connections
}

// LoadTimeouts loads timeout configuration from environment variables.
// Unset or invalid variables fall back to defaults.
//
// Environment Variables:
//   - INTEROP_OPERATION_POLL (default: 2s)
//   - INTEROP_TIMEOUT_INSTANCE_START (default: 180s)
//   - INTEROP_TIMEOUT_ADDRESS_ASSIGN (default: 180s)
//   - INTEROP_TIMEOUT_SSH_PORT (default: 60s)
//   - INTEROP_TIMEOUT_DISK_SETTLE (default: 30s)
//   - INTEROP_SSH_AUTH_RETRIES (default: 5)
//   - INTEROP_SSH_AUTH_DELAY (default: 2s)
//   - INTEROP_SSH_DIAL_TIMEOUT (default: 10s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		OperationPoll:  parseDuration("INTEROP_OPERATION_POLL", 2*time.Second),
		InstanceStart:  parseDuration("INTEROP_TIMEOUT_INSTANCE_START", 180*time.Second),
		AddressAssign:  parseDuration("INTEROP_TIMEOUT_ADDRESS_ASSIGN", 180*time.Second),
		SSHPortWait:    parseDuration("INTEROP_TIMEOUT_SSH_PORT", 60*time.Second),
		DiskSettle:     parseDuration("INTEROP_TIMEOUT_DISK_SETTLE", 30*time.Second),
		SSHAuthRetries: parseInt("INTEROP_SSH_AUTH_RETRIES", 5),
		SSHAuthDelay:   parseDuration("INTEROP_SSH_AUTH_DELAY", 2*time.Second),
		SSHDial:        parseDuration("INTEROP_SSH_DIAL_TIMEOUT", 10*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
