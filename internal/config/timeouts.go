package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the operational bounds for polling, retries, and waits.
// These values can be customized via environment variables.
type Timeouts struct {
	StatePoll        time.Duration // Interval between instance state polls
	StateWait        time.Duration // Bound on waiting for one instance state transition
	ImageWait        time.Duration // Bound on waiting for an AMI to become available
	SSHRetryDelay    time.Duration // Fixed delay between SSH connection attempts
	SSHMaxAttempts   int           // Maximum SSH connection attempts
	ReplicationLimit int           // Maximum concurrent region copies
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - MAMI_POLL_INTERVAL (default: 1s)
//   - MAMI_TIMEOUT_STATE_WAIT (default: 10m)
//   - MAMI_TIMEOUT_IMAGE_WAIT (default: 20m)
//   - MAMI_SSH_RETRY_DELAY (default: 5s)
//   - MAMI_SSH_MAX_ATTEMPTS (default: 60)
//   - MAMI_REPLICATION_LIMIT (default: 4)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		StatePoll:        parseDuration("MAMI_POLL_INTERVAL", 1*time.Second),
		StateWait:        parseDuration("MAMI_TIMEOUT_STATE_WAIT", 10*time.Minute),
		ImageWait:        parseDuration("MAMI_TIMEOUT_IMAGE_WAIT", 20*time.Minute),
		SSHRetryDelay:    parseDuration("MAMI_SSH_RETRY_DELAY", 5*time.Second),
		SSHMaxAttempts:   parseInt("MAMI_SSH_MAX_ATTEMPTS", 60),
		ReplicationLimit: parseInt("MAMI_REPLICATION_LIMIT", 4),
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
