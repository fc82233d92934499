package ssh

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/crypto/ssh"

	"github.com/opsee/mami/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxAttempts = 60
	defaultRetryDelay  = 5 * time.Second
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

	// MaxAttempts bounds the connection attempts. The remote shell service
	// is not immediately ready after boot, so Connect keeps trying at a
	// fixed interval until this bound. If zero, defaultMaxAttempts is used.
	MaxAttempts int

	// RetryDelay is the fixed delay between connection attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification. If nil,
	// ssh.InsecureIgnoreHostKey() is used; the instances here are ephemeral
	// and their host keys are generated at boot.
	HostKeyCallback ssh.HostKeyCallback
}

func (c *Config) applyDefaults() error {
	if c.Host == "" {
		return fmt.Errorf("config host cannot be empty")
	}
	if c.User == "" {
		return fmt.Errorf("config user cannot be empty")
	}
	if len(c.PrivateKey) == 0 {
		return fmt.Errorf("config private key cannot be empty")
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.HostKeyCallback == nil {
		c.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Ephemeral build instances
	}
	return nil
}

// Client is a connected, authenticated channel to one instance.
// Sessions are created per RunCommands call; the underlying connection is
// reused until Close.
type Client struct {
	conn *ssh.Client
	addr string
}

// Connect authenticates to the host with the given key material, retrying
// at a fixed interval until the transport succeeds, the attempt bound is
// reached, or the context is cancelled.
func Connect(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	configCopy := *cfg
	if err := configCopy.applyDefaults(); err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	clientConfig := &ssh.ClientConfig{
		User: configCopy.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: configCopy.HostKeyCallback,
		Timeout:         configCopy.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", configCopy.Host, configCopy.Port)
	var conn *ssh.Client

	err = retry.Do(ctx, func() error {
		var dialErr error
		conn, dialErr = ssh.Dial("tcp", addr, clientConfig)
		return dialErr
	},
		retry.WithMaxAttempts(configCopy.MaxAttempts),
		retry.WithFixedDelay(configCopy.RetryDelay),
	)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Attempts: configCopy.MaxAttempts, Err: err}
	}

	return &Client{conn: conn, addr: addr}, nil
}

// RunCommands joins the commands into one remote invocation and executes it.
// Captured output has terminal control and escape sequences stripped. A
// non-zero remote exit status is reported as a RemoteCommandError carrying
// the cleaned output.
func (c *Client) RunCommands(ctx context.Context, commands []string) (string, error) {
	if len(commands) == 0 {
		return "", nil
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session on %s: %w", c.addr, err)
	}
	defer func() { _ = session.Close() }()

	command := strings.Join(commands, " && ")

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, runErr := session.CombinedOutput(command)
		done <- result{output: output, err: runErr}
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return "", fmt.Errorf("remote command cancelled on %s: %w", c.addr, ctx.Err())
	case res := <-done:
		output := ansi.Strip(string(res.output))
		if res.err != nil {
			return output, &RemoteCommandError{Command: command, Output: output, Err: res.err}
		}
		return output, nil
	}
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
