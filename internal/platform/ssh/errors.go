package ssh

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// ConnectionError indicates the transport never came up within the retry
// bound.
type ConnectionError struct {
	Addr     string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to establish SSH connection to %s after %d attempts: %v", e.Addr, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RemoteCommandError indicates a remote invocation exited non-zero (or the
// channel broke mid-command). Output holds the captured combined output with
// escape sequences already stripped.
type RemoteCommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *RemoteCommandError) Error() string {
	return fmt.Sprintf("remote command failed: %v\nCommand: %s\nOutput: %s", e.Err, e.Command, e.Output)
}

func (e *RemoteCommandError) Unwrap() error {
	return e.Err
}

// ExitStatus returns the remote exit status, or -1 if the command did not
// run to completion.
func (e *RemoteCommandError) ExitStatus() int {
	var exitErr *ssh.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitStatus()
	}
	return -1
}
