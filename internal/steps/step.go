package steps

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Remote is the execution channel a step runs against. It is satisfied by
// the platform ssh client.
type Remote interface {
	RunCommands(ctx context.Context, commands []string) (string, error)
	Upload(ctx context.Context, localPaths []string, remoteDir string, recursive bool) error
}

// Env is the environment shared by all steps of one provisioning run.
type Env struct {
	Remote  Remote
	Staging string
	User    string
	Log     hclog.Logger
}

// Step is one unit of remote configuration work.
type Step interface {
	Name() string
	Run(ctx context.Context, env *Env) error
}

// UnknownStepTypeError indicates a step declaration whose type identifier
// has no registered handler.
type UnknownStepTypeError struct {
	Type string
}

func (e *UnknownStepTypeError) Error() string {
	return fmt.Sprintf("unknown step type %q", e.Type)
}

// WaitTimeoutError indicates a wait step's condition was never satisfied
// within its attempt bound.
type WaitTimeoutError struct {
	Condition string
	Attempts  int
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("condition %q not satisfied after %d attempts", e.Condition, e.Attempts)
}
