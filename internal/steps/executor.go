package steps

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Executor runs typed provisioning steps against a remote channel, in
// declared order. A failing step aborts all later steps; staging cleanup
// runs regardless of step outcome.
type Executor struct {
	staging string
	user    string
	log     hclog.Logger
}

// NewExecutor creates an executor for one build's staging directory and
// SSH user.
func NewExecutor(staging, user string, log hclog.Logger) *Executor {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Executor{staging: staging, user: user, log: log}
}

// EnsureStaging creates the staging directory on the instance with
// ownership that lets the SSH user write to it.
func (e *Executor) EnsureStaging(ctx context.Context, remote Remote) error {
	_, err := remote.RunCommands(ctx, []string{
		fmt.Sprintf("sudo mkdir -p %s", e.staging),
		fmt.Sprintf("sudo chown -R %s %s", e.user, e.staging),
	})
	if err != nil {
		return fmt.Errorf("failed to prepare staging directory %s: %w", e.staging, err)
	}
	return nil
}

// CleanupStaging removes the staging directory from the instance.
func (e *Executor) CleanupStaging(ctx context.Context, remote Remote) error {
	_, err := remote.RunCommands(ctx, []string{
		fmt.Sprintf("sudo rm -rf %s", e.staging),
	})
	if err != nil {
		return fmt.Errorf("failed to remove staging directory %s: %w", e.staging, err)
	}
	return nil
}

// Run executes the steps strictly in order, stopping at the first failure.
// Staging is prepared before the first step and removed afterwards no
// matter how the run ends, including cancellation.
func (e *Executor) Run(ctx context.Context, remote Remote, steps []Step) (err error) {
	if err := e.EnsureStaging(ctx, remote); err != nil {
		return err
	}

	defer func() {
		// Cleanup must run even when the build context is already gone.
		cleanupErr := e.CleanupStaging(context.WithoutCancel(ctx), remote)
		if cleanupErr != nil {
			e.log.Warn("staging cleanup failed", "error", cleanupErr)
			if err == nil {
				err = cleanupErr
			}
		}
	}()

	env := &Env{Remote: remote, Staging: e.staging, User: e.user, Log: e.log}

	for i, step := range steps {
		e.log.Info("running provisioning step", "index", i+1, "total", len(steps), "type", step.Name())
		if stepErr := step.Run(ctx, env); stepErr != nil {
			return fmt.Errorf("step %d (%s) failed: %w", i+1, step.Name(), stepErr)
		}
	}
	return nil
}
