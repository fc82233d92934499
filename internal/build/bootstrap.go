package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/opsee/mami/internal/steps"
)

// bootstrapEnvPath is where the instance finds its build-time environment.
const bootstrapEnvPath = "/etc/mami.env"

// bootstrapStep writes the declared environment variables into the
// instance's bootstrap file. It runs inside the staging lifecycle, before
// any declared provisioning step, so later steps can source the file.
type bootstrapStep struct {
	vars []string

	// lookup resolves a variable from the builder's process environment.
	lookup func(string) (string, bool)
}

func newBootstrapStep(vars []string) *bootstrapStep {
	return &bootstrapStep{vars: vars, lookup: os.LookupEnv}
}

func (b *bootstrapStep) Name() string { return "bootstrap-env" }

func (b *bootstrapStep) Run(ctx context.Context, env *steps.Env) error {
	content := b.render(env)

	dir, err := os.MkdirTemp("", "mami-env-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	local := filepath.Join(dir, "mami.env")
	if err := os.WriteFile(local, content, 0o600); err != nil {
		return fmt.Errorf("failed to write bootstrap env file: %w", err)
	}

	if err := env.Remote.Upload(ctx, []string{local}, env.Staging, false); err != nil {
		return err
	}

	staged := path.Join(env.Staging, "mami.env")
	_, err = env.Remote.RunCommands(ctx, []string{
		fmt.Sprintf("sudo mv %s %s", staged, bootstrapEnvPath),
		fmt.Sprintf("sudo chown root:root %s", bootstrapEnvPath),
		fmt.Sprintf("sudo chmod 600 %s", bootstrapEnvPath),
	})
	return err
}

// render produces the KEY=VALUE document. Variables missing from the
// builder's environment are skipped with a warning rather than written
// empty.
func (b *bootstrapStep) render(env *steps.Env) []byte {
	var buf bytes.Buffer
	for _, name := range b.vars {
		value, ok := b.lookup(name)
		if !ok {
			env.Log.Warn("bootstrap variable not set in builder environment", "name", name)
			continue
		}
		fmt.Fprintf(&buf, "%s=%s\n", name, value)
	}
	return buf.Bytes()
}
