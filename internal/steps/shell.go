package steps

import (
	"context"
	"fmt"
)

// Shell executes a literal ordered command list on the instance.
type Shell struct {
	Commands []string `mapstructure:"commands"`
}

func newShell(params map[string]any) (Step, error) {
	var s Shell
	if err := decodeParams(params, &s); err != nil {
		return nil, err
	}
	if len(s.Commands) == 0 {
		return nil, fmt.Errorf("shell step requires at least one command")
	}
	return &s, nil
}

func (s *Shell) Name() string { return "shell" }

func (s *Shell) Run(ctx context.Context, env *Env) error {
	output, err := env.Remote.RunCommands(ctx, s.Commands)
	if err != nil {
		return err
	}
	if output != "" {
		env.Log.Debug("shell output", "output", output)
	}
	return nil
}
