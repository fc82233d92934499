package steps

import (
	"context"
	"fmt"
)

// Copy uploads a local directory tree into the staging directory, where
// later steps can consume it.
type Copy struct {
	Source string `mapstructure:"source"`
}

func newCopy(params map[string]any) (Step, error) {
	var c Copy
	if err := decodeParams(params, &c); err != nil {
		return nil, err
	}
	if c.Source == "" {
		return nil, fmt.Errorf("copy step requires a source path")
	}
	return &c, nil
}

func (c *Copy) Name() string { return "copy" }

func (c *Copy) Run(ctx context.Context, env *Env) error {
	return env.Remote.Upload(ctx, []string{c.Source}, env.Staging, true)
}
