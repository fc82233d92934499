package steps

import (
	"context"
	"fmt"
	"time"
)

const (
	waitAttempts = 30
	waitInterval = 2 * time.Second
)

// Wait repeatedly evaluates a remote boolean test expression until it
// succeeds or the attempt bound is reached.
type Wait struct {
	Condition string `mapstructure:"condition"`

	attempts int
	interval time.Duration
}

func newWait(params map[string]any) (Step, error) {
	var w Wait
	if err := decodeParams(params, &w); err != nil {
		return nil, err
	}
	if w.Condition == "" {
		return nil, fmt.Errorf("wait step requires a condition")
	}
	w.attempts = waitAttempts
	w.interval = waitInterval
	return &w, nil
}

func (w *Wait) Name() string { return "wait" }

func (w *Wait) Run(ctx context.Context, env *Env) error {
	for attempt := 1; attempt <= w.attempts; attempt++ {
		if _, err := env.Remote.RunCommands(ctx, []string{w.Condition}); err == nil {
			return nil
		}

		if attempt < w.attempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("wait for condition cancelled: %w", ctx.Err())
			case <-time.After(w.interval):
			}
		}
	}
	return &WaitTimeoutError{Condition: w.Condition, Attempts: w.attempts}
}
