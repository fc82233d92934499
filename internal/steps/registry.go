package steps

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/opsee/mami/internal/config"
)

// factory decodes one step's variant-specific parameters.
type factory func(params map[string]any) (Step, error)

// registry is the fixed lookup table from step type identifier to its
// handler. It is populated here, once, at initialization; there is no
// dynamic resolution.
var registry = map[string]factory{
	"shell": newShell,
	"unit":  newUnit,
	"wait":  newWait,
	"copy":  newCopy,
	"chef":  newChef,
}

// Build turns declared step configurations into runnable steps, preserving
// order. An unregistered type identifier fails with UnknownStepTypeError.
func Build(cfgs []config.StepConfig) ([]Step, error) {
	built := make([]Step, 0, len(cfgs))
	for i, cfg := range cfgs {
		fn, ok := registry[cfg.Type]
		if !ok {
			return nil, &UnknownStepTypeError{Type: cfg.Type}
		}
		step, err := fn(cfg.Params)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, cfg.Type, err)
		}
		built = append(built, step)
	}
	return built, nil
}

// decodeParams decodes raw parameters into a concrete step struct.
func decodeParams(params map[string]any, out any) error {
	if err := mapstructure.Decode(params, out); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
