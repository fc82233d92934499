package steps

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const unitDir = "/etc/systemd/system"

// oneshotPattern matches a Type=oneshot directive in a unit file.
var oneshotPattern = regexp.MustCompile(`(?m)^\s*Type\s*=\s*oneshot\s*$`)

// Unit installs a systemd unit definition. The unit subtype is derived from
// the file extension. Long-running services are additionally enabled,
// started, and have their status reported; oneshot services, timers, and
// other subtypes are installed but not started.
type Unit struct {
	File string `mapstructure:"file"`
}

func newUnit(params map[string]any) (Step, error) {
	var u Unit
	if err := decodeParams(params, &u); err != nil {
		return nil, err
	}
	if u.File == "" {
		return nil, fmt.Errorf("unit step requires a file")
	}
	if filepath.Ext(u.File) == "" {
		return nil, fmt.Errorf("unit file %s has no extension to derive its subtype from", u.File)
	}
	return &u, nil
}

func (u *Unit) Name() string { return "unit" }

func (u *Unit) Run(ctx context.Context, env *Env) error {
	data, err := os.ReadFile(u.File) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read unit file: %w", err)
	}

	if err := env.Remote.Upload(ctx, []string{u.File}, env.Staging, false); err != nil {
		return err
	}

	base := filepath.Base(u.File)
	staged := path.Join(env.Staging, base)

	commands := []string{
		fmt.Sprintf("sudo mv %s %s", staged, path.Join(unitDir, base)),
		"sudo systemctl daemon-reload",
	}
	if u.shouldStart(data) {
		commands = append(commands,
			fmt.Sprintf("sudo systemctl enable %s", base),
			fmt.Sprintf("sudo systemctl start %s", base),
			fmt.Sprintf("sudo systemctl status %s --no-pager", base),
		)
	}

	output, err := env.Remote.RunCommands(ctx, commands)
	if err != nil {
		return err
	}
	if output != "" {
		env.Log.Debug("unit install output", "unit", base, "output", output)
	}
	return nil
}

// shouldStart reports whether the unit is a long-running service. Only
// .service units qualify, and oneshot services are excluded.
func (u *Unit) shouldStart(content []byte) bool {
	if !strings.EqualFold(filepath.Ext(u.File), ".service") {
		return false
	}
	return !oneshotPattern.Match(content)
}
