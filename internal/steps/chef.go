package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Chef installs the Chef agent on the instance, stages a generated solo
// configuration, run-list document, and cookbook tree, and triggers a
// chef-solo provisioning run.
type Chef struct {
	RunList   []string `mapstructure:"run_list"`
	Cookbooks string   `mapstructure:"cookbooks"`
	Version   string   `mapstructure:"version"`
}

func newChef(params map[string]any) (Step, error) {
	var c Chef
	if err := decodeParams(params, &c); err != nil {
		return nil, err
	}
	if len(c.RunList) == 0 {
		return nil, fmt.Errorf("chef step requires a run_list")
	}
	if c.Cookbooks == "" {
		return nil, fmt.Errorf("chef step requires a cookbooks path")
	}
	return &c, nil
}

func (c *Chef) Name() string { return "chef" }

func (c *Chef) Run(ctx context.Context, env *Env) error {
	installCmd := "curl -fsSL https://omnitruck.chef.io/install.sh | sudo bash"
	if c.Version != "" {
		installCmd = fmt.Sprintf("%s -s -- -v %s", installCmd, c.Version)
	}
	if _, err := env.Remote.RunCommands(ctx, []string{installCmd}); err != nil {
		return fmt.Errorf("failed to install chef agent: %w", err)
	}

	local, err := c.writeRunDocuments(env.Staging)
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(local) }()

	uploads := []string{
		filepath.Join(local, "solo.rb"),
		filepath.Join(local, "node.json"),
		c.Cookbooks,
	}
	if err := env.Remote.Upload(ctx, uploads, env.Staging, true); err != nil {
		return err
	}

	runCmd := fmt.Sprintf("sudo chef-solo -c %s -j %s",
		path.Join(env.Staging, "solo.rb"),
		path.Join(env.Staging, "node.json"))
	output, err := env.Remote.RunCommands(ctx, []string{runCmd})
	if err != nil {
		return err
	}
	if output != "" {
		env.Log.Debug("chef-solo output", "output", output)
	}
	return nil
}

// writeRunDocuments generates solo.rb and node.json in a local temp
// directory and returns that directory.
func (c *Chef) writeRunDocuments(staging string) (string, error) {
	dir, err := os.MkdirTemp("", "mami-chef-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	soloRB := c.soloConfig(staging)
	if err := os.WriteFile(filepath.Join(dir, "solo.rb"), []byte(soloRB), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to write solo.rb: %w", err)
	}

	node, err := json.Marshal(map[string][]string{"run_list": c.RunList})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to marshal run list: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "node.json"), node, 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to write node.json: %w", err)
	}

	return dir, nil
}

// soloConfig renders the module search-path document pointing chef-solo at
// the uploaded cookbook tree.
func (c *Chef) soloConfig(staging string) string {
	cookbookDir := path.Join(staging, filepath.Base(c.Cookbooks))
	return fmt.Sprintf("cookbook_path %q\nfile_cache_path %q\n", cookbookDir, staging)
}
