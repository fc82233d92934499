package build

import (
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsee/mami/internal/steps"
)

func bootstrapEnv(remote steps.Remote) *steps.Env {
	return &steps.Env{
		Remote:  remote,
		Staging: "/tmp/staging",
		User:    "ubuntu",
		Log:     hclog.NewNullLogger(),
	}
}

func TestBootstrapStep_RendersSetVariables(t *testing.T) {
	b := &bootstrapStep{
		vars: []string{"TOKEN", "ABSENT", "REGION"},
		lookup: func(name string) (string, bool) {
			switch name {
			case "TOKEN":
				return "abc123", true
			case "REGION":
				return "us-east-1", true
			}
			return "", false
		},
	}

	content := b.render(bootstrapEnv(&fakeSession{}))
	assert.Equal(t, "TOKEN=abc123\nREGION=us-east-1\n", string(content))
}

func TestBootstrapStep_InstallsEnvFile(t *testing.T) {
	session := &fakeSession{}
	b := &bootstrapStep{
		vars:   []string{"TOKEN"},
		lookup: func(string) (string, bool) { return "abc123", true },
	}

	require.NoError(t, b.Run(context.Background(), bootstrapEnv(session)))

	require.Len(t, session.uploads, 1)

	joined := strings.Join(session.commands, "\n")
	assert.Contains(t, joined, "sudo mv /tmp/staging/mami.env /etc/mami.env")
	assert.Contains(t, joined, "sudo chown root:root /etc/mami.env")
	assert.Contains(t, joined, "sudo chmod 600 /etc/mami.env")
}

func TestBootstrapStep_DefaultsToProcessEnvironment(t *testing.T) {
	t.Setenv("MAMI_BOOTSTRAP_PROBE", "value")

	b := newBootstrapStep([]string{"MAMI_BOOTSTRAP_PROBE"})
	content := b.render(bootstrapEnv(&fakeSession{}))
	assert.Equal(t, "MAMI_BOOTSTRAP_PROBE=value\n", string(content))
}
