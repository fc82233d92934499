package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsee/mami/internal/platform/aws"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		errorContains string
	}{
		{
			name:          "missing config file",
			configContent: "",
			errorContains: "failed to load config",
		},
		{
			name: "missing region",
			configContent: `
source_ami: ami-0abc
`,
			errorContains: "region is required",
		},
		{
			name: "conflicting image sources",
			configContent: `
region: us-east-1
source_ami: ami-0abc
source_distribution: ubuntu
`,
			errorContains: "mutually exclusive",
		},
		{
			name: "ami name missing",
			configContent: `
region: us-east-1
source_ami: ami-0abc
build_ami: true
`,
			errorContains: "ami.name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "build.yaml")
			if tt.configContent != "" {
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0o600))
			}

			err := Build(context.Background(), configPath, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestBuild_RequiresConfigFlag(t *testing.T) {
	err := Build(context.Background(), "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config")
}

func TestBuild_DryRun(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "build.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
region: us-east-1
source_ami: ami-0abc
build_ami: true
ami:
  name: base-image
copy_regions: [eu-west-1]
steps:
  - type: shell
    commands: ["apt-get update"]
`), 0o600))

	// Dry run must not reach the cloud client at all.
	orig := newCloudClient
	newCloudClient = func(context.Context, string) (aws.Client, error) {
		t.Fatal("dry run created a cloud client")
		return nil, nil
	}
	defer func() { newCloudClient = orig }()

	require.NoError(t, Build(context.Background(), configPath, true))
}

func TestBuild_DryRunRejectsBadSteps(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "build.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
region: us-east-1
source_ami: ami-0abc
steps:
  - type: ansible
`), 0o600))

	err := Build(context.Background(), configPath, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ansible")
}
