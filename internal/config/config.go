package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config holds the declarative description of one image build.
type Config struct {
	Region       string `mapstructure:"region" yaml:"region"`
	InstanceType string `mapstructure:"instance_type" yaml:"instance_type"`

	// SourceAMI is an explicit base image id. When empty, SourceDistribution
	// selects the newest published image of that distribution instead.
	SourceAMI          string `mapstructure:"source_ami" yaml:"source_ami"`
	SourceDistribution string `mapstructure:"source_distribution" yaml:"source_distribution"`

	SSHUsername string `mapstructure:"ssh_username" yaml:"ssh_username"`
	StagingPath string `mapstructure:"staging_path" yaml:"staging_path"`

	Steps []StepConfig `mapstructure:"steps" yaml:"steps"`

	RebootBeforeBuild bool `mapstructure:"reboot_before_build" yaml:"reboot_before_build"`
	BuildAMI          bool `mapstructure:"build_ami" yaml:"build_ami"`
	CleanupOnError    bool `mapstructure:"cleanup_on_error" yaml:"cleanup_on_error"`

	AMI AMIConfig `mapstructure:"ami" yaml:"ami"`

	// CopyRegions lists replication targets. The single element "all"
	// expands to every supported region except the build region.
	CopyRegions []string `mapstructure:"copy_regions" yaml:"copy_regions"`

	// BootstrapEnv names process environment variables whose values are
	// written verbatim into the instance's environment bootstrap file.
	BootstrapEnv []string `mapstructure:"bootstrap_env" yaml:"bootstrap_env"`
}

// AMIConfig describes the image to produce.
type AMIConfig struct {
	Name        string            `mapstructure:"name" yaml:"name"`
	Description string            `mapstructure:"description" yaml:"description"`
	Tags        map[string]string `mapstructure:"tags" yaml:"tags"`
}

// StepConfig is one provisioning step as declared in the config document.
// Type selects the step variant; Params carries the variant-specific fields
// and is decoded by the step registry.
type StepConfig struct {
	Type   string         `mapstructure:"type" yaml:"type"`
	Params map[string]any `mapstructure:",remain" yaml:",inline"`
}

// LoadFile reads and parses the build configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.InstanceType == "" {
		c.InstanceType = "t3.micro"
	}
	if c.SSHUsername == "" {
		c.SSHUsername = "ubuntu"
	}
	if c.StagingPath == "" {
		c.StagingPath = "/tmp/mami-staging"
	}
}

// Validate checks the configuration for required fields and consistency.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.SourceAMI == "" && c.SourceDistribution == "" {
		return fmt.Errorf("either source_ami or source_distribution is required")
	}
	if c.SourceAMI != "" && c.SourceDistribution != "" {
		return fmt.Errorf("source_ami and source_distribution are mutually exclusive")
	}
	if c.BuildAMI && c.AMI.Name == "" {
		return fmt.Errorf("ami.name is required when build_ami is set")
	}
	for i, step := range c.Steps {
		if step.Type == "" {
			return fmt.Errorf("step %d is missing a type", i)
		}
	}
	return nil
}
