// Package handlers implements the CLI command logic.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/opsee/mami/internal/build"
	"github.com/opsee/mami/internal/config"
	"github.com/opsee/mami/internal/platform/aws"
	"github.com/opsee/mami/internal/publish"
	"github.com/opsee/mami/internal/steps"
)

// newCloudClient creates the cloud client for a build. Swapped in tests.
var newCloudClient = func(ctx context.Context, region string) (aws.Client, error) {
	return aws.NewRealClient(ctx, region)
}

// Build handles the build command. It loads the configuration, runs the
// full build flow, and reports the produced image and its replicas. With
// dryRun set, it validates the configuration and prints the resolved plan
// without touching the cloud.
func Build(ctx context.Context, configPath string, dryRun bool) error {
	if configPath == "" {
		return fmt.Errorf("config file is required (use --config)")
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if dryRun {
		return printPlan(os.Stdout, cfg)
	}

	log := newLogger()
	timeouts := config.LoadTimeouts()

	cloud, err := newCloudClient(ctx, cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to create cloud client: %w", err)
	}

	coordinator := build.NewCoordinator(cfg, cloud, timeouts, log)
	result, err := coordinator.Run(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if result.Image != nil {
		fmt.Printf("Image %s available in %s\n", result.Image.ImageID, result.Image.Region)
		for region, replica := range result.Image.Replicas {
			fmt.Printf("  replica %s in %s\n", replica.ImageID, region)
		}
	} else {
		fmt.Println("Provisioning complete")
	}
	return nil
}

// printPlan renders what a build of this configuration would do: the step
// order and, when an image is requested, the resolved replication targets.
func printPlan(w io.Writer, cfg *config.Config) error {
	// Surface declaration mistakes the same way a real run would.
	built, err := steps.Build(cfg.Steps)
	if err != nil {
		return err
	}

	source := cfg.SourceAMI
	if source == "" {
		source = fmt.Sprintf("latest %s image", cfg.SourceDistribution)
	}
	fmt.Fprintf(w, "region:   %s\n", cfg.Region)
	fmt.Fprintf(w, "source:   %s\n", source)
	fmt.Fprintf(w, "instance: %s\n", cfg.InstanceType)

	fmt.Fprintln(w, "steps:")
	for i, step := range built {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step.Name())
	}

	if !cfg.BuildAMI {
		fmt.Fprintln(w, "image:    none (provision only)")
		return nil
	}

	targets, err := publish.ResolveTargets(cfg.CopyRegions, cfg.Region)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "image:    %s\n", cfg.AMI.Name)
	if len(targets) == 0 {
		fmt.Fprintln(w, "copies:   none")
		return nil
	}
	fmt.Fprintf(w, "copies:   %s\n", strings.Join(targets, ", "))
	return nil
}

// newLogger builds the CLI logger. The level comes from MAMI_LOG_LEVEL and
// defaults to info.
func newLogger() hclog.Logger {
	level := hclog.LevelFromString(os.Getenv("MAMI_LOG_LEVEL"))
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "mami",
		Level: level,
	})
}
