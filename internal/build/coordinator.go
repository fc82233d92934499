// Package build runs a complete image build: acquire a throwaway
// instance, provision it over SSH, optionally convert it into a machine
// image and replicate that image, and dispose of the instance according
// to the outcome.
package build

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/opsee/mami/internal/config"
	"github.com/opsee/mami/internal/lifecycle"
	"github.com/opsee/mami/internal/platform/aws"
	"github.com/opsee/mami/internal/platform/ssh"
	"github.com/opsee/mami/internal/publish"
	"github.com/opsee/mami/internal/steps"
)

// remoteSession is the provisioning channel to the instance.
type remoteSession interface {
	steps.Remote
	Close() error
}

// connectFunc dials a provisioning session to the acquired instance.
type connectFunc func(ctx context.Context, handle *lifecycle.InstanceHandle) (remoteSession, error)

// Result reports what one build run produced and left behind.
type Result struct {
	Handle *lifecycle.InstanceHandle
	Image  *publish.ImageRecord

	// Preserved is set when a failed build kept its instance alive for
	// inspection. KeyFile then points at the private key written next to
	// the working directory.
	Preserved bool
	KeyFile   string
}

// Coordinator owns the end-to-end build flow.
type Coordinator struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	log      hclog.Logger

	lifecycle *lifecycle.Manager
	publisher *publish.Publisher
	connect   connectFunc
}

// NewCoordinator wires a coordinator from the build configuration and a
// cloud client.
func NewCoordinator(cfg *config.Config, cloud aws.Client, timeouts *config.Timeouts, log hclog.Logger) *Coordinator {
	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	c := &Coordinator{
		cfg:       cfg,
		timeouts:  timeouts,
		log:       log,
		lifecycle: lifecycle.NewManager(cloud, timeouts, log),
		publisher: publish.NewPublisher(cloud, cfg.Region, timeouts, log),
	}
	c.connect = c.dialSSH
	return c
}

// Run executes the build. Whatever happens after acquisition, the
// instance's disposition is decided before Run returns: released on
// success, and on failure either released or preserved for inspection per
// the configuration.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	// Fail on declaration mistakes before any resource exists.
	built, err := steps.Build(c.cfg.Steps)
	if err != nil {
		return nil, err
	}
	if len(c.cfg.BootstrapEnv) > 0 {
		built = append([]steps.Step{newBootstrapStep(c.cfg.BootstrapEnv)}, built...)
	}

	var targets []string
	if c.cfg.BuildAMI {
		targets, err = publish.ResolveTargets(c.cfg.CopyRegions, c.cfg.Region)
		if err != nil {
			return nil, err
		}
	}

	handle, err := c.lifecycle.Acquire(ctx, c.cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{Handle: handle}
	buildErr := c.execute(ctx, handle, built, targets, result)
	return c.dispose(ctx, handle, result, buildErr)
}

// execute provisions the instance and, when configured, turns it into a
// replicated image.
func (c *Coordinator) execute(ctx context.Context, handle *lifecycle.InstanceHandle, built []steps.Step, targets []string, result *Result) error {
	if err := c.provision(ctx, handle, built); err != nil {
		return err
	}

	if c.cfg.RebootBeforeBuild {
		if err := c.lifecycle.RebootAndWaitRunning(ctx, handle); err != nil {
			return err
		}
	}

	if !c.cfg.BuildAMI {
		return nil
	}

	if err := c.lifecycle.StopAndWaitStopped(ctx, handle); err != nil {
		return err
	}

	record, err := c.publisher.CreateImage(ctx, handle.InstanceID, c.cfg.AMI)
	if err != nil {
		return err
	}
	result.Image = record

	return c.publisher.Replicate(ctx, record, c.cfg.AMI, targets)
}

// provision runs the ordered steps over one SSH session.
func (c *Coordinator) provision(ctx context.Context, handle *lifecycle.InstanceHandle, built []steps.Step) error {
	session, err := c.connect(ctx, handle)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	executor := steps.NewExecutor(c.cfg.StagingPath, c.cfg.SSHUsername, c.log)
	return executor.Run(ctx, session, built)
}

func (c *Coordinator) dialSSH(ctx context.Context, handle *lifecycle.InstanceHandle) (remoteSession, error) {
	return ssh.Connect(ctx, &ssh.Config{
		Host:        handle.PublicIP,
		User:        c.cfg.SSHUsername,
		PrivateKey:  handle.KeyPair.PrivateKey,
		MaxAttempts: c.timeouts.SSHMaxAttempts,
		RetryDelay:  c.timeouts.SSHRetryDelay,
	})
}

// dispose settles the instance's fate. A successful build always releases;
// a failed build releases only when cleanup on error is configured, and
// otherwise preserves the instance and writes its private key to disk so
// the failure can be inspected by hand.
func (c *Coordinator) dispose(ctx context.Context, handle *lifecycle.InstanceHandle, result *Result, buildErr error) (*Result, error) {
	// Disposal must proceed even when the build context was cancelled.
	releaseCtx := context.WithoutCancel(ctx)

	if buildErr == nil {
		if err := c.lifecycle.Release(releaseCtx, handle); err != nil {
			return result, err
		}
		return result, nil
	}

	if c.cfg.CleanupOnError {
		if err := c.lifecycle.Release(releaseCtx, handle); err != nil {
			return result, multierror.Append(buildErr, err)
		}
		return result, buildErr
	}

	result.Preserved = true
	keyFile := fmt.Sprintf("%s.pem", handle.PublicIP)
	if err := handle.KeyPair.WritePrivateKey(keyFile); err != nil {
		c.log.Error("failed to write private key for preserved instance", "error", err)
	} else {
		result.KeyFile = keyFile
	}

	c.log.Warn("build failed, instance preserved for inspection",
		"instance", handle.InstanceID,
		"connect", fmt.Sprintf("ssh -i %s %s@%s", keyFile, c.cfg.SSHUsername, handle.PublicIP),
		"cleanup", fmt.Sprintf("terminate instance %s, delete key pair %s and security group %s when done",
			handle.InstanceID, handle.KeyName, handle.SecurityGroupID))
	return result, buildErr
}
