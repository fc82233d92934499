package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/opsee/mami/internal/config"
	"github.com/opsee/mami/internal/platform/aws"
	"github.com/opsee/mami/internal/util/keygen"
	"github.com/opsee/mami/internal/util/naming"
	"github.com/opsee/mami/internal/util/retry"
)

const sshPort = 22

// InstanceHandle identifies the temporary resources owned by one build run:
// the instance, its generated key pair, and its security group. A handle
// always carries a teardown obligation for all three, independent of each
// other's success.
type InstanceHandle struct {
	BuildID         string
	InstanceID      string
	KeyName         string
	KeyPair         *keygen.KeyPair
	SecurityGroupID string
	PublicIP        string
}

// Manager acquires and releases build instances and their ephemeral
// credentials and network policy.
type Manager struct {
	cloud    aws.Client
	timeouts *config.Timeouts
	log      hclog.Logger
}

// NewManager creates a lifecycle manager.
func NewManager(cloud aws.Client, timeouts *config.Timeouts, log hclog.Logger) *Manager {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Manager{cloud: cloud, timeouts: timeouts, log: log}
}

// Acquire creates the key pair, security group, and instance for one build
// and waits until the instance is running with a public address. The key
// pair and security group are namespaced by a fresh build identifier so
// concurrent builds never collide. On failure, everything created so far is
// released before the AcquisitionError is returned.
func (m *Manager) Acquire(ctx context.Context, cfg *config.Config) (*InstanceHandle, error) {
	handle := &InstanceHandle{BuildID: naming.BuildID()}
	m.log.Info("acquiring build instance", "build_id", handle.BuildID, "region", cfg.Region)

	keyPair, err := keygen.GenerateRSAKeyPair(2048)
	if err != nil {
		return nil, &AcquisitionError{Stage: "key generation", Err: err}
	}
	handle.KeyPair = keyPair

	keyName := naming.KeyPair(handle.BuildID)
	if err := m.cloud.ImportKeyPair(ctx, keyName, keyPair.PublicKey); err != nil {
		return nil, &AcquisitionError{Stage: "key pair", Err: err}
	}
	handle.KeyName = keyName

	sgName := naming.SecurityGroup(handle.BuildID)
	sgID, err := m.cloud.CreateSecurityGroup(ctx, sgName, "temporary build access for "+handle.BuildID)
	if err != nil {
		return nil, m.abortAcquire(handle, "security group", err)
	}
	handle.SecurityGroupID = sgID

	// Ingress is open to any source on the SSH port. This is a documented
	// tradeoff for operational simplicity: the group lives only for the
	// duration of one build and access still requires the generated key.
	if err := m.cloud.AuthorizeIngress(ctx, sgID, sshPort); err != nil {
		return nil, m.abortAcquire(handle, "ingress rule", err)
	}

	imageID := cfg.SourceAMI
	if imageID == "" {
		imageID, err = m.cloud.ResolveSourceImage(ctx, cfg.SourceDistribution)
		if err != nil {
			return nil, m.abortAcquire(handle, "base image", err)
		}
	}
	m.log.Info("launching instance", "image", imageID, "type", cfg.InstanceType)

	instanceID, err := m.cloud.RunInstance(ctx, aws.RunInstanceOpts{
		Name:            handle.BuildID,
		ImageID:         imageID,
		InstanceType:    cfg.InstanceType,
		KeyName:         keyName,
		SecurityGroupID: sgID,
	})
	if err != nil {
		return nil, m.abortAcquire(handle, "instance", err)
	}
	handle.InstanceID = instanceID

	if err := m.WaitForState(ctx, instanceID, aws.StateRunning, m.timeouts.StateWait); err != nil {
		return nil, m.abortAcquire(handle, "instance running", err)
	}

	ip, err := m.waitForPublicIP(ctx, instanceID)
	if err != nil {
		return nil, m.abortAcquire(handle, "public address", err)
	}
	handle.PublicIP = ip

	m.log.Info("instance ready", "instance", instanceID, "ip", ip)
	return handle, nil
}

// abortAcquire releases whatever the partial handle owns and wraps both
// errors. The caller never sees the handle, so it must not leak resources.
func (m *Manager) abortAcquire(handle *InstanceHandle, stage string, cause error) error {
	// The original context may already be cancelled; teardown still runs.
	if err := m.Release(context.Background(), handle); err != nil {
		cause = multierror.Append(cause, err)
	}
	return &AcquisitionError{Stage: stage, Err: cause}
}

// WaitForState polls the provider until the instance reports the desired
// state, failing with TimeoutError when the bound is exceeded. The poll
// interval respects provider rate limits.
func (m *Manager) WaitForState(ctx context.Context, instanceID, desired string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		info, err := m.cloud.DescribeInstance(ctx, instanceID)
		switch {
		case err != nil && desired == aws.StateTerminated && aws.IsNotFound(err):
			// A terminated instance eventually disappears from the API.
			return nil
		case err != nil:
			return fmt.Errorf("failed to poll instance %s: %w", instanceID, err)
		case info.State == desired:
			return nil
		}

		if time.Now().After(deadline) {
			return &TimeoutError{InstanceID: instanceID, State: desired, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for state %q cancelled: %w", desired, ctx.Err())
		case <-time.After(m.timeouts.StatePoll):
		}
	}
}

// waitForPublicIP polls until the instance reports a public address.
func (m *Manager) waitForPublicIP(ctx context.Context, instanceID string) (string, error) {
	deadline := time.Now().Add(m.timeouts.StateWait)

	for {
		info, err := m.cloud.DescribeInstance(ctx, instanceID)
		if err != nil {
			return "", fmt.Errorf("failed to poll instance %s: %w", instanceID, err)
		}
		if info.PublicIP != "" {
			return info.PublicIP, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("instance %s never received a public address", instanceID)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("wait for public address cancelled: %w", ctx.Err())
		case <-time.After(m.timeouts.StatePoll):
		}
	}
}

// RebootAndWaitRunning reboots the instance and waits until it reports
// running again.
func (m *Manager) RebootAndWaitRunning(ctx context.Context, handle *InstanceHandle) error {
	m.log.Info("rebooting instance", "instance", handle.InstanceID)
	if err := m.cloud.RebootInstance(ctx, handle.InstanceID); err != nil {
		return err
	}
	return m.WaitForState(ctx, handle.InstanceID, aws.StateRunning, m.timeouts.StateWait)
}

// StopAndWaitStopped stops the instance and waits until it reports stopped.
func (m *Manager) StopAndWaitStopped(ctx context.Context, handle *InstanceHandle) error {
	m.log.Info("stopping instance", "instance", handle.InstanceID)
	if err := m.cloud.StopInstance(ctx, handle.InstanceID); err != nil {
		return err
	}
	return m.WaitForState(ctx, handle.InstanceID, aws.StateStopped, m.timeouts.StateWait)
}

// Release terminates the instance, deletes the key pair, and deletes the
// security group. All three sub-steps are attempted even if an earlier one
// fails; failures are aggregated into a ReleaseError, never swallowed.
// Resources the provider no longer knows about count as released, so the
// call is safe against an already-terminated instance.
func (m *Manager) Release(ctx context.Context, handle *InstanceHandle) error {
	if handle == nil {
		return nil
	}
	m.log.Info("releasing build resources", "build_id", handle.BuildID)

	var errs *multierror.Error

	if handle.InstanceID != "" {
		if err := m.cloud.TerminateInstance(ctx, handle.InstanceID); err != nil && !aws.IsNotFound(err) {
			errs = multierror.Append(errs, fmt.Errorf("terminate instance: %w", err))
		} else if err := m.WaitForState(ctx, handle.InstanceID, aws.StateTerminated, m.timeouts.StateWait); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("wait for termination: %w", err))
		}
	}

	if handle.KeyName != "" {
		if err := m.cloud.DeleteKeyPair(ctx, handle.KeyName); err != nil && !aws.IsNotFound(err) {
			errs = multierror.Append(errs, fmt.Errorf("delete key pair %s: %w", handle.KeyName, err))
		}
	}

	if handle.SecurityGroupID != "" {
		// The group stays referenced until the instance finishes shutting
		// down, so retry on dependency violations.
		err := retry.Do(ctx, func() error {
			delErr := m.cloud.DeleteSecurityGroup(ctx, handle.SecurityGroupID)
			if delErr == nil || aws.IsNotFound(delErr) {
				return nil
			}
			if aws.IsDependencyViolation(delErr) {
				return delErr
			}
			return retry.Fatal(delErr)
		}, retry.WithMaxAttempts(10), retry.WithFixedDelay(m.timeouts.StatePoll*5))
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("delete security group %s: %w", handle.SecurityGroupID, err))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return &ReleaseError{Err: err}
	}
	return nil
}
