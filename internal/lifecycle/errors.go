package lifecycle

import (
	"fmt"
	"time"
)

// AcquisitionError indicates instance, key pair, or security group creation
// failed. Resources created before the failure have already been released;
// any release failure is folded into Err.
type AcquisitionError struct {
	Stage string
	Err   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire build instance (%s): %v", e.Stage, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates an instance did not reach the desired state within
// the bound.
type TimeoutError struct {
	InstanceID string
	State      string
	Timeout    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("instance %s did not reach state %q within %s", e.InstanceID, e.State, e.Timeout)
}

// ReleaseError aggregates teardown sub-step failures. Every sub-step is
// attempted regardless of earlier failures; this error carries all of them.
type ReleaseError struct {
	Err error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release incomplete: %v", e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}
