package aws

import (
	"context"
)

// Instance states as reported by the EC2 API.
const (
	StatePending    = "pending"
	StateRunning    = "running"
	StateStopping   = "stopping"
	StateStopped    = "stopped"
	StateTerminated = "terminated"
)

// Image states as reported by the EC2 API.
const (
	ImageStatePending   = "pending"
	ImageStateAvailable = "available"
	ImageStateFailed    = "failed"
)

// InstanceInfo holds the subset of instance attributes the builder needs.
type InstanceInfo struct {
	ID       string
	State    string
	PublicIP string
}

// RunInstanceOpts holds all parameters for launching a build instance.
type RunInstanceOpts struct {
	Name            string
	ImageID         string
	InstanceType    string
	KeyName         string
	SecurityGroupID string
}

// CreateImageOpts holds parameters for snapshotting an instance into an image.
type CreateImageOpts struct {
	InstanceID  string
	Name        string
	Description string
	// NoReboot requests the snapshot without an implicit instance reboot.
	NoReboot bool
}

// CopyImageOpts holds parameters for copying an image into another region.
type CopyImageOpts struct {
	SourceRegion  string
	SourceImageID string
	TargetRegion  string
	Name          string
	Description   string
}

// InstanceManager defines the interface for managing build instances.
type InstanceManager interface {
	RunInstance(ctx context.Context, opts RunInstanceOpts) (string, error)
	DescribeInstance(ctx context.Context, instanceID string) (*InstanceInfo, error)
	StopInstance(ctx context.Context, instanceID string) error
	RebootInstance(ctx context.Context, instanceID string) error
	TerminateInstance(ctx context.Context, instanceID string) error
}

// ImageManager defines the interface for creating, copying, and tagging images.
type ImageManager interface {
	// ResolveSourceImage returns the newest published image id of the named
	// distribution in the build region.
	ResolveSourceImage(ctx context.Context, distribution string) (string, error)
	CreateImage(ctx context.Context, opts CreateImageOpts) (string, error)
	// CopyImage runs in the target region and returns the new image id there.
	CopyImage(ctx context.Context, opts CopyImageOpts) (string, error)
	// DescribeImageState reports the image state in the given region.
	DescribeImageState(ctx context.Context, region, imageID string) (string, error)
	TagImage(ctx context.Context, region, imageID string, tags map[string]string) error
}

// KeyPairManager defines the interface for managing EC2 key pairs.
type KeyPairManager interface {
	ImportKeyPair(ctx context.Context, name string, publicKey []byte) error
	DeleteKeyPair(ctx context.Context, name string) error
}

// SecurityGroupManager defines the interface for managing security groups.
type SecurityGroupManager interface {
	CreateSecurityGroup(ctx context.Context, name, description string) (string, error)
	AuthorizeIngress(ctx context.Context, groupID string, port int32) error
	DeleteSecurityGroup(ctx context.Context, groupID string) error
}

// Client combines all build-resource interfaces.
type Client interface {
	InstanceManager
	ImageManager
	KeyPairManager
	SecurityGroupManager
}
