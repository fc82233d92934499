package aws

import (
	"context"
)

// MockClient is a mock implementation of Client. Each operation can be
// overridden through its function field; unset operations return benign
// defaults.
type MockClient struct {
	RunInstanceFunc       func(ctx context.Context, opts RunInstanceOpts) (string, error)
	DescribeInstanceFunc  func(ctx context.Context, instanceID string) (*InstanceInfo, error)
	StopInstanceFunc      func(ctx context.Context, instanceID string) error
	RebootInstanceFunc    func(ctx context.Context, instanceID string) error
	TerminateInstanceFunc func(ctx context.Context, instanceID string) error

	ResolveSourceImageFunc func(ctx context.Context, distribution string) (string, error)
	CreateImageFunc        func(ctx context.Context, opts CreateImageOpts) (string, error)
	CopyImageFunc          func(ctx context.Context, opts CopyImageOpts) (string, error)
	DescribeImageStateFunc func(ctx context.Context, region, imageID string) (string, error)
	TagImageFunc           func(ctx context.Context, region, imageID string, tags map[string]string) error

	ImportKeyPairFunc func(ctx context.Context, name string, publicKey []byte) error
	DeleteKeyPairFunc func(ctx context.Context, name string) error

	CreateSecurityGroupFunc func(ctx context.Context, name, description string) (string, error)
	AuthorizeIngressFunc    func(ctx context.Context, groupID string, port int32) error
	DeleteSecurityGroupFunc func(ctx context.Context, groupID string) error
}

func (m *MockClient) RunInstance(ctx context.Context, opts RunInstanceOpts) (string, error) {
	if m.RunInstanceFunc != nil {
		return m.RunInstanceFunc(ctx, opts)
	}
	return "i-mock", nil
}

func (m *MockClient) DescribeInstance(ctx context.Context, instanceID string) (*InstanceInfo, error) {
	if m.DescribeInstanceFunc != nil {
		return m.DescribeInstanceFunc(ctx, instanceID)
	}
	return &InstanceInfo{ID: instanceID, State: StateRunning, PublicIP: "198.51.100.1"}, nil
}

func (m *MockClient) StopInstance(ctx context.Context, instanceID string) error {
	if m.StopInstanceFunc != nil {
		return m.StopInstanceFunc(ctx, instanceID)
	}
	return nil
}

func (m *MockClient) RebootInstance(ctx context.Context, instanceID string) error {
	if m.RebootInstanceFunc != nil {
		return m.RebootInstanceFunc(ctx, instanceID)
	}
	return nil
}

func (m *MockClient) TerminateInstance(ctx context.Context, instanceID string) error {
	if m.TerminateInstanceFunc != nil {
		return m.TerminateInstanceFunc(ctx, instanceID)
	}
	return nil
}

func (m *MockClient) ResolveSourceImage(ctx context.Context, distribution string) (string, error) {
	if m.ResolveSourceImageFunc != nil {
		return m.ResolveSourceImageFunc(ctx, distribution)
	}
	return "ami-mock", nil
}

func (m *MockClient) CreateImage(ctx context.Context, opts CreateImageOpts) (string, error) {
	if m.CreateImageFunc != nil {
		return m.CreateImageFunc(ctx, opts)
	}
	return "ami-created", nil
}

func (m *MockClient) CopyImage(ctx context.Context, opts CopyImageOpts) (string, error) {
	if m.CopyImageFunc != nil {
		return m.CopyImageFunc(ctx, opts)
	}
	return "ami-copied", nil
}

func (m *MockClient) DescribeImageState(ctx context.Context, region, imageID string) (string, error) {
	if m.DescribeImageStateFunc != nil {
		return m.DescribeImageStateFunc(ctx, region, imageID)
	}
	return ImageStateAvailable, nil
}

func (m *MockClient) TagImage(ctx context.Context, region, imageID string, tags map[string]string) error {
	if m.TagImageFunc != nil {
		return m.TagImageFunc(ctx, region, imageID, tags)
	}
	return nil
}

func (m *MockClient) ImportKeyPair(ctx context.Context, name string, publicKey []byte) error {
	if m.ImportKeyPairFunc != nil {
		return m.ImportKeyPairFunc(ctx, name, publicKey)
	}
	return nil
}

func (m *MockClient) DeleteKeyPair(ctx context.Context, name string) error {
	if m.DeleteKeyPairFunc != nil {
		return m.DeleteKeyPairFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) CreateSecurityGroup(ctx context.Context, name, description string) (string, error) {
	if m.CreateSecurityGroupFunc != nil {
		return m.CreateSecurityGroupFunc(ctx, name, description)
	}
	return "sg-mock", nil
}

func (m *MockClient) AuthorizeIngress(ctx context.Context, groupID string, port int32) error {
	if m.AuthorizeIngressFunc != nil {
		return m.AuthorizeIngressFunc(ctx, groupID, port)
	}
	return nil
}

func (m *MockClient) DeleteSecurityGroup(ctx context.Context, groupID string) error {
	if m.DeleteSecurityGroupFunc != nil {
		return m.DeleteSecurityGroupFunc(ctx, groupID)
	}
	return nil
}
