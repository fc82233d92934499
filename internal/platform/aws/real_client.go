package aws

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// distribution describes how to find the newest published image of a distro.
type distribution struct {
	Owner   string
	Pattern string
}

// distributions maps the supported base-image distribution names to their
// publisher account and AMI name pattern.
var distributions = map[string]distribution{
	"ubuntu":       {Owner: "099720109477", Pattern: "ubuntu/images/hvm-ssd*/ubuntu-*-amd64-server-*"},
	"debian":       {Owner: "136693071363", Pattern: "debian-1?-amd64-*"},
	"amazon-linux": {Owner: "amazon", Pattern: "al2023-ami-2023*-x86_64"},
}

// RealClient implements Client against the EC2 API.
type RealClient struct {
	region string
	cfg    aws.Config

	mu       sync.Mutex
	regional map[string]*ec2.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*realClientConfig)

type realClientConfig struct {
	accessKey string
	secretKey string
}

// WithStaticCredentials sets explicit credentials instead of the default chain.
func WithStaticCredentials(accessKey, secretKey string) ClientOption {
	return func(c *realClientConfig) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

// NewRealClient creates an EC2-backed client for the given build region.
func NewRealClient(ctx context.Context, region string, opts ...ClientOption) (*RealClient, error) {
	var rc realClientConfig
	for _, opt := range opts {
		opt(&rc)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if rc.accessKey != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(rc.accessKey, rc.secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &RealClient{
		region:   region,
		cfg:      cfg,
		regional: make(map[string]*ec2.Client),
	}, nil
}

// ec2Client returns a cached EC2 client for the given region.
func (c *RealClient) ec2Client(region string) *ec2.Client {
	if region == "" {
		region = c.region
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.regional[region]; ok {
		return client
	}

	cfg := c.cfg.Copy()
	cfg.Region = region
	client := ec2.NewFromConfig(cfg)
	c.regional[region] = client
	return client
}

// RunInstance launches one instance and returns its id.
func (c *RealClient) RunInstance(ctx context.Context, opts RunInstanceOpts) (string, error) {
	input := &ec2.RunInstancesInput{
		ImageId:          aws.String(opts.ImageID),
		InstanceType:     types.InstanceType(opts.InstanceType),
		KeyName:          aws.String(opts.KeyName),
		SecurityGroupIds: []string{opts.SecurityGroupID},
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
	}
	if opts.Name != "" {
		input.TagSpecifications = []types.TagSpecification{{
			ResourceType: types.ResourceTypeInstance,
			Tags:         []types.Tag{{Key: aws.String("Name"), Value: aws.String(opts.Name)}},
		}}
	}

	out, err := c.ec2Client("").RunInstances(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run instance: %w", err)
	}
	if len(out.Instances) == 0 {
		return "", fmt.Errorf("run instance returned no instances")
	}
	return aws.ToString(out.Instances[0].InstanceId), nil
}

// DescribeInstance reports the state and public address of one instance.
func (c *RealClient) DescribeInstance(ctx context.Context, instanceID string) (*InstanceInfo, error) {
	out, err := c.ec2Client("").DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instance %s: %w", instanceID, err)
	}

	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			info := &InstanceInfo{
				ID:       aws.ToString(inst.InstanceId),
				PublicIP: aws.ToString(inst.PublicIpAddress),
			}
			if inst.State != nil {
				info.State = string(inst.State.Name)
			}
			return info, nil
		}
	}
	return nil, fmt.Errorf("instance %s not found", instanceID)
}

// StopInstance requests a stop; it does not wait for the stopped state.
func (c *RealClient) StopInstance(ctx context.Context, instanceID string) error {
	_, err := c.ec2Client("").StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("failed to stop instance %s: %w", instanceID, err)
	}
	return nil
}

// RebootInstance requests a reboot.
func (c *RealClient) RebootInstance(ctx context.Context, instanceID string) error {
	_, err := c.ec2Client("").RebootInstances(ctx, &ec2.RebootInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("failed to reboot instance %s: %w", instanceID, err)
	}
	return nil
}

// TerminateInstance requests termination; it does not wait for the terminated state.
func (c *RealClient) TerminateInstance(ctx context.Context, instanceID string) error {
	_, err := c.ec2Client("").TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("failed to terminate instance %s: %w", instanceID, err)
	}
	return nil
}

// ResolveSourceImage returns the newest available image of the distribution.
func (c *RealClient) ResolveSourceImage(ctx context.Context, distro string) (string, error) {
	dist, ok := distributions[distro]
	if !ok {
		return "", fmt.Errorf("unknown distribution %q", distro)
	}

	out, err := c.ec2Client("").DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{dist.Owner},
		Filters: []types.Filter{
			{Name: aws.String("name"), Values: []string{dist.Pattern}},
			{Name: aws.String("state"), Values: []string{ImageStateAvailable}},
			{Name: aws.String("root-device-type"), Values: []string{"ebs"}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to list %s images: %w", distro, err)
	}

	imageID := newestImage(out.Images)
	if imageID == "" {
		return "", fmt.Errorf("no available %s image found in %s", distro, c.region)
	}
	return imageID, nil
}

// newestImage picks the image with the latest creation date.
// CreationDate is RFC3339, so lexical order is chronological order.
func newestImage(images []types.Image) string {
	if len(images) == 0 {
		return ""
	}
	sorted := make([]types.Image, len(images))
	copy(sorted, images)
	sort.Slice(sorted, func(i, j int) bool {
		return aws.ToString(sorted[i].CreationDate) > aws.ToString(sorted[j].CreationDate)
	})
	return aws.ToString(sorted[0].ImageId)
}

// CreateImage snapshots the instance into an AMI in the build region.
func (c *RealClient) CreateImage(ctx context.Context, opts CreateImageOpts) (string, error) {
	out, err := c.ec2Client("").CreateImage(ctx, &ec2.CreateImageInput{
		InstanceId:  aws.String(opts.InstanceID),
		Name:        aws.String(opts.Name),
		Description: aws.String(opts.Description),
		NoReboot:    aws.Bool(opts.NoReboot),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create image from %s: %w", opts.InstanceID, err)
	}
	return aws.ToString(out.ImageId), nil
}

// CopyImage copies an image into the target region and returns the new id.
func (c *RealClient) CopyImage(ctx context.Context, opts CopyImageOpts) (string, error) {
	out, err := c.ec2Client(opts.TargetRegion).CopyImage(ctx, &ec2.CopyImageInput{
		SourceRegion:  aws.String(opts.SourceRegion),
		SourceImageId: aws.String(opts.SourceImageID),
		Name:          aws.String(opts.Name),
		Description:   aws.String(opts.Description),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy image %s to %s: %w", opts.SourceImageID, opts.TargetRegion, err)
	}
	return aws.ToString(out.ImageId), nil
}

// DescribeImageState reports the state of an image in the given region.
func (c *RealClient) DescribeImageState(ctx context.Context, region, imageID string) (string, error) {
	out, err := c.ec2Client(region).DescribeImages(ctx, &ec2.DescribeImagesInput{
		ImageIds: []string{imageID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe image %s: %w", imageID, err)
	}
	if len(out.Images) == 0 {
		return "", fmt.Errorf("image %s not found in %s", imageID, region)
	}
	return string(out.Images[0].State), nil
}

// TagImage applies tags to an image in the given region.
func (c *RealClient) TagImage(ctx context.Context, region, imageID string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}

	ec2Tags := make([]types.Tag, 0, len(tags))
	for k, v := range tags {
		ec2Tags = append(ec2Tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}

	_, err := c.ec2Client(region).CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{imageID},
		Tags:      ec2Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to tag image %s: %w", imageID, err)
	}
	return nil
}

// ImportKeyPair uploads a public key as a named EC2 key pair.
func (c *RealClient) ImportKeyPair(ctx context.Context, name string, publicKey []byte) error {
	_, err := c.ec2Client("").ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           aws.String(name),
		PublicKeyMaterial: publicKey,
	})
	if err != nil {
		return fmt.Errorf("failed to import key pair %s: %w", name, err)
	}
	return nil
}

// DeleteKeyPair removes a named key pair.
func (c *RealClient) DeleteKeyPair(ctx context.Context, name string) error {
	_, err := c.ec2Client("").DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete key pair %s: %w", name, err)
	}
	return nil
}

// CreateSecurityGroup creates a security group and returns its id.
func (c *RealClient) CreateSecurityGroup(ctx context.Context, name, description string) (string, error) {
	out, err := c.ec2Client("").CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create security group %s: %w", name, err)
	}
	return aws.ToString(out.GroupId), nil
}

// AuthorizeIngress opens the given TCP port from any source address.
func (c *RealClient) AuthorizeIngress(ctx context.Context, groupID string, port int32) error {
	_, err := c.ec2Client("").AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []types.IpPermission{{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int32(port),
			ToPort:     aws.Int32(port),
			IpRanges:   []types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to authorize ingress on %s: %w", groupID, err)
	}
	return nil
}

// DeleteSecurityGroup removes a security group by id.
func (c *RealClient) DeleteSecurityGroup(ctx context.Context, groupID string) error {
	_, err := c.ec2Client("").DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: aws.String(groupID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete security group %s: %w", groupID, err)
	}
	return nil
}
