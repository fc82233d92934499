// Package publish converts a provisioned build instance into a machine
// image and replicates that image across regions.
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/opsee/mami/internal/config"
	"github.com/opsee/mami/internal/platform/aws"
	"github.com/opsee/mami/internal/util/async"
)

// Replica is the outcome of copying the image into one target region.
type Replica struct {
	ImageID string
	Err     error
}

// ImageRecord describes a published image and its per-region replicas.
type ImageRecord struct {
	ImageID  string
	Region   string
	Name     string
	Replicas map[string]Replica
}

// Publisher snapshots instances into images and fans copies out across
// regions.
type Publisher struct {
	cloud    aws.Client
	region   string
	timeouts *config.Timeouts
	log      hclog.Logger
}

// NewPublisher creates a publisher operating out of the build region.
func NewPublisher(cloud aws.Client, region string, timeouts *config.Timeouts, log hclog.Logger) *Publisher {
	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Publisher{cloud: cloud, region: region, timeouts: timeouts, log: log}
}

// CreateImage snapshots the instance into an image, waits for it to become
// available, and applies the declared tags. The instance is expected to be
// stopped already, so the snapshot is requested without a reboot.
func (p *Publisher) CreateImage(ctx context.Context, instanceID string, ami config.AMIConfig) (*ImageRecord, error) {
	p.log.Info("creating image", "instance", instanceID, "name", ami.Name)

	imageID, err := p.cloud.CreateImage(ctx, aws.CreateImageOpts{
		InstanceID:  instanceID,
		Name:        ami.Name,
		Description: ami.Description,
		NoReboot:    true,
	})
	if err != nil {
		return nil, &ImageCreationError{Name: ami.Name, Err: err}
	}

	if err := p.waitForImage(ctx, p.region, imageID); err != nil {
		return nil, &ImageCreationError{Name: ami.Name, Err: err}
	}

	if len(ami.Tags) > 0 {
		if err := p.cloud.TagImage(ctx, p.region, imageID, ami.Tags); err != nil {
			return nil, &ImageCreationError{Name: ami.Name, Err: err}
		}
	}

	p.log.Info("image available", "image", imageID, "region", p.region)
	return &ImageRecord{
		ImageID:  imageID,
		Region:   p.region,
		Name:     ami.Name,
		Replicas: make(map[string]Replica),
	}, nil
}

// Replicate copies the image into every target region with bounded
// concurrency. Every region is attempted regardless of other regions'
// failures; per-region outcomes are recorded on the record, and any
// failure makes the overall result an error after all copies finish.
func (p *Publisher) Replicate(ctx context.Context, record *ImageRecord, ami config.AMIConfig, targets []string) error {
	if len(targets) == 0 {
		return nil
	}

	tasks := make([]async.Task[string], 0, len(targets))
	for _, target := range targets {
		tasks = append(tasks, async.Task[string]{
			Name: target,
			Func: func(ctx context.Context) (string, error) {
				return p.replicateOne(ctx, record, ami, target)
			},
		})
	}

	p.log.Info("replicating image", "image", record.ImageID,
		"targets", len(targets), "limit", p.timeouts.ReplicationLimit)
	results := async.Collect(ctx, tasks, p.timeouts.ReplicationLimit)

	var errs *multierror.Error
	for region, result := range results {
		record.Replicas[region] = Replica{ImageID: result.Value, Err: result.Err}
		if result.Err != nil {
			errs = multierror.Append(errs, &ReplicationError{Region: region, Err: result.Err})
		}
	}
	return errs.ErrorOrNil()
}

func (p *Publisher) replicateOne(ctx context.Context, record *ImageRecord, ami config.AMIConfig, target string) (string, error) {
	copyID, err := p.cloud.CopyImage(ctx, aws.CopyImageOpts{
		SourceRegion:  record.Region,
		SourceImageID: record.ImageID,
		TargetRegion:  target,
		Name:          ami.Name,
		Description:   ami.Description,
	})
	if err != nil {
		return "", err
	}

	if err := p.waitForImage(ctx, target, copyID); err != nil {
		return copyID, err
	}

	tags := make(map[string]string, len(ami.Tags)+2)
	for k, v := range ami.Tags {
		tags[k] = v
	}
	tags["mami:source-image"] = record.ImageID
	tags["mami:source-region"] = record.Region
	if err := p.cloud.TagImage(ctx, target, copyID, tags); err != nil {
		return copyID, err
	}

	p.log.Info("replica available", "image", copyID, "region", target)
	return copyID, nil
}

// waitForImage polls the image state until it is available, it fails, or
// the image wait bound elapses.
func (p *Publisher) waitForImage(ctx context.Context, region, imageID string) error {
	deadline := time.Now().Add(p.timeouts.ImageWait)
	for {
		state, err := p.cloud.DescribeImageState(ctx, region, imageID)
		if err != nil {
			return fmt.Errorf("failed to describe image %s in %s: %w", imageID, region, err)
		}
		switch state {
		case aws.ImageStateAvailable:
			return nil
		case aws.ImageStateFailed:
			return fmt.Errorf("image %s entered state failed in %s", imageID, region)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for image %s in %s", p.timeouts.ImageWait, imageID, region)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for image %s cancelled: %w", imageID, ctx.Err())
		case <-time.After(p.timeouts.StatePoll):
		}
	}
}
