package aws

import (
	"testing"

	sdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

func image(id, created string) types.Image {
	return types.Image{ImageId: sdk.String(id), CreationDate: sdk.String(created)}
}

func TestNewestImage(t *testing.T) {
	images := []types.Image{
		image("ami-old", "2024-03-01T12:00:00.000Z"),
		image("ami-newest", "2025-06-15T08:30:00.000Z"),
		image("ami-mid", "2024-11-20T23:59:59.000Z"),
	}

	if got := newestImage(images); got != "ami-newest" {
		t.Errorf("expected ami-newest, got %q", got)
	}
}

func TestNewestImage_Empty(t *testing.T) {
	if got := newestImage(nil); got != "" {
		t.Errorf("expected empty id for no images, got %q", got)
	}
}

func TestNewestImage_DoesNotMutateInput(t *testing.T) {
	images := []types.Image{
		image("ami-b", "2025-01-01T00:00:00.000Z"),
		image("ami-a", "2024-01-01T00:00:00.000Z"),
	}

	_ = newestImage(images)

	if sdk.ToString(images[0].ImageId) != "ami-b" {
		t.Error("input slice order changed")
	}
}

func TestDistributionCatalog(t *testing.T) {
	for _, name := range []string{"ubuntu", "debian", "amazon-linux"} {
		dist, ok := distributions[name]
		if !ok {
			t.Errorf("missing distribution %q", name)
			continue
		}
		if dist.Owner == "" || dist.Pattern == "" {
			t.Errorf("distribution %q has empty owner or pattern", name)
		}
	}
}
