package publish

import (
	"fmt"
	"sort"
)

// supportedRegions is the fixed catalog of regions images can be
// replicated into. Replication targets are validated against this list
// rather than discovered from the API, so an unknown region fails fast
// before any copy starts.
var supportedRegions = map[string]struct{}{
	"us-east-1":      {},
	"us-east-2":      {},
	"us-west-1":      {},
	"us-west-2":      {},
	"ca-central-1":   {},
	"eu-west-1":      {},
	"eu-west-2":      {},
	"eu-west-3":      {},
	"eu-central-1":   {},
	"eu-north-1":     {},
	"ap-south-1":     {},
	"ap-northeast-1": {},
	"ap-northeast-2": {},
	"ap-southeast-1": {},
	"ap-southeast-2": {},
	"sa-east-1":      {},
}

// SupportedRegions returns the replication catalog in sorted order.
func SupportedRegions() []string {
	regions := make([]string, 0, len(supportedRegions))
	for region := range supportedRegions {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// IsSupported reports whether the region is in the replication catalog.
func IsSupported(region string) bool {
	_, ok := supportedRegions[region]
	return ok
}

// ResolveTargets expands the declared copy regions into the concrete
// replication target list. The single element "all" expands to every
// supported region except the source. Explicit lists are validated,
// deduplicated, and the source region is dropped since the image already
// exists there.
func ResolveTargets(copyRegions []string, sourceRegion string) ([]string, error) {
	if len(copyRegions) == 0 {
		return nil, nil
	}

	if len(copyRegions) == 1 && copyRegions[0] == "all" {
		targets := make([]string, 0, len(supportedRegions))
		for region := range supportedRegions {
			if region != sourceRegion {
				targets = append(targets, region)
			}
		}
		sort.Strings(targets)
		return targets, nil
	}

	seen := make(map[string]struct{}, len(copyRegions))
	targets := make([]string, 0, len(copyRegions))
	for _, region := range copyRegions {
		if !IsSupported(region) {
			return nil, fmt.Errorf("unsupported copy region %q", region)
		}
		if region == sourceRegion {
			continue
		}
		if _, dup := seen[region]; dup {
			continue
		}
		seen[region] = struct{}{}
		targets = append(targets, region)
	}
	return targets, nil
}
