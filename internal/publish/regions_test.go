package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedRegions_Sorted(t *testing.T) {
	regions := SupportedRegions()
	require.NotEmpty(t, regions)
	assert.IsNonDecreasing(t, regions)
	assert.Contains(t, regions, "us-east-1")
	assert.Contains(t, regions, "eu-central-1")
}

func TestResolveTargets(t *testing.T) {
	cases := []struct {
		name        string
		copyRegions []string
		source      string
		want        []string
		wantErr     bool
	}{
		{
			name:        "empty means no replication",
			copyRegions: nil,
			source:      "us-east-1",
			want:        nil,
		},
		{
			name:        "explicit list",
			copyRegions: []string{"eu-west-1", "us-west-2"},
			source:      "us-east-1",
			want:        []string{"eu-west-1", "us-west-2"},
		},
		{
			name:        "source region is dropped",
			copyRegions: []string{"us-east-1", "eu-west-1"},
			source:      "us-east-1",
			want:        []string{"eu-west-1"},
		},
		{
			name:        "duplicates are dropped",
			copyRegions: []string{"eu-west-1", "eu-west-1"},
			source:      "us-east-1",
			want:        []string{"eu-west-1"},
		},
		{
			name:        "unsupported region fails",
			copyRegions: []string{"mars-north-1"},
			source:      "us-east-1",
			wantErr:     true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveTargets(tc.copyRegions, tc.source)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveTargets_All(t *testing.T) {
	got, err := ResolveTargets([]string{"all"}, "us-east-1")
	require.NoError(t, err)

	assert.Len(t, got, len(SupportedRegions())-1)
	assert.NotContains(t, got, "us-east-1")
	assert.IsNonDecreasing(t, got)
}
