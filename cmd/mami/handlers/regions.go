package handlers

import (
	"fmt"
	"io"

	"github.com/opsee/mami/internal/publish"
)

// Regions handles the regions command. It lists the replication catalog,
// one region per line. With a source region set, it instead lists what
// "all" resolves to for a build out of that region.
func Regions(w io.Writer, source string) error {
	regions := publish.SupportedRegions()
	if source != "" {
		if !publish.IsSupported(source) {
			return fmt.Errorf("unsupported source region %q", source)
		}
		var err error
		regions, err = publish.ResolveTargets([]string{"all"}, source)
		if err != nil {
			return err
		}
	}

	for _, region := range regions {
		if _, err := fmt.Fprintln(w, region); err != nil {
			return err
		}
	}
	return nil
}
