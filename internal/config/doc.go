// Package config loads and validates the declarative build configuration.
//
// A build is described by a YAML document naming the build region, the base
// image, the SSH user, an ordered list of provisioning steps, and the image
// to produce. Operational bounds (poll intervals, retry counts, timeouts)
// are not part of the document; they come from environment variables via
// LoadTimeouts so operators can tune them without editing build definitions.
package config
