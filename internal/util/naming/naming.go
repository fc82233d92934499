// Package naming provides consistent, collision-free names for per-build
// cloud resources.
//
// Every build generates a fresh identifier with enough entropy that
// concurrent builds never collide on key pair or security group names.
package naming

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BuildID returns a unique identifier for one build run.
func BuildID() string {
	return "mami-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// KeyPair returns the key pair name for a build.
func KeyPair(buildID string) string {
	return fmt.Sprintf("%s-key", buildID)
}

// SecurityGroup returns the security group name for a build.
func SecurityGroup(buildID string) string {
	return fmt.Sprintf("%s-sg", buildID)
}
