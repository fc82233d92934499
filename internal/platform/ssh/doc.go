// Package ssh provides the remote execution channel to one build instance.
//
// Connect authenticates with the build's generated key material and retries
// at a fixed interval until the instance's shell service is ready. A Client
// runs ordered command lists as a single remote invocation and uploads
// files over SFTP. Captured output is cleaned of terminal escape sequences
// before it is surfaced.
//
// Host key verification is disabled by default: the instances are ephemeral
// and generate fresh host keys at boot.
package ssh
