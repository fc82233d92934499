// Package lifecycle manages the temporary compute resources owned by one
// build run: the instance itself, its generated key pair, and its security
// group.
//
// Acquire creates all three under a unique build identifier and hands back
// an InstanceHandle; Release tears all three down, attempting every
// sub-step even when an earlier one fails. State transitions are observed
// by polling the provider at a fixed interval with an explicit bound.
package lifecycle
