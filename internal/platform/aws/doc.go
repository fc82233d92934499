// Package aws provides a wrapper around the EC2 API for build resources.
//
// The wrapper is split into narrow interfaces (instances, images, key pairs,
// security groups) so callers depend only on the operations they use and
// tests can substitute MockClient. RealClient implements everything on top
// of aws-sdk-go-v2, including per-region clients for cross-region image
// copies.
package aws
