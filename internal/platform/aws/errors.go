package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

// notFoundCodes are EC2 API error codes indicating a missing resource.
// Deleting a resource that is already gone is treated as success by callers
// that want idempotent teardown.
var notFoundCodes = []string{
	"InvalidInstanceID.NotFound",
	"InvalidAMIID.NotFound",
	"InvalidGroup.NotFound",
	"InvalidGroupId.NotFound",
	"InvalidKeyPair.NotFound",
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return isAPIErrorCode(err, notFoundCodes...)
}

// IsDependencyViolation checks if an error indicates the resource is still
// referenced, e.g. deleting a security group while the instance is shutting
// down. These errors are retryable.
func IsDependencyViolation(err error) bool {
	return isAPIErrorCode(err, "DependencyViolation")
}

// IsRequestLimitExceeded checks if an error indicates API rate limiting.
func IsRequestLimitExceeded(err error) bool {
	return isAPIErrorCode(err, "RequestLimitExceeded", "Throttling")
}

// isAPIErrorCode checks if the error is an API error with one of the given codes.
func isAPIErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
	}
	return false
}
