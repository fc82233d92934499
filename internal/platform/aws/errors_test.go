package aws

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "test"}
}

func TestIsNotFound(t *testing.T) {
	for _, code := range notFoundCodes {
		if !IsNotFound(apiError(code)) {
			t.Errorf("expected %s to be not-found", code)
		}
	}

	if IsNotFound(apiError("DependencyViolation")) {
		t.Error("DependencyViolation is not a not-found error")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain error is not a not-found error")
	}
	if IsNotFound(nil) {
		t.Error("nil is not a not-found error")
	}
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("failed to delete key pair: %w", apiError("InvalidKeyPair.NotFound"))
	if !IsNotFound(err) {
		t.Error("wrapped API error should still be detected")
	}
}

func TestIsDependencyViolation(t *testing.T) {
	if !IsDependencyViolation(apiError("DependencyViolation")) {
		t.Error("expected DependencyViolation to match")
	}
	if IsDependencyViolation(apiError("InvalidGroup.NotFound")) {
		t.Error("not-found should not match")
	}
}

func TestIsRequestLimitExceeded(t *testing.T) {
	if !IsRequestLimitExceeded(apiError("RequestLimitExceeded")) {
		t.Error("expected RequestLimitExceeded to match")
	}
	if !IsRequestLimitExceeded(apiError("Throttling")) {
		t.Error("expected Throttling to match")
	}
	if IsRequestLimitExceeded(nil) {
		t.Error("nil should not match")
	}
}
