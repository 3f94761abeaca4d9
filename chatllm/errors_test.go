package chatllm

import (
	"errors"
	"testing"
)

func TestErrorFromStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
		check     func(error) bool
	}{
		{400, false, func(err error) bool { var e *InvalidRequestError; return errors.As(err, &e) }},
		{401, false, func(err error) bool { var e *AuthenticationError; return errors.As(err, &e) }},
		{403, false, func(err error) bool { var e *AccessDeniedError; return errors.As(err, &e) }},
		{404, false, func(err error) bool { var e *NotFoundError; return errors.As(err, &e) }},
		{408, true, func(err error) bool { var e *RequestTimeoutError; return errors.As(err, &e) }},
		{413, false, func(err error) bool { var e *ContextLengthError; return errors.As(err, &e) }},
		{429, true, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) }},
		{500, true, func(err error) bool { var e *ServerError; return errors.As(err, &e) }},
		{503, true, func(err error) bool { var e *ServerError; return errors.As(err, &e) }},
	}

	for _, tt := range tests {
		err := ErrorFromStatusCode(tt.status, "test error", "test-provider", nil)
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if !tt.check(err) {
			t.Errorf("status %d: wrong error type: %T", tt.status, err)
		}
		if got := IsRetryable(err); got != tt.retryable {
			t.Errorf("status %d: IsRetryable = %v, want %v", tt.status, got, tt.retryable)
		}
	}
}

func TestIsRetryableNil(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil error should not be retryable")
	}
}

func TestIsRetryableUnknownDefaultsTrue(t *testing.T) {
	if !IsRetryable(errors.New("mystery")) {
		t.Error("unknown errors should default to retryable")
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ClientError{Message: "wrapper", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
	if err.Error() != "wrapper: root cause" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
