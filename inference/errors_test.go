package inference

import (
	"errors"
	"testing"
)

func TestErrorFromStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{400, false},
		{401, false},
		{403, false},
		{408, true},
		{422, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		err := ErrorFromStatusCode(tt.status, "test error", "openai", nil)
		if IsRetryable(err) != tt.retryable {
			t.Errorf("status %d: expected retryable=%v", tt.status, tt.retryable)
		}
	}
}

func TestErrorFromStatusCodeClassification(t *testing.T) {
	if !IsAuthFailure(ErrorFromStatusCode(401, "bad key", "openai", nil)) {
		t.Error("expected 401 to classify as authentication failure")
	}
	if IsAuthFailure(ErrorFromStatusCode(403, "forbidden", "openai", nil)) {
		t.Error("expected 403 not to classify as authentication failure")
	}
	if !IsRateLimited(ErrorFromStatusCode(429, "slow down", "openai", nil)) {
		t.Error("expected 429 to classify as rate limited")
	}
	if IsRateLimited(ErrorFromStatusCode(500, "boom", "openai", nil)) {
		t.Error("expected 500 not to classify as rate limited")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"auth error", &AuthenticationError{}, false},
		{"access denied", &AccessDeniedError{}, false},
		{"invalid request", &InvalidRequestError{}, false},
		{"config error", &ConfigurationError{}, false},
		{"rate limit", &RateLimitError{}, true},
		{"server error", &ServerError{}, true},
		{"network error", &NetworkError{}, true},
		{"timeout error", &RequestTimeoutError{}, true},
		{"unknown error", errors.New("unknown"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsRetryable(tt.err) != tt.retryable {
				t.Errorf("expected retryable=%v", tt.retryable)
			}
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	if got := RetryAfterSeconds(errors.New("plain")); got != 0 {
		t.Errorf("expected 0 for non-rate-limit error, got %f", got)
	}

	err := ErrorFromStatusCode(429, "slow down", "openai", nil)
	if got := RetryAfterSeconds(err); got != 0 {
		t.Errorf("expected 0 without header, got %f", got)
	}

	after := 2.5
	err = ErrorFromStatusCode(429, "slow down", "openai", &after)
	if got := RetryAfterSeconds(err); got != 2.5 {
		t.Errorf("expected 2.5, got %f", got)
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &NetworkError{BackendError: BackendError{Message: "send failed", Cause: cause}}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
