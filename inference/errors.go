package inference

import (
	"errors"
	"fmt"
)

// BackendError is the base error type for all inference backend errors.
type BackendError struct {
	Message string
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by an inference provider.
type ProviderError struct {
	BackendError
	Provider   string
	StatusCode int
	Retryable  bool
	RetryAfter *float64 // seconds, from the Retry-After header when present
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// Concrete provider error types.

type AuthenticationError struct{ ProviderError }
type AccessDeniedError struct{ ProviderError }
type InvalidRequestError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type ServerError struct{ ProviderError }

// Non-provider errors.

type RequestTimeoutError struct{ BackendError }
type NetworkError struct{ BackendError }
type ConfigurationError struct{ BackendError }

// ErrorFromStatusCode maps an HTTP status code to the appropriate error type.
func ErrorFromStatusCode(statusCode int, message, provider string, retryAfter *float64) error {
	pe := ProviderError{
		BackendError: BackendError{Message: message},
		Provider:     provider,
		StatusCode:   statusCode,
		RetryAfter:   retryAfter,
	}

	switch statusCode {
	case 400, 422:
		pe.Retryable = false
		return &InvalidRequestError{ProviderError: pe}
	case 401:
		pe.Retryable = false
		return &AuthenticationError{ProviderError: pe}
	case 403:
		pe.Retryable = false
		return &AccessDeniedError{ProviderError: pe}
	case 408:
		return &RequestTimeoutError{BackendError: BackendError{Message: message}}
	case 429:
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case 500, 502, 503, 504:
		pe.Retryable = true
		return &ServerError{ProviderError: pe}
	default:
		// Unknown statuses default to retryable.
		pe.Retryable = true
		return &pe
	}
}

// IsRetryable returns true if the error is safe to retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *AuthenticationError:
		return false
	case *AccessDeniedError:
		return false
	case *InvalidRequestError:
		return false
	case *ConfigurationError:
		return false
	case *RateLimitError:
		return true
	case *ServerError:
		return true
	case *NetworkError:
		return true
	case *RequestTimeoutError:
		return true
	case *ProviderError:
		return e.Retryable
	default:
		// Unknown errors default to retryable.
		return true
	}
}

// IsRateLimited reports whether err signals backend rate limiting.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsAuthFailure reports whether err signals an authentication failure.
func IsAuthFailure(err error) bool {
	var auth *AuthenticationError
	return errors.As(err, &auth)
}

// RetryAfterSeconds extracts the Retry-After hint from a rate limit error,
// returning 0 when absent.
func RetryAfterSeconds(err error) float64 {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter != nil {
		return *rl.RetryAfter
	}
	return 0
}
