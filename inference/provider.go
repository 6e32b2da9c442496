package inference

import "context"

// ProviderAdapter is the interface every inference backend must implement.
type ProviderAdapter interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string

	// Complete sends a blocking request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Optional methods that adapters may implement.

// Closer is implemented by adapters that hold resources.
type Closer interface {
	Close() error
}
