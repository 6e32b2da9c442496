package inference

import (
	"context"
	"testing"
)

// stubAdapter returns canned responses for client tests.
type stubAdapter struct {
	name     string
	response *Response
	err      error
	calls    int
	lastReq  Request
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Complete(_ context.Context, req Request) (*Response, error) {
	s.calls++
	s.lastReq = req
	return s.response, s.err
}

func TestClientRoutesToDefaultProvider(t *testing.T) {
	stub := &stubAdapter{name: "openai", response: &Response{Message: UserMessage("ok")}}
	client := NewClient(WithProvider("openai", stub))

	resp, err := client.Complete(context.Background(), Request{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message.TextContent() != "ok" {
		t.Errorf("unexpected response text %q", resp.Message.TextContent())
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 call, got %d", stub.calls)
	}
	if stub.lastReq.Provider != "openai" {
		t.Errorf("expected provider to be filled in, got %q", stub.lastReq.Provider)
	}
}

func TestClientUnknownProvider(t *testing.T) {
	client := NewClient(WithProvider("openai", &stubAdapter{name: "openai"}))

	_, err := client.Complete(context.Background(), Request{Provider: "missing"})
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Errorf("expected ConfigurationError, got %T", err)
	}
}

func TestClientNoProviders(t *testing.T) {
	client := NewClient()
	_, err := client.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error with no providers registered")
	}
}

func TestClientMiddlewareOrder(t *testing.T) {
	stub := &stubAdapter{name: "openai", response: &Response{}}
	var order []string
	mw := func(tag string) Middleware {
		return func(ctx context.Context, req Request, next func(context.Context, Request) (*Response, error)) (*Response, error) {
			order = append(order, tag)
			return next(ctx, req)
		}
	}
	client := NewClient(
		WithProvider("openai", stub),
		WithMiddleware(mw("first"), mw("second")),
	)

	if _, err := client.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected middleware order: %v", order)
	}
}

func TestRegisterProviderSetsDefault(t *testing.T) {
	client := NewClient()
	client.RegisterProvider("local", &stubAdapter{name: "local", response: &Response{}})

	if _, err := client.Complete(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
