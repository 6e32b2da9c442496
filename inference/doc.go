// Package inference provides a provider-agnostic client for remote completion
// backends. It presents a small unified surface (messages, requests,
// responses, and a typed error taxonomy) over OpenAI-compatible HTTP endpoints.
//
// # Architecture
//
//   - Types: Message/ContentPart supporting text and image content, Request,
//     Response, and Usage counters.
//   - Errors: typed errors classified from HTTP status codes so callers can
//     distinguish rate limiting (429) from authentication failure (401) from
//     transient server errors.
//   - Client: provider routing and middleware around ProviderAdapter
//     implementations.
//   - OpenAIAdapter: a chat-completions adapter over resty with base64
//     data-URL image embedding.
//
// # Quick Start
//
//	adapter, _ := inference.NewOpenAIAdapter("openai", "https://api.openai.com/v1", os.Getenv("GAMEPILOT_API_KEY"))
//	client := inference.NewClient(inference.WithProvider("openai", adapter))
//
//	resp, err := client.Complete(ctx, inference.Request{
//	    Model:    "gpt-4o-mini",
//	    Messages: []inference.Message{inference.UserMessage("Press a button")},
//	})
//	if inference.IsRateLimited(err) {
//	    // back off and retry
//	}
//
// The decision loop in package gameloop consumes this client and owns all
// retry pacing; the adapter itself never retries.
package inference
