// Package llm provides an OpenAI-compatible chat client used to turn analysis
// summaries into natural-language interpretation.
//
// # Configuration
//
// Requires api_key, model, and optionally base_url, referer, title, timeout,
// temperature, and max_tokens. The default endpoint is Groq's
// chat/completions API. When unconfigured, callers should fall back to
// deterministic text.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteText: send system/user prompts, receive free-form text.
// Client.CompleteJSON: send system/user prompts, receive a JSON object.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode model JSON tolerating code fences and prose.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Context cancellation aborts retries immediately.
// Final errors carry services.ErrExternalTool, services.ErrTimeout, or
// services.ErrConfiguration.
package llm
