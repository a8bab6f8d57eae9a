// Package llm provides a raw HTTP chat completions client for translating
// subtitle lines into danmaku captions.
//
// It targets the DeepSeek endpoint by default and works with any OpenAI
// compatible /chat/completions URL. Each Complete call is a single request:
// retry policy belongs to the translation pipeline, which retries exactly once
// after a fixed delay.
//
// Failures are tagged with the services markers so callers can classify them
// with errors.Is:
//   - services.ErrTimeout for deadline and transport timeouts
//   - services.ErrNetwork for other transport failures
//   - services.ErrMalformedResponse when the body lacks a choices array
//   - services.ErrTransient for 429 and 5xx responses
//
// Response bodies are read with gjson so provider specific envelopes (delta
// payloads, legacy text completions) degrade gracefully.
package llm
