// Package translate turns subtitle text into caption results through a chat
// backend.
//
// A Pipeline layers four behaviours over the backend:
//
//   - blank input short-circuits to an empty result without touching the
//     limiter or the network;
//   - results are cached by exact source text, and the cache is dropped in
//     bulk whenever the style changes;
//   - dispatches closer together than MinInterval are refused with an empty
//     result;
//   - Request retries an error result exactly once after RetryDelay.
//
// Backend failures never surface as Go errors. They become sentinel strings
// starting with ErrorPrefix so callers can filter them with IsErrorResult.
package translate
