// Package services defines shared utilities consumed by the translation
// backends and the overlay runtime.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, video IDs, and the active caption
//     style for logging.
//   - Structured error markers plus the Wrap helper so backend failures can be
//     classified (timeout, network, malformed response) with errors.Is.
//   - ClassifyTransport, which maps raw HTTP client errors onto those markers.
//
// Use these helpers when wiring a new backend so the pipeline's retry and
// sentinel logic keeps working without knowing about transport details.
package services
