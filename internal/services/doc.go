// Package services defines shared utilities consumed by the analysis pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp client IDs, sensor box IDs, pipeline stage
//     names, and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input vs configuration vs external service) without string
//     matching.
//
// The llm subpackage holds the chat-completion client used for report
// interpretation.
package services
