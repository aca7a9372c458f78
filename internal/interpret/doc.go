// Package interpret turns an analysis summary into the French narrative
// sections of a diagnostic report.
//
// Each section (grade interpretation, sound analysis, recommendations per
// building element, summary email) is requested from a language model through
// the Completer interface. When no model is configured, or a call fails, or a
// response cannot be decoded, the section is filled with deterministic default
// text derived from the summary so a report can always be produced offline.
package interpret
