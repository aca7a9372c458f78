// Package textutil provides small text helpers shared by the report, export,
// and client store layers.
//
// The helpers cover three concerns:
//   - Filesystem-safe tokens and file names, with diacritics folded so French
//     client names map to plain ASCII file names
//   - Display casing for catalog identifiers such as sound families
//   - French number formatting (space-grouped thousands) for cost estimates
package textutil
