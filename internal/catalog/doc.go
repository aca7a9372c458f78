// Package catalog holds the immutable reference tables the analysis pipeline
// depends on: the DPS rating scale, the sound family taxonomy, the detected
// label to family table, the normal/problematic label sets, and per-room
// comfort thresholds.
//
// A Catalog is built once (usually via Default) and handed explicitly to the
// measurement loader and the aggregator. Nothing in the package mutates a
// Catalog after construction, so a single value can be shared by concurrent
// analyses without synchronization.
package catalog
