// Package clients manages diagnostic client records stored as one JSON file
// per client in a flat directory.
//
// File names follow <nom>_<prenom>_<YYYYMMDD_HHMMSS>.json with diacritics
// folded. Writes go through a temp file and rename while holding an advisory
// lock on the directory, so concurrent CLI invocations never interleave. Reads
// take no lock and skip files that fail to parse, logging a warning instead.
//
// Records are validated with struct tags before every write. Files written by
// older tooling that lack an id get a stable one derived from their file name.
package clients
