// Package analysis turns a measurement collection into the statistical
// summary consumed by the renderers, the interpreter, and the exporter.
//
// Aggregation is a pure function of the collection and the catalog: every
// grouping is built in one pass over the records as key to accumulator maps,
// then percentages and ratings are derived in a second pass. Map-shaped
// outputs are emitted in a fixed order so that identical input always yields
// byte-identical JSON.
package analysis
