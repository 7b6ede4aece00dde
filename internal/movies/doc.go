// Package movies holds the value types passed between the resolver, the
// extractor, the pipeline, and the result store: a record Reference, the
// optional-field attribute Bundle, and the per-title Outcome.
package movies
