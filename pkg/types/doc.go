// Package types defines the core data model shared across the fundfaq
// pipeline: typed fund facts, queries, retrieval results, and the answer
// envelope returned to callers.
//
// Facts are immutable once loaded. Every fact carries exactly one source
// URL; the pipeline never emits a citation that is not backed by a
// retrieved fact.
package types
