// Package catalog loads the precomputed fund-fact catalog into an
// immutable in-memory store.
//
// The input is the funds_data.json shape produced by the external
// scraping/validation pipeline: one record per fund with fund_id,
// fund_name, source_url and one object per fact type carrying
// value/unit/display fields.
//
// A Store is never mutated after Parse returns. Index rebuilds construct
// a complete replacement Store; the pipeline controller swaps it in
// atomically so readers observe either the old store or the new one,
// never a mix.
package catalog
