// Package embedder provides text embedding clients for vector
// representations of fund facts.
//
// The default implementation runs a local EmbedEverything model
// (all-MiniLM-L6-v2, 384 dimensions), so the embedding index can be built
// without any external service. When the model cannot be loaded the
// embedding capability is simply absent and retrieval falls back to
// keyword matching.
package embedder
