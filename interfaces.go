package fundfaq

import (
	"context"

	"github.com/navlens/fundfaq/pkg/types"
)

// Focused interfaces over the pipeline. Consumers should depend on the
// smallest interface that meets their needs; the HTTP handlers and the
// CLI take these rather than *Pipeline.

// QueryAnswerer answers free-text fund questions.
type QueryAnswerer interface {
	AnswerQuery(ctx context.Context, query types.Query) (types.AnswerResponse, error)
}

// IndexRebuilder reloads the catalog and rebuilds the embedding index.
type IndexRebuilder interface {
	Rebuild(ctx context.Context) error
}

// CatalogReader exposes read-only views of the loaded knowledge base.
type CatalogReader interface {
	AvailableFunds() []string
	Status() Status
}

var _ interface {
	QueryAnswerer
	IndexRebuilder
	CatalogReader
} = (*Pipeline)(nil)
