package documents

import (
	"context"

	"github.com/baechuer/docvault/internal/domain"
)

// Repo is the document metadata store. Misses are domain.ErrDocumentNotFound.
// List returns newest first.
type Repo interface {
	Create(ctx context.Context, d domain.Document) (domain.Document, error)
	GetByID(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, error)
	Update(ctx context.Context, d domain.Document) (domain.Document, error)
	Delete(ctx context.Context, id string) error
}
