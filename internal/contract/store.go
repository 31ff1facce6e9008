package contract

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
)

// Store is the document store a suite runs against. Transport, batching and
// retries are the implementation's business.
type Store interface {
	CreateIndex(ctx context.Context, name string, body map[string]any) error
	WaitForIndex(ctx context.Context, name string, timeout time.Duration) error
	IndexDocument(ctx context.Context, index string, doc domain.Document) error
	Refresh(ctx context.Context, index string) error
	Search(ctx context.Context, index string, body map[string]any) (*domain.SearchResponse, error)
	DeleteIndex(ctx context.Context, name string) error
}
