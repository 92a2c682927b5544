// package services defines the authenticated request pipeline for the Apple Music API
//
// along with the catalog resource layer built on it
package services

import (
	"context"

	"github.com/desertthunder/amx/internal/models"
)

// Fetcher looks up a single catalog resource by id within a storefront.
//
// Implemented by [CatalogResource] for every catalog type and by [StorefrontResource].
type Fetcher[A any] interface {
	// Fetch returns the resource wrapped in the standard data envelope.
	// Invalid id or storefront fails with a validation error before any request is made.
	Fetch(ctx context.Context, id, storefront string, opts FetchOptions) (*models.ResourceResponse[A], error)
}

// MultiFetcher looks up several resources of one type in a single request.
type MultiFetcher[A any] interface {
	Fetcher[A]
	FetchMany(ctx context.Context, ids []string, storefront string, opts FetchOptions) (*models.ResourceResponse[A], error)
}

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, term, storefront string, opts SearchOptions) (*models.SearchResponse, error)
}
