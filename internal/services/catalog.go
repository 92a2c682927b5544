package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

const (
	MinSearchLimit = 1
	MaxSearchLimit = 25
)

// FetchOptions are the optional query parameters accepted by resource lookups.
type FetchOptions struct {
	// Include names relationships to embed, e.g. "artists" or "tracks".
	Include []string
	// Localization is a language tag such as "en-US", sent as the "l" parameter.
	Localization string
}

func (o FetchOptions) params() []QueryParam {
	var params []QueryParam
	if len(o.Include) > 0 {
		params = append(params, QueryParam{Name: "include", Value: strings.Join(o.Include, ",")})
	}
	if o.Localization != "" {
		params = append(params, QueryParam{Name: "l", Value: o.Localization})
	}
	return params
}

// CatalogResource fetches one resource type from /catalog/{storefront}/{type}.
type CatalogResource[A any] struct {
	client *Client
	kind   string
}

var (
	_ MultiFetcher[models.SongAttributes]  = (*CatalogResource[models.SongAttributes])(nil)
	_ Fetcher[models.StorefrontAttributes] = (*StorefrontResource)(nil)
	_ Searcher                             = (*Catalog)(nil)
)

// NewCatalogResource returns a fetcher for the resource type kind (e.g. [models.TypeSongs]).
func NewCatalogResource[A any](c *Client, kind string) *CatalogResource[A] {
	return &CatalogResource[A]{client: c, kind: kind}
}

// Type returns the resource type name.
func (r *CatalogResource[A]) Type() string { return r.kind }

// Fetch looks up one resource. Invalid input fails before any request is made.
func (r *CatalogResource[A]) Fetch(ctx context.Context, id, storefront string, opts FetchOptions) (*models.ResourceResponse[A], error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ValidateStorefront(storefront); err != nil {
		return nil, err
	}

	path := "catalog/" + storefront + "/" + r.kind + "/" + url.PathEscape(strings.TrimSpace(id))
	return Execute[models.ResourceResponse[A]](ctx, r.client, Get(path, opts.params()...))
}

// FetchMany looks up several resources in one request with the "ids" parameter.
func (r *CatalogResource[A]) FetchMany(ctx context.Context, ids []string, storefront string, opts FetchOptions) (*models.ResourceResponse[A], error) {
	if len(ids) == 0 {
		return nil, shared.NewValidationError("at least one id is required")
	}

	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return nil, err
		}
		cleaned = append(cleaned, strings.TrimSpace(id))
	}
	if err := ValidateStorefront(storefront); err != nil {
		return nil, err
	}

	params := append([]QueryParam{{Name: "ids", Value: strings.Join(cleaned, ",")}}, opts.params()...)
	return Execute[models.ResourceResponse[A]](ctx, r.client, Get("catalog/"+storefront+"/"+r.kind, params...))
}

// StorefrontResource looks up storefronts, which live outside the catalog path.
type StorefrontResource struct {
	client *Client
}

// Fetch looks up one storefront. The storefront argument is unused: a storefront is its own id.
func (r *StorefrontResource) Fetch(ctx context.Context, id, _ string, opts FetchOptions) (*models.ResourceResponse[models.StorefrontAttributes], error) {
	id = strings.TrimSpace(id)
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ValidateStorefront(id); err != nil {
		return nil, err
	}
	return Execute[models.ResourceResponse[models.StorefrontAttributes]](ctx, r.client, Get("storefronts/"+id, opts.params()...))
}

// All lists every storefront.
func (r *StorefrontResource) All(ctx context.Context, opts FetchOptions) (*models.ResourceResponse[models.StorefrontAttributes], error) {
	return Execute[models.ResourceResponse[models.StorefrontAttributes]](ctx, r.client, Get("storefronts", opts.params()...))
}

// SearchOptions narrow a catalog search.
type SearchOptions struct {
	// Types defaults to songs when empty.
	Types []string
	// Limit is the number of results per type; zero leaves it to the service.
	Limit        int
	Offset       int
	Localization string
}

var searchableTypes = map[string]bool{
	models.TypeSongs:       true,
	models.TypeAlbums:      true,
	models.TypeArtists:     true,
	models.TypePlaylists:   true,
	models.TypeMusicVideos: true,
}

// Catalog groups the resource fetchers of one client.
type Catalog struct {
	client *Client

	Songs       *CatalogResource[models.SongAttributes]
	Albums      *CatalogResource[models.AlbumAttributes]
	Artists     *CatalogResource[models.ArtistAttributes]
	Playlists   *CatalogResource[models.PlaylistAttributes]
	MusicVideos *CatalogResource[models.MusicVideoAttributes]
	Storefronts *StorefrontResource
}

// NewCatalog creates the resource layer over c.
func NewCatalog(c *Client) *Catalog {
	return &Catalog{
		client:      c,
		Songs:       NewCatalogResource[models.SongAttributes](c, models.TypeSongs),
		Albums:      NewCatalogResource[models.AlbumAttributes](c, models.TypeAlbums),
		Artists:     NewCatalogResource[models.ArtistAttributes](c, models.TypeArtists),
		Playlists:   NewCatalogResource[models.PlaylistAttributes](c, models.TypePlaylists),
		MusicVideos: NewCatalogResource[models.MusicVideoAttributes](c, models.TypeMusicVideos),
		Storefronts: &StorefrontResource{client: c},
	}
}

// Search runs a catalog search in storefront. The "next" cursor of each result set is returned untouched.
func (c *Catalog) Search(ctx context.Context, term, storefront string, opts SearchOptions) (*models.SearchResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, shared.NewValidationError("search term must not be empty")
	}
	if err := ValidateStorefront(storefront); err != nil {
		return nil, err
	}
	if opts.Limit != 0 && (opts.Limit < MinSearchLimit || opts.Limit > MaxSearchLimit) {
		return nil, shared.NewValidationError("limit must be between %d and %d, got %d", MinSearchLimit, MaxSearchLimit, opts.Limit)
	}
	if opts.Offset < 0 {
		return nil, shared.NewValidationError("offset must not be negative, got %d", opts.Offset)
	}

	types := opts.Types
	if len(types) == 0 {
		types = []string{models.TypeSongs}
	}
	for _, t := range types {
		if !searchableTypes[t] {
			return nil, shared.NewValidationError("unsupported search type %q", t)
		}
	}

	req := Get("catalog/"+storefront+"/search",
		QueryParam{Name: "term", Value: term},
		QueryParam{Name: "types", Value: strings.Join(types, ",")},
	)
	if opts.Limit > 0 {
		req = req.AddQuery("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		req = req.AddQuery("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Localization != "" {
		req = req.AddQuery("l", opts.Localization)
	}
	return Execute[models.SearchResponse](ctx, c.client, req)
}

// ValidateID rejects blank identifiers.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return shared.NewValidationError("id must not be empty")
	}
	return nil
}

// ValidateStorefront accepts two-letter lowercase country codes such as "us" or "gb".
func ValidateStorefront(sf string) error {
	if len(sf) != 2 || !isLower(sf[0]) || !isLower(sf[1]) {
		return shared.NewValidationError("storefront must be a two-letter lowercase country code, got %q", sf)
	}
	return nil
}

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }
