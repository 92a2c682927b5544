package models

// Resource types as named by the Apple Music API.
const (
	TypeSongs       = "songs"
	TypeAlbums      = "albums"
	TypeArtists     = "artists"
	TypePlaylists   = "playlists"
	TypeMusicVideos = "music-videos"
	TypeStorefronts = "storefronts"
)

// Resource is one element of a response "data" array.
type Resource[A any] struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Href          string                  `json:"href,omitempty"`
	Attributes    A                       `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Relationship references related resources without decoding their attributes.
type Relationship struct {
	Href string             `json:"href,omitempty"`
	Next string             `json:"next,omitempty"`
	Data []ResourceIdentity `json:"data"`
}

// ResourceIdentity is the id/type/href triple of a related resource.
type ResourceIdentity struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Href string `json:"href,omitempty"`
}

// ResourceResponse is the standard {"data": [...], "next": "..."} envelope.
//
// Next is the pagination cursor as returned; it is never followed automatically.
type ResourceResponse[A any] struct {
	Data []Resource[A] `json:"data"`
	Href string        `json:"href,omitempty"`
	Next string        `json:"next,omitempty"`
}

// First returns the first resource, or nil for an empty response.
func (r *ResourceResponse[A]) First() *Resource[A] {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	return &r.Data[0]
}

// Artwork describes an image template; URL contains {w} and {h} placeholders.
type Artwork struct {
	URL        string `json:"url"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	BgColor    string `json:"bgColor,omitempty"`
	TextColor1 string `json:"textColor1,omitempty"`
}

// PlayParams identifies a playable item.
type PlayParams struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// EditorialNotes holds editorial copy.
type EditorialNotes struct {
	Short    string `json:"short,omitempty"`
	Standard string `json:"standard,omitempty"`
	Name     string `json:"name,omitempty"`
	Tagline  string `json:"tagline,omitempty"`
}

// Preview is an audio or video preview asset.
type Preview struct {
	URL string `json:"url"`
}

// SongAttributes are the attributes of a catalog song.
type SongAttributes struct {
	Name             string      `json:"name"`
	ArtistName       string      `json:"artistName"`
	AlbumName        string      `json:"albumName"`
	ComposerName     string      `json:"composerName,omitempty"`
	GenreNames       []string    `json:"genreNames"`
	DurationInMillis int         `json:"durationInMillis"`
	ReleaseDate      string      `json:"releaseDate,omitempty"`
	ISRC             string      `json:"isrc,omitempty"`
	TrackNumber      int         `json:"trackNumber,omitempty"`
	DiscNumber       int         `json:"discNumber,omitempty"`
	ContentRating    string      `json:"contentRating,omitempty"`
	URL              string      `json:"url"`
	Artwork          Artwork     `json:"artwork"`
	PlayParams       *PlayParams `json:"playParams,omitempty"`
	Previews         []Preview   `json:"previews,omitempty"`
}

// AlbumAttributes are the attributes of a catalog album.
type AlbumAttributes struct {
	Name           string          `json:"name"`
	ArtistName     string          `json:"artistName"`
	GenreNames     []string        `json:"genreNames"`
	TrackCount     int             `json:"trackCount"`
	ReleaseDate    string          `json:"releaseDate,omitempty"`
	RecordLabel    string          `json:"recordLabel,omitempty"`
	UPC            string          `json:"upc,omitempty"`
	Copyright      string          `json:"copyright,omitempty"`
	IsSingle       bool            `json:"isSingle"`
	IsComplete     bool            `json:"isComplete"`
	ContentRating  string          `json:"contentRating,omitempty"`
	URL            string          `json:"url"`
	Artwork        Artwork         `json:"artwork"`
	EditorialNotes *EditorialNotes `json:"editorialNotes,omitempty"`
	PlayParams     *PlayParams     `json:"playParams,omitempty"`
}

// ArtistAttributes are the attributes of a catalog artist.
type ArtistAttributes struct {
	Name           string          `json:"name"`
	GenreNames     []string        `json:"genreNames"`
	URL            string          `json:"url"`
	Artwork        *Artwork        `json:"artwork,omitempty"`
	EditorialNotes *EditorialNotes `json:"editorialNotes,omitempty"`
}

// PlaylistAttributes are the attributes of a catalog playlist.
type PlaylistAttributes struct {
	Name             string          `json:"name"`
	CuratorName      string          `json:"curatorName,omitempty"`
	PlaylistType     string          `json:"playlistType,omitempty"`
	LastModifiedDate string          `json:"lastModifiedDate,omitempty"`
	URL              string          `json:"url"`
	Artwork          *Artwork        `json:"artwork,omitempty"`
	Description      *EditorialNotes `json:"description,omitempty"`
	PlayParams       *PlayParams     `json:"playParams,omitempty"`
}

// MusicVideoAttributes are the attributes of a catalog music video.
type MusicVideoAttributes struct {
	Name             string      `json:"name"`
	ArtistName       string      `json:"artistName"`
	AlbumName        string      `json:"albumName,omitempty"`
	GenreNames       []string    `json:"genreNames"`
	DurationInMillis int         `json:"durationInMillis"`
	ReleaseDate      string      `json:"releaseDate,omitempty"`
	ISRC             string      `json:"isrc,omitempty"`
	URL              string      `json:"url"`
	Artwork          Artwork     `json:"artwork"`
	PlayParams       *PlayParams `json:"playParams,omitempty"`
}

// StorefrontAttributes describe a regional catalog.
type StorefrontAttributes struct {
	Name                  string   `json:"name"`
	DefaultLanguageTag    string   `json:"defaultLanguageTag"`
	SupportedLanguageTags []string `json:"supportedLanguageTags"`
	ExplicitContentPolicy string   `json:"explicitContentPolicy,omitempty"`
}

type (
	Song       = Resource[SongAttributes]
	Album      = Resource[AlbumAttributes]
	Artist     = Resource[ArtistAttributes]
	Playlist   = Resource[PlaylistAttributes]
	MusicVideo = Resource[MusicVideoAttributes]
	Storefront = Resource[StorefrontAttributes]
)

// SearchResults groups search hits per resource type.
type SearchResults struct {
	Songs       *ResourceResponse[SongAttributes]       `json:"songs,omitempty"`
	Albums      *ResourceResponse[AlbumAttributes]      `json:"albums,omitempty"`
	Artists     *ResourceResponse[ArtistAttributes]     `json:"artists,omitempty"`
	Playlists   *ResourceResponse[PlaylistAttributes]   `json:"playlists,omitempty"`
	MusicVideos *ResourceResponse[MusicVideoAttributes] `json:"music-videos,omitempty"`
}

// SearchResponse is the body of a catalog search.
type SearchResponse struct {
	Results SearchResults `json:"results"`
}
