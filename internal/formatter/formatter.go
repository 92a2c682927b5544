// package formatter renders catalog resources as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// Supported output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Row is the flattened, format-independent view of one catalog resource.
type Row struct {
	ID         string
	Type       string
	Name       string
	Artist     string
	Album      string
	DurationMS int
	ISRC       string
	URL        string
	Artwork    string
}

// SongRows flattens songs.
func SongRows(songs []models.Song) []Row {
	rows := make([]Row, 0, len(songs))
	for _, s := range songs {
		a := s.Attributes
		rows = append(rows, Row{
			ID: s.ID, Type: models.TypeSongs, Name: a.Name, Artist: a.ArtistName, Album: a.AlbumName,
			DurationMS: a.DurationInMillis, ISRC: a.ISRC, URL: a.URL, Artwork: a.Artwork.URL,
		})
	}
	return rows
}

// AlbumRows flattens albums; Album holds the record label.
func AlbumRows(albums []models.Album) []Row {
	rows := make([]Row, 0, len(albums))
	for _, al := range albums {
		a := al.Attributes
		rows = append(rows, Row{
			ID: al.ID, Type: models.TypeAlbums, Name: a.Name, Artist: a.ArtistName, Album: a.RecordLabel,
			URL: a.URL, Artwork: a.Artwork.URL,
		})
	}
	return rows
}

// ArtistRows flattens artists.
func ArtistRows(artists []models.Artist) []Row {
	rows := make([]Row, 0, len(artists))
	for _, ar := range artists {
		r := Row{ID: ar.ID, Type: models.TypeArtists, Name: ar.Attributes.Name, URL: ar.Attributes.URL}
		if ar.Attributes.Artwork != nil {
			r.Artwork = ar.Attributes.Artwork.URL
		}
		rows = append(rows, r)
	}
	return rows
}

// PlaylistRows flattens playlists; Artist holds the curator.
func PlaylistRows(playlists []models.Playlist) []Row {
	rows := make([]Row, 0, len(playlists))
	for _, p := range playlists {
		r := Row{ID: p.ID, Type: models.TypePlaylists, Name: p.Attributes.Name, Artist: p.Attributes.CuratorName, URL: p.Attributes.URL}
		if p.Attributes.Artwork != nil {
			r.Artwork = p.Attributes.Artwork.URL
		}
		rows = append(rows, r)
	}
	return rows
}

// MusicVideoRows flattens music videos.
func MusicVideoRows(videos []models.MusicVideo) []Row {
	rows := make([]Row, 0, len(videos))
	for _, v := range videos {
		a := v.Attributes
		rows = append(rows, Row{
			ID: v.ID, Type: models.TypeMusicVideos, Name: a.Name, Artist: a.ArtistName, Album: a.AlbumName,
			DurationMS: a.DurationInMillis, ISRC: a.ISRC, URL: a.URL, Artwork: a.Artwork.URL,
		})
	}
	return rows
}

// StorefrontRows flattens storefronts; Album holds the default language tag.
func StorefrontRows(storefronts []models.Storefront) []Row {
	rows := make([]Row, 0, len(storefronts))
	for _, sf := range storefronts {
		rows = append(rows, Row{ID: sf.ID, Type: models.TypeStorefronts, Name: sf.Attributes.Name, Album: sf.Attributes.DefaultLanguageTag})
	}
	return rows
}

// SearchRows flattens every result set of a search, songs first.
func SearchRows(resp *models.SearchResponse) []Row {
	if resp == nil {
		return nil
	}

	var rows []Row
	r := resp.Results
	if r.Songs != nil {
		rows = append(rows, SongRows(r.Songs.Data)...)
	}
	if r.Albums != nil {
		rows = append(rows, AlbumRows(r.Albums.Data)...)
	}
	if r.Artists != nil {
		rows = append(rows, ArtistRows(r.Artists.Data)...)
	}
	if r.Playlists != nil {
		rows = append(rows, PlaylistRows(r.Playlists.Data)...)
	}
	if r.MusicVideos != nil {
		rows = append(rows, MusicVideoRows(r.MusicVideos.Data)...)
	}
	return rows
}

// FormatDuration renders milliseconds as m:ss, or h:mm:ss past an hour. Zero renders as "-".
func FormatDuration(ms int) string {
	if ms <= 0 {
		return "-"
	}
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ArtworkURL fills the {w} and {h} placeholders of an artwork template.
func ArtworkURL(template string, width, height int) string {
	r := strings.NewReplacer("{w}", strconv.Itoa(width), "{h}", strconv.Itoa(height), "{f}", "jpg")
	return r.Replace(template)
}

// ExportToCSV renders rows with columns: ID, Type, Name, Artist, Album, Duration, ISRC, URL
func ExportToCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Type", "Name", "Artist", "Album", "Duration", "ISRC", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ID,
			row.Type,
			row.Name,
			row.Artist,
			row.Album,
			FormatDuration(row.DurationMS),
			row.ISRC,
			row.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders rows as a numbered list under title, with an optional cover image
func ExportToMarkdown(title string, rows []Row, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Results**: %d\n\n", len(rows))

	currentType := ""
	for i, row := range rows {
		if row.Type != currentType {
			currentType = row.Type
			fmt.Fprintf(&buf, "## %s\n\n", sectionTitle(currentType))
		}

		name := row.Name
		if row.URL != "" {
			name = fmt.Sprintf("[%s](%s)", row.Name, row.URL)
		}

		line := name
		if row.Artist != "" {
			line = row.Artist + " - " + name
		}
		if row.Album != "" {
			line += fmt.Sprintf(" (%s)", row.Album)
		}
		if row.DurationMS > 0 {
			line += fmt.Sprintf(" [%s]", FormatDuration(row.DurationMS))
		}
		fmt.Fprintf(&buf, "%d. %s\n", i+1, line)

		if i+1 < len(rows) && rows[i+1].Type != currentType {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders rows as plain text
func ExportToText(title string, rows []Row) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Results: %d\n\n", len(rows))

	for i, row := range rows {
		if row.Artist != "" {
			fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, row.Artist, row.Name, row.ID)
		} else {
			fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, row.Name, row.ID)
		}
	}

	return buf.Bytes(), nil
}

// Render dispatches to the exporter for format. JSON output encodes v instead of rows.
func Render(format, title string, rows []Row, v any) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatCSV:
		return ExportToCSV(rows)
	case FormatMarkdown, "md":
		return ExportToMarkdown(title, rows, "")
	case FormatText, "text":
		return ExportToText(title, rows)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use json, csv, markdown or txt)", shared.ErrInvalidFlag, format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when the first row has artwork, {dir}/cover.jpg.
//
// A failed artwork download is skipped and does not fail the export.
func WriteMarkdownExport(title string, rows []Row, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("%w: output directory", shared.ErrMissingArgument)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if len(rows) > 0 && rows[0].Artwork != "" {
		imageData, err := DownloadImage(ArtworkURL(rows[0].Artwork, 600, 600))
		if err == nil {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(title, rows, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

func sectionTitle(resourceType string) string {
	switch resourceType {
	case models.TypeSongs:
		return "Songs"
	case models.TypeAlbums:
		return "Albums"
	case models.TypeArtists:
		return "Artists"
	case models.TypePlaylists:
		return "Playlists"
	case models.TypeMusicVideos:
		return "Music Videos"
	case models.TypeStorefronts:
		return "Storefronts"
	default:
		return resourceType
	}
}
