package formatter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
	th "github.com/desertthunder/amx/internal/testing"
)

func testSongs() []models.Song {
	return []models.Song{
		{
			ID:   "1441164738",
			Type: models.TypeSongs,
			Attributes: models.SongAttributes{
				Name:             "Bohemian Rhapsody",
				ArtistName:       "Queen",
				AlbumName:        "A Night at the Opera",
				DurationInMillis: 354947,
				ISRC:             "GBUM71029604",
				URL:              "https://music.apple.com/us/song/1441164738",
				Artwork:          models.Artwork{URL: "https://example.com/{w}x{h}bb.jpg"},
			},
		},
		{
			ID:   "1440650428",
			Type: models.TypeSongs,
			Attributes: models.SongAttributes{
				Name:             "Under Pressure",
				ArtistName:       "Queen & David Bowie",
				DurationInMillis: 248000,
			},
		},
	}
}

func testSearch() *models.SearchResponse {
	return &models.SearchResponse{Results: models.SearchResults{
		Songs: &models.ResourceResponse[models.SongAttributes]{Data: testSongs()},
		Artists: &models.ResourceResponse[models.ArtistAttributes]{Data: []models.Artist{
			{ID: "3296287", Type: models.TypeArtists, Attributes: models.ArtistAttributes{Name: "Queen"}},
		}},
	}}
}

func TestRows(t *testing.T) {
	t.Run("SongRows", func(t *testing.T) {
		rows := SongRows(testSongs())
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].Artist != "Queen" || rows[0].Album != "A Night at the Opera" || rows[0].ISRC != "GBUM71029604" {
			t.Errorf("unexpected row %+v", rows[0])
		}
	})

	t.Run("SearchRows", func(t *testing.T) {
		rows := SearchRows(testSearch())
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		if rows[2].Type != models.TypeArtists || rows[2].Name != "Queen" {
			t.Errorf("expected artist row last, got %+v", rows[2])
		}
		if SearchRows(nil) != nil {
			t.Error("expected nil rows for nil response")
		}
	})

	t.Run("Album And Playlist Rows", func(t *testing.T) {
		albums := AlbumRows([]models.Album{{ID: "1", Attributes: models.AlbumAttributes{Name: "Jazz", ArtistName: "Queen", RecordLabel: "EMI"}}})
		if albums[0].Album != "EMI" {
			t.Errorf("expected record label in album column, got %+v", albums[0])
		}
		playlists := PlaylistRows([]models.Playlist{{ID: "pl.1", Attributes: models.PlaylistAttributes{Name: "Essentials", CuratorName: "Apple Music"}}})
		if playlists[0].Artist != "Apple Music" {
			t.Errorf("expected curator in artist column, got %+v", playlists[0])
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{
		0:       "-",
		180000:  "3:00",
		354947:  "5:54",
		3725000: "1:02:05",
	}
	for ms, want := range tests {
		if got := FormatDuration(ms); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", ms, got, want)
		}
	}
}

func TestArtworkURL(t *testing.T) {
	got := ArtworkURL("https://example.com/{w}x{h}bb.{f}", 300, 200)
	if got != "https://example.com/300x200bb.jpg" {
		t.Errorf("unexpected artwork URL %s", got)
	}
}

func TestExporters(t *testing.T) {
	rows := SongRows(testSongs())

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(rows)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Type,Name,Artist,Album,Duration,ISRC,URL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1441164738,songs,Bohemian Rhapsody,Queen,A Night at the Opera,5:54,GBUM71029604") {
			t.Errorf("CSV missing first row, got: %s", output)
		}
		if !strings.Contains(output, "Queen & David Bowie") {
			t.Errorf("CSV missing second row artist")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown("Search: queen", SearchRows(testSearch()), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			for _, want := range []string{
				"# Search: queen",
				"**Results**: 3",
				"## Songs",
				"1. Queen - [Bohemian Rhapsody](https://music.apple.com/us/song/1441164738) (A Night at the Opera) [5:54]",
				"2. Queen & David Bowie - Under Pressure [4:08]",
				"## Artists",
				"3. Queen",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got:\n%s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("Markdown should not include cover without image")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown("Songs", rows, "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover image")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText("Songs", rows)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Results: 2") {
			t.Errorf("Text missing result count")
		}
		if !strings.Contains(output, "1. Queen - Bohemian Rhapsody [1441164738]") {
			t.Errorf("Text missing first row, got:\n%s", output)
		}
	})

	t.Run("Render", func(t *testing.T) {
		search := testSearch()
		for _, format := range []string{"", FormatJSON, FormatCSV, FormatMarkdown, "md", FormatText, "text"} {
			data, err := Render(format, "Search", SearchRows(search), search)
			if err != nil {
				t.Fatalf("Render(%q) failed: %v", format, err)
			}
			if len(data) == 0 {
				t.Errorf("Render(%q) returned no output", format)
			}
		}

		data, err := Render(FormatJSON, "", nil, search)
		if err != nil {
			t.Fatalf("Render json failed: %v", err)
		}
		var decoded models.SearchResponse
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if len(decoded.Results.Songs.Data) != 2 {
			t.Errorf("expected 2 songs in JSON output, got %d", len(decoded.Results.Songs.Data))
		}

		if _, err := Render("xml", "", nil, nil); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(""); err == nil {
			t.Error("expected error for empty URL")
		}
	})

	t.Run("Status Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		if _, err := DownloadImage(server.URL); err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected status error, got %v", err)
		}
	})
}

func TestWriteMarkdownExport(t *testing.T) {
	t.Run("WithArtwork", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/600x600bb.jpg" {
				t.Errorf("unexpected artwork path %s", r.URL.Path)
			}
			w.Write([]byte("jpeg"))
		}))
		defer server.Close()

		rows := SongRows(testSongs())
		rows[0].Artwork = server.URL + "/{w}x{h}bb.jpg"
		dir := filepath.Join(t.TempDir(), "export")

		result, err := WriteMarkdownExport("Songs", rows, dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		th.AssertDirExists(t, dir)
		th.AssertFileExists(t, filepath.Join(dir, "README.md"))
		if result.CoverImage != filepath.Join(dir, "cover.jpg") {
			t.Errorf("expected cover image path, got %q", result.CoverImage)
		}
		if got := th.MustReadFile(t, result.CoverImage); got != "jpeg" {
			t.Errorf("unexpected cover contents %q", got)
		}
		if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
			t.Error("README missing cover reference")
		}
	})

	t.Run("ArtworkFailureIsSkipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		rows := SongRows(testSongs())
		rows[0].Artwork = server.URL + "/{w}x{h}bb.jpg"

		result, err := WriteMarkdownExport("Songs", rows, t.TempDir())
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if result.CoverImage != "" || len(result.Files) != 1 {
			t.Errorf("expected only README, got %+v", result)
		}
	})

	t.Run("RequiresDirectory", func(t *testing.T) {
		if _, err := WriteMarkdownExport("Songs", nil, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
