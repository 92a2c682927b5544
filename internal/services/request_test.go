package services

import (
	"net/http"
	"net/url"
	"testing"
)

func TestRequest(t *testing.T) {
	t.Run("NewRequest Copies Inputs", func(t *testing.T) {
		params := []QueryParam{{Name: "a", Value: "1"}}
		headers := map[string]string{"X-A": "1"}
		r := NewRequest("", "songs", params, headers)

		params[0].Value = "changed"
		headers["X-A"] = "changed"

		if r.Method != http.MethodGet {
			t.Errorf("expected default method GET, got %s", r.Method)
		}
		if r.Query[0].Value != "1" || r.Headers["X-A"] != "1" {
			t.Error("expected request to be independent of caller slices and maps")
		}
	})

	t.Run("AddQuery Does Not Alias", func(t *testing.T) {
		base := Get("songs", QueryParam{Name: "a", Value: "1"})
		x := base.AddQuery("b", "2")
		y := base.AddQuery("c", "3")

		if len(base.Query) != 1 {
			t.Errorf("expected base to be unchanged, got %v", base.Query)
		}
		if x.Query[1].Name != "b" || y.Query[1].Name != "c" {
			t.Errorf("expected independent derived requests, got %v and %v", x.Query, y.Query)
		}
	})

	t.Run("SetHeader Does Not Alias", func(t *testing.T) {
		base := Get("songs").SetHeader("X-A", "1")
		derived := base.SetHeader("X-A", "2")
		if base.Headers["X-A"] != "1" || derived.Headers["X-A"] != "2" {
			t.Errorf("expected independent headers, got %v and %v", base.Headers, derived.Headers)
		}
	})

	t.Run("RawQuery", func(t *testing.T) {
		tests := []struct {
			name   string
			params []QueryParam
			want   string
		}{
			{"empty", nil, ""},
			{"ordered", []QueryParam{{"b", "2"}, {"a", "1"}}, "b=2&a=1"},
			{"duplicates", []QueryParam{{"ids", "1"}, {"ids", "2"}}, "ids=1&ids=2"},
			{"escaped", []QueryParam{{"term", "a&b c"}}, "term=a%26b+c"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Get("x", tt.params...).RawQuery(); got != tt.want {
					t.Errorf("expected %q, got %q", tt.want, got)
				}
			})
		}
	})

	t.Run("Resolve", func(t *testing.T) {
		base, _ := url.Parse("https://api.music.apple.com/v1/")
		tests := []struct {
			path string
			want string
		}{
			{"catalog/us/songs/1", "https://api.music.apple.com/v1/catalog/us/songs/1"},
			{"/catalog/us/songs/1", "https://api.music.apple.com/v1/catalog/us/songs/1"},
			{"storefronts", "https://api.music.apple.com/v1/storefronts"},
		}
		for _, tt := range tests {
			u, err := Get(tt.path).resolve(base)
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tt.path, err)
			}
			if u.String() != tt.want {
				t.Errorf("%s: expected %s, got %s", tt.path, tt.want, u.String())
			}
		}
	})

	t.Run("Resolve Keeps Escaped Segments", func(t *testing.T) {
		base, _ := url.Parse("https://api.music.apple.com/v1")
		u, err := Get("catalog/us/songs/" + url.PathEscape("a/b")).resolve(base)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if got := u.EscapedPath(); got != "/v1/catalog/us/songs/a%2Fb" {
			t.Errorf("expected escaped slash to survive, got %s", got)
		}
		if u.Path != "/v1/catalog/us/songs/a/b" {
			t.Errorf("unexpected decoded path %s", u.Path)
		}
	})
}
