package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

func fetchOptions(r *Runner, cmd *cli.Command) services.FetchOptions {
	return services.FetchOptions{
		Include:      cmd.StringSlice("include"),
		Localization: r.language(cmd),
	}
}

func fetchAndRender[A any](
	ctx context.Context,
	r *Runner,
	cmd *cli.Command,
	res *services.CatalogResource[A],
	rows func([]models.Resource[A]) []formatter.Row,
) error {
	id := cmd.StringArg("id")
	sf := r.storefront(cmd)

	r.logger.Debug("fetching catalog resource", "type", res.Type(), "id", id, "storefront", sf)

	resp, err := res.Fetch(ctx, id, sf, fetchOptions(r, cmd))
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %s (%s)", res.Type(), id, sf)
	return r.writeRendered(cmd.String("format"), title, rows(resp.Data), resp)
}

// CatalogFetch returns the action for `catalog <kind> <id>`.
func (r *Runner) CatalogFetch(kind string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		catalog, err := r.requireCatalog()
		if err != nil {
			return err
		}

		switch kind {
		case "song":
			return fetchAndRender(ctx, r, cmd, catalog.Songs, formatter.SongRows)
		case "album":
			return fetchAndRender(ctx, r, cmd, catalog.Albums, formatter.AlbumRows)
		case "artist":
			return fetchAndRender(ctx, r, cmd, catalog.Artists, formatter.ArtistRows)
		case "playlist":
			return fetchAndRender(ctx, r, cmd, catalog.Playlists, formatter.PlaylistRows)
		case "music-video":
			return fetchAndRender(ctx, r, cmd, catalog.MusicVideos, formatter.MusicVideoRows)
		default:
			return fmt.Errorf("%w: unknown resource kind %q", shared.ErrInvalidArgument, kind)
		}
	}
}

// Storefronts lists every storefront, or fetches the one named by the id argument.
func (r *Runner) Storefronts(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	opts := services.FetchOptions{Localization: r.language(cmd)}
	id := strings.TrimSpace(cmd.StringArg("id"))

	var resp *models.ResourceResponse[models.StorefrontAttributes]
	if id == "" {
		resp, err = catalog.Storefronts.All(ctx, opts)
	} else {
		resp, err = catalog.Storefronts.Fetch(ctx, id, "", opts)
	}
	if err != nil {
		return err
	}

	return r.writeRendered(cmd.String("format"), "Storefronts", formatter.StorefrontRows(resp.Data), resp)
}

// Search runs a catalog search. With --output the results are written as a Markdown export instead.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	term := cmd.StringArg("term")
	sf := r.storefront(cmd)
	opts := services.SearchOptions{
		Types:        cmd.StringSlice("types"),
		Limit:        cmd.Int("limit"),
		Offset:       cmd.Int("offset"),
		Localization: r.language(cmd),
	}

	r.logger.Debug("searching catalog", "term", term, "storefront", sf, "types", opts.Types)

	resp, err := catalog.Search(ctx, term, sf, opts)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Search: %s (%s)", strings.TrimSpace(term), sf)
	rows := formatter.SearchRows(resp)

	if dir := cmd.String("output"); dir != "" {
		result, err := formatter.WriteMarkdownExport(title, rows, dir)
		if err != nil {
			return err
		}
		r.logger.Info("search exported", "dir", result.Directory, "files", len(result.Files))
		for _, f := range result.Files {
			r.writePlain("✓ %s\n", f)
		}
		return nil
	}

	return r.writeRendered(cmd.String("format"), title, rows, resp)
}
