package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/repositories"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// batchSummary is the JSON shape of a batch run.
type batchSummary struct {
	Type       string        `json:"type"`
	Storefront string        `json:"storefront"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Results    []batchResult `json:"results"`
}

type batchResult struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

type historyView struct {
	ID           string    `json:"id"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Storefront   string    `json:"storefront"`
	Success      bool      `json:"success"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func runBatch[A any](
	ctx context.Context,
	r *Runner,
	cmd *cli.Command,
	res *services.CatalogResource[A],
	rows func([]models.Resource[A]) []formatter.Row,
	ids []string,
	opts tasks.BatchOpts,
) error {
	opts.ResourceType = res.Type()

	prog := make(chan tasks.ProgressUpdate, len(ids)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			switch u.Phase {
			case tasks.LookupFailed:
				r.logger.Warn(u.Message, "step", u.Step, "total", u.Total)
			default:
				r.logger.Info(u.Message, "step", u.Step, "total", u.Total)
			}
		}
	}()

	result, err := tasks.BatchLookup(ctx, prog, services.Fetcher[A](res), ids, opts)
	close(prog)
	<-done
	if result == nil {
		return err
	}

	r.logger.Info("batch lookup finished", "succeeded", result.Succeeded, "failed", result.Failed)

	var found []models.Resource[A]
	summary := batchSummary{
		Type:       res.Type(),
		Storefront: opts.Storefront,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Results:    make([]batchResult, len(result.Results)),
	}
	for i, lr := range result.Results {
		summary.Results[i] = batchResult{ID: lr.ID}
		if lr.Success() {
			found = append(found, *lr.Resource)
			continue
		}
		if lr.Error != nil {
			summary.Results[i].Error = lr.Error.Error()
			summary.Results[i].ErrorKind = shared.KindOf(lr.Error).String()
		}
	}

	itemRows := rows(found)
	names := make(map[string]string, len(itemRows))
	for _, row := range itemRows {
		names[row.ID] = row.Name
	}
	for i := range summary.Results {
		summary.Results[i].Name = names[summary.Results[i].ID]
	}

	title := fmt.Sprintf("Batch %s (%s): %d found, %d failed", res.Type(), opts.Storefront, result.Succeeded, result.Failed)
	if writeErr := r.writeRendered(cmd.String("format"), title, itemRows, summary); writeErr != nil {
		return writeErr
	}
	return err
}

// BatchLookup looks up every ID argument through the worker pool.
func (r *Runner) BatchLookup(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one id", shared.ErrMissingArgument)
	}

	opts := tasks.BatchOpts{
		Storefront: r.storefront(cmd),
		Fetch:      services.FetchOptions{Localization: r.language(cmd)},
		NumWorkers: r.config.Tasks.Workers,
		RateLimit:  r.config.Tasks.RateLimit,
		Logger:     r.logger,
	}
	if w := cmd.Int("workers"); w > 0 {
		opts.NumWorkers = w
	}
	if rate := cmd.Float("rate"); rate > 0 {
		opts.RateLimit = rate
	}

	if err := services.ValidateStorefront(opts.Storefront); err != nil {
		return err
	}

	if cmd.Bool("record") {
		db, err := r.openDB()
		if err != nil {
			return err
		}
		opts.Recorder = repositories.NewLookupRecorder(repositories.NewLookupLogRepository(db))
	}

	switch cmd.String("type") {
	case models.TypeSongs, "song":
		return runBatch(ctx, r, cmd, catalog.Songs, formatter.SongRows, ids, opts)
	case models.TypeAlbums, "album":
		return runBatch(ctx, r, cmd, catalog.Albums, formatter.AlbumRows, ids, opts)
	case models.TypeArtists, "artist":
		return runBatch(ctx, r, cmd, catalog.Artists, formatter.ArtistRows, ids, opts)
	case models.TypePlaylists, "playlist":
		return runBatch(ctx, r, cmd, catalog.Playlists, formatter.PlaylistRows, ids, opts)
	case models.TypeMusicVideos, "music-video":
		return runBatch(ctx, r, cmd, catalog.MusicVideos, formatter.MusicVideoRows, ids, opts)
	default:
		return fmt.Errorf("%w: unknown type %q", shared.ErrInvalidFlag, cmd.String("type"))
	}
}

// BatchHistory prints recorded lookup outcomes, newest first.
func (r *Runner) BatchHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	repo := repositories.NewLookupLogRepository(db)

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if cmd.Bool("failed") {
		criteria["success"] = false
	}

	records, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]historyView, len(records))
		for i, rec := range records {
			views[i] = historyView{
				ID:           rec.ID(),
				ResourceType: rec.ResourceType,
				ResourceID:   rec.ResourceID,
				Storefront:   rec.Storefront,
				Success:      rec.Success,
				ErrorKind:    rec.ErrorKind,
				ErrorMessage: rec.ErrorMessage,
				CreatedAt:    rec.CreatedAt(),
			}
		}
		return r.writeJSON(views, true)
	}

	succeeded, failed, err := repo.Counts()
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Lookup history: %d succeeded, %d failed", succeeded, failed))
	if len(records) == 0 {
		return r.writePlain("No lookups recorded\n")
	}
	for _, rec := range records {
		status := "✓"
		detail := ""
		if !rec.Success {
			status = "✗"
			detail = fmt.Sprintf("  [%s] %s", rec.ErrorKind, rec.ErrorMessage)
		}
		r.writePlain("%s %s  %s/%s  %s%s\n", status, rec.CreatedAt().Format("2006-01-02 15:04:05"),
			rec.ResourceType, rec.ResourceID, rec.Storefront, detail)
	}
	return nil
}
