// package tasks implements batch catalog operations on top of the request pipeline.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 5
	MaxWorkers       = 10
	DefaultRateLimit = 5.0
)

// Recorder persists the outcome of each lookup. Implemented by repositories.LookupRecorder.
type Recorder interface {
	RecordLookup(resourceType, resourceID, storefront string, err error) error
}

// BatchOpts contains configuration for batch lookups.
type BatchOpts struct {
	Storefront   string                // Storefront to look resources up in
	ResourceType string                // Resource type name, recorded with each outcome
	Fetch        services.FetchOptions // Include/localization passed to every lookup
	NumWorkers   int                   // Concurrent workers (default: 5, max: 10)
	RateLimit    float64               // Requests per second (default: 5)
	Recorder     Recorder              // Optional outcome log
	Logger       *log.Logger           // Optional; recorder failures are logged here
}

// LookupResult is the outcome of one id.
type LookupResult[A any] struct {
	Index    int                 // Position of ID in the input
	ID       string              // Requested identifier
	Resource *models.Resource[A] // First resource in the response, nil on failure
	Next     string              // Pagination cursor, passed through untouched
	Error    error               // Classified failure
}

// Success reports whether the lookup returned a resource.
func (r LookupResult[A]) Success() bool { return r.Error == nil && r.Resource != nil }

// BatchResult holds every lookup in input order.
type BatchResult[A any] struct {
	Results   []LookupResult[A]
	Succeeded int
	Failed    int
}

type lookupJob struct {
	index int
	id    string
}

// BatchLookup fetches ids concurrently with a shared rate limit.
//
// Results[i] always corresponds to ids[i] regardless of completion order. Individual failures do not stop the
// batch; a cancelled context does, and the unstarted ids are reported with the context error.
func BatchLookup[A any](
	ctx context.Context,
	prog chan<- ProgressUpdate,
	fetcher services.Fetcher[A],
	ids []string,
	opts BatchOpts,
) (*BatchResult[A], error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher not initialized", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids to look up", shared.ErrMissingArgument)
	}

	opts = opts.withDefaults()
	total := len(ids)

	result := &BatchResult[A]{Results: make([]LookupResult[A], total)}
	started := make([]bool, total)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan lookupJob)
	results := make(chan LookupResult[A], total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go lookupWorker(ctx, &wg, fetcher, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		sendProgress(prog, lookupStartedUpdate(total, opts.ResourceType))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case jobs <- lookupJob{index: i, id: id}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results[res.Index] = res
		started[res.Index] = true

		if res.Success() {
			result.Succeeded++
			sendProgress(prog, lookupCompletedUpdate(completed, total, res.ID))
		} else {
			result.Failed++
			sendProgress(prog, lookupFailedUpdate(completed, total, res.ID, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		for i, id := range ids {
			if !started[i] {
				result.Results[i] = LookupResult[A]{Index: i, ID: id, Error: err}
				result.Failed++
			}
		}
		return result, fmt.Errorf("batch lookup interrupted after %d of %d: %w", completed, total, err)
	}

	return result, nil
}

func lookupWorker[A any](
	ctx context.Context,
	wg *sync.WaitGroup,
	fetcher services.Fetcher[A],
	jobs <-chan lookupJob,
	results chan<- LookupResult[A],
	opts BatchOpts,
) {
	defer wg.Done()

	for job := range jobs {
		res := LookupResult[A]{Index: job.index, ID: job.id}

		resp, err := fetcher.Fetch(ctx, job.id, opts.Storefront, opts.Fetch)
		switch {
		case err != nil:
			res.Error = err
		case resp.First() == nil:
			res.Error = shared.NewValidationError("no %s found for id %q", opts.ResourceType, job.id)
		default:
			res.Resource = resp.First()
			res.Next = resp.Next
		}

		if opts.Recorder != nil {
			if err := opts.Recorder.RecordLookup(opts.ResourceType, job.id, opts.Storefront, res.Error); err != nil {
				opts.Logger.Warn("failed to record lookup", "id", job.id, "error", err)
			}
		}

		results <- res
	}
}

func (o BatchOpts) withDefaults() BatchOpts {
	if o.NumWorkers <= 0 {
		o.NumWorkers = DefaultWorkers
	}
	if o.NumWorkers > MaxWorkers {
		o.NumWorkers = MaxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.ResourceType == "" {
		o.ResourceType = "resource"
	}
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	return o
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
