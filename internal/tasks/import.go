package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/movieweb/internal/catalog"
	"github.com/desertthunder/movieweb/internal/models"
	"github.com/desertthunder/movieweb/internal/services"
	"github.com/desertthunder/movieweb/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultImportWorkers = 4
	MaxImportWorkers     = 10
	DefaultImportRate    = 5.0
)

// ImportOutcome is the per-title result of an import.
type ImportOutcome string

const (
	OutcomeCreated       ImportOutcome = "created"        // new movie row and association
	OutcomeLinked        ImportOutcome = "linked"         // existing movie, new association
	OutcomeAlreadyLinked ImportOutcome = "already_linked" // association already present
	OutcomeNotFound      ImportOutcome = "not_found"      // metadata service has no match
	OutcomeFailed        ImportOutcome = "failed"
)

// ImportOpts contains configuration for bulk imports.
type ImportOpts struct {
	NumWorkers int                // Concurrent workers (default: 4, max: 10)
	RateLimit  float64            // Lookups per second (default: 5)
	Status     models.WatchStatus // Status applied to every new association; empty stores NULL
}

// TitleResult records what happened to one input title.
type TitleResult struct {
	Title   string        `json:"title"`
	Outcome ImportOutcome `json:"outcome"`
	MovieID int64         `json:"movie_id,omitempty"`
	Error   error         `json:"-"`
}

// ImportResult summarizes an import, with Results in input order.
type ImportResult struct {
	UserID  int64                 `json:"user_id"`
	Total   int                   `json:"total"`
	Results []TitleResult         `json:"results"`
	Counts  map[ImportOutcome]int `json:"counts"`
}

type importJob struct {
	index int
	title string
}

// Importer adds titles to a catalog by resolving them through a metadata service.
type Importer struct {
	catalog  *catalog.Manager
	metadata services.MetadataService
	logger   *log.Logger
}

// NewImporter creates an [Importer]. A nil logger discards output.
func NewImporter(c *catalog.Manager, metadata services.MetadataService, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Importer{catalog: c, metadata: metadata, logger: logger}
}

// Import looks up every title and links it to the user's catalog.
//
// Individual failures are recorded in the result. The returned error is reserved for problems that stop the whole
// import: a missing service, an unknown user, an invalid status or a canceled context.
func (im *Importer) Import(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	userID int64,
	titles []string,
	opts ImportOpts,
) (*ImportResult, error) {
	if im.metadata == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, fmt.Errorf("%w: got %q", models.ErrInvalidStatus, opts.Status)
	}
	if _, err := im.catalog.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultImportWorkers
	}
	if opts.NumWorkers > MaxImportWorkers {
		opts.NumWorkers = MaxImportWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultImportRate
	}

	result := &ImportResult{
		UserID:  userID,
		Total:   len(titles),
		Results: make([]TitleResult, len(titles)),
		Counts:  make(map[ImportOutcome]int),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan importJob, len(titles))
	results := make(chan importJob, len(titles))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go im.importWorker(ctx, &wg, limiter, prog, jobs, results, result, opts)
	}

	for i, title := range titles {
		jobs <- importJob{index: i, title: title}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for job := range results {
		completed++
		res := result.Results[job.index]
		result.Counts[res.Outcome]++

		switch res.Outcome {
		case OutcomeFailed, OutcomeNotFound:
			sendProgress(prog, failedUpdate(completed, len(titles), res))
		default:
			sendProgress(prog, linkedUpdate(completed, len(titles), res))
		}
	}

	im.logger.Info("import finished", "user", userID, "total", result.Total,
		"created", result.Counts[OutcomeCreated], "linked", result.Counts[OutcomeLinked],
		"already_linked", result.Counts[OutcomeAlreadyLinked], "not_found", result.Counts[OutcomeNotFound],
		"failed", result.Counts[OutcomeFailed],
	)
	sendProgress(prog, doneUpdate(result))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import interrupted: %w", err)
	}
	return result, nil
}

// importWorker processes titles from the jobs channel, writing each result into its slot.
func (im *Importer) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	prog chan<- ProgressUpdate,
	jobs <-chan importJob,
	results chan<- importJob,
	result *ImportResult,
	opts ImportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		sendProgress(prog, lookupUpdate(job.index+1, result.Total, job.title))
		result.Results[job.index] = im.importTitle(ctx, limiter, result.UserID, job.title, opts)
		results <- job
	}
}

func (im *Importer) importTitle(ctx context.Context, limiter *rate.Limiter, userID int64, title string, opts ImportOpts) TitleResult {
	res := TitleResult{Title: strings.TrimSpace(title), Outcome: OutcomeFailed}

	if res.Title == "" {
		res.Error = fmt.Errorf("%w: empty title", shared.ErrMissingArgument)
		return res
	}

	if err := limiter.Wait(ctx); err != nil {
		res.Error = err
		return res
	}

	desc, err := im.metadata.Lookup(ctx, res.Title)
	if err != nil {
		if errors.Is(err, shared.ErrMovieNotFound) {
			res.Outcome = OutcomeNotFound
		}
		res.Error = err
		return res
	}

	added, err := im.catalog.AddMovieToUser(ctx, *desc, userID, opts.Status, nil)
	if err != nil {
		im.logger.Warn("failed to link movie", "title", res.Title, "error", err)
		res.Error = err
		return res
	}

	res.MovieID = added.MovieID
	switch {
	case added.Outcome == catalog.AlreadyLinked:
		res.Outcome = OutcomeAlreadyLinked
	case added.MovieCreated:
		res.Outcome = OutcomeCreated
	default:
		res.Outcome = OutcomeLinked
	}
	return res
}
