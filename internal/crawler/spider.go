package crawler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikirip/internal/extract"
	"github.com/nao1215/wikirip/internal/frontier"
	"github.com/nao1215/wikirip/internal/model"
)

// DefaultConcurrency is the number of fetches allowed in flight at once.
const DefaultConcurrency = 16

// Fetcher downloads and persists one suffix.
// *fetch.Fetcher is the production implementation.
type Fetcher interface {
	// FetchPage returns the text of a page after writing it to the mirror.
	FetchPage(ctx context.Context, suffix string) (string, error)

	// FetchResource returns the bytes of a resource after writing them to the mirror.
	FetchResource(ctx context.Context, suffix string) ([]byte, error)
}

// Spider mirrors one site in two phases: pages round by round until no new
// page is discovered, then every image found along the way.
type Spider struct {
	// fetcher downloads and stores content.
	fetcher Fetcher

	// concurrency caps the goroutines fetching at the same time.
	concurrency int

	// logger receives per-item and per-round progress.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithConcurrency sets the maximum number of simultaneous fetches.
// Values below 1 are ignored.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger used for progress and failures.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that downloads through fetcher.
func NewSpider(fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// taskResult is what one page or resource task hands back to the round.
type taskResult struct {
	suffix string
	bytes  int
	err    error
}

// Rip crawls the site starting from report.StartPage and fills report.
//
// Per-item failures are recorded in report.Failures and never stop the run.
// The only error returned is the context's, when the run is cancelled; the
// report then holds whatever was mirrored so far.
func (s *Spider) Rip(ctx context.Context, report *model.RipReport) error {
	f := frontier.New()
	f.Seed(report.StartPage)

	start := time.Now()
	defer func() {
		report.Visited = f.Visited()
		report.Resources = f.Resources()
		report.Duration = time.Since(start)
	}()

	if err := s.ripPages(ctx, f, report); err != nil {
		report.Cancelled = true
		return err
	}

	if err := s.ripResources(ctx, f, report); err != nil {
		report.Cancelled = true
		return err
	}

	return nil
}

// ripPages runs page rounds until a snapshot of pending comes back empty.
//
// Every suffix of a round is marked visited before any task of the round
// starts, so a link filtered against visited can never put a page of the
// current or an earlier round back into pending.
func (s *Spider) ripPages(ctx context.Context, f *frontier.Frontier, report *model.RipReport) error {
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := f.SnapshotPending()
		if len(batch) == 0 {
			s.logger.Info("page phase complete",
				"rounds", report.Rounds,
				"visited", f.Stats().Visited,
			)
			return nil
		}
		report.Rounds = round

		for _, suffix := range batch {
			f.MarkVisited(suffix)
		}

		s.logger.Info("starting round",
			"round", round,
			"pages", len(batch),
		)

		results := s.fanOut(ctx, batch, func(ctx context.Context, suffix string) taskResult {
			return s.ripPage(ctx, f, suffix)
		})
		s.collect(ctx, report, model.KindPage, round, results)

		stats := f.Stats()
		s.logger.Info("round complete",
			"round", round,
			"discovered", stats.Pending,
			"resources", stats.Resources,
		)
	}
}

// ripPage fetches one page and merges what it links to into the frontier.
func (s *Spider) ripPage(ctx context.Context, f *frontier.Frontier, suffix string) taskResult {
	s.logger.Debug("ripping page", "suffix", suffix)

	text, err := s.fetcher.FetchPage(ctx, suffix)
	if err != nil {
		return taskResult{suffix: suffix, err: err}
	}

	found := extract.Extract(text)
	f.EnqueueLinks(f.FilterUnvisited(found.Links))
	f.EnqueueResources(found.Resources)

	return taskResult{suffix: suffix, bytes: len(text)}
}

// ripResources fetches every queued resource once.
func (s *Spider) ripResources(ctx context.Context, f *frontier.Frontier, report *model.RipReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resources := f.Resources()
	s.logger.Info("starting resource phase", "resources", len(resources))

	results := s.fanOut(ctx, resources, func(ctx context.Context, suffix string) taskResult {
		s.logger.Debug("ripping resource", "suffix", suffix)
		data, err := s.fetcher.FetchResource(ctx, suffix)
		return taskResult{suffix: suffix, bytes: len(data), err: err}
	})
	s.collect(ctx, report, model.KindResource, 0, results)

	return ctx.Err()
}

// fanOut runs task for every suffix with at most s.concurrency in flight and
// waits for all of them. Tasks never return errors to the group, so one
// failure cannot cancel its siblings.
func (s *Spider) fanOut(ctx context.Context, suffixes []string, task func(context.Context, string) taskResult) []taskResult {
	results := make([]taskResult, len(suffixes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, suffix := range suffixes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = taskResult{suffix: suffix, err: err}
				return nil
			}
			results[i] = task(gctx, suffix)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // tasks always return nil

	return results
}

// collect folds task results into the report and logs failures.
// Failures caused by cancellation of ctx are not counted; the report is
// marked cancelled instead.
func (s *Spider) collect(ctx context.Context, report *model.RipReport, kind model.ItemKind, round int, results []taskResult) {
	for _, r := range results {
		if r.err != nil {
			if ctx.Err() != nil && errors.Is(r.err, ctx.Err()) {
				continue
			}
			s.logger.Warn("skipping "+string(kind),
				"suffix", r.suffix,
				"round", round,
				"error", r.err,
			)
			report.Failures = append(report.Failures, model.Failure{
				Suffix:  r.suffix,
				Kind:    kind,
				Round:   round,
				Message: r.err.Error(),
			})
			continue
		}

		report.BytesSaved += int64(r.bytes)
		switch kind {
		case model.KindPage:
			report.PagesSaved++
		case model.KindResource:
			report.ResourcesSaved++
		}
	}
}
