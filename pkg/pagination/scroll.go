package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/searchbase-dev/searchbase-go/pkg/client"
	"github.com/searchbase-dev/searchbase-go/pkg/query"
)

// Prometheus metrics for scroll traversals.
var (
	scrollPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searchbase_scroll_pages_total",
		Help: "Total pages fetched across all traversals",
	})

	scrollRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searchbase_scroll_records_total",
		Help: "Total records emitted across all traversals",
	})

	scrollTraversalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searchbase_scroll_traversals_total",
		Help: "Finished traversals by outcome",
	}, []string{"outcome"})
)

// DefaultPageSize is the number of records requested per page unless
// configured otherwise.
const DefaultPageSize = 100

// ErrPaginatedQuery is returned when the initial query already carries a
// limit or offset; the scroll owns both.
var ErrPaginatedQuery = errors.New("query must not set limit or offset")

// PageFetcher is the interface the scroll drives for single-page fetching.
// *client.Client implements it.
type PageFetcher interface {
	Search(ctx context.Context, q *query.Query) (*client.SearchResponse, error)
}

// Config holds scroll configuration.
type Config struct {
	// PageSize is the number of records requested per page.
	PageSize int
}

// DefaultConfig returns the default scroll configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
	}
}

// Scroll is a forward-only cursor over the full result set of one query. It
// fetches one page per advance, trusts the server-reported range end for the
// next offset, and re-reads the server-reported total on every page, so a
// result set that shrinks or grows mid-traversal is honored on the next
// advance (best-effort consistency, not a snapshot).
//
// A Scroll is single-use and not safe for concurrent use: one traversal owns
// its state exclusively. Independent traversals share nothing.
type Scroll struct {
	fetcher  PageFetcher
	q        query.Query
	pageSize int

	offset  int
	fetched int
	total   int
	pages   int

	batch []json.RawMessage
	err   error
	done  bool

	id        string
	logger    zerolog.Logger
	startTime time.Time
}

// NewScroll creates a scroll over the result set of q. The query's Limit and
// Offset must be unset (the scroll controls paging); index, filters, sort,
// and select are carried through to every page unchanged.
func NewScroll(fetcher PageFetcher, q *query.Query, cfg Config) (*Scroll, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}

	if q == nil {
		return nil, fmt.Errorf("query is required")
	}

	if q.Limit != 0 || q.Offset != 0 {
		return nil, ErrPaginatedQuery
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	id := uuid.NewString()

	return &Scroll{
		fetcher:   fetcher,
		q:         *q,
		pageSize:  cfg.PageSize,
		id:        id,
		logger:    log.With().Str("component", "scroll").Str("scroll_id", id).Logger(),
		startTime: time.Now(),
	}, nil
}

// Next advances the scroll by at most one page fetch. It returns true when a
// batch is available via Batch, false when the traversal is exhausted or has
// failed; check Err once Next returns false.
func (s *Scroll) Next(ctx context.Context) bool {
	if s.done {
		return false
	}

	pq := s.q
	pq.Limit = s.pageSize
	pq.Offset = s.offset

	resp, err := s.fetcher.Search(ctx, &pq)
	if err != nil {
		s.fail(err)
		return false
	}

	scrollPagesTotal.Inc()
	s.pages++

	// Bookkeeping trusts the server: the next offset is the reported range
	// end (never offset+pageSize), and the total is re-read on every page.
	s.fetched += len(resp.Records)
	s.offset = resp.Range.End
	s.total = resp.Total

	s.logger.Debug().
		Int("offset", pq.Offset).
		Int("records", len(resp.Records)).
		Int("fetched", s.fetched).
		Int("total", s.total).
		Msg("Page fetched")

	// An empty page emits nothing and ends the traversal. This covers an
	// empty result set and a server whose range stops advancing.
	if len(resp.Records) == 0 {
		s.finish()
		return false
	}

	scrollRecordsTotal.Add(float64(len(resp.Records)))
	s.batch = resp.Records

	if s.fetched >= s.total {
		s.finish()
	}

	return true
}

// Batch returns the records from the last successful Next call. The slice is
// valid until Next is called again.
func (s *Scroll) Batch() []json.RawMessage {
	return s.batch
}

// Err returns the error that aborted the traversal, or nil after a clean end.
func (s *Scroll) Err() error {
	return s.err
}

// Total returns the server-reported total from the most recent page. It is
// zero before the first page returns and may change between pages.
func (s *Scroll) Total() int {
	return s.total
}

// Fetched returns the number of records emitted so far.
func (s *Scroll) Fetched() int {
	return s.fetched
}

// ID returns the traversal identifier carried in this scroll's log events.
func (s *Scroll) ID() string {
	return s.id
}

// Pages returns the remaining batches as a single-use iterator over the same
// cursor. A failed page fetch is yielded as the final element's error.
func (s *Scroll) Pages(ctx context.Context) iter.Seq2[[]json.RawMessage, error] {
	return func(yield func([]json.RawMessage, error) bool) {
		for s.Next(ctx) {
			if !yield(s.batch, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

// SearchAll traverses the entire result set of q with the default page size,
// yielding one batch per page. The sequence ends cleanly when the result set
// is exhausted; any page failure is yielded as the final element's error and
// batches yielded before it remain valid.
func SearchAll(ctx context.Context, fetcher PageFetcher, q *query.Query) iter.Seq2[[]json.RawMessage, error] {
	return func(yield func([]json.RawMessage, error) bool) {
		scroll, err := NewScroll(fetcher, q, DefaultConfig())
		if err != nil {
			yield(nil, err)
			return
		}
		scroll.Pages(ctx)(yield)
	}
}

// finish marks a clean end of the traversal.
func (s *Scroll) finish() {
	s.done = true
	scrollTraversalsTotal.WithLabelValues("completed").Inc()

	s.logger.Info().
		Int("pages", s.pages).
		Int("records", s.fetched).
		Int("total", s.total).
		Dur("duration", time.Since(s.startTime)).
		Msg("Traversal complete")
}

// fail records the aborting error; already-emitted batches stay valid.
func (s *Scroll) fail(err error) {
	s.err = err
	s.done = true
	scrollTraversalsTotal.WithLabelValues("failed").Inc()

	s.logger.Warn().
		Err(err).
		Int("pages", s.pages).
		Int("records", s.fetched).
		Msg("Traversal aborted")
}
