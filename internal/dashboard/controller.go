// Package dashboard owns the application state behind the operator view:
// the master record collection, the active query, and the report workflow.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scamwatch/scamwatch/internal/db"
	"github.com/scamwatch/scamwatch/internal/ingest"
	"github.com/scamwatch/scamwatch/internal/logic"
	"github.com/scamwatch/scamwatch/internal/logic/filters"
	"github.com/scamwatch/scamwatch/internal/logic/ratelimit"
	"github.com/scamwatch/scamwatch/internal/models"
	"github.com/scamwatch/scamwatch/internal/reporting"
	"github.com/scamwatch/scamwatch/internal/upstream"
	"go.uber.org/zap"

	"github.com/scamwatch/scamwatch/internal/observability"
)

// ErrRateLimited indicates a report submission was rejected by the
// per-record rate limiter.
var ErrRateLimited = errors.New("report submission rate limited")

// Controller is the single owner of the master collection and the active
// query. All access is serialized; pipeline stages below it never mutate
// the collection.
type Controller struct {
	mu         sync.Mutex
	store      *models.InMemoryRecordStore
	query      logic.Query
	generation uint64
	loadedAt   time.Time

	source   *upstream.Client
	reporter *reporting.Client
	limiter  *ratelimit.SubmissionLimiter
	redis    *db.RedisStore

	logger  *zap.Logger
	metrics observability.MetricsRegistry
}

// NewController creates a controller with an empty collection and the
// default query. limiter and redis may be nil.
func NewController(source *upstream.Client, reporter *reporting.Client, limiter *ratelimit.SubmissionLimiter, redis *db.RedisStore, logger *zap.Logger, metrics observability.MetricsRegistry) *Controller {
	return &Controller{
		store:    models.NewInMemoryRecordStore(),
		query:    logic.DefaultQuery(),
		source:   source,
		reporter: reporter,
		limiter:  limiter,
		redis:    redis,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load populates the collection, serving from the payload cache when fresh.
// Used at startup and by the background refresh ticker.
func (c *Controller) Load(ctx context.Context) error {
	return c.load(ctx, false)
}

// Refresh forces a reload from the backend, bypassing all cache tiers.
// On success the collection is replaced wholesale and the page resets to 1.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.load(ctx, true)
}

func (c *Controller) load(ctx context.Context, force bool) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	if force {
		c.source.Invalidate()
	}

	raw, err := c.source.Fetch(ctx)
	if err != nil {
		// collection left unchanged on any load failure
		return err
	}
	records := ingest.Normalize(raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// a newer load superseded this one; discard the stale payload
		c.logger.Debug("discarding stale load result")
		return nil
	}
	c.store.ReplaceAll(records)
	c.query.Page = 1
	c.loadedAt = time.Now()
	c.metrics.SetRecordsLoaded(c.store.Len())
	c.logger.Info("record collection replaced", zap.Int("count", c.store.Len()))
	return nil
}

// SetCriteria replaces the active filter criteria and resets to page 1.
func (c *Controller) SetCriteria(criteria filters.Criteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Criteria = criteria
	c.query.Page = 1
}

// SetSort replaces the active sort field and direction.
func (c *Controller) SetSort(field string, ascending bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.SortField = field
	c.query.SortAscending = ascending
}

// SetPage sets the requested page number. Out-of-range values are recovered
// to page 1 when the pipeline runs.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Page = page
}

// SetPageSize changes the rows-per-page setting and resets to page 1.
// Unsupported sizes fall back to the default.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !logic.ValidPageSize(size) {
		size = logic.DefaultPageSize
	}
	c.query.PageSize = size
	c.query.Page = 1
}

// Query returns a copy of the active query.
func (c *Controller) Query() logic.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// View runs the full filter, sort and paginate pipeline over the master
// collection and returns the visible page. The stored page number is synced
// to the clamped value the pipeline settled on.
func (c *Controller) View() logic.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := logic.Run(c.store.All(), c.query)
	c.query.Page = view.Page
	c.metrics.IncrementPipelineRuns()
	return view
}

// Filtered returns the filtered and sorted collection without pagination,
// for export and charting.
func (c *Controller) Filtered() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.query
	return logic.SortedSubset(c.store.All(), q)
}

// Select resolves a record by its global identifier in the master collection.
func (c *Controller) Select(id string) (models.Record, error) {
	if r := c.store.GetByID(id); r != nil {
		return *r, nil
	}
	return models.Record{}, models.ErrNotFound
}

// Stats summarizes the master collection for the overview panel.
func (c *Controller) Stats() (logic.Summary, logic.Analytics) {
	c.mu.Lock()
	all := c.store.All()
	c.mu.Unlock()
	return logic.Summarize(all), logic.Analyze(all)
}

// LoadedAt returns the time of the last successful collection replacement.
func (c *Controller) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}

// SubmitReport reports the record with the given identifier to the intake
// endpoint and marks it reported on acknowledgement.
//
// An already-reported record is a no-op with no external call. A successful
// acknowledgement for an identifier absent from the collection still counts
// as success; the local mutation is skipped. On any submission failure the
// record is left untouched so retry is safe.
func (c *Controller) SubmitReport(ctx context.Context, id string) error {
	if id == "" {
		return reporting.ErrInvalidIdentifier
	}

	if record := c.store.GetByID(id); record != nil && record.IsReported() {
		c.logger.Info("record already reported, skipping submission", zap.String("record_id", id))
		return nil
	}

	if c.limiter != nil && !c.limiter.Allow(id) {
		return ErrRateLimited
	}

	if err := c.reporter.Submit(ctx, id); err != nil {
		return err
	}

	if markErr := c.store.MarkReported(id); errors.Is(markErr, models.ErrNotFound) {
		c.logger.Warn("acknowledged report for a record missing from the collection", zap.String("record_id", id))
	}

	if c.redis != nil {
		if _, err := c.redis.IncrementReportCount(); err != nil {
			c.logger.Warn("failed to increment report counter", zap.Error(err))
		}
	}
	return nil
}
