package reports

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fieldvoice/fieldvoicego/internal/logging"
	"github.com/fieldvoice/fieldvoicego/internal/models"
)

const summariesKey = "report_summaries"

// SummaryIndex is the locally cached index of report summaries the
// eligibility rules read. It is refreshed on a TTL and invalidated
// whenever a sync changes remote state, so decisions never hit the
// network on the hot path.
type SummaryIndex struct {
	repo  *Repository
	cache *gocache.Cache
	ttl   time.Duration

	mu   sync.Mutex
	last []models.ReportSummary // stale fallback when a refresh fails
}

// NewSummaryIndex creates an index over the repository with the given
// refresh TTL.
func NewSummaryIndex(repo *Repository, ttl time.Duration) *SummaryIndex {
	return &SummaryIndex{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Summaries returns the cached summaries, loading from the remote
// store on a cold or expired cache. If the refresh fails but an older
// load succeeded, the last known summaries are served instead.
func (ix *SummaryIndex) Summaries(ctx context.Context) ([]models.ReportSummary, error) {
	if val, found := ix.cache.Get(summariesKey); found {
		return val.([]models.ReportSummary), nil
	}

	summaries, err := ix.repo.Summaries(ctx)
	if err != nil {
		ix.mu.Lock()
		last := ix.last
		ix.mu.Unlock()
		if last != nil {
			logging.L().Warnw("Summary refresh failed, serving stale index", "error", err)
			return last, nil
		}
		return nil, err
	}

	ix.cache.Set(summariesKey, summaries, ix.ttl)
	ix.mu.Lock()
	ix.last = summaries
	ix.mu.Unlock()
	return summaries, nil
}

// Invalidate drops the cached index so the next read reloads.
func (ix *SummaryIndex) Invalidate() {
	ix.cache.Delete(summariesKey)
}
