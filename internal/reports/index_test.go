package reports

import (
	"context"
	"testing"
	"time"
)

func TestSummaryIndexCachesAndInvalidates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	index := NewSummaryIndex(repo, time.Minute)

	repo.LocateOrCreate(ctx, syncableDraft("proj-1", "2026-08-28"))

	first, err := index.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("summaries = %d, want 1", len(first))
	}

	// A write the index has not been told about stays invisible
	// until invalidation.
	repo.LocateOrCreate(ctx, syncableDraft("proj-2", "2026-08-28"))

	cached, _ := index.Summaries(ctx)
	if len(cached) != 1 {
		t.Errorf("cache not honored, got %d summaries", len(cached))
	}

	index.Invalidate()
	fresh, err := index.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries after invalidate: %v", err)
	}
	if len(fresh) != 2 {
		t.Errorf("invalidate did not refresh, got %d summaries", len(fresh))
	}
}

func TestSummaryIndexServesStaleOnRefreshFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	index := NewSummaryIndex(repo, time.Minute)

	repo.LocateOrCreate(ctx, syncableDraft("proj-1", "2026-08-28"))
	if _, err := index.Summaries(ctx); err != nil {
		t.Fatalf("warm load: %v", err)
	}

	// Sever the connection and force a reload.
	sqlDB, err := repo.db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.Close()
	index.Invalidate()

	stale, err := index.Summaries(ctx)
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if len(stale) != 1 || stale[0].ProjectID != "proj-1" {
		t.Errorf("stale fallback wrong: %+v", stale)
	}
}

func TestSummaryIndexColdFailure(t *testing.T) {
	repo := newTestRepo(t)
	index := NewSummaryIndex(repo, time.Minute)

	sqlDB, _ := repo.db.DB()
	sqlDB.Close()

	if _, err := index.Summaries(context.Background()); err == nil {
		t.Fatal("expected error with no stale fallback available")
	}
}
