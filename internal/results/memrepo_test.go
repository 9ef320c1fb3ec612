package results

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRepositorySaveAndList(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	for i, res := range []*MatchResult{
		{SessionID: "s1", WinnerSlot: 0, Reason: "life", Turns: 12, EndedAt: now.Add(-2 * time.Minute)},
		{SessionID: "s2", WinnerSlot: 1, Reason: "disconnect", Turns: 4, EndedAt: now.Add(-time.Minute)},
		{SessionID: "s3", WinnerSlot: 0, Reason: "life", Turns: 20, EndedAt: now},
	} {
		if err := repo.SaveResult(ctx, res); err != nil {
			t.Fatalf("SaveResult %d: %v", i, err)
		}
		if res.ID == 0 {
			t.Fatalf("SaveResult %d did not assign an id", i)
		}
	}

	got, err := repo.RecentResults(ctx, 2)
	if err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	if len(got) != 2 || got[0].SessionID != "s3" || got[1].SessionID != "s2" {
		t.Fatalf("expected newest first, got %v", got)
	}
}

func TestMemoryRepositoryRejectsDuplicateSession(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.SaveResult(ctx, &MatchResult{SessionID: "s1", EndedAt: time.Now()}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if err := repo.SaveResult(ctx, &MatchResult{SessionID: "s1", EndedAt: time.Now()}); err != ErrDuplicateResult {
		t.Fatalf("expected ErrDuplicateResult, got %v", err)
	}
}

func TestMemoryRepositoryCopiesOnRead(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.SaveResult(ctx, &MatchResult{SessionID: "s1", WinnerSlot: 1, EndedAt: time.Now()}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	got, _ := repo.RecentResults(ctx, 1)
	got[0].WinnerSlot = 0

	again, _ := repo.RecentResults(ctx, 1)
	if again[0].WinnerSlot != 1 {
		t.Fatalf("caller mutation leaked into the repository")
	}
}

func TestMatchResultDuration(t *testing.T) {
	start := time.Now()
	res := &MatchResult{StartedAt: start, EndedAt: start.Add(90 * time.Second)}
	if res.Duration() != 90*time.Second {
		t.Fatalf("Duration: %v", res.Duration())
	}
}
