package memory

import (
	"context"
	"testing"
	"time"

	"gamification-engine/internal/domain"
)

func TestLeaderboardStoreAccumulatesAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()
	window := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	add := func(user string, points int, at time.Time) {
		t.Helper()
		err := store.AddPoints(ctx, domain.LeaderboardEntry{
			UserID: user, GameID: "game-1", Period: domain.PeriodMonthly,
			WindowStart: window, Points: points, CreatedAt: at, UpdatedAt: at,
		})
		if err != nil {
			t.Fatalf("add points: %v", err)
		}
	}

	base := window.Add(time.Hour)
	add("alice", 10, base)
	add("bob", 5, base.Add(time.Minute))
	add("bob", 5, base.Add(2*time.Minute)) // ties alice at 10

	standings, err := store.Top(ctx, "game-1", domain.PeriodMonthly, window, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(standings))
	}
	// Equal points resolve by earliest entry creation: alice entered first.
	if standings[0].UserID != "alice" || standings[0].Rank != 1 {
		t.Fatalf("expected alice first on tie, got %+v", standings[0])
	}
	if standings[1].UserID != "bob" || standings[1].Points != 10 {
		t.Fatalf("expected bob with accumulated 10, got %+v", standings[1])
	}
}

func TestLeaderboardStoreWindowsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()
	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_ = store.AddPoints(ctx, domain.LeaderboardEntry{
		UserID: "alice", GameID: "game-1", Period: domain.PeriodMonthly,
		WindowStart: july, Points: 40, CreatedAt: july, UpdatedAt: july,
	})
	_ = store.AddPoints(ctx, domain.LeaderboardEntry{
		UserID: "alice", GameID: "game-1", Period: domain.PeriodMonthly,
		WindowStart: august, Points: 3, CreatedAt: august, UpdatedAt: august,
	})

	current, _ := store.Top(ctx, "game-1", domain.PeriodMonthly, august, 10)
	if len(current) != 1 || current[0].Points != 3 {
		t.Fatalf("expected fresh august entry with 3 points, got %+v", current)
	}
	frozen, _ := store.Top(ctx, "game-1", domain.PeriodMonthly, july, 10)
	if len(frozen) != 1 || frozen[0].Points != 40 {
		t.Fatalf("expected july history frozen at 40, got %+v", frozen)
	}
}

func TestLeaderboardStoreRank(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()
	window := time.Time{}

	if _, err := store.Rank(ctx, "ghost", "game-1", domain.PeriodAllTime, window); err != domain.ErrNotRanked {
		t.Fatalf("expected not ranked, got %v", err)
	}

	now := time.Now().UTC()
	_ = store.AddPoints(ctx, domain.LeaderboardEntry{UserID: "alice", GameID: "game-1", Period: domain.PeriodAllTime, WindowStart: window, Points: 7, CreatedAt: now, UpdatedAt: now})
	_ = store.AddPoints(ctx, domain.LeaderboardEntry{UserID: "bob", GameID: "game-1", Period: domain.PeriodAllTime, WindowStart: window, Points: 9, CreatedAt: now, UpdatedAt: now})

	standing, err := store.Rank(ctx, "alice", "game-1", domain.PeriodAllTime, window)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if standing.Rank != 2 || standing.Points != 7 {
		t.Fatalf("expected alice at rank 2 with 7 points, got %+v", standing)
	}
}
