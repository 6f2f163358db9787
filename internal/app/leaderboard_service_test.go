package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamification-engine/internal/domain"
	"gamification-engine/internal/infra/memory"
)

func newLeaderboardFixture(at time.Time) (*LeaderboardService, *testClock) {
	clock := &testClock{current: at}
	svc := NewLeaderboardService(memory.NewLeaderboardStore())
	svc.now = clock.now
	return svc, clock
}

func TestRecordCreditsEveryPeriod(t *testing.T) {
	ctx := context.Background()
	svc, clock := newLeaderboardFixture(time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC))

	if err := svc.Record(ctx, "u1", "g1", 25, clock.current); err != nil {
		t.Fatalf("record: %v", err)
	}
	for _, period := range domain.Periods() {
		board, err := svc.Standings(ctx, "g1", period, 10)
		if err != nil {
			t.Fatalf("standings %s: %v", period, err)
		}
		if len(board.Standings) != 1 || board.Standings[0].Points != 25 {
			t.Fatalf("%s standings = %+v, want one entry with 25 points", period, board.Standings)
		}
	}
}

func TestRecordSkipsUnlinkedAndZero(t *testing.T) {
	ctx := context.Background()
	svc, clock := newLeaderboardFixture(time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC))

	if err := svc.Record(ctx, "u1", "", 25, clock.current); err != nil {
		t.Fatalf("record with no game: %v", err)
	}
	if err := svc.Record(ctx, "u1", "g1", 0, clock.current); err != nil {
		t.Fatalf("record with zero points: %v", err)
	}
	board, _ := svc.Standings(ctx, "g1", domain.PeriodAllTime, 10)
	if len(board.Standings) != 0 {
		t.Fatalf("standings = %+v, want none", board.Standings)
	}
}

func TestStandingsWindowRollsOver(t *testing.T) {
	ctx := context.Background()
	svc, clock := newLeaderboardFixture(time.Date(2026, time.July, 20, 10, 0, 0, 0, time.UTC))

	if err := svc.Record(ctx, "u1", "g1", 40, clock.current); err != nil {
		t.Fatalf("record: %v", err)
	}

	// A month later the monthly and weekly boards start fresh; all-time keeps
	// the July points.
	clock.current = time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
	if err := svc.Record(ctx, "u2", "g1", 15, clock.current); err != nil {
		t.Fatalf("record: %v", err)
	}

	monthly, _ := svc.Standings(ctx, "g1", domain.PeriodMonthly, 10)
	if len(monthly.Standings) != 1 || monthly.Standings[0].UserID != "u2" {
		t.Fatalf("monthly standings = %+v, want only the August scorer", monthly.Standings)
	}
	allTime, _ := svc.Standings(ctx, "g1", domain.PeriodAllTime, 10)
	if len(allTime.Standings) != 2 || allTime.Standings[0].UserID != "u1" {
		t.Fatalf("all_time standings = %+v, want u1 leading with 40", allTime.Standings)
	}
}

func TestRankOf(t *testing.T) {
	ctx := context.Background()
	svc, clock := newLeaderboardFixture(time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC))

	svc.Record(ctx, "u1", "g1", 40, clock.current)
	svc.Record(ctx, "u2", "g1", 15, clock.current)

	standing, err := svc.RankOf(ctx, "u2", "g1", domain.PeriodAllTime)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if standing.Rank != 2 || standing.Points != 15 {
		t.Fatalf("standing = %+v, want rank 2 with 15 points", standing)
	}
	if _, err := svc.RankOf(ctx, "ghost", "g1", domain.PeriodAllTime); !errors.Is(err, domain.ErrNotRanked) {
		t.Fatalf("unranked user: err = %v, want ErrNotRanked", err)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	svc, clock := newLeaderboardFixture(time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC))

	ch, cancel, err := svc.Subscribe(ctx, "g1", domain.PeriodAllTime)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial.Standings) != 0 {
		t.Fatalf("initial snapshot = %+v, want an empty board", initial.Standings)
	}

	if err := svc.Record(ctx, "u1", "g1", 30, clock.current); err != nil {
		t.Fatalf("record: %v", err)
	}
	select {
	case snapshot := <-ch:
		if len(snapshot.Standings) != 1 || snapshot.Standings[0].Points != 30 {
			t.Fatalf("snapshot = %+v, want the scored entry", snapshot.Standings)
		}
	case <-time.After(time.Second):
		t.Fatalf("no snapshot broadcast after a scoring event")
	}
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLeaderboardFixture(time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC))

	ch, cancel, err := svc.Subscribe(ctx, "g1", domain.PeriodWeekly)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-ch
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("channel still open after cancel")
	}
}
