package memory

import (
	"context"
	"testing"

	"gamification-engine/internal/domain"
)

func TestLinkStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewLinkStore()

	if err := store.Link(ctx, "G1", "I1"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := store.Link(ctx, "G2", "I1"); err != domain.ErrAlreadyLinked {
		t.Fatalf("expected already linked for taken internal id, got %v", err)
	}
	if err := store.Link(ctx, "G1", "I2"); err != domain.ErrAlreadyLinked {
		t.Fatalf("expected already linked for taken external id, got %v", err)
	}

	internal, err := store.InternalFor(ctx, "G1")
	if err != nil || internal != "I1" {
		t.Fatalf("expected I1, got %q err=%v", internal, err)
	}
	external, err := store.ExternalFor(ctx, "I1")
	if err != nil || external != "G1" {
		t.Fatalf("expected G1, got %q err=%v", external, err)
	}
}

func TestLinkStoreUnlinkFreesBothSides(t *testing.T) {
	ctx := context.Background()
	store := NewLinkStore()

	if err := store.Unlink(ctx, "G1"); err != domain.ErrLinkNotFound {
		t.Fatalf("expected not found for unknown mapping, got %v", err)
	}

	_ = store.Link(ctx, "G1", "I1")
	if err := store.Unlink(ctx, "G1"); err != nil {
		t.Fatalf("unlink: %v", err)
	}

	// The row survives half-linked, both ids are free again.
	internal, _ := store.InternalFor(ctx, "G1")
	if internal != "" {
		t.Fatalf("expected half-linked row, got %q", internal)
	}
	if err := store.Link(ctx, "G2", "I1"); err != nil {
		t.Fatalf("relink freed internal id: %v", err)
	}
	links, _ := store.List(ctx)
	if len(links) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(links))
	}
}

func TestLinkStoreEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewLinkStore()

	_ = store.Ensure(ctx, "G1")
	_ = store.Link(ctx, "G1", "I1")
	_ = store.Ensure(ctx, "G1")

	internal, _ := store.InternalFor(ctx, "G1")
	if internal != "I1" {
		t.Fatalf("ensure must not clear an existing link, got %q", internal)
	}
}
