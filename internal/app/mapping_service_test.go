package app

import (
	"context"
	"errors"
	"testing"

	"gamification-engine/internal/domain"
	"gamification-engine/internal/infra/memory"
)

type mappingFixture struct {
	catalog  *CatalogService
	mappings *MappingService
}

func newMappingFixture(t *testing.T) *mappingFixture {
	t.Helper()
	store := memory.NewCatalogStore()
	gameLinks := memory.NewLinkStore()
	userLinks := memory.NewLinkStore()
	return &mappingFixture{
		catalog:  NewCatalogService(store, gameLinks, userLinks),
		mappings: NewMappingService(gameLinks, userLinks, store),
	}
}

func (fx *mappingFixture) seedGame(t *testing.T, externalID, internalID string) {
	t.Helper()
	ctx := context.Background()
	if err := fx.catalog.SyncExternalGame(ctx, domain.ExternalGame{ID: externalID, Name: "quiz " + externalID, Active: true}); err != nil {
		t.Fatalf("sync external game: %v", err)
	}
	if _, err := fx.catalog.CreateInternalGame(ctx, domain.InternalGame{ID: internalID, Name: "game " + internalID, Type: domain.GameTypeBooks}); err != nil {
		t.Fatalf("create internal game: %v", err)
	}
}

func TestLinkGameRoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newMappingFixture(t)
	fx.seedGame(t, "E1", "I1")

	if err := fx.mappings.LinkGame(ctx, "E1", "I1"); err != nil {
		t.Fatalf("link: %v", err)
	}
	internal, err := fx.mappings.ResolveInternalGame(ctx, "E1")
	if err != nil || internal != "I1" {
		t.Fatalf("resolve internal = %q, %v, want I1", internal, err)
	}
	external, err := fx.mappings.ResolveExternalGame(ctx, "I1")
	if err != nil || external != "E1" {
		t.Fatalf("resolve external = %q, %v, want E1", external, err)
	}
}

func TestLinkGameUniqueness(t *testing.T) {
	ctx := context.Background()
	fx := newMappingFixture(t)
	fx.seedGame(t, "E1", "I1")
	fx.seedGame(t, "E2", "I2")

	if err := fx.mappings.LinkGame(ctx, "E1", "I1"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := fx.mappings.LinkGame(ctx, "E1", "I2"); !errors.Is(err, domain.ErrAlreadyLinked) {
		t.Fatalf("relink external: err = %v, want ErrAlreadyLinked", err)
	}
	if err := fx.mappings.LinkGame(ctx, "E2", "I1"); !errors.Is(err, domain.ErrAlreadyLinked) {
		t.Fatalf("steal internal: err = %v, want ErrAlreadyLinked", err)
	}
}

func TestLinkGameRequiresInternalGame(t *testing.T) {
	ctx := context.Background()
	fx := newMappingFixture(t)
	fx.seedGame(t, "E1", "I1")

	if err := fx.mappings.LinkGame(ctx, "E1", "ghost"); !errors.Is(err, domain.ErrUnknownGame) {
		t.Fatalf("link to missing game: err = %v, want ErrUnknownGame", err)
	}
}

func TestUnlinkGameFreesBothSides(t *testing.T) {
	ctx := context.Background()
	fx := newMappingFixture(t)
	fx.seedGame(t, "E1", "I1")
	fx.seedGame(t, "E2", "I2")

	if err := fx.mappings.LinkGame(ctx, "E1", "I1"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := fx.mappings.UnlinkGame(ctx, "E1"); err != nil {
		t.Fatalf("unlink: %v", err)
	}

	// Both identities are immediately relinkable.
	if err := fx.mappings.LinkGame(ctx, "E2", "I1"); err != nil {
		t.Fatalf("relink freed internal: %v", err)
	}
	if err := fx.mappings.LinkGame(ctx, "E1", "I2"); err != nil {
		t.Fatalf("relink freed external: %v", err)
	}

	if err := fx.mappings.UnlinkGame(ctx, "ghost"); !errors.Is(err, domain.ErrLinkNotFound) {
		t.Fatalf("unlink missing: err = %v, want ErrLinkNotFound", err)
	}
}

func TestLinkUserDoesNotTouchGames(t *testing.T) {
	ctx := context.Background()
	fx := newMappingFixture(t)
	fx.seedGame(t, "E1", "I1")

	// User links live in a separate identity space; the same raw id on the
	// game side stays free.
	if err := fx.mappings.LinkUser(ctx, "E1", "dashboard-7"); err != nil {
		t.Fatalf("link user: %v", err)
	}
	if err := fx.mappings.LinkGame(ctx, "E1", "I1"); err != nil {
		t.Fatalf("link game after user link: %v", err)
	}

	internal, err := fx.mappings.ResolveInternalUser(ctx, "E1")
	if err != nil || internal != "dashboard-7" {
		t.Fatalf("resolve internal user = %q, %v, want dashboard-7", internal, err)
	}
}

func TestAvailableUsers(t *testing.T) {
	ctx := context.Background()
	fx := newMappingFixture(t)

	if err := fx.catalog.SyncExternalUser(ctx, domain.ExternalUser{ID: "U1", Username: "alice"}); err != nil {
		t.Fatalf("sync user: %v", err)
	}
	if err := fx.catalog.SyncExternalUser(ctx, domain.ExternalUser{ID: "U2", Username: "bob"}); err != nil {
		t.Fatalf("sync user: %v", err)
	}
	if err := fx.mappings.LinkUser(ctx, "U1", "dashboard-1"); err != nil {
		t.Fatalf("link user: %v", err)
	}

	free, err := fx.mappings.AvailableUsers(ctx)
	if err != nil {
		t.Fatalf("available users: %v", err)
	}
	if len(free) != 1 || free[0].ID != "U2" {
		t.Fatalf("free users = %+v, want only U2", free)
	}
}

func TestAvailableGames(t *testing.T) {
	ctx := context.Background()
	fx := newMappingFixture(t)
	fx.seedGame(t, "E1", "I1")
	fx.seedGame(t, "E2", "I2")

	if err := fx.mappings.LinkGame(ctx, "E1", "I1"); err != nil {
		t.Fatalf("link: %v", err)
	}

	external, internal, err := fx.mappings.AvailableGames(ctx)
	if err != nil {
		t.Fatalf("available games: %v", err)
	}
	if len(external) != 1 || external[0].ID != "E2" {
		t.Fatalf("free external = %+v, want only E2", external)
	}
	if len(internal) != 1 || internal[0].ID != "I2" {
		t.Fatalf("free internal = %+v, want only I2", internal)
	}
}
