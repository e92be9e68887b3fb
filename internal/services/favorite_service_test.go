package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

func TestFavorite_SaveListRemove(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &FavoriteService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	user := mustUser(t, db, "a@example.com", domain.RoleUser)

	fav, err := svc.Save(ctx, user.ID, cafe.ID)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if fav.Cafe.Name != "St. Oberholz" {
		t.Fatalf("expected cafe attached to the favorite, got %+v", fav)
	}

	if _, err := svc.Save(ctx, user.ID, cafe.ID); !errors.Is(err, ErrDuplicateFavorite) {
		t.Fatalf("expected ErrDuplicateFavorite, got %v", err)
	}

	saved, err := svc.Status(ctx, user.ID, cafe.ID)
	if err != nil || !saved {
		t.Fatalf("Status = %v, %v; want true", saved, err)
	}

	items, total, err := svc.List(ctx, user.ID, 1, 10)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("list = %d items, total %d, err %v", len(items), total, err)
	}

	if err := svc.Remove(ctx, user.ID, cafe.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(ctx, user.ID, cafe.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound, got %v", err)
	}
}

func TestFavorite_SaveHiddenCafe(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &FavoriteService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	user := mustUser(t, db, "a@example.com", domain.RoleUser)

	if _, err := cafes.Update(ctx, cafe.ID, CafeInput{IsActive: boolPtr(false)}); err != nil {
		t.Fatalf("hide cafe: %v", err)
	}
	if _, err := svc.Save(ctx, user.ID, cafe.ID); !errors.Is(err, ErrCafeNotFound) {
		t.Fatalf("expected ErrCafeNotFound, got %v", err)
	}
	if _, err := svc.Save(ctx, user.ID, "missing"); !errors.Is(err, ErrCafeNotFound) {
		t.Fatalf("expected ErrCafeNotFound for unknown cafe, got %v", err)
	}
}
