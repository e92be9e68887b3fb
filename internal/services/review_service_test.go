package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

func TestReviewCreate_UpdatesCafeSummary(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	u1 := mustUser(t, db, "a@example.com", domain.RoleUser)
	u2 := mustUser(t, db, "b@example.com", domain.RoleUser)
	u3 := mustUser(t, db, "c@example.com", domain.RoleUser)

	if _, err := svc.Create(ctx, u1.ID, cafe.ID, ReviewInput{RatingOverall: 5, RatingWifi: intPtr(5), Text: "great"}); err != nil {
		t.Fatalf("review 1: %v", err)
	}
	if _, err := svc.Create(ctx, u2.ID, cafe.ID, ReviewInput{RatingOverall: 4, RatingWifi: intPtr(4), Text: "good"}); err != nil {
		t.Fatalf("review 2: %v", err)
	}
	if _, err := svc.Create(ctx, u3.ID, cafe.ID, ReviewInput{RatingOverall: 2, Text: "loud"}); err != nil {
		t.Fatalf("review 3: %v", err)
	}

	got := cafeRatings(t, db, cafe.ID)
	if got.RatingAvg != 3.67 || got.RatingWifi != 4.5 || got.RatingCount != 3 {
		t.Fatalf("summary = avg %v wifi %v count %d, want 3.67 / 4.5 / 3",
			got.RatingAvg, got.RatingWifi, got.RatingCount)
	}
}

func TestReviewCreate_DuplicateEvenAfterSoftDelete(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	user := mustUser(t, db, "a@example.com", domain.RoleUser)

	rev, err := svc.Create(ctx, user.ID, cafe.ID, ReviewInput{RatingOverall: 5, Text: "great"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, cafe.ID, ReviewInput{RatingOverall: 3, Text: "again"}); !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}

	if err := svc.Delete(ctx, user, cafe.ID, rev.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// The soft-deleted review still occupies the (cafe, user) slot.
	if _, err := svc.Create(ctx, user.ID, cafe.ID, ReviewInput{RatingOverall: 3, Text: "again"}); !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview after soft delete, got %v", err)
	}
}

func TestReviewCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	user := mustUser(t, db, "a@example.com", domain.RoleUser)

	if _, err := svc.Create(ctx, user.ID, cafe.ID, ReviewInput{RatingOverall: 0, Text: "x"}); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("missing overall: got %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, cafe.ID, ReviewInput{RatingOverall: 6, Text: "x"}); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("overall out of range: got %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, cafe.ID, ReviewInput{RatingOverall: 4, RatingNoise: intPtr(0), Text: "x"}); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("dimension out of range: got %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, "missing", ReviewInput{RatingOverall: 4, Text: "x"}); !errors.Is(err, ErrCafeNotFound) {
		t.Fatalf("missing cafe: got %v", err)
	}
}

func TestReviewUpdate_OwnerOnlyAndRecompute(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	author := mustUser(t, db, "a@example.com", domain.RoleUser)
	other := mustUser(t, db, "b@example.com", domain.RoleUser)

	rev, err := svc.Create(ctx, author.ID, cafe.ID, ReviewInput{RatingOverall: 2, Text: "meh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, other.ID, cafe.ID, rev.ID, ReviewInput{RatingOverall: 5}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-author, got %v", err)
	}

	if _, err := svc.Update(ctx, author.ID, cafe.ID, rev.ID, ReviewInput{RatingOverall: 5}); err != nil {
		t.Fatalf("author update: %v", err)
	}
	if got := cafeRatings(t, db, cafe.ID); got.RatingAvg != 5 {
		t.Fatalf("rating_avg = %v, want 5 after update", got.RatingAvg)
	}
}

func TestReviewDelete_AdminOverrideAndZeroing(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	author := mustUser(t, db, "a@example.com", domain.RoleUser)
	stranger := mustUser(t, db, "b@example.com", domain.RoleUser)
	admin := mustUser(t, db, "admin@example.com", domain.RoleAdmin)

	rev, err := svc.Create(ctx, author.ID, cafe.ID, ReviewInput{RatingOverall: 4, Text: "fine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, stranger, cafe.ID, rev.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	if err := svc.Delete(ctx, admin, cafe.ID, rev.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	got := cafeRatings(t, db, cafe.ID)
	if got.RatingAvg != 0 || got.RatingCount != 0 {
		t.Fatalf("expected zeroed summary, got avg=%v count=%d", got.RatingAvg, got.RatingCount)
	}
	// Deleting again: the review is no longer visible.
	if err := svc.Delete(ctx, admin, cafe.ID, rev.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestReviewSetActive_BulkRecomputesEveryCafe(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	c1 := mustCafe(t, db, cafes, loc, "St. Oberholz")
	c2 := mustCafe(t, db, cafes, loc, "Betahaus")
	u1 := mustUser(t, db, "a@example.com", domain.RoleUser)
	u2 := mustUser(t, db, "b@example.com", domain.RoleUser)

	r1, _ := svc.Create(ctx, u1.ID, c1.ID, ReviewInput{RatingOverall: 5, Text: "x"})
	r2, _ := svc.Create(ctx, u2.ID, c1.ID, ReviewInput{RatingOverall: 3, Text: "y"})
	r3, _ := svc.Create(ctx, u1.ID, c2.ID, ReviewInput{RatingOverall: 4, Text: "z"})

	if err := svc.SetActive(ctx, []string{r1.ID, r2.ID, r3.ID}, false); err != nil {
		t.Fatalf("bulk deactivate: %v", err)
	}
	if got := cafeRatings(t, db, c1.ID); got.RatingCount != 0 {
		t.Fatalf("cafe 1 count = %d, want 0", got.RatingCount)
	}
	if got := cafeRatings(t, db, c2.ID); got.RatingCount != 0 {
		t.Fatalf("cafe 2 count = %d, want 0", got.RatingCount)
	}

	if err := svc.SetActive(ctx, []string{r1.ID, r3.ID}, true); err != nil {
		t.Fatalf("bulk reactivate: %v", err)
	}
	if got := cafeRatings(t, db, c1.ID); got.RatingAvg != 5 || got.RatingCount != 1 {
		t.Fatalf("cafe 1 = avg %v count %d, want 5 / 1", got.RatingAvg, got.RatingCount)
	}
	if got := cafeRatings(t, db, c2.ID); got.RatingAvg != 4 {
		t.Fatalf("cafe 2 avg = %v, want 4", got.RatingAvg)
	}
}

func TestReviewListForCafe_Pagination(t *testing.T) {
	db := newTestDB(t)
	cafes := &CafeService{DB: db}
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	loc := mustLocation(t, db, "Berlin", "berlin")
	cafe := mustCafe(t, db, cafes, loc, "St. Oberholz")
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u := mustUser(t, db, email, domain.RoleUser)
		if _, err := svc.Create(ctx, u.ID, cafe.ID, ReviewInput{RatingOverall: i + 1, Text: "x"}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	items, total, err := svc.ListForCafe(ctx, cafe.ID, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("total = %d, page len = %d; want 3 and 2", total, len(items))
	}

	if _, _, err := svc.ListForCafe(ctx, "missing", 1, 2); !errors.Is(err, ErrCafeNotFound) {
		t.Fatalf("expected ErrCafeNotFound, got %v", err)
	}
}
