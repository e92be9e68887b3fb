// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file implements the rating aggregator: the cafe row
// carries denormalized averages and a count over its active reviews, and
// this is the single place that recomputes them.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// RecomputeCafeRatings refreshes the denormalized rating summary of a cafe
// from its active reviews, as one UPDATE statement whose subqueries read the
// current review set. Running it inside the transaction of the triggering
// review write guarantees the summary reflects a consistent snapshot: the
// write and the recompute commit or roll back together.
//
// Semantics:
//   - rating_avg / rating_count cover all active reviews of the cafe.
//   - Each dimension average covers only the active reviews that rated that
//     dimension (AVG ignores NULLs); it is not a missing-equals-zero mean.
//   - All six fields become 0 when the cafe has no active reviews.
//   - Averages are rounded to 2 decimal places. SQL ROUND() rounds halves
//     away from zero; that choice is pinned by tests.
//
// If the cafe row no longer exists (race with deletion) the UPDATE matches
// zero rows and the call is a silent no-op.
func RecomputeCafeRatings(ctx context.Context, db *gorm.DB, cafeID string) error {
	const q = `
UPDATE cafes SET
  rating_avg    = COALESCE((SELECT ROUND(AVG(rating_overall), 2) FROM reviews WHERE cafe_id = cafes.id AND is_active = true), 0),
  rating_wifi   = COALESCE((SELECT ROUND(AVG(rating_wifi),    2) FROM reviews WHERE cafe_id = cafes.id AND is_active = true), 0),
  rating_power  = COALESCE((SELECT ROUND(AVG(rating_power),   2) FROM reviews WHERE cafe_id = cafes.id AND is_active = true), 0),
  rating_noise  = COALESCE((SELECT ROUND(AVG(rating_noise),   2) FROM reviews WHERE cafe_id = cafes.id AND is_active = true), 0),
  rating_coffee = COALESCE((SELECT ROUND(AVG(rating_coffee),  2) FROM reviews WHERE cafe_id = cafes.id AND is_active = true), 0),
  rating_count  = (SELECT COUNT(*) FROM reviews WHERE cafe_id = cafes.id AND is_active = true)
WHERE id = ?`
	return db.WithContext(ctx).Exec(q, cafeID).Error
}
