// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate counters behind the
// public platform stats endpoint.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/domain"
)

// PlatformStats is a small aggregate snapshot for the landing page: how many
// active cafes, locations, and reviews exist, and the mean of all active
// cafes' rating averages.
type PlatformStats struct {
	Cafes     int64   `json:"cafes"`
	Locations int64   `json:"locations"`
	Reviews   int64   `json:"reviews"`
	Users     int64   `json:"users"`
	AvgRating float64 `json:"avg_rating"`
}

// GetPlatformStats computes the snapshot with one lightweight query per
// counter. Counts cover active rows only.
func GetPlatformStats(ctx context.Context, db *gorm.DB) (*PlatformStats, error) {
	var s PlatformStats
	q := db.WithContext(ctx)

	if err := q.Model(&domain.Cafe{}).Where("is_active = ?", true).Count(&s.Cafes).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&domain.Location{}).Where("is_active = ?", true).Count(&s.Locations).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&domain.Review{}).Where("is_active = ?", true).Count(&s.Reviews).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&domain.User{}).Where("is_active = ?", true).Count(&s.Users).Error; err != nil {
		return nil, err
	}

	// Mean of summaries over rated cafes; 0 when nothing is rated yet.
	var row struct{ Avg *float64 }
	err := q.Model(&domain.Cafe{}).
		Select("ROUND(AVG(rating_avg), 2) AS avg").
		Where("is_active = ? AND rating_count > 0", true).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Avg != nil {
		s.AvgRating = *row.Avg
	}
	return &s, nil
}
