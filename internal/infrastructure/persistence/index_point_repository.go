package persistence

import (
	"context"
	"fmt"

	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence/models"
)

// GormIndexPointRepository implements indices.PointRepository using GORM.
// The series table is read-only reference data.
type GormIndexPointRepository struct {
	db *Database
}

// NewGormIndexPointRepository creates a new GormIndexPointRepository
func NewGormIndexPointRepository(db *Database) *GormIndexPointRepository {
	return &GormIndexPointRepository{db: db}
}

// RatesBetween returns the observations of the index whose month lies in the
// closed interval [from, to], ordered by month.
func (r *GormIndexPointRepository) RatesBetween(ctx context.Context, index indices.Index, from, to indices.Month) ([]indices.Point, error) {
	var rows []models.IndexPointModel
	if err := r.db.conn(ctx).
		Where("index_id = ? AND start_month >= ? AND start_month <= ?",
			int(index), from.First(), to.First()).
		Order("start_month").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load index %d points: %w", int(index), err)
	}

	out := make([]indices.Point, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
