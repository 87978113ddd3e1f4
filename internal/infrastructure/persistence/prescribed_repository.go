package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence/models"
)

// GormPrescribedRepository implements calc.PrescribedRepository using GORM
type GormPrescribedRepository struct {
	db *Database
}

// NewGormPrescribedRepository creates a new GormPrescribedRepository
func NewGormPrescribedRepository(db *Database) *GormPrescribedRepository {
	return &GormPrescribedRepository{db: db}
}

// DeletePartition removes the prescribed rows of one run partition.
func (r *GormPrescribedRepository) DeletePartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) error {
	if err := r.db.conn(ctx).
		Where("property = ? AND reference_date = ? AND index_id = ?", property, referenceDate, int(index)).
		Delete(&models.PrescribedModel{}).Error; err != nil {
		return fmt.Errorf("clear prescribed installments: %w", err)
	}
	return nil
}

// InsertBatch stores prescribed installments.
func (r *GormPrescribedRepository) InsertBatch(ctx context.Context, batch []calc.PrescribedInstallment) error {
	if len(batch) == 0 {
		return nil
	}
	rows := make([]models.PrescribedModel, len(batch))
	for i, p := range batch {
		rows[i].FromDomain(p)
	}
	if err := r.db.conn(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("insert prescribed installments: %w", err)
	}
	return nil
}

// ListPartition returns the prescribed rows of one run partition ordered by
// due date.
func (r *GormPrescribedRepository) ListPartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) ([]calc.PrescribedInstallment, error) {
	var rows []models.PrescribedModel
	if err := r.db.conn(ctx).
		Where("property = ? AND reference_date = ? AND index_id = ?", property, referenceDate, int(index)).
		Order("due_date").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list prescribed installments: %w", err)
	}

	out := make([]calc.PrescribedInstallment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
