package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence/models"
)

// GormInstallmentRepository implements calc.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *Database
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *Database) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// ReplaceForRun swaps the staged rows of (property, referenceDate) for the
// given batch. The previous run's rows are discarded first.
func (r *GormInstallmentRepository) ReplaceForRun(ctx context.Context, property string, referenceDate time.Time, batch []calc.Installment) error {
	conn := r.db.conn(ctx)

	if err := conn.Where("property = ? AND reference_date = ?", property, referenceDate).
		Delete(&models.InstallmentModel{}).Error; err != nil {
		return fmt.Errorf("clear staged installments: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}

	rows := make([]models.InstallmentModel, len(batch))
	for i, inst := range batch {
		rows[i].FromDomain(inst)
	}
	if err := conn.CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("stage installments: %w", err)
	}
	return nil
}

// ListForRun returns the staged rows of (property, referenceDate) ordered by
// due date then kind.
func (r *GormInstallmentRepository) ListForRun(ctx context.Context, property string, referenceDate time.Time) ([]calc.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.conn(ctx).
		Where("property = ? AND reference_date = ?", property, referenceDate).
		Order("due_date, kind").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list staged installments: %w", err)
	}

	out := make([]calc.Installment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
