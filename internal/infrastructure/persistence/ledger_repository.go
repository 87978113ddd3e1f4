package persistence

import (
	"context"
	"fmt"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence/models"
)

// GormLedgerRepository implements calc.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *Database
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *Database) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts a single ledger row and returns its id.
func (r *GormLedgerRepository) Append(ctx context.Context, entry calc.LedgerEntry) (int64, error) {
	var row models.LedgerModel
	row.FromDomain(entry)
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}
	return row.ID, nil
}
