package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/shared"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence/models"
)

// GormPropertyRepository implements calc.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *Database
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *Database) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// Find returns the directory entry for a property id.
func (r *GormPropertyRepository) Find(ctx context.Context, property string) (*calc.PropertyInfo, error) {
	var row models.PropertyModel
	if err := r.db.conn(ctx).First(&row, "property = ?", property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find property %s: %w", property, err)
	}
	return row.ToDomain(), nil
}
