package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence/models"
)

// GormLineRepository implements calc.LineRepository using GORM
type GormLineRepository struct {
	db *Database
}

// NewGormLineRepository creates a new GormLineRepository
func NewGormLineRepository(db *Database) *GormLineRepository {
	return &GormLineRepository{db: db}
}

// DeletePartition removes the lines of one (property, referenceDate, index)
// partition. Other partitions are untouched.
func (r *GormLineRepository) DeletePartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) error {
	if err := r.db.conn(ctx).
		Where("property = ? AND reference_date = ? AND index_id = ?", property, referenceDate, int(index)).
		Delete(&models.LineModel{}).Error; err != nil {
		return fmt.Errorf("clear calculation lines: %w", err)
	}
	return nil
}

// InsertBatch stores computed lines.
func (r *GormLineRepository) InsertBatch(ctx context.Context, batch []calc.Line) error {
	if len(batch) == 0 {
		return nil
	}
	rows := make([]models.LineModel, len(batch))
	for i, l := range batch {
		rows[i].FromDomain(l)
	}
	if err := r.db.conn(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("insert calculation lines: %w", err)
	}
	return nil
}

// ListPartition returns the lines of one partition ordered by due date then
// kind, the statement order.
func (r *GormLineRepository) ListPartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) ([]calc.Line, error) {
	var rows []models.LineModel
	if err := r.db.conn(ctx).
		Where("property = ? AND reference_date = ? AND index_id = ?", property, referenceDate, int(index)).
		Order("due_date, kind").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list calculation lines: %w", err)
	}
	return toDomainLines(rows), nil
}

// ListByReference returns every line of the reference date across indices,
// optionally narrowed to one property.
func (r *GormLineRepository) ListByReference(ctx context.Context, referenceDate time.Time, property string) ([]calc.Line, error) {
	query := r.db.conn(ctx).Where("reference_date = ?", referenceDate)
	if property != "" {
		query = query.Where("property = ?", property)
	}

	var rows []models.LineModel
	if err := query.Order("index_id, due_date, kind").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list lines by reference date: %w", err)
	}
	return toDomainLines(rows), nil
}

// Properties returns the distinct property ids holding persisted lines.
func (r *GormLineRepository) Properties(ctx context.Context) ([]string, error) {
	var props []string
	if err := r.db.conn(ctx).
		Model(&models.LineModel{}).
		Distinct("property").
		Order("property").
		Pluck("property", &props).Error; err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return props, nil
}

// ReferenceDatesFor returns the distinct reference dates persisted for a
// property, most recent first.
func (r *GormLineRepository) ReferenceDatesFor(ctx context.Context, property string) ([]time.Time, error) {
	var dates []time.Time
	if err := r.db.conn(ctx).
		Model(&models.LineModel{}).
		Where("property = ?", property).
		Distinct("reference_date").
		Order("reference_date DESC").
		Pluck("reference_date", &dates).Error; err != nil {
		return nil, fmt.Errorf("list reference dates: %w", err)
	}
	return dates, nil
}

// RunSummaries lists the persisted partitions with line counts and
// subtotals, most recent first.
func (r *GormLineRepository) RunSummaries(ctx context.Context) ([]calc.RunSummary, error) {
	type summaryRow struct {
		Property       string
		ReferenceDate  time.Time
		IndexID        int
		Lines          int
		SubTotal       string
		HonorariosRate string
	}

	var rows []summaryRow
	if err := r.db.conn(ctx).
		Model(&models.LineModel{}).
		Select("property, reference_date, index_id, COUNT(*) AS lines, " +
			"SUM(total) AS sub_total, MAX(honorarios_rate) AS honorarios_rate").
		Group("property, reference_date, index_id").
		Order("reference_date DESC, property, index_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("summarise runs: %w", err)
	}

	out := make([]calc.RunSummary, len(rows))
	for i, row := range rows {
		subTotal, err := parseSummaryDecimal(row.SubTotal)
		if err != nil {
			return nil, fmt.Errorf("summarise runs: %w", err)
		}
		rate, err := parseSummaryDecimal(row.HonorariosRate)
		if err != nil {
			return nil, fmt.Errorf("summarise runs: %w", err)
		}
		out[i] = calc.RunSummary{
			Property:       row.Property,
			ReferenceDate:  row.ReferenceDate,
			Index:          indices.Index(row.IndexID),
			Lines:          row.Lines,
			SubTotal:       subTotal,
			HonorariosRate: rate,
		}
	}
	return out, nil
}

func toDomainLines(rows []models.LineModel) []calc.Line {
	out := make([]calc.Line, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
