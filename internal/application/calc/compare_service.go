package calc

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
)

// ComparisonRow aggregates one index's persisted lines for a reference date.
type ComparisonRow struct {
	IndexID     int             `json:"indexId"`
	IndexName   string          `json:"indexName"`
	Lines       int             `json:"lines"`
	SumCota     decimal.Decimal `json:"sumCota"`
	SumUpdate   decimal.Decimal `json:"sumUpdate"`
	SumInterest decimal.Decimal `json:"sumInterest"`
	SumFine     decimal.Decimal `json:"sumFine"`
	SubTotal    decimal.Decimal `json:"subTotal"`
	Honorarios  decimal.Decimal `json:"honorarios"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	Best        bool            `json:"best"`
	Worst       bool            `json:"worst"`
}

// Comparison is the per-index breakdown of a reference date.
type Comparison struct {
	ReferenceDate time.Time       `json:"referenceDate"`
	Property      string          `json:"property,omitempty"`
	Rows          []ComparisonRow `json:"rows"`
}

// CompareService ranks the persisted runs of one reference date across
// indices so the cheapest correction can be picked.
type CompareService struct {
	lines calc.LineRepository
}

// NewCompareService creates a new CompareService
func NewCompareService(lines calc.LineRepository) *CompareService {
	return &CompareService{lines: lines}
}

// Compare aggregates the persisted lines of referenceDate per index. An empty
// property matches every property. The row with the lowest subtotal is marked
// best, the highest worst; with a single row it is both.
func (s *CompareService) Compare(ctx context.Context, referenceDate time.Time, property string) (*Comparison, error) {
	all, err := s.lines.ListByReference(ctx, referenceDate, property)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[indices.Index][]calc.Line)
	for _, l := range all {
		byIndex[l.Index] = append(byIndex[l.Index], l)
	}

	rows := make([]ComparisonRow, 0, len(byIndex))
	for idx, group := range byIndex {
		rate := group[0].HonorariosRate
		totals := calc.Aggregate(group, rate)
		rows = append(rows, ComparisonRow{
			IndexID:     int(idx),
			IndexName:   idx.Name(),
			Lines:       totals.Count,
			SumCota:     totals.SumCota,
			SumUpdate:   totals.SumUpdate,
			SumInterest: totals.SumInterest,
			SumFine:     totals.SumFine,
			SubTotal:    totals.SubTotal,
			Honorarios:  totals.Honorarios,
			GrandTotal:  totals.GrandTotal,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SubTotal.LessThan(rows[j].SubTotal) })

	if len(rows) > 0 {
		rows[0].Best = true
		rows[len(rows)-1].Worst = true
	}

	return &Comparison{ReferenceDate: referenceDate, Property: property, Rows: rows}, nil
}
