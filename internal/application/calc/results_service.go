package calc

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
)

// ResultsView is the full statement of one persisted run: the lines, the
// aggregated totals, a per-kind breakdown and the property header data.
type ResultsView struct {
	Property        string              `json:"property"`
	CondominiumName string              `json:"condominiumName"`
	Address         string              `json:"address"`
	Reclamante      string              `json:"reclamante"`
	ReferenceDate   time.Time           `json:"referenceDate"`
	IndexID         int                 `json:"indexId"`
	IndexName       string              `json:"indexName"`
	HonorariosRate  decimal.Decimal     `json:"honorariosRate"`
	Lines           []calc.Line         `json:"lines"`
	Totals          calc.Totals         `json:"totals"`
	TotalsByKind    []KindTotals        `json:"totalsByKind"`
	Prescribed      []PrescribedSummary `json:"prescribed"`
}

// KindTotals breaks the run totals down by installment kind.
type KindTotals struct {
	Kind     int             `json:"kind"`
	Count    int             `json:"count"`
	SumCota  decimal.Decimal `json:"sumCota"`
	SumTotal decimal.Decimal `json:"sumTotal"`
}

// PrescribedSummary is the prescribed-row digest shown alongside results.
type PrescribedSummary struct {
	DueDate     time.Time       `json:"dueDate"`
	Cota        decimal.Decimal `json:"cota"`
	Kind        int             `json:"kind"`
	PeriodLabel string          `json:"periodLabel"`
}

// HistoryEntry is one persisted run in the history listing.
type HistoryEntry struct {
	Property       string          `json:"property"`
	ReferenceDate  time.Time       `json:"referenceDate"`
	IndexID        int             `json:"indexId"`
	IndexName      string          `json:"indexName"`
	Lines          int             `json:"lines"`
	SubTotal       decimal.Decimal `json:"subTotal"`
	HonorariosRate decimal.Decimal `json:"honorariosRate"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// IndexInfo is one catalog entry of the accepted economic indices.
type IndexInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ResultsService reads persisted calculation runs back for display.
type ResultsService struct {
	lines       calc.LineRepository
	prescribed  calc.PrescribedRepository
	properties  calc.PropertyRepository
	defaultRate decimal.Decimal
}

// NewResultsService creates a new ResultsService. defaultRate is the
// honorários percent shown for partitions that hold no lines yet.
func NewResultsService(lines calc.LineRepository, prescribed calc.PrescribedRepository, properties calc.PropertyRepository, defaultRate decimal.Decimal) *ResultsService {
	return &ResultsService{lines: lines, prescribed: prescribed, properties: properties, defaultRate: defaultRate}
}

// GetResults returns the persisted run for (property, referenceDate, index).
// An empty partition yields an empty view, not an error. When honorariosRate
// is non-nil it overrides the rate stored with the run for this view only.
func (s *ResultsService) GetResults(ctx context.Context, property string, referenceDate time.Time, indexID int, honorariosRate *decimal.Decimal) (*ResultsView, error) {
	index, err := indices.Parse(indexID)
	if err != nil {
		return nil, err
	}

	lines, err := s.lines.ListPartition(ctx, property, referenceDate, index)
	if err != nil {
		return nil, err
	}

	rate := s.defaultRate
	if len(lines) > 0 {
		rate = lines[0].HonorariosRate
	}
	if honorariosRate != nil {
		rate = *honorariosRate
	}

	view := &ResultsView{
		Property:       property,
		ReferenceDate:  referenceDate,
		IndexID:        indexID,
		IndexName:      index.Name(),
		HonorariosRate: rate,
		Lines:          lines,
		Totals:         calc.Aggregate(lines, rate),
		TotalsByKind:   totalsByKind(lines),
	}

	prescribedRows, err := s.prescribed.ListPartition(ctx, property, referenceDate, index)
	if err != nil {
		return nil, err
	}
	for _, p := range prescribedRows {
		if view.CondominiumName == "" {
			view.CondominiumName = p.CondominiumName
		}
		view.Prescribed = append(view.Prescribed, PrescribedSummary{
			DueDate:     p.DueDate,
			Cota:        p.Cota,
			Kind:        p.Kind,
			PeriodLabel: p.PeriodLabel,
		})
	}

	if info, err := s.properties.Find(ctx, property); err == nil {
		view.CondominiumName = info.CondominiumName
		view.Address = info.Address
		view.Reclamante = info.Reclamante
	}

	return view, nil
}

// History lists the persisted runs, most recent first, optionally narrowed
// to one property.
func (s *ResultsService) History(ctx context.Context, property string) ([]HistoryEntry, error) {
	summaries, err := s.lines.RunSummaries(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(summaries))
	for _, sum := range summaries {
		if property != "" && sum.Property != property {
			continue
		}
		entries = append(entries, HistoryEntry{
			Property:       sum.Property,
			ReferenceDate:  sum.ReferenceDate,
			IndexID:        int(sum.Index),
			IndexName:      sum.Index.Name(),
			Lines:          sum.Lines,
			SubTotal:       sum.SubTotal,
			HonorariosRate: sum.HonorariosRate,
			GrandTotal:     grandTotal(sum),
		})
	}
	return entries, nil
}

// Indices returns the catalog of accepted economic indices.
func (s *ResultsService) Indices(ctx context.Context) []IndexInfo {
	all := indices.All()
	catalog := make([]IndexInfo, 0, len(all))
	for _, idx := range all {
		catalog = append(catalog, IndexInfo{ID: int(idx), Name: idx.Name()})
	}
	return catalog
}

func totalsByKind(lines []calc.Line) []KindTotals {
	byKind := make(map[int]*KindTotals)
	for _, l := range lines {
		kt, ok := byKind[l.Kind]
		if !ok {
			kt = &KindTotals{Kind: l.Kind, SumCota: decimal.Zero, SumTotal: decimal.Zero}
			byKind[l.Kind] = kt
		}
		kt.Count++
		kt.SumCota = kt.SumCota.Add(l.Cota)
		kt.SumTotal = kt.SumTotal.Add(l.Total)
	}

	out := make([]KindTotals, 0, len(byKind))
	for _, kt := range byKind {
		out = append(out, *kt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
