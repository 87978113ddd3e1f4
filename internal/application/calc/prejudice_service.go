package calc

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/domain/shared"
	"github.com/emgea/siscalculo/internal/infrastructure/audit"
)

// LedgerPolicy carries the fixed classification of a prejudice ledger row.
type LedgerPolicy struct {
	Creditor     string
	CarteiraID   int
	OcorrenciaID int
	StatusID     int
}

// DefaultLedgerPolicy returns the classification every prejudice loss is
// recorded under.
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{Creditor: "CAIXA", CarteiraID: 4, OcorrenciaID: 1, StatusID: 3}
}

// PrejudiceDate is one persisted run available for a prejudice comparison.
type PrejudiceDate struct {
	ReferenceDate time.Time       `json:"referenceDate"`
	IndexID       int             `json:"indexId"`
	IndexName     string          `json:"indexName"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

// PrejudiceResult is the outcome of comparing two runs of one contract.
type PrejudiceResult struct {
	Contract       string          `json:"contract"`
	IndexID        int             `json:"indexId"`
	LaterDate      time.Time       `json:"laterDate"`
	EarlierDate    time.Time       `json:"earlierDate"`
	LaterValue     decimal.Decimal `json:"laterValue"`
	EarlierValue   decimal.Decimal `json:"earlierValue"`
	Prejudice      decimal.Decimal `json:"prejudice"`
	HonorariosRate decimal.Decimal `json:"honorariosRate"`
}

// PrejudiceService measures the loss between two persisted runs of one
// contract and books it onto the receivables ledger.
type PrejudiceService struct {
	lines  calc.LineRepository
	ledger calc.LedgerRepository
	tx     calc.TxManager
	policy LedgerPolicy
	audit  audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewPrejudiceService creates a new PrejudiceService
func NewPrejudiceService(
	lines calc.LineRepository,
	ledger calc.LedgerRepository,
	tx calc.TxManager,
	policy LedgerPolicy,
	auditSink audit.Sink,
	logger *zap.Logger,
) *PrejudiceService {
	return &PrejudiceService{
		lines:  lines,
		ledger: ledger,
		tx:     tx,
		policy: policy,
		audit:  auditSink,
		logger: logger,
		now:    time.Now,
	}
}

// Contracts lists the contract ids that hold persisted calculation lines.
func (s *PrejudiceService) Contracts(ctx context.Context) ([]string, error) {
	return s.lines.Properties(ctx)
}

// DatesFor lists the persisted runs of a contract, most recent first, with
// the grand total each run would settle at.
func (s *PrejudiceService) DatesFor(ctx context.Context, contract string) ([]PrejudiceDate, error) {
	summaries, err := s.lines.RunSummaries(ctx)
	if err != nil {
		return nil, err
	}

	var dates []PrejudiceDate
	for _, sum := range summaries {
		if sum.Property != contract {
			continue
		}
		dates = append(dates, PrejudiceDate{
			ReferenceDate: sum.ReferenceDate,
			IndexID:       int(sum.Index),
			IndexName:     sum.Index.Name(),
			GrandTotal:    grandTotal(sum),
		})
	}
	return dates, nil
}

// Compute measures the prejudice of settling at laterDate instead of
// earlierDate: the difference of the two runs' grand totals, floored at zero.
// indexID zero picks the index automatically when both dates were calculated
// under exactly one common index; otherwise the caller must name one.
func (s *PrejudiceService) Compute(ctx context.Context, contract string, laterDate, earlierDate time.Time, indexID int) (*PrejudiceResult, error) {
	summaries, err := s.lines.RunSummaries(ctx)
	if err != nil {
		return nil, err
	}

	index, err := s.resolveIndex(summaries, contract, laterDate, earlierDate, indexID)
	if err != nil {
		return nil, err
	}

	later, ok := findRun(summaries, contract, laterDate, index)
	if !ok {
		return nil, fmt.Errorf("no run for %s at %s with index %s: %w",
			contract, laterDate.Format("2006-01-02"), index.Name(), shared.ErrPrejudicePrecondition)
	}
	earlier, ok := findRun(summaries, contract, earlierDate, index)
	if !ok {
		return nil, fmt.Errorf("no run for %s at %s with index %s: %w",
			contract, earlierDate.Format("2006-01-02"), index.Name(), shared.ErrPrejudicePrecondition)
	}

	laterValue := grandTotal(later)
	earlierValue := grandTotal(earlier)

	prejudice := laterValue.Sub(earlierValue)
	if !laterDate.After(earlierDate) || prejudice.IsNegative() {
		prejudice = decimal.Zero
	}

	return &PrejudiceResult{
		Contract:       contract,
		IndexID:        int(index),
		LaterDate:      laterDate,
		EarlierDate:    earlierDate,
		LaterValue:     laterValue,
		EarlierValue:   earlierValue,
		Prejudice:      shared.RoundMoney(prejudice),
		HonorariosRate: later.HonorariosRate,
	}, nil
}

// Save books a prejudice loss onto the receivables ledger and returns the
// new row's id.
func (s *PrejudiceService) Save(ctx context.Context, contract string, value decimal.Decimal, actingUser string) (int64, error) {
	if contract == "" {
		return 0, fmt.Errorf("contract is required: %w", shared.ErrInvalidInput)
	}
	if value.IsNegative() {
		return 0, fmt.Errorf("prejudice value cannot be negative: %w", shared.ErrInvalidInput)
	}
	if actingUser == "" {
		actingUser = "sistema"
	}

	var id int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.ledger.Append(ctx, calc.LedgerEntry{
			Contract:     contract,
			Creditor:     s.policy.Creditor,
			CarteiraID:   s.policy.CarteiraID,
			OcorrenciaID: s.policy.OcorrenciaID,
			StatusID:     s.policy.StatusID,
			Amount:       shared.RoundMoney(value),
			RecordedBy:   actingUser,
			RecordedAt:   s.now(),
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     "prejudice.save",
		Property:   contract,
		ActingUser: actingUser,
		Detail:     map[string]any{"ledger_id": id, "amount": value.StringFixed(2)},
	})
	s.logger.Info("prejudice recorded",
		zap.String("contract", contract),
		zap.String("amount", value.StringFixed(2)),
		zap.Int64("ledger_id", id),
	)
	return id, nil
}

// resolveIndex applies the automatic index pick: with indexID zero there must
// be exactly one index calculated at both dates.
func (s *PrejudiceService) resolveIndex(summaries []calc.RunSummary, contract string, laterDate, earlierDate time.Time, indexID int) (indices.Index, error) {
	if indexID != 0 {
		return indices.Parse(indexID)
	}

	var common []indices.Index
	for _, idx := range indices.All() {
		_, hasLater := findRun(summaries, contract, laterDate, idx)
		_, hasEarlier := findRun(summaries, contract, earlierDate, idx)
		if hasLater && hasEarlier {
			common = append(common, idx)
		}
	}
	switch len(common) {
	case 1:
		return common[0], nil
	case 0:
		return 0, fmt.Errorf("no index calculated at both dates for %s: %w", contract, shared.ErrPrejudicePrecondition)
	default:
		return 0, fmt.Errorf("%d indices calculated at both dates for %s, pick one: %w",
			len(common), contract, shared.ErrPrejudicePrecondition)
	}
}

func findRun(summaries []calc.RunSummary, contract string, referenceDate time.Time, index indices.Index) (calc.RunSummary, bool) {
	for _, sum := range summaries {
		if sum.Property == contract && sum.Index == index && sameDay(sum.ReferenceDate, referenceDate) {
			return sum, true
		}
	}
	return calc.RunSummary{}, false
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func grandTotal(sum calc.RunSummary) decimal.Decimal {
	honorarios := shared.RoundMoney(sum.SubTotal.Mul(shared.Percent(sum.HonorariosRate)))
	return sum.SubTotal.Add(honorarios)
}
