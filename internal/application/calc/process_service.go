package calc

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/domain/shared"
	"github.com/emgea/siscalculo/internal/infrastructure/audit"
	"github.com/emgea/siscalculo/internal/infrastructure/spreadsheet"
)

// WorksheetParser reads the installment worksheet; satisfied by
// spreadsheet.Parser.
type WorksheetParser interface {
	Parse(r io.Reader) (*spreadsheet.Document, error)
}

// ProcessInput is the parameter bundle of one processing run.
type ProcessInput struct {
	File           io.Reader
	ReferenceDate  time.Time
	IndexID        int
	HonorariosRate decimal.Decimal
	Prescription   *calc.Window
	ActingUser     string
}

// ProcessResult reports the outcome of a run: counts per row destiny and the
// partition the results landed in.
type ProcessResult struct {
	Property        string          `json:"property"`
	CondominiumName string          `json:"condominiumName"`
	ReferenceDate   time.Time       `json:"referenceDate"`
	IndexID         int             `json:"indexId"`
	Inserted        int             `json:"inserted"`
	Rejected        int             `json:"rejected"`
	Prescribed      int             `json:"prescribed"`
	Approximated    int             `json:"approximated"`
	SubTotal        decimal.Decimal `json:"subTotal"`
	GrandTotal      decimal.Decimal `json:"grandTotal"`
}

// ProcessService runs one calculation: parse, prescription filter, engine,
// and a single transaction that replaces the partition.
type ProcessService struct {
	parser       WorksheetParser
	engine       *calc.Engine
	installments calc.InstallmentRepository
	prescribed   calc.PrescribedRepository
	lines        calc.LineRepository
	tx           calc.TxManager
	audit        audit.Sink
	logger       *zap.Logger
	now          func() time.Time
}

// NewProcessService creates a new ProcessService
func NewProcessService(
	parser WorksheetParser,
	engine *calc.Engine,
	installments calc.InstallmentRepository,
	prescribed calc.PrescribedRepository,
	lines calc.LineRepository,
	tx calc.TxManager,
	auditSink audit.Sink,
	logger *zap.Logger,
) *ProcessService {
	return &ProcessService{
		parser:       parser,
		engine:       engine,
		installments: installments,
		prescribed:   prescribed,
		lines:        lines,
		tx:           tx,
		audit:        auditSink,
		logger:       logger,
		now:          time.Now,
	}
}

// Process executes one calculation run. All database effects happen in one
// transaction keyed by (property, referenceDate, indexId): prior lines and
// prescribed rows of the partition are removed, then the new batch is
// inserted. Failures leave no partial state.
func (s *ProcessService) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	index, err := indices.Parse(in.IndexID)
	if err != nil {
		return nil, err
	}
	if in.Prescription != nil {
		if in.Prescription.Start == (indices.Month{}) || in.Prescription.End == (indices.Month{}) {
			return nil, fmt.Errorf("prescription window needs both start and end: %w", shared.ErrDomainRuleViolation)
		}
		if in.Prescription.Start.After(in.Prescription.End) {
			return nil, fmt.Errorf("prescription window is inverted: %w", shared.ErrDomainRuleViolation)
		}
	}
	if in.ActingUser == "" {
		in.ActingUser = "sistema"
	}

	doc, err := s.parser.Parse(in.File)
	if err != nil {
		return nil, err
	}

	params := calc.RunParams{
		Property:       doc.Property,
		ReferenceDate:  in.ReferenceDate,
		Index:          index,
		HonorariosRate: in.HonorariosRate,
		ActingUser:     in.ActingUser,
	}

	staged, prescribedRows := s.split(doc, params, in.Prescription)

	lines, err := s.engine.ComputeAll(ctx, params, staged)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.lines.DeletePartition(ctx, doc.Property, in.ReferenceDate, index); err != nil {
			return fmt.Errorf("%v: %w", err, shared.ErrPersistenceConflict)
		}
		if err := s.prescribed.DeletePartition(ctx, doc.Property, in.ReferenceDate, index); err != nil {
			return fmt.Errorf("%v: %w", err, shared.ErrPersistenceConflict)
		}
		if err := s.installments.ReplaceForRun(ctx, doc.Property, in.ReferenceDate, staged); err != nil {
			return err
		}
		if err := s.prescribed.InsertBatch(ctx, prescribedRows); err != nil {
			return err
		}
		return s.lines.InsertBatch(ctx, lines)
	})
	if err != nil {
		return nil, err
	}

	approximated := 0
	for _, l := range lines {
		if l.Approximated {
			approximated++
		}
	}
	totals := calc.Aggregate(lines, in.HonorariosRate)

	s.audit.Record(ctx, audit.Event{
		Action:        "calculation.process",
		Property:      doc.Property,
		ReferenceDate: in.ReferenceDate,
		IndexID:       in.IndexID,
		ActingUser:    in.ActingUser,
		Detail: map[string]any{
			"inserted":   len(lines),
			"rejected":   len(doc.Rejected),
			"prescribed": len(prescribedRows),
		},
	})
	s.logger.Info("calculation run persisted",
		zap.String("property", doc.Property),
		zap.Time("reference_date", in.ReferenceDate),
		zap.Int("index_id", in.IndexID),
		zap.Int("inserted", len(lines)),
		zap.Int("rejected", len(doc.Rejected)),
		zap.Int("prescribed", len(prescribedRows)),
		zap.Int("approximated", approximated),
	)

	return &ProcessResult{
		Property:        doc.Property,
		CondominiumName: doc.CondominiumName,
		ReferenceDate:   in.ReferenceDate,
		IndexID:         in.IndexID,
		Inserted:        len(lines),
		Rejected:        len(doc.Rejected),
		Prescribed:      len(prescribedRows),
		Approximated:    approximated,
		SubTotal:        totals.SubTotal,
		GrandTotal:      totals.GrandTotal,
	}, nil
}

// split routes parsed rows either to the staging batch or, when the due
// month falls inside the prescription window, to the prescribed batch.
// A row never lands in both.
func (s *ProcessService) split(doc *spreadsheet.Document, params calc.RunParams, window *calc.Window) ([]calc.Installment, []calc.PrescribedInstallment) {
	staged := make([]calc.Installment, 0, len(doc.Rows))
	var prescribedRows []calc.PrescribedInstallment

	for _, row := range doc.Rows {
		if window != nil && window.Contains(row.DueDate) {
			prescribedRows = append(prescribedRows, calc.PrescribedInstallment{
				Property:        doc.Property,
				CondominiumName: doc.CondominiumName,
				DueDate:         row.DueDate,
				ReferenceDate:   params.ReferenceDate,
				Index:           params.Index,
				Cota:            row.Value,
				Kind:            row.Kind,
				PeriodLabel:     window.Label(),
				PrescribedBy:    params.ActingUser,
				PrescribedAt:    s.now(),
			})
			continue
		}
		staged = append(staged, calc.Installment{
			Property:        doc.Property,
			CondominiumName: doc.CondominiumName,
			DueDate:         row.DueDate,
			ReferenceDate:   params.ReferenceDate,
			Cota:            row.Value,
			Kind:            row.Kind,
		})
	}
	return staged, prescribedRows
}
