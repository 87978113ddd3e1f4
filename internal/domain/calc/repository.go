package calc

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emgea/siscalculo/internal/domain/indices"
)

// InstallmentRepository defines the interface for staged installment persistence
type InstallmentRepository interface {
	// ReplaceForRun swaps the staged rows of (property, referenceDate) for
	// the given batch. The previous run's rows are discarded.
	ReplaceForRun(ctx context.Context, property string, referenceDate time.Time, batch []Installment) error
	ListForRun(ctx context.Context, property string, referenceDate time.Time) ([]Installment, error)
}

// PrescribedRepository defines the interface for prescribed installment persistence
type PrescribedRepository interface {
	DeletePartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) error
	InsertBatch(ctx context.Context, batch []PrescribedInstallment) error
	ListPartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) ([]PrescribedInstallment, error)
}

// LineRepository defines the interface for calculation line persistence.
// Lines partition by (property, referenceDate, index); reruns of a partition
// replace it wholesale and never touch the others.
type LineRepository interface {
	DeletePartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) error
	InsertBatch(ctx context.Context, batch []Line) error
	// ListPartition returns lines ordered by due date then kind.
	ListPartition(ctx context.Context, property string, referenceDate time.Time, index indices.Index) ([]Line, error)
	// ListByReference returns every line of the reference date, optionally
	// narrowed to one property, across all indices.
	ListByReference(ctx context.Context, referenceDate time.Time, property string) ([]Line, error)
	// Properties returns the distinct property ids holding persisted lines.
	Properties(ctx context.Context) ([]string, error)
	// ReferenceDatesFor returns the distinct reference dates persisted for a
	// property, most recent first.
	ReferenceDatesFor(ctx context.Context, property string) ([]time.Time, error)
	// RunSummaries lists the persisted (property, referenceDate, index)
	// partitions with line counts, most recent first.
	RunSummaries(ctx context.Context) ([]RunSummary, error)
}

// RunSummary describes one persisted calculation partition.
type RunSummary struct {
	Property       string
	ReferenceDate  time.Time
	Index          indices.Index
	Lines          int
	SubTotal       decimal.Decimal
	HonorariosRate decimal.Decimal
}

// LedgerRepository appends prejudice losses to the receivables ledger.
type LedgerRepository interface {
	// Append inserts a single ledger row and returns its id.
	Append(ctx context.Context, entry LedgerEntry) (int64, error)
}

// LedgerEntry is one receivables-ledger row recording a prejudice loss.
type LedgerEntry struct {
	Contract     string
	Creditor     string
	CarteiraID   int
	OcorrenciaID int
	StatusID     int
	Amount       decimal.Decimal
	RecordedBy   string
	RecordedAt   time.Time
}

// PropertyRepository resolves property metadata for reports.
type PropertyRepository interface {
	// Find returns the directory entry for a property id, or ErrNotFound.
	Find(ctx context.Context, property string) (*PropertyInfo, error)
}

// PropertyInfo is the directory record shown on statement headers.
type PropertyInfo struct {
	Property        string
	CondominiumName string
	Address         string
	Reclamante      string
}

// TxManager runs a function inside a single database transaction; every
// repository call made through the ctx it passes shares that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
