package calc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emgea/siscalculo/internal/domain/indices"
)

// Installment is a worksheet row staged for calculation. It is keyed by
// (Property, DueDate, ReferenceDate); the most recent run for the pair
// (Property, ReferenceDate) owns the rows.
type Installment struct {
	Property        string
	CondominiumName string
	DueDate         time.Time
	ReferenceDate   time.Time
	Cota            decimal.Decimal
	Kind            int
}

// PrescribedInstallment is a worksheet row excluded from the run because its
// due date fell inside the prescription window. It is retained across reruns
// as the history of the exclusion.
type PrescribedInstallment struct {
	Property        string
	CondominiumName string
	DueDate         time.Time
	ReferenceDate   time.Time
	Index           indices.Index
	Cota            decimal.Decimal
	Kind            int
	PeriodLabel     string
	PrescribedBy    string
	PrescribedAt    time.Time
}

// Line is one computed statement row. HonorariosRate is carried on the line
// but not applied to Total; reports apply it at aggregation time.
type Line struct {
	Property       string          `json:"property"`
	DueDate        time.Time       `json:"dueDate"`
	ReferenceDate  time.Time       `json:"referenceDate"`
	Index          indices.Index   `json:"indexId"`
	Kind           int             `json:"kind"`
	Cota           decimal.Decimal `json:"cota"`
	MonthsOverdue  int             `json:"monthsOverdue"`
	IndexFactor    decimal.Decimal `json:"indexFactor"`
	MonetaryUpdate decimal.Decimal `json:"monetaryUpdate"`
	Interest       decimal.Decimal `json:"interest"`
	Fine           decimal.Decimal `json:"fine"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	HonorariosRate decimal.Decimal `json:"honorariosRate"`
	Approximated   bool            `json:"approximated"`
}

// Window is an inclusive month interval used by the prescription filter.
type Window struct {
	Start indices.Month
	End   indices.Month
}

// Contains reports whether the month of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	key := indices.MonthOf(t).Key()
	return key >= w.Start.Key() && key <= w.End.Key()
}

// Label renders the window as "MM/YYYY - MM/YYYY", the form stored with each
// prescribed installment.
func (w Window) Label() string {
	return fmt.Sprintf("%s - %s", w.Start, w.End)
}

// Totals aggregates a set of lines. Honorarios and GrandTotal are derived
// from the subtotal and the run's honorários rate.
type Totals struct {
	Count       int             `json:"count"`
	SumCota     decimal.Decimal `json:"sumCota"`
	SumUpdate   decimal.Decimal `json:"sumUpdate"`
	SumInterest decimal.Decimal `json:"sumInterest"`
	SumFine     decimal.Decimal `json:"sumFine"`
	SumDiscount decimal.Decimal `json:"sumDiscount"`
	SubTotal    decimal.Decimal `json:"subTotal"`
	Honorarios  decimal.Decimal `json:"honorarios"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}
