package calc

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/domain/shared"
)

// FactorProvider yields compounded index factors; satisfied by
// indices.FactorService.
type FactorProvider interface {
	FactorBetween(ctx context.Context, index indices.Index, from, to indices.Month) (indices.Factor, error)
}

// RunParams is the parameter bundle of one calculation run.
type RunParams struct {
	Property       string
	ReferenceDate  time.Time
	Index          indices.Index
	HonorariosRate decimal.Decimal
	ActingUser     string
}

// Policy holds the surcharge rules. Rates are in percent.
type Policy struct {
	// FineCutoff separates the two fine regimes: due dates on or before it
	// pay FineRateBefore, later ones FineRateAfter.
	FineCutoff          time.Time
	FineRateBefore      decimal.Decimal
	FineRateAfter       decimal.Decimal
	MonthlyInterestRate decimal.Decimal
}

// DefaultPolicy returns the statutory surcharge rules: 10% fine up to
// 2003-01-10, 2% after, simple interest of 1% per month.
func DefaultPolicy() Policy {
	return Policy{
		FineCutoff:          time.Date(2003, time.January, 10, 0, 0, 0, 0, time.UTC),
		FineRateBefore:      decimal.NewFromInt(10),
		FineRateAfter:       decimal.NewFromInt(2),
		MonthlyInterestRate: decimal.NewFromInt(1),
	}
}

// Engine turns staged installments into statement lines. It holds no state
// across runs and is safe for concurrent use.
type Engine struct {
	factors FactorProvider
	policy  Policy
}

func NewEngine(factors FactorProvider, policy Policy) *Engine {
	return &Engine{factors: factors, policy: policy}
}

// ComputeLine produces the statement line for a single installment. Money is
// rounded to scale 2 only at assignment; the factor keeps full precision
// through the intermediates and is stored at scale 4.
func (e *Engine) ComputeLine(ctx context.Context, params RunParams, inst Installment) (Line, error) {
	if !params.Index.Valid() {
		return Line{}, shared.ErrUnsupportedIndex
	}

	cota := shared.RoundMoney(inst.Cota)
	line := Line{
		Property:       inst.Property,
		DueDate:        inst.DueDate,
		ReferenceDate:  params.ReferenceDate,
		Index:          params.Index,
		Kind:           inst.Kind,
		Cota:           cota,
		HonorariosRate: params.HonorariosRate,
		MonetaryUpdate: decimal.Zero,
		Interest:       decimal.Zero,
		Fine:           decimal.Zero,
		Discount:       decimal.Zero,
		IndexFactor:    decimal.Zero,
	}

	months := indices.OverdueMonths(inst.DueDate, params.ReferenceDate)
	if months == 0 {
		// not yet due: no surcharges, the statement restates the cota
		line.Total = cota
		return line, nil
	}
	line.MonthsOverdue = months

	factor, err := e.factors.FactorBetween(ctx, params.Index,
		indices.MonthOf(inst.DueDate), indices.MonthOf(params.ReferenceDate))
	if err != nil {
		return Line{}, fmt.Errorf("factor for %s due %s: %w",
			inst.Property, inst.DueDate.Format("2006-01-02"), err)
	}
	line.Approximated = factor.Approximated
	line.IndexFactor = shared.RoundRate(factor.Rate)

	updated := cota.Mul(decimal.NewFromInt(1).Add(factor.Rate))
	line.MonetaryUpdate = shared.RoundMoney(updated.Sub(cota))
	line.Interest = shared.RoundMoney(
		updated.Mul(shared.Percent(e.policy.MonthlyInterestRate)).Mul(decimal.NewFromInt(int64(months))))
	line.Fine = shared.RoundMoney(updated.Mul(shared.Percent(e.fineRate(inst.DueDate))))

	line.Total = cota.
		Add(line.MonetaryUpdate).
		Add(line.Interest).
		Add(line.Fine).
		Sub(line.Discount)
	return line, nil
}

// ComputeAll runs ComputeLine over every staged installment. Any single
// failure aborts the batch so the caller's transaction rolls back whole.
func (e *Engine) ComputeAll(ctx context.Context, params RunParams, installments []Installment) ([]Line, error) {
	lines := make([]Line, 0, len(installments))
	for _, inst := range installments {
		line, err := e.ComputeLine(ctx, params, inst)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (e *Engine) fineRate(dueDate time.Time) decimal.Decimal {
	if !dueDate.After(e.policy.FineCutoff) {
		return e.policy.FineRateBefore
	}
	return e.policy.FineRateAfter
}

// Aggregate folds a set of lines into run totals. Honorários applies to the
// subtotal only here, never on individual lines.
func Aggregate(lines []Line, honorariosRate decimal.Decimal) Totals {
	t := Totals{
		Count:       len(lines),
		SumCota:     decimal.Zero,
		SumUpdate:   decimal.Zero,
		SumInterest: decimal.Zero,
		SumFine:     decimal.Zero,
		SumDiscount: decimal.Zero,
		SubTotal:    decimal.Zero,
	}
	for _, l := range lines {
		t.SumCota = t.SumCota.Add(l.Cota)
		t.SumUpdate = t.SumUpdate.Add(l.MonetaryUpdate)
		t.SumInterest = t.SumInterest.Add(l.Interest)
		t.SumFine = t.SumFine.Add(l.Fine)
		t.SumDiscount = t.SumDiscount.Add(l.Discount)
		t.SubTotal = t.SubTotal.Add(l.Total)
	}
	t.Honorarios = shared.RoundMoney(t.SubTotal.Mul(shared.Percent(honorariosRate)))
	t.GrandTotal = t.SubTotal.Add(t.Honorarios)
	return t
}
