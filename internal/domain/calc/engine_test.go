package calc

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/domain/shared"
)

type fixedFactors struct {
	rate         decimal.Decimal
	approximated bool
	calls        int
}

func (f *fixedFactors) FactorBetween(_ context.Context, _ indices.Index, _, _ indices.Month) (indices.Factor, error) {
	f.calls++
	return indices.Factor{Rate: f.rate, Approximated: f.approximated}, nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func params(ref time.Time) RunParams {
	return RunParams{
		Property:       "148100015830",
		ReferenceDate:  ref,
		Index:          indices.IndexINPC,
		HonorariosRate: decimal.NewFromInt(10),
		ActingUser:     "sistema",
	}
}

func TestComputeLineOverdue(t *testing.T) {
	// 5% compounded update over 13 broken months
	factors := &fixedFactors{rate: money("0.05")}
	engine := NewEngine(factors, DefaultPolicy())

	inst := Installment{
		Property: "148100015830",
		DueDate:  day(2023, time.June, 10),
		Cota:     money("350.00"),
		Kind:     1,
	}
	line, err := engine.ComputeLine(context.Background(), params(day(2024, time.June, 30)), inst)
	require.NoError(t, err)

	assert.Equal(t, 13, line.MonthsOverdue)
	assert.True(t, line.IndexFactor.Equal(money("0.0500")), "factor %s", line.IndexFactor)
	// updated principal 367.50
	assert.True(t, line.MonetaryUpdate.Equal(money("17.50")), "update %s", line.MonetaryUpdate)
	// 367.50 × 1% × 13
	assert.True(t, line.Interest.Equal(money("47.78")), "interest %s", line.Interest)
	// post-cutoff due date: 2% of 367.50
	assert.True(t, line.Fine.Equal(money("7.35")), "fine %s", line.Fine)
	assert.True(t, line.Total.Equal(money("422.63")), "total %s", line.Total)
}

func TestComputeLineOldFineRegime(t *testing.T) {
	factors := &fixedFactors{rate: money("0.05")}
	engine := NewEngine(factors, DefaultPolicy())

	inst := Installment{DueDate: day(2003, time.January, 10), Cota: money("100.00"), Kind: 1}
	line, err := engine.ComputeLine(context.Background(), params(day(2003, time.June, 30)), inst)
	require.NoError(t, err)

	// cutoff day itself still pays the 10% fine on the updated 105.00
	assert.True(t, line.Fine.Equal(money("10.50")), "fine %s", line.Fine)

	inst.DueDate = day(2003, time.January, 11)
	line, err = engine.ComputeLine(context.Background(), params(day(2003, time.June, 30)), inst)
	require.NoError(t, err)
	assert.True(t, line.Fine.Equal(money("2.10")), "fine %s", line.Fine)
}

func TestComputeLineNotYetDue(t *testing.T) {
	factors := &fixedFactors{rate: money("0.05")}
	engine := NewEngine(factors, DefaultPolicy())

	inst := Installment{DueDate: day(2024, time.December, 10), Cota: money("350.00"), Kind: 2}
	line, err := engine.ComputeLine(context.Background(), params(day(2024, time.June, 30)), inst)
	require.NoError(t, err)

	assert.Equal(t, 0, line.MonthsOverdue)
	assert.True(t, line.MonetaryUpdate.IsZero())
	assert.True(t, line.Interest.IsZero())
	assert.True(t, line.Fine.IsZero())
	assert.True(t, line.Total.Equal(money("350.00")))
	assert.Zero(t, factors.calls, "index service must not be consulted")
}

func TestComputeLineTotalIdentity(t *testing.T) {
	// the persisted columns must reconcile exactly after rounding
	factors := &fixedFactors{rate: money("0.123456")}
	engine := NewEngine(factors, DefaultPolicy())

	inst := Installment{DueDate: day(2022, time.March, 7), Cota: money("123.45"), Kind: 3}
	line, err := engine.ComputeLine(context.Background(), params(day(2024, time.June, 30)), inst)
	require.NoError(t, err)

	sum := line.Cota.Add(line.MonetaryUpdate).Add(line.Interest).Add(line.Fine).Sub(line.Discount)
	assert.True(t, line.Total.Equal(sum), "total %s, components %s", line.Total, sum)
	assert.Equal(t, int32(-4), line.IndexFactor.Exponent())
}

func TestComputeLineUnsupportedIndex(t *testing.T) {
	engine := NewEngine(&fixedFactors{}, DefaultPolicy())
	p := params(day(2024, time.June, 30))
	p.Index = indices.Index(6)

	_, err := engine.ComputeLine(context.Background(), p, Installment{DueDate: day(2023, time.June, 10), Cota: money("10.00")})
	assert.ErrorIs(t, err, shared.ErrUnsupportedIndex)
}

func TestComputeAllAbortsOnFirstError(t *testing.T) {
	engine := NewEngine(&failingFactors{}, DefaultPolicy())
	p := params(day(2024, time.June, 30))

	lines, err := engine.ComputeAll(context.Background(), p, []Installment{
		{DueDate: day(2023, time.June, 10), Cota: money("10.00")},
		{DueDate: day(2023, time.July, 10), Cota: money("20.00")},
	})
	require.Error(t, err)
	assert.Nil(t, lines)
}

type failingFactors struct{}

func (failingFactors) FactorBetween(context.Context, indices.Index, indices.Month, indices.Month) (indices.Factor, error) {
	return indices.Factor{}, assert.AnError
}

func TestAggregate(t *testing.T) {
	lines := []Line{
		{Cota: money("100.00"), MonetaryUpdate: money("5.00"), Interest: money("10.00"), Fine: money("2.00"), Discount: money("0.00"), Total: money("117.00")},
		{Cota: money("200.00"), MonetaryUpdate: money("8.00"), Interest: money("12.00"), Fine: money("4.00"), Discount: money("1.00"), Total: money("223.00")},
	}
	totals := Aggregate(lines, decimal.NewFromInt(10))

	assert.Equal(t, 2, totals.Count)
	assert.True(t, totals.SumCota.Equal(money("300.00")))
	assert.True(t, totals.SumUpdate.Equal(money("13.00")))
	assert.True(t, totals.SumInterest.Equal(money("22.00")))
	assert.True(t, totals.SumFine.Equal(money("6.00")))
	assert.True(t, totals.SumDiscount.Equal(money("1.00")))
	assert.True(t, totals.SubTotal.Equal(money("340.00")))
	assert.True(t, totals.Honorarios.Equal(money("34.00")))
	assert.True(t, totals.GrandTotal.Equal(money("374.00")))
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil, decimal.NewFromInt(20))
	assert.Zero(t, totals.Count)
	assert.True(t, totals.GrandTotal.IsZero())
}

func TestWindow(t *testing.T) {
	w := Window{
		Start: indices.Month{Year: 2019, Mon: time.March},
		End:   indices.Month{Year: 2020, Mon: time.February},
	}
	assert.True(t, w.Contains(day(2019, time.March, 1)))
	assert.True(t, w.Contains(day(2020, time.February, 29)))
	assert.False(t, w.Contains(day(2020, time.March, 1)))
	assert.False(t, w.Contains(day(2019, time.February, 28)))
	assert.Equal(t, "03/2019 - 02/2020", w.Label())
}
