package indices

import (
	"context"
	"fmt"

	"github.com/emgea/siscalculo/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PointRepository loads index observations from the series store.
type PointRepository interface {
	// RatesBetween returns the points of the index whose month lies in the
	// closed interval [from, to], ordered by month.
	RatesBetween(ctx context.Context, index Index, from, to Month) ([]Point, error)
}

// FactorCache memoises compounded factors. Implementations may drop entries
// at any time; a miss is always safe.
type FactorCache interface {
	Get(ctx context.Context, key string) (decimal.Decimal, bool)
	Set(ctx context.Context, key string, rate decimal.Decimal)
}

// Factor is the compounded variation of an index over an interval, expressed
// as a rate r so that updated = principal × (1 + r). Approximated is set when
// the series had no observation at all over the interval and the mean-rate
// schedule was used instead.
type Factor struct {
	Rate         decimal.Decimal
	Approximated bool
}

// DefaultFallbackRates is the mean monthly rate per index, in percent, used
// when a series has no observation over the requested interval. Overridable
// through configuration.
func DefaultFallbackRates() map[Index]decimal.Decimal {
	return map[Index]decimal.Decimal{
		IndexTR:   decimal.NewFromFloat(0.09),
		IndexINPC: decimal.NewFromFloat(0.45),
		IndexIGPM: decimal.NewFromFloat(0.55),
		IndexIPCA: decimal.NewFromFloat(0.47),
	}
}

// FactorService computes compounded index factors over month intervals.
type FactorService struct {
	points   PointRepository
	cache    FactorCache
	fallback map[Index]decimal.Decimal
}

// NewFactorService wires the series store and cache. A nil fallback map
// falls back to DefaultFallbackRates; a nil cache disables memoisation.
func NewFactorService(points PointRepository, cache FactorCache, fallback map[Index]decimal.Decimal) *FactorService {
	if fallback == nil {
		fallback = DefaultFallbackRates()
	}
	return &FactorService{points: points, cache: cache, fallback: fallback}
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// FactorBetween returns the compounded factor of the index over the closed
// interval [from, to]. An inverted interval yields a zero rate. Months with
// no observation inside a partially covered interval count as rate 0.
func (s *FactorService) FactorBetween(ctx context.Context, index Index, from, to Month) (Factor, error) {
	if !index.Valid() {
		return Factor{}, fmt.Errorf("index %d: %w", int(index), shared.ErrUnsupportedIndex)
	}
	if from.After(to) {
		return Factor{Rate: decimal.Zero}, nil
	}

	key := fmt.Sprintf("factor:%d:%d:%d", int(index), from.Key(), to.Key())
	if s.cache != nil {
		if rate, ok := s.cache.Get(ctx, key); ok {
			return Factor{Rate: rate}, nil
		}
	}

	points, err := s.points.RatesBetween(ctx, index, from, to)
	if err != nil {
		return Factor{}, fmt.Errorf("load index %d series: %w", int(index), err)
	}
	if len(points) == 0 {
		return Factor{Rate: s.approximate(index, from, to), Approximated: true}, nil
	}

	factor := one
	for _, p := range points {
		factor = factor.Mul(one.Add(p.RatePercent.Div(hundred)))
	}
	rate := factor.Sub(one)
	if s.cache != nil {
		s.cache.Set(ctx, key, rate)
	}
	return Factor{Rate: rate}, nil
}

// approximate compounds the mean monthly rate of the index over every month
// of the interval, inclusive on both ends.
func (s *FactorService) approximate(index Index, from, to Month) decimal.Decimal {
	mean, ok := s.fallback[index]
	if !ok {
		return decimal.Zero
	}
	months := MonthsBetween(from, to) + 1
	monthly := one.Add(mean.Div(hundred))
	factor := one
	for i := 0; i < months; i++ {
		factor = factor.Mul(monthly)
	}
	return factor.Sub(one)
}
