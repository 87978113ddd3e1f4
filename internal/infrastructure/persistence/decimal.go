package persistence

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// parseSummaryDecimal converts an aggregate column scanned as text into a
// decimal. Aggregates over empty partitions scan as the empty string.
func parseSummaryDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse aggregate %q: %w", s, err)
	}
	return d, nil
}
