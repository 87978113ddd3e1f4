package indices

import (
	"github.com/emgea/siscalculo/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Index identifies an economic index series. The accepted set is closed:
// the calculation engine refuses anything else before touching storage.
type Index int

const (
	IndexTR   Index = 2
	IndexINPC Index = 5
	IndexIGPM Index = 7
	IndexIPCA Index = 9
)

var indexNames = map[Index]string{
	IndexTR:   "TR",
	IndexINPC: "INPC",
	IndexIGPM: "IGP-M",
	IndexIPCA: "IPCA",
}

// All returns the accepted indices in catalog order.
func All() []Index {
	return []Index{IndexTR, IndexINPC, IndexIGPM, IndexIPCA}
}

// Valid reports whether id belongs to the accepted set.
func (i Index) Valid() bool {
	_, ok := indexNames[i]
	return ok
}

// Name returns the display name of the index, or empty for unknown ids.
func (i Index) Name() string {
	return indexNames[i]
}

// Parse validates a raw index id.
func Parse(id int) (Index, error) {
	idx := Index(id)
	if !idx.Valid() {
		return 0, shared.ErrUnsupportedIndex
	}
	return idx, nil
}

// Point is one monthly observation of an index series. StartMonth is the
// first day of the month the rate applies to.
type Point struct {
	Index      Index
	StartMonth Month
	// RatePercent is the monthly variation in percent, e.g. 0.45 for 0.45%.
	RatePercent decimal.Decimal
}
