package aggregation

import (
	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/shopspring/decimal"
)

// Summary holds the running totals over a filtered set of sales.
// The zero value is the summary of an empty set.
type Summary struct {
	TotalUnits        int64           `json:"totalUnitsSold"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	TotalDiscount     decimal.Decimal `json:"totalDiscount"`
	TotalTransactions int64           `json:"totalTransactions"`
}

// AgeRange is the global minimum and maximum customer age.
type AgeRange struct {
	MinAge int `json:"minAge"`
	MaxAge int `json:"maxAge"`
}

// DefaultAgeRange is reported when no sales are stored.
var DefaultAgeRange = AgeRange{MinAge: 0, MaxAge: 100}

// SummaryAccumulator folds sales into a Summary in one pass without keeping them.
type SummaryAccumulator struct {
	units        measure
	amount       measure
	discount     measure
	transactions measure
}

// NewSummaryAccumulator returns an accumulator with all measures empty.
func NewSummaryAccumulator() *SummaryAccumulator {
	return &SummaryAccumulator{
		units:        newMeasure(OpSum),
		amount:       newMeasure(OpSum),
		discount:     newMeasure(OpSum),
		transactions: newMeasure(OpCount),
	}
}

// Add folds one sale into the running totals.
func (a *SummaryAccumulator) Add(s *v1.Sale) {
	a.units.add(decimal.NewFromInt(int64(s.Quantity)))
	a.amount.add(s.TotalAmount)
	a.discount.add(s.Discount())
	a.transactions.add(decimal.Zero)
}

// Summary returns the totals folded so far.
func (a *SummaryAccumulator) Summary() Summary {
	return Summary{
		TotalUnits:        a.units.result().IntPart(),
		TotalAmount:       a.amount.result(),
		TotalDiscount:     a.discount.result(),
		TotalTransactions: a.transactions.result().IntPart(),
	}
}

// AgeRangeAccumulator tracks the min and max age across sales.
type AgeRangeAccumulator struct {
	min measure
	max measure
}

func NewAgeRangeAccumulator() *AgeRangeAccumulator {
	return &AgeRangeAccumulator{
		min: newMeasure(OpMin),
		max: newMeasure(OpMax),
	}
}

func (a *AgeRangeAccumulator) Add(age int) {
	v := decimal.NewFromInt(int64(age))
	a.min.add(v)
	a.max.add(v)
}

// Range returns the observed range, or DefaultAgeRange when nothing was added.
func (a *AgeRangeAccumulator) Range() AgeRange {
	if !a.min.seen {
		return DefaultAgeRange
	}
	return AgeRange{
		MinAge: int(a.min.result().IntPart()),
		MaxAge: int(a.max.result().IntPart()),
	}
}
