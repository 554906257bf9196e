package aggregation

import (
	"github.com/shopspring/decimal"
)

// Supported reduce operators. Summary and range measures are built from these.
const (
	OpCount = "count"
	OpSum   = "sum"
	OpMin   = "min"
	OpMax   = "max"
)

// Reducer defines how one measure folds a stream of values into a single value.
type Reducer interface {
	// Initial returns the measure after the first value.
	// count → 1; sum/min/max → the incoming value itself.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds an incoming value into the current one.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Reducers is the registry of supported operators.
var Reducers = map[string]Reducer{
	OpCount: countReducer{},
	OpSum:   sumReducer{},
	OpMin:   minReducer{},
	OpMax:   maxReducer{},
}

// ValidOperator reports whether op is a registered reduce operator.
func ValidOperator(op string) bool {
	_, ok := Reducers[op]
	return ok
}

// countReducer increments by 1 per value. The incoming value is ignored.
type countReducer struct{}

func (countReducer) Initial(_ decimal.Decimal) decimal.Decimal { return decimal.NewFromInt(1) }
func (countReducer) Apply(cur, _ decimal.Decimal) decimal.Decimal {
	return cur.Add(decimal.NewFromInt(1))
}

type sumReducer struct{}

func (sumReducer) Initial(v decimal.Decimal) decimal.Decimal      { return v }
func (sumReducer) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }

type minReducer struct{}

func (minReducer) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (minReducer) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.LessThan(cur) {
		return inc
	}
	return cur
}

type maxReducer struct{}

func (maxReducer) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (maxReducer) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.GreaterThan(cur) {
		return inc
	}
	return cur
}

// measure is one running reduce over a stream of values.
type measure struct {
	reducer Reducer
	value   decimal.Decimal
	seen    bool
}

func newMeasure(op string) measure {
	return measure{reducer: Reducers[op]}
}

func (m *measure) add(v decimal.Decimal) {
	if !m.seen {
		m.value = m.reducer.Initial(v)
		m.seen = true
		return
	}
	m.value = m.reducer.Apply(m.value, v)
}

// result returns the folded value, or zero when nothing was added.
func (m *measure) result() decimal.Decimal {
	if !m.seen {
		return decimal.Zero
	}
	return m.value
}
