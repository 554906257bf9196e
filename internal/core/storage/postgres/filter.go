package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/salesview-lab/salesview/internal/core/query"
)

// sortColumns maps the fixed sort fields onto indexed columns.
var sortColumns = map[query.SortField]string{
	query.SortByDate:         "date",
	query.SortByQuantity:     "quantity",
	query.SortByCustomerName: "customer_name",
}

// whereClause accumulates predicates and their positional arguments.
type whereClause struct {
	conds []string
	args  []interface{}
}

// add appends a condition. format receives the placeholder index as %[1]d
// so the same argument may appear more than once.
func (w *whereClause) add(format string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// buildWhere translates the filter into SQL. Fetch, count and summary all go
// through here so they see the same matching set.
func buildWhere(f query.Filter) *whereClause {
	w := &whereClause{}

	if f.Search != "" {
		w.add("(customer_name ILIKE $%[1]d OR phone_number ILIKE $%[1]d)", containsPattern(f.Search))
	}

	addIn := func(column string, values []string) {
		if len(values) > 0 {
			w.add(column+" = ANY($%[1]d)", pq.Array(values))
		}
	}
	addIn("customer_region", f.CustomerRegions)
	addIn("gender", f.Genders)
	addIn("product_category", f.ProductCategories)
	addIn("payment_method", f.PaymentMethods)

	if len(f.Tags) > 0 {
		w.add("tags && $%[1]d::text[]", pq.Array(f.Tags))
	}

	if f.AgeMin != nil {
		w.add("age >= $%[1]d", *f.AgeMin)
	}
	if f.AgeMax != nil {
		w.add("age <= $%[1]d", *f.AgeMax)
	}
	if f.DateFrom != nil {
		w.add("date >= $%[1]d", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.add("date <= $%[1]d", *f.DateTo)
	}

	return w
}

// buildFindQuery returns the page query and its arguments. Ties on the sort
// column are broken by id so consecutive pages never overlap.
func buildFindQuery(spec query.Spec) (string, []interface{}) {
	w := buildWhere(spec.Filter)

	column, ok := sortColumns[spec.Sort.Field]
	if !ok {
		column = sortColumns[query.DefaultSort.Field]
	}
	direction := "ASC"
	if spec.Sort.Desc {
		direction = "DESC"
	}

	args := append(w.args, spec.Page.Limit, spec.Page.Offset())
	q := fmt.Sprintf(querySelectSales, strings.Join(saleColumns, ", ")) +
		w.String() +
		fmt.Sprintf(" ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d", column, direction, len(args)-1, len(args))

	return q, args
}
