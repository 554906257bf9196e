// Package normalize maps heterogeneous raw rows (CSV, JSON, XLSX, HTTP bodies)
// onto Sale records. Column naming differs between sources, so every field is
// resolved through an ordered list of candidate keys.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/aggregation"
)

// Row is one raw input record keyed by source column name.
type Row map[string]interface{}

// Reason explains why a row was rejected.
type Reason string

const (
	ReasonMissingCustomerID   Reason = "missing_customer_id"
	ReasonMissingCustomerName Reason = "missing_customer_name"
	ReasonMissingProductID    Reason = "missing_product_id"
	ReasonMissingDate         Reason = "missing_date"
	ReasonInvalidDate         Reason = "invalid_date"
)

// Result is the outcome of normalizing one row. A rejected row carries a
// Reason and a zero Sale.
type Result struct {
	Sale   v1.Sale
	Reason Reason
}

// Rejected reports whether the row was rejected.
func (r Result) Rejected() bool {
	return r.Reason != ""
}

// dateLayouts are tried in order for string dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// Normalizer is safe for concurrent use once built.
type Normalizer struct {
	aliases  Aliases
	location *time.Location
}

// NewNormalizer builds a Normalizer. Zone-less dates are read in loc.
func NewNormalizer(aliases Aliases, loc *time.Location) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{aliases: aliases, location: loc}
}

// Normalize resolves, coerces and validates one row. It never fails: bad
// input yields a rejected Result and unparseable numbers become zero.
func (n *Normalizer) Normalize(row Row) Result {
	s := v1.Sale{
		CustomerID:         n.text(row, FieldCustomerID),
		CustomerName:       n.text(row, FieldCustomerName),
		PhoneNumber:        n.text(row, FieldPhoneNumber),
		Gender:             n.text(row, FieldGender),
		Age:                aggregation.ParseInt(n.lookup(row, FieldAge)),
		CustomerRegion:     n.text(row, FieldCustomerRegion),
		CustomerType:       n.text(row, FieldCustomerType),
		ProductID:          n.text(row, FieldProductID),
		ProductName:        n.text(row, FieldProductName),
		Brand:              n.text(row, FieldBrand),
		ProductCategory:    n.text(row, FieldProductCategory),
		Tags:               parseTags(n.lookup(row, FieldTags)),
		Quantity:           aggregation.ParseInt(n.lookup(row, FieldQuantity)),
		PricePerUnit:       aggregation.ParseDecimal(n.lookup(row, FieldPricePerUnit)),
		DiscountPercentage: aggregation.ParseDecimal(n.lookup(row, FieldDiscountPercentage)),
		TotalAmount:        aggregation.ParseDecimal(n.lookup(row, FieldTotalAmount)),
		FinalAmount:        aggregation.ParseDecimal(n.lookup(row, FieldFinalAmount)),
		PaymentMethod:      n.text(row, FieldPaymentMethod),
		OrderStatus:        n.text(row, FieldOrderStatus),
		DeliveryType:       n.text(row, FieldDeliveryType),
		StoreID:            n.text(row, FieldStoreID),
		StoreLocation:      n.text(row, FieldStoreLocation),
		SalespersonID:      n.text(row, FieldSalespersonID),
		EmployeeName:       n.text(row, FieldEmployeeName),
	}

	switch {
	case s.CustomerID == "":
		return Result{Reason: ReasonMissingCustomerID}
	case s.CustomerName == "":
		return Result{Reason: ReasonMissingCustomerName}
	case s.ProductID == "":
		return Result{Reason: ReasonMissingProductID}
	}

	date, reason := n.parseDate(n.lookup(row, FieldDate))
	if reason != "" {
		return Result{Reason: reason}
	}
	s.Date = date

	return Result{Sale: s}
}

// lookup returns the first candidate value that is present and non-empty.
func (n *Normalizer) lookup(row Row, field Field) interface{} {
	for _, key := range n.aliases[field] {
		if v, ok := row[key]; ok && present(v) {
			return v
		}
	}
	return nil
}

func (n *Normalizer) text(row Row, field Field) string {
	return strings.TrimSpace(stringify(n.lookup(row, field)))
}

func (n *Normalizer) parseDate(v interface{}) (time.Time, Reason) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, ReasonMissingDate
	case time.Time:
		return d, ""
	case string:
		return n.parseDateString(d)
	case json.Number:
		if ms, err := d.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), ""
		}
		if f, err := d.Float64(); err == nil {
			return time.UnixMilli(int64(f)).UTC(), ""
		}
		return n.parseDateString(d.String())
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return time.Time{}, ReasonInvalidDate
		}
		return time.UnixMilli(int64(d)).UTC(), ""
	case int:
		return time.UnixMilli(int64(d)).UTC(), ""
	case int64:
		return time.UnixMilli(d).UTC(), ""
	}
	return time.Time{}, ReasonInvalidDate
}

func (n *Normalizer) parseDateString(raw string) (time.Time, Reason) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ReasonMissingDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, n.location); err == nil {
			return t, ""
		}
	}
	return time.Time{}, ReasonInvalidDate
}

// present mirrors a truthiness test: nil, "", zero numbers and false are
// treated as absent so the next candidate key is tried.
func present(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case time.Time:
		return !t.IsZero()
	}
	return true
}

// stringify renders scalar values as text. Floats never use exponent
// notation, so numeric phone numbers survive.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case []string:
		return strings.Join(t, ",")
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// parseTags passes lists through and splits strings on commas, trimming
// whitespace, stripping quote characters and dropping empty entries.
func parseTags(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...)
	case []interface{}:
		tags := make([]string, 0, len(t))
		for _, e := range t {
			tags = append(tags, stringify(e))
		}
		return tags
	}

	tags := []string{}
	for _, part := range strings.Split(stringify(v), ",") {
		tag := strings.ReplaceAll(strings.TrimSpace(part), `"`, "")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
