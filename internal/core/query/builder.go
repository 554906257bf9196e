package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPageLimit = 10
	defaultMaxLimit  = 100

	dateLayout = "2006-01-02"

	maxOffset = math.MaxInt32
)

// ErrInvalidQuery marks request parameters that cannot be interpreted (HTTP 400).
var ErrInvalidQuery = errors.New("invalid sales query")

// Params is the flat, loosely-typed set of request parameters.
// Every field is the raw query-string value; Build does the interpretation.
type Params struct {
	Search          string `form:"search"`
	CustomerRegion  string `form:"customerRegion"`
	Gender          string `form:"gender"`
	ProductCategory string `form:"productCategory"`
	Tags            string `form:"tags"`
	PaymentMethod   string `form:"paymentMethod"`
	AgeMin          string `form:"ageMin"`
	AgeMax          string `form:"ageMax"`
	DateFrom        string `form:"dateFrom"`
	DateTo          string `form:"dateTo"`
	SortBy          string `form:"sortBy"`
	SortOrder       string `form:"sortOrder"`
	Page            string `form:"page"`
	Limit           string `form:"limit"`
}

// Builder turns Params into a Spec.
type Builder struct {
	// Location defines calendar-day boundaries for dateFrom/dateTo.
	Location     *time.Location
	DefaultLimit int
	MaxLimit     int
}

// NewBuilder returns a Builder with the given day-boundary location and page limits.
// Non-positive limits fall back to 10 (default) and 100 (max).
func NewBuilder(loc *time.Location, defaultLimit, maxLimit int) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	if defaultLimit <= 0 {
		defaultLimit = defaultPageLimit
	}
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Builder{Location: loc, DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// Build interprets the parameters. It returns ErrInvalidQuery (wrapped) for
// non-integer age bounds and unparseable dates.
func (b *Builder) Build(p Params) (Spec, error) {
	filter, err := b.BuildFilter(p)
	if err != nil {
		return Spec{}, err
	}

	return Spec{
		Filter: filter,
		Sort:   buildSort(p.SortBy, p.SortOrder),
		Page:   b.buildPage(p.Page, p.Limit),
	}, nil
}

// BuildFilter interprets only the predicate parameters.
func (b *Builder) BuildFilter(p Params) (Filter, error) {
	f := Filter{
		Search:            strings.TrimSpace(p.Search),
		CustomerRegions:   SplitList(p.CustomerRegion),
		Genders:           SplitList(p.Gender),
		ProductCategories: SplitList(p.ProductCategory),
		Tags:              SplitList(p.Tags),
		PaymentMethods:    SplitList(p.PaymentMethod),
	}

	var err error
	if f.AgeMin, err = parseBound("ageMin", p.AgeMin); err != nil {
		return Filter{}, err
	}
	if f.AgeMax, err = parseBound("ageMax", p.AgeMax); err != nil {
		return Filter{}, err
	}

	if v := strings.TrimSpace(p.DateFrom); v != "" {
		day, err := b.parseDay(v)
		if err != nil {
			return Filter{}, invalidQueryf("invalid dateFrom %q", v)
		}
		from := StartOfDay(day, b.location())
		f.DateFrom = &from
	}
	if v := strings.TrimSpace(p.DateTo); v != "" {
		day, err := b.parseDay(v)
		if err != nil {
			return Filter{}, invalidQueryf("invalid dateTo %q", v)
		}
		to := EndOfDay(day, b.location())
		f.DateTo = &to
	}

	return f, nil
}

// SplitList splits a comma-separated selection, trimming tokens and dropping blanks.
// Returns nil when nothing is selected.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, token := range strings.Split(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}

// StartOfDay is local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay is 23:59:59.999 of t's calendar day in loc. The bound is inclusive,
// so a record at 23:59:59.999 matches and one at the next midnight does not.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// parseDay accepts a calendar date or an RFC3339 timestamp (whose calendar date is used).
func (b *Builder) parseDay(v string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, v, b.location()); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(b.location()), nil
}

func (b *Builder) location() *time.Location {
	if b.Location == nil {
		return time.UTC
	}
	return b.Location
}

func (b *Builder) buildPage(rawPage, rawLimit string) Page {
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		page = 1
	}

	defaultLimit, maxLimit := b.DefaultLimit, b.MaxLimit
	if defaultLimit <= 0 {
		defaultLimit = defaultPageLimit
	}
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}

	limit, err := strconv.Atoi(strings.TrimSpace(rawLimit))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	// Keep the offset within int32 so it never overflows; such a page is empty anyway.
	if maxPage := maxOffset/limit + 1; page > maxPage {
		page = maxPage
	}

	return Page{Number: page, Limit: limit}
}

func buildSort(sortBy, sortOrder string) Sort {
	desc := sortOrder != "asc"
	switch SortField(sortBy) {
	case SortByDate, SortByQuantity, SortByCustomerName:
		return Sort{Field: SortField(sortBy), Desc: desc}
	case "":
		return Sort{Field: SortByDate, Desc: desc}
	default:
		// Unknown keys always fall back to newest first, whatever the order asked.
		return DefaultSort
	}
}

func parseBound(name, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidQueryf("%s must be an integer, got %q", name, raw)
	}
	return &v, nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
