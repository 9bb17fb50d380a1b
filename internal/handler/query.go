package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"boba-kart/internal/model"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// parseCatalogFilter reads list query parameters shared by drinks and toppings.
func parseCatalogFilter(r *http.Request) (model.CatalogFilter, error) {
	q := r.URL.Query()
	fields := map[string]string{}
	filter := model.CatalogFilter{Search: q.Get("search")}

	parseBool := func(name string, dst *bool) {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				fields[name] = name + " must be true or false"
				return
			}
			*dst = b
		}
	}
	parseInt := func(name string, dst *int) {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				fields[name] = name + " must be a non-negative integer"
				return
			}
			*dst = n
		}
	}
	parsePrice := func(name string) *decimal.Decimal {
		v := q.Get(name)
		if v == "" {
			return nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			fields[name] = name + " must be a non-negative amount"
			return nil
		}
		return &d
	}

	parseBool("includeDeleted", &filter.IncludeDeleted)
	parseBool("active", &filter.ActiveOnly)
	parseInt("limit", &filter.Limit)
	parseInt("offset", &filter.Offset)
	filter.MinPrice = parsePrice("minPrice")
	filter.MaxPrice = parsePrice("maxPrice")

	switch sort := strings.ToLower(q.Get("sort")); sort {
	case "":
	case string(model.SortByName), string(model.SortByPrice), string(model.SortByCreated):
		filter.SortBy = model.SortField(sort)
	default:
		fields["sort"] = "sort must be one of name, price, created"
	}

	switch order := strings.ToLower(q.Get("order")); order {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		fields["order"] = "order must be asc or desc"
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		fields["minPrice"] = "minPrice must not exceed maxPrice"
	}

	if len(fields) > 0 {
		return model.CatalogFilter{}, model.NewValidationError("Query parameters are invalid", fields)
	}
	return filter, nil
}

// parseOrderFilter reads email, status and the inclusive from/to range.
// Dates may be RFC 3339 timestamps or plain dates; a plain "to" date covers
// the whole day.
func parseOrderFilter(r *http.Request) (model.OrderFilter, error) {
	q := r.URL.Query()
	fields := map[string]string{}
	filter := model.OrderFilter{CustomerEmail: q.Get("email")}

	if v := q.Get("status"); v != "" {
		status, err := model.ParseOrderStatus(v)
		if err != nil {
			fields["status"] = "status must be one of New, Preparing, Ready, Completed, Cancelled"
		} else {
			filter.Status = &status
		}
	}

	if v := q.Get("from"); v != "" {
		from, _, err := parseTime(v)
		if err != nil {
			fields["from"] = "from must be a date (YYYY-MM-DD) or RFC 3339 timestamp"
		} else {
			filter.From = &from
		}
	}

	if v := q.Get("to"); v != "" {
		to, dateOnly, err := parseTime(v)
		if err != nil {
			fields["to"] = "to must be a date (YYYY-MM-DD) or RFC 3339 timestamp"
		} else {
			if dateOnly {
				to = to.Add(24*time.Hour - time.Nanosecond)
			}
			filter.To = &to
		}
	}

	if len(fields) > 0 {
		return model.OrderFilter{}, model.NewValidationError("Query parameters are invalid", fields)
	}
	return filter, nil
}

func parseTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
