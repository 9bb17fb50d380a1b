package repository

import (
	"fmt"
	"strings"

	"boba-kart/internal/model"
)

// catalogQuery appends filter, sort and pagination clauses to a catalogue SELECT.
// priceColumn names the column used for price filters and price sorting.
func catalogQuery(base, priceColumn string, filter model.CatalogFilter) (string, []any) {
	filter.Normalise()

	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_utc IS NULL")
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if filter.Search != "" {
		conditions = append(conditions, "name ILIKE "+arg("%"+escapeLike(filter.Search)+"%"))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, priceColumn+" >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, priceColumn+" <= "+arg(*filter.MaxPrice))
	}

	var b strings.Builder
	b.WriteString(base)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}

	column := "name"
	switch filter.SortBy {
	case model.SortByPrice:
		column = priceColumn
	case model.SortByCreated:
		column = "created_utc"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, id", column, direction)
	fmt.Fprintf(&b, " LIMIT %s OFFSET %s", arg(filter.Limit), arg(filter.Offset))

	return b.String(), args
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
