// Package pricing computes order totals from current catalogue prices and
// converts between currency and loyalty points.
package pricing

import (
	"context"
	"fmt"

	"boba-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PriceSource resolves identifiers to the current price of non-deleted records.
// Unknown identifiers are simply absent from the result.
type PriceSource interface {
	PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}

// Engine sums catalogue prices for a set of drink and topping references.
type Engine struct {
	drinks   PriceSource
	toppings PriceSource
	logger   zerolog.Logger
}

// NewEngine creates a pricing engine over the given price sources.
func NewEngine(drinks, toppings PriceSource, logger zerolog.Logger) *Engine {
	return &Engine{
		drinks:   drinks,
		toppings: toppings,
		logger:   logger.With().Str("component", "pricing").Logger(),
	}
}

// Total returns the sum of the current price of every referenced record.
// Malformed identifiers are dropped and unresolved ones contribute zero;
// a referenced id counts once per occurrence. Only store failures are errors.
func (e *Engine) Total(ctx context.Context, drinkIDs, toppingIDs []string) (decimal.Decimal, error) {
	drinkTotal, err := e.sum(ctx, e.drinks, drinkIDs, "drink")
	if err != nil {
		return decimal.Zero, err
	}

	toppingTotal, err := e.sum(ctx, e.toppings, toppingIDs, "topping")
	if err != nil {
		return decimal.Zero, err
	}

	return drinkTotal.Add(toppingTotal), nil
}

func (e *Engine) sum(ctx context.Context, source PriceSource, ids []string, kind string) (decimal.Decimal, error) {
	valid := model.FilterValidIDs(ids)
	if dropped := len(ids) - len(valid); dropped > 0 {
		e.logger.Debug().Str("kind", kind).Int("dropped", dropped).Msg("ignoring malformed identifiers")
	}
	if len(valid) == 0 {
		return decimal.Zero, nil
	}

	prices, err := source.PricesByIDs(ctx, unique(valid))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load %s prices: %w", kind, err)
	}

	total := decimal.Zero
	missing := 0
	for _, id := range valid {
		price, ok := prices[id]
		if !ok {
			missing++
			continue
		}
		total = total.Add(price)
	}

	if missing > 0 {
		// Deleted or unknown references price at zero rather than failing the order.
		e.logger.Warn().Str("kind", kind).Int("unresolved", missing).Msg("unresolved references priced at zero")
	}

	return total, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
