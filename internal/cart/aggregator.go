package cart

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"boba-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Catalog looks up current drink and topping records.
type Catalog interface {
	Drink(ctx context.Context, id string) (*model.Product, error)
	Topping(ctx context.Context, id string) (*model.Topping, error)
}

// AddRequest is the payload for adding a drink to the cart. Nil sugar and
// ice levels take the drink's defaults.
type AddRequest struct {
	DrinkID    string   `json:"drinkId"`
	Size       string   `json:"size"`
	SugarPct   *int     `json:"sugarPct,omitempty"`
	IcePct     *int     `json:"icePct,omitempty"`
	ToppingIDs []string `json:"toppingIds,omitempty"`
	Quantity   int      `json:"quantity"`
}

// Aggregator prices cart lines from the catalogue.
type Aggregator struct {
	catalog Catalog
	logger  zerolog.Logger
}

// NewAggregator creates an aggregator backed by catalog.
func NewAggregator(catalog Catalog, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		catalog: catalog,
		logger:  logger.With().Str("component", "cart").Logger(),
	}
}

// Line validates req and builds a priced line item.
func (a *Aggregator) Line(ctx context.Context, req AddRequest) (LineItem, error) {
	fields := map[string]string{}

	drinkID, err := model.ParseID(req.DrinkID)
	if err != nil {
		fields["drinkId"] = "drinkId must be a 24-character hexadecimal string"
	}

	size := model.SizeMedium
	if strings.TrimSpace(req.Size) != "" {
		parsed, ok := model.ParseSize(req.Size)
		if !ok {
			fields["size"] = "size must be S, M or L"
		}
		size = parsed
	}
	if req.SugarPct != nil && (*req.SugarPct < 0 || *req.SugarPct > 100) {
		fields["sugarPct"] = "sugarPct must be between 0 and 100"
	}
	if req.IcePct != nil && (*req.IcePct < 0 || *req.IcePct > 100) {
		fields["icePct"] = "icePct must be between 0 and 100"
	}
	toppingIDs := make([]string, 0, len(req.ToppingIDs))
	for _, id := range req.ToppingIDs {
		parsed, err := model.ParseID(id)
		if err != nil {
			fields["toppingIds"] = "toppingIds must be 24-character hexadecimal strings"
			continue
		}
		toppingIDs = append(toppingIDs, parsed)
	}
	if len(fields) > 0 {
		return LineItem{}, model.NewValidationError("cart item is invalid", fields)
	}

	drink, err := a.catalog.Drink(ctx, drinkID)
	if err != nil {
		return LineItem{}, err
	}
	if !drink.IsActive {
		return LineItem{}, model.NewValidationError("cart item is invalid", map[string]string{
			"drinkId": "drink is not available",
		})
	}

	item := LineItem{
		DrinkID:    drink.ID,
		DrinkName:  drink.Name,
		Size:       size,
		SugarPct:   drink.DefaultSugarPct,
		IcePct:     drink.DefaultIcePct,
		ToppingIDs: toppingIDs,
		Quantity:   req.Quantity,
	}
	if req.SugarPct != nil {
		item.SugarPct = *req.SugarPct
	}
	if req.IcePct != nil {
		item.IcePct = *req.IcePct
	}

	price, summary, err := a.price(ctx, drink, size, toppingIDs)
	if err != nil {
		return LineItem{}, err
	}
	item.UnitPrice = price
	item.ToppingSummary = summary
	item.Key = LineKey(item.DrinkID, item.Size, item.SugarPct, item.IcePct, item.ToppingSummary)

	return item, nil
}

// Reprice returns the current unit price of an existing line.
func (a *Aggregator) Reprice(ctx context.Context, item LineItem) (decimal.Decimal, error) {
	drink, err := a.catalog.Drink(ctx, item.DrinkID)
	if err != nil {
		return decimal.Zero, err
	}
	price, _, err := a.price(ctx, drink, item.Size, item.ToppingIDs)
	return price, err
}

func (a *Aggregator) price(ctx context.Context, drink *model.Product, size model.Size, toppingIDs []string) (decimal.Decimal, string, error) {
	price := drink.PriceFor(size)
	names := make([]string, 0, len(toppingIDs))

	for _, id := range toppingIDs {
		topping, err := a.catalog.Topping(ctx, id)
		if err != nil {
			if model.IsKind(err, model.KindNotFound) {
				return decimal.Zero, "", model.NewValidationError("cart item is invalid", map[string]string{
					"toppingIds": fmt.Sprintf("topping %s is not available", id),
				})
			}
			return decimal.Zero, "", err
		}
		price = price.Add(topping.Price)
		names = append(names, topping.Name)
	}

	sort.Strings(names)
	a.logger.Debug().
		Str("drink_id", drink.ID).
		Str("size", string(size)).
		Str("unit_price", price.StringFixed(2)).
		Msg("cart line priced")

	return price, strings.Join(names, ", "), nil
}
