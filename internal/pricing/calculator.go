package pricing

import (
	"context"
	"strings"

	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

// PriceLookup resolves per-unit prices from a seller's price list. Keys in the
// returned map are lowercase product names; absent keys mean the seller has no
// price-list entry for that name.
type PriceLookup interface {
	PricesFor(ctx context.Context, sellerName string, productNames []string) (map[string]float64, error)
}

// Calculator computes the shipper cost of an order's product list.
type Calculator struct {
	prices PriceLookup
	logg   *logger.Logger
}

func NewCalculator(prices PriceLookup, logg *logger.Logger) *Calculator {
	return &Calculator{prices: prices, logg: logg}
}

// ShipperPrice totals unit price times occurrence count for every product
// token in the comma-separated field. Names missing from the seller's price
// list contribute zero and are logged as a data gap; a lookup failure fails
// closed to zero so the caller's order save is never blocked, and is logged
// as an infrastructure fault instead.
func (c *Calculator) ShipperPrice(ctx context.Context, productsField, sellerName string) float64 {
	counts := TokenCounts(productsField)
	if len(counts) == 0 {
		return 0
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}

	priceByName, err := c.prices.PricesFor(ctx, sellerName, names)
	if err != nil {
		if c.logg != nil {
			c.logg.Error(ctx, "price list lookup failed, shipper price falls back to 0", err)
		}
		return 0
	}

	total := 0.0
	for name, count := range counts {
		price, ok := priceByName[name]
		if !ok {
			if c.logg != nil {
				warnCtx := c.logg.WithFields(ctx, map[string]any{
					"seller_name":  sellerName,
					"product_name": name,
				})
				c.logg.Warn(warnCtx, "product missing from seller price list, priced at 0")
			}
			continue
		}
		total += price * float64(count)
	}
	return total
}

// TokenCounts splits a comma-separated products field into lowercase name to
// occurrence count. Repeats are significant; blanks are dropped.
func TokenCounts(productsField string) map[string]int {
	counts := make(map[string]int)
	for _, raw := range strings.Split(productsField, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		counts[name]++
	}
	return counts
}

// TokenCount returns the number of non-blank product tokens in the field.
// Used by the billing return tiers, which key on total quantity.
func TokenCount(productsField string) int {
	total := 0
	for _, count := range TokenCounts(productsField) {
		total += count
	}
	return total
}
