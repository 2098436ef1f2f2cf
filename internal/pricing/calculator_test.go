package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePriceLookup struct {
	prices map[string]float64
	err    error
	calls  int
}

func (f *fakePriceLookup) PricesFor(ctx context.Context, sellerName string, productNames []string) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64)
	for _, name := range productNames {
		if price, ok := f.prices[name]; ok {
			out[name] = price
		}
	}
	return out, nil
}

func TestShipperPrice_CountsOccurrences(t *testing.T) {
	lookup := &fakePriceLookup{prices: map[string]float64{"a": 10, "b": 5}}
	calc := NewCalculator(lookup, nil)

	total := calc.ShipperPrice(context.Background(), "A,A,B", "acme")
	assert.Equal(t, 25.0, total)
}

func TestShipperPrice_ScenarioShirtBelt(t *testing.T) {
	lookup := &fakePriceLookup{prices: map[string]float64{"shirt": 500, "belt": 300}}
	calc := NewCalculator(lookup, nil)

	total := calc.ShipperPrice(context.Background(), "shirt,shirt,belt", "acme")
	assert.Equal(t, 1300.0, total)
}

func TestShipperPrice_UnknownProductContributesZero(t *testing.T) {
	lookup := &fakePriceLookup{prices: map[string]float64{"shirt": 500}}
	calc := NewCalculator(lookup, nil)

	total := calc.ShipperPrice(context.Background(), "shirt,mystery", "acme")
	assert.Equal(t, 500.0, total)
}

func TestShipperPrice_EmptyInputSkipsLookup(t *testing.T) {
	lookup := &fakePriceLookup{prices: map[string]float64{}}
	calc := NewCalculator(lookup, nil)

	assert.Equal(t, 0.0, calc.ShipperPrice(context.Background(), "", "acme"))
	assert.Equal(t, 0.0, calc.ShipperPrice(context.Background(), " , ,", "acme"))
	assert.Equal(t, 0, lookup.calls)
}

func TestShipperPrice_LookupErrorFailsClosed(t *testing.T) {
	lookup := &fakePriceLookup{err: errors.New("connection refused")}
	calc := NewCalculator(lookup, nil)

	assert.Equal(t, 0.0, calc.ShipperPrice(context.Background(), "shirt", "acme"))
}

func TestShipperPrice_TrimsAndLowercasesTokens(t *testing.T) {
	lookup := &fakePriceLookup{prices: map[string]float64{"shirt": 100}}
	calc := NewCalculator(lookup, nil)

	total := calc.ShipperPrice(context.Background(), " Shirt , SHIRT ,", "acme")
	assert.Equal(t, 200.0, total)
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, 0, TokenCount(""))
	assert.Equal(t, 3, TokenCount("a,b,a"))
	assert.Equal(t, 2, TokenCount(" x ,, y "))
}
