package billing

import (
	"testing"

	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(t *testing.T) *PolicyResolver {
	t.Helper()

	policy, err := NewPolicyResolver(config.BillingConfig{
		TieredSellers: "affan,self",
		ReturnDCTiers: "2:200,5:350,11:550,19:850,0:1000",
	})
	require.NoError(t, err)
	return policy
}

func productsOfLength(n int) string {
	field := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			field += ","
		}
		field += "item"
	}
	return field
}

func TestBuildBill_DeliveredPassThrough(t *testing.T) {
	orders := []models.Order{{
		OrderNumber:  "ORD-1",
		Products:     "shirt,belt",
		Status:       enums.OrderStatusDelivered,
		SellerPrice:  2000,
		DC:           100,
		ShipperPrice: 1300,
		Profit:       600,
	}}

	payload := BuildBill("acme", orders, testPolicy(t))

	require.Len(t, payload.Orders, 1)
	row := payload.Orders[0]
	assert.Equal(t, 600.0, row.AdjustedProfit)
	assert.Equal(t, 100.0, row.AdjustedDC)
	assert.Equal(t, 1300.0, row.AdjustedShipperPrice)
	assert.Equal(t, 2000.0, row.AdjustedSellerPrice)
	assert.Equal(t, 2, row.Quantity)
}

func TestBuildBill_FlatReturnUsesStoredDC(t *testing.T) {
	orders := []models.Order{{
		OrderNumber:  "ORD-1",
		Products:     productsOfLength(25),
		Status:       enums.OrderStatusReturn,
		SellerPrice:  2000,
		DC:           120,
		ShipperPrice: 900,
		Profit:       980,
	}}

	payload := BuildBill("acme", orders, testPolicy(t))

	row := payload.Orders[0]
	assert.Equal(t, -120.0, row.AdjustedDC)
	assert.Equal(t, -120.0, row.AdjustedProfit)
	// Flat policy keeps prices un-negated.
	assert.Equal(t, 900.0, row.AdjustedShipperPrice)
	assert.Equal(t, 2000.0, row.AdjustedSellerPrice)
}

func TestBuildBill_TieredReturnBoundaries(t *testing.T) {
	cases := []struct {
		quantity int
		wantDC   float64
	}{
		{1, 200},
		{2, 200},
		{3, 350},
		{5, 350},
		{6, 550},
		{11, 550},
		{12, 850},
		{19, 850},
		{20, 1000},
		{25, 1000},
	}

	policy := testPolicy(t)
	for _, tc := range cases {
		orders := []models.Order{{
			OrderNumber: "ORD-1",
			Products:    productsOfLength(tc.quantity),
			Status:      enums.OrderStatusReturn,
			DC:          9999,
		}}
		payload := BuildBill("affan", orders, policy)
		assert.Equal(t, -tc.wantDC, payload.Orders[0].AdjustedDC, "quantity %d", tc.quantity)
		assert.Equal(t, -tc.wantDC, payload.Orders[0].AdjustedProfit, "quantity %d", tc.quantity)
	}
}

func TestBuildBill_TieredReturnNegatesPrices(t *testing.T) {
	orders := []models.Order{{
		OrderNumber:  "ORD-1",
		Products:     "a,b,c",
		Status:       enums.OrderStatusReturn,
		SellerPrice:  1500,
		ShipperPrice: 700,
		DC:           50,
	}}

	payload := BuildBill("Self", orders, testPolicy(t))

	row := payload.Orders[0]
	assert.Equal(t, -700.0, row.AdjustedShipperPrice)
	assert.Equal(t, -1500.0, row.AdjustedSellerPrice)
	assert.Equal(t, -350.0, row.AdjustedDC)
}

func TestBuildBill_SummaryAggregation(t *testing.T) {
	orders := []models.Order{
		{OrderNumber: "D-1", Status: enums.OrderStatusDelivered, SellerPrice: 1000, DC: 100, ShipperPrice: 400, Profit: 500, Products: "a"},
		{OrderNumber: "D-2", Status: enums.OrderStatusDelivered, SellerPrice: 2000, DC: 150, ShipperPrice: 600, Profit: 1250, Products: "a,b"},
		{OrderNumber: "R-1", Status: enums.OrderStatusReturn, SellerPrice: 500, DC: 80, ShipperPrice: 200, Profit: 220, Products: "a"},
	}

	payload := BuildBill("acme", orders, testPolicy(t))
	summary := payload.Summary

	assert.Equal(t, 3, summary.TotalOrders)
	assert.Equal(t, 2, summary.TotalDelivered)
	assert.Equal(t, 1, summary.TotalReturns)
	assert.Equal(t, 500.0+1250.0-80.0, summary.TotalProfit)
	assert.Equal(t, 100.0+150.0-80.0, summary.TotalDC)
	assert.Equal(t, 400.0+600.0+200.0, summary.TotalShipperPrice)
	assert.Equal(t, 1000.0+2000.0+500.0, summary.TotalSellerPrice)
	assert.Equal(t, 66.67, summary.DeliveredRatio)
	assert.Equal(t, 33.33, summary.ReturnRatio)
}

func TestBuildBill_EmptySetYieldsZeroRatios(t *testing.T) {
	payload := BuildBill("acme", nil, testPolicy(t))

	assert.Equal(t, 0, payload.Summary.TotalOrders)
	assert.Equal(t, 0.0, payload.Summary.DeliveredRatio)
	assert.Equal(t, 0.0, payload.Summary.ReturnRatio)
	assert.Empty(t, payload.Orders)
}
