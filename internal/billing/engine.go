package billing

import (
	"github.com/orderdesk/orderdesk-backend/internal/pricing"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// AdjustedOrder is one order with return adjustments applied. Field names
// match the shapes stored inside historical bill_data documents, so older
// bills keep parsing.
type AdjustedOrder struct {
	ID                   uint              `json:"id"`
	OrderNumber          string            `json:"order_number"`
	Products             string            `json:"products"`
	Quantity             int               `json:"quantity"`
	Status               enums.OrderStatus `json:"status"`
	TrackingID           string            `json:"tracking_id"`
	SellerPrice          float64           `json:"seller_price"`
	DC                   float64           `json:"dc"`
	ShipperPrice         float64           `json:"shipper_price"`
	Profit               float64           `json:"profit"`
	AdjustedSellerPrice  float64           `json:"adjusted_seller_price"`
	AdjustedDC           float64           `json:"adjusted_dc"`
	AdjustedShipperPrice float64           `json:"adjusted_shipper_price"`
	AdjustedProfit       float64           `json:"adjusted_profit"`
}

// Summary aggregates an adjusted order set. Ratios are percentages rounded
// to two decimals, zero when the set is empty.
type Summary struct {
	TotalOrders       int     `json:"total_orders"`
	TotalDelivered    int     `json:"total_delivered"`
	TotalReturns      int     `json:"total_returns"`
	TotalProfit       float64 `json:"total_profit"`
	TotalDC           float64 `json:"total_dc"`
	TotalShipperPrice float64 `json:"total_shipper_price"`
	TotalSellerPrice  float64 `json:"total_seller_price"`
	DeliveredRatio    float64 `json:"delivered_ratio"`
	ReturnRatio       float64 `json:"return_ratio"`
}

// Payload is a computed bill: the adjusted order set plus its summary.
type Payload struct {
	SellerName string          `json:"seller_name"`
	Orders     []AdjustedOrder `json:"orders"`
	Summary    Summary         `json:"summary"`
}

// BuildBill is the pure compute phase of bill generation. Delivered orders
// pass through unchanged; returns are overridden to a loss equal to the
// return DC resolved by the policy. It performs no I/O.
func BuildBill(sellerName string, orders []models.Order, policy *PolicyResolver) *Payload {
	tiered := policy.IsTiered(sellerName)

	adjusted := make([]AdjustedOrder, 0, len(orders))
	totalDelivered := 0
	totalReturns := 0
	totalProfit := decimal.Zero
	totalDC := decimal.Zero
	totalShipperPrice := decimal.Zero
	totalSellerPrice := decimal.Zero

	for _, order := range orders {
		quantity := pricing.TokenCount(order.Products)

		row := AdjustedOrder{
			ID:                   order.ID,
			OrderNumber:          order.OrderNumber,
			Products:             order.Products,
			Quantity:             quantity,
			Status:               order.Status,
			TrackingID:           order.TrackingID,
			SellerPrice:          order.SellerPrice,
			DC:                   order.DC,
			ShipperPrice:         order.ShipperPrice,
			Profit:               order.Profit,
			AdjustedSellerPrice:  order.SellerPrice,
			AdjustedDC:           order.DC,
			AdjustedShipperPrice: order.ShipperPrice,
			AdjustedProfit:       order.Profit,
		}

		if order.Status == enums.OrderStatusReturn {
			totalReturns++

			returnDC := order.DC
			if tiered {
				returnDC = policy.ReturnDC(quantity)
				row.AdjustedShipperPrice = -order.ShipperPrice
				row.AdjustedSellerPrice = -order.SellerPrice
			}
			// A return always nets to a loss of the return DC,
			// regardless of the order's stored profit.
			row.AdjustedDC = -returnDC
			row.AdjustedProfit = -returnDC
		} else {
			totalDelivered++
		}

		totalProfit = totalProfit.Add(decimal.NewFromFloat(row.AdjustedProfit))
		totalDC = totalDC.Add(decimal.NewFromFloat(row.AdjustedDC))
		totalShipperPrice = totalShipperPrice.Add(decimal.NewFromFloat(row.AdjustedShipperPrice))
		totalSellerPrice = totalSellerPrice.Add(decimal.NewFromFloat(row.AdjustedSellerPrice))

		adjusted = append(adjusted, row)
	}

	summary := Summary{
		TotalOrders:       len(adjusted),
		TotalDelivered:    totalDelivered,
		TotalReturns:      totalReturns,
		TotalProfit:       totalProfit.InexactFloat64(),
		TotalDC:           totalDC.InexactFloat64(),
		TotalShipperPrice: totalShipperPrice.InexactFloat64(),
		TotalSellerPrice:  totalSellerPrice.InexactFloat64(),
	}

	if total := totalDelivered + totalReturns; total > 0 {
		denominator := decimal.NewFromInt(int64(total))
		summary.DeliveredRatio = decimal.NewFromInt(int64(totalDelivered)).
			Div(denominator).Mul(decimal.NewFromInt(100)).
			Round(2).InexactFloat64()
		summary.ReturnRatio = decimal.NewFromInt(int64(totalReturns)).
			Div(denominator).Mul(decimal.NewFromInt(100)).
			Round(2).InexactFloat64()
	}

	return &Payload{
		SellerName: sellerName,
		Orders:     adjusted,
		Summary:    summary,
	}
}
