package dashboard

import (
	"context"
	"fmt"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"gorm.io/gorm"
)

// Stats is the back-office overview: order counts by status plus the
// delivered-only financial totals. AdminProfit is the margin left after
// paying the shipper, the delivery charges and the seller's profit share.
type Stats struct {
	TotalOrders  int64 `json:"total_orders"`
	Pending      int64 `json:"pending"`
	Dispatched   int64 `json:"dispatched"`
	Delivered    int64 `json:"delivered"`
	Returns      int64 `json:"returns"`
	Cancelled    int64 `json:"cancelled"`
	ShipperPaid  int64 `json:"shipper_paid"`

	TotalSellerPrice  float64 `json:"total_seller_price"`
	TotalShipperPrice float64 `json:"total_shipper_price"`
	TotalDC           float64 `json:"total_dc"`
	TotalProfit       float64 `json:"total_profit"`
	AdminProfit       float64 `json:"admin_profit"`
}

// Service aggregates order data for the dashboard view.
type Service interface {
	Stats(ctx context.Context, actor identity.Actor) (*Stats, error)
}

type service struct {
	db *gorm.DB
}

// NewService constructs a dashboard service instance.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: db}, nil
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

type financials struct {
	TotalSellerPrice  float64
	TotalShipperPrice float64
	TotalDC           float64
	TotalProfit       float64
}

// Stats computes the overview. Sellers see their own orders only.
func (s *service) Stats(ctx context.Context, actor identity.Actor) (*Stats, error) {
	scoped := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Order{})
		if !actor.IsAdmin() {
			query = query.Where("LOWER(seller_name) = LOWER(?)", actor.Username)
		}
		return query
	}

	var counts []statusCount
	if err := scoped().
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting orders")
	}

	stats := &Stats{}
	for _, row := range counts {
		stats.TotalOrders += row.Count
		switch row.Status {
		case enums.OrderStatusPending:
			stats.Pending = row.Count
		case enums.OrderStatusDispatched:
			stats.Dispatched = row.Count
		case enums.OrderStatusDelivered:
			stats.Delivered = row.Count
		case enums.OrderStatusReturn:
			stats.Returns = row.Count
		case enums.OrderStatusCancel:
			stats.Cancelled = row.Count
		}
	}

	if err := scoped().
		Where("shipper_paid = 1").
		Count(&stats.ShipperPaid).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting settled orders")
	}

	var money financials
	if err := scoped().
		Select(`COALESCE(SUM(seller_price), 0) AS total_seller_price,
			COALESCE(SUM(shipper_price), 0) AS total_shipper_price,
			COALESCE(SUM(dc), 0) AS total_dc,
			COALESCE(SUM(profit), 0) AS total_profit`).
		Where("status = ?", enums.OrderStatusDelivered).
		Scan(&money).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing delivered orders")
	}

	stats.TotalSellerPrice = money.TotalSellerPrice
	stats.TotalShipperPrice = money.TotalShipperPrice
	stats.TotalDC = money.TotalDC
	stats.TotalProfit = money.TotalProfit
	stats.AdminProfit = money.TotalSellerPrice - money.TotalShipperPrice - money.TotalDC - money.TotalProfit

	return stats, nil
}
