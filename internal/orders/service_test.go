package order

import (
	"context"
	"testing"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakePricer struct {
	prices map[string]float64
}

func (f *fakePricer) ShipperPrice(ctx context.Context, productsField, sellerName string) float64 {
	if price, ok := f.prices[productsField]; ok {
		return price
	}
	return 0
}

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}))
	return conn
}

func newOrderService(t *testing.T, conn *gorm.DB, pricer ShipperPricer) Service {
	t.Helper()

	if pricer == nil {
		pricer = &fakePricer{}
	}
	svc, err := NewService(NewRepository(conn), pricer, &db.Client{}, nil)
	require.NoError(t, err)
	return svc
}

var (
	adminActor  = identity.Actor{UserID: 1, Username: "admin", Role: enums.RoleAdmin}
	sellerActor = identity.Actor{UserID: 2, Username: "acme", Role: enums.RoleSeller}
)

func TestCreate_ComputesShipperPriceAndProfit(t *testing.T) {
	conn := setupOrderTestDB(t)
	pricer := &fakePricer{prices: map[string]float64{"shirt,shirt,belt": 1300}}
	svc := newOrderService(t, conn, pricer)

	order, err := svc.Create(context.Background(), adminActor, CreateInput{
		OrderNumber: "ORD-1",
		SellerName:  "Acme",
		Products:    "shirt,shirt,belt",
		SellerPrice: 2000,
		DC:          100,
	})
	require.NoError(t, err)

	assert.Equal(t, "acme", order.SellerName)
	assert.Equal(t, 1300.0, order.ShipperPrice)
	assert.Equal(t, 600.0, order.Profit)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, 0, order.ShipperPaid)
}

func TestCreate_DuplicateOrderNumberConflicts(t *testing.T) {
	svc := newOrderService(t, setupOrderTestDB(t), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor, CreateInput{OrderNumber: "ORD-1", SellerName: "acme"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, adminActor, CreateInput{OrderNumber: "ORD-1", SellerName: "acme"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCreate_SellerScope(t *testing.T) {
	svc := newOrderService(t, setupOrderTestDB(t), nil)

	_, err := svc.Create(context.Background(), sellerActor, CreateInput{OrderNumber: "ORD-1", SellerName: "other"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = svc.Create(context.Background(), sellerActor, CreateInput{OrderNumber: "ORD-2", SellerName: "ACME"})
	require.NoError(t, err)
}

func TestUpdate_RecomputesProfitFromEffectiveFields(t *testing.T) {
	conn := setupOrderTestDB(t)
	pricer := &fakePricer{prices: map[string]float64{
		"shirt":      500,
		"shirt,belt": 800,
	}}
	svc := newOrderService(t, conn, pricer)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor, CreateInput{
		OrderNumber: "ORD-1",
		SellerName:  "acme",
		Products:    "shirt",
		SellerPrice: 1000,
		DC:          50,
	})
	require.NoError(t, err)
	assert.Equal(t, 450.0, created.Profit)

	products := "shirt,belt"
	newPrice := 2000.0
	updated, err := svc.Update(ctx, adminActor, created.ID, UpdateInput{
		Products:    &products,
		SellerPrice: &newPrice,
	})
	require.NoError(t, err)

	assert.Equal(t, 800.0, updated.ShipperPrice)
	assert.Equal(t, 2000.0-50.0-800.0, updated.Profit)
}

func TestUpdate_SellerCannotTouchForeignOrder(t *testing.T) {
	svc := newOrderService(t, setupOrderTestDB(t), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor, CreateInput{OrderNumber: "ORD-1", SellerName: "other"})
	require.NoError(t, err)

	status := enums.OrderStatusDelivered
	_, err = svc.Update(ctx, sellerActor, created.ID, UpdateInput{Status: &status})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestList_SellerScopedAndFiltered(t *testing.T) {
	svc := newOrderService(t, setupOrderTestDB(t), nil)
	ctx := context.Background()

	for _, seed := range []CreateInput{
		{OrderNumber: "A-1", SellerName: "acme"},
		{OrderNumber: "A-2", SellerName: "acme"},
		{OrderNumber: "B-1", SellerName: "other"},
	} {
		_, err := svc.Create(ctx, adminActor, seed)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, adminActor, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.List(ctx, sellerActor, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := svc.List(ctx, adminActor, ListFilter{Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSearch(t *testing.T) {
	svc := newOrderService(t, setupOrderTestDB(t), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor, CreateInput{
		OrderNumber:  "ORD-77",
		SellerName:   "acme",
		CustomerName: "Jane Smith",
		Phone1:       "03001234567",
	})
	require.NoError(t, err)

	byCustomer, err := svc.Search(ctx, adminActor, "jane")
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)

	byPhone, err := svc.Search(ctx, adminActor, "0300123")
	require.NoError(t, err)
	assert.Len(t, byPhone, 1)

	none, err := svc.Search(ctx, adminActor, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMarkPaid_OnlyDeliveredAndReturns(t *testing.T) {
	conn := setupOrderTestDB(t)
	svc := newOrderService(t, conn, nil)
	ctx := context.Background()

	seedStatus := func(orderNumber string, status enums.OrderStatus) uint {
		created, err := svc.Create(ctx, adminActor, CreateInput{OrderNumber: orderNumber, SellerName: "acme"})
		require.NoError(t, err)
		require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", created.ID).Update("status", status).Error)
		return created.ID
	}

	delivered := seedStatus("ORD-1", enums.OrderStatusDelivered)
	returned := seedStatus("ORD-2", enums.OrderStatusReturn)
	pending := seedStatus("ORD-3", enums.OrderStatusPending)

	updated, err := svc.MarkPaid(ctx, adminActor, "acme", []uint{delivered, returned, pending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	var stillUnpaid models.Order
	require.NoError(t, conn.First(&stillUnpaid, pending).Error)
	assert.Equal(t, 0, stillUnpaid.ShipperPaid)
}

func TestUnpaidOrders(t *testing.T) {
	conn := setupOrderTestDB(t)
	svc := newOrderService(t, conn, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor, CreateInput{OrderNumber: "ORD-1", SellerName: "acme"})
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", created.ID).Update("status", enums.OrderStatusDelivered).Error)

	unpaid, err := svc.UnpaidOrders(ctx, adminActor, "ACME")
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "ORD-1", unpaid[0].OrderNumber)

	_, err = svc.UnpaidOrders(ctx, sellerActor, "other")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestDeleteAll_AdminOnly(t *testing.T) {
	svc := newOrderService(t, setupOrderTestDB(t), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor, CreateInput{OrderNumber: "ORD-1", SellerName: "acme"})
	require.NoError(t, err)

	_, err = svc.DeleteAll(ctx, sellerActor)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	deleted, err := svc.DeleteAll(ctx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestBulkCreate_AdminOnly(t *testing.T) {
	svc := newOrderService(t, setupOrderTestDB(t), nil)

	_, err := svc.BulkCreate(context.Background(), sellerActor, []BulkCreateRow{
		{OrderNumber: "ORD-1", SellerName: "acme"},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestBulkCreate_ComputesPricingAndDefaults(t *testing.T) {
	conn := setupOrderTestDB(t)
	pricer := &fakePricer{prices: map[string]float64{"shirt,belt": 900}}
	svc := newOrderService(t, conn, pricer)

	result, err := svc.BulkCreate(context.Background(), adminActor, []BulkCreateRow{
		{OrderNumber: "ORD-1", SellerName: "Acme", Products: "shirt,belt", SellerPrice: 2000, DC: 100, TrackingID: " 1700345 "},
		{OrderNumber: "ORD-2", SellerName: "acme", Status: enums.OrderStatusDelivered, ShipperPaid: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Equal(t, 2, result.TotalProcessed)

	var first models.Order
	require.NoError(t, conn.Where("order_number = ?", "ORD-1").First(&first).Error)
	assert.Equal(t, "acme", first.SellerName)
	assert.Equal(t, 900.0, first.ShipperPrice)
	assert.Equal(t, 1000.0, first.Profit)
	assert.Equal(t, "1700345", first.TrackingID)
	assert.Equal(t, enums.OrderStatusPending, first.Status)
	assert.Equal(t, 0, first.ShipperPaid)

	var second models.Order
	require.NoError(t, conn.Where("order_number = ?", "ORD-2").First(&second).Error)
	assert.Equal(t, enums.OrderStatusDelivered, second.Status)
	assert.Equal(t, 1, second.ShipperPaid)
}

func TestBulkCreate_UpsertsOnOrderNumber(t *testing.T) {
	conn := setupOrderTestDB(t)
	svc := newOrderService(t, conn, nil)
	ctx := context.Background()

	_, err := svc.BulkCreate(ctx, adminActor, []BulkCreateRow{
		{OrderNumber: "ORD-1", SellerName: "acme", SellerPrice: 1000},
	})
	require.NoError(t, err)

	result, err := svc.BulkCreate(ctx, adminActor, []BulkCreateRow{
		{OrderNumber: "ORD-1", SellerName: "acme", SellerPrice: 1500, DC: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var order models.Order
	require.NoError(t, conn.Where("order_number = ?", "ORD-1").First(&order).Error)
	assert.Equal(t, 1500.0, order.SellerPrice)
	assert.Equal(t, 200.0, order.DC)
	assert.Equal(t, 1300.0, order.Profit)
}

func TestBulkCreate_RowErrorsIsolated(t *testing.T) {
	conn := setupOrderTestDB(t)
	svc := newOrderService(t, conn, nil)

	result, err := svc.BulkCreate(context.Background(), adminActor, []BulkCreateRow{
		{OrderNumber: "", SellerName: "acme"},
		{OrderNumber: "ORD-2", SellerName: "acme", Status: "shipped"},
		{OrderNumber: "ORD-3", SellerName: "acme"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, 3, result.TotalProcessed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 1")
	assert.Contains(t, result.Errors[1], "row 2")

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
