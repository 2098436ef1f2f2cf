package dashboard

import (
	"context"
	"testing"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDashboardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}))
	return conn
}

func TestStats(t *testing.T) {
	conn := setupDashboardTestDB(t)

	seeds := []models.Order{
		{OrderNumber: "P-1", SellerName: "acme", Status: enums.OrderStatusPending},
		{OrderNumber: "D-1", SellerName: "acme", Status: enums.OrderStatusDelivered,
			SellerPrice: 2000, ShipperPrice: 1300, DC: 100, Profit: 600, ShipperPaid: 1},
		{OrderNumber: "D-2", SellerName: "other", Status: enums.OrderStatusDelivered,
			SellerPrice: 1000, ShipperPrice: 400, DC: 50, Profit: 550},
		{OrderNumber: "R-1", SellerName: "acme", Status: enums.OrderStatusReturn},
		{OrderNumber: "C-1", SellerName: "other", Status: enums.OrderStatusCancel},
	}
	for i := range seeds {
		require.NoError(t, conn.Create(&seeds[i]).Error)
	}

	svc, err := NewService(conn)
	require.NoError(t, err)

	admin := identity.Actor{Username: "admin", Role: enums.RoleAdmin}
	stats, err := svc.Stats(context.Background(), admin)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(2), stats.Delivered)
	assert.Equal(t, int64(1), stats.Returns)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(1), stats.ShipperPaid)

	assert.Equal(t, 3000.0, stats.TotalSellerPrice)
	assert.Equal(t, 1700.0, stats.TotalShipperPrice)
	assert.Equal(t, 150.0, stats.TotalDC)
	assert.Equal(t, 1150.0, stats.TotalProfit)
	assert.Equal(t, 3000.0-1700.0-150.0-1150.0, stats.AdminProfit)
}

func TestStats_SellerScoped(t *testing.T) {
	conn := setupDashboardTestDB(t)

	seeds := []models.Order{
		{OrderNumber: "A-1", SellerName: "acme", Status: enums.OrderStatusDelivered, SellerPrice: 500, Profit: 500},
		{OrderNumber: "B-1", SellerName: "other", Status: enums.OrderStatusDelivered, SellerPrice: 900, Profit: 900},
	}
	for i := range seeds {
		require.NoError(t, conn.Create(&seeds[i]).Error)
	}

	svc, err := NewService(conn)
	require.NoError(t, err)

	seller := identity.Actor{Username: "ACME", Role: enums.RoleSeller}
	stats, err := svc.Stats(context.Background(), seller)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, 500.0, stats.TotalSellerPrice)
}

func TestStats_EmptyDatabase(t *testing.T) {
	svc, err := NewService(setupDashboardTestDB(t))
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), identity.Actor{Username: "admin", Role: enums.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TotalOrders)
	assert.Equal(t, 0.0, stats.AdminProfit)
}
