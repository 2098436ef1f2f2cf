package product

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

func setupProductTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn), &db.Client{}, nil)
	require.NoError(t, err)
	return svc
}

var (
	adminActor  = identity.Actor{UserID: 1, Username: "admin", Role: enums.RoleAdmin}
	sellerActor = identity.Actor{UserID: 2, Username: "acme", Role: enums.RoleSeller}
)

func TestUpsert_CreatesThenUpdatesPrice(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, adminActor, UpsertInput{SellerName: "Acme", ProductName: "Shirt", Price: 500})
	require.NoError(t, err)
	assert.Equal(t, "acme", created.SellerName)
	assert.Equal(t, "shirt", created.ProductName)

	updated, err := svc.Upsert(ctx, adminActor, UpsertInput{SellerName: "ACME", ProductName: "SHIRT", Price: 650})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 650.0, updated.Price)

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsert_RejectsSeller(t *testing.T) {
	svc := newTestService(t, setupProductTestDB(t))

	_, err := svc.Upsert(context.Background(), sellerActor, UpsertInput{SellerName: "acme", ProductName: "shirt", Price: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestUpsert_Validation(t *testing.T) {
	svc := newTestService(t, setupProductTestDB(t))
	ctx := context.Background()

	_, err := svc.Upsert(ctx, adminActor, UpsertInput{SellerName: "", ProductName: "shirt", Price: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Upsert(ctx, adminActor, UpsertInput{SellerName: "acme", ProductName: "shirt", Price: -5})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestBulkUpsert_MixedRows(t *testing.T) {
	svc := newTestService(t, setupProductTestDB(t))

	result, err := svc.BulkUpsert(context.Background(), adminActor, []UpsertInput{
		{SellerName: "acme", ProductName: "shirt", Price: 500},
		{SellerName: "acme", ProductName: "belt", Price: 300},
		{SellerName: "", ProductName: "ghost", Price: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.UpsertedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 3")
}

func TestBulkUpsert_EmptyRejected(t *testing.T) {
	svc := newTestService(t, setupProductTestDB(t))

	_, err := svc.BulkUpsert(context.Background(), adminActor, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestList_SellerScoped(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, adminActor, UpsertInput{SellerName: "acme", ProductName: "shirt", Price: 500})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, adminActor, UpsertInput{SellerName: "other", ProductName: "cap", Price: 150})
	require.NoError(t, err)

	all, err := svc.List(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(ctx, sellerActor)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "shirt", mine[0].ProductName)
}

func TestDelete(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, adminActor, UpsertInput{SellerName: "acme", ProductName: "shirt", Price: 500})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, adminActor, created.ID))

	err = svc.Delete(ctx, adminActor, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	err = svc.Delete(ctx, sellerActor, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestPricesFor(t *testing.T) {
	conn := setupProductTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Product{SellerName: "acme", ProductName: "shirt", Price: 500}))
	require.NoError(t, repo.Upsert(ctx, &models.Product{SellerName: "acme", ProductName: "belt", Price: 300}))

	prices, err := repo.PricesFor(ctx, "ACME", []string{"Shirt", "belt", "mystery"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"shirt": 500, "belt": 300}, prices)
}
