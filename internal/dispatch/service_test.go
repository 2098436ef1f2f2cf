package dispatch

import (
	"context"
	"testing"
	"time"

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

type fakeMarker struct {
	updated int64
	err     error
	calls   []string
}

func (f *fakeMarker) MarkDispatchedByTracking(ctx context.Context, trackingID string) (int64, error) {
	f.calls = append(f.calls, trackingID)
	return f.updated, f.err
}

func setupDispatchTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.DispatchedParcel{}))
	return conn
}

func newDispatchService(t *testing.T, conn *gorm.DB, marker *fakeMarker, at time.Time) Service {
	t.Helper()

	if marker == nil {
		marker = &fakeMarker{}
	}
	svc, err := NewService(NewRepository(conn), marker, &db.Client{}, nil)
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return at }
	return svc
}

var (
	adminActor  = identity.Actor{UserID: 1, Username: "admin", Role: enums.RoleAdmin}
	sellerActor = identity.Actor{UserID: 2, Username: "acme", Role: enums.RoleSeller}
)

var scanTime = time.Date(2025, 9, 1, 14, 30, 5, 0, time.UTC)

func TestScan_RecordsParcelAndFlipsOrders(t *testing.T) {
	marker := &fakeMarker{updated: 2}
	svc := newDispatchService(t, setupDispatchTestDB(t), marker, scanTime)

	result, err := svc.Scan(context.Background(), adminActor, " 1700345 ")
	require.NoError(t, err)

	assert.Equal(t, enums.CourierTCS, result.Courier)
	assert.Equal(t, int64(2), result.OrdersUpdated)
	assert.Equal(t, "2025-09-01", result.Parcel.DispatchDate)
	assert.Equal(t, "14:30:05", result.Parcel.DispatchTime)
	assert.Equal(t, []string{"1700345"}, marker.calls)
}

func TestScan_DuplicateSameDayConflicts(t *testing.T) {
	conn := setupDispatchTestDB(t)
	svc := newDispatchService(t, conn, nil, scanTime)
	ctx := context.Background()

	_, err := svc.Scan(ctx, adminActor, "AM123456")
	require.NoError(t, err)

	_, err = svc.Scan(ctx, adminActor, "AM123456")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestScan_SameTrackingNextDayAccepted(t *testing.T) {
	conn := setupDispatchTestDB(t)
	ctx := context.Background()

	_, err := newDispatchService(t, conn, nil, scanTime).Scan(ctx, adminActor, "5512345")
	require.NoError(t, err)

	_, err = newDispatchService(t, conn, nil, scanTime.Add(24*time.Hour)).Scan(ctx, adminActor, "5512345")
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.DispatchedParcel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestScan_MarkerFailureKeepsScan(t *testing.T) {
	conn := setupDispatchTestDB(t)
	marker := &fakeMarker{err: assert.AnError}
	svc := newDispatchService(t, conn, marker, scanTime)

	result, err := svc.Scan(context.Background(), adminActor, "1900777")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.OrdersUpdated)

	var count int64
	require.NoError(t, conn.Model(&models.DispatchedParcel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestScan_CourierDetection(t *testing.T) {
	cases := map[string]enums.Courier{
		"1712345":  enums.CourierTCS,
		"5512345":  enums.CourierMP,
		"5612345":  enums.CourierMP,
		"1912345":  enums.CourierTrax,
		"am999":    enums.CourierLeopard,
		"zz000000": enums.CourierUnknown,
	}
	for trackingID, want := range cases {
		svc := newDispatchService(t, setupDispatchTestDB(t), nil, scanTime)
		result, err := svc.Scan(context.Background(), adminActor, trackingID)
		require.NoError(t, err)
		assert.Equal(t, want, result.Courier, trackingID)
	}
}

func TestStats(t *testing.T) {
	conn := setupDispatchTestDB(t)
	svc := newDispatchService(t, conn, nil, scanTime)
	ctx := context.Background()

	for _, trackingID := range []string{"1700001", "1700002", "AM55", "5600009"} {
		_, err := svc.Scan(ctx, adminActor, trackingID)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "2025-09-01", stats.Date)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, []CourierCount{
		{Courier: "Leopard", Count: 1},
		{Courier: "M&P", Count: 1},
		{Courier: "TCS", Count: 2},
	}, stats.Couriers)

	empty, err := svc.Stats(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Total)

	_, err = svc.Stats(ctx, "not-a-date")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestListAndDelete(t *testing.T) {
	conn := setupDispatchTestDB(t)
	svc := newDispatchService(t, conn, nil, scanTime)
	ctx := context.Background()

	result, err := svc.Scan(ctx, adminActor, "1700001")
	require.NoError(t, err)

	parcels, err := svc.List(ctx, "2025-09-01")
	require.NoError(t, err)
	assert.Len(t, parcels, 1)

	err = svc.Delete(ctx, sellerActor, result.Parcel.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	require.NoError(t, svc.Delete(ctx, adminActor, result.Parcel.ID))

	err = svc.Delete(ctx, adminActor, result.Parcel.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
