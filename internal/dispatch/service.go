package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type dispatchMarker interface {
	MarkDispatchedByTracking(ctx context.Context, trackingID string) (int64, error)
}

// Service exposes warehouse dispatch-scan operations.
type Service interface {
	Scan(ctx context.Context, actor identity.Actor, trackingID string) (*ScanResult, error)
	List(ctx context.Context, date string) ([]models.DispatchedParcel, error)
	Delete(ctx context.Context, actor identity.Actor, id uint) error
	Stats(ctx context.Context, date string) (*Stats, error)
}

// ScanResult reports one accepted scan.
type ScanResult struct {
	Parcel        *models.DispatchedParcel `json:"parcel"`
	Courier       enums.Courier            `json:"courier"`
	OrdersUpdated int64                    `json:"orders_updated"`
}

// Stats is the per-day courier breakdown.
type Stats struct {
	Date     string         `json:"date"`
	Total    int64          `json:"total"`
	Couriers []CourierCount `json:"couriers"`
}

type service struct {
	repo     *Repository
	orders   dispatchMarker
	dbClient *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a dispatch service instance.
func NewService(repo *Repository, orders dispatchMarker, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dispatch repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order marker required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		orders:   orders,
		dbClient: dbClient,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Scan records an outgoing parcel and flips its orders to dispatched. A
// tracking id is accepted once per calendar day; a repeat scan conflicts.
func (s *service) Scan(ctx context.Context, actor identity.Actor, trackingID string) (*ScanResult, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking_id is required")
	}

	now := s.now()
	dispatchDate := now.Format(dateLayout)

	existing, err := s.repo.FindByTrackingAndDate(ctx, trackingID, dispatchDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking previous scans")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "parcel already scanned today")
	}

	parcel := &models.DispatchedParcel{
		TrackingID:   trackingID,
		Courier:      enums.DetectCourier(trackingID),
		DispatchDate: dispatchDate,
		DispatchTime: now.Format(timeLayout),
	}
	if err := s.repo.Create(ctx, parcel); err != nil {
		if db.IsUniqueViolation(err, "idx_dispatched_tracking_date") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "parcel already scanned today")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording scan")
	}

	updated, err := s.orders.MarkDispatchedByTracking(ctx, trackingID)
	if err != nil {
		// The scan row stands; flipping the orders can be retried.
		if s.logg != nil {
			s.logg.Error(ctx, "marking orders dispatched failed", err)
		}
		updated = 0
	}

	return &ScanResult{
		Parcel:        parcel,
		Courier:       parcel.Courier,
		OrdersUpdated: updated,
	}, nil
}

func (s *service) List(ctx context.Context, date string) ([]models.DispatchedParcel, error) {
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD")
		}
	}

	parcels, err := s.repo.List(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing scans")
	}
	return parcels, nil
}

func (s *service) Delete(ctx context.Context, actor identity.Actor, id uint) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may delete scans")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "scan not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting scan")
	}
	return nil
}

// Stats aggregates the day's scans per courier; date defaults to today.
func (s *service) Stats(ctx context.Context, date string) (*Stats, error) {
	if date == "" {
		date = s.now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD")
	}

	counts, err := s.repo.CountByCourier(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating scans")
	}

	stats := &Stats{Date: date, Couriers: counts}
	for _, row := range counts {
		stats.Total += row.Count
	}
	return stats, nil
}
