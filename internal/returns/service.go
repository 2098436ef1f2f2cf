package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"

	statusScanned = "scanned"
	unknownName   = "unknown"
)

type orderFinder interface {
	FindByTracking(ctx context.Context, trackingID string) (*models.Order, error)
}

// Service exposes warehouse return-scan operations.
type Service interface {
	Scan(ctx context.Context, actor identity.Actor, trackingID string) (*models.ReturnScan, error)
	List(ctx context.Context, actor identity.Actor, date, sellerName string) ([]models.ReturnScan, error)
	Delete(ctx context.Context, actor identity.Actor, id uint) error
	ClearDate(ctx context.Context, actor identity.Actor, date string) (int64, error)
}

type service struct {
	repo     *Repository
	orders   orderFinder
	dbClient *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a return-scan service instance.
func NewService(repo *Repository, orders orderFinder, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("return-scan repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order finder required")
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

// Scan logs a returned parcel, attaching seller and customer context from
// the matching order. A tracking id is accepted once per calendar day; a
// repeat scan conflicts. The order itself is not touched here; status flips
// go through the bulk return endpoint.
func (s *service) Scan(ctx context.Context, actor identity.Actor, trackingID string) (*models.ReturnScan, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking_id is required")
	}

	now := s.now()
	scanDate := now.Format(dateLayout)

	existing, err := s.repo.FindByTrackingAndDate(ctx, trackingID, scanDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking previous scans")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "parcel already scanned today")
	}

	order, err := s.orders.FindByTracking(ctx, trackingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up order for scan")
	}

	scan := &models.ReturnScan{
		TrackingID:   trackingID,
		SellerName:   unknownName,
		CustomerName: unknownName,
		Status:       statusScanned,
		ScanDate:     scanDate,
		ScanTime:     now.Format(timeLayout),
		ScannedBy:    actor.Username,
	}
	if order != nil {
		scan.OrderNumber = order.OrderNumber
		if order.SellerName != "" {
			scan.SellerName = order.SellerName
		}
		if order.CustomerName != "" {
			scan.CustomerName = order.CustomerName
		}
	}

	if err := s.repo.Create(ctx, scan); err != nil {
		if db.IsUniqueViolation(err, "idx_return_scans_tracking_date") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "parcel already scanned today")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording scan")
	}
	return scan, nil
}

// List returns scans newest first. Sellers only ever see their own scans;
// admins may narrow by seller name.
func (s *service) List(ctx context.Context, actor identity.Actor, date, sellerName string) ([]models.ReturnScan, error) {
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD")
		}
	}
	if !actor.IsAdmin() {
		sellerName = actor.Username
	}

	scans, err := s.repo.List(ctx, date, strings.TrimSpace(sellerName))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing scans")
	}
	return scans, nil
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

// ClearDate wipes one day's scan log after the returns are reconciled.
func (s *service) ClearDate(ctx context.Context, actor identity.Actor, date string) (int64, error) {
	if !actor.IsAdmin() {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may clear scans")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD")
	}

	deleted, err := s.repo.DeleteByDate(ctx, date)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing scans")
	}
	return deleted, nil
}
