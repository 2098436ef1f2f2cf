package dispatch

import (
	"context"
	"errors"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles dispatched-parcel persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, parcel *models.DispatchedParcel) error {
	return r.db.WithContext(ctx).Create(parcel).Error
}

// FindByTrackingAndDate reports whether the parcel was already scanned on the
// given day.
func (r *Repository) FindByTrackingAndDate(ctx context.Context, trackingID, dispatchDate string) (*models.DispatchedParcel, error) {
	var parcel models.DispatchedParcel
	err := r.db.WithContext(ctx).
		Where("tracking_id = ? AND dispatch_date = ?", trackingID, dispatchDate).
		First(&parcel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &parcel, nil
}

// List returns scans newest first, optionally for a single day.
func (r *Repository) List(ctx context.Context, dispatchDate string) ([]models.DispatchedParcel, error) {
	query := r.db.WithContext(ctx).Model(&models.DispatchedParcel{})
	if dispatchDate != "" {
		query = query.Where("dispatch_date = ?", dispatchDate)
	}

	var parcels []models.DispatchedParcel
	err := query.Order("created_at DESC, id DESC").Find(&parcels).Error
	return parcels, err
}

// Delete removes one scan. Returns gorm.ErrRecordNotFound on a miss.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.DispatchedParcel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CourierCount is one row of the per-day courier breakdown.
type CourierCount struct {
	Courier string `json:"courier"`
	Count   int64  `json:"count"`
}

// CountByCourier aggregates scans per courier for one day.
func (r *Repository) CountByCourier(ctx context.Context, dispatchDate string) ([]CourierCount, error) {
	var counts []CourierCount
	err := r.db.WithContext(ctx).
		Model(&models.DispatchedParcel{}).
		Select("courier, COUNT(*) AS count").
		Where("dispatch_date = ?", dispatchDate).
		Group("courier").
		Order("courier ASC").
		Scan(&counts).Error
	return counts, err
}
