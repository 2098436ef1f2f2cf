package returns

import (
	"context"
	"errors"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles return-scan persistence.
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

func (r *Repository) Create(ctx context.Context, scan *models.ReturnScan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

// FindByTrackingAndDate reports whether the parcel was already scanned on the
// given day.
func (r *Repository) FindByTrackingAndDate(ctx context.Context, trackingID, scanDate string) (*models.ReturnScan, error) {
	var scan models.ReturnScan
	err := r.db.WithContext(ctx).
		Where("tracking_id = ? AND scan_date = ?", trackingID, scanDate).
		First(&scan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// List returns scans newest first, optionally for a single day and seller.
func (r *Repository) List(ctx context.Context, scanDate, sellerName string) ([]models.ReturnScan, error) {
	query := r.db.WithContext(ctx).Model(&models.ReturnScan{})
	if scanDate != "" {
		query = query.Where("scan_date = ?", scanDate)
	}
	if sellerName != "" {
		query = query.Where("LOWER(seller_name) = LOWER(?)", sellerName)
	}

	var scans []models.ReturnScan
	err := query.Order("created_at DESC, id DESC").Find(&scans).Error
	return scans, err
}

// Delete removes one scan. Returns gorm.ErrRecordNotFound on a miss.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ReturnScan{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByDate removes every scan recorded on the given day.
func (r *Repository) DeleteByDate(ctx context.Context, scanDate string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("scan_date = ?", scanDate).
		Delete(&models.ReturnScan{})
	return result.RowsAffected, result.Error
}
