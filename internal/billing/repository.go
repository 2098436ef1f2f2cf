package billing

import (
	"context"
	"errors"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles bill persistence.
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

// Upsert stores the bill keyed on bill_number with last-write-wins semantics.
func (r *Repository) Upsert(ctx context.Context, bill *models.Bill) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bill_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"seller_name", "bill_data", "summary_data", "updated_at"}),
		}).
		Create(bill).Error
}

func (r *Repository) FindByBillNumber(ctx context.Context, billNumber string) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).
		Where("bill_number = ?", billNumber).
		First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).First(&bill, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// List returns stored bills, newest first, optionally scoped to one seller.
func (r *Repository) List(ctx context.Context, sellerScope string) ([]models.Bill, error) {
	query := r.db.WithContext(ctx).Model(&models.Bill{})
	if sellerScope != "" {
		query = query.Where("LOWER(seller_name) = LOWER(?)", sellerScope)
	}

	var bills []models.Bill
	err := query.Order("created_at DESC, id DESC").Find(&bills).Error
	return bills, err
}

// Delete removes one bill. Returns gorm.ErrRecordNotFound on a miss.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Bill{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
