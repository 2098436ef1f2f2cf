package expense

import (
	"context"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles expense-ledger persistence.
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

// CreateIfAbsent inserts the expense unless a row already exists for its
// (bill_number, expense_type) pair. The unique index carries the at-most-once
// guarantee; a conflict is reported as created=false, not an error.
func (r *Repository) CreateIfAbsent(ctx context.Context, exp *models.Expense) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "expense_type"}, {Name: "bill_number"}},
			DoNothing: true,
		}).
		Create(exp)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByBillNumber returns the ledger rows derived from one bill.
func (r *Repository) ListByBillNumber(ctx context.Context, billNumber string) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("bill_number = ?", billNumber).
		Order("expense_type ASC").
		Find(&expenses).Error
	return expenses, err
}

// List returns every ledger row, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

// DeleteByBillNumber removes the ledger rows of a deleted bill.
func (r *Repository) DeleteByBillNumber(ctx context.Context, billNumber string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("bill_number = ?", billNumber).
		Delete(&models.Expense{})
	return result.RowsAffected, result.Error
}
