package models

import (
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// Expense is a ledger line derived from a generated bill. The unique index on
// (bill_number, expense_type) is what makes expense derivation at-most-once:
// a concurrent regeneration hits the constraint instead of double-counting.
type Expense struct {
	ID          uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SellerName  string            `gorm:"column:seller_name;not null" json:"seller_name"`
	ExpenseType enums.ExpenseType `gorm:"column:expense_type;not null;uniqueIndex:idx_expenses_bill_type" json:"expense_type"`
	Amount      float64           `gorm:"column:amount;not null" json:"amount"`
	Description string            `gorm:"column:description" json:"description"`
	BillNumber  string            `gorm:"column:bill_number;not null;uniqueIndex:idx_expenses_bill_type" json:"bill_number"`
	BillID      uint              `gorm:"column:bill_id" json:"bill_id"`
	CreatedBy   string            `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
