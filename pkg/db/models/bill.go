package models

import "time"

// Bill freezes a seller's unpaid-order set at generation time. BillData and
// SummaryData carry the adjusted orders and aggregate as JSON text; stored
// bills never change when the underlying orders later do.
type Bill struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BillNumber  string    `gorm:"column:bill_number;uniqueIndex;not null" json:"bill_number"`
	SellerName  string    `gorm:"column:seller_name;index;not null" json:"seller_name"`
	BillData    string    `gorm:"column:bill_data;type:text" json:"-"`
	SummaryData string    `gorm:"column:summary_data;type:text" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
