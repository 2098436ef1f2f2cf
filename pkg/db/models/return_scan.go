package models

import "time"

// ReturnScan records one warehouse scan of a returned parcel. A tracking id
// may only be scanned once per calendar day. Seller and customer context is
// copied from the matching order at scan time; "unknown" when no order
// carries the tracking id.
type ReturnScan struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrackingID   string    `gorm:"column:tracking_id;not null;uniqueIndex:idx_return_scans_tracking_date" json:"tracking_id"`
	OrderNumber  string    `gorm:"column:order_number" json:"order_number"`
	SellerName   string    `gorm:"column:seller_name;index" json:"seller_name"`
	CustomerName string    `gorm:"column:customer_name" json:"customer_name"`
	Status       string    `gorm:"column:status;not null;default:'scanned'" json:"status"`
	ScanDate     string    `gorm:"column:scan_date;not null;uniqueIndex:idx_return_scans_tracking_date" json:"scan_date"`
	ScanTime     string    `gorm:"column:scan_time;not null" json:"scan_time"`
	ScannedBy    string    `gorm:"column:scanned_by" json:"scanned_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
