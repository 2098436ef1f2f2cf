package models

import (
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// DispatchedParcel records one warehouse scan of an outgoing parcel. A
// tracking id may only be scanned once per calendar day.
type DispatchedParcel struct {
	ID           uint          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrackingID   string        `gorm:"column:tracking_id;not null;uniqueIndex:idx_dispatched_tracking_date" json:"tracking_id"`
	Courier      enums.Courier `gorm:"column:courier;not null" json:"courier"`
	DispatchDate string        `gorm:"column:dispatch_date;not null;uniqueIndex:idx_dispatched_tracking_date" json:"dispatch_date"`
	DispatchTime string        `gorm:"column:dispatch_time;not null" json:"dispatch_time"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
