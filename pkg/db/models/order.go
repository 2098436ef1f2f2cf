package models

import (
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// Order is one customer shipment. SellerName is stored lowercase so identity
// comparisons stay case-insensitive across drivers. ShipperPrice and Profit
// are always derived server-side; client values for them are ignored.
type Order struct {
	ID              uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderNumber     string            `gorm:"column:order_number;uniqueIndex;not null" json:"order_number"`
	SellerName      string            `gorm:"column:seller_name;index;not null" json:"seller_name"`
	CustomerName    string            `gorm:"column:customer_name" json:"customer_name"`
	CustomerAddress string            `gorm:"column:customer_address" json:"customer_address"`
	City            string            `gorm:"column:city" json:"city"`
	Phone1          string            `gorm:"column:phone1" json:"phone1"`
	Phone2          string            `gorm:"column:phone2" json:"phone2"`
	Products        string            `gorm:"column:products" json:"products"`
	SellerPrice     float64           `gorm:"column:seller_price;not null;default:0" json:"seller_price"`
	DC              float64           `gorm:"column:dc;not null;default:0" json:"dc"`
	ShipperPrice    float64           `gorm:"column:shipper_price;not null;default:0" json:"shipper_price"`
	Profit          float64           `gorm:"column:profit;not null;default:0" json:"profit"`
	TrackingID      string            `gorm:"column:tracking_id;index" json:"tracking_id"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	ShipperPaid     int               `gorm:"column:shipper_paid;not null;default:0" json:"shipper_paid"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
