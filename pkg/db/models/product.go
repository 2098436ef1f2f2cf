package models

import "time"

// Product is a seller's price-list entry. The (seller_name, product_name)
// pair is unique; both parts are stored lowercase.
type Product struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SellerName  string    `gorm:"column:seller_name;not null;uniqueIndex:idx_products_seller_product" json:"seller_name"`
	ProductName string    `gorm:"column:product_name;not null;uniqueIndex:idx_products_seller_product" json:"product_name"`
	Price       float64   `gorm:"column:price;not null;default:0" json:"price"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
