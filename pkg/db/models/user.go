package models

import (
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// User is an admin or seller login account. Seller accounts double as the
// seller identity on orders and price lists (matched by username).
type User struct {
	ID           uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"column:username;uniqueIndex;not null" json:"username"`
	Password     string     `gorm:"column:password;not null" json:"-"`
	Role         enums.Role `gorm:"column:role;not null;default:'seller'" json:"role"`
	IsBlocked    int        `gorm:"column:is_blocked;not null;default:0" json:"is_blocked"`
	BlockedUntil *time.Time `gorm:"column:blocked_until" json:"blocked_until"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
