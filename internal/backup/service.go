package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is a full JSON export of every table.
type Snapshot struct {
	Version           int                       `json:"version"`
	CreatedAt         time.Time                 `json:"created_at"`
	Users             []UserRow                 `json:"users"`
	Orders            []models.Order            `json:"orders"`
	Products          []models.Product          `json:"products"`
	Bills             []BillRow                 `json:"bills"`
	Expenses          []models.Expense          `json:"expenses"`
	DispatchedParcels []models.DispatchedParcel `json:"dispatched_parcels"`
	ReturnScans       []models.ReturnScan       `json:"return_scans"`
}

// UserRow mirrors models.User but serializes the password hash. The model
// hides it from API responses; a backup must round-trip it.
type UserRow struct {
	ID           uint       `gorm:"column:id;primaryKey" json:"id"`
	Username     string     `gorm:"column:username" json:"username"`
	Password     string     `gorm:"column:password" json:"password"`
	Role         enums.Role `gorm:"column:role" json:"role"`
	IsBlocked    int        `gorm:"column:is_blocked" json:"is_blocked"`
	BlockedUntil *time.Time `gorm:"column:blocked_until" json:"blocked_until"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (UserRow) TableName() string { return "users" }

// BillRow mirrors models.Bill with the serialized documents included.
type BillRow struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	BillNumber  string    `gorm:"column:bill_number" json:"bill_number"`
	SellerName  string    `gorm:"column:seller_name" json:"seller_name"`
	BillData    string    `gorm:"column:bill_data" json:"bill_data"`
	SummaryData string    `gorm:"column:summary_data" json:"summary_data"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (BillRow) TableName() string { return "bills" }

// RestoreResult reports per-table row counts after a restore.
type RestoreResult struct {
	Message string           `json:"message"`
	Counts  map[string]int64 `json:"counts"`
}

// Service exports and restores the full dataset. Admin only.
type Service interface {
	Export(ctx context.Context, actor identity.Actor) (*Snapshot, error)
	Restore(ctx context.Context, actor identity.Actor, snapshot *Snapshot) (*RestoreResult, error)
}

type service struct {
	db   *gorm.DB
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs a backup service instance.
func NewService(db *gorm.DB, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: db, logg: logg, now: time.Now}, nil
}

// Export reads every table into one snapshot document. Password hashes are
// included; the export is meant for operator-held storage, not end users.
func (s *service) Export(ctx context.Context, actor identity.Actor) (*Snapshot, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may export backups")
	}

	snapshot := &Snapshot{Version: 1, CreatedAt: s.now()}

	reads := []struct {
		name string
		dest any
	}{
		{"users", &snapshot.Users},
		{"orders", &snapshot.Orders},
		{"products", &snapshot.Products},
		{"bills", &snapshot.Bills},
		{"expenses", &snapshot.Expenses},
		{"dispatched_parcels", &snapshot.DispatchedParcels},
		{"return_scans", &snapshot.ReturnScans},
	}
	for _, read := range reads {
		if err := s.db.WithContext(ctx).Find(read.dest).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("exporting %s", read.name))
		}
	}
	return snapshot, nil
}

// Restore upserts every snapshot row by primary key. Existing rows are
// overwritten; rows absent from the snapshot are left alone.
func (s *service) Restore(ctx context.Context, actor identity.Actor, snapshot *Snapshot) (*RestoreResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may restore backups")
	}
	if snapshot == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot is required")
	}

	result := &RestoreResult{Counts: map[string]int64{}}

	restore := func(table string, rows any, count int) error {
		if count == 0 {
			result.Counts[table] = 0
			return nil
		}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(rows).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("restoring %s", table))
		}
		result.Counts[table] = int64(count)
		return nil
	}

	if err := restore("users", &snapshot.Users, len(snapshot.Users)); err != nil {
		return nil, err
	}
	if err := restore("orders", &snapshot.Orders, len(snapshot.Orders)); err != nil {
		return nil, err
	}
	if err := restore("products", &snapshot.Products, len(snapshot.Products)); err != nil {
		return nil, err
	}
	if err := restore("bills", &snapshot.Bills, len(snapshot.Bills)); err != nil {
		return nil, err
	}
	if err := restore("expenses", &snapshot.Expenses, len(snapshot.Expenses)); err != nil {
		return nil, err
	}
	if err := restore("dispatched_parcels", &snapshot.DispatchedParcels, len(snapshot.DispatchedParcels)); err != nil {
		return nil, err
	}
	if err := restore("return_scans", &snapshot.ReturnScans, len(snapshot.ReturnScans)); err != nil {
		return nil, err
	}

	total := int64(0)
	for _, count := range result.Counts {
		total += count
	}
	result.Message = fmt.Sprintf("restored %d rows across %d tables", total, len(result.Counts))

	if s.logg != nil {
		s.logg.Info(ctx, result.Message)
	}
	return result, nil
}
