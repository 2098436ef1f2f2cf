package order

import (
	"context"
	"errors"
	"strings"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles order persistence.
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

// ListFilter narrows List results. Nil/empty fields are ignored.
type ListFilter struct {
	SellerName  string
	Status      enums.OrderStatus
	ShipperPaid *int
}

func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Upsert inserts the order or, when the order number already exists,
// overwrites the existing row's mutable fields. Used by bulk import.
func (r *Repository) Upsert(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"seller_name", "customer_name", "customer_address", "city",
				"phone1", "phone2", "products", "seller_price", "dc",
				"shipper_price", "profit", "tracking_id", "status",
				"shipper_paid", "updated_at",
			}),
		}).
		Create(order).Error
}

func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByTracking returns the newest order carrying the tracking id, nil when
// none match. Warehouse scans use it to attach seller and customer context.
func (r *Repository) FindByTracking(ctx context.Context, trackingID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		Order("created_at DESC, id DESC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.SellerName != "" {
		query = query.Where("LOWER(seller_name) = LOWER(?)", filter.SellerName)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ShipperPaid != nil {
		query = query.Where("shipper_paid = ?", *filter.ShipperPaid)
	}

	var orders []models.Order
	err := query.Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

// Search matches the free-text query against order number, seller, customer
// fields, phones and tracking id. When sellerScope is non-empty the results
// are restricted to that seller.
func (r *Repository) Search(ctx context.Context, queryText, sellerScope string) ([]models.Order, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(queryText)) + "%"

	query := r.db.WithContext(ctx).Model(&models.Order{}).Where(
		`LOWER(order_number) LIKE ? OR LOWER(seller_name) LIKE ? OR LOWER(customer_name) LIKE ?
		 OR phone1 LIKE ? OR phone2 LIKE ? OR LOWER(tracking_id) LIKE ?`,
		pattern, pattern, pattern, pattern, pattern, pattern,
	)
	if sellerScope != "" {
		query = query.Where("LOWER(seller_name) = LOWER(?)", sellerScope)
	}

	var orders []models.Order
	err := query.Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

// Delete removes one order. Returns gorm.ErrRecordNotFound on a miss.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Order{})
	return result.RowsAffected, result.Error
}

func (r *Repository) DeleteAllForSeller(ctx context.Context, sellerName string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("LOWER(seller_name) = LOWER(?)", sellerName).
		Delete(&models.Order{})
	return result.RowsAffected, result.Error
}

// UpdateStatusByIdentifier sets status on the order matching the identifier
// field and seller. Returns the number of rows touched; zero means not found.
func (r *Repository) UpdateStatusByIdentifier(ctx context.Context, field, identifier, sellerName string, status enums.OrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where(field+" = ? AND LOWER(seller_name) = LOWER(?)", identifier, sellerName).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// UpdateTracking assigns a tracking id to the seller's order.
func (r *Repository) UpdateTracking(ctx context.Context, sellerName, orderNumber, trackingID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number = ? AND LOWER(seller_name) = LOWER(?)", orderNumber, sellerName).
		Update("tracking_id", trackingID)
	return result.RowsAffected, result.Error
}

// UpdateStatusByTracking sets status on every order carrying the tracking id,
// regardless of seller. Used by warehouse scan flows.
func (r *Repository) UpdateStatusByTracking(ctx context.Context, trackingID string, status enums.OrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tracking_id = ?", trackingID).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// MarkDispatchedByTracking flips pending orders with the tracking id to
// dispatched.
func (r *Repository) MarkDispatchedByTracking(ctx context.Context, trackingID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tracking_id = ?", trackingID).
		Update("status", enums.OrderStatusDispatched)
	return result.RowsAffected, result.Error
}

// MarkPaid flips shipper_paid on the seller's delivered/return orders with
// the given ids. Orders in other states are left untouched.
func (r *Repository) MarkPaid(ctx context.Context, sellerName string, orderIDs []uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ? AND LOWER(seller_name) = LOWER(?) AND status IN ?",
			orderIDs, sellerName,
			[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusReturn}).
		Update("shipper_paid", 1)
	return result.RowsAffected, result.Error
}

// UnpaidOrders returns the seller's delivered/return orders not yet settled
// with the shipper, oldest first.
func (r *Repository) UnpaidOrders(ctx context.Context, sellerName string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("LOWER(seller_name) = LOWER(?) AND status IN ? AND shipper_paid = 0",
			sellerName,
			[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusReturn}).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	return orders, err
}
