package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
)

// ShipperPricer resolves the shipper cost of a products field against the
// seller's current price list.
type ShipperPricer interface {
	ShipperPrice(ctx context.Context, productsField, sellerName string) float64
}

// Service exposes order intake, querying and reconciliation operations.
type Service interface {
	Create(ctx context.Context, actor identity.Actor, input CreateInput) (*models.Order, error)
	Update(ctx context.Context, actor identity.Actor, id uint, input UpdateInput) (*models.Order, error)
	Get(ctx context.Context, actor identity.Actor, id uint) (*models.Order, error)
	List(ctx context.Context, actor identity.Actor, filter ListFilter) ([]models.Order, error)
	Search(ctx context.Context, actor identity.Actor, query string) ([]models.Order, error)
	Delete(ctx context.Context, actor identity.Actor, id uint) error
	DeleteAll(ctx context.Context, actor identity.Actor) (int64, error)
	DeleteAllForSeller(ctx context.Context, actor identity.Actor, sellerName string) (int64, error)

	MarkPaid(ctx context.Context, actor identity.Actor, sellerName string, orderIDs []uint) (int64, error)
	UnpaidOrders(ctx context.Context, actor identity.Actor, sellerName string) ([]models.Order, error)

	BulkCreate(ctx context.Context, actor identity.Actor, rows []BulkCreateRow) (*BulkCreateResult, error)
	BulkUpdateStatus(ctx context.Context, actor identity.Actor, input BulkStatusInput) (*BulkResult, error)
	BulkUpdateTracking(ctx context.Context, actor identity.Actor, input BulkTrackingInput) (*BulkResult, error)
	BulkMarkReturn(ctx context.Context, actor identity.Actor, trackingIDs []string) (*BulkResult, error)
	BulkMarkDelivered(ctx context.Context, actor identity.Actor, trackingIDs []string) (*BulkResult, error)
}

// CreateInput is the validated order-creation payload. ShipperPrice and
// Profit are never accepted from the client.
type CreateInput struct {
	OrderNumber     string  `json:"order_number" validate:"required"`
	SellerName      string  `json:"seller_name" validate:"required"`
	CustomerName    string  `json:"customer_name"`
	CustomerAddress string  `json:"customer_address"`
	City            string  `json:"city"`
	Phone1          string  `json:"phone1"`
	Phone2          string  `json:"phone2"`
	Products        string  `json:"products"`
	SellerPrice     float64 `json:"seller_price" validate:"gte=0"`
	DC              float64 `json:"dc" validate:"gte=0"`
	TrackingID      string  `json:"tracking_id"`
}

// UpdateInput carries a partial-field merge; nil fields keep the stored value.
type UpdateInput struct {
	CustomerName    *string            `json:"customer_name"`
	CustomerAddress *string            `json:"customer_address"`
	City            *string            `json:"city"`
	Phone1          *string            `json:"phone1"`
	Phone2          *string            `json:"phone2"`
	Products        *string            `json:"products"`
	SellerPrice     *float64           `json:"seller_price"`
	DC              *float64           `json:"dc"`
	TrackingID      *string            `json:"tracking_id"`
	Status          *enums.OrderStatus `json:"status"`
}

type service struct {
	repo     *Repository
	pricer   ShipperPricer
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs an order service instance.
func NewService(repo *Repository, pricer ShipperPricer, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("shipper pricer required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, pricer: pricer, dbClient: dbClient, logg: logg}, nil
}

// Create stores a new pending order. The shipper price is resolved from the
// seller's price list and profit derived from it; both are server-owned.
func (s *service) Create(ctx context.Context, actor identity.Actor, input CreateInput) (*models.Order, error) {
	sellerName := strings.ToLower(strings.TrimSpace(input.SellerName))
	if sellerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	if strings.TrimSpace(input.OrderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_number is required")
	}
	if !actor.CanActFor(sellerName) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only create their own orders")
	}

	existing, err := s.repo.FindByOrderNumber(ctx, strings.TrimSpace(input.OrderNumber))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking order number")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order number already exists")
	}

	shipperPrice := s.pricer.ShipperPrice(ctx, input.Products, sellerName)

	order := &models.Order{
		OrderNumber:     strings.TrimSpace(input.OrderNumber),
		SellerName:      sellerName,
		CustomerName:    input.CustomerName,
		CustomerAddress: input.CustomerAddress,
		City:            input.City,
		Phone1:          input.Phone1,
		Phone2:          input.Phone2,
		Products:        input.Products,
		SellerPrice:     input.SellerPrice,
		DC:              input.DC,
		ShipperPrice:    shipperPrice,
		Profit:          input.SellerPrice - input.DC - shipperPrice,
		TrackingID:      strings.TrimSpace(input.TrackingID),
		Status:          enums.OrderStatusPending,
		ShipperPaid:     0,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if db.IsUniqueViolation(err, "idx_orders_order_number") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}
	return order, nil
}

// Update merges the supplied fields over the stored row and recomputes the
// shipper price and profit from the effective values.
func (s *service) Update(ctx context.Context, actor identity.Actor, id uint, input UpdateInput) (*models.Order, error) {
	order, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.CustomerName != nil {
		order.CustomerName = *input.CustomerName
	}
	if input.CustomerAddress != nil {
		order.CustomerAddress = *input.CustomerAddress
	}
	if input.City != nil {
		order.City = *input.City
	}
	if input.Phone1 != nil {
		order.Phone1 = *input.Phone1
	}
	if input.Phone2 != nil {
		order.Phone2 = *input.Phone2
	}
	if input.Products != nil {
		order.Products = *input.Products
	}
	if input.SellerPrice != nil {
		if *input.SellerPrice < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_price must not be negative")
		}
		order.SellerPrice = *input.SellerPrice
	}
	if input.DC != nil {
		if *input.DC < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "dc must not be negative")
		}
		order.DC = *input.DC
	}
	if input.TrackingID != nil {
		order.TrackingID = strings.TrimSpace(*input.TrackingID)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *input.Status))
		}
		order.Status = *input.Status
	}

	order.ShipperPrice = s.pricer.ShipperPrice(ctx, order.Products, order.SellerName)
	order.Profit = order.SellerPrice - order.DC - order.ShipperPrice

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, actor identity.Actor, id uint) (*models.Order, error) {
	return s.loadScoped(ctx, actor, id)
}

func (s *service) List(ctx context.Context, actor identity.Actor, filter ListFilter) ([]models.Order, error) {
	if !actor.IsAdmin() {
		filter.SellerName = actor.Username
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", filter.Status))
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, nil
}

func (s *service) Search(ctx context.Context, actor identity.Actor, query string) ([]models.Order, error) {
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}

	scope := ""
	if !actor.IsAdmin() {
		scope = actor.Username
	}

	orders, err := s.repo.Search(ctx, query, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching orders")
	}
	return orders, nil
}

func (s *service) Delete(ctx context.Context, actor identity.Actor, id uint) error {
	if _, err := s.loadScoped(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting order")
	}
	return nil
}

func (s *service) DeleteAll(ctx context.Context, actor identity.Actor) (int64, error) {
	if !actor.IsAdmin() {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may delete all orders")
	}
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting all orders")
	}
	return deleted, nil
}

func (s *service) DeleteAllForSeller(ctx context.Context, actor identity.Actor, sellerName string) (int64, error) {
	if !actor.IsAdmin() {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may delete seller orders")
	}
	if strings.TrimSpace(sellerName) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	deleted, err := s.repo.DeleteAllForSeller(ctx, sellerName)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting seller orders")
	}
	return deleted, nil
}

// MarkPaid settles the seller's delivered/return orders with the shipper.
func (s *service) MarkPaid(ctx context.Context, actor identity.Actor, sellerName string, orderIDs []uint) (int64, error) {
	if strings.TrimSpace(sellerName) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	if len(orderIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order_ids is required")
	}
	if !actor.CanActFor(sellerName) {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only settle their own orders")
	}

	updated, err := s.repo.MarkPaid(ctx, sellerName, orderIDs)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking orders paid")
	}
	return updated, nil
}

func (s *service) UnpaidOrders(ctx context.Context, actor identity.Actor, sellerName string) ([]models.Order, error) {
	if strings.TrimSpace(sellerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	if !actor.CanActFor(sellerName) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only view their own orders")
	}

	orders, err := s.repo.UnpaidOrders(ctx, sellerName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading unpaid orders")
	}
	return orders, nil
}

// loadScoped fetches an order and enforces seller ownership.
func (s *service) loadScoped(ctx context.Context, actor identity.Actor, id uint) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !actor.CanActFor(order.SellerName) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only access their own orders")
	}
	return order, nil
}
