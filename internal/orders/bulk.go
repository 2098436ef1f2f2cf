package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
)

// Identifier fields accepted by the bulk status endpoint.
const (
	UpdateByTrackingID  = "tracking_id"
	UpdateByOrderNumber = "order_number"
)

// BulkStatusInput is the bulk status-update payload.
type BulkStatusInput struct {
	SellerName  string            `json:"seller_name" validate:"required"`
	UpdateBy    string            `json:"update_by" validate:"required,oneof=tracking_id order_number"`
	NewStatus   enums.OrderStatus `json:"new_status" validate:"required"`
	Identifiers []string          `json:"identifiers" validate:"required,min=1"`
}

// BulkTrackingInput is the bulk tracking-assignment payload.
type BulkTrackingInput struct {
	SellerName string           `json:"seller_name" validate:"required"`
	Updates    []TrackingUpdate `json:"updates" validate:"required,min=1,dive"`
}

// TrackingUpdate maps one order number to its courier tracking id.
type TrackingUpdate struct {
	OrderNumber string `json:"order_number" validate:"required"`
	TrackingID  string `json:"tracking_id" validate:"required"`
}

// BulkCreateRow is one order in an import batch. Field-level validation is
// per row so one bad row cannot reject the batch.
type BulkCreateRow struct {
	OrderNumber     string            `json:"order_number"`
	SellerName      string            `json:"seller_name"`
	CustomerName    string            `json:"customer_name"`
	CustomerAddress string            `json:"customer_address"`
	City            string            `json:"city"`
	Phone1          string            `json:"phone1"`
	Phone2          string            `json:"phone2"`
	Products        string            `json:"products"`
	SellerPrice     float64           `json:"seller_price"`
	DC              float64           `json:"dc"`
	TrackingID      string            `json:"tracking_id"`
	Status          enums.OrderStatus `json:"status"`
	ShipperPaid     int               `json:"shipper_paid"`
}

// BulkCreateResult accounts for an import batch.
type BulkCreateResult struct {
	Message        string   `json:"message"`
	ImportedCount  int      `json:"imported_count"`
	ErrorCount     int      `json:"error_count"`
	TotalProcessed int      `json:"total_processed"`
	Errors         []string `json:"errors"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

// BulkResult accounts for every row of a bulk operation. Rows are
// independent: not-found is data, a storage error is isolated and the batch
// continues.
type BulkResult struct {
	Message        string   `json:"message"`
	UpdatedCount   int      `json:"updated_count"`
	NotFoundCount  int      `json:"not_found_count"`
	TotalProcessed int      `json:"total_processed"`
	NotFound       []string `json:"not_found"`
	Errors         []string `json:"errors"`
}

func newBulkResult() *BulkResult {
	return &BulkResult{NotFound: []string{}, Errors: []string{}}
}

// BulkCreate imports a batch of orders, upserting on order number so a
// re-uploaded sheet overwrites earlier rows. Shipper price and profit are
// recomputed per row from the seller's price list; rows fail independently.
func (s *service) BulkCreate(ctx context.Context, actor identity.Actor, rows []BulkCreateRow) (*BulkCreateResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may import orders")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders is required")
	}

	started := time.Now()
	result := &BulkCreateResult{Errors: []string{}}
	for i, row := range rows {
		result.TotalProcessed++

		orderNumber := strings.TrimSpace(row.OrderNumber)
		sellerName := strings.ToLower(strings.TrimSpace(row.SellerName))
		if orderNumber == "" || sellerName == "" {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: order_number and seller_name are required", i+1))
			continue
		}

		status := row.Status
		if status == "" {
			status = enums.OrderStatusPending
		}
		if !status.IsValid() {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid status %q", i+1, row.Status))
			continue
		}

		shipperPaid := 0
		if row.ShipperPaid != 0 {
			shipperPaid = 1
		}

		shipperPrice := s.pricer.ShipperPrice(ctx, row.Products, sellerName)
		order := &models.Order{
			OrderNumber:     orderNumber,
			SellerName:      sellerName,
			CustomerName:    row.CustomerName,
			CustomerAddress: row.CustomerAddress,
			City:            row.City,
			Phone1:          row.Phone1,
			Phone2:          row.Phone2,
			Products:        row.Products,
			SellerPrice:     row.SellerPrice,
			DC:              row.DC,
			ShipperPrice:    shipperPrice,
			Profit:          row.SellerPrice - row.DC - shipperPrice,
			TrackingID:      strings.TrimSpace(row.TrackingID),
			Status:          status,
			ShipperPaid:     shipperPaid,
		}
		if err := s.repo.Upsert(ctx, order); err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "bulk import row failed", err)
			}
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %v", i+1, orderNumber, err))
			continue
		}
		result.ImportedCount++
	}

	result.ElapsedSeconds = time.Since(started).Seconds()
	result.Message = fmt.Sprintf("imported %d of %d orders", result.ImportedCount, result.TotalProcessed)
	return result, nil
}

// BulkUpdateStatus sets the status of every identified order belonging to
// the seller. Validation happens before any mutation; each identifier is an
// independent write afterwards.
func (s *service) BulkUpdateStatus(ctx context.Context, actor identity.Actor, input BulkStatusInput) (*BulkResult, error) {
	sellerName := strings.TrimSpace(input.SellerName)
	if sellerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	if input.UpdateBy != UpdateByTrackingID && input.UpdateBy != UpdateByOrderNumber {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("update_by must be %s or %s", UpdateByTrackingID, UpdateByOrderNumber))
	}
	if !input.NewStatus.IsBulkAssignable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid new_status %q", input.NewStatus))
	}
	if len(input.Identifiers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identifiers is required")
	}
	if !actor.CanActFor(sellerName) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only update their own orders")
	}

	result := newBulkResult()
	for _, raw := range input.Identifiers {
		identifier := strings.TrimSpace(raw)
		if identifier == "" {
			continue
		}
		result.TotalProcessed++

		affected, err := s.repo.UpdateStatusByIdentifier(ctx, input.UpdateBy, identifier, sellerName, input.NewStatus)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "bulk status update row failed", err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", identifier, err))
			continue
		}
		if affected == 0 {
			result.NotFoundCount++
			result.NotFound = append(result.NotFound, identifier)
			continue
		}
		result.UpdatedCount++
	}

	result.Message = fmt.Sprintf("updated %d of %d orders to %s", result.UpdatedCount, result.TotalProcessed, input.NewStatus)
	return result, nil
}

// BulkUpdateTracking assigns tracking ids to the seller's orders by order
// number.
func (s *service) BulkUpdateTracking(ctx context.Context, actor identity.Actor, input BulkTrackingInput) (*BulkResult, error) {
	sellerName := strings.TrimSpace(input.SellerName)
	if sellerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	if len(input.Updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "updates is required")
	}
	if !actor.CanActFor(sellerName) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only update their own orders")
	}

	result := newBulkResult()
	for _, update := range input.Updates {
		orderNumber := strings.TrimSpace(update.OrderNumber)
		trackingID := strings.TrimSpace(update.TrackingID)
		if orderNumber == "" || trackingID == "" {
			continue
		}
		result.TotalProcessed++

		affected, err := s.repo.UpdateTracking(ctx, sellerName, orderNumber, trackingID)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "bulk tracking update row failed", err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", orderNumber, err))
			continue
		}
		if affected == 0 {
			result.NotFoundCount++
			result.NotFound = append(result.NotFound, orderNumber)
			continue
		}
		result.UpdatedCount++
	}

	result.Message = fmt.Sprintf("assigned tracking for %d of %d orders", result.UpdatedCount, result.TotalProcessed)
	return result, nil
}

// BulkMarkReturn flips scanned parcels to return status by tracking id. No
// seller scoping: the warehouse operator does not know the seller.
func (s *service) BulkMarkReturn(ctx context.Context, actor identity.Actor, trackingIDs []string) (*BulkResult, error) {
	return s.bulkStatusByTracking(ctx, trackingIDs, enums.OrderStatusReturn)
}

// BulkMarkDelivered flips scanned parcels to delivered status by tracking id.
func (s *service) BulkMarkDelivered(ctx context.Context, actor identity.Actor, trackingIDs []string) (*BulkResult, error) {
	return s.bulkStatusByTracking(ctx, trackingIDs, enums.OrderStatusDelivered)
}

func (s *service) bulkStatusByTracking(ctx context.Context, trackingIDs []string, status enums.OrderStatus) (*BulkResult, error) {
	if len(trackingIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking_ids is required")
	}

	result := newBulkResult()
	for _, raw := range trackingIDs {
		trackingID := strings.TrimSpace(raw)
		if trackingID == "" {
			continue
		}
		result.TotalProcessed++

		affected, err := s.repo.UpdateStatusByTracking(ctx, trackingID, status)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "bulk scan update row failed", err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", trackingID, err))
			continue
		}
		if affected == 0 {
			result.NotFoundCount++
			result.NotFound = append(result.NotFound, trackingID)
			continue
		}
		result.UpdatedCount++
	}

	result.Message = fmt.Sprintf("marked %d of %d parcels %s", result.UpdatedCount, result.TotalProcessed, status)
	return result, nil
}
