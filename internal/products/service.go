package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
)

const bulkUpsertBatchSize = 100

// Service exposes price-list management operations.
type Service interface {
	List(ctx context.Context, actor identity.Actor) ([]models.Product, error)
	Upsert(ctx context.Context, actor identity.Actor, input UpsertInput) (*models.Product, error)
	BulkUpsert(ctx context.Context, actor identity.Actor, inputs []UpsertInput) (*BulkUpsertResult, error)
	Delete(ctx context.Context, actor identity.Actor, id uint) error
}

// UpsertInput is one validated price-list entry.
type UpsertInput struct {
	SellerName  string  `json:"seller_name" validate:"required"`
	ProductName string  `json:"product_name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// BulkUpsertResult accounts for every submitted row.
type BulkUpsertResult struct {
	Message        string   `json:"message"`
	UpsertedCount  int      `json:"upserted_count"`
	TotalProcessed int      `json:"total_processed"`
	Errors         []string `json:"errors"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a price-list service instance.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// List returns every entry for admins, and only the caller's own price list
// for seller accounts.
func (s *service) List(ctx context.Context, actor identity.Actor) ([]models.Product, error) {
	if actor.IsAdmin() {
		products, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
		}
		return products, nil
	}

	products, err := s.repo.ListBySeller(ctx, actor.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing seller products")
	}
	return products, nil
}

func (s *service) Upsert(ctx context.Context, actor identity.Actor, input UpsertInput) (*models.Product, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may modify price lists")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	entry := &models.Product{
		SellerName:  input.SellerName,
		ProductName: input.ProductName,
		Price:       input.Price,
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting product")
	}
	return entry, nil
}

// BulkUpsert processes rows in fixed-size batches. Each row is independent:
// a bad row is recorded and the rest of the batch continues.
func (s *service) BulkUpsert(ctx context.Context, actor identity.Actor, inputs []UpsertInput) (*BulkUpsertResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may modify price lists")
	}
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no products supplied")
	}

	result := &BulkUpsertResult{
		TotalProcessed: len(inputs),
		Errors:         []string{},
	}

	for start := 0; start < len(inputs); start += bulkUpsertBatchSize {
		end := start + bulkUpsertBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		for i, input := range inputs[start:end] {
			row := start + i + 1
			if err := validateInput(input); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", row, err.Error()))
				continue
			}
			entry := &models.Product{
				SellerName:  input.SellerName,
				ProductName: input.ProductName,
				Price:       input.Price,
			}
			if err := s.repo.Upsert(ctx, entry); err != nil {
				if s.logg != nil {
					s.logg.Error(ctx, "bulk product upsert row failed", err)
				}
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
				continue
			}
			result.UpsertedCount++
		}
	}

	result.Message = fmt.Sprintf("processed %d products, upserted %d", result.TotalProcessed, result.UpsertedCount)
	return result, nil
}

func (s *service) Delete(ctx context.Context, actor identity.Actor, id uint) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may modify price lists")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func validateInput(input UpsertInput) error {
	if strings.TrimSpace(input.SellerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	if strings.TrimSpace(input.ProductName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
	}
	if input.Price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}
