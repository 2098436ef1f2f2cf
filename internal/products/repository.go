package product

import (
	"context"
	"errors"
	"strings"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles price-list persistence.
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

// ListAll returns every price-list entry ordered by seller then product.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("seller_name ASC, product_name ASC").
		Find(&products).Error
	return products, err
}

// ListBySeller returns the named seller's price list.
func (r *Repository) ListBySeller(ctx context.Context, sellerName string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(seller_name) = LOWER(?)", sellerName).
		Order("product_name ASC").
		Find(&products).Error
	return products, err
}

// FindByID loads a single price-list entry.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Upsert inserts or updates on the case-insensitive (seller, product) key.
// Names are stored lowercase so the unique index carries the invariant.
func (r *Repository) Upsert(ctx context.Context, product *models.Product) error {
	product.SellerName = strings.ToLower(strings.TrimSpace(product.SellerName))
	product.ProductName = strings.ToLower(strings.TrimSpace(product.ProductName))

	var existing models.Product
	err := r.db.WithContext(ctx).
		Where("seller_name = ? AND product_name = ?", product.SellerName, product.ProductName).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(product).Error
	}

	existing.Price = product.Price
	if err := r.db.WithContext(ctx).Model(&existing).Update("price", product.Price).Error; err != nil {
		return err
	}
	*product = existing
	return nil
}

// Delete removes a price-list entry. Returns gorm.ErrRecordNotFound when the
// id does not exist.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PricesFor resolves the seller's unit prices for the given product names.
// Keys in the returned map are lowercase; names with no entry are absent.
func (r *Repository) PricesFor(ctx context.Context, sellerName string, productNames []string) (map[string]float64, error) {
	if len(productNames) == 0 {
		return map[string]float64{}, nil
	}

	lowered := make([]string, 0, len(productNames))
	for _, name := range productNames {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(name)))
	}

	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(seller_name) = LOWER(?) AND product_name IN ?", sellerName, lowered).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(rows))
	for _, row := range rows {
		prices[strings.ToLower(row.ProductName)] = row.Price
	}
	return prices, nil
}
