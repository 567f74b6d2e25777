package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category mirrors the `categories` table. Categories are soft-deleted via
// IsActive so historical products keep their reference.
type Category struct {
	ID           uint64    // categories.category_id
	Name         string    // categories.name
	Description  *string   // categories.description (nullable)
	ImageURL     *string   // categories.image_url (nullable)
	DisplayOrder uint32    // categories.display_order
	IsActive     bool      // categories.is_active
	CreatedAt    time.Time // categories.created_at
	UpdatedAt    time.Time // categories.updated_at
}

// Product mirrors the `products` table. Prices are DECIMAL columns and are
// carried as fixed-point values end to end; Stock is the current on-hand
// quantity checked (but never decremented) by reservation creation.
type Product struct {
	ID           uint64          // products.product_id
	CategoryID   uint64          // products.category_id
	Name         string          // products.name
	Description  *string         // products.description (nullable)
	Barcode      *string         // products.barcode (unique, nullable)
	SKU          *string         // products.sku (unique, nullable)
	Price        decimal.Decimal // products.price
	CostPrice    decimal.Decimal // products.cost_price
	TaxRate      decimal.Decimal // products.tax_rate
	Stock        uint32          // products.quantity_in_stock
	ReorderLevel uint32          // products.reorder_level
	Status       string          // products.status
	ImageURL     *string         // products.image_url (nullable)
	IsFeatured   bool            // products.is_featured
	IsActive     bool            // products.is_active
	CreatedAt    time.Time       // products.created_at
	UpdatedAt    time.Time       // products.updated_at
}
