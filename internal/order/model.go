package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/product"
)

// Item is one requested (product, quantity) pair.
type Item struct {
	ProductID int64
	Quantity  int
}

// Line is a persisted order line. Name and price are captured when the order
// is placed and never follow later product changes.
type Line struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

type Order struct {
	ID        int64
	CreatedAt time.Time
	Total     decimal.Decimal
	Lines     []Line
}

// StockError rejects one requested line.
//
// Available is the stock the line could still draw on. For a product that
// appears on several lines this is what earlier lines of the same order left
// over, not the stored stock.
type StockError struct {
	ProductID   int64  `json:"productId"`
	Available   int    `json:"available"`
	ProductName string `json:"productName,omitempty"`
}

// InsufficientStockError carries one StockError per offending line, in request order.
type InsufficientStockError struct {
	Errors []StockError
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d line(s)", len(e.Errors))
}

// Placement is an accepted order together with the product snapshots whose
// decremented stock must be written in the same transaction.
type Placement struct {
	Order        Order
	StockUpdates []product.Product
}
