package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/product"
)

// ProductNotFoundName is reported as the product name of a line whose product
// is unknown or inactive.
const ProductNotFoundName = "Produto não encontrado."

var ErrInvalidItems = errors.New("order must contain at least one item and every quantity must be positive")

func validateItems(items []Item) error {
	if len(items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return ErrInvalidItems
		}
	}
	return nil
}

// Place validates items against the catalog snapshot and prices the order.
//
// Every line is checked before anything is priced; if any line cannot be served
// the result is an *InsufficientStockError listing all of them. A product that
// appears on several lines is checked against what earlier lines left over.
// catalog is only read.
func Place(items []Item, catalog map[int64]product.Product, now time.Time) (Placement, error) {
	if err := validateItems(items); err != nil {
		return Placement{}, err
	}

	remaining := make(map[int64]int, len(catalog))
	var stockErrs []StockError

	for _, it := range items {
		p, ok := catalog[it.ProductID]
		if !ok {
			stockErrs = append(stockErrs, StockError{
				ProductID:   it.ProductID,
				Available:   0,
				ProductName: ProductNotFoundName,
			})
			continue
		}

		left, seen := remaining[it.ProductID]
		if !seen {
			left = p.Stock
		}
		if left < it.Quantity {
			stockErrs = append(stockErrs, StockError{
				ProductID:   it.ProductID,
				Available:   left,
				ProductName: p.Name,
			})
			continue
		}
		remaining[it.ProductID] = left - it.Quantity
	}

	if len(stockErrs) > 0 {
		return Placement{}, &InsufficientStockError{Errors: stockErrs}
	}

	lines := make([]Line, 0, len(items))
	updates := make([]product.Product, 0, len(remaining))
	staged := make(map[int64]bool, len(remaining))
	total := decimal.Zero

	for _, it := range items {
		p := catalog[it.ProductID]

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).RoundBank(2)
		lines = append(lines, Line{
			ProductID:   it.ProductID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
			LineTotal:   lineTotal,
		})
		total = total.Add(lineTotal)

		if !staged[it.ProductID] {
			staged[it.ProductID] = true
			p.Stock = remaining[it.ProductID]
			updates = append(updates, p)
		}
	}

	return Placement{
		Order: Order{
			CreatedAt: now,
			Total:     total.RoundBank(2),
			Lines:     lines,
		},
		StockUpdates: updates,
	}, nil
}
