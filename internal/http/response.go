package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/product"
)

type orderItemResponse struct {
	ProductID   int64       `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
	LineTotal   json.Number `json:"lineTotal"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Total     json.Number         `json:"total"`
	Items     []orderItemResponse `json:"items"`
}

type productResponse struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Price  json.Number `json:"price"`
	Stock  int         `json:"stock"`
	Active bool        `json:"active"`
}

type productPageResponse struct {
	Content       []productResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	First         bool              `json:"first"`
	Last          bool              `json:"last"`
}

// money renders an amount as a JSON number with two fraction digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderItemResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
			LineTotal:   money(l.LineTotal),
		})
	}
	return orderResponse{
		ID:        o.ID,
		CreatedAt: o.CreatedAt,
		Total:     money(o.Total),
		Items:     items,
	}
}

func toProductPageResponse(p product.Page) productPageResponse {
	content := make([]productResponse, 0, len(p.Content))
	for _, s := range p.Content {
		content = append(content, productResponse{
			ID:     s.ID,
			Name:   s.Name,
			Price:  money(s.Price),
			Stock:  s.Stock,
			Active: s.Active,
		})
	}
	return productPageResponse{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
