package httpapi

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/product"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// keeps page*size representable for any accepted size
	maxPage = math.MaxInt32 / maxPageSize
)

type ProductFinder interface {
	FindActive(ctx context.Context, search string, page, size int) (product.Page, error)
}

type ProductHandler struct {
	products ProductFinder
	logger   *zap.Logger
}

func NewProductHandler(products ProductFinder, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 || page > maxPage {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("page must be between 0 and %d", maxPage))
		return
	}
	size, err := intParam(q.Get("size"), defaultPageSize)
	if err != nil || size < 1 || size > maxPageSize {
		writeError(w, http.StatusBadRequest, "size must be between 1 and 100")
		return
	}

	result, err := h.products.FindActive(r.Context(), q.Get("search"), page, size)
	if err != nil {
		logging.Error(r.Context(), h.logger, "list products failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	writeJSON(w, http.StatusOK, toProductPageResponse(result))
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
