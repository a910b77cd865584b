package httpapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/order"
)

type orderItemRequest struct {
	ProductID *int64 `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required,min=1"`
}

type orderRequest struct {
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r orderRequest) toItems() []order.Item {
	items := make([]order.Item, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, order.Item{ProductID: *it.ProductID, Quantity: *it.Quantity})
	}
	return items
}

// field messages keyed by struct field and failed tag
var validationMessages = map[string]string{
	"Items.required":     "Lista de itens não pode estar vazia",
	"Items.min":          "Lista de itens não pode estar vazia",
	"ProductID.required": "O Id do produto é obrigatório",
	"Quantity.required":  "A quantidade é obrigatória",
	"Quantity.min":       "A quantidade deve ser maior que zero",
}

type validationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors maps a validator error to JSON paths such as "items[0].quantity".
// ok is false when err is not a validation failure.
func fieldErrors(err error) (fields map[string]string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		// drop the root struct name
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}

		msg, found := validationMessages[fe.StructField()+"."+fe.Tag()]
		if !found {
			msg = "valor inválido"
		}
		fields[path] = msg
	}
	return fields, true
}
