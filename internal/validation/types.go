package validation

// OrderItem is one element of the create payload's items array.
type OrderItem struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the body contract for POST /.
type CreateOrderRequest struct {
	ClientID      int64       `json:"clientId" validate:"required"`
	Items         []OrderItem `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string      `json:"paymentMethod" validate:"required,paymentmethod"`
	Installments  int         `json:"installments" validate:"required,min=1"`
}

// UpdateInstallmentsRequest is the body contract for
// PATCH /orders/{clientId}/{orderId}.
type UpdateInstallmentsRequest struct {
	Installments int `json:"installments" validate:"required,min=1"`
}
