package orders

import "time"

// Event types published to the order events queue.
const (
	EventOrderCreated        = "order.created"
	EventInstallmentsUpdated = "order.installments_updated"
)

// OrderEvent is the message body sent to SQS after a successful store write.
// The worker consumes these to emit metrics.
type OrderEvent struct {
	EventID       string    `json:"eventId"`
	Type          string    `json:"type"`
	ClientID      int64     `json:"clientId"`
	OrderID       int64     `json:"orderId"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Installments  int       `json:"installments,omitempty"`
	CorrelationID string    `json:"correlationId"`
	OccurredAt    time.Time `json:"occurredAt"`
}
