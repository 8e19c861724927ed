package idempotency

import "time"

// Status values for idempotency records.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Record is the shape persisted in the idempotency DynamoDB table, keyed by
// the client-supplied Idempotency-Key header.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotencyKey"` // PK
	Status         string    `dynamodbav:"status"`
	ClientID       int64     `dynamodbav:"clientId"`
	OrderID        int64     `dynamodbav:"orderId"`
	ResponseBody   string    `dynamodbav:"responseBody,omitempty"` // small responses only
	ResponseStatus int       `dynamodbav:"responseStatus,omitempty"`
	CreatedAt      time.Time `dynamodbav:"createdAt"`
	UpdatedAt      time.Time `dynamodbav:"updatedAt"`
	ExpiresAt      int64     `dynamodbav:"expiresAt"` // TTL epoch seconds
}
