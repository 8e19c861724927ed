package orders

import "time"

// PaymentMethod is the payment method an order was placed with.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPix        PaymentMethod = "pix"
)

// ValidPaymentMethod reports whether s is one of the accepted payment methods.
func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PaymentCreditCard, PaymentDebitCard, PaymentPix:
		return true
	}
	return false
}

// Item is a single line of an order. Items carry no inventory linkage.
type Item struct {
	ProductID int64 `json:"productId" dynamodbav:"productId"`
	Quantity  int   `json:"quantity" dynamodbav:"quantity"`
}

// Order is the item stored in the orders DynamoDB table, keyed by
// (clientId, orderId). ClientID is the partition key, OrderID the sort key;
// both are immutable once written. Only Installments and UpdatedAt change
// after creation.
type Order struct {
	ClientID      int64         `json:"clientId" dynamodbav:"clientId"`
	OrderID       int64         `json:"orderId" dynamodbav:"orderId"`
	Items         []Item        `json:"items" dynamodbav:"items"`
	PaymentMethod PaymentMethod `json:"paymentMethod" dynamodbav:"paymentMethod"`
	Installments  int           `json:"installments" dynamodbav:"installments"`
	CreatedAt     time.Time     `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" dynamodbav:"updatedAt"`
}
