package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/orders"
)

// New returns a configured validator with the custom rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// paymentmethod restricts a string field to the accepted payment methods.
	_ = v.RegisterValidation("paymentmethod", func(fl validatorv10.FieldLevel) bool {
		return orders.ValidPaymentMethod(fl.Field().String())
	})

	return v
}
