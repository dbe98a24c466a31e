package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/kartikfr/card-genius/internal/domain"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Spending category identifier, e.g. "dining"
	_ = Validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})
}
