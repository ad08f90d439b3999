package sdk

import (
	stdErrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/proxyscript/script-sdk/go/domain/errors"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// ValidateStruct runs the validate tags of v. The first failing field is
// reported as a *errors.ValidationError.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &errors.ValidationError{Field: fieldErrs[0].Field(), Err: err}
	}
	return fmt.Errorf("validation failed: %w", err)
}
