package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	ErrValidationFailed       = errors.New("Validation failed")
	ErrFieldRequired          = errors.New("Missing required field")
	ErrFieldPositiveAmount    = errors.New("Field must be a positive amount")
	ErrFieldNonNegativeAmount = errors.New("Field must be a non-negative amount")
	ErrFieldScale             = errors.New("Field has too many decimal places")
	ErrFieldOneOf             = errors.New("Field must be one of the allowed values")
	ErrFieldMaxLength         = errors.New("Field exceeds maximum length")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"positive_amount":    amountRule(func(d decimal.Decimal) bool { return d.IsPositive() }),
		"nonnegative_amount": amountRule(func(d decimal.Decimal) bool { return !d.IsNegative() }),
		"max_scale":          maxScale,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return v, nil
}

// amountRule validates a decimal string. Empty strings pass so that
// "required" stays the only rule reporting missing fields.
func amountRule(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}
		return ok(d)
	}
}

// maxScale limits the number of digits after the decimal point, e.g. max_scale=2.
func maxScale(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	places, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return -d.Exponent() <= int32(places) || d.Equal(d.Truncate(int32(places)))
}

func getValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	return validate, errValidate
}

// Struct validates a request DTO and returns the first failure as a
// message fit for the error envelope.
func Struct(payload interface{}) error {
	v, err := getValidator()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := v.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return formatFieldError(fieldErrs[0])
		}
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}

func formatFieldError(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", ErrFieldRequired, field)
	case "positive_amount":
		return fmt.Errorf("%w: %s", ErrFieldPositiveAmount, field)
	case "nonnegative_amount":
		return fmt.Errorf("%w: %s", ErrFieldNonNegativeAmount, field)
	case "max_scale":
		return fmt.Errorf("%w: %s allows at most %s", ErrFieldScale, field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of [%s]", ErrFieldOneOf, field, fe.Param())
	case "max":
		return fmt.Errorf("%w: %s must be at most %s", ErrFieldMaxLength, field, fe.Param())
	default:
		return fmt.Errorf("%w: %s failed %s", ErrValidationFailed, field, fe.Tag())
	}
}
