package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tripplanner/backend/internal/domain"
)

// createRules requires every field.
type createRules struct {
	Title       *string  `json:"title" validate:"required,min=1"`
	Destination *string  `json:"destination" validate:"required,min=1"`
	Days        *int     `json:"days" validate:"required,min=1"`
	Budget      *float64 `json:"budget" validate:"required,min=0"`
}

// updateRules checks only the fields that are present.
type updateRules struct {
	Title       *string  `json:"title" validate:"omitnil,min=1"`
	Destination *string  `json:"destination" validate:"omitnil,min=1"`
	Days        *int     `json:"days" validate:"omitnil,min=1"`
	Budget      *float64 `json:"budget" validate:"omitnil,min=0"`
}

// fieldMessages is the user-facing message for any rule failing on a field.
var fieldMessages = map[string]string{
	"title":       "Title is required",
	"destination": "Destination is required",
	"days":        "Days must be a positive integer",
	"budget":      "Budget must be a non-negative number",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs rules against in, which must already be normalized.
// It returns a *domain.ValidationError listing every failing field.
func validateInput(v *validator.Validate, in domain.TripInput, create bool) error {
	var err error
	if create {
		err = v.Struct(createRules(in))
	} else {
		err = v.Struct(updateRules(in))
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		fields = append(fields, domain.FieldError{Field: fe.Field(), Message: msg})
	}
	return &domain.ValidationError{Fields: fields}
}
