package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/practice-booking/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "slotdate", func(fl validator.FieldLevel) bool {
		return model.ValidateDate(fl.Field().String()) == nil
	})
	mustRegister(v, "slottime", func(fl validator.FieldLevel) bool {
		return model.ValidateTimeRange(fl.Field().String()) == nil
	})
	return v
}

// mustRegister panics when a custom tag cannot be registered.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// validateStruct runs the struct tags of in and converts failures into a
// ValidationError keyed by JSON field path, e.g. "times[1]".
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.add(fe.Field(), fieldMessage(fe))
	}
	return ve.orNil()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " entry"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " entries"
		}
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "slotdate":
		return model.ErrDateFormat.Error()
	case "slottime":
		if err := model.ValidateTimeRange(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
		return model.ErrTimeFormat.Error()
	default:
		return "is invalid"
	}
}
