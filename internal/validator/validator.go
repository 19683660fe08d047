package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/activity-service/internal/errors"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/validation"
)

// activityNameRe keeps stored names usable as file names: no separators, no
// leading dot.
var activityNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}

// Validator validates request payloads
type Validator struct {
	structValidator *validator.Validate
}

// New creates a validator with the custom tags registered
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and converts failures to ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateVar checks a single value against a tag
func (v *Validator) ValidateVar(field string, value interface{}, tag string) error {
	if err := v.structValidator.Var(value, tag); err != nil {
		errs := ToValidationErrors(err)
		for i := range errs {
			errs[i].Field = field
		}
		if len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// IsActivityName reports whether name is a valid stored activity name
func IsActivityName(name string) bool {
	return activityNameRe.MatchString(name)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("activity_type", validateActivityType)
	validate.RegisterValidation("validation_kind", validateValidationKind)
	validate.RegisterValidation("activity_name", validateActivityName)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateActivityType accepts slugs and display names alike
func validateActivityType(fl validator.FieldLevel) bool {
	_, ok := models.ParseActivityType(fl.Field().String())
	return ok
}

func validateValidationKind(fl validator.FieldLevel) bool {
	return validation.Kind(fl.Field().String()).IsValid()
}

func validateActivityName(fl validator.FieldLevel) bool {
	return IsActivityName(fl.Field().String())
}
