package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atelier-studio/atelier-backend/errs"
	"github.com/atelier-studio/atelier-backend/models"
)

// ProjectInput carries the fields of a create request. Technologies arrives
// in its comma-separated form and is split by the service.
type ProjectInput struct {
	Title            string              `json:"title" validate:"required,max=100"`
	Description      string              `json:"description" validate:"required,max=1000"`
	ShortDescription string              `json:"shortDescription" validate:"required,max=200"`
	Category         string              `json:"category" validate:"required,projectcategory"`
	Technologies     string              `json:"technologies"`
	Client           string              `json:"client"`
	Year             int                 `json:"year" validate:"projectyear"`
	Status           string              `json:"status" validate:"omitempty,oneof=draft published"`
	Featured         bool                `json:"featured"`
	Testimonial      *models.Testimonial `json:"testimonial"`
}

// ProjectUpdate carries the fields of an update request. Nil means the field
// was absent and the stored value stays; a present field fully replaces the
// stored attribute.
type ProjectUpdate struct {
	Title            *string             `json:"title" validate:"omitnil,min=1,max=100"`
	Description      *string             `json:"description" validate:"omitnil,min=1,max=1000"`
	ShortDescription *string             `json:"shortDescription" validate:"omitnil,min=1,max=200"`
	Category         *string             `json:"category" validate:"omitnil,projectcategory"`
	Technologies     *string             `json:"technologies"`
	Client           *string             `json:"client"`
	Year             *int                `json:"year" validate:"omitnil,projectyear"`
	Status           *string             `json:"status" validate:"omitnil,oneof=draft published"`
	Featured         *bool               `json:"featured"`
	Testimonial      *models.Testimonial `json:"testimonial"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their json names so API clients see the same
	// identifiers they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("projectcategory", func(fl validator.FieldLevel) bool {
		return models.IsValidCategory(fl.Field().String())
	})

	v.RegisterValidation("projectyear", func(fl validator.FieldLevel) bool {
		year := int(fl.Field().Int())
		return year >= 2000 && year <= time.Now().Year()+1
	})

	return v
}

// checkInput validates a struct and batches every violation into a single
// ValidationError, nil if the struct is valid.
func checkInput(v *validator.Validate, s any) *errs.ValidationError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return errs.NewValidationError(errs.FieldError{Field: "payload", Message: err.Error()})
	}

	ve := errs.NewValidationError()
	for _, fe := range invalid {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "projectcategory":
		return fmt.Sprintf("must be one of: %s", strings.Join(models.Categories, ", "))
	case "projectyear":
		return fmt.Sprintf("must be between 2000 and %d", time.Now().Year()+1)
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
