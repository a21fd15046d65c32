package actions

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct reports the first failing field as a ValidationError.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return ValidationError{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return ValidationError{Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "gtefield":
		return fmt.Sprintf("must not be before %s", fe.Param())
	default:
		return "is invalid"
	}
}

func parseID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return primitive.NilObjectID, ValidationError{Field: field, Message: "must be a valid id"}
	}
	return id, nil
}
