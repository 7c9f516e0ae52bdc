// Package inputval validates decoded request bodies using struct tags.
//
// Fields are tagged with `validate:"..."` rules and an optional `label:"..."`
// used in messages:
//
//	type createInput struct {
//		Name  string `validate:"required,max=200" label:"name"`
//		Email string `validate:"required,emailaddr" label:"email"`
//		Pass  string `validate:"required,pwbytes" label:"password"`
//	}
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/grouphub/internal/app/system/authutil"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	_ = val.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = val.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return authutil.PasswordFits(fl.Field().String())
	})
	_ = val.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(fl.Field().String())
	})
	return val
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures of a Validate call in field order.
type Result struct {
	Errors []FieldError
}

func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when there are none.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Validate checks s, which must be a struct or a pointer to one.
func Validate(s any) Result {
	err := v.Struct(s)
	if err == nil {
		return Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}
	out := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "emailaddr":
		return f + " must be a valid email address"
	case "pwbytes":
		return fmt.Sprintf("%s must be at most %d bytes", f, authutil.MaxPasswordBytes)
	case "role":
		return fmt.Sprintf("%s must be one of %s", f, strings.Join(models.Roles, ", "))
	default:
		return f + " is invalid"
	}
}

// IsValidEmail reports whether s looks like a bare address (no display name,
// no surrounding space).
func IsValidEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, " <>") {
		return false
	}
	return validate.SimpleEmailValid(s)
}
