// Package validation produces field-keyed error maps for dashboard forms.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// Violations maps a json field name to a message. The first message recorded for a field wins.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records msg for field unless the field already has one.
func (v Violations) Add(field, msg string) {
	if _, exists := v[field]; exists {
		return
	}
	v[field] = msg
}

// Merge copies other into v, keeping existing messages.
func (v Violations) Merge(other Violations) Violations {
	for field, msg := range other {
		v.Add(field, msg)
	}
	return v
}

// Has reports whether field carries an error.
func (v Violations) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Only keeps the listed fields.
func (v Violations) Only(fields ...string) Violations {
	out := Violations{}
	for _, field := range fields {
		if msg, ok := v[field]; ok {
			out[field] = msg
		}
	}
	return out
}

// Err converts non-empty violations into a validation error carrying them as details.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string(v))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(types.Date); ok {
			return d.String()
		}
		return nil
	}, types.Date{})
	return v
}

// Struct validates the `validate` tags of s.
func Struct(s any) Violations {
	out := Violations{}
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()
		return out
	}
	for _, fieldErr := range errs {
		out.Add(fieldPath(fieldErr), message(fieldErr))
	}
	return out
}

// fieldPath drops the root struct name from the namespace: "Input.lignes[0].quantite" -> "lignes[0].quantite".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est requis"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Au moins %s élément(s) requis", fe.Param())
		}
		return fmt.Sprintf("Doit être au moins %s", fe.Param())
	case "max":
		return fmt.Sprintf("Doit être au plus %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Doit être supérieur à %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Doit être supérieur ou égal à %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Doit être inférieur ou égal à %s", fe.Param())
	case "email":
		return "Adresse e-mail invalide"
	case "oneof":
		return fmt.Sprintf("Valeur attendue parmi: %s", fe.Param())
	case "uppercase":
		return "Doit être en majuscules"
	case "alphanum":
		return "Lettres et chiffres uniquement"
	}
	return "Valeur invalide"
}
