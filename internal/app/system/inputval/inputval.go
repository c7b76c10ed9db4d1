// Package inputval decodes and validates JSON request bodies.
//
// Validation rules live in `validate` struct tags and are enforced by
// go-playground/validator. The custom "enum" tag accepts any field whose
// type implements models.Enum and checks it against the type's closed set.
package inputval

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/crisisline/crisishub/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance, built on first use.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		// Report JSON field names so clients see the keys they sent.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("enum", validateEnum)
		validate = v
	})
	return validate
}

func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(models.Enum)
	if !ok {
		return false
	}
	return e.Valid()
}

// Struct validates s and converts failures into a validation error that
// names the offending fields.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.Server("validation failed", err)
	}
	seen := make(map[string]bool, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if !seen[fe.Field()] {
			seen[fe.Field()] = true
			fields = append(fields, fe.Field())
		}
	}
	sort.Strings(fields)
	return apierr.Validation("Invalid or missing fields: "+strings.Join(fields, ", "), fields...)
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apierr.Validation("Request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.Validation("Request body is required")
		}
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			return apierr.Validation("Invalid value for "+ute.Field, ute.Field)
		}
		return apierr.Validation("Malformed JSON body")
	}
	return Struct(dst)
}
