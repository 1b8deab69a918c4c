package crud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

// DateLayout is the wire format of <input type="date">.
const DateLayout = shared.DateLayout

// Binder moves records between url.Values and structs and validates them.
type Binder struct {
	decoder  *form.Decoder
	encoder  *form.Encoder
	validate *validator.Validate
}

// NewBinder registers the custom types used by resource models.
func NewBinder() *Binder {
	decoder := form.NewDecoder()
	decoder.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		return time.Parse(DateLayout, strings.TrimSpace(vals[0]))
	}, time.Time{})
	decoder.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		return shared.ParseDate(strings.TrimSpace(vals[0]))
	}, shared.Date{})
	decoder.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		return decimal.NewFromString(strings.TrimSpace(vals[0]))
	}, decimal.Decimal{})

	encoder := form.NewEncoder()
	encoder.RegisterCustomTypeFunc(func(x interface{}) ([]string, error) {
		t := x.(time.Time)
		if t.IsZero() {
			return []string{""}, nil
		}
		return []string{t.Format(DateLayout)}, nil
	}, time.Time{})
	encoder.RegisterCustomTypeFunc(func(x interface{}) ([]string, error) {
		return []string{x.(shared.Date).String()}, nil
	}, shared.Date{})
	encoder.RegisterCustomTypeFunc(func(x interface{}) ([]string, error) {
		return []string{x.(decimal.Decimal).String()}, nil
	}, decimal.Decimal{})

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(shared.Date); ok {
			return d.Time
		}
		return nil
	}, shared.Date{})

	return &Binder{decoder: decoder, encoder: encoder, validate: validate}
}

// RegisterValidation exposes custom validator tags to resource packages.
func (b *Binder) RegisterValidation(tag string, fn validator.Func) error {
	return b.validate.RegisterValidation(tag, fn)
}

// Decode fills dst from values. Blank inputs are dropped first so optional
// dates stay nil and numbers stay zero. Conversion failures are returned per field.
func (b *Binder) Decode(dst any, values url.Values) map[string]string {
	cleaned := make(url.Values, len(values))
	for key, vals := range values {
		kept := vals[:0:0]
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			cleaned[key] = kept
		}
	}
	if err := b.decoder.Decode(dst, cleaned); err != nil {
		var decodeErrs form.DecodeErrors
		if errors.As(err, &decodeErrs) {
			out := make(map[string]string, len(decodeErrs))
			for field := range decodeErrs {
				out[field] = "Enter a valid value."
			}
			return out
		}
		return map[string]string{"general": err.Error()}
	}
	return nil
}

// Encode flattens src into form values for re-rendering.
func (b *Binder) Encode(src any) (url.Values, error) {
	return b.encoder.Encode(src)
}

// Validate runs struct tag validation and returns one message per field.
func (b *Binder) Validate(src any) map[string]string {
	err := b.validate.Struct(src)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"general": err.Error()}
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, exists := out[fe.Field()]; !exists {
			out[fe.Field()] = ValidationMessage(fe)
		}
	}
	return out
}

// ValidationMessage turns a validator failure into display text.
func ValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Use at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Use at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be %s or more.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be %s or less.", fe.Param())
	case "oneof":
		return "Choose one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "len":
		return fmt.Sprintf("Must be exactly %s characters.", fe.Param())
	case "numeric":
		return "Use digits only."
	case "e164":
		return "Enter a phone number like +919876543210."
	case "gtfield", "gtefield":
		return "Must not be before " + strings.ToLower(fe.Param()) + "."
	default:
		return "Enter a valid value."
	}
}

type formKey struct{}

func withForm(ctx context.Context, values url.Values) context.Context {
	return context.WithValue(ctx, formKey{}, values)
}

// Submitted reports whether the form being bound carried a non-blank value
// for field. Prepare hooks use it to tell an explicit zero from an empty input.
func Submitted(ctx context.Context, field string) bool {
	values, _ := ctx.Value(formKey{}).(url.Values)
	return strings.TrimSpace(values.Get(field)) != ""
}
