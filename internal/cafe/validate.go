package cafe

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// decimalPattern is the JSON number grammar. PostgreSQL NUMERIC accepts
// every value it matches, exponent forms included.
var decimalPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		return decimalPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("estado_compra", func(fl validator.FieldLevel) bool {
		return EstadoCompra(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("estado_venta", func(fl validator.FieldLevel) bool {
		return EstadoVenta(fl.Field().String()).Valid()
	})
	return v
}

// validationMessage turns validator output into a short client-facing
// message naming the first offending field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "decimal":
		return fmt.Sprintf("%s must be a decimal number", fe.Field())
	case "estado_compra":
		return fmt.Sprintf("%s must be one of %s, %s, %s", fe.Field(), CompraBorrador, CompraConfirmada, CompraAnulada)
	case "estado_venta":
		return fmt.Sprintf("%s must be one of %s, %s, %s", fe.Field(), VentaPendiente, VentaPagada, VentaAnulada)
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
