package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/Operaciones-api/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// reportar el nombre JSON (o query) del campo, no el del struct
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return validate
}

// validateStruct valida las etiquetas `validate` y devuelve el primer fallo como *domain.ValidationError.
func validateStruct(payload any) error {
	err := getValidator().Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "es requerido")
	case "oneof":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("debe ser uno de [%s]", fe.Param()))
	case "max":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("máximo %s", fe.Param()))
	case "min":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("mínimo %s", fe.Param()))
	default:
		return domain.NewValidationError(fe.Field(), "valor inválido")
	}
}
