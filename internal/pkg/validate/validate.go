package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return instance
}

// Struct checks `validate` tags and reports the first failing field by its json name.
func Struct(value any) error {
	err := engine().Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		if first.Param() != "" {
			return fmt.Errorf("%s must satisfy %s=%s", first.Field(), first.Tag(), first.Param())
		}
		return fmt.Errorf("%s must satisfy %s", first.Field(), first.Tag())
	}
	return err
}
