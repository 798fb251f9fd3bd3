package handlers

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/taxappeal/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the area_code tag to gin's validator and reports
// fields by their JSON or form names. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}

		v.RegisterTagNameFunc(fieldName)
		err = v.RegisterValidation("area_code", validAreaCode)
	})
	return err
}

// fieldName prefers the json tag, then the form tag, then the Go name.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func validAreaCode(fl validator.FieldLevel) bool {
	return models.IsAreaCode(models.NormalizeAreaCode(fl.Field().String()))
}
