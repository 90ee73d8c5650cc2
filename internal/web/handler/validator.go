package handler

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// roleNamePattern is the shape of a role machine name, e.g. content_reviewer.
var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// NewValidator returns the request validator with the custom "rolename" tag
// registered. Field names in errors come from the json tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	_ = v.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
		return roleNamePattern.MatchString(fl.Field().String())
	})

	return v
}
