// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	symbolRegexp   = regexp.MustCompile(`^[a-zA-Z\-]{3,12}$`)
	subdenomRegexp = regexp.MustCompile(`^[a-zA-Z0-9:._-]{0,44}$`)
)

// NewValidator returns a struct validator with the token metadata rules
// registered.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	err := v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			panic(fmt.Errorf("%q is not a string", fl.FieldName()))
		}
		return symbolRegexp.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, err
	}

	err = v.RegisterValidation("subdenom", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			panic(fmt.Errorf("%q is not a string", fl.FieldName()))
		}
		return subdenomRegexp.MatchString(fl.Field().String())
	})
	return v, err
}

var defaultValidator = func() *validator.Validate {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}()

// Validate validates a struct against its validate tags.
func Validate(v any) error {
	return defaultValidator.Struct(v)
}
