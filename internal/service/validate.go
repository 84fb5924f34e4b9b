package service

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/psstapp/psst-server/internal/errors"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// validateRequest maps validation failures onto the constraint error so
// callers see the same code for a name rejected in Go and a name rejected
// by a database CHECK.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return domainerrors.ErrConstraint.WithCause(err)
	}
	return nil
}
