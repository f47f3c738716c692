package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	var msgs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
	}
	if c.Storage == StorageREST && c.RestURL == "" {
		msgs = append(msgs, "rest storage needs RestURL")
	}
	if c.RequestTimeout <= 0 {
		msgs = append(msgs, "RequestTimeout must be positive")
	}
	if c.ScanEnabled && c.ScanTimeout <= 0 {
		msgs = append(msgs, "ScanTimeout must be positive")
	}

	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(msgs, ", "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "url":
		return field + " must be a URL"
	case "min":
		return field + " must be at least " + fe.Param()
	default:
		return field + " is invalid"
	}
}
