package config

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"webup/asfctl/domain"
)

var validate = validator.New()

var fieldErrors = map[string]struct {
	key string
	err error
}{
	"MainDomain": {KeyMainDomain, domain.ErrMissingDomain},
	"Subdomain":  {KeySubdomain, domain.ErrMissingSubdomain},
	"Port":       {KeyPort, domain.ErrInvalidPort},
}

// Validate checks the keys a run cannot proceed without. The first failing
// key is returned as a *domain.ConfigError.
func Validate(cfg domain.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	// fields are reported in declaration order
	for _, fe := range validationErrors {
		if mapped, ok := fieldErrors[fe.StructField()]; ok {
			return &domain.ConfigError{Key: mapped.key, Err: mapped.err}
		}
	}
	return err
}
