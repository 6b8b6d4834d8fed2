package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/dittotape/internal/telemetry"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/rao"
)

// newValidator returns a validator with the configuration-specific tags
// registered.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("profile_type", func(fl validator.FieldLevel) bool {
		return telemetry.IsValidProfileType(fl.Field().String())
	})
	_ = v.RegisterValidation("rao_options", func(fl validator.FieldLevel) bool {
		_, err := rao.ParseOptions(fl.Field().String())
		return err == nil
	})

	return v
}

// Validate checks the configuration for invalid or inconsistent values.
//
// Struct tags cover field ranges and enumerations. Backend-specific rules of
// the catalogue are checked afterwards. Validate does not normalize values;
// ApplyDefaults does.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}

	if err := newValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if err := validateCatalogue(&cfg.Catalogue); err != nil {
		return fmt.Errorf("catalogue: %w", err)
	}

	return nil
}

// validateCatalogue checks the settings of the selected backend.
func validateCatalogue(cfg *CatalogueConfig) error {
	switch cfg.Type {
	case catalogue.TypeBadger:
		if cfg.Badger.Path == "" && !cfg.Badger.InMemory {
			return errors.New("badger path is required")
		}
	case catalogue.TypeSQLite, catalogue.TypePostgres:
		db := cfg.Database()
		return db.Validate()
	}
	return nil
}

// formatValidationErrors turns validator errors into one readable error
// naming each field and the failed tag.
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
