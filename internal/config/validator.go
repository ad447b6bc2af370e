package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var fields []string
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Environment == EnvironmentProduction && c.APIKey == PlaceholderAPIKey {
		return fmt.Errorf("API_KEY is still the example value - generate a secure key with: openssl rand -hex 32")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Warnings returns non-fatal notes about the loaded configuration.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.DBPassword == "change_this_secure_password" {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if c.APIKey == PlaceholderAPIKey {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}
	if c.StorageBackend == StorageBackendMemory {
		warnings = append(warnings, "STORAGE_BACKEND=memory keeps all state in process memory; data is lost on restart")
	}

	return warnings
}
