// Package config defines the file-based configuration model for the
// application and the loaders that read it. JSON is the canonical format;
// HCL files are accepted as an alternative and decode into the same model.
// All validation happens here, before any network call is made.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultWorkers is the copy-phase concurrency bound used when the config
// file does not set one.
const DefaultWorkers = 4

// Config is the unified model both loaders decode into.
type Config struct {
	// Trello credentials. The key identifies the application, the token the
	// acting user.
	APIKey   string `json:"api_key" hcl:"api_key" validate:"required"`
	APIToken string `json:"api_token" hcl:"api_token" validate:"required"`

	// TemplateBoard is the name of the board whose lists are replicated.
	TemplateBoard string `json:"template_board" hcl:"template_board" validate:"required"`

	// TargetLists selects which template lists qualify for copying. How the
	// set is interpreted depends on KeepListed.
	TargetLists []string `json:"target_lists" hcl:"target_lists" validate:"required,min=1,unique,dive,required"`

	// DestinationBoards names the boards that receive copies.
	DestinationBoards []string `json:"destination_boards" hcl:"destination_boards" validate:"required,min=1,unique,dive,required"`

	// KeepListed toggles the filter mode: true keeps only the lists named in
	// TargetLists, false keeps every list except those named.
	KeepListed bool `json:"keep_listed" hcl:"keep_listed,optional"`

	// CopyCards copies each list's cards along with the list itself.
	CopyCards bool `json:"copy_cards" hcl:"copy_cards,optional"`

	// Workers bounds how many destination boards are copied to concurrently.
	Workers int `json:"workers" hcl:"workers,optional" validate:"omitempty,min=1"`
}

var validate = validator.New()

// applyDefaults fills in optional fields after decoding.
func (c *Config) applyDefaults() {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks the decoded model. Field errors are rewritten into
// messages naming the config key rather than the Go field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, fe := range fieldErrs {
		key := configKey(fe.StructField())
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("config: %q is required and must not be empty", key)
		case "min":
			if fe.Kind().String() == "slice" {
				return fmt.Errorf("config: %q must contain at least one entry", key)
			}
			return fmt.Errorf("config: %q must be at least %s", key, fe.Param())
		case "unique":
			return fmt.Errorf("config: %q must not contain duplicate names", key)
		}
	}
	return fmt.Errorf("config: invalid: %w", err)
}

// configKey maps a struct field name back to its config-file key. Indexed
// fields like "TargetLists[2]" map to the key of the slice itself.
func configKey(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	switch field {
	case "APIKey":
		return "api_key"
	case "APIToken":
		return "api_token"
	case "TemplateBoard":
		return "template_board"
	case "TargetLists":
		return "target_lists"
	case "DestinationBoards":
		return "destination_boards"
	case "KeepListed":
		return "keep_listed"
	case "CopyCards":
		return "copy_cards"
	case "Workers":
		return "workers"
	}
	return field
}
