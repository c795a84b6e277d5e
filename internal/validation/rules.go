// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

var (
	// aliasNameRegex constrains aliases to DNS-label-style names so they stay
	// safe inside keeper URIs, cache keys, and encrypted blob headers. The
	// colon in particular must never appear: it is the blob field separator.
	aliasNameRegex = regexp.MustCompile(`^[a-z]$|^[a-z][a-z0-9-]*[a-z0-9]$`)

	// regionRegex matches authority region identifiers such as "us-east-1".
	regionRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// AliasName validates key alias names: lowercase letters, digits, and inner
// hyphens, starting with a letter.
var AliasName = validation.NewStringRuleWithError(
	func(s string) bool {
		return aliasNameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_alias_name",
		"must start with a lowercase letter and contain only lowercase letters, digits, and hyphens",
	),
)

// Region validates authority region identifiers.
var Region = validation.NewStringRuleWithError(
	func(s string) bool {
		return regionRegex.MatchString(s)
	},
	validation.NewError("validation_region", "must be a lowercase region identifier such as us-east-1"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// MinDuration validates that a time.Duration is at least the given floor.
// Zero values pass so Required stays in charge of presence.
func MinDuration(floor time.Duration) validation.Rule {
	return validation.By(func(value interface{}) error {
		d, ok := value.(time.Duration)
		if !ok {
			return validation.NewError("validation_duration_type", "must be a duration")
		}
		if d == 0 {
			return nil
		}
		if d < floor {
			return validation.NewError(
				"validation_duration_min",
				fmt.Sprintf("must be at least %s", floor),
			)
		}
		return nil
	})
}
