package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

func TestAliasName(t *testing.T) {
	tests := []struct {
		name      string
		alias     string
		shouldErr bool
	}{
		{
			name:      "simple alias",
			alias:     "payments",
			shouldErr: false,
		},
		{
			name:      "alias with hyphen and digits",
			alias:     "payments-v2",
			shouldErr: false,
		},
		{
			name:      "single letter",
			alias:     "a",
			shouldErr: false,
		},
		{
			name:      "uppercase rejected",
			alias:     "Payments",
			shouldErr: true,
		},
		{
			name:      "leading digit rejected",
			alias:     "2payments",
			shouldErr: true,
		},
		{
			name:      "trailing hyphen rejected",
			alias:     "payments-",
			shouldErr: true,
		},
		{
			name:      "colon rejected",
			alias:     "payments:v2",
			shouldErr: true,
		},
		{
			name:      "underscore rejected",
			alias:     "payments_v2",
			shouldErr: true,
		},
		{
			name:      "inner whitespace rejected",
			alias:     "pay ments",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AliasName.Validate(tt.alias)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegion(t *testing.T) {
	tests := []struct {
		name      string
		region    string
		shouldErr bool
	}{
		{
			name:      "aws style region",
			region:    "us-east-1",
			shouldErr: false,
		},
		{
			name:      "gcp style region",
			region:    "europe-west4",
			shouldErr: false,
		},
		{
			name:      "short region",
			region:    "eu",
			shouldErr: false,
		},
		{
			name:      "uppercase rejected",
			region:    "US-EAST-1",
			shouldErr: true,
		},
		{
			name:      "trailing hyphen rejected",
			region:    "us-east-",
			shouldErr: true,
		},
		{
			name:      "single character rejected",
			region:    "u",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Region.Validate(tt.region)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "clean string",
			input:     "payments",
			shouldErr: false,
		},
		{
			name:      "leading whitespace",
			input:     " payments",
			shouldErr: true,
		},
		{
			name:      "trailing whitespace",
			input:     "payments ",
			shouldErr: true,
		},
		{
			name:      "inner whitespace allowed",
			input:     "pay ments",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoWhitespace.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "non-blank string",
			input:     "payments",
			shouldErr: false,
		},
		{
			name:      "empty string",
			input:     "",
			shouldErr: true,
		},
		{
			name:      "whitespace only",
			input:     "   ",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMinDuration(t *testing.T) {
	rule := MinDuration(time.Hour)

	tests := []struct {
		name      string
		value     interface{}
		shouldErr bool
		errMsg    string
	}{
		{
			name:      "above floor",
			value:     24 * time.Hour,
			shouldErr: false,
		},
		{
			name:      "exactly at floor",
			value:     time.Hour,
			shouldErr: false,
		},
		{
			name:      "below floor",
			value:     time.Minute,
			shouldErr: true,
			errMsg:    "must be at least 1h0m0s",
		},
		{
			name:      "zero skipped for Required",
			value:     time.Duration(0),
			shouldErr: false,
		},
		{
			name:      "not a duration",
			value:     "1h",
			shouldErr: true,
			errMsg:    "must be a duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.value)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("wraps as invalid input", func(t *testing.T) {
		err := WrapValidationError(errors.New("must not be blank"))
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "must not be blank")
	})
}
