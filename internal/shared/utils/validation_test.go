package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/shared/errors"
)

type checkRequest struct {
	ModuleID   string `json:"module_id" validate:"required"`
	Capability string `json:"capability" validate:"required,capability"`
	TabURL     string `json:"tab_url" validate:"omitempty,taburl"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	UseJSONFieldNames(v)
	require.NoError(t, RegisterAccessValidations(v))
	return v
}

func TestAccessValidations(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name string
		req  checkRequest
		ok   bool
	}{
		{"valid", checkRequest{ModuleID: "mod_a", Capability: "view", TabURL: "/invoices"}, true},
		{"unknown capability", checkRequest{ModuleID: "mod_a", Capability: "approve"}, false},
		{"relative tab url", checkRequest{ModuleID: "mod_a", Capability: "add", TabURL: "invoices"}, false},
		{"tab url with query", checkRequest{ModuleID: "mod_a", Capability: "add", TabURL: "/invoices?x=1"}, false},
		{"tab url with space", checkRequest{ModuleID: "mod_a", Capability: "add", TabURL: "/sales orders"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTranslateValidationError(t *testing.T) {
	v := newTestValidator(t)

	err := TranslateValidationError(v.Struct(checkRequest{Capability: "approve", TabURL: "x"}))
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "module_id is required")
	assert.Contains(t, appErr.Details, "capability must be one of [view add edit delete]")
	assert.Contains(t, appErr.Details, "tab_url must be a path starting with /")

	assert.NoError(t, TranslateValidationError(nil))

	appErr = errors.GetAppError(TranslateValidationError(assert.AnError))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeBadRequest, appErr.Type)
}
