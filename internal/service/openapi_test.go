package service

import (
	"context"
	"net/http"
	"testing"

	cErr "agentmarket/internal/pkg/error"

	"github.com/stretchr/testify/assert"
)

func TestValidateOpenAPISpec(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{name: "empty", raw: "", valid: true},
		{name: "blank", raw: "   ", valid: true},
		{name: "plain object", raw: `{"description":"free-form schema notes"}`, valid: true},
		{name: "valid openapi 3", raw: `{"openapi":"3.0.3","info":{"title":"Weather","version":"1.0.0"},"paths":{}}`, valid: true},
		{name: "not json", raw: "openapi: 3.0.0", valid: false},
		{name: "json array", raw: `[1,2,3]`, valid: false},
		{name: "openapi missing info", raw: `{"openapi":"3.0.3","paths":{}}`, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOpenAPISpec(context.Background(), tt.raw)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			requireAppError(t, err, http.StatusUnprocessableEntity, cErr.INVALID_OPENAPI_SPEC)
		})
	}
}
