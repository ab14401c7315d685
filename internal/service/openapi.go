package service

import (
	"context"
	"encoding/json"
	"strings"

	cErr "agentmarket/internal/pkg/error"

	"github.com/getkin/kin-openapi/openapi3"
)

// validateOpenAPISpec 必須是 JSON 物件；宣告 openapi 版本時再做 OpenAPI 3 驗證
func validateOpenAPISpec(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var document map[string]any
	if err := json.Unmarshal([]byte(raw), &document); err != nil {
		return cErr.InvalidOpenAPISpec("openapiSpec must be a JSON object")
	}
	if _, declared := document["openapi"]; !declared {
		return nil
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	loader.Context = ctx
	doc, err := loader.LoadFromData([]byte(raw))
	if err != nil {
		return cErr.InvalidOpenAPISpec("openapiSpec could not be loaded: " + err.Error())
	}
	if err := doc.Validate(ctx); err != nil {
		return cErr.InvalidOpenAPISpec("openapiSpec is not a valid OpenAPI 3 document: " + err.Error())
	}
	return nil
}
