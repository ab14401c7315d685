package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"agentmarket/internal/core"
)

type ollamaRequestBody struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

type ollamaProvider struct {
	httpClient *http.Client
	endpoint   string
	modelName  string
}

func newOllamaProvider(opts Options) (provider, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = core.OllamaBaseURL
	}
	modelName := opts.Model
	if modelName == "" {
		modelName = core.DefaultOllamaEmbeddingModel
	}
	return &ollamaProvider{
		httpClient: opts.HTTPClient,
		endpoint:   base + core.OllamaEmbeddingEndpoint,
		modelName:  modelName,
	}, nil
}

func (p *ollamaProvider) name() core.EmbeddingProviderName { return core.EmbeddingProviderOllama }
func (p *ollamaProvider) model() string                    { return p.modelName }
func (p *ollamaProvider) url() string                      { return p.endpoint }

func (p *ollamaProvider) embedOnce(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(ollamaRequestBody{Model: p.modelName, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	body, err := decodeBody(raw, resp.Header)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", resp.Header.Get("Content-Encoding"), err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &statusError{provider: p.name(), statusCode: resp.StatusCode, body: trimBody(body)}
	}

	var result ollamaResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", errMalformedResponse, err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, errNoVector
	}
	return toFloat32(result.Embeddings[0]), nil
}
