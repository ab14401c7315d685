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

type openAIRequestBody struct {
	Input          string `json:"input"`
	Model          string `json:"model"`
	EncodingFormat string `json:"encoding_format,omitempty"`
}

type openAIResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float64 `json:"embedding"` // ada-002 為 1536 維
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIProvider struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	modelName  string
}

func newOpenAIProvider(opts Options) (provider, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = core.OpenAIAPIBaseURL
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai embedding provider requires EMBEDDING__API_KEY")
	}
	modelName := opts.Model
	if modelName == "" {
		modelName = core.DefaultOpenAIEmbeddingModel
	}
	return &openAIProvider{
		httpClient: opts.HTTPClient,
		endpoint:   base + core.OpenAIEmbeddingEndpoint,
		apiKey:     opts.APIKey,
		modelName:  modelName,
	}, nil
}

func (p *openAIProvider) name() core.EmbeddingProviderName { return core.EmbeddingProviderOpenAI }
func (p *openAIProvider) model() string                    { return p.modelName }
func (p *openAIProvider) url() string                      { return p.endpoint }

func (p *openAIProvider) embedOnce(ctx context.Context, text string) ([]float32, error) {
	// 1) 序列化 payload
	payload, err := json.Marshal(openAIRequestBody{Input: text, Model: p.modelName, EncodingFormat: "float"})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding payload: %w", err)
	}

	// 2) 建立 HTTP 請求
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)

	// 3) 發送請求
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

	// 4) 狀態碼處理
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &statusError{provider: p.name(), statusCode: resp.StatusCode, body: trimBody(body)}
	}

	// 5) 解析回應
	var result openAIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: openai: %v", errMalformedResponse, err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, errNoVector
	}
	return toFloat32(result.Data[0].Embedding), nil
}
