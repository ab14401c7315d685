package core

// HTTPMethod 上架 API 可接受的呼叫方式
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
)

var HTTPMethods = []HTTPMethod{MethodGet, MethodPost, MethodPut, MethodDelete}

func (m HTTPMethod) Valid() bool {
	for _, v := range HTTPMethods {
		if v == m {
			return true
		}
	}
	return false
}

// EmbeddingProviderName
type EmbeddingProviderName string

const (
	EmbeddingProviderOpenAI EmbeddingProviderName = "openai"
	EmbeddingProviderOllama EmbeddingProviderName = "ollama"
)

const (
	OpenAIAPIBaseURL = "https://api.openai.com"
	OllamaBaseURL    = "http://localhost:11434"

	OpenAIEmbeddingEndpoint = "/v1/embeddings"
	OllamaEmbeddingEndpoint = "/api/embed"

	DefaultOpenAIEmbeddingModel = "text-embedding-ada-002"
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
)

// AnonymousAgent 未帶 agentID 的使用回報
const AnonymousAgent = "anonymous"

// gin context keys
const (
	ContextProviderID    = "providerID"
	ContextProviderEmail = "providerEmail"
	ContextRequestID     = "requestID"
)
