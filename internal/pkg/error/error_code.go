package error

const (
	// 40000 ~ 49999: 用戶請求錯誤 (400 系列)
	BAD_REQUEST_BODY   = 40000 // 400 - 無效的請求體
	BAD_REQUEST_PARAMS = 40001 // 400 - 無效的請求參數
	QUERY_TOO_SHORT    = 40003 // 400 - 搜尋字串過短

	// 40100 ~ 40399: 驗證與權限錯誤 (401 403 系列)
	UNAUTHORIZED        = 40100 // 401 - 未授權
	INVALID_SESSION     = 40101 // 401 - token 失效
	INVALID_CREDENTIALS = 40102 // 401 - 帳號或密碼錯誤
	FORBIDDEN           = 40301 // 403 - 禁止訪問

	// 40400 ~ 40499: 資源錯誤 (404 系列)
	NOT_FOUND          = 40400 // 404 - 資源未找到
	METHOD_NOT_ALLOWED = 40500 // 405 - 不支援的方法

	// 40900 ~ 40999: 衝突 (409 系列)
	DUPLICATE_EMAIL = 40900 // 409 - Email 已註冊

	// 42200 ~ 42299: 內容無法處理 (422 系列)
	INVALID_OPENAPI_SPEC = 42200 // 422 - OpenAPI 文件格式錯誤

	// 42900 ~ 42999: 流量限制錯誤 (429 系列)
	RATE_LIMIT_EXCEEDED = 42900 // 429 - 速率限制超過

	// 50000 ~ 50199: 伺服器內部錯誤 (500 系列)
	INTERNAL_ERROR      = 50000 // 500 - 內部錯誤
	DATABASE_ERROR      = 50001 // 500 - 資料庫錯誤
	SERVICE_UNAVAILABLE = 50002 // 503 - 服務暫停 (維護模式)

	// 50200 ~ 50499: 外部依賴錯誤 (503 504 系列)
	UPSTREAM_UNAVAILABLE = 50202 // 503 - embedding provider 無法使用
	GATEWAY_TIMEOUT      = 50400 // 504 - 外部 API 超時
)
