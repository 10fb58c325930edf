package dto

// HealthResponse is the body of the health check endpoint.
type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	CacheSize        int    `json:"cache_size"`
	GeminiConfigured bool   `json:"gemini_configured"`
	Version          string `json:"version"`
}

// RootResponse is the service banner returned at the root path.
type RootResponse struct {
	Message      string   `json:"message"`
	Version      string   `json:"version"`
	Status       string   `json:"status"`
	Capabilities []string `json:"capabilities"`
}
