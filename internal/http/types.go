package http

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

// ScopeResponse is the response body for GET /api/v1/scope. It shows the
// logging context the request runs in.
type ScopeResponse struct {
	Tags map[string][]any `json:"tags"`
	// Levels is the effective level map, empty when the provider has none.
	Levels string `json:"levels,omitempty"`
}

// LogRequest is the request body for POST /api/v1/log.
type LogRequest struct {
	Logger  string            `json:"logger"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// LogResponse is the response body for POST /api/v1/log.
type LogResponse struct {
	Logger string `json:"logger"`
	Level  string `json:"level"`
	// Enabled is the logger's own level decision.
	Enabled bool `json:"enabled"`
	// Forced reports whether the request scope forced the statement.
	Forced bool `json:"forced"`
	// Written is Enabled || Forced.
	Written bool `json:"written"`
}
