package api

// VideoRequest is the body accepted by every pipeline endpoint.
type VideoRequest struct {
	URL string `json:"url"`
}

// VideoInfoResponse keeps the two-field metadata contract.
type VideoInfoResponse struct {
	Title        *string `json:"title"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// TranscriptResponse is returned by /api/factcheck and /api/transcribe.
type TranscriptResponse struct {
	Transcript string `json:"transcript"`
}

// ClaimsResponse is returned by /api/extract-claims and /api/extract.
type ClaimsResponse struct {
	Transcript string   `json:"transcript"`
	Claims     []string `json:"claims"`
}

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError. Transcript is set when claim extraction fails
// after a successful transcription.
type ErrorEnvelope struct {
	Error      APIError `json:"error"`
	Transcript *string  `json:"transcript,omitempty"`
}

// StageHealth mirrors readiness reporting for a pipeline dependency.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external executable.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// ServiceStatus is returned by GET /status.
type ServiceStatus struct {
	Version      string             `json:"version"`
	PID          int                `json:"pid"`
	Uptime       string             `json:"uptime"`
	Engine       string             `json:"engine"`
	EngineModel  string             `json:"engine_model,omitempty"`
	LLMModel     string             `json:"llm_model"`
	WorkDir      string             `json:"work_dir"`
	LockFilePath string             `json:"lock_file,omitempty"`
	Components   []StageHealth      `json:"components"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
