package model

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Route   string `json:"route"`
}

type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Route         string `json:"route"`
}

type NodeListResponse struct {
	Nodes []string `json:"nodes"`
}

type ErrorResponse struct {
	Success  bool   `json:"success"`
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// NodeEvent is the WebSocket reply to a NodeSelection.
type NodeEvent struct {
	Node    string         `json:"node"`
	Metrics *NodeMetrics   `json:"metrics,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}
