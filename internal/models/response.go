package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ToolDescriptor is one entry of the GET /v1/tools listing.
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// ToolListResponse is returned by GET /v1/tools
type ToolListResponse struct {
	Tools []ToolDescriptor `json:"tools"`
}

// AgentResponse is returned by POST /v1/agent
type AgentResponse struct {
	Status        string                 `json:"status"`
	Prompt        string                 `json:"prompt"`
	Answer        string                 `json:"answer,omitempty"`
	ToolsUsed     []string               `json:"tools_used,omitempty"`
	AgentMetadata map[string]interface{} `json:"agent_metadata"`
}
