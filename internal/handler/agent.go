package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/spoolhq/spool-mcp/internal/models"
	"github.com/spoolhq/spool-mcp/internal/security"
)

// PromptRunner is the slice of the agent the HTTP surface needs.
type PromptRunner interface {
	SystemPrompt(ctx context.Context) string
	Run(ctx context.Context, systemPrompt, userPrompt string) (string, []string, error)
}

// AgentHandler handles POST /v1/agent. Prompts are screened for PII and
// injection before anything is sent to the model provider.
type AgentHandler struct {
	runner    PromptRunner
	pii       *security.PIIDetector
	validator *security.PromptValidator
	audit     *security.AuditLogger
	model     string
}

func NewAgentHandler(runner PromptRunner, model string) *AgentHandler {
	return &AgentHandler{
		runner:    runner,
		pii:       security.NewPIIDetector(security.DefaultPIIKeywords),
		validator: security.NewPromptValidator(),
		audit:     security.NewAuditLogger(true),
		model:     model,
	}
}

// Ask handles POST /v1/agent
func (h *AgentHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		models.WriteError(w, http.StatusServiceUnavailable, "agent is not configured: set ANTHROPIC_API_KEY")
		return
	}

	var req models.AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if req.Prompt == "" {
		models.WriteError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	start := time.Now()
	apiKey := r.Header.Get("X-API-Key")
	metadata := map[string]interface{}{
		"model":  h.model,
		"method": "agent",
	}

	// 1. PII screening
	if found, kw := h.pii.Detect(req.Prompt); found {
		metadata["pii_check"] = "blocked: " + kw
		models.WriteJSON(w, http.StatusBadRequest, &models.AgentResponse{
			Status:        "error",
			Prompt:        req.Prompt,
			AgentMetadata: metadata,
		})
		return
	}
	metadata["pii_check"] = "passed"

	// 2. Prompt validation
	if vr := h.validator.Validate(req.Prompt); !vr.Valid {
		metadata["prompt_validation"] = "blocked: " + vr.Message
		models.WriteJSON(w, http.StatusBadRequest, &models.AgentResponse{
			Status:        "error",
			Prompt:        req.Prompt,
			AgentMetadata: metadata,
		})
		return
	}
	metadata["prompt_validation"] = "passed"

	// 3. Run the tool loop under the request's own deadline
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(req.Timeout)*time.Second)
	defer cancel()

	answer, toolsUsed, err := h.runner.Run(ctx, h.runner.SystemPrompt(ctx), req.Prompt)
	execMs := time.Since(start).Milliseconds()
	h.audit.LogAgentRequest(req.Prompt, apiKey, toolsUsed, err == nil, execMs)

	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "agent run: "+err.Error())
		return
	}

	metadata["duration_ms"] = execMs
	models.WriteJSON(w, http.StatusOK, &models.AgentResponse{
		Status:        "success",
		Prompt:        req.Prompt,
		Answer:        answer,
		ToolsUsed:     toolsUsed,
		AgentMetadata: metadata,
	})
}
