package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spoolhq/spool-mcp/internal/dispatch"
	"github.com/spoolhq/spool-mcp/internal/models"
	"github.com/spoolhq/spool-mcp/internal/tools"
)

// ToolsHandler exposes the tool catalog and tool invocation over REST,
// mirroring what the MCP transport offers.
type ToolsHandler struct {
	dispatcher *dispatch.Dispatcher
}

func NewToolsHandler(d *dispatch.Dispatcher) *ToolsHandler {
	return &ToolsHandler{dispatcher: d}
}

// List handles GET /v1/tools
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	defs := tools.Catalog()
	descriptors := make([]models.ToolDescriptor, 0, len(defs))
	for _, def := range defs {
		descriptors = append(descriptors, models.ToolDescriptor{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		})
	}
	models.WriteJSON(w, http.StatusOK, models.ToolListResponse{Tools: descriptors})
}

// Invoke handles POST /v1/tools/{tool_name}. The body is the argument
// object; an empty body means no arguments.
func (h *ToolsHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tool_name")

	var args map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	models.WriteEnvelope(w, h.dispatcher.Invoke(r.Context(), name, args))
}
