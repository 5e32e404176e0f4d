package server

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spoolhq/spool-mcp/internal/dispatch"
	"github.com/spoolhq/spool-mcp/internal/models"
	"github.com/spoolhq/spool-mcp/internal/tools"
	"github.com/spoolhq/spool-mcp/internal/version"
)

const mcpServerName = "spool-mcp"

// NewMCPServer registers every catalog tool on an MCP server backed by
// the dispatcher. The same instance serves stdio and SSE sessions.
func NewMCPServer(d *dispatch.Dispatcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    mcpServerName,
		Version: version.Version,
	}, nil)

	for _, def := range tools.Catalog() {
		server.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := map[string]interface{}{}
			if len(req.Params.Arguments) > 0 {
				if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
					env := models.Failf(models.KindValidation, "invalid arguments: %v", err)
					return resultFromEnvelope(req.Params.Name, env), nil
				}
			}
			return resultFromEnvelope(req.Params.Name, d.Invoke(ctx, req.Params.Name, args)), nil
		})
	}
	return server
}

// resultFromEnvelope renders an invocation outcome as MCP content.
func resultFromEnvelope(name string, env models.Envelope) *mcp.CallToolResult {
	text, isErr := env.RenderText(name)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isErr,
	}
}
