// Package agent drives a multi-turn Claude conversation in which the
// model works against the Spool tool catalog through the dispatcher.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/spoolhq/spool-mcp/internal/dispatch"
	"github.com/spoolhq/spool-mcp/internal/security"
	"github.com/spoolhq/spool-mcp/internal/tools"
)

// DefaultSystemPrompt frames the assistant for interactive sessions.
const DefaultSystemPrompt = "You are a document-collection assistant. " +
	"Use the available tools to list, create and inspect collections, add files, " +
	"and run semantic searches. Quote file and collection ids exactly as returned."

// toolCall is one tool invocation request extracted from a model turn.
type toolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// Agent wraps the Anthropic SDK for a tool-calling loop over the
// collection tools.
type Agent struct {
	client     *anthropic.Client
	dispatcher *dispatch.Dispatcher
	redactor   *security.Redactor
	model      string
	maxTokens  int
	listing    listingCache
}

// New creates an agent backed by Claude or a compatible provider.
func New(apiKey, model, baseURL string, d *dispatch.Dispatcher) *Agent {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Agent{
		client:     anthropic.NewClient(opts...),
		dispatcher: d,
		redactor:   security.NewRedactor(),
		model:      model,
		maxTokens:  4096,
	}
}

// Run executes the agent loop: the model calls tools until it stops
// requesting them. Returns the final text and the tools invoked.
func (a *Agent) Run(ctx context.Context, systemPrompt, userPrompt string) (string, []string, error) {
	defs := tools.Catalog()
	anthToolParams := make([]anthropic.ToolUnionUnionParam, len(defs))
	for i, def := range defs {
		anthToolParams[i] = anthropic.ToolParam{
			Name:        anthropic.String(def.Name),
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.F[interface{}](def.InputSchema()),
		}
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
	}

	var toolsUsed []string
	maxIter := 10

	for iter := 0; iter < maxIter; iter++ {
		params := anthropic.MessageNewParams{
			Model:     anthropic.F(anthropic.Model(a.model)),
			MaxTokens: anthropic.F(int64(a.maxTokens)),
			Messages:  anthropic.F(messages),
			Tools:     anthropic.F(anthToolParams),
		}
		if systemPrompt != "" {
			params.System = anthropic.F([]anthropic.TextBlockParam{
				anthropic.NewTextBlock(systemPrompt),
			})
		}

		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return "", toolsUsed, fmt.Errorf("LLM call failed: %w", err)
		}

		var textContent string
		var pendingCalls []toolCall

		for _, block := range resp.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				textContent += b.Text
			case anthropic.ToolUseBlock:
				var input map[string]interface{}
				if err := json.Unmarshal(b.Input, &input); err != nil {
					log.Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
					input = map[string]interface{}{}
				}
				pendingCalls = append(pendingCalls, toolCall{
					ID:    b.ID,
					Name:  b.Name,
					Input: input,
				})
			}
		}

		log.Debug().
			Int("iter", iter).
			Str("stop_reason", string(resp.StopReason)).
			Int("tool_calls", len(pendingCalls)).
			Msg("agent iteration")

		isDone := resp.StopReason == "end_turn" ||
			resp.StopReason == "stop" ||
			resp.StopReason == "stop_sequence" ||
			resp.StopReason == "max_tokens" ||
			len(pendingCalls) == 0
		if isDone {
			return textContent, toolsUsed, nil
		}

		// Force a final answer after 7 iterations to avoid runaway loops
		if iter >= 7 {
			messages = append(messages, resp.ToParam())
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock("You have enough data. Please provide your final answer now without calling any more tools."),
			))
			params := anthropic.MessageNewParams{
				Model:     anthropic.F(anthropic.Model(a.model)),
				MaxTokens: anthropic.F(int64(a.maxTokens)),
				Messages:  anthropic.F(messages),
			}
			if systemPrompt != "" {
				params.System = anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(systemPrompt)})
			}
			finalResp, err := a.client.Messages.New(ctx, params)
			if err != nil {
				return textContent, toolsUsed, fmt.Errorf("final answer call failed: %w", err)
			}
			for _, block := range finalResp.Content {
				if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
					textContent += b.Text
				}
			}
			return textContent, toolsUsed, nil
		}

		messages = append(messages, resp.ToParam())

		// Execute tools through the dispatcher; failures flow back to the
		// model as error results instead of aborting the loop. Result
		// text is redacted before it enters the conversation, so PII in
		// stored documents never reaches the model provider.
		var toolResults []anthropic.ContentBlockParamUnion
		for _, tc := range pendingCalls {
			toolsUsed = append(toolsUsed, tc.Name)
			env := a.dispatcher.Invoke(ctx, tc.Name, tc.Input)
			text, isErr := env.RenderText(tc.Name)
			text = a.redactor.Redact(text)
			toolResults = append(toolResults, anthropic.NewToolResultBlock(tc.ID, text, isErr))
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return "", toolsUsed, fmt.Errorf("agent loop exceeded max iterations (%d)", maxIter)
}
