package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spoolhq/spool-mcp/internal/agent"
	"github.com/spoolhq/spool-mcp/internal/config"
	"github.com/spoolhq/spool-mcp/internal/dispatch"
	"github.com/spoolhq/spool-mcp/internal/models"
	"github.com/spoolhq/spool-mcp/internal/ratelimit"
	"github.com/spoolhq/spool-mcp/internal/server"
	"github.com/spoolhq/spool-mcp/internal/spool"
	"github.com/spoolhq/spool-mcp/internal/tools"
	"github.com/spoolhq/spool-mcp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "spool-mcp",
	Short:   "MCP server exposing Spool document collections as agent tools",
	Version: version.Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	RunE:  runServe,
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the HTTP surface (REST tool API and MCP over SSE)",
	RunE:  runHTTP,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalog as JSON",
	RunE:  runTools,
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the Claude agent against the collection tools",
	RunE:  runAgent,
}

var (
	messageFlag  string
	configFlag   string
	logLevelFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (trace, debug, info, warn, error)")
	agentCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	rootCmd.AddCommand(serveCmd, httpCmd, toolsCmd, agentCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads configuration, wires logging, and validates the
// parts a serving process cannot run without.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadPath(configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	setupLogging(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging routes all logs to stderr: stdout belongs to the MCP
// stdio transport and must stay protocol-clean.
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := io.Writer(os.Stderr)
	if cfg.Environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// newDispatcher builds the shared invocation pipeline from config.
func newDispatcher(cfg *config.Config) *dispatch.Dispatcher {
	client := spool.NewClient(cfg.SpoolBaseURL, cfg.SpoolAPIKey, cfg.SpoolTimeout())
	limiter := ratelimit.New(cfg.RateLimitCalls, cfg.RateLimitPeriod())
	return dispatch.New(client, limiter)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mcpServer := server.NewMCPServer(newDispatcher(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("transport", "stdio").Str("version", version.Version).Msg("mcp server starting")
	return mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func runHTTP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg).Run(ctx)
}

func runTools(cmd *cobra.Command, args []string) error {
	defs := tools.Catalog()
	descriptors := make([]models.ToolDescriptor, 0, len(defs))
	for _, def := range defs {
		descriptors = append(descriptors, models.ToolDescriptor{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(models.ToolListResponse{Tools: descriptors})
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	a := agent.New(cfg.AnthropicAPIKey, cfg.AgentModel, cfg.AnthropicBaseURL, newDispatcher(cfg))
	runTimeout := time.Duration(cfg.AgentTimeout) * time.Second

	// Single message mode
	if messageFlag != "" {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		answer, used, err := a.Run(ctx, a.SystemPrompt(ctx), messageFlag)
		if err != nil {
			return fmt.Errorf("agent error: %w", err)
		}
		if len(used) > 0 {
			fmt.Fprintf(os.Stderr, "tools used: %s\n", strings.Join(used, ", "))
		}
		fmt.Println(answer)
		return nil
	}

	// REPL mode
	fmt.Println("spool agent (type 'exit' to quit)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		answer, _, err := a.Run(ctx, a.SystemPrompt(ctx), input)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(answer)
	}
	return nil
}
