package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/questbox/config"
	"github.com/isdmx/questbox/engine"
	"github.com/isdmx/questbox/history"
	"github.com/isdmx/questbox/protocol"
	"github.com/isdmx/questbox/validator"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Executor is the engine surface the tools need.
type Executor interface {
	ExecuteUserCode(ctx context.Context, req engine.Request) (protocol.Outcome, error)
	Check(code string) validator.Result
}

// SubmissionLister lists recorded submissions.
type SubmissionLister interface {
	Recent(ctx context.Context, limit int) ([]history.Submission, error)
}

// MCPServer represents the MCP server
type MCPServer struct {
	config      *config.Config
	logger      *zap.Logger
	executor    Executor
	submissions SubmissionLister
	mcpServer   *server.MCPServer
	httpServer  *server.StreamableHTTPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, executor Executor, submissions SubmissionLister) (*MCPServer, error) {
	if executor == nil {
		return nil, errors.New("mcpserver: executor is required")
	}

	s := &MCPServer{
		config:      cfg,
		logger:      logger.Named("mcp"),
		executor:    executor,
		submissions: submissions,
	}

	s.logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.String("sandbox.backend", cfg.Sandbox.Backend),
		zap.Int("sandbox.timeout_ms", cfg.Sandbox.TimeoutMS),
		zap.Int("sandbox.max_output_bytes", cfg.Sandbox.MaxOutputBytes),
		zap.Int("sandbox.max_concurrency", cfg.Sandbox.MaxConcurrency),
		zap.Bool("sandbox.isolate_namespaces", cfg.Sandbox.IsolateNamespaces),
		zap.Bool("history.enabled", cfg.History.Enabled),
	)

	s.mcpServer = server.NewMCPServer("questbox", Version, server.WithToolCapabilities(false))
	s.registerTools()
	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)

	return s, nil
}

func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "run_game_code",
		Description: "Run a student's Python snippet against the game and return the resulting action",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Python source written by the student",
				},
				"context": map[string]any{
					"type":        "object",
					"description": "Variables bound before the code runs (strings, numbers, booleans, or flat lists of those)",
				},
			},
			Required: []string{"code"},
		},
	}, s.handleRunGameCode)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "check_game_code",
		Description: "Check a student's Python snippet for forbidden constructs without running it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Python source written by the student",
				},
			},
			Required: []string{"code"},
		},
	}, s.handleCheckGameCode)

	if s.submissions != nil {
		s.mcpServer.AddTool(mcp.Tool{
			Name:        "recent_submissions",
			Description: "List the most recent executed submissions, newest first",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": fmt.Sprintf("Maximum number of submissions (default %d)", history.DefaultLimit),
					},
				},
			},
		}, s.handleRecentSubmissions)
	}
}

func (s *MCPServer) handleRunGameCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return errorResult(fmt.Sprintf("code parameter is required: %v", err)), nil
	}

	vars, err := contextArgument(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	s.logger.Debug("code execution requested", zap.Int("code_bytes", len(code)), zap.Int("context_vars", len(vars)))

	outcome, err := s.executor.ExecuteUserCode(ctx, engine.Request{Code: code, Context: vars})
	if err != nil {
		s.logger.Error("code execution failed", zap.Error(err))
		return errorResult(fmt.Sprintf("Execution failed: %v", err)), nil
	}

	return jsonResult(outcome)
}

func (s *MCPServer) handleCheckGameCode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return errorResult(fmt.Sprintf("code parameter is required: %v", err)), nil
	}
	return jsonResult(s.executor.Check(code))
}

func (s *MCPServer) handleRecentSubmissions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := history.DefaultLimit
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		if v, ok := args["limit"].(float64); ok && v > 0 {
			limit = int(v)
		}
	}

	subs, err := s.submissions.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list submissions", zap.Error(err))
		return errorResult(fmt.Sprintf("Listing submissions failed: %v", err)), nil
	}
	return jsonResult(subs)
}

// contextArgument extracts the optional context object. It is re-decoded
// with UseNumber so integers stay integers instead of becoming floats.
func contextArgument(request mcp.CallToolRequest) (map[string]any, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	raw, ok := args["context"]
	if !ok || raw == nil {
		return nil, nil
	}
	if _, isObject := raw.(map[string]any); !isObject {
		return nil, errors.New("context must be an object")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var vars map[string]any
	if err := dec.Decode(&vars); err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}
	return vars, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
		IsError: true,
	}
}

// ServeStdio serves MCP over stdin/stdout until ctx is cancelled or stdin
// closes.
func (s *MCPServer) ServeStdio(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio")
	return server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}

// ServeHTTP serves MCP over streamable HTTP on the configured port. It
// returns http.ErrServerClosed after Shutdown.
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))
	return s.httpServer.Start(fmt.Sprintf(":%d", port))
}

// Shutdown stops the HTTP transport.
func (s *MCPServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the streamable HTTP handler so that it can be mounted on
// another router.
func (s *MCPServer) Handler() http.Handler {
	return s.httpServer
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
