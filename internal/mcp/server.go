package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	oauth "github.com/tuannvm/oauth-mcp-proxy"
	mcpoauth "github.com/tuannvm/oauth-mcp-proxy/mcp"
)

const (
	// ServerName is the MCP server name.
	ServerName = "fileaudit"
	// ServerVersion is the MCP server version.
	ServerVersion = "1.0.0"
)

// ServerInstructions provides usage guidance for LLMs.
const ServerInstructions = `fileaudit runs a simulated multi-agent audit over file descriptors (name, size, modification time) and returns a consolidated report. File contents are never read.

Available tools:
- run_audit: Audit files by path, manifest or inline descriptors
- list_agents: Show the agents, their dependencies and execution levels
- get_status: Show the agent states of the last audit run by this server

Typical workflow:
1. Use list_agents to understand the pipeline
2. Use run_audit with paths or inline files (set no_latency for fast results)
3. Inspect findings and risk_level in the returned report
4. Use get_status to see which agents failed when an audit does not succeed`

// Transport defaults.
const (
	DefaultPort           = 8080
	DefaultSessionTimeout = 30 * time.Minute
	shutdownTimeout       = 10 * time.Second
)

// ServerConfig holds configuration for creating an MCP server.
type ServerConfig struct {
	Name         string
	Version      string
	Instructions string
	Logger       *slog.Logger
	Handlers     *Handlers

	Port           int
	SessionTimeout time.Duration

	// OAuth protects the HTTP transport when set
	OAuth *OAuthConfig
}

// OAuthConfig holds OAuth-specific configuration.
type OAuthConfig struct {
	Provider  string // okta, google, azure, hmac
	Issuer    string
	Audience  string
	ServerURL string // public base URL, defaults to http://localhost:<port>
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *ServerConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = ServerName
	}
	if c.Version == "" {
		c.Version = ServerVersion
	}
	if c.Instructions == "" {
		c.Instructions = ServerInstructions
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Handlers == nil {
		c.Handlers = NewHandlers().WithLogger(c.Logger)
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = DefaultSessionTimeout
	}
}

// Server wraps the SDK server with its transports.
type Server struct {
	mcpServer   *mcp.Server
	config      *ServerConfig
	oauthServer *oauth.Server
}

// NewServer creates a server with every fileaudit tool registered.
func NewServer(cfg *ServerConfig) *Server {
	if cfg == nil {
		cfg = &ServerConfig{}
	}
	cfg.applyDefaults()

	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: cfg.Name, Version: cfg.Version},
		&mcp.ServerOptions{Instructions: cfg.Instructions, Logger: cfg.Logger},
	)
	registerTools(mcpServer, cfg.Handlers)

	return &Server{mcpServer: mcpServer, config: cfg}
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// ServeStdio serves over standard input/output until ctx is done or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.config.Logger.Info("starting MCP server", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// ServeHTTP serves the streamable HTTP transport on /mcp until ctx is done
// or the process is interrupted.
func (s *Server) ServeHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.streamableHandler())
	s.addHealthCheck(mux)

	addr := s.addr()
	s.config.Logger.Info("starting MCP server",
		"transport", "http",
		"endpoint", "http://localhost"+addr+"/mcp",
		"health", "http://localhost"+addr+"/health")

	return s.runHTTPServer(ctx, addr, mux)
}

// ServeHTTPWithOAuth serves the HTTP transport behind OAuth 2.1.
func (s *Server) ServeHTTPWithOAuth(ctx context.Context) error {
	if s.config.OAuth == nil {
		return fmt.Errorf("OAuth configuration is required")
	}

	serverURL := s.config.OAuth.ServerURL
	if serverURL == "" {
		serverURL = "http://localhost" + s.addr()
	}

	mux := http.NewServeMux()
	oauthServer, handler, err := mcpoauth.WithOAuth(mux, &oauth.Config{
		Provider:  s.config.OAuth.Provider,
		Issuer:    s.config.OAuth.Issuer,
		Audience:  s.config.OAuth.Audience,
		ServerURL: serverURL,
	}, s.mcpServer)
	if err != nil {
		return fmt.Errorf("failed to create OAuth server: %w", err)
	}
	s.oauthServer = oauthServer

	mux.Handle("/mcp", handler)
	s.addHealthCheck(mux)

	s.config.Logger.Info("starting MCP server",
		"transport", "http+oauth",
		"endpoint", serverURL+"/mcp",
		"provider", s.config.OAuth.Provider,
		"issuer", s.config.OAuth.Issuer)
	s.oauthServer.LogStartup(false)

	return s.runHTTPServer(ctx, s.addr(), mux)
}

func (s *Server) addr() string {
	return fmt.Sprintf(":%d", s.config.Port)
}

// streamableHandler serves MCP protocol revision 2025-11-25 over HTTP.
func (s *Server) streamableHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		SessionTimeout: s.config.SessionTimeout,
		Logger:         s.config.Logger,
	})
}

// addHealthCheck adds a health check endpoint to the mux.
func (s *Server) addHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.health)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"status":"ok","version":"%s"}`, s.config.Version)
}

// runHTTPServer serves until ctx is done or SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) runHTTPServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // audits with simulated latency take seconds
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.config.Logger.Info("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errCh
}

// boolPtr creates a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// registerTools registers all fileaudit tools with the MCP server.
func registerTools(server *mcp.Server, h *Handlers) {
	registerRunAuditTool(server, h)
	registerListAgentsTool(server, h)
	registerGetStatusTool(server, h)
}

func registerRunAuditTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "run_audit",
			Description: "Run the file audit pipeline: file analysis, then batch processing, aggregation and security analysis. Accepts paths, a manifest or inline descriptors.",
			Annotations: &mcp.ToolAnnotations{
				Title:           "Run Audit",
				ReadOnlyHint:    false,
				DestructiveHint: boolPtr(false),
				IdempotentHint:  false,
				OpenWorldHint:   boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input RunAuditInput) (*mcp.CallToolResult, RunAuditOutput, error) {
			output, err := h.RunAudit(ctx, input)
			return nil, output, err
		},
	)
}

func registerListAgentsTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_agents",
			Description: "List the audit agents with their roles, dependencies and execution levels.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "List Agents",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input ListAgentsInput) (*mcp.CallToolResult, ListAgentsOutput, error) {
			output, err := h.ListAgents(ctx, input)
			return nil, output, err
		},
	)
}

func registerGetStatusTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_status",
			Description: "Get the agent states of the last audit run by this server: status, execution time and errors.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "Get Status",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input GetStatusInput) (*mcp.CallToolResult, GetStatusOutput, error) {
			return nil, h.GetStatus(ctx, input), nil
		},
	)
}
