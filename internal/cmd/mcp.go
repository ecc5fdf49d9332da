package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannvm/fileaudit/internal/logging"
	auditmcp "github.com/tuannvm/fileaudit/internal/mcp"
)

// MCPFlags are the server options shared by 'fileaudit mcp' and the
// standalone fileaudit-mcp binary.
type MCPFlags struct {
	Transport      string
	Port           int
	OAuth          bool
	Provider       string
	Issuer         string
	Audience       string
	ServerURL      string
	SessionTimeout time.Duration
	ConfigPath     string
	Verbose        bool
}

func newMCPCommand(ctx *commandContext) *cobra.Command {
	var flags MCPFlags

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run fileaudit as an MCP server",
		Long: `Run fileaudit as an MCP (Model Context Protocol) server.

Transports:
  stdio    Standard input/output for CLI integration (default)
  http     Streamable HTTP transport for web integration

Examples:
  fileaudit mcp                                    # stdio mode
  fileaudit mcp --transport http --port 8080       # HTTP mode
  fileaudit mcp --transport http --oauth \
    --issuer https://company.okta.com \
    --audience api://fileaudit                     # HTTP with OAuth`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ConfigPath == "" {
				flags.ConfigPath = ctx.configPath
			}
			flags.Verbose = flags.Verbose || ctx.verbose
			return ServeMCP(cmd.Context(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Transport, "transport", "stdio", "transport mode: stdio, http")
	f.IntVar(&flags.Port, "port", 8080, "HTTP port (only used with --transport http)")
	f.BoolVar(&flags.OAuth, "oauth", false, "enable OAuth 2.1 authentication (only with http transport)")
	f.StringVar(&flags.Provider, "provider", "okta", "OAuth provider: okta, google, azure, hmac")
	f.StringVar(&flags.Issuer, "issuer", "", "OAuth issuer URL (required with --oauth)")
	f.StringVar(&flags.Audience, "audience", "", "OAuth audience (required with --oauth)")
	f.StringVar(&flags.ServerURL, "server-url", "", "public base URL for OAuth callbacks")
	f.DurationVar(&flags.SessionTimeout, "session-timeout", 30*time.Minute, "HTTP session timeout")
	return cmd
}

// ServeMCP builds the MCP server from flags and serves it until shutdown.
func ServeMCP(ctx context.Context, flags MCPFlags) error {
	level := "info"
	if flags.Verbose {
		level = "debug"
	}
	// Logs go to stderr so stdio transport output stays clean
	logger, err := logging.New(logging.Options{Level: level, Format: "text", Writer: os.Stderr})
	if err != nil {
		return err
	}

	handlers := auditmcp.NewHandlers().WithLogger(logger)
	if flags.ConfigPath != "" {
		handlers.WithConfigPath(flags.ConfigPath)
	}

	cfg := &auditmcp.ServerConfig{
		Version:        version,
		Logger:         logger,
		Handlers:       handlers,
		Port:           flags.Port,
		SessionTimeout: flags.SessionTimeout,
	}
	if flags.OAuth {
		if flags.Issuer == "" || flags.Audience == "" {
			return fmt.Errorf("--issuer and --audience are required with --oauth")
		}
		cfg.OAuth = &auditmcp.OAuthConfig{
			Provider:  flags.Provider,
			Issuer:    flags.Issuer,
			Audience:  flags.Audience,
			ServerURL: flags.ServerURL,
		}
	}

	server := auditmcp.NewServer(cfg)

	switch flags.Transport {
	case "stdio":
		err = server.ServeStdio(ctx)
	case "http":
		if cfg.OAuth != nil {
			err = server.ServeHTTPWithOAuth(ctx)
		} else {
			err = server.ServeHTTP(ctx)
		}
	default:
		return fmt.Errorf("unknown transport: %s (use: stdio, http)", flags.Transport)
	}
	if err != nil {
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
