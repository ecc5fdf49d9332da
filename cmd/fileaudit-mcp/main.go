// Package main provides the CLI entry point for the fileaudit MCP server.
//
// Supports multiple transport modes:
//   - stdio (default): Standard input/output for CLI integration
//   - http: Streamable HTTP transport for web integration
//   - http+oauth: HTTP with OAuth 2.1 authentication
//
// Usage:
//
//	fileaudit-mcp                           # stdio mode (default)
//	fileaudit-mcp --transport http --port 8080
//	fileaudit-mcp --transport http --port 8080 --oauth --issuer https://company.okta.com --audience api://fileaudit
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/tuannvm/fileaudit/internal/cmd"
)

// Version is the server version, set by the build process.
var Version = "dev"

func main() {
	log.Println("Starting fileaudit MCP Server...")

	var flags cmd.MCPFlags
	flag.StringVar(&flags.Transport, "transport", getEnv("MCP_TRANSPORT", "stdio"), "Transport mode: stdio, http")
	flag.IntVar(&flags.Port, "port", getEnvInt("MCP_PORT", 8080), "HTTP port (only used with --transport http)")
	flag.BoolVar(&flags.OAuth, "oauth", false, "Enable OAuth 2.1 authentication (only with http transport)")
	flag.StringVar(&flags.Provider, "provider", "okta", "OAuth provider: okta, google, azure, hmac")
	flag.StringVar(&flags.Issuer, "issuer", "", "OAuth issuer URL (required with --oauth)")
	flag.StringVar(&flags.Audience, "audience", "", "OAuth audience (required with --oauth)")
	flag.StringVar(&flags.ServerURL, "server-url", getEnv("MCP_SERVER_URL", ""), "Public base URL for OAuth callbacks")
	flag.DurationVar(&flags.SessionTimeout, "session-timeout", 30*time.Minute, "HTTP session timeout")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to fileaudit config file")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	cmd.SetVersion(Version)
	if err := cmd.ServeMCP(context.Background(), flags); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
