package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	iotdbmcp "github.com/rickchristie/iotdb-mcp"
	"github.com/rickchristie/iotdb-mcp/internal/iotdb"
	"github.com/rickchristie/iotdb-mcp/internal/meta"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

func runServe(args []string) error {
	// 1. Resolve configuration (CLI > env > defaults)
	opts, err := parseFlags("goiotdbmcp", args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	config, err := buildConfig(opts)
	if err != nil {
		return err
	}

	// 2. Setup logger (stderr only — stdout carries the stdio transport)
	logger := setupLogger(opts.logLevel, opts.logFormat)

	// 3. An explicitly empty password means "ask". Prompt before the stdio
	// transport takes over; skip when stdin is not a terminal.
	if config.Connection.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		config.Connection.Password = promptPassword("IoTDB password: ")
	}

	logger.Info().
		Str("host", config.Connection.Host).
		Int("port", config.Connection.Port).
		Str("user", config.Connection.User).
		Str("database", config.Connection.Database).
		Str("sql_dialect", string(config.Connection.SQLDialect)).
		Msg("IoTDB config")

	// 4. Construct the active dialect's pool — the other is never built.
	var pool iotdbmcp.SessionPool
	switch config.Connection.SQLDialect {
	case iotdbmcp.DialectTree:
		pool = iotdb.NewTreePool(config)
	case iotdbmcp.DialectTable:
		pool = iotdb.NewTablePool(config)
	}

	engine, err := iotdbmcp.New(config, pool, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to create IoTDBMcp: %w", err)
	}
	defer engine.Close()

	// 5. Test database connection
	logger.Info().Msg("testing database connection")
	if err := engine.Ping(context.Background()); err != nil {
		logger.Error().Err(err).Msg("database connection test failed")
		return fmt.Errorf("database connection test failed: %w", err)
	}
	logger.Info().Msg("database connection test successful")

	// 6. Create MCP server with initialize lifecycle logging
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Info().
			Str("client_name", req.Params.ClientInfo.Name).
			Str("client_version", req.Params.ClientInfo.Version).
			Msg("AI agent connected (MCP initialize)")
	})

	mcpServer := server.NewMCPServer("goiotdbmcp", meta.Version,
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
	)
	iotdbmcp.RegisterMCPTools(mcpServer, engine)

	// 7. Serve
	switch opts.transport {
	case "stdio":
		logger.Info().Msg("goiotdbmcp serving on stdio transport")
		return server.ServeStdio(mcpServer)
	case "http":
		return serveHTTP(mcpServer, opts.httpPort, logger)
	default:
		return fmt.Errorf("unknown transport %q: must be stdio or http", opts.transport)
	}
}

func serveHTTP(mcpServer *server.MCPServer, portValue string, logger zerolog.Logger) error {
	httpPort, err := strconv.Atoi(portValue)
	if err != nil {
		return fmt.Errorf("invalid http-port %q: %w", portValue, err)
	}

	addr := fmt.Sprintf(":%d", httpPort)
	mux := http.NewServeMux()

	// Health check endpoint (process liveness only, not DB connectivity)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	streamableServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
		server.WithStreamableHTTPServer(httpSrv),
	)

	// Manually register the MCP handler — Start() does NOT register
	// when a custom *http.Server is provided via WithStreamableHTTPServer.
	mux.Handle("/mcp", streamableServer)

	logger.Info().Int("port", httpPort).Msg("starting goiotdbmcp server")
	return streamableServer.Start(addr)
}

func setupLogger(level, format string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	var output io.Writer = os.Stderr
	if format == "text" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

func promptPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // newline after password input
	if err != nil {
		return ""
	}
	return string(password)
}
