package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	iotdbmcp "github.com/rickchristie/iotdb-mcp"
)

// cliOptions holds the raw flag values before type coercion. Every flag's
// default is the corresponding environment variable when set, so precedence
// is CLI flag > environment > built-in default, independently per field.
type cliOptions struct {
	host       string
	port       string
	user       string
	password   string
	database   string
	sqlDialect string

	transport string
	httpPort  string
	logLevel  string
	logFormat string
}

func parseFlags(name string, args []string) (*cliOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	opts := &cliOptions{}

	fs.StringVar(&opts.host, "host", envOr("IOTDB_HOST", "127.0.0.1"), "IoTDB host")
	fs.StringVar(&opts.port, "port", envOr("IOTDB_PORT", "6667"), "IoTDB port")
	fs.StringVar(&opts.user, "user", envOr("IOTDB_USER", "root"), "IoTDB username")
	fs.StringVar(&opts.password, "password", envOr("IOTDB_PASSWORD", "root"), "IoTDB password (empty prompts on the terminal)")
	fs.StringVar(&opts.database, "database", envOr("IOTDB_DATABASE", "test"), "IoTDB connect database name")
	fs.StringVar(&opts.sqlDialect, "sql-dialect", envOr("IOTDB_SQL_DIALECT", "table"), "SQL dialect: tree or table")

	fs.StringVar(&opts.transport, "transport", envOr("IOTDB_MCP_TRANSPORT", "stdio"), "MCP transport: stdio or http")
	fs.StringVar(&opts.httpPort, "http-port", envOr("IOTDB_MCP_HTTP_PORT", "8080"), "HTTP port (http transport only)")
	fs.StringVar(&opts.logLevel, "log-level", envOr("IOTDB_MCP_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", envOr("IOTDB_MCP_LOG_FORMAT", "json"), "Log format: json or text")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// buildConfig coerces the raw option values into an engine Config. A
// malformed value (non-integer port, unknown dialect) is fatal at startup.
func buildConfig(opts *cliOptions) (iotdbmcp.Config, error) {
	port, err := strconv.Atoi(opts.port)
	if err != nil {
		return iotdbmcp.Config{}, fmt.Errorf("invalid port %q: %w", opts.port, err)
	}

	dialect := iotdbmcp.Dialect(opts.sqlDialect)
	switch dialect {
	case iotdbmcp.DialectTree, iotdbmcp.DialectTable:
	default:
		return iotdbmcp.Config{}, fmt.Errorf("invalid sql-dialect %q: must be %q or %q",
			opts.sqlDialect, iotdbmcp.DialectTree, iotdbmcp.DialectTable)
	}

	return iotdbmcp.Config{
		Connection: iotdbmcp.ConnectionConfig{
			Host:       opts.host,
			Port:       port,
			User:       opts.user,
			Password:   opts.password,
			Database:   opts.database,
			SQLDialect: dialect,
		},
	}, nil
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
