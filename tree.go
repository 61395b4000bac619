package iotdbmcp

import (
	"context"
	"fmt"
	"time"

	"github.com/rickchristie/iotdb-mcp/internal/validate"
)

// treeValidationRules are the statement categories accepted by the
// tree-dialect operations. Validation is a prefix check on the trimmed,
// uppercased query text; the tool descriptions advertise the full accepted
// shapes to the calling agent.
var treeValidationRules = []validate.Rule{
	{
		Operation: "metadata_query",
		Prefixes: []string{
			"SHOW DATABASES",
			"SHOW TIMESERIES",
			"SHOW CHILD PATHS",
			"SHOW CHILD NODES",
			"SHOW DEVICES",
			"COUNT TIMESERIES",
			"COUNT NODES",
			"COUNT DEVICES",
		},
	},
	{
		Operation: "select_query",
		Prefixes:  []string{"SELECT"},
	},
}

// MetadataQuery executes a tree-dialect metadata statement (SHOW/COUNT over
// the path tree) and returns the formatted result. The query is validated
// before any session is acquired.
func (m *IoTDBMcp) MetadataQuery(ctx context.Context, querySQL string) (string, error) {
	if err := m.requireDialect(DialectTree, "metadata_query"); err != nil {
		return "", err
	}
	if err := m.validator.Check("metadata_query", querySQL); err != nil {
		return "", err
	}

	startTime := time.Now()
	text, err := m.execute(ctx, querySQL)
	if err != nil {
		return "", err
	}

	m.logger.Info().
		Str("sql", truncateForLog(querySQL, 200)).
		Dur("duration", time.Since(startTime)).
		Msg("metadata_query executed")
	return text, nil
}

// SelectQuery executes a tree-dialect SELECT and returns the formatted
// result. Only SELECT statements are accepted.
func (m *IoTDBMcp) SelectQuery(ctx context.Context, querySQL string) (string, error) {
	if err := m.requireDialect(DialectTree, "select_query"); err != nil {
		return "", err
	}
	if err := m.validator.Check("select_query", querySQL); err != nil {
		return "", err
	}

	startTime := time.Now()
	text, err := m.execute(ctx, querySQL)
	if err != nil {
		return "", err
	}

	m.logger.Info().
		Str("sql", truncateForLog(querySQL, 200)).
		Dur("duration", time.Since(startTime)).
		Msg("select_query executed")
	return text, nil
}

// requireDialect guards a library-mode call against the inactive dialect.
// MCP registration never exposes the wrong tool set, but direct callers can
// reach any method.
func (m *IoTDBMcp) requireDialect(want Dialect, operation string) error {
	if m.config.Connection.SQLDialect != want {
		return fmt.Errorf("%s is only available in %s dialect (active dialect: %s)",
			operation, want, m.config.Connection.SQLDialect)
	}
	return nil
}
