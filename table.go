package iotdbmcp

import (
	"context"
	"strings"
	"time"

	"github.com/rickchristie/iotdb-mcp/internal/validate"
)

// tableValidationRules are the statement categories accepted by the
// table-dialect operations. ListTables runs a fixed statement and
// DescribeTable treats the table name as opaque, so only read_query
// carries a rule.
var tableValidationRules = []validate.Rule{
	{
		Operation: "read_query",
		Prefixes:  []string{"SELECT", "DESCRIBE", "SHOW"},
	},
}

// ReadQuery executes a table-dialect read statement (SELECT, DESCRIBE or
// SHOW) and returns the formatted result. The query is validated before any
// session is acquired.
func (m *IoTDBMcp) ReadQuery(ctx context.Context, querySQL string) (string, error) {
	if err := m.requireDialect(DialectTable, "read_query"); err != nil {
		return "", err
	}
	if err := m.validator.Check("read_query", querySQL); err != nil {
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
		Msg("read_query executed")
	return text, nil
}

// ListTables lists the tables in the configured database. The output mirrors
// MySQL's SHOW TABLES shape: a synthetic "Tables_in_<database>" header
// followed by the first column of every SHOW TABLES row.
func (m *IoTDBMcp) ListTables(ctx context.Context) (string, error) {
	if err := m.requireDialect(DialectTable, "list_tables"); err != nil {
		return "", err
	}

	startTime := time.Now()
	text, err := m.withSession(ctx, func(session Session) (string, error) {
		queryCtx, cancel := context.WithTimeout(ctx, time.Duration(m.config.Query.TimeoutSeconds)*time.Second)
		defer cancel()

		cursor, err := session.ExecuteQuery(queryCtx, "SHOW TABLES")
		if err != nil {
			return "", err
		}
		defer cursor.Close()

		sanitize := m.sanitizer.HasRules()
		lines := []string{"Tables_in_" + m.config.Connection.Database}
		for {
			hasNext, err := cursor.Next()
			if err != nil {
				return "", err
			}
			if !hasNext {
				break
			}
			if fields := cursor.Fields(); len(fields) > 0 {
				name := formatValue(fields[0])
				if sanitize {
					name = m.sanitizer.SanitizeFields([]string{name})[0]
				}
				lines = append(lines, name)
			}
		}
		return m.truncateIfNeeded(strings.Join(lines, "\n")), nil
	})
	if err != nil {
		return "", err
	}

	m.logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("list_tables executed")
	return text, nil
}

// DescribeTable returns the schema of one table. The name is concatenated
// into "DESC <name>" verbatim — it is an opaque string, not escaped or
// validated beyond that.
func (m *IoTDBMcp) DescribeTable(ctx context.Context, tableName string) (string, error) {
	if err := m.requireDialect(DialectTable, "describe_table"); err != nil {
		return "", err
	}

	startTime := time.Now()
	text, err := m.execute(ctx, "DESC "+tableName)
	if err != nil {
		return "", err
	}

	m.logger.Info().
		Str("table", truncateForLog(tableName, 200)).
		Dur("duration", time.Since(startTime)).
		Msg("describe_table executed")
	return text, nil
}
