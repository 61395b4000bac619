package iotdbmcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const metadataQueryDescription = `Execute metadata queries on IoTDB to explore database structure and statistics.

Supported queries:
    - SHOW DATABASES [path]: List all databases or databases under a specific path
    - SHOW TIMESERIES [path]: List all time series or time series under a specific path
    - SHOW CHILD PATHS [path]: List child paths under a specific path
    - SHOW CHILD NODES [path]: List child nodes under a specific path
    - SHOW DEVICES [path]: List all devices or devices under a specific path
    - COUNT TIMESERIES [path]: Count time series under a specific path
    - COUNT NODES [path]: Count nodes under a specific path
    - COUNT DEVICES [path]: Count devices under a specific path
    - if path is not provided, the query will be applied to root.**

Examples:
    SHOW DATABASES root.**
    SHOW TIMESERIES root.ln.**
    SHOW CHILD PATHS root.ln
    SHOW CHILD PATHS root.ln.*.*
    SHOW CHILD NODES root.ln
    SHOW DEVICES root.ln.**
    COUNT TIMESERIES root.ln.**
    COUNT NODES root.ln
    COUNT DEVICES root.ln`

const selectQueryDescription = `Execute a SELECT query on the IoTDB tree SQL dialect.

SQL Syntax:
    SELECT [LAST] selectExpr [, selectExpr] ...
        [INTO intoItem [, intoItem] ...]
        FROM prefixPath [, prefixPath] ...
        [WHERE whereCondition]
        [GROUP BY {
            ([startTime, endTime), interval [, slidingStep]) |
            LEVEL = levelNum [, levelNum] ... |
            TAGS(tagKey [, tagKey] ... |
            VARIATION(expression[,delta][,ignoreNull=true/false]) |
            CONDITION(expression,[keep>/>=/=/</<=]threshold[,ignoreNull=true/false]) |
            SESSION(timeInterval) |
            COUNT(expression, size[,ignoreNull=true/false])
        }]
        [HAVING havingCondition]
        [ORDER BY sortKey {ASC | DESC}]
        [FILL ({PREVIOUS | LINEAR | constant}) (, interval=DURATION_LITERAL)?)]
        [SLIMIT seriesLimit] [SOFFSET seriesOffset]
        [LIMIT rowLimit] [OFFSET rowOffset]
        [ALIGN BY {TIME | DEVICE}]

Examples:
    select temperature from root.ln.wf01.wt01 where time < 2017-11-01T00:08:00.000
    select status, temperature from root.ln.wf01.wt01 where (time > 2017-11-01T00:05:00.000 and time < 2017-11-01T00:12:00.000) or (time >= 2017-11-01T16:35:00.000 and time <= 2017-11-01T16:37:00.000)
    select * from root.ln.** where time > 1 order by time desc limit 10;

Supported Aggregate Functions:
    SUM, COUNT, MAX_VALUE, MIN_VALUE, AVG, VARIANCE, MAX_TIME, MIN_TIME, ...`

const readQueryDescription = `Execute a SELECT query on the IoTDB. Please use table sql_dialect when generating SQL queries. SELECT, DESCRIBE and SHOW statements are accepted.`

const listTablesDescription = `List all tables in the IoTDB database.`

const describeTableDescription = `Get the schema information for a specific table.`

// RegisterMCPTools registers the active dialect's operations as MCP tools on
// the given MCP server. Exactly one dialect's tool set is registered; the
// other dialect's operations do not exist as far as the agent is concerned.
func RegisterMCPTools(mcpServer *server.MCPServer, m *IoTDBMcp) {
	for _, st := range m.serverTools() {
		mcpServer.AddTool(st.Tool, st.Handler)
	}
}

// serverTools builds the tool set for the active dialect.
func (m *IoTDBMcp) serverTools() []server.ServerTool {
	switch m.config.Connection.SQLDialect {
	case DialectTree:
		return []server.ServerTool{
			m.queryTool("metadata_query", metadataQueryDescription, "The metadata query to execute", m.MetadataQuery),
			m.queryTool("select_query", selectQueryDescription, "The SQL query to execute (using TREE dialect)", m.SelectQuery),
		}
	case DialectTable:
		return []server.ServerTool{
			m.queryTool("read_query", readQueryDescription, "The SQL query to execute (using TABLE dialect)", m.ReadQuery),
			{
				Tool: mcp.NewTool("list_tables",
					mcp.WithDescription(listTablesDescription),
					mcp.WithReadOnlyHintAnnotation(true),
				),
				Handler: m.loggedToolHandler("list_tables", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					text, err := m.ListTables(ctx)
					if err != nil {
						return mcp.NewToolResultError(m.errorMessage("list_tables", err)), nil
					}
					return mcp.NewToolResultText(text), nil
				}),
			},
			{
				Tool: mcp.NewTool("describe_table",
					mcp.WithDescription(describeTableDescription),
					mcp.WithString("table_name",
						mcp.Required(),
						mcp.Description("Name of the table to describe"),
					),
					mcp.WithReadOnlyHintAnnotation(true),
				),
				Handler: m.loggedToolHandler("describe_table", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					table, err := req.RequireString("table_name")
					if err != nil {
						return mcp.NewToolResultError("table_name parameter is required"), nil
					}
					text, err := m.DescribeTable(ctx, table)
					if err != nil {
						return mcp.NewToolResultError(m.errorMessage("describe_table", err)), nil
					}
					return mcp.NewToolResultText(text), nil
				}),
			},
		}
	default:
		return nil
	}
}

// queryTool builds one single-parameter query tool around op.
func (m *IoTDBMcp) queryTool(name, description, paramDescription string, op func(context.Context, string) (string, error)) server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithString("query_sql",
				mcp.Required(),
				mcp.Description(paramDescription),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		Handler: m.loggedToolHandler(name, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			sql, err := req.RequireString("query_sql")
			if err != nil {
				return mcp.NewToolResultError("query_sql parameter is required"), nil
			}
			text, err := op(ctx, sql)
			if err != nil {
				return mcp.NewToolResultError(m.errorMessage(name, err)), nil
			}
			return mcp.NewToolResultText(text), nil
		}),
	}
}

// loggedToolHandler wraps a tool handler to log request and response lengths.
func (m *IoTDBMcp) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqLen := requestLength(req)
		result, err := handler(ctx, req)
		respLen := resultLength(result)
		m.logger.Info().
			Str("tool", tool).
			Int("request_bytes", reqLen).
			Int("response_bytes", respLen).
			Msg("tool call")
		return result, err
	}
}

// requestLength returns the JSON-encoded byte length of the request arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			total += len(tc.Text)
		}
	}
	return total
}
