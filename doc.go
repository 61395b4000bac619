// Package iotdbmcp exposes Apache IoTDB query capabilities to AI agents
// through the Model Context Protocol (MCP).
//
// One process serves exactly one IoTDB SQL dialect. The tree dialect
// (hierarchical path model) exposes metadata_query and select_query; the
// table dialect (relational model, IoTDB 2.0) exposes read_query,
// list_tables, and describe_table. Results are returned as flat text blocks:
// a comma-joined header line followed by one comma-joined line per row.
//
// Queries are validated against each operation's allowed statement category
// before any session is acquired. Sessions are checked out of the client pool
// under a scoped acquire, so every path — including execution failures —
// returns the session to the pool.
//
// # Library Usage
//
//	config := iotdbmcp.Config{
//		Connection: iotdbmcp.ConnectionConfig{
//			Host:       "127.0.0.1",
//			Port:       6667,
//			User:       "root",
//			Password:   "root",
//			Database:   "test",
//			SQLDialect: iotdbmcp.DialectTable,
//		},
//	}
//	pool := iotdb.NewTablePool(config)
//	m, err := iotdbmcp.New(config, pool, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//
//	// Use directly
//	text, err := m.ReadQuery(ctx, "SELECT * FROM sensors LIMIT 10")
//
//	// Or register as MCP tools
//	iotdbmcp.RegisterMCPTools(mcpServer, m)
//
// For the server binary, see cmd/goiotdbmcp.
package iotdbmcp
