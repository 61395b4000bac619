package iotdbmcp_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	iotdbmcp "github.com/rickchristie/iotdb-mcp"
)

func TestReadQuery_AllowedPrefixes(t *testing.T) {
	t.Parallel()
	queries := []string{
		"SELECT * FROM sensors LIMIT 10",
		"DESCRIBE sensors",
		"SHOW TABLES",
		"  select * from sensors", // leading whitespace, lowercase
	}

	for _, query := range queries {
		pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{columns: []string{"c"}}}}
		m := newTestInstance(t, tableConfig(), pool)

		if _, err := m.ReadQuery(context.Background(), query); err != nil {
			t.Fatalf("query %q: unexpected error: %v", query, err)
		}
		if pool.acquires != 1 {
			t.Fatalf("query %q: expected 1 acquisition, got %d", query, pool.acquires)
		}
	}
}

func TestReadQuery_RejectedPrefix(t *testing.T) {
	t.Parallel()
	pool := &fakePool{}
	m := newTestInstance(t, tableConfig(), pool)

	for _, query := range []string{
		"INSERT INTO sensors VALUES (1, 2)",
		"DROP TABLE sensors",
		"UPDATE sensors SET v = 1",
	} {
		if _, err := m.ReadQuery(context.Background(), query); err == nil {
			t.Fatalf("query %q: expected validation error", query)
		}
	}
	if pool.acquires != 0 {
		t.Fatalf("expected zero pool acquisitions on validation failures, got %d", pool.acquires)
	}
}

func TestReadQuery_ZeroRowsHeaderOnly(t *testing.T) {
	t.Parallel()
	pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{
		columns: []string{"time", "region", "value"},
	}}}
	m := newTestInstance(t, tableConfig(), pool)

	text, err := m.ReadQuery(context.Background(), "SELECT * FROM sensors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "time,region,value" {
		t.Fatalf("expected exactly the header line, got %q", text)
	}
}

func TestReadQuery_NoTimestampPrefixInTableDialect(t *testing.T) {
	t.Parallel()
	// Table-dialect rows never get the tree dialect's timestamp prefix,
	// even when the first column happens to be named Time.
	pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{
		columns:    []string{"Time", "status"},
		timestamps: []string{"100"},
		rows:       [][]any{{"1"}},
	}}}
	m := newTestInstance(t, tableConfig(), pool)

	text, err := m.ReadQuery(context.Background(), "SELECT * FROM sensors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Time,status\n1" {
		t.Fatalf("unexpected output: %q", text)
	}
}

func TestListTables_SyntheticHeader(t *testing.T) {
	t.Parallel()
	session := &fakeSession{cursor: &fakeCursor{
		columns: []string{"TableName", "TTL(ms)"},
		rows:    [][]any{{"t1", "INF"}, {"t2", "INF"}},
	}}
	pool := &fakePool{session: session}
	m := newTestInstance(t, tableConfig(), pool)

	text, err := m.ListTables(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Tables_in_test\nt1\nt2" {
		t.Fatalf("unexpected output: %q", text)
	}
	if session.executed[0] != "SHOW TABLES" {
		t.Fatalf("expected SHOW TABLES to be executed, got %q", session.executed[0])
	}
}

func TestListTables_Empty(t *testing.T) {
	t.Parallel()
	pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{
		columns: []string{"TableName"},
	}}}
	m := newTestInstance(t, tableConfig(), pool)

	text, err := m.ListTables(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Tables_in_test" {
		t.Fatalf("expected only the synthetic header, got %q", text)
	}
}

func TestListTables_Sanitization(t *testing.T) {
	t.Parallel()
	config := tableConfig()
	config.Sanitization = []iotdbmcp.SanitizationRule{
		{Pattern: `^internal_`, Replacement: ""},
	}

	pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{
		columns: []string{"TableName"},
		rows:    [][]any{{"internal_t1"}, {"t2"}},
	}}}
	m := newTestInstance(t, config, pool)

	text, err := m.ListTables(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Tables_in_test\nt1\nt2" {
		t.Fatalf("expected sanitized table names, got %q", text)
	}
}

func TestListTables_Truncation(t *testing.T) {
	t.Parallel()
	config := tableConfig()
	config.Query.MaxResultLength = 20

	pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{
		columns: []string{"TableName"},
		rows:    [][]any{{"a_very_long_table_name_that_overflows"}},
	}}}
	m := newTestInstance(t, config, pool)

	text, err := m.ListTables(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "...[truncated]") {
		t.Fatalf("expected truncation marker, got %q", text)
	}
	if !strings.HasPrefix(text, "Tables_in_test\n") {
		t.Fatalf("expected truncated text to keep the header, got %q", text)
	}
}

func TestDescribeTable_ExactSQL(t *testing.T) {
	t.Parallel()
	session := &fakeSession{cursor: &fakeCursor{columns: []string{"ColumnName", "DataType"}}}
	pool := &fakePool{session: session}
	m := newTestInstance(t, tableConfig(), pool)

	if _, err := m.DescribeTable(context.Background(), "sensors"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(session.executed) != 1 || session.executed[0] != "DESC sensors" {
		t.Fatalf("expected exactly [DESC sensors], got %v", session.executed)
	}
}

func TestDescribeTable_NameNotEscaped(t *testing.T) {
	t.Parallel()
	// The table name is an opaque string — concatenated verbatim.
	session := &fakeSession{cursor: &fakeCursor{columns: []string{"ColumnName"}}}
	pool := &fakePool{session: session}
	m := newTestInstance(t, tableConfig(), pool)

	if _, err := m.DescribeTable(context.Background(), "a; drop table b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.executed[0] != "DESC a; drop table b" {
		t.Fatalf("expected verbatim concatenation, got %q", session.executed[0])
	}
}

func TestTableOperations_SessionClosedOnExecutionError(t *testing.T) {
	t.Parallel()
	// Execution errors must not leak sessions in the table dialect either.
	for _, op := range []string{"read_query", "list_tables", "describe_table"} {
		session := &fakeSession{execErr: errors.New("msg: 701: table does not exist")}
		pool := &fakePool{session: session}
		m := newTestInstance(t, tableConfig(), pool)

		var err error
		switch op {
		case "read_query":
			_, err = m.ReadQuery(context.Background(), "SELECT * FROM missing")
		case "list_tables":
			_, err = m.ListTables(context.Background())
		case "describe_table":
			_, err = m.DescribeTable(context.Background(), "missing")
		}
		if err == nil {
			t.Fatalf("%s: expected execution error to propagate", op)
		}
		if session.closeCount != 1 {
			t.Fatalf("%s: expected exactly 1 session close, got %d", op, session.closeCount)
		}
	}
}

func TestTableOperations_WrongDialect(t *testing.T) {
	t.Parallel()
	pool := &fakePool{}
	m := newTestInstance(t, treeConfig(), pool)

	if _, err := m.ReadQuery(context.Background(), "SELECT 1"); err == nil {
		t.Fatal("expected dialect error for read_query in tree dialect")
	}
	if _, err := m.ListTables(context.Background()); err == nil {
		t.Fatal("expected dialect error for list_tables in tree dialect")
	}
	if _, err := m.DescribeTable(context.Background(), "sensors"); err == nil {
		t.Fatal("expected dialect error for describe_table in tree dialect")
	}
	if pool.acquires != 0 {
		t.Fatalf("expected zero pool acquisitions, got %d", pool.acquires)
	}
}

func TestReadQuery_ResultTruncation(t *testing.T) {
	t.Parallel()
	config := tableConfig()
	config.Query.MaxResultLength = 16

	pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{
		columns: []string{"value"},
		rows:    [][]any{{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}},
	}}}
	m := newTestInstance(t, config, pool)

	text, err := m.ReadQuery(context.Background(), "SELECT * FROM sensors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "...[truncated]") {
		t.Fatalf("expected truncation marker, got %q", text)
	}
	if !strings.HasPrefix(text, "value\n") {
		t.Fatalf("expected truncated text to keep the header, got %q", text)
	}
}

func TestReadQuery_Sanitization(t *testing.T) {
	t.Parallel()
	config := tableConfig()
	config.Sanitization = []iotdbmcp.SanitizationRule{
		{Pattern: `(\+\d{2})\d+(\d{3})`, Replacement: "${1}xxx${2}"},
	}

	pool := &fakePool{session: &fakeSession{cursor: &fakeCursor{
		columns: []string{"owner", "phone"},
		rows:    [][]any{{"alice", "+62821233447"}},
	}}}
	m := newTestInstance(t, config, pool)

	text, err := m.ReadQuery(context.Background(), "SELECT * FROM contacts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "owner,phone\nalice,+62xxx447" {
		t.Fatalf("unexpected output: %q", text)
	}
}
