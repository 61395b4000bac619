package iotdbmcp_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	iotdbmcp "github.com/rickchristie/iotdb-mcp"
)

// testLogger returns a disabled zerolog logger for tests.
func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

// fakeCursor is an in-memory Cursor. Rows carry pre-split values: when the
// column list starts with "Time", timestamps holds the per-row time text and
// rows the remaining fields, matching the driver contract.
type fakeCursor struct {
	columns    []string
	timestamps []string
	rows       [][]any
	nextErr    error

	pos    int
	closed bool
}

func (c *fakeCursor) ColumnNames() []string { return c.columns }

func (c *fakeCursor) Next() (bool, error) {
	if c.nextErr != nil {
		return false, c.nextErr
	}
	if c.pos >= len(c.rows) {
		return false, nil
	}
	c.pos++
	return true, nil
}

func (c *fakeCursor) Fields() []any { return c.rows[c.pos-1] }

func (c *fakeCursor) Timestamp() string {
	if len(c.timestamps) == 0 {
		return ""
	}
	return c.timestamps[c.pos-1]
}

func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}

// fakeSession records executed statements and close calls.
type fakeSession struct {
	cursor  *fakeCursor
	execErr error

	executed   []string
	closeCount int
}

func (s *fakeSession) ExecuteQuery(ctx context.Context, sql string) (iotdbmcp.Cursor, error) {
	s.executed = append(s.executed, sql)
	if s.execErr != nil {
		return nil, s.execErr
	}
	if s.cursor == nil {
		s.cursor = &fakeCursor{columns: []string{}}
	}
	return s.cursor, nil
}

func (s *fakeSession) Close() error {
	s.closeCount++
	return nil
}

// fakePool hands out a single fakeSession and counts acquisitions.
type fakePool struct {
	session    *fakeSession
	acquireErr error

	acquires int
	closed   bool
}

func (p *fakePool) Acquire(ctx context.Context) (iotdbmcp.Session, error) {
	p.acquires++
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	if p.session == nil {
		p.session = &fakeSession{}
	}
	return p.session, nil
}

func (p *fakePool) Close() { p.closed = true }

// treeConfig returns a valid tree-dialect Config.
func treeConfig() iotdbmcp.Config {
	return iotdbmcp.Config{
		Connection: iotdbmcp.ConnectionConfig{
			Host:       "127.0.0.1",
			Port:       6667,
			User:       "root",
			Password:   "root",
			Database:   "test",
			SQLDialect: iotdbmcp.DialectTree,
		},
	}
}

// tableConfig returns a valid table-dialect Config.
func tableConfig() iotdbmcp.Config {
	config := treeConfig()
	config.Connection.SQLDialect = iotdbmcp.DialectTable
	return config
}

// newTestInstance creates an engine over the given pool.
func newTestInstance(t *testing.T, config iotdbmcp.Config, pool *fakePool) *iotdbmcp.IoTDBMcp {
	t.Helper()
	m, err := iotdbmcp.New(config, pool, testLogger())
	if err != nil {
		t.Fatalf("unexpected error creating instance: %v", err)
	}
	return m
}

// expectPanic calls f and asserts that it panics with a message containing substr.
func expectPanic(t *testing.T, substr string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, but no panic occurred", substr)
		}
		msg := ""
		switch v := r.(type) {
		case string:
			msg = v
		case error:
			msg = v.Error()
		default:
			t.Fatalf("expected panic string/error containing %q, got %T: %v", substr, r, r)
		}
		if !strings.Contains(msg, substr) {
			t.Fatalf("expected panic containing %q, got %q", substr, msg)
		}
	}()
	f()
}

// expectNoPanic calls f and asserts that it does NOT panic.
func expectNoPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	f()
}
