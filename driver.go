package iotdbmcp

import "context"

// SessionPool is the consumed surface of the underlying IoTDB client pool.
// Implementations must be safe for concurrent Acquire calls from multiple
// in-flight tool invocations. The production implementation lives in
// internal/iotdb; tests substitute in-memory fakes.
type SessionPool interface {
	// Acquire checks out a session, blocking or failing according to the
	// underlying pool's exhaustion policy.
	Acquire(ctx context.Context) (Session, error)

	// Close tears down the pool and its connections.
	Close()
}

// Session is a single checked-out connection. It is exclusive to the request
// that acquired it until closed; closing returns it to the pool.
type Session interface {
	ExecuteQuery(ctx context.Context, sql string) (Cursor, error)
	Close() error
}

// Cursor is a lazy, forward-only, single-pass view over a query result.
// Consuming it exhausts the session-side cursor; it is not restartable.
//
// When the result carries a leading time column, ColumnNames reports "Time"
// first, Fields returns the values of the remaining columns only, and
// Timestamp returns the driver's textual timestamp for the current row.
// Otherwise Fields covers every column and Timestamp returns "".
type Cursor interface {
	ColumnNames() []string
	Next() (bool, error)
	Fields() []any
	Timestamp() string
	Close() error
}
