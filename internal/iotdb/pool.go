// Package iotdb binds the official Apache IoTDB Go client to the driver
// interfaces consumed by the engine. Exactly one pool type is constructed
// per process, matching the active SQL dialect; the client's wire protocol,
// retry, and connection-health logic are opaque here.
package iotdb

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/iotdb-client-go/v2/client"

	iotdbmcp "github.com/rickchristie/iotdb-mcp"
)

// connectionTimeoutMs is the dial timeout handed to the client pools.
const connectionTimeoutMs = 3000

// defaultQueryTimeoutMs applies when the caller's context carries no deadline.
const defaultQueryTimeoutMs int64 = 60000

// NewTreePool constructs the tree-dialect session pool: single node URL,
// credentials, and the configured fetch size, time zone, retry count, pool
// size, and pool-exhaustion wait timeout.
func NewTreePool(config iotdbmcp.Config) iotdbmcp.SessionPool {
	config = config.WithDefaults()
	conn := config.Connection
	poolConfig := &client.PoolConfig{
		NodeUrls:        []string{fmt.Sprintf("%s:%d", conn.Host, conn.Port)},
		UserName:        conn.User,
		Password:        conn.Password,
		FetchSize:       config.Pool.FetchSize,
		TimeZone:        config.Pool.TimeZone,
		ConnectRetryMax: config.Pool.ConnectRetryMax,
	}
	pool := client.NewSessionPool(poolConfig, config.Pool.MaxSize, connectionTimeoutMs, config.Pool.WaitTimeoutMs, false)
	return &treePool{pool: pool}
}

type treePool struct {
	pool client.SessionPool
}

func (p *treePool) Acquire(ctx context.Context) (iotdbmcp.Session, error) {
	session, err := p.pool.GetSession()
	if err != nil {
		return nil, fmt.Errorf("iotdb: failed to get session from pool: %w", err)
	}
	return &treeSession{pool: &p.pool, session: session}, nil
}

func (p *treePool) Close() {
	p.pool.Close()
}

// treeSession is one checked-out tree-dialect session. Close returns it to
// the pool rather than tearing down the connection.
type treeSession struct {
	pool    *client.SessionPool
	session client.Session
}

func (s *treeSession) ExecuteQuery(ctx context.Context, sql string) (iotdbmcp.Cursor, error) {
	timeoutMs := queryTimeoutMs(ctx)
	dataSet, err := s.session.ExecuteQueryStatement(sql, &timeoutMs)
	if err != nil {
		return nil, err
	}
	return newCursor(dataSet), nil
}

func (s *treeSession) Close() error {
	s.pool.PutBack(s.session)
	return nil
}

// NewTablePool constructs the table-dialect session pool: node URL,
// credentials, and an optional default database (empty string means no
// default database). Exhaustion policy beyond the wait timeout is whatever
// the client defines.
func NewTablePool(config iotdbmcp.Config) iotdbmcp.SessionPool {
	config = config.WithDefaults()
	conn := config.Connection
	poolConfig := &client.PoolConfig{
		NodeUrls:        []string{fmt.Sprintf("%s:%d", conn.Host, conn.Port)},
		UserName:        conn.User,
		Password:        conn.Password,
		FetchSize:       config.Pool.FetchSize,
		TimeZone:        config.Pool.TimeZone,
		ConnectRetryMax: config.Pool.ConnectRetryMax,
		Database:        conn.Database,
	}
	pool := client.NewTableSessionPool(poolConfig, config.Pool.MaxSize, connectionTimeoutMs, config.Pool.WaitTimeoutMs, false)
	return &tablePool{pool: pool}
}

type tablePool struct {
	pool client.TableSessionPool
}

func (p *tablePool) Acquire(ctx context.Context) (iotdbmcp.Session, error) {
	session, err := p.pool.GetSession()
	if err != nil {
		return nil, fmt.Errorf("iotdb: failed to get table session from pool: %w", err)
	}
	return &tableSession{session: session}, nil
}

func (p *tablePool) Close() {
	p.pool.Close()
}

// tableSession is one checked-out table-dialect session. The client's
// ITableSession.Close returns pooled sessions to the pool.
type tableSession struct {
	session client.ITableSession
}

func (s *tableSession) ExecuteQuery(ctx context.Context, sql string) (iotdbmcp.Cursor, error) {
	timeoutMs := queryTimeoutMs(ctx)
	dataSet, err := s.session.ExecuteQueryStatement(sql, &timeoutMs)
	if err != nil {
		return nil, err
	}
	return newCursor(dataSet), nil
}

func (s *tableSession) Close() error {
	return s.session.Close()
}

var (
	_ iotdbmcp.SessionPool = (*treePool)(nil)
	_ iotdbmcp.SessionPool = (*tablePool)(nil)
)

// queryTimeoutMs converts the context deadline into the per-statement
// timeout the client expects.
func queryTimeoutMs(ctx context.Context) int64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultQueryTimeoutMs
	}
	ms := time.Until(deadline).Milliseconds()
	if ms <= 0 {
		return 1
	}
	return ms
}
