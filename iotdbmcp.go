package iotdbmcp

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/rickchristie/iotdb-mcp/internal/errprompt"
	"github.com/rickchristie/iotdb-mcp/internal/sanitize"
	"github.com/rickchristie/iotdb-mcp/internal/validate"
)

// IoTDBMcp is the core engine behind the MCP tools. It owns the session pool
// handle for the lifetime of the process and exposes exactly the operation
// set of the configured dialect. All exported methods are safe for concurrent
// use from multiple goroutines.
type IoTDBMcp struct {
	config     Config
	pool       SessionPool
	semaphore  chan struct{}
	validator  *validate.Checker
	sanitizer  *sanitize.Sanitizer
	errPrompts *errprompt.Matcher
	logger     zerolog.Logger
}

// New creates a new IoTDBMcp instance wrapping an already-constructed session
// pool. The pool must match config.Connection.SQLDialect — the caller (CLI or
// embedding program) constructs one pool for the active dialect and never the
// other. Panics on invalid config. The engine takes ownership of the pool;
// Close tears it down.
func New(config Config, pool SessionPool, logger zerolog.Logger) (*IoTDBMcp, error) {
	if pool == nil {
		panic("iotdbmcp: pool must be non-nil")
	}

	switch config.Connection.SQLDialect {
	case DialectTree, DialectTable:
	default:
		panic(fmt.Sprintf("iotdbmcp: connection.sql_dialect must be %q or %q, got %q",
			DialectTree, DialectTable, config.Connection.SQLDialect))
	}

	// Apply defaults for zero values, reject negatives.
	config = config.WithDefaults()
	if config.Pool.MaxSize < 0 {
		panic("iotdbmcp: pool.max_size must not be negative")
	}
	if config.Pool.WaitTimeoutMs < 0 {
		panic("iotdbmcp: pool.wait_timeout_ms must not be negative")
	}
	if config.Pool.ConnectRetryMax < 0 {
		panic("iotdbmcp: pool.connect_retry_max must not be negative")
	}
	if config.Query.TimeoutSeconds < 0 {
		panic("iotdbmcp: query.timeout_seconds must not be negative")
	}
	if config.Query.MaxResultLength < 0 {
		panic("iotdbmcp: query.max_result_length must not be negative")
	}

	san, err := sanitize.NewSanitizer(mapSanitizationRules(config.Sanitization))
	if err != nil {
		panic(fmt.Sprintf("iotdbmcp: %v", err))
	}
	matcher, err := errprompt.NewMatcher(mapErrorPromptRules(config.ErrorPrompts))
	if err != nil {
		panic(fmt.Sprintf("iotdbmcp: %v", err))
	}

	var rules []validate.Rule
	switch config.Connection.SQLDialect {
	case DialectTree:
		rules = treeValidationRules
	case DialectTable:
		rules = tableValidationRules
	}

	return &IoTDBMcp{
		config:     config,
		pool:       pool,
		semaphore:  make(chan struct{}, config.Pool.MaxSize),
		validator:  validate.NewChecker(rules),
		sanitizer:  san,
		errPrompts: matcher,
		logger:     logger,
	}, nil
}

// Dialect returns the active SQL dialect.
func (m *IoTDBMcp) Dialect() Dialect {
	return m.config.Connection.SQLDialect
}

// Close tears down the session pool. Call once at process shutdown.
func (m *IoTDBMcp) Close() {
	m.pool.Close()
}

// Ping verifies that a session can be acquired and released.
func (m *IoTDBMcp) Ping(ctx context.Context) error {
	_, err := m.withSession(ctx, func(Session) (string, error) {
		return "", nil
	})
	return err
}

// withSession acquires a session and runs fn with it. The session is closed
// on every exit path, success or failure, so an execution error can never
// leak a checked-out connection in either dialect.
func (m *IoTDBMcp) withSession(ctx context.Context, fn func(Session) (string, error)) (string, error) {
	select {
	case m.semaphore <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("failed to acquire query slot: all %d session slots are in use, context cancelled while waiting: %w", cap(m.semaphore), ctx.Err())
	}
	defer func() { <-m.semaphore }()

	session, err := m.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			m.logger.Warn().Err(cerr).Msg("session close failed")
		}
	}()

	return fn(session)
}

// execute runs sql under a scoped session with the configured per-query
// timeout and formats the full result into one text block.
func (m *IoTDBMcp) execute(ctx context.Context, sql string) (string, error) {
	return m.withSession(ctx, func(session Session) (string, error) {
		queryCtx, cancel := context.WithTimeout(ctx, time.Duration(m.config.Query.TimeoutSeconds)*time.Second)
		defer cancel()

		cursor, err := session.ExecuteQuery(queryCtx, sql)
		if err != nil {
			return "", err
		}
		defer cursor.Close()

		text, err := m.formatCursor(cursor)
		if err != nil {
			return "", err
		}
		return m.truncateIfNeeded(text), nil
	})
}

// errorMessage logs err and returns the message surfaced to the calling
// agent, with any matching error prompt guidance appended.
func (m *IoTDBMcp) errorMessage(tool string, err error) string {
	errMsg := err.Error()
	prompt, patterns := m.errPrompts.Match(errMsg)

	logEvent := m.logger.Error().Str("tool", tool).Err(err)
	if len(patterns) > 0 {
		logEvent = logEvent.Strs("error_prompts", patterns)
	}
	logEvent.Msg("tool error")

	if prompt != "" {
		errMsg = errMsg + "\n\n" + prompt
	}
	return errMsg
}

// truncateIfNeeded bounds the result text at MaxResultLength characters.
func (m *IoTDBMcp) truncateIfNeeded(text string) string {
	if utf8.RuneCountInString(text) <= m.config.Query.MaxResultLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:m.config.Query.MaxResultLength]) + "...[truncated] Result is too long! Add limits in your query!"
}

// truncateForLog truncates a string for log output to avoid oversized log entries.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncateAt := maxLen
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	return s[:truncateAt] + "...[truncated]"
}

// mapSanitizationRules converts iotdbmcp SanitizationRules to internal sanitize.Rules.
func mapSanitizationRules(rules []SanitizationRule) []sanitize.Rule {
	result := make([]sanitize.Rule, len(rules))
	for i, r := range rules {
		result[i] = sanitize.Rule{
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		}
	}
	return result
}

// mapErrorPromptRules converts iotdbmcp ErrorPromptRules to internal errprompt.Rules.
func mapErrorPromptRules(rules []ErrorPromptRule) []errprompt.Rule {
	result := make([]errprompt.Rule, len(rules))
	for i, r := range rules {
		result[i] = errprompt.Rule{
			Pattern: r.Pattern,
			Message: r.Message,
		}
	}
	return result
}
