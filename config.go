package iotdbmcp

// Dialect selects which IoTDB SQL dialect (and client pool type) is active.
// Exactly one dialect is active per process.
type Dialect string

const (
	// DialectTree is the hierarchical, path-based time-series model
	// (root.ln.wf01.wt01 style paths).
	DialectTree Dialect = "tree"

	// DialectTable is the relational table model introduced in IoTDB 2.0.
	DialectTable Dialect = "table"
)

// Config is the engine configuration passed to New().
type Config struct {
	Connection   ConnectionConfig   `json:"connection"`
	Pool         PoolConfig         `json:"pool"`
	Query        QueryConfig        `json:"query"`
	ErrorPrompts []ErrorPromptRule  `json:"error_prompts"`
	Sanitization []SanitizationRule `json:"sanitization"`
}

// ConnectionConfig holds IoTDB connection parameters. Built once at process
// start and never mutated; it is the source of truth for pool construction.
type ConnectionConfig struct {
	Host       string  `json:"host"`
	Port       int     `json:"port"`
	User       string  `json:"user"`
	Password   string  `json:"-"`
	Database   string  `json:"database"`
	SQLDialect Dialect `json:"sql_dialect"`
}

// PoolConfig holds session pool settings. Zero values take the defaults the
// server has always used: pool size 5, wait timeout 3000ms, max 3 connection
// retries, fetch size 1024, time zone UTC+8.
type PoolConfig struct {
	MaxSize         int    `json:"max_size"`
	WaitTimeoutMs   int    `json:"wait_timeout_ms"`
	ConnectRetryMax int    `json:"connect_retry_max"`
	FetchSize       int32  `json:"fetch_size"`
	TimeZone        string `json:"time_zone"`
}

// QueryConfig holds query execution settings.
type QueryConfig struct {
	TimeoutSeconds  int `json:"timeout_seconds"`
	MaxResultLength int `json:"max_result_length"`
}

// ErrorPromptRule maps an error message pattern to a guidance message
// appended to failed tool results.
type ErrorPromptRule struct {
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// SanitizationRule defines a regex-based field sanitization rule applied to
// formatted result values.
type SanitizationRule struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Description string `json:"description"`
}

// WithDefaults returns a copy of c with zero-valued pool and query settings
// replaced by the built-in defaults. New applies it automatically; the pool
// constructors in internal/iotdb apply it as well, so a Config can be handed
// to either with only the connection record filled in.
func (c Config) WithDefaults() Config {
	if c.Pool.MaxSize == 0 {
		c.Pool.MaxSize = defaultPoolMaxSize
	}
	if c.Pool.WaitTimeoutMs == 0 {
		c.Pool.WaitTimeoutMs = defaultWaitTimeoutMs
	}
	if c.Pool.ConnectRetryMax == 0 {
		c.Pool.ConnectRetryMax = defaultConnectRetryMax
	}
	if c.Pool.FetchSize == 0 {
		c.Pool.FetchSize = defaultFetchSize
	}
	if c.Pool.TimeZone == "" {
		c.Pool.TimeZone = defaultTimeZone
	}
	if c.Query.TimeoutSeconds == 0 {
		c.Query.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Query.MaxResultLength == 0 {
		c.Query.MaxResultLength = defaultMaxResultLength
	}
	return c
}

// Defaults applied by WithDefaults for zero-valued fields.
const (
	defaultPoolMaxSize     = 5
	defaultWaitTimeoutMs   = 3000
	defaultConnectRetryMax = 3
	defaultFetchSize       = 1024
	defaultTimeZone        = "UTC+8"
	defaultTimeoutSeconds  = 30
	defaultMaxResultLength = 100000
)
