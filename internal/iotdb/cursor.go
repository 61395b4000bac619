package iotdb

import (
	"github.com/apache/iotdb-client-go/v2/client"

	iotdbmcp "github.com/rickchristie/iotdb-mcp"
)

// cursor adapts the client's SessionDataSet to the engine's Cursor. The
// client reports "Time" as the first column name for timestamped
// (tree-dialect, align-by-time) results; its cell accessors are 1-based and
// fallible, so Next materializes the current row and Fields/Timestamp return
// the cached values.
type cursor struct {
	dataSet *client.SessionDataSet
	columns []string
	hasTime bool

	fields    []any
	timestamp string
}

func newCursor(dataSet *client.SessionDataSet) *cursor {
	columns := dataSet.GetColumnNames()
	hasTime := len(columns) > 0 && columns[0] == client.TimestampColumnName
	return &cursor{dataSet: dataSet, columns: columns, hasTime: hasTime}
}

func (c *cursor) ColumnNames() []string {
	return c.columns
}

func (c *cursor) Next() (bool, error) {
	hasNext, err := c.dataSet.Next()
	if err != nil || !hasNext {
		return false, err
	}

	start := 1
	if c.hasTime {
		ts, err := c.dataSet.GetStringByIndex(1)
		if err != nil {
			return false, err
		}
		c.timestamp = ts
		start = 2
	}

	fields := make([]any, 0, len(c.columns)-start+1)
	for i := start; i <= len(c.columns); i++ {
		v, err := c.dataSet.GetObjectByIndex(int32(i))
		if err != nil {
			return false, err
		}
		fields = append(fields, v)
	}
	c.fields = fields
	return true, nil
}

func (c *cursor) Fields() []any {
	return c.fields
}

// Timestamp returns the client's textual timestamp for the current row,
// passed through verbatim.
func (c *cursor) Timestamp() string {
	if !c.hasTime {
		return ""
	}
	return c.timestamp
}

func (c *cursor) Close() error {
	return c.dataSet.Close()
}

var _ iotdbmcp.Cursor = (*cursor)(nil)
