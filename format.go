package iotdbmcp

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCursor drains cursor into a flat text block: a header line of
// comma-joined column names, then one line per row of comma-joined field
// values. Zero rows yield exactly the header, with no trailing newline.
//
// For tree-dialect results whose first column is "Time", each row is emitted
// as "<raw timestamp>,<joined remaining fields>" — the timestamp is the
// driver's own text, passed through verbatim.
func (m *IoTDBMcp) formatCursor(cursor Cursor) (string, error) {
	columns := cursor.ColumnNames()

	var sb strings.Builder
	sb.WriteString(strings.Join(columns, ","))

	prefixTimestamp := m.config.Connection.SQLDialect == DialectTree &&
		len(columns) > 0 && columns[0] == "Time"
	sanitize := m.sanitizer.HasRules()

	for {
		hasNext, err := cursor.Next()
		if err != nil {
			return "", err
		}
		if !hasNext {
			break
		}

		fields := cursor.Fields()
		values := make([]string, len(fields))
		for i, f := range fields {
			values[i] = formatValue(f)
		}
		if sanitize {
			values = m.sanitizer.SanitizeFields(values)
		}

		sb.WriteByte('\n')
		if prefixTimestamp {
			sb.WriteString(cursor.Timestamp())
			sb.WriteByte(',')
		}
		sb.WriteString(strings.Join(values, ","))
	}

	return sb.String(), nil
}

// formatValue is the canonical stringification for column values, used by
// every operation. The client hands back Go scalars for IoTDB's data types
// (BOOLEAN, INT32, INT64, FLOAT, DOUBLE, TEXT); anything else falls through
// to fmt.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
