// Package validate checks query text against the statement categories each
// operation accepts. The check is a prefix match on the trimmed, uppercased
// query — categories are advertised to the agent through tool descriptions,
// not enforced beyond this.
package validate

import (
	"fmt"
	"strings"
)

// Rule lists the statement prefixes one operation accepts.
type Rule struct {
	Operation string
	Prefixes  []string
}

// Checker validates query text per operation.
type Checker struct {
	prefixes map[string][]string
}

// NewChecker creates a Checker from the given rules.
func NewChecker(rules []Rule) *Checker {
	prefixes := make(map[string][]string, len(rules))
	for _, r := range rules {
		prefixes[r.Operation] = r.Prefixes
	}
	return &Checker{prefixes: prefixes}
}

// Check verifies that sql starts with one of the prefixes allowed for
// operation. Returns *Error on rejection; a rejected query must not reach
// the database. Operations without a rule accept anything.
func (c *Checker) Check(operation, sql string) error {
	allowed, ok := c.prefixes[operation]
	if !ok {
		return nil
	}

	stmt := strings.ToUpper(strings.TrimSpace(sql))
	for _, prefix := range allowed {
		if strings.HasPrefix(stmt, prefix) {
			return nil
		}
	}
	return &Error{Operation: operation, Allowed: allowed}
}

// Error reports a query that failed its operation's category check.
type Error struct {
	Operation string
	Allowed   []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("unsupported query for %s: statement must start with one of: %s",
		e.Operation, strings.Join(e.Allowed, ", "))
}
