// Package sanitize applies regex-based masking to formatted result field
// values before they are returned to the agent.
package sanitize

import (
	"fmt"
	"regexp"
)

// Rule is the sanitizer's own rule type.
type Rule struct {
	Pattern     string
	Replacement string
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Sanitizer applies regex-based sanitization to result field values.
type Sanitizer struct {
	rules []compiledRule
}

// NewSanitizer creates a new Sanitizer. Returns an error on invalid regex patterns.
func NewSanitizer(rules []Rule) (*Sanitizer, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sanitize: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, replacement: r.Replacement}
	}
	return &Sanitizer{rules: compiled}, nil
}

// HasRules returns true if the sanitizer has any rules configured.
func (s *Sanitizer) HasRules() bool {
	return len(s.rules) > 0
}

// SanitizeFields applies every rule, in order, to each field value.
// Fields are already stringified; rules see exactly the text the agent
// would receive. The input slice is modified in place and returned.
func (s *Sanitizer) SanitizeFields(fields []string) []string {
	if len(s.rules) == 0 {
		return fields
	}
	for i, field := range fields {
		for _, rule := range s.rules {
			field = rule.pattern.ReplaceAllString(field, rule.replacement)
		}
		fields[i] = field
	}
	return fields
}
