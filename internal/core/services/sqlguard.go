package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/opscore-io/netquery/internal/core/domain"
)

// readOnlyPrefixes are the statement openers accepted by the guard. A
// WITH statement is only as safe as its final clause, so mutating
// keywords are rejected over the whole statement regardless of prefix.
var readOnlyPrefixes = []string{"select", "with"}

// mutatingKeywords rejected anywhere in the statement, matched as whole
// words. PRAGMA is included: some pragmas write.
var mutatingKeywords = []string{
	"update", "delete", "insert", "drop", "alter",
	"attach", "reindex", "vacuum", "create", "replace",
	"pragma", "trigger",
}

var mutatingPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(mutatingKeywords, "|") + `)\b`)

// SanitizeSQL validates that a caller-supplied statement is a single
// read-only query. It returns the trimmed statement ready for
// execution, or domain.ErrInvalidQuery describing the violation.
// Nothing is executed here.
func SanitizeSQL(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fmt.Errorf("%w: empty statement", domain.ErrInvalidQuery)
	}
	if strings.Contains(q, ";") {
		return "", fmt.Errorf("%w: multiple statements", domain.ErrInvalidQuery)
	}

	lower := strings.ToLower(q)
	ok := false
	for _, p := range readOnlyPrefixes {
		if strings.HasPrefix(lower, p) {
			ok = true
			break
		}
	}
	if !ok {
		return "", fmt.Errorf("%w: only SELECT statements are allowed", domain.ErrInvalidQuery)
	}

	if m := mutatingPattern.FindString(q); m != "" {
		return "", fmt.Errorf("%w: statement contains %q", domain.ErrInvalidQuery, strings.ToUpper(m))
	}
	return q, nil
}
