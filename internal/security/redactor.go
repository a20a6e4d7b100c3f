// Package security keeps controller credentials out of log output and
// bounds the size of untrusted JSON payloads.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder replaces every redacted secret.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches map keys whose values are treated as secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(session|secret|token|password|cookie|credential)`)

// secretPattern redacts the value captured by its "secret" group and keeps
// the rest of the match.
type secretPattern struct {
	re *regexp.Regexp
}

func (p secretPattern) replace(s string) string {
	idx := p.re.SubexpIndex("secret")
	return p.re.ReplaceAllStringFunc(s, func(match string) string {
		sub := p.re.FindStringSubmatchIndex(match)
		if idx < 0 || sub[2*idx] < 0 {
			return RedactPlaceholder
		}
		return match[:sub[2*idx]] + RedactPlaceholder + match[sub[2*idx+1]:]
	})
}

// Redactor replaces controller credentials in strings and maps. It knows
// the cookie and JSON shapes a session id travels in, plus literal values
// registered at runtime. All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []secretPattern
	literals map[string]int
}

// NewRedactor returns a Redactor with DefaultPatterns loaded.
func NewRedactor() *Redactor {
	r := &Redactor{literals: make(map[string]int)}
	for _, re := range DefaultPatterns() {
		r.patterns = append(r.patterns, secretPattern{re: re})
	}
	return r
}

// AddPattern adds a pattern. If it has a named group "secret" only that group
// is replaced; otherwise the whole match is.
func (r *Redactor) AddPattern(re *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, secretPattern{re: re})
}

// AddLiteral registers a secret value. Registrations are counted, so a value
// added twice stays redacted until removed twice. Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals[secret]++
}

// RemoveLiteral drops one registration of secret.
func (r *Redactor) RemoveLiteral(secret string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.literals[secret]; n > 1 {
		r.literals[secret] = n - 1
	} else {
		delete(r.literals, secret)
	}
}

// Literals returns the number of distinct literal secrets registered.
func (r *Redactor) Literals() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.literals)
}

// Redact returns s with every known secret replaced by RedactPlaceholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patterns {
		s = p.replace(s)
	}
	for lit := range r.literals {
		s = strings.ReplaceAll(s, lit, RedactPlaceholder)
	}
	return s
}

// RedactMap redacts m in place: string values under secret-looking keys are
// replaced outright, other strings go through Redact, and nested maps and
// slices are walked.
func (r *Redactor) RedactMap(m map[string]any) {
	for k, v := range m {
		if s, ok := v.(string); ok {
			if s != "" && secretKeyPattern.MatchString(k) {
				m[k] = RedactPlaceholder
			} else {
				m[k] = r.Redact(s)
			}
			continue
		}
		r.redactValue(v)
	}
}

func (r *Redactor) redactValue(v any) {
	switch val := v.(type) {
	case map[string]any:
		r.RedactMap(val)
	case []any:
		for i, item := range val {
			if s, ok := item.(string); ok {
				val[i] = r.Redact(s)
				continue
			}
			r.redactValue(item)
		}
	}
}

// DefaultPatterns returns the patterns matching session ids in the forms
// they are exchanged with the controller.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Cookie header: sessionid=<value>
		regexp.MustCompile(`(?i)sessionid=(?P<secret>[^;\s"',]+)`),
		// Trigger request body: "session": "<value>"
		regexp.MustCompile(`"session"\s*:\s*"(?P<secret>[^"]*)"`),
	}
}
