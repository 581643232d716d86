package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a custom redaction pattern applied to string log values.
type Pattern struct {
	// Name identifies the pattern.
	Name string

	// Pattern is the regular expression matched against values.
	Pattern string

	// Replacement is substituted for each match.
	Replacement string
}

// Redactor redacts sensitive data from log fields. Decision trees in
// this system are routinely evaluated against patient answers, so
// personal identifiers have to stay out of log output.
type Redactor struct {
	patterns map[string]*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in redaction pattern names.
const (
	PatternEmail = "email"
	PatternSSN   = "ssn"
	PatternPhone = "phone"
	PatternDOB   = "date_of_birth"
	PatternNHS   = "nhs_number"
	PatternIPv4  = "ipv4"
	PatternToken = "bearer_token"
)

// NewRedactor creates a Redactor with the built-in patterns plus any
// custom patterns. Custom patterns that fail to compile are skipped.
func NewRedactor(customPatterns []Pattern) *Redactor {
	r := &Redactor{patterns: make(map[string]*redactPattern)}
	r.addDefaultPatterns()

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns[p.Name] = &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		}
	}

	return r
}

func (r *Redactor) addDefaultPatterns() {
	patterns := map[string]struct {
		regex       string
		replacement string
	}{
		PatternEmail: {
			regex:       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
			replacement: "***@***",
		},
		PatternSSN: {
			regex:       `\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`,
			replacement: "***-**-****",
		},
		PatternPhone: {
			regex:       `\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`,
			replacement: "***-***-****",
		},
		// ISO dates in answer values are almost always birth dates
		PatternDOB: {
			regex:       `\b(19|20)\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])\b`,
			replacement: "****-**-**",
		},
		PatternNHS: {
			regex:       `\b\d{3}[-\s]\d{3}[-\s]\d{4}\b`,
			replacement: "***-***-****",
		},
		PatternIPv4: {
			regex:       `\b(?:\d{1,3}\.){3}\d{1,3}\b`,
			replacement: "*.*.*.*",
		},
		PatternToken: {
			regex:       `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
			replacement: "Bearer ***",
		},
	}

	for name, p := range patterns {
		r.patterns[name] = &redactPattern{
			name:        name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		}
	}
}

// RedactString redacts sensitive data from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// RedactArgs redacts sensitive data from variadic log arguments in
// key1, value1, key2, value2 form.
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && r.isSensitiveKey(key) {
			redacted[i] = r.redactValue(redacted[i])
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

// isSensitiveKey checks if a key name indicates sensitive data.
func (r *Redactor) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "secret", "token", "api_key", "apikey",
		"auth", "authorization",
		"patient", "dob", "date_of_birth", "birth",
		"ssn", "nhs", "mrn", "medical_record",
		"address", "postcode", "phone", "email",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue redacts a sensitive value completely.
func (r *Redactor) redactValue(value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return ""
		}
		return "***"
	case fmt.Stringer:
		return "***"
	default:
		return "***"
	}
}
