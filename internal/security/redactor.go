package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailValueRe  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	ssnValueRe    = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardValueRe   = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
	secretValueRe = regexp.MustCompile(`(?i)\b(password|passwd|secret|token|api[_-]?key|access[_-]?key|private[_-]?key)\b(\s*[:=]\s*)(\S+)`)
)

// Redactor masks sensitive values inside document text. Search snippets
// flow into the model conversation verbatim otherwise, so the agent path
// redacts them first.
type Redactor struct{}

func NewRedactor() *Redactor {
	return &Redactor{}
}

// Redact returns text with emails, SSNs, card numbers and secret
// assignments masked.
func (r *Redactor) Redact(text string) string {
	out := emailValueRe.ReplaceAllStringFunc(text, maskEmail)
	out = ssnValueRe.ReplaceAllString(out, "***-**-****")
	out = cardValueRe.ReplaceAllStringFunc(out, maskCardNumber)
	out = secretValueRe.ReplaceAllString(out, "${1}${2}***")
	return out
}

// maskEmail: "john.doe@example.com" → "jo***@***.com"
func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	domain := parts[1]

	visible := 2
	if len(local) < visible {
		visible = len(local)
	}
	maskedLocal := local[:visible] + "***"

	domainParts := strings.Split(domain, ".")
	ext := domainParts[len(domainParts)-1]
	return fmt.Sprintf("%s@***.%s", maskedLocal, ext)
}

// maskCardNumber: "4111 1111 1111 1111" → "****-****-****-1111"
func maskCardNumber(cc string) string {
	digits := ""
	for _, c := range cc {
		if c >= '0' && c <= '9' {
			digits += string(c)
		}
	}
	if len(digits) < 4 {
		return "****-****-****-****"
	}
	last4 := digits[len(digits)-4:]
	return fmt.Sprintf("****-****-****-%s", last4)
}
