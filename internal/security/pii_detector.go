package security

import (
	"strings"
)

// DefaultPIIKeywords are the terms screened out of agent prompts. A
// prompt asking for credentials or card numbers should never reach the
// model or the document store.
var DefaultPIIKeywords = []string{
	"password", "passwd",
	"credit card", "card number", "cvv",
	"social security", "ssn",
	"api key", "api_key", "secret key", "private key",
	"access token", "bearer token",
}

// PIIDetector checks prompts for sensitive PII keywords
type PIIDetector struct {
	keywords []string
}

func NewPIIDetector(keywords []string) *PIIDetector {
	lower := make([]string, len(keywords))
	for i, k := range keywords {
		lower[i] = strings.ToLower(k)
	}
	return &PIIDetector{keywords: lower}
}

// Detect returns true and the matched keyword if PII is found in text
func (d *PIIDetector) Detect(text string) (bool, string) {
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true, kw
		}
	}
	return false, ""
}
