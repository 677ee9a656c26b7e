package relay

import (
	"regexp"
	"strings"

	"anonrelay/tools/errs"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
	jsURIRe   = regexp.MustCompile(`(?i)javascript\s*:`)
	evtAttrRe = regexp.MustCompile(`(?i)\bon\w+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
)

// Validator performs shape, length and content-safety checks on inbound
// message content. The relay never inspects message semantics; encrypted
// payloads pass through as opaque strings.
type Validator struct {
	maxLength int
}

func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = 1000
	}
	return &Validator{maxLength: maxLength}
}

// Validate returns the sanitized content or a typed rejection. Content that
// sanitizes down to nothing is rejected distinctly from a length violation.
func (v *Validator) Validate(frame *InboundFrame) (string, error) {
	if frame.Content == "" {
		return "", errs.ErrInvalidMessage.WithDetail("empty content")
	}
	if len([]rune(frame.Content)) > v.maxLength {
		return "", errs.ErrInvalidMessage.WithDetail("content too long")
	}

	sanitized := v.sanitize(frame.Content)
	if sanitized == "" {
		return "", errs.ErrEmptyAfterSanitize
	}
	return sanitized, nil
}

func (v *Validator) sanitize(content string) string {
	s := scriptRe.ReplaceAllString(content, "")
	s = evtAttrRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	s = jsURIRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if r := []rune(s); len(r) > v.maxLength {
		s = string(r[:v.maxLength])
	}
	return s
}
