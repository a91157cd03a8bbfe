package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policy selects how response markup is cleaned before it reaches a page.
type Policy string

const (
	// PolicyNone passes the markup through untouched. Only for a trusted endpoint.
	PolicyNone Policy = "none"
	// PolicyUGC keeps formatting and tables but drops scripts, handlers and styles.
	PolicyUGC Policy = "ugc"
	// PolicyStrict strips every tag and keeps the text.
	PolicyStrict Policy = "strict"
)

// ParsePolicy maps a configuration string onto a Policy. Empty means PolicyNone.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyNone:
		return PolicyNone, nil
	case PolicyUGC, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown sanitize policy %q", s)
	}
}

// Sanitize wraps next so that the response text is cleaned with the given
// policy first. PolicyNone returns next unchanged.
func Sanitize(next Renderer, policy Policy) Renderer {
	var p *bluemonday.Policy
	switch policy {
	case PolicyUGC:
		p = bluemonday.UGCPolicy()
		// The result table uses inline styles on its sub elements.
		p.AllowAttrs("style").OnElements("p", "sub")
	case PolicyStrict:
		p = bluemonday.StrictPolicy()
	default:
		return next
	}
	return &sanitizer{next: next, policy: p}
}

type sanitizer struct {
	next   Renderer
	policy *bluemonday.Policy
}

func (s *sanitizer) Render(ctx context.Context, text string) error {
	return s.next.Render(ctx, s.policy.Sanitize(text))
}
