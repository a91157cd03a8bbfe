package client

import (
	"fmt"
	netURL "net/url"
	"strings"
)

func normaliseURL(url string, protocolScheme string) (string, error) {
	url = strings.TrimSpace(url)

	// First validate if the input URL has proper scheme format if it contains a colon
	if strings.Contains(url, ":") && !strings.Contains(url, "://") {
		if _, after, _ := strings.Cut(url, ":"); after == "" || !isPort(after) {
			return "", fmt.Errorf("invalid URL format: missing // after scheme")
		}
	}

	if protocolScheme != "" {
		url = strings.TrimPrefix(url, SchemeHTTP)
		url = strings.TrimPrefix(url, SchemeHTTPS)
		if !strings.Contains(protocolScheme, "://") {
			protocolScheme += "://"
		}
		if !strings.HasPrefix(url, protocolScheme) {
			url = protocolScheme + url
		}
	} else {
		if !strings.HasPrefix(url, SchemeHTTP) && !strings.HasPrefix(url, SchemeHTTPS) {
			url = SchemeHTTPS + url
		}
	}

	if _, err := netURL.Parse(url); err != nil {
		return "", err
	}

	return url, nil
}

// isPort reports whether s starts with a port number, as in "localhost:8080/cgi".
func isPort(s string) bool {
	port, _, _ := strings.Cut(s, "/")
	if port == "" {
		return false
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveURL resolves endpoint against base. An absolute endpoint is returned
// as-is after normalising. A relative endpoint is joined to base the way a
// browser resolves it against the page URL.
func ResolveURL(base string, endpoint string, protocolScheme string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if strings.HasPrefix(endpoint, SchemeHTTP) || strings.HasPrefix(endpoint, SchemeHTTPS) {
		return normaliseURL(endpoint, "")
	}
	if base == "" {
		return "", fmt.Errorf("relative endpoint %q needs a base URL", endpoint)
	}

	b, err := normaliseURL(base, protocolScheme)
	if err != nil {
		return "", fmt.Errorf("base url: %w", err)
	}
	bu, err := netURL.Parse(b)
	if err != nil {
		return "", fmt.Errorf("base url: %w", err)
	}
	ref, err := netURL.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("endpoint: %w", err)
	}
	return bu.ResolveReference(ref).String(), nil
}
