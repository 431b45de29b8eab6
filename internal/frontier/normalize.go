// Package frontier provides URL normalization, hashing and the session-scoped
// dedup sets used by the crawl scheduler. URLs are normalized before any set
// membership check so that the same URL expressed differently dedups to one
// entry.
package frontier

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// trackingParams lists query parameters stripped during normalization.
// Advertising and analytics trackers that do not affect page content.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"gclsrc":       {},
	"dclid":        {},
	"msclkid":      {},
}

var errBadURL = errors.New("url missing scheme or host")

// articleIDLength is the hex-digest prefix length used for article ids.
const articleIDLength = 16

// Normalize applies deterministic transformations so equivalent URLs produce
// identical strings: scheme and host lowercased, http upgraded to https,
// default ports dropped, dot-segments resolved, trailing slash trimmed,
// fragment removed, tracking parameters stripped and the remaining query
// sorted by key.
func Normalize(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("normalize: %w", errBadURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("normalize %q: %w", rawURL, errBadURL)
	}

	origScheme := strings.ToLower(u.Scheme)
	u.Scheme = "https"
	u.Host = stripDefaultPort(strings.ToLower(u.Hostname()), u.Port(), origScheme)
	u.Fragment = ""
	u.RawQuery = cleanQuery(u.Query())
	u.Path = cleanPath(u.Path)

	return u.String(), nil
}

// Hash returns the SHA-256 hex digest of the normalized URL.
func Hash(rawURL string) (string, error) {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), nil
}

// ArticleID derives the storage id for an accepted URL: the leading 16 hex
// characters of its normalized-URL hash.
func ArticleID(rawURL string) (string, error) {
	h, err := Hash(rawURL)
	if err != nil {
		return "", err
	}
	return h[:articleIDLength], nil
}

// Host returns the lowercased host of a URL with any default port stripped.
// Non-default ports stay, so distinct origins on one hostname stay distinct.
func Host(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("host %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("host %q: %w", rawURL, errBadURL)
	}
	return stripDefaultPort(strings.ToLower(u.Hostname()), u.Port(), strings.ToLower(u.Scheme)), nil
}

// stripDefaultPort drops the port when it is the default for the original or
// upgraded scheme.
func stripDefaultPort(hostname, port, origScheme string) string {
	if port == "" {
		return hostname
	}
	if (origScheme == "http" && port == "80") || port == "443" {
		return hostname
	}
	return hostname + ":" + port
}

// cleanQuery strips tracking parameters and re-encodes the rest sorted by key.
func cleanQuery(values url.Values) string {
	for key := range values {
		if _, tracking := trackingParams[key]; tracking {
			delete(values, key)
		}
	}
	return values.Encode()
}

// cleanPath resolves dot-segments and trims the trailing slash, preserving
// the root path.
func cleanPath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return strings.TrimRight(path.Clean(p), "/")
}
