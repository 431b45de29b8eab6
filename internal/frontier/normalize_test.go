package frontier_test

import (
	"strings"
	"testing"

	"github.com/CyborPunk-2077/article-scraper/internal/frontier"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		// Scheme and host normalization
		{"lowercase scheme", "HTTP://Example.com/Path", "https://example.com/Path", false},
		{"lowercase host", "https://EXAMPLE.COM/path", "https://example.com/path", false},
		{"upgrade http to https", "http://example.com/path", "https://example.com/path", false},

		// Port handling
		{"remove default https port", "https://example.com:443/path", "https://example.com/path", false},
		{"remove default http port", "http://example.com:80/path", "https://example.com/path", false},
		{"keep non-default port", "https://example.com:8080/path", "https://example.com:8080/path", false},

		// Path normalization
		{"remove trailing slash", "https://example.com/path/", "https://example.com/path", false},
		{"keep root slash", "https://example.com/", "https://example.com/", false},
		{"resolve dot segments", "https://example.com/a/b/../c", "https://example.com/a/c", false},
		{"resolve current dir segments", "https://example.com/a/./b", "https://example.com/a/b", false},

		// Fragment removal
		{"remove fragment", "https://example.com/path#section", "https://example.com/path", false},

		// Query parameter handling
		{"sort query params", "https://example.com/path?z=1&a=2", "https://example.com/path?a=2&z=1", false},
		{"strip utm params", "https://example.com/path?utm_source=twitter&id=1", "https://example.com/path?id=1", false},
		{"strip fbclid", "https://example.com/path?fbclid=abc123&id=1", "https://example.com/path?id=1", false},
		{"strip gclid", "https://example.com/path?gclid=xyz&page=2", "https://example.com/path?page=2", false},
		{"empty query after stripping", "https://example.com/path?utm_source=x", "https://example.com/path", false},

		// Error cases
		{"empty string", "", "", true},
		{"invalid url", "://not-a-url", "", true},
		{"missing scheme", "example.com/path", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := frontier.Normalize(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Normalize(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("Normalize(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHash_EquivalentURLs(t *testing.T) {
	hash1, err := frontier.Hash("HTTP://Example.com/path?b=2&a=1")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	hash2, err := frontier.Hash("https://example.com/path?a=1&b=2")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	if hash1 != hash2 {
		t.Errorf("equivalent URLs produced different hashes: %q vs %q", hash1, hash2)
	}

	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash1))
	}
}

func TestHash_DistinctURLs(t *testing.T) {
	hash1, _ := frontier.Hash("https://example.com/one")
	hash2, _ := frontier.Hash("https://example.com/two")

	if hash1 == hash2 {
		t.Error("distinct URLs produced the same hash")
	}
}

func TestArticleID(t *testing.T) {
	id, err := frontier.ArticleID("https://example.com/2024/01/15/some-story")
	if err != nil {
		t.Fatalf("ArticleID() unexpected error: %v", err)
	}

	if len(id) != 16 {
		t.Errorf("id length = %d, want 16", len(id))
	}

	if strings.ToLower(id) != id {
		t.Errorf("id %q contains uppercase characters", id)
	}

	// Same article reached through a tracking link maps to the same id.
	id2, err := frontier.ArticleID("http://EXAMPLE.com/2024/01/15/some-story?utm_source=feed")
	if err != nil {
		t.Fatalf("ArticleID() unexpected error: %v", err)
	}
	if id != id2 {
		t.Errorf("equivalent URLs produced different ids: %q vs %q", id, id2)
	}
}

func TestHost(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain host", "https://example.com/path", "example.com", false},
		{"host with port", "https://Example.com:8080/path", "example.com:8080", false},
		{"default port stripped", "http://example.com:80/path", "example.com", false},
		{"empty", "", "", true},
		{"no scheme", "example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := frontier.Host(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Host(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("Host(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("Host(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
