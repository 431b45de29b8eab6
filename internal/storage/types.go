// Package storage persists pipeline artifacts in S3-compatible object
// storage. Artifacts live in three role buckets (raw, text, summary) under
// keys of the form {sessionID}/{articleID}/{artifact}.
package storage

import (
	"context"
	"errors"
)

// Role selects one of the three artifact buckets.
type Role string

const (
	// RoleRaw holds article records, fetched HTML and normalized images.
	RoleRaw Role = "raw"
	// RoleText holds converted plain-text artifacts.
	RoleText Role = "text"
	// RoleSummary holds summary and caption artifacts.
	RoleSummary Role = "summary"
)

// Artifact filenames inside a {sessionID}/{articleID}/ prefix.
const (
	ArtifactArticle      = "article.json"
	ArtifactPage         = "page.html"
	ArtifactImage        = "image.jpg"
	ArtifactText         = "article.txt"
	ArtifactTextSummary  = "text_summary.json"
	ArtifactImageSummary = "image_summary.json"
)

// Content types for the artifacts above.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJPEG = "image/jpeg"
	ContentTypeText = "text/plain; charset=utf-8"
)

var (
	// ErrNotFound is returned when the requested object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrUnknownRole is returned for a role outside raw/text/summary.
	ErrUnknownRole = errors.New("unknown storage role")
)

// BlobStore is the artifact store the pipeline reads and writes through.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put writes an object, overwriting any existing one under the key.
	Put(ctx context.Context, role Role, key string, data []byte, contentType string) error
	// Get reads an object; missing keys return ErrNotFound.
	Get(ctx context.Context, role Role, key string) ([]byte, error)
	// Exists reports whether the key holds an object.
	Exists(ctx context.Context, role Role, key string) (bool, error)
	// List returns all keys under the prefix, lexically ordered.
	List(ctx context.Context, role Role, prefix string) ([]string, error)
	// Sessions returns the distinct first path segments in the role bucket.
	Sessions(ctx context.Context, role Role) ([]string, error)
	// Healthy verifies the store is reachable and the buckets exist.
	Healthy(ctx context.Context) error
}

// Key assembles the canonical object key for an article artifact.
func Key(sessionID, articleID, artifact string) string {
	return sessionID + "/" + articleID + "/" + artifact
}

// ValidRole reports whether the string names a known role.
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleRaw, RoleText, RoleSummary:
		return true
	default:
		return false
	}
}

// ContentTypeFor returns the content type for a known artifact filename,
// defaulting to octet-stream.
func ContentTypeFor(artifact string) string {
	switch artifact {
	case ArtifactArticle, ArtifactTextSummary, ArtifactImageSummary:
		return ContentTypeJSON
	case ArtifactPage:
		return ContentTypeHTML
	case ArtifactImage:
		return ContentTypeJPEG
	case ArtifactText:
		return ContentTypeText
	default:
		return "application/octet-stream"
	}
}
