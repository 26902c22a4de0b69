// Package storage talks to the S3-compatible object storage (Cloudflare R2)
// that holds the uploaded track and cover files
package storage

import (
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

// ObjectStore is the storage collaborator the services work against
type ObjectStore interface {
	// DeleteObjectsForURLs deletes the objects behind the given public URLs as
	// one batch. Deleting an already-absent object is not an error; any other
	// per-object failure surfaces as a single error for the whole batch
	DeleteObjectsForURLs(ctx context.Context, urls []string) error
	// UploadObject stores the given content under the key and returns the
	// public URL it will be served from
	UploadObject(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// ObjectKeyForURL derives the bucket key from a public asset URL. URLs below
// the public base have its prefix stripped; anything else falls back to the
// URL path
func ObjectKeyForURL(publicBaseURL, rawURL string) (string, error) {
	base := strings.TrimSuffix(publicBaseURL, "/")
	if base != "" && strings.HasPrefix(rawURL, base+"/") {
		return strings.TrimPrefix(rawURL, base+"/"), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "", errors.Errorf("ObjectKeyForURL: '%s' does not reference a stored object", rawURL)
	}
	return strings.TrimPrefix(u.Path, "/"), nil
}

// PublicURLForKey is the inverse of ObjectKeyForURL
func PublicURLForKey(publicBaseURL, key string) string {
	return strings.TrimSuffix(publicBaseURL, "/") + "/" + key
}
