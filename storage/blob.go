package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Kind selects which top-level directory of the blob store an asset lives in.
type Kind string

const (
	KindAudio Kind = "audio"
	KindCover Kind = "covers"
)

// AssetRef is a typed handle for a stored blob: the kind plus the generated
// object key. A zero AssetRef means "no asset".
type AssetRef struct {
	Kind Kind
	Key  string
}

// IsZero reports whether the ref points at nothing.
func (r AssetRef) IsZero() bool {
	return r.Key == ""
}

// ObjectPath renders the ref as the store-internal path, e.g. "audio/<key>".
func (r AssetRef) ObjectPath() string {
	return string(r.Kind) + "/" + r.Key
}

// ServePath renders the ref as the public URL path it is served under.
func (r AssetRef) ServePath() string {
	return "/static/" + r.ObjectPath()
}

// BlobStore is durable storage for uploaded binary assets. Assets are
// immutable once written; their only identity is the ref returned by Put.
type BlobStore interface {
	Put(ctx context.Context, kind Kind, originalName string, r io.Reader, size int64, contentType string) (AssetRef, error)
	Exists(ctx context.Context, ref AssetRef) (bool, error)
	Remove(ctx context.Context, ref AssetRef) error
	// Open reads back a stored object by its ObjectPath, for serving.
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
}

var whitespace = regexp.MustCompile(`\s+`)

// objectKey generates a unique key for a new asset:
// <unix-nano>-<random-suffix>-<sanitized-original-name>. The timestamp is
// taken per asset write, and the random suffix rules out collisions between
// ingestions that land on the same nanosecond.
func objectKey(originalName string) (string, error) {
	name := whitespace.ReplaceAllString(strings.TrimSpace(originalName), "_")
	if name == "" {
		name = "asset"
	}

	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate object key suffix: %w", err)
	}
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), hex.EncodeToString(b), name), nil
}
