package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Package storage holds the media object store used for avatars, experience
// logos and post images. Uploads are streamed; nothing touches local disk.

// Key prefixes group objects by the document that references them.
const (
	PrefixAvatars     = "avatars"
	PrefixExperiences = "experiences"
	PrefixPosts       = "posts"
)

// ErrNotImage is returned by DetectImage for non-image payloads.
var ErrNotImage = errors.New("file is not an image")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object and the URL clients fetch it from.
type ObjectInfo struct {
	Key          string
	URL          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is an S3-compatible object store with publicly readable objects.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
	// KeyFromURL reverses URL. It reports false for URLs this store did not produce,
	// such as the default avatar.
	KeyFromURL(u string) (string, bool)
}

// NewKey names a new object under prefix, keeping the lowercased extension of filename.
func NewKey(prefix, filename string) string {
	return prefix + "/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}
