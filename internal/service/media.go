package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"linkedapi/internal/storage"
)

// Upload is an incoming media file. Reader must support seeking so the
// content type can be sniffed before streaming.
type Upload struct {
	Reader   io.ReadSeeker
	Filename string
	Size     int64
}

// media wraps an optional object store. A nil store means uploads are disabled.
type media struct {
	store storage.Storage
	log   *slog.Logger
}

func newMedia(store storage.Storage, log *slog.Logger) media {
	if log == nil {
		log = slog.Default()
	}
	return media{store: store, log: log}
}

// put sniffs and uploads up under prefix, returning its public URL and key.
func (m media) put(ctx context.Context, prefix string, up *Upload) (storage.ObjectInfo, error) {
	if m.store == nil {
		return storage.ObjectInfo{}, ErrMediaUnavailable
	}
	if up == nil || up.Reader == nil {
		return storage.ObjectInfo{}, invalidField("file", "is required")
	}
	ct, err := storage.DetectImage(up.Reader)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return storage.ObjectInfo{}, ErrNotImage
		}
		return storage.ObjectInfo{}, err
	}
	key := storage.NewKey(prefix, up.Filename)
	info, err := m.store.Put(ctx, key, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: ct,
		Metadata:    map[string]string{"original-filename": up.Filename},
	})
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("upload to storage: %w", err)
	}
	if info.URL == "" {
		info.URL = m.store.URL(key)
	}
	return info, nil
}

// rollback deletes an object whose referencing document failed to save.
func (m media) rollback(ctx context.Context, key string, cause error) error {
	if delErr := m.store.Delete(ctx, key); delErr != nil {
		return fmt.Errorf("db save failed: %w; rollback delete failed: %v", cause, delErr)
	}
	return cause
}

// remove deletes the object behind url when this store owns it. Failures
// are logged and otherwise ignored.
func (m media) remove(ctx context.Context, url string) {
	if m.store == nil || url == "" {
		return
	}
	key, ok := m.store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := m.store.Delete(ctx, key); err != nil {
		m.log.Warn("media cleanup failed",
			slog.String("component", "media"),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
