package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/skillsenselab/menustream/logger"
)

// Uploader stores generated media and resolves its public URL. Media is a
// nice-to-have on processed items: any storage failure is logged and the
// item carries an empty URL instead of failing.
type Uploader struct {
	storage Storage
	source  func() Storage
	log     *logger.Logger
}

// NewUploader creates an uploader over the given backend. A nil backend
// is allowed and makes every upload degrade to an empty URL.
func NewUploader(s Storage, log *logger.Logger) *Uploader {
	return &Uploader{
		storage: s,
		log:     log.WithComponent("uploader"),
	}
}

// NewLazyUploader resolves the backend on every call. This lets the
// uploader be wired before the storage component has started.
func NewLazyUploader(source func() Storage, log *logger.Logger) *Uploader {
	return &Uploader{
		source: source,
		log:    log.WithComponent("uploader"),
	}
}

func (u *Uploader) backend() Storage {
	if u.storage != nil {
		return u.storage
	}
	if u.source != nil {
		return u.source()
	}
	return nil
}

// UploadImage stores a generated image for one menu item and returns its
// public URL, or "" when storage is unavailable or the upload fails.
func (u *Uploader) UploadImage(ctx context.Context, sessionID, itemID string, data []byte) string {
	s := u.backend()
	if s == nil || len(data) == 0 {
		return ""
	}

	path := fmt.Sprintf("menus/%s/%s.png", sessionID, itemID)
	if err := s.Upload(ctx, path, bytes.NewReader(data)); err != nil {
		u.log.Warn("Media upload failed, item continues without URL", map[string]interface{}{
			logger.FieldSessionID: sessionID,
			logger.FieldItemID:    itemID,
			logger.FieldError:     err.Error(),
		})
		return ""
	}

	url, err := s.URL(ctx, path)
	if err != nil {
		u.log.Warn("Media URL resolution failed, item continues without URL", map[string]interface{}{
			logger.FieldSessionID: sessionID,
			logger.FieldItemID:    itemID,
			logger.FieldError:     err.Error(),
		})
		return ""
	}
	return url
}
