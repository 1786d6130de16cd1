package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/skillsenselab/menustream/logger"
)

type fakeStorage struct {
	uploads   map[string]string
	uploadErr error
	urlErr    error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string]string)}
}

func (f *fakeStorage) Upload(_ context.Context, path string, r io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, _ := io.ReadAll(r)
	f.uploads[path] = string(data)
	return nil
}

func (f *fakeStorage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := f.uploads[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (f *fakeStorage) Delete(_ context.Context, path string) error {
	delete(f.uploads, path)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.uploads[path]
	return ok, nil
}

func (f *fakeStorage) URL(_ context.Context, path string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://media.example.com/" + path, nil
}

func TestUploader_Success(t *testing.T) {
	fs := newFakeStorage()
	u := NewUploader(fs, logger.NewDefault("test"))

	url := u.UploadImage(context.Background(), "s1", "item-1", []byte("png"))
	if url != "https://media.example.com/menus/s1/item-1.png" {
		t.Errorf("unexpected URL %q", url)
	}
	if fs.uploads["menus/s1/item-1.png"] != "png" {
		t.Error("image bytes not stored")
	}
}

func TestUploader_DegradesToEmptyURL(t *testing.T) {
	log := logger.NewDefault("test")
	ctx := context.Background()

	fs := newFakeStorage()
	fs.uploadErr = errors.New("bucket unavailable")
	if url := NewUploader(fs, log).UploadImage(ctx, "s1", "i", []byte("x")); url != "" {
		t.Errorf("upload failure must degrade to empty URL, got %q", url)
	}

	fs = newFakeStorage()
	fs.urlErr = errors.New("no endpoint")
	if url := NewUploader(fs, log).UploadImage(ctx, "s1", "i", []byte("x")); url != "" {
		t.Errorf("URL failure must degrade to empty URL, got %q", url)
	}

	if url := NewUploader(nil, log).UploadImage(ctx, "s1", "i", []byte("x")); url != "" {
		t.Errorf("nil backend must degrade to empty URL, got %q", url)
	}

	if url := NewUploader(newFakeStorage(), log).UploadImage(ctx, "s1", "i", nil); url != "" {
		t.Errorf("empty payload must degrade to empty URL, got %q", url)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Provider: "s3"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("s3 config without bucket must fail validation")
	}

	cfg = Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default local config must validate: %v", err)
	}

	cfg = Config{Provider: "ftp"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown provider must fail validation")
	}
}
