package provider

import "context"

// Extractor is the OCR collaborator boundary: it reads a menu image and
// returns the recognized items. Unlike the per-item processors this is a
// single whole-menu call.
type Extractor interface {
	// Name returns the extractor's unique name.
	Name() string
	// IsAvailable checks if the extractor is ready to handle requests.
	IsAvailable(ctx context.Context) bool
	// Extract recognizes menu items from raw image bytes.
	Extract(ctx context.Context, image []byte) ([]Item, error)
}

// ExtractorFunc adapts a plain function to an Extractor that is always
// available.
type ExtractorFunc struct {
	ExtractorName string
	Fn            func(ctx context.Context, image []byte) ([]Item, error)
}

// Name implements Extractor.
func (f ExtractorFunc) Name() string { return f.ExtractorName }

// IsAvailable implements Extractor.
func (f ExtractorFunc) IsAvailable(_ context.Context) bool { return true }

// Extract implements Extractor.
func (f ExtractorFunc) Extract(ctx context.Context, image []byte) ([]Item, error) {
	return f.Fn(ctx, image)
}
