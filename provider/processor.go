package provider

import "context"

// Item is one menu item flowing through the pipeline.
type Item struct {
	// ID uniquely identifies the item within its session.
	ID string `json:"id"`
	// Name is the item name as read from the menu (Japanese).
	Name string `json:"name"`
	// Category is the menu section assigned during categorization.
	Category string `json:"category,omitempty"`
	// Price is the raw price string as read from the menu, if any.
	Price string `json:"price,omitempty"`
	// Attrs carries stage outputs accumulated so far (translation,
	// description, image reference).
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Result is the outcome of one collaborator call. Semantic failures are
// reported in-band (Success=false plus Error) rather than as Go errors;
// a non-nil error from Process means the call itself could not complete.
type Result struct {
	Success bool           `json:"success"`
	Payload map[string]any `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Failed builds a failed result with the given reason.
func Failed(reason string) Result {
	return Result{Success: false, Error: reason}
}

// Succeeded builds a successful result with the given payload.
func Succeeded(payload map[string]any) Result {
	return Result{Success: true, Payload: payload}
}

// Processor is an item-processing collaborator (OCR engine, translation
// engine, description generator, image generator). Implementations live
// outside the core; the pipeline only depends on this interface.
type Processor interface {
	// Name returns the processor's unique name.
	Name() string
	// IsAvailable checks if the processor is ready to handle requests.
	// Credential resolution happens before reaching the core, so this is
	// a simple capability flag.
	IsAvailable(ctx context.Context) bool
	// Process runs the collaborator call for one item.
	Process(ctx context.Context, item Item) (Result, error)
}

// Func adapts a plain function to a Processor that is always available.
type Func struct {
	ProcessorName string
	Fn            func(ctx context.Context, item Item) (Result, error)
}

// Name implements Processor.
func (f Func) Name() string { return f.ProcessorName }

// IsAvailable implements Processor.
func (f Func) IsAvailable(_ context.Context) bool { return true }

// Process implements Processor.
func (f Func) Process(ctx context.Context, item Item) (Result, error) {
	return f.Fn(ctx, item)
}
