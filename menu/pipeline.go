package menu

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/skillsenselab/menustream/errors"
	"github.com/skillsenselab/menustream/event"
	"github.com/skillsenselab/menustream/fanout"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/provider"
	"github.com/skillsenselab/menustream/session"
	"github.com/skillsenselab/menustream/storage"
	"github.com/skillsenselab/menustream/stream"
)

// Pipeline drives one menu through its stages: extract items (OCR or
// direct), categorize, then a bounded-concurrency fan-out that
// translates, describes, and illustrates each item. All progress flows
// through the broadcaster; the fan-out's summary event terminates the
// client's stream.
type Pipeline struct {
	reg       *session.Registry
	b         *session.Broadcaster
	coord     *fanout.Coordinator
	monitor   *stream.Monitor
	providers *provider.Registry
	extractor provider.Extractor
	uploader  *storage.Uploader
	log       *logger.Logger
}

// NewPipeline wires the pipeline. monitor and extractor may be nil when
// liveness pings or OCR submission are not needed.
func NewPipeline(
	reg *session.Registry,
	b *session.Broadcaster,
	coord *fanout.Coordinator,
	monitor *stream.Monitor,
	providers *provider.Registry,
	extractor provider.Extractor,
	uploader *storage.Uploader,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		reg:       reg,
		b:         b,
		coord:     coord,
		monitor:   monitor,
		providers: providers,
		extractor: extractor,
		uploader:  uploader,
		log:       log.WithComponent("pipeline"),
	}
}

// Run processes one submitted menu to completion. It is called on its own
// goroutine per submission; all failures are reported through the event
// stream, never returned.
func (p *Pipeline) Run(ctx context.Context, sessionID string, req SubmitRequest) {
	items, err := p.extract(ctx, sessionID, req)
	if err != nil {
		p.abort(sessionID, event.StageOCR, err)
		return
	}
	if len(items) == 0 {
		p.abort(sessionID, event.StageOCR, errors.Validation("no menu items recognized"))
		return
	}

	if sess, ok := p.reg.Get(sessionID); ok {
		sess.SetTotalItems(len(items))
	}

	p.categorize(ctx, sessionID, items)

	p.b.Push(sessionID, event.NewProgress(event.StageTranslate, event.StatusActive,
		fmt.Sprintf("processing %d items", len(items)), nil))

	// Liveness pings cover the long-running fan-out phase.
	if p.monitor != nil {
		p.monitor.Start(ctx, sessionID)
		defer p.monitor.Stop(sessionID)
	}

	p.coord.Run(ctx, sessionID, event.StageTranslate, items, p.processItem(sessionID))
}

// extract resolves the item list, via OCR when only an image was supplied.
func (p *Pipeline) extract(ctx context.Context, sessionID string, req SubmitRequest) ([]provider.Item, error) {
	p.b.Push(sessionID, event.NewProgress(event.StageOCR, event.StatusActive, "extracting menu items", nil))

	var items []provider.Item
	if len(req.Items) > 0 {
		items = make([]provider.Item, len(req.Items))
		for i, it := range req.Items {
			items[i] = provider.Item{
				ID:    fmt.Sprintf("item-%d", i+1),
				Name:  it.Name,
				Price: it.Price,
			}
		}
	} else {
		if p.extractor == nil || !p.extractor.IsAvailable(ctx) {
			return nil, errors.ServiceUnavailable("menu OCR")
		}
		image, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			return nil, errors.Validation("image_data is not valid base64")
		}
		items, err = p.extractor.Extract(ctx, image)
		if err != nil {
			return nil, errors.ExternalServiceError("menu OCR", err)
		}
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = fmt.Sprintf("item-%d", i+1)
			}
		}
	}

	p.b.Push(sessionID, event.NewProgress(event.StageOCR, event.StatusCompleted, "menu items extracted", map[string]any{
		"total_items": len(items),
	}))
	return items, nil
}

// categorize assigns menu sections. Failures here leave the category
// empty and never stop the run.
func (p *Pipeline) categorize(ctx context.Context, sessionID string, items []provider.Item) {
	proc, err := p.providers.Get(provider.StageCategorize)
	if err != nil || !proc.IsAvailable(ctx) {
		return
	}

	p.b.Push(sessionID, event.NewProgress(event.StageCategorize, event.StatusActive, "categorizing items", nil))

	for i := range items {
		res, err := proc.Process(ctx, items[i])
		if err != nil || !res.Success {
			continue
		}
		if cat, ok := res.Payload["category"].(string); ok {
			items[i].Category = cat
		}
	}

	p.b.Push(sessionID, event.NewProgress(event.StageCategorize, event.StatusCompleted, "items categorized", nil))
}

// processItem builds the per-item fan-out chain: translate, describe,
// illustrate, upload. Processor failures fail the item; only the media
// upload degrades to an empty URL.
func (p *Pipeline) processItem(sessionID string) fanout.ProcessFunc {
	return func(ctx context.Context, item provider.Item) (provider.Result, error) {
		attrs := make(map[string]any, len(item.Attrs)+4)
		for k, v := range item.Attrs {
			attrs[k] = v
		}

		for _, stage := range []string{provider.StageTranslate, provider.StageDescribe} {
			proc, err := p.providers.Get(stage)
			if err != nil {
				continue
			}
			res, err := proc.Process(ctx, item)
			if err != nil {
				return provider.Result{}, fmt.Errorf("%s: %w", stage, err)
			}
			if !res.Success {
				return provider.Failed(stage + ": " + res.Error), nil
			}
			for k, v := range res.Payload {
				attrs[k] = v
			}
			item.Attrs = attrs
		}

		mediaURL := ""
		if proc, err := p.providers.Get(provider.StageImage); err == nil {
			res, err := proc.Process(ctx, item)
			if err != nil {
				return provider.Result{}, fmt.Errorf("image: %w", err)
			}
			if !res.Success {
				return provider.Failed("image: " + res.Error), nil
			}
			if data, ok := imageBytes(res.Payload["image_data"]); ok {
				mediaURL = p.uploader.UploadImage(ctx, sessionID, item.ID, data)
			}
		}

		payload := map[string]any{
			"id":        item.ID,
			"name":      item.Name,
			"media_url": mediaURL,
		}
		if item.Category != "" {
			payload["category"] = item.Category
		}
		if item.Price != "" {
			payload["price"] = item.Price
		}
		for k, v := range attrs {
			if k == "image_data" {
				continue
			}
			payload[k] = v
		}
		return provider.Succeeded(payload), nil
	}
}

// abort reports a fatal pre-fan-out failure and terminates the stream.
func (p *Pipeline) abort(sessionID string, stage event.Stage, err error) {
	p.log.Error("Pipeline aborted", map[string]interface{}{
		logger.FieldSessionID: sessionID,
		logger.FieldStage:     int(stage),
		logger.FieldError:     err.Error(),
	})

	msg := "processing failed"
	if appErr, ok := errors.AsAppError(err); ok {
		msg = appErr.Message
	}
	p.b.Push(sessionID, event.NewProgress(stage, event.StatusError, msg, nil))
	p.b.Push(sessionID, event.NewProgress(event.StageFinal, event.StatusError, "processing aborted", map[string]any{
		"completed_count": 0,
		"failed_count":    0,
		"total":           0,
	}))
}

// imageBytes accepts generated image payloads as raw bytes or base64.
func imageBytes(v any) ([]byte, bool) {
	switch data := v.(type) {
	case []byte:
		return data, len(data) > 0
	case string:
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil || len(decoded) == 0 {
			return nil, false
		}
		return decoded, true
	default:
		return nil, false
	}
}
