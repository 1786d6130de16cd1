package menu

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/skillsenselab/menustream/event"
	"github.com/skillsenselab/menustream/fanout"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/provider"
	"github.com/skillsenselab/menustream/session"
	"github.com/skillsenselab/menustream/storage"
	"github.com/skillsenselab/menustream/storage/local"
)

type pipelineFixture struct {
	reg       *session.Registry
	b         *session.Broadcaster
	providers *provider.Registry
	extractor provider.Extractor
	uploader  *storage.Uploader
}

func newPipeline(t *testing.T, fx pipelineFixture) *Pipeline {
	t.Helper()
	log := logger.NewDefault("test")
	if fx.uploader == nil {
		fx.uploader = storage.NewUploader(nil, log)
	}
	coord := fanout.New(fanout.Config{Concurrency: 2, ItemTimeout: time.Second}, fx.b, log)
	return NewPipeline(fx.reg, fx.b, coord, nil, fx.providers, fx.extractor, fx.uploader, log)
}

func newFixture(t *testing.T) pipelineFixture {
	t.Helper()
	log := logger.NewDefault("test")
	reg := session.NewRegistry(log)
	return pipelineFixture{
		reg:       reg,
		b:         session.NewBroadcaster(reg, log),
		providers: provider.NewRegistry(),
	}
}

func drain(sess *session.Session) []event.Event {
	var events []event.Event
	for {
		ev, ok := sess.Pop()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

func succeedWith(key, value string) provider.Func {
	return provider.Func{
		ProcessorName: key,
		Fn: func(_ context.Context, item provider.Item) (provider.Result, error) {
			return provider.Succeeded(map[string]any{key: value + " " + item.Name}), nil
		},
	}
}

func TestRun_DirectItemsHappyPath(t *testing.T) {
	fx := newFixture(t)
	fx.providers.Register(provider.StageTranslate, succeedWith("translation", "en"))
	fx.providers.Register(provider.StageDescribe, succeedWith("description", "desc"))
	fx.providers.Register(provider.StageImage, provider.Func{
		ProcessorName: "image",
		Fn: func(_ context.Context, _ provider.Item) (provider.Result, error) {
			return provider.Succeeded(map[string]any{"image_data": []byte("png-bytes")}), nil
		},
	})

	media, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	fx.uploader = storage.NewUploader(media, logger.NewDefault("test"))

	p := newPipeline(t, fx)
	sess := fx.reg.Create("s1")
	p.Run(context.Background(), "s1", SubmitRequest{
		Items: []SubmitItem{{Name: "寿司", Price: "¥1200"}, {Name: "ラーメン"}},
	})

	events := drain(sess)
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d: %v", len(events), events)
	}

	ocrStart := events[0].(event.Progress)
	if ocrStart.Stage != event.StageOCR || ocrStart.Status != event.StatusActive {
		t.Errorf("unexpected first event %+v", ocrStart)
	}
	ocrDone := events[1].(event.Progress)
	if ocrDone.Status != event.StatusCompleted || ocrDone.Data["total_items"] != 2 {
		t.Errorf("unexpected extraction summary %+v", ocrDone)
	}

	completed := 0
	for _, ev := range events[3:5] {
		item, ok := ev.(event.ItemCompleted)
		if !ok {
			t.Fatalf("expected item event, got %T", ev)
		}
		completed++
		if item.Payload["translation"] == nil || item.Payload["description"] == nil {
			t.Errorf("item payload missing stage outputs: %v", item.Payload)
		}
		url, _ := item.Payload["media_url"].(string)
		if !strings.HasPrefix(url, "file://") {
			t.Errorf("expected uploaded media URL, got %q", url)
		}
	}
	if completed != 2 {
		t.Errorf("expected 2 completed items, got %d", completed)
	}

	final := events[5].(event.Progress)
	if !final.Terminal() || final.Data["completed_count"] != 2 || final.Data["failed_count"] != 0 {
		t.Errorf("unexpected terminal event %+v", final)
	}
	if sess.TotalItems != 2 {
		t.Errorf("expected total items recorded, got %d", sess.TotalItems)
	}
}

func TestRun_CategorizeStage(t *testing.T) {
	fx := newFixture(t)
	fx.providers.Register(provider.StageCategorize, provider.Func{
		ProcessorName: "categorize",
		Fn: func(_ context.Context, _ provider.Item) (provider.Result, error) {
			return provider.Succeeded(map[string]any{"category": "noodles"}), nil
		},
	})

	p := newPipeline(t, fx)
	sess := fx.reg.Create("s1")
	p.Run(context.Background(), "s1", SubmitRequest{Items: []SubmitItem{{Name: "うどん"}}})

	sawCategorize := false
	for _, ev := range drain(sess) {
		switch e := ev.(type) {
		case event.Progress:
			if e.Stage == event.StageCategorize {
				sawCategorize = true
			}
		case event.ItemCompleted:
			if e.Payload["category"] != "noodles" {
				t.Errorf("category missing from payload: %v", e.Payload)
			}
		}
	}
	if !sawCategorize {
		t.Error("expected categorize stage events")
	}
}

func TestRun_PartialFailure(t *testing.T) {
	fx := newFixture(t)
	fx.providers.Register(provider.StageTranslate, provider.Func{
		ProcessorName: "translate",
		Fn: func(_ context.Context, item provider.Item) (provider.Result, error) {
			if item.Name == "ラーメン" {
				return provider.Failed("unrecognized dish"), nil
			}
			return provider.Succeeded(map[string]any{"translation": "ok"}), nil
		},
	})

	p := newPipeline(t, fx)
	sess := fx.reg.Create("s1")
	p.Run(context.Background(), "s1", SubmitRequest{
		Items: []SubmitItem{{Name: "寿司"}, {Name: "ラーメン"}, {Name: "天ぷら"}},
	})

	var final event.Progress
	errorEvents := 0
	for _, ev := range drain(sess) {
		if e, ok := ev.(event.Progress); ok {
			if e.Terminal() {
				final = e
			} else if e.Status == event.StatusError {
				errorEvents++
				if reason, _ := e.Data["error"].(string); !strings.Contains(reason, "translate:") {
					t.Errorf("error event missing failing operation: %v", e.Data)
				}
			}
		}
	}
	if errorEvents != 1 {
		t.Errorf("expected 1 item error event, got %d", errorEvents)
	}
	if final.Data["completed_count"] != 2 || final.Data["failed_count"] != 1 || final.Data["total"] != 3 {
		t.Errorf("unexpected summary: %v", final.Data)
	}
}

func TestRun_ExtractorPath(t *testing.T) {
	fx := newFixture(t)
	fx.extractor = provider.ExtractorFunc{
		ExtractorName: "ocr",
		Fn: func(_ context.Context, image []byte) ([]provider.Item, error) {
			if string(image) != "raw-menu-photo" {
				t.Errorf("unexpected image payload %q", image)
			}
			return []provider.Item{{Name: "抹茶"}, {Name: "寿司"}}, nil
		},
	}

	p := newPipeline(t, fx)
	sess := fx.reg.Create("s1")
	p.Run(context.Background(), "s1", SubmitRequest{
		ImageData: base64.StdEncoding.EncodeToString([]byte("raw-menu-photo")),
	})

	events := drain(sess)
	done := events[1].(event.Progress)
	if done.Data["total_items"] != 2 {
		t.Errorf("expected 2 extracted items, got %v", done.Data)
	}
	final := events[len(events)-1].(event.Progress)
	if !final.Terminal() || final.Data["completed_count"] != 2 {
		t.Errorf("unexpected terminal event %+v", final)
	}
}

func TestRun_ExtractionFailureTerminatesStream(t *testing.T) {
	fx := newFixture(t)

	p := newPipeline(t, fx)
	sess := fx.reg.Create("s1")
	// No extractor wired, so an image-only submission cannot proceed.
	p.Run(context.Background(), "s1", SubmitRequest{ImageData: "aW1n"})

	events := drain(sess)
	if len(events) != 3 {
		t.Fatalf("expected active + error + terminal, got %d: %v", len(events), events)
	}
	failure := events[1].(event.Progress)
	if failure.Stage != event.StageOCR || failure.Status != event.StatusError {
		t.Errorf("unexpected failure event %+v", failure)
	}
	final := events[2].(event.Progress)
	if !final.Terminal() || final.Status != event.StatusError {
		t.Errorf("abort must still terminate the stream: %+v", final)
	}
	if !sess.PendingClose() {
		t.Error("terminal event must mark the session pending close")
	}
}

func TestRun_InvalidImageData(t *testing.T) {
	fx := newFixture(t)
	fx.extractor = provider.ExtractorFunc{
		ExtractorName: "ocr",
		Fn: func(_ context.Context, _ []byte) ([]provider.Item, error) {
			t.Error("extractor must not be called for invalid base64")
			return nil, nil
		},
	}

	p := newPipeline(t, fx)
	sess := fx.reg.Create("s1")
	p.Run(context.Background(), "s1", SubmitRequest{ImageData: "!!not-base64!!"})

	events := drain(sess)
	final := events[len(events)-1].(event.Progress)
	if !final.Terminal() || final.Status != event.StatusError {
		t.Errorf("invalid image data must abort with terminal error: %+v", final)
	}
}
