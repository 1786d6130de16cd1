package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Pipeline stage processor names.
const (
	StageOCR        = "ocr"
	StageCategorize = "categorize"
	StageTranslate  = "translate"
	StageDescribe   = "describe"
	StageImage      = "image"
)

// Registry maps pipeline stage names to their processors.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
}

// NewRegistry creates an empty processor registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]Processor)}
}

// Register binds a processor to a stage name, replacing any previous binding.
func (r *Registry) Register(stage string, p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[stage] = p
}

// Get returns the processor for a stage.
func (r *Registry) Get(stage string) (Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[stage]
	if !ok {
		return nil, fmt.Errorf("provider: no processor registered for stage %q", stage)
	}
	return p, nil
}

// Available reports whether the stage has a processor that is ready.
func (r *Registry) Available(ctx context.Context, stage string) bool {
	r.mu.RLock()
	p, ok := r.processors[stage]
	r.mu.RUnlock()
	return ok && p.IsAvailable(ctx)
}

// Stages returns the sorted names of all registered stages.
func (r *Registry) Stages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stages := make([]string, 0, len(r.processors))
	for s := range r.processors {
		stages = append(stages, s)
	}
	sort.Strings(stages)
	return stages
}
