package tablemerge

import (
	"sync"

	"github.com/agentstation/tablemerge/pkg/records"
)

// Hook function types for pipeline events
type (
	// SourceLoadedHook is called after a source loads, with its record count
	SourceLoadedHook func(source string, count int)

	// RecordRepairedHook is called for each record whose overflow values
	// were folded
	RecordRepairedHook func(r *records.Record)

	// RecordsMergedHook is called once the merge completes
	RecordsMergedHook func(result *Result)
)

// Hooks provides event callback registration.
type Hooks interface {
	// OnSourceLoaded registers a callback for when a source is loaded
	OnSourceLoaded(SourceLoadedHook)

	// OnRecordRepaired registers a callback for when a record is repaired
	OnRecordRepaired(RecordRepairedHook)

	// OnRecordsMerged registers a callback for when the merge completes
	OnRecordsMerged(RecordsMergedHook)
}

// hooks manages event callbacks for pipeline runs
type hooks struct {
	mu               sync.RWMutex
	onSourceLoaded   []SourceLoadedHook
	onRecordRepaired []RecordRepairedHook
	onRecordsMerged  []RecordsMergedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnSourceLoaded registers a callback for when a source is loaded
func (c *client) OnSourceLoaded(fn SourceLoadedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onSourceLoaded = append(c.hooks.onSourceLoaded, fn)
}

// OnRecordRepaired registers a callback for when a record is repaired
func (c *client) OnRecordRepaired(fn RecordRepairedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRecordRepaired = append(c.hooks.onRecordRepaired, fn)
}

// OnRecordsMerged registers a callback for when the merge completes
func (c *client) OnRecordsMerged(fn RecordsMergedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRecordsMerged = append(c.hooks.onRecordsMerged, fn)
}

// triggerLoaded is called from loader goroutines, so hooks for different
// sources may run concurrently.
func (h *hooks) triggerLoaded(source string, count int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onSourceLoaded {
		fn(source, count)
	}
}

func (h *hooks) triggerRepaired(r *records.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRecordRepaired {
		fn(r)
	}
}

func (h *hooks) triggerMerged(result *Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRecordsMerged {
		fn(result)
	}
}
