package keystone

import "sync"

// Preferences is the key/value collaborator the shape store persists into.
type Preferences interface {
	// Float returns the value stored under key and whether it exists.
	Float(key string) (float64, bool)
	// Edit runs fn against a pending batch and commits it atomically: a
	// concurrent reader sees either none or all of the batch.
	Edit(fn func(e Editor)) error
}

// Editor collects changes for one Preferences.Edit batch. Clear drops the
// stored record and any PutFloat made earlier in the same batch.
type Editor interface {
	PutFloat(key string, v float64)
	Clear()
}

// batch is the Editor handed to Edit callbacks by the built-in backends.
type batch struct {
	clear bool
	puts  map[string]float64
}

func newBatch() *batch {
	return &batch{puts: make(map[string]float64, 8)}
}

func (b *batch) PutFloat(key string, v float64) { b.puts[key] = v }

func (b *batch) Clear() {
	b.clear = true
	for k := range b.puts {
		delete(b.puts, k)
	}
}

// apply commits the batch into values, returning the resulting map. values
// is not modified; a fresh map is built so readers holding the old one are
// unaffected.
func (b *batch) apply(values map[string]float64) map[string]float64 {
	next := make(map[string]float64, len(values)+len(b.puts))
	if !b.clear {
		for k, v := range values {
			next[k] = v
		}
	}
	for k, v := range b.puts {
		next[k] = v
	}
	return next
}

// MemoryPreferences is an in-process Preferences, used by tests and as a
// fallback when no file backend is configured.
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]float64
	edits  int
}

// NewMemoryPreferences returns an empty in-memory store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]float64)}
}

// Float implements Preferences.
func (p *MemoryPreferences) Float(key string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Edit implements Preferences.
func (p *MemoryPreferences) Edit(fn func(e Editor)) error {
	b := newBatch()
	fn(b)
	p.mu.Lock()
	p.values = b.apply(p.values)
	p.edits++
	p.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (p *MemoryPreferences) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}

// Edits returns how many batches have been committed.
func (p *MemoryPreferences) Edits() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.edits
}
