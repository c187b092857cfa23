// Package kvstore is the small persistent key/value boundary backing the
// rate limiter and the list cache. Callers must tolerate absence, corruption
// and capacity rejection; the contract here only distinguishes "not found"
// from transport errors and reports capacity problems as ErrQuotaExceeded.
package kvstore

import (
	"context"
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by Set when the backend rejects a write for
// capacity reasons. Callers are expected to degrade, not fail.
var ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

// Store is a flat string key/value store.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store used in tests and redis-less deployments.
// Quota, when positive, bounds the size of a single value so capacity
// rejection paths can be exercised.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]string
	Quota int
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if m.Quota > 0 && len(value) > m.Quota {
		return ErrQuotaExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
