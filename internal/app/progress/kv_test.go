package progress_test

import (
	"context"
	"errors"
	"sync"
)

var errInjected = errors.New("injected store failure")

// memKV is an in-memory domain.KVStore with switchable failures.
type memKV struct {
	mu         sync.Mutex
	data       map[string]string
	failGet    bool
	failSet    bool
	failRemove bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", false, errInjected
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errInjected
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRemove {
		return errInjected
	}
	delete(m.data, key)
	return nil
}

func (m *memKV) setFailures(get, set, remove bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGet, m.failSet, m.failRemove = get, set, remove
}
