package fencer

//go:generate mockgen -package mockfencer -destination mocks/fencer/fencer.go github.com/mmadfox/fencer Store,KV,Geocoder

import (
	"context"
	"sync"
)

// Store holds the remote polygon document. Put overwrites the whole
// document; concurrent writers follow last-writer-wins.
type Store interface {
	Fetch(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, data []byte) error
}

// KV is the local key-value persistence used by the address check flow.
type KV interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type memoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Fetch(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBytes(s.data), nil
}

func (s *memoryStore) Put(_ context.Context, data []byte) error {
	s.mu.Lock()
	s.data = cloneBytes(data)
	s.mu.Unlock()
	return nil
}

type memoryKV struct {
	mu    sync.RWMutex
	index map[string][]byte
}

func NewMemoryKV() KV {
	return &memoryKV{
		index: make(map[string][]byte),
	}
}

func (kv *memoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	kv.index[key] = cloneBytes(value)
	kv.mu.Unlock()
	return nil
}

func (kv *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	value, ok := kv.index[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
