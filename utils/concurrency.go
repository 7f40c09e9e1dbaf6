package utils

import (
	"context"
	"sync"
)

// WorkerPool runs jobs on at most a fixed number of goroutines. Once its
// context is done it stops starting new jobs.
type WorkerPool struct {
	ctx   context.Context
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewWorkerPool creates a pool of size slots bound to ctx. Sizes below one
// mean one.
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	return &WorkerPool{ctx: ctx, slots: make(chan struct{}, max(size, 1))}
}

// Go runs job on the pool, blocking until a slot is free. It reports false,
// without running job, when the pool's context ends first.
func (p *WorkerPool) Go(job func(ctx context.Context)) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.slots <- struct{}{}:
	case <-p.ctx.Done():
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.slots }()
		job(p.ctx)
	}()
	return true
}

// Wait blocks until every started job has returned.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// KeySet records the listing keys already emitted in a run. It is safe for
// concurrent use.
type KeySet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]struct{})}
}

// Claim records key and reports whether it was new. The empty key is never
// claimed.
func (s *KeySet) Claim(key string) bool {
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.keys[key]; dup {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of claimed keys.
func (s *KeySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
