package analyzer

import "context"

// WorkerPool bounds how many blocking calls (codec subprocesses, frame
// decodes, synchronous SDK calls) run at once across the whole process.
// One pool is constructed at startup and shared by every stage.
type WorkerPool struct {
	sem chan struct{}
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{sem: make(chan struct{}, size)}
}

// Do runs fn once a pool slot is free. The caller blocks until fn
// returns or ctx is cancelled while waiting for a slot.
func (p *WorkerPool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()

	return fn()
}
