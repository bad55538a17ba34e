package main

import (
	"context"
	"sync"
)

// workers runs persistence loops on a context of their own. Stop is called
// after the HTTP server has drained, so commits made by in-flight requests
// are still flushed.
type workers struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newWorkers() *workers {
	ctx, cancel := context.WithCancel(context.Background())
	return &workers{ctx: ctx, cancel: cancel}
}

func (w *workers) Go(run func(ctx context.Context)) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		run(w.ctx)
	}()
}

// Stop cancels the loops and waits for their final flush.
func (w *workers) Stop() {
	w.cancel()
	w.wg.Wait()
}
