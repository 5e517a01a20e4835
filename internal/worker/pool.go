// Package worker provides a shared bounded worker pool reused across fetch
// stages.
package worker

import (
	"context"
	"sync"
)

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	size  int
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool creates a pool with the given concurrency limit.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		size:  size,
		tasks: make(chan func()),
	}
	for i := 0; i < size; i++ {
		go func() {
			for task := range p.tasks {
				task()
				p.wg.Done()
			}
		}()
	}
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Submit enqueues a task. It blocks while all workers are busy and the
// context is live; a cancelled context drops the task.
func (p *Pool) Submit(ctx context.Context, task func()) {
	p.wg.Add(1)
	select {
	case p.tasks <- task:
	case <-ctx.Done():
		p.wg.Done()
	}
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close stops the workers. Submit must not be called afterward.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.tasks) })
}
