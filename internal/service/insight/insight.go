// Package insight runs text generation in the background. A caller waits a
// bounded time for the answer and may come back for it later by task id.
package insight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/ougirez/thaitourism/internal/pkg/logger"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

type Result struct {
	ID     uuid.UUID
	Status Status
	Text   string
	Err    error
}

// Task is one dispatched generation. Its fields are written once by the worker
// before done is closed and only read after.
type Task struct {
	id        uuid.UUID
	createdAt time.Time
	done      chan struct{}

	text string
	err  error
}

// Dispatch starts gen on its own goroutine. The worker only sees the prompt
// string and outlives ctx's cancellation; values carried by ctx are kept.
func Dispatch(ctx context.Context, gen Generator, prompt string) *Task {
	t := &Task{
		id:        uuid.New(),
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}

	workerCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("insight worker panicked: %v", r)
			}
		}()

		started := time.Now()
		t.text, t.err = gen.Generate(workerCtx, prompt)
		if t.err != nil {
			logger.Warnf(workerCtx, "insight %s failed after %s: %s", t.id, time.Since(started), t.err.Error())
			return
		}
		logger.Infof(workerCtx, "insight %s finished in %s", t.id, time.Since(started))
	}()

	return t
}

func (t *Task) ID() uuid.UUID { return t.id }

func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or timeout elapses. A timeout <= 0 polls.
func (t *Task) Wait(timeout time.Duration) Result {
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-t.done:
		case <-timer.C:
		}
	}
	return t.result()
}

func (t *Task) result() Result {
	select {
	case <-t.done:
	default:
		return Result{ID: t.id, Status: StatusRunning}
	}

	if t.err != nil {
		return Result{ID: t.id, Status: StatusFailed, Err: t.err}
	}
	return Result{ID: t.id, Status: StatusDone, Text: t.text}
}

// Registry keeps tasks for polling. Finished tasks are dropped once read, and
// any task older than ttl is dropped on the next Add.
type Registry struct {
	ttl   time.Duration
	mx    sync.Mutex
	tasks map[uuid.UUID]*Task
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, tasks: make(map[uuid.UUID]*Task)}
}

func (r *Registry) Add(t *Task) {
	r.mx.Lock()
	defer r.mx.Unlock()

	if r.ttl > 0 {
		for id, old := range r.tasks {
			if time.Since(old.createdAt) > r.ttl {
				delete(r.tasks, id)
			}
		}
	}
	r.tasks[t.id] = t
}

// Poll waits up to timeout for the task with id.
func (r *Registry) Poll(id uuid.UUID, timeout time.Duration) (Result, error) {
	r.mx.Lock()
	t, ok := r.tasks[id]
	r.mx.Unlock()
	if !ok {
		return Result{}, fmt.Errorf("task %s: %w", id, constants.ErrInsightNotFound)
	}

	res := t.Wait(timeout)
	if res.Status != StatusRunning {
		r.mx.Lock()
		delete(r.tasks, id)
		r.mx.Unlock()
	}
	return res, nil
}

func (r *Registry) Len() int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return len(r.tasks)
}
