package iec104

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-iec104/logger"
)

var (
	// ErrTaskStopped is returned when a task is started on a stopped TaskManager.
	ErrTaskStopped = errors.New("task manager stopped")
	// ErrTaskExists is returned when a task with the same name is still running.
	ErrTaskExists = errors.New("task already running")
)

// TaskFunc is one step of a task. It returns false to end the task.
type TaskFunc func() bool

// TaskManager runs the goroutines of one connection: the frame receiver and the timer tick.
//
// Stop cancels the current generation of tasks, Wait blocks until they have returned and then
// prepares a new generation, so the same manager serves every connection of a session:
//
//	mgr := iec104.NewTaskManager(ctx, logger)
//	_ = mgr.Go("receiver", readOneFrame)
//	_ = mgr.Every("timer", time.Second, onTick)
//	...
//	mgr.Stop()
//	mgr.Wait()
//
// A task blocked in a read is not interrupted by Stop; the owner unblocks it by closing the transport.
type TaskManager struct {
	parent  context.Context
	logger  logger.Logger
	running *xsync.MapOf[string, time.Time]
	wg      sync.WaitGroup

	mu     sync.RWMutex // guards ctx and cancel
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTaskManager creates a TaskManager whose tasks end when ctx is canceled.
func NewTaskManager(ctx context.Context, l logger.Logger) *TaskManager {
	if l == nil {
		l = logger.GetLogger()
	}

	mgr := &TaskManager{
		parent:  ctx,
		logger:  l,
		running: xsync.NewMapOf[string, time.Time](),
	}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the context of the current task generation.
func (mgr *TaskManager) Context() context.Context {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	return mgr.ctx
}

// Go runs fn repeatedly in a new goroutine until it returns false, panics, or the manager is stopped.
func (mgr *TaskManager) Go(name string, fn TaskFunc) error {
	return mgr.start(name, func(ctx context.Context) {
		for ctx.Err() == nil {
			if !mgr.call(name, fn) {
				return
			}
		}
	})
}

// Every runs fn once per interval in a new goroutine until it returns false, panics, or the manager is stopped.
func (mgr *TaskManager) Every(name string, interval time.Duration, fn TaskFunc) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: invalid interval %v", name, interval)
	}

	return mgr.start(name, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !mgr.call(name, fn) {
					return
				}
			}
		}
	})
}

func (mgr *TaskManager) start(name string, body func(ctx context.Context)) error {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	ctx := mgr.ctx
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s", ErrTaskStopped, name)
	}

	if _, loaded := mgr.running.LoadOrStore(name, time.Now()); loaded {
		return fmt.Errorf("%w: %s", ErrTaskExists, name)
	}

	mgr.wg.Add(1)
	go func() {
		defer mgr.wg.Done()
		defer func() {
			mgr.running.Delete(name)
			mgr.logger.Debug("task terminated", "name", name, "task_count", mgr.TaskCount())
		}()

		body(ctx)
	}()

	mgr.logger.Debug("task started", "name", name)

	return nil
}

// call runs fn and reports false when it panics.
func (mgr *TaskManager) call(name string, fn TaskFunc) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task", "name", name, "panic", r)
			ok = false
		}
	}()

	return fn()
}

// Stop signals every running task to end.
func (mgr *TaskManager) Stop() {
	mgr.mu.RLock()
	mgr.cancel()
	mgr.mu.RUnlock()
}

// Wait blocks until every task has returned, then prepares a new generation unless the parent context is done.
// Tasks may call Stop while Wait is blocked.
func (mgr *TaskManager) Wait() {
	mgr.wg.Wait()

	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	mgr.cancel()
	mgr.ctx, mgr.cancel = context.WithCancel(mgr.parent)
}

// TaskCount returns the number of running tasks.
func (mgr *TaskManager) TaskCount() int {
	return mgr.running.Size()
}
