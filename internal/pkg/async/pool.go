package async

import (
	"context"
	"errors"
	log "log/slog"
	"runtime/debug"
	"sync"
	"time"
)

var ErrPoolClosed = errors.New("async pool closed")

// Runner 后台任务提交接口，Go 不阻塞调用方，返回是否已入队
type Runner interface {
	Go(ctx context.Context, name string, fn func(context.Context) error) bool
}

type task struct {
	ctx  context.Context
	name string
	fn   func(context.Context) error
}

// Pool 固定 worker 数与有界队列的后台任务池
type Pool struct {
	timeout time.Duration
	queue   chan task
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	// OnDrop 队列满或已关闭时回调，用于打点
	OnDrop func(name string)
}

func NewPool(workers, queueSize int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}
	p := &Pool{
		timeout: timeout,
		queue:   make(chan task, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Go 提交任务，ctx 仅保留其中的值（如 trace_id），不继承取消
func (p *Pool) Go(ctx context.Context, name string, fn func(context.Context) error) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.drop(ctx, name, ErrPoolClosed)
		return false
	}

	select {
	case p.queue <- task{ctx: context.WithoutCancel(ctx), name: name, fn: fn}:
		return true
	default:
		p.drop(ctx, name, errors.New("queue full"))
		return false
	}
}

func (p *Pool) drop(ctx context.Context, name string, reason error) {
	log.WarnContext(ctx, "Background task dropped", "task", name, "reason", reason)
	if p.OnDrop != nil {
		p.OnDrop(name)
	}
}

// Shutdown 停止接收新任务并等待队列排空
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("async pool shutdown timed out")
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.queue {
		run(t.ctx, p.timeout, t.name, t.fn)
	}
}

// SafeGo 单独起一个 goroutine 执行任务，带超时与 panic 恢复
func SafeGo(parent context.Context, timeout time.Duration, name string, fn func(context.Context) error) {
	go run(context.WithoutCancel(parent), timeout, name, fn)
}

func run(parent context.Context, timeout time.Duration, name string, fn func(context.Context) error) {
	ctx := parent
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "Background task panic",
				"task", name,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	if err := fn(ctx); err != nil {
		log.ErrorContext(ctx, "Background task failed", "task", name, "err", err)
	}
}
