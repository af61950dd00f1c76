// Package evalctx runs easing logic inside isolated, strictly sequential evaluation contexts.
//
// Each Context is a single goroutine draining a buffered job channel and owns its
// instance cache. Nothing is shared between contexts, so user logic never needs locks.
package evalctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/log"
)

// Job runs on a context goroutine with exclusive access to the context.
type Job func(c *Context) (float64, error)

type task struct {
	fn      Job
	started chan struct{}
	reply   chan outcome
}

type outcome struct {
	value float64
	err   error
}

// Context is one isolated evaluation context.
type Context struct {
	id        uuid.UUID
	jobs      chan task
	done      chan struct{}
	once      sync.Once
	cause     error
	instances *lru.Cache
	logger    *zap.Logger
	onFault   func(*Context, error)

	constructions atomic.Uint64
	evaluations   atomic.Uint64
}

func newContext(queueSize, instanceCacheSize int, logger *zap.Logger) (*Context, error) {
	c := &Context{
		id:     uuid.New(),
		jobs:   make(chan task, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	instances, err := lru.NewWithEvict(instanceCacheSize, c.evicted)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance cache: %w", err)
	}
	c.instances = instances
	return c, nil
}

func (c *Context) start(ctx context.Context, ready *sync.WaitGroup) {
	go func() {
		defer c.instances.Purge()
		ready.Done()
		for {
			select {
			case <-ctx.Done():
				c.discard(easing.ErrRuntimeClosed)
				return
			case <-c.done:
				return
			case t := <-c.jobs:
				if c.Discarded() {
					return
				}
				c.run(t)
			}
		}
	}()
}

func (c *Context) run(t task) {
	close(t.started)
	c.evaluations.Add(1)
	v, err := c.call(t.fn)
	if errors.Is(err, easing.ErrContextFault) && c.onFault != nil {
		c.onFault(c, err)
	}
	t.reply <- outcome{value: v, err: err}
}

func (c *Context) call(fn Job) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, Recover(r)
		}
	}()
	return fn(c)
}

// ID returns the context id.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// Instance returns the live instance for key, constructing it from def and args on first use.
// Construction faults, including panics, wrap easing.ErrInvalidArguments.
func (c *Context) Instance(key easing.InstanceKey, def easing.Definition, args easing.Args) (easing.Easing, error) {
	if v, ok := c.instances.Get(key); ok {
		return v.(easing.Easing), nil
	}
	inst, err := c.construct(def, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", easing.ErrInvalidArguments, key, err)
	}
	c.instances.Add(key, inst)
	c.constructions.Add(1)
	return inst, nil
}

func (c *Context) construct(def easing.Definition, args easing.Args) (inst easing.Easing, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst, err = nil, Recover(r)
		}
	}()
	inst, err = def.Logic.Construct(args)
	if err == nil && inst == nil {
		err = errors.New("constructor returned no instance")
	}
	return inst, err
}

// Discarded reports whether the context was taken out of service.
func (c *Context) Discarded() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Context) discard(cause error) {
	c.once.Do(func() {
		c.cause = cause
		close(c.done)
	})
}

// discardedError is what waiters of a discarded context receive.
func (c *Context) discardedError() error {
	<-c.done
	if errors.Is(c.cause, easing.ErrRuntimeClosed) {
		return easing.ErrRuntimeClosed
	}
	return fmt.Errorf("%w: context %s: %w", easing.ErrContextDiscarded, c.id, c.cause)
}

func (c *Context) evicted(key, value interface{}) {
	closer, ok := value.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Eff(c.logger, log.LogWarn, "failed to close evicted instance", map[string]interface{}{
			"context":  c.id.String(),
			"instance": key,
			"error":    err,
		})
	}
}

// Recover converts a recovered panic value into an error.
func Recover(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
