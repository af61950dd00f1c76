package evalctx

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/log"
)

// Partitionable values are routed to a context by their partition key.
type Partitionable interface {
	PartitionKey() string
}

// Config sizes a Pool.
type Config struct {
	Contexts          int           // default: 1
	QueueSize         int           // default: 1
	InstanceCacheSize int           // default: 1
	Budget            time.Duration // 0 disables the per-job budget
}

func (c Config) normalized() Config {
	if c.Contexts <= 0 {
		c.Contexts = 1
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1
	}
	if c.InstanceCacheSize <= 0 {
		c.InstanceCacheSize = 1
	}
	return c
}

// ContextStats describes one live context.
type ContextStats struct {
	ID            string
	Instances     int
	Constructions uint64
	Evaluations   uint64
}

// Stats describes the pool.
type Stats struct {
	Contexts     []ContextStats
	Replacements uint64
}

// Pool is a fixed set of evaluation contexts. A faulted context is replaced in its slot.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config
	logger *zap.Logger

	mu           sync.RWMutex
	contexts     []*Context
	replacements atomic.Uint64
}

// NewPool starts cfg.Contexts contexts. They stop when ctx is done or Close is called.
func NewPool(ctx context.Context, cfg Config, logger *zap.Logger) (*Pool, error) {
	cfg = cfg.normalized()
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		contexts: make([]*Context, cfg.Contexts),
	}

	ready := sync.WaitGroup{}
	for i := range p.contexts {
		c, err := p.spawn(i, &ready)
		if err != nil {
			cancel()
			return nil, err
		}
		p.contexts[i] = c
	}
	ready.Wait()
	return p, nil
}

func (p *Pool) spawn(index int, ready *sync.WaitGroup) (*Context, error) {
	c, err := newContext(p.cfg.QueueSize, p.cfg.InstanceCacheSize, p.logger)
	if err != nil {
		return nil, err
	}
	c.onFault = func(faulted *Context, cause error) {
		p.replace(index, faulted, cause)
	}
	ready.Add(1)
	c.start(p.ctx, ready)
	return c, nil
}

// Size returns the number of context slots.
func (p *Pool) Size() int {
	return p.cfg.Contexts
}

// Route returns the slot owning key.
func (p *Pool) Route(key Partitionable) int {
	switch n := p.Size(); n {
	case 1:
		return 0
	default:
		return int(xxhash.Sum64String(key.PartitionKey()) % uint64(n))
	}
}

// Do runs job on the context owning key.
func (p *Pool) Do(ctx context.Context, key Partitionable, job Job) (float64, error) {
	return p.DoOn(ctx, p.Route(key), job)
}

// DoOn runs job on the context in slot index and waits for its outcome.
//
// Once the job starts, it must finish within the configured budget; otherwise the
// context is replaced and the caller gets easing.ErrBudgetExceeded. Jobs still queued
// on a replaced context fail with easing.ErrContextDiscarded.
func (p *Pool) DoOn(ctx context.Context, index int, job Job) (float64, error) {
	if p.ctx.Err() != nil {
		return 0, easing.ErrRuntimeClosed
	}
	c := p.at(index)

	t := task{
		fn:      job,
		started: make(chan struct{}),
		reply:   make(chan outcome, 1),
	}
	select {
	case c.jobs <- t:
	case <-c.done:
		return 0, c.discardedError()
	case <-p.ctx.Done():
		return 0, easing.ErrRuntimeClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	started := t.started
	var budget <-chan time.Time
	for {
		select {
		case <-started:
			started = nil
			if p.cfg.Budget > 0 {
				timer := time.NewTimer(p.cfg.Budget)
				defer timer.Stop()
				budget = timer.C
			}
		case o := <-t.reply:
			return o.value, o.err
		case <-c.done:
			select {
			case o := <-t.reply:
				return o.value, o.err
			default:
				return 0, c.discardedError()
			}
		case <-budget:
			err := fmt.Errorf("%w: context %s: %s", easing.ErrBudgetExceeded, c.ID(), p.cfg.Budget)
			p.replace(index, c, err)
			return 0, err
		case <-p.ctx.Done():
			return 0, easing.ErrRuntimeClosed
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (p *Pool) at(index int) *Context {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.contexts[index]
}

// replace swaps a fresh context into slot index if old still occupies it, then discards old.
func (p *Pool) replace(index int, old *Context, cause error) {
	p.mu.Lock()
	if p.contexts[index] == old && p.ctx.Err() == nil {
		ready := sync.WaitGroup{}
		fresh, err := p.spawn(index, &ready)
		if err != nil {
			p.mu.Unlock()
			log.Eff(p.logger, log.LogError, "failed to replace evaluation context", map[string]interface{}{
				"context": old.ID().String(),
				"error":   err,
			})
			return
		}
		ready.Wait()
		p.contexts[index] = fresh
		p.replacements.Add(1)
		log.Eff(p.logger, log.LogWarn, "evaluation context replaced", map[string]interface{}{
			"slot":  index,
			"old":   old.ID().String(),
			"new":   fresh.ID().String(),
			"cause": cause,
		})
	}
	p.mu.Unlock()
	old.discard(cause)
}

// Stats returns a snapshot of every live context.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	stats := Stats{
		Contexts:     make([]ContextStats, len(p.contexts)),
		Replacements: p.replacements.Load(),
	}
	for i, c := range p.contexts {
		stats.Contexts[i] = ContextStats{
			ID:            c.ID().String(),
			Instances:     c.instances.Len(),
			Constructions: c.constructions.Load(),
			Evaluations:   c.evaluations.Load(),
		}
	}
	return stats
}

// Close stops every context. Later jobs fail with easing.ErrRuntimeClosed.
func (p *Pool) Close() {
	p.cancel()
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.contexts {
		c.discard(easing.ErrRuntimeClosed)
	}
}
