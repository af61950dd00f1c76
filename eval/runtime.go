// Package eval is the host boundary of an easing runtime.
//
// A Runtime is one isolation domain: it owns a registry of definitions, a pool
// of evaluation contexts, a value cache and an invalidation notifier. Every
// host-facing call is total; faults in user logic come back as invalid results.
package eval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/on-the-ground/easing_ive_go/config"
	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/internal/evalctx"
	"github.com/on-the-ground/easing_ive_go/log"
	"github.com/on-the-ground/easing_ive_go/notify"
	"github.com/on-the-ground/easing_ive_go/registry"
	"github.com/on-the-ground/easing_ive_go/valuecache"
)

// Instance is a bound (definition, canonical arguments) pair.
type Instance struct {
	Key  easing.InstanceKey
	Def  easing.Definition
	Args easing.Args
}

// Stats is a snapshot of runtime counters.
type Stats struct {
	Definitions   int
	Bindings      int
	Invalidations int64
	Values        valuecache.Stats
	Pool          evalctx.Stats
}

// Runtime evaluates registered easings on behalf of a host.
type Runtime struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *registry.Registry
	notifier *notify.Notifier
	pool     *evalctx.Pool
	values   *valuecache.Cache

	// bindings remembers how recent instance keys constructed, so that later
	// requests skip the construction round trip. Values are struct{} or error.
	bindings *lru.Cache
	closeFns []func()
	closed   atomic.Bool
}

// New starts a runtime.
func New(cfg config.Config, opts ...Option) (*Runtime, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	reg, err := registry.New()
	if err != nil {
		return nil, err
	}
	bindings, err := lru.New(cfg.BindingCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create binding cache: %w", err)
	}

	r := &Runtime{
		cfg:      cfg,
		logger:   o.logger,
		registry: reg,
		notifier: notify.New(reg, o.handler, o.logger),
		bindings: bindings,
	}

	store := o.store
	if store == nil {
		switch cfg.ValueStore {
		case config.StoreRistretto:
			rs, err := valuecache.NewRistrettoStore(cfg.ValueCacheSize)
			if err != nil {
				return nil, err
			}
			r.closeFns = append(r.closeFns, rs.Close)
			store = rs
		default:
			store = valuecache.NewTrieStore(cfg.ValueCacheSize)
		}
	}
	r.values = valuecache.New(store)

	r.pool, err = evalctx.NewPool(context.Background(), evalctx.Config{
		Contexts:          cfg.Contexts,
		QueueSize:         cfg.QueueSize,
		InstanceCacheSize: cfg.InstanceCacheSize,
		Budget:            cfg.Budget(),
	}, o.logger)
	if err != nil {
		return nil, err
	}

	log.Eff(r.logger, log.LogInfo, "easing runtime started", map[string]interface{}{
		"contexts":    cfg.Contexts,
		"value_store": string(cfg.ValueStore),
		"eval_budget": cfg.Budget().String(),
	})
	return r, nil
}

// RegisterEasing validates and registers def, then signals every consumer that
// looked it up while it was undefined.
func (r *Runtime) RegisterEasing(def easing.Definition) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %q: %w", easing.ErrValidationRejected, def.Name, evalctx.Recover(p))
			log.Eff(r.logger, log.LogError, "panic while registering easing", map[string]interface{}{
				"name":  def.Name,
				"error": err,
			})
		}
	}()
	if r.closed.Load() {
		return easing.ErrRuntimeClosed
	}
	if err := r.notifier.Register(def); err != nil {
		log.Eff(r.logger, log.LogWarn, "easing registration rejected", map[string]interface{}{
			"name":  def.Name,
			"error": err,
		})
		return err
	}
	log.Eff(r.logger, log.LogInfo, "easing registered", map[string]interface{}{
		"definition": def.String(),
	})
	return nil
}

// RegisterModule registers every definition. Valid definitions are kept even
// when others are rejected; the rejections are combined into one error.
func (r *Runtime) RegisterModule(defs ...easing.Definition) error {
	var errs error
	for _, def := range defs {
		errs = multierr.Append(errs, r.RegisterEasing(def))
	}
	return errs
}

// Lookup returns the definition registered under name.
func (r *Runtime) Lookup(name string) (easing.Definition, bool) {
	return r.registry.Lookup(name)
}

// Names lists every registered name in order.
func (r *Runtime) Names() []string {
	return r.registry.Names()
}

// WaitDefined blocks until name is registered or ctx is done.
func (r *Runtime) WaitDefined(ctx context.Context, name string) error {
	return r.registry.WaitDefined(ctx, name)
}

// SubscribeInvalidation asks for a signal when name gets defined.
// It returns false when name is already defined.
func (r *Runtime) SubscribeInvalidation(name string, consumer easing.ConsumerHandle) bool {
	return r.notifier.Subscribe(name, consumer)
}

// Bind resolves name and tokens to a live instance.
//
// An undefined name is recorded for consumer and yields ReasonUndefined. Bad
// arguments and construction faults yield ReasonInvalidArguments.
func (r *Runtime) Bind(ctx context.Context, name string, tokens []easing.Token, consumer easing.ConsumerHandle) (Instance, easing.Result) {
	def, ok := r.registry.Lookup(name)
	if !ok {
		if r.registry.Track(name, consumer, tokens) {
			if r.logger.Core().Enabled(zap.DebugLevel) {
				log.Eff(r.logger, log.LogDebug, "easing requested before definition", map[string]interface{}{
					"name":     name,
					"consumer": string(consumer),
					"waiting":  len(r.registry.Pending(name)),
				})
			}
			return Instance{}, easing.Invalid(easing.ReasonUndefined, fmt.Errorf("%w: %q", easing.ErrUndefined, name))
		}
		// defined between the lookup and the tracking write
		if def, ok = r.registry.Lookup(name); !ok {
			return Instance{}, easing.Invalid(easing.ReasonUndefined, fmt.Errorf("%w: %q", easing.ErrUndefined, name))
		}
	}

	args, err := easing.Coerce(def, tokens)
	if err != nil {
		log.Eff(r.logger, log.LogDebug, "easing arguments rejected", map[string]interface{}{
			"name":  name,
			"error": err,
		})
		return Instance{}, easing.Invalid(easing.ReasonInvalidArguments, err)
	}

	inst := Instance{Key: easing.KeyOf(name, args), Def: def, Args: args}
	if cached, ok := r.bindings.Get(inst.Key); ok {
		if err, _ := cached.(error); err != nil {
			return Instance{}, easing.Invalid(easing.ReasonInvalidArguments, err)
		}
		return inst, easing.Ok(0)
	}

	_, err = r.pool.Do(ctx, inst.Key, func(c *evalctx.Context) (float64, error) {
		_, err := c.Instance(inst.Key, inst.Def, inst.Args)
		return 0, err
	})
	switch {
	case err == nil:
		r.bindings.Add(inst.Key, struct{}{})
		return inst, easing.Ok(0)
	case errors.Is(err, easing.ErrInvalidArguments) && !transient(err):
		log.Eff(r.logger, log.LogDebug, "easing construction failed", map[string]interface{}{
			"instance": string(inst.Key),
			"error":    err,
		})
		r.bindings.Add(inst.Key, err)
		return Instance{}, easing.Invalid(easing.ReasonInvalidArguments, err)
	default:
		return Instance{}, easing.Invalid(easing.ReasonErrored, err)
	}
}

// Evaluate returns the value of inst at progress. Progress is never clamped.
func (r *Runtime) Evaluate(ctx context.Context, inst Instance, progress float64) easing.Result {
	key := valuecache.Key{Instance: inst.Key, Progress: progress}
	return r.values.Get(ctx, key, func(ctx context.Context) (valuecache.Entry, bool) {
		return r.compute(ctx, -1, inst, progress)
	}).Result()
}

// RequestEasingValue binds and evaluates one request. It never panics.
func (r *Runtime) RequestEasingValue(ctx context.Context, req easing.Request) (res easing.Result) {
	defer func() {
		if p := recover(); p != nil {
			err := evalctx.Recover(p)
			log.Eff(r.logger, log.LogError, "panic at easing boundary", map[string]interface{}{
				"name":  req.Name,
				"error": err,
			})
			res = easing.Invalid(easing.ReasonErrored, err)
		}
	}()

	if r.closed.Load() {
		return easing.Invalid(easing.ReasonErrored, easing.ErrRuntimeClosed)
	}
	inst, res := r.Bind(ctx, req.Name, req.Args, req.Consumer)
	if !res.OK() {
		return res
	}
	return r.Evaluate(ctx, inst, req.Progress)
}

// compute runs inst at progress on the context in slot, or on the owning context when slot is negative.
// The boolean reports whether the entry may be memoized.
func (r *Runtime) compute(ctx context.Context, slot int, inst Instance, progress float64) (valuecache.Entry, bool) {
	job := func(c *evalctx.Context) (float64, error) {
		e, err := c.Instance(inst.Key, inst.Def, inst.Args)
		if err != nil {
			return 0, err
		}
		v, err := e.Ease(progress)
		if err != nil {
			return 0, fmt.Errorf("%w: %s at %v: %w", easing.ErrErrored, inst.Key, progress, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s at %v: %v", easing.ErrNonFinite, inst.Key, progress, v)
		}
		return v, nil
	}

	var (
		v   float64
		err error
	)
	if slot < 0 {
		v, err = r.pool.Do(ctx, inst.Key, job)
	} else {
		v, err = r.pool.DoOn(ctx, slot, job)
	}
	if err != nil {
		log.Eff(r.logger, log.LogDebug, "easing evaluation errored", map[string]interface{}{
			"instance": string(inst.Key),
			"progress": progress,
			"error":    err,
		})
		return valuecache.Entry{Err: err}, !transient(err)
	}
	return valuecache.Entry{Value: v}, true
}

// transient errors depend on the state of the runtime or the caller rather than
// on (instance, progress) and must not be memoized.
func transient(err error) bool {
	for _, target := range []error{
		easing.ErrContextFault,
		easing.ErrContextDiscarded,
		easing.ErrBudgetExceeded,
		easing.ErrRuntimeClosed,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Stats returns a snapshot of the runtime counters.
func (r *Runtime) Stats() Stats {
	return Stats{
		Definitions:   r.registry.Len(),
		Bindings:      r.bindings.Len(),
		Invalidations: r.notifier.Delivered(),
		Values:        r.values.Stats(),
		Pool:          r.pool.Stats(),
	}
}

// Close stops every evaluation context. Later requests yield ErrRuntimeClosed.
func (r *Runtime) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.pool.Close()
	for _, fn := range r.closeFns {
		fn()
	}
	log.Eff(r.logger, log.LogInfo, "easing runtime closed", nil)
}
