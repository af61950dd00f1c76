// Package notify delivers late-definition invalidation signals to the host.
//
// A consumer that depended on a lookup of an undefined name is recorded in the
// registry. When the name is registered, the notifier emits exactly one
// Invalidation per recorded consumer, synchronously, after the registry write
// has committed.
package notify

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/log"
	"github.com/on-the-ground/easing_ive_go/registry"
)

//go:generate mockgen -destination=mock_handler.go -package=notify . Handler

// Handler receives invalidation signals. It is the host's onLateDefine callback.
type Handler interface {
	OnLateDefine(inv Invalidation)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(inv Invalidation)

func (f HandlerFunc) OnLateDefine(inv Invalidation) {
	f(inv)
}

// TimeSpan brackets the moment a signal was emitted.
type TimeSpan = timespan.TimeSpan

const epsilon = time.Millisecond

// Now returns a narrow span around the current instant.
func Now() TimeSpan {
	now := time.Now()
	return timespan.BetweenTimes(now.Add(-1*epsilon), now.Add(epsilon))
}

// Invalidation tells a consumer that a name it depended on is now defined.
type Invalidation struct {
	Name     string
	Consumer easing.ConsumerHandle
	At       TimeSpan
}

// Notifier couples the registry's pending set with the host handler.
type Notifier struct {
	reg       *registry.Registry
	handler   Handler
	logger    *zap.Logger
	delivered atomic.Int64
}

// New creates a notifier. A nil handler drops signals; a nil logger disables logging.
func New(reg *registry.Registry, handler Handler, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{reg: reg, handler: handler, logger: logger}
}

// Subscribe registers consumer for a late definition of name.
// It returns false when name is already defined or consumer is empty.
func (n *Notifier) Subscribe(name string, consumer easing.ConsumerHandle) bool {
	if consumer == "" {
		return false
	}
	return n.reg.Track(name, consumer, nil)
}

// Register commits def to the registry and then notifies every consumer that
// was waiting for it. It returns the validation or redefinition error, if any.
func (n *Notifier) Register(def easing.Definition) error {
	drained, err := n.reg.Register(def)
	if err != nil {
		return err
	}
	n.Notify(def.Name, drained)
	return nil
}

// Notify emits one signal per distinct consumer among the drained records and
// returns the number of signals delivered. Anonymous records only cleared the
// pending state and produce no signal.
func (n *Notifier) Notify(name string, drained []registry.Pending) int {
	seen := make(map[easing.ConsumerHandle]struct{}, len(drained))
	count := 0
	for _, p := range drained {
		if p.Consumer == "" {
			continue
		}
		if _, dup := seen[p.Consumer]; dup {
			continue
		}
		seen[p.Consumer] = struct{}{}
		if n.deliver(Invalidation{Name: name, Consumer: p.Consumer, At: Now()}) {
			count++
		}
	}
	if count > 0 {
		log.Eff(n.logger, log.LogDebug, "late definition invalidated consumers", map[string]interface{}{
			"name":      name,
			"consumers": count,
		})
	}
	return count
}

// Delivered returns the total number of signals handed to the handler.
func (n *Notifier) Delivered() int64 {
	return n.delivered.Load()
}

func (n *Notifier) deliver(inv Invalidation) (ok bool) {
	if n.handler == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			log.Eff(n.logger, log.LogError, "panic in invalidation handler", map[string]interface{}{
				"name":     inv.Name,
				"consumer": string(inv.Consumer),
				"error":    fmt.Sprint(r),
			})
		}
	}()
	n.handler.OnLateDefine(inv)
	n.delivered.Add(1)
	return true
}
