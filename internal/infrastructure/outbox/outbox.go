package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"
)

const (
	componentOutbox    = "outbox"
	defaultQueueSize   = 1024
	defaultConcurrency = 8
	handlerTimeout     = 30 * time.Second
)

var ErrBusStopped = errors.New("outbox: bus stopped")

// Bus is an in-memory event bus that fans cart events out to subscribers.
// It is not durable: events still queued when the process exits are lost.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string][]domoutbox.Handler
	queue       chan domoutbox.Event
	stateMu     sync.RWMutex // guards stopped and the close of queue
	stopped     bool
	startOnce   sync.Once
	stopOnce    sync.Once
	done        chan struct{}
	cancel      context.CancelFunc
	concurrency int
	log         observability.Logger
}

type Option func(*Bus)

// WithQueueSize sets the buffered queue length.
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan domoutbox.Event, n)
		}
	}
}

// WithConcurrency caps how many handlers run at once for one event.
func WithConcurrency(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func NewBus(logger observability.Logger, opts ...Option) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	b := &Bus{
		subs:        make(map[string][]domoutbox.Handler),
		queue:       make(chan domoutbox.Event, defaultQueueSize),
		done:        make(chan struct{}),
		concurrency: defaultConcurrency,
		log:         logger.With(observability.F("component", componentOutbox)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop closes the queue and waits until already queued events are dispatched
// or ctx expires.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		b.stateMu.Lock()
		b.stopped = true
		close(b.queue)
		b.stateMu.Unlock()

		started := b.cancel != nil
		if started {
			select {
			case <-b.done:
			case <-ctx.Done():
			}
			b.cancel()
		}

		logctx.FromOr(ctx, b.log).Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))

	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	if b.stopped {
		logger.Warn("event_enqueue_rejected", observability.F("error", ErrBusStopped))
		return ErrBusStopped
	}

	select {
	case b.queue <- e:
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted",
			observability.F("error", ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-b.queue:
			if !ok {
				return
			}
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	logger := b.log.With(observability.F("event", name))
	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	ctx = logctx.With(context.WithoutCancel(ctx), logger)

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			defer cancel()
			if err := h(hctx, e); err != nil {
				logger.Warn("event_handler_error",
					observability.F("error", err),
				)
			}
		}()
	}

	wg.Wait()

	logger.Debug("event_fanned_out",
		observability.F("handlers", len(handlers)),
	)
}
