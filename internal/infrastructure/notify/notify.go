package notify

import (
	"context"
	"sync"
	"time"

	domnotification "github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"
)

// Recorder collects notifications in delivery order.
type Recorder struct {
	mu  sync.Mutex
	got []domnotification.Notification
}

func (r *Recorder) Notify(_ context.Context, n domnotification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

// Notifications returns a copy of everything recorded so far.
func (r *Recorder) Notifications() []domnotification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domnotification.Notification, len(r.got))
	copy(out, r.got)
	return out
}

type recorderKey struct{}

// WithRecorder scopes r to ctx; Contextual delivers to it.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	if r == nil {
		return ctx
	}
	return context.WithValue(ctx, recorderKey{}, r)
}

func FromContext(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}

// Contextual forwards to the recorder on the call's context, if any.
type Contextual struct{}

func (Contextual) Notify(ctx context.Context, n domnotification.Notification) {
	if r := FromContext(ctx); r != nil {
		r.Notify(ctx, n)
	}
}

const publishTimeout = 300 * time.Millisecond

// Bus publishes every notification as a NotificationRaisedEvent. Publish
// errors are logged and dropped.
type Bus struct {
	publisher domoutbox.Publisher
	log       observability.Logger
}

func NewBus(publisher domoutbox.Publisher, logger observability.Logger) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Bus{publisher: publisher, log: logger.With(observability.F("component", "notify_bus"))}
}

func (b *Bus) Notify(ctx context.Context, n domnotification.Notification) {
	if b.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := b.publisher.Publish(pubCtx, domnotification.NotificationRaisedEvent{Notification: n}); err != nil {
		logctx.FromOr(ctx, b.log).Warn("notification_publish_failed",
			observability.F("kind", string(n.Kind)),
			observability.F("error", err),
		)
	}
}

// Multi delivers to every notifier in order.
type Multi []domnotification.Notifier

func (m Multi) Notify(ctx context.Context, n domnotification.Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(ctx, n)
		}
	}
}
