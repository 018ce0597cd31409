package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	domnotification "github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/zaplogger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextualDeliversToScopedRecorder(t *testing.T) {
	rec := &Recorder{}
	ctx := WithRecorder(context.Background(), rec)
	n := domnotification.New(domnotification.KindRemoveFailed, 1)

	Contextual{}.Notify(ctx, n)
	Contextual{}.Notify(context.Background(), n)

	got := rec.Notifications()
	if len(got) != 1 || got[0].ID != n.ID {
		t.Fatalf("recorded %+v", got)
	}
}

func TestMultiAndBus(t *testing.T) {
	var published []domoutbox.Event
	pub := domoutbox.PublisherFunc(func(_ context.Context, e domoutbox.Event) error {
		published = append(published, e)
		return nil
	})
	rec := &Recorder{}
	n := domnotification.New(domnotification.KindInsufficientStock, 2)

	Multi{rec, nil, NewBus(pub, nil)}.Notify(context.Background(), n)

	if len(rec.Notifications()) != 1 {
		t.Fatal("recorder missed the notification")
	}
	if len(published) != 1 {
		t.Fatalf("expected one event, got %d", len(published))
	}
	evt, ok := published[0].(domnotification.NotificationRaisedEvent)
	if !ok || evt.Notification.ID != n.ID || evt.EventName() != "cart.notification" {
		t.Fatalf("unexpected event %#v", published[0])
	}
}

func TestBusLogsPublishFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pub := domoutbox.PublisherFunc(func(context.Context, domoutbox.Event) error { return errors.New("stopped") })

	NewBus(pub, zaplogger.New(zap.New(core))).Notify(context.Background(), domnotification.New(domnotification.KindAddFailed, 1))

	if logs.FilterMessage("notification_publish_failed").Len() != 1 {
		t.Fatalf("expected a publish failure log, got %v", logs.All())
	}
}

func TestBusBoundsPublishWithDeadline(t *testing.T) {
	var remaining time.Duration
	var bounded bool
	pub := domoutbox.PublisherFunc(func(ctx context.Context, _ domoutbox.Event) error {
		var deadline time.Time
		deadline, bounded = ctx.Deadline()
		remaining = time.Until(deadline)
		return ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	core, logs := observer.New(zapcore.DebugLevel)
	NewBus(pub, zaplogger.New(zap.New(core))).Notify(ctx, domnotification.New(domnotification.KindAddFailed, 1))

	if !bounded {
		t.Fatal("publish context has no deadline")
	}
	if remaining <= 0 || remaining > publishTimeout {
		t.Fatalf("remaining %v, want within (0, %v]", remaining, publishTimeout)
	}
	if logs.Len() != 0 {
		t.Fatalf("cancelled caller must not fail the publish: %v", logs.All())
	}
}
