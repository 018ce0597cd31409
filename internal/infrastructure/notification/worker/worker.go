package worker

import (
	"context"

	appnotification "github.com/Zhima-Mochi/minishop-cart/internal/application/notification"
	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domnotification "github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	workerpresentation "github.com/Zhima-Mochi/minishop-cart/internal/presentation/worker"
)

const componentNotificationWorker = "notification_worker"

// Worker consumes cart events: notifications go to the feed, commits are counted.
type Worker struct {
	subscriber    domoutbox.Subscriber
	feed          *appnotification.Feed
	log           observability.Logger
	notifications observability.Counter
	commits       observability.Counter
}

func New(subscriber domoutbox.Subscriber, feed *appnotification.Feed, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		subscriber:    subscriber,
		feed:          feed,
		log:           tel.Logger().With(observability.F("component", componentNotificationWorker)),
		notifications: tel.Metrics().Counter(observability.MCartNotifications),
		commits:       tel.Metrics().Counter(observability.MCartCommits),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(domnotification.NotificationRaisedEvent{}.EventName(), w.handleNotificationRaised)
	w.subscriber.Subscribe(domcart.CartCommittedEvent{}.EventName(), w.handleCartCommitted)
}

func (w *Worker) handleNotificationRaised(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domnotification.NotificationRaisedEvent)
	if !ok {
		return nil
	}
	n := evt.Notification
	_, logger := workerpresentation.WithEventContext(ctx, w.log, map[string]string{
		"event":    e.EventName(),
		"event_id": n.ID,
	})

	if w.feed != nil {
		w.feed.Append(n)
	}
	w.notifications.Add(1, observability.L("kind", string(n.Kind)))
	logger.Warn("cart_notification",
		observability.F("kind", string(n.Kind)),
		observability.F("message", n.Message),
		observability.F("product_id", n.ProductID),
	)
	return nil
}

func (w *Worker) handleCartCommitted(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domcart.CartCommittedEvent)
	if !ok {
		return nil
	}
	_, logger := workerpresentation.WithEventContext(ctx, w.log, map[string]string{
		"event": e.EventName(),
	})

	w.commits.Add(1, observability.L("operation", evt.Operation))
	logger.Info("cart_committed",
		observability.F("operation", evt.Operation),
		observability.F("product_id", evt.ProductID),
		observability.F("items", evt.Items),
		observability.F("quantity", evt.Quantity),
	)
	return nil
}
