package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(nil)
	var mu sync.Mutex
	var got []string
	var wg sync.WaitGroup
	wg.Add(2)

	record := func(tag string) domoutbox.Handler {
		return func(_ context.Context, e domoutbox.Event) error {
			defer wg.Done()
			mu.Lock()
			got = append(got, tag+":"+e.EventName())
			mu.Unlock()
			return nil
		}
	}
	bus.Subscribe("cart.committed", record("a"))
	bus.Subscribe("cart.committed", record("b"))

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	if err := bus.Publish(context.Background(), testEvent{name: "cart.committed"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitOrFail(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", got)
	}
}

func TestBusSurvivesHandlerPanicAndError(t *testing.T) {
	bus := NewBus(nil, WithConcurrency(1))
	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe("cart.notification", func(context.Context, domoutbox.Event) error { panic("boom") })
	bus.Subscribe("cart.notification", func(context.Context, domoutbox.Event) error { return errors.New("nope") })
	bus.Subscribe("cart.notification", func(context.Context, domoutbox.Event) error {
		wg.Done()
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	if err := bus.Publish(context.Background(), testEvent{name: "cart.notification"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitOrFail(t, &wg)
}

func TestBusStopDrainsAndRejects(t *testing.T) {
	bus := NewBus(nil, WithQueueSize(4))
	var wg sync.WaitGroup
	wg.Add(3)
	bus.Subscribe("cart.committed", func(context.Context, domoutbox.Event) error {
		wg.Done()
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := bus.Publish(context.Background(), testEvent{name: "cart.committed"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	bus.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	bus.Stop(ctx)
	waitOrFail(t, &wg)

	if err := bus.Publish(context.Background(), testEvent{name: "cart.committed"}); !errors.Is(err, ErrBusStopped) {
		t.Fatalf("expected ErrBusStopped, got %v", err)
	}
}

func TestPublishHonoursContextWhenQueueFull(t *testing.T) {
	bus := NewBus(nil, WithQueueSize(1))
	if err := bus.Publish(context.Background(), testEvent{name: "x"}); err != nil {
		t.Fatalf("first publish: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := bus.Publish(ctx, testEvent{name: "x"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for handlers")
	}
}
