package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/plantline/opsconsole/internal/domain/event"
)

func TestDispatchRunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher(nil)
	defer d.Close()

	var order []string
	var mu sync.Mutex
	record := func(name string) Handler {
		return func(ctx context.Context, evt *event.Event) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	d.SubscribeNamed(event.TypeShiftStarted, "first", record("first"))
	d.SubscribeNamed(event.TypeShiftStarted, "second", record("second"))
	d.SubscribeNamed(event.TypeShiftEnded, "other", record("other"))

	evt := event.NewEvent(event.TypeShiftStarted, "shift-1", nil)
	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handler order = %v, want [first second]", order)
	}
}

func TestDispatchStopsOnFirstError(t *testing.T) {
	d := NewDispatcher(nil)
	defer d.Close()

	boom := errors.New("boom")
	var secondRan bool

	d.SubscribeNamed(event.TypeConfigSaved, "failing", func(ctx context.Context, evt *event.Event) error {
		return boom
	})
	d.SubscribeNamed(event.TypeConfigSaved, "after", func(ctx context.Context, evt *event.Event) error {
		secondRan = true
		return nil
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeConfigSaved, "client-1", nil))
	if !errors.Is(err, boom) {
		t.Errorf("Dispatch() error = %v, want wrapped boom", err)
	}
	if secondRan {
		t.Error("handlers after a failure must not run")
	}
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d := NewDispatcher(nil)
	defer d.Close()

	d.SubscribeNamed(event.TypeStepConfirmed, "panicky", func(ctx context.Context, evt *event.Event) error {
		panic("handler exploded")
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStepConfirmed, "shift-1", nil))
	if err == nil {
		t.Fatal("a panicking handler should surface as an error")
	}
}

func TestDispatchAsyncCompletesBeforeClose(t *testing.T) {
	d := NewDispatcher(nil)

	var count atomic.Int32
	d.Subscribe(event.TypeShiftEnded, func(ctx context.Context, evt *event.Event) error {
		count.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		d.DispatchAsync(context.Background(), event.NewEvent(event.TypeShiftEnded, "shift-1", nil))
	}

	// Close waits for in-flight async handlers
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := count.Load(); got != 5 {
		t.Errorf("handled %d events, want 5", got)
	}
}

func TestUnsubscribeRemovesHandler(t *testing.T) {
	d := NewDispatcher(nil)
	defer d.Close()

	var ran bool
	d.SubscribeNamed(event.TypeConfigReset, "audit", func(ctx context.Context, evt *event.Event) error {
		ran = true
		return nil
	})
	d.Unsubscribe(event.TypeConfigReset, "audit")

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeConfigReset, "client-1", nil)); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if ran {
		t.Error("unsubscribed handler must not run")
	}
	if handlers := d.ListHandlers(event.TypeConfigReset); len(handlers) != 0 {
		t.Errorf("ListHandlers() = %d entries, want 0", len(handlers))
	}
}

func TestConcurrentSubscribeGeneratesUniqueNames(t *testing.T) {
	d := NewDispatcher(nil)
	defer d.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Subscribe(event.TypeStepReopened, func(ctx context.Context, evt *event.Event) error {
				return nil
			})
		}()
	}
	wg.Wait()

	handlers := d.ListHandlers(event.TypeStepReopened)
	if len(handlers) != 20 {
		t.Fatalf("ListHandlers() = %d entries, want 20", len(handlers))
	}
	seen := make(map[string]bool, len(handlers))
	for _, h := range handlers {
		if seen[h.Name] {
			t.Errorf("duplicate generated handler name %q", h.Name)
		}
		seen[h.Name] = true
	}
}

func TestDispatchAfterCloseFails(t *testing.T) {
	d := NewDispatcher(nil)
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeShiftStarted, "shift-1", nil)); err == nil {
		t.Error("Dispatch after Close should fail")
	}
	if err := d.Close(); err == nil {
		t.Error("double Close should fail")
	}
}
