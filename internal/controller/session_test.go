package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mcconnect/actuator-node/internal/infrastructure/logging"
)

func TestConnectRetriesUntilSuccess(t *testing.T) {
	dialer := NewMockDialer(NewMockSession()).FailTimes(2)

	var mu sync.Mutex
	var sleeps []time.Duration

	m := newConnectionManager(dialer, 5*time.Second, logging.Default())
	m.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		sleeps = append(sleeps, d)
		mu.Unlock()
		return nil
	}

	session, err := m.connect(context.Background())
	if err != nil {
		t.Fatalf("connect() error = %v", err)
	}
	if session == nil {
		t.Fatal("connect() returned nil session")
	}

	if got := dialer.Calls(); got != 3 {
		t.Errorf("dial attempts = %d, want 3", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(sleeps) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 5*time.Second {
			t.Errorf("retry delay = %v, want fixed 5s", d)
		}
	}
}

func TestConnectCancelled(t *testing.T) {
	// The script is empty so every dial fails; only cancellation stops it.
	dialer := NewMockDialer()

	ctx, cancel := context.WithCancel(context.Background())

	m := newConnectionManager(dialer, 5*time.Second, logging.Default())
	m.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := m.connect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("connect() error = %v, want context.Canceled", err)
	}
}

func TestSleepCtx(t *testing.T) {
	if err := sleepCtx(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepCtx() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepCtx() with cancelled ctx error = %v, want context.Canceled", err)
	}
}

func TestDialerFunc(t *testing.T) {
	want := NewMockSession()
	d := DialerFunc(func() (Session, error) { return want, nil })

	got, err := d.Dial()
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if got != Session(want) {
		t.Error("Dial() did not return the wrapped session")
	}
}
