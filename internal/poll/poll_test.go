package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollerFiresImmediatelyAndStopsWithContext(t *testing.T) {
	var calls atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())

	p := &Poller{
		Interval: 10 * time.Millisecond,
		Resource: "test",
		Fetch: func(ctx context.Context) error {
			calls.Add(1)
			return nil
		},
	}
	done := make(chan struct{})
	go func() { p.Run(ctx); close(done) }()

	deadline := time.After(time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 fetches, got %d", calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPollerKickTriggersFetch(t *testing.T) {
	var calls atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &Poller{
		Interval: time.Hour, // only the initial fire and kicks
		Resource: "test",
		Fetch: func(ctx context.Context) error {
			calls.Add(1)
			return nil
		},
	}
	go p.Run(ctx)

	deadline := time.After(time.Second)
	for calls.Load() < 1 {
		select {
		case <-deadline:
			t.Fatal("initial fetch never happened")
		case <-time.After(time.Millisecond):
		}
	}

	p.Kick()
	deadline = time.After(time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("kick did not trigger a fetch, calls=%d", calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWSURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://api.example.com/", "wss://api.example.com/ws"},
		{"localhost:8080", "localhost:8080/ws"},
	}
	for _, c := range cases {
		if got := WSURL(c.in); got != c.want {
			t.Errorf("WSURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPollerSkipsTickWhileFetchInFlight(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &Poller{
		Interval: 5 * time.Millisecond,
		Resource: "test",
		Fetch: func(ctx context.Context) error {
			calls.Add(1)
			<-release
			return nil
		},
	}
	go p.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 in-flight fetch, got %d", got)
	}
	close(release)
}
