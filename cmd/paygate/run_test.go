package main

import (
	"context"
	"errors"
	"os"
	"testing"
)

type appStub struct {
	startErr error
	stopErr  error
	done     chan os.Signal
	stopped  bool
}

func (a *appStub) Start(context.Context) error { return a.startErr }

func (a *appStub) Stop(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	a.stopped = true
	return a.stopErr
}

func (a *appStub) Done() <-chan os.Signal { return a.done }

func TestRunStopsOnContextCancel(t *testing.T) {
	app := &appStub{done: make(chan os.Signal)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := run(ctx, app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !app.stopped {
		t.Fatal("expected application to be stopped")
	}
}

func TestRunStopsOnShutdownSignal(t *testing.T) {
	app := &appStub{done: make(chan os.Signal, 1)}
	app.done <- os.Interrupt

	if err := run(context.Background(), app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !app.stopped {
		t.Fatal("expected application to be stopped")
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")

	if err := run(context.Background(), &appStub{startErr: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, &appStub{stopErr: boom, done: make(chan os.Signal)}); !errors.Is(err, boom) {
		t.Fatalf("expected stop error, got %v", err)
	}
}
