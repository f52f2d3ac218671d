package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"rewindcore/pkg/domain"
)

type recordingRecorder struct {
	mu  sync.Mutex
	ops []string
	oks []bool
}

func (r *recordingRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.oks = append(r.oks, success)
	r.mu.Unlock()
}

type failingCommand struct{ err error }

func (c failingCommand) Name() string                    { return "fail" }
func (c failingCommand) Run(*domain.World, Logger) error { return c.err }

type orderProbe struct {
	name string
	seen *[]string
}

func (c orderProbe) Name() string { return c.name }
func (c orderProbe) Run(*domain.World, Logger) error {
	*c.seen = append(*c.seen, c.name)
	return nil
}

func TestDrainExecutesInEnqueueOrder(t *testing.T) {
	svc := NewService(domain.NewWorld())
	var seen []string
	svc.Enqueue(orderProbe{name: "a", seen: &seen})
	svc.Enqueue(orderProbe{name: "b", seen: &seen}, orderProbe{name: "c", seen: &seen})
	if svc.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", svc.Pending())
	}
	if err := svc.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if fmt.Sprint(seen) != "[a b c]" {
		t.Fatalf("execution order = %v", seen)
	}
	if svc.Pending() != 0 {
		t.Fatalf("queue not empty after drain: %d", svc.Pending())
	}
}

func TestDrainAbortsOnFirstFailure(t *testing.T) {
	svc := NewService(domain.NewWorld())
	var seen []string
	boom := errors.New("boom")
	svc.Enqueue(
		orderProbe{name: "a", seen: &seen},
		failingCommand{err: boom},
		orderProbe{name: "b", seen: &seen},
	)
	err := svc.Drain(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("drain error = %v, want wrapped boom", err)
	}
	if fmt.Sprint(seen) != "[a]" {
		t.Fatalf("commands after the failure ran: %v", seen)
	}
	// The failed command was consumed; the remainder stays queued.
	if svc.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", svc.Pending())
	}
}

func TestDrainHonorsContextBetweenCommands(t *testing.T) {
	svc := NewService(domain.NewWorld())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var seen []string
	svc.Enqueue(orderProbe{name: "a", seen: &seen})
	if err := svc.Drain(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("drain = %v, want context.Canceled", err)
	}
	if len(seen) != 0 {
		t.Fatalf("command ran after cancellation: %v", seen)
	}
}

func TestServiceObservesCommands(t *testing.T) {
	rec := &recordingRecorder{}
	freeze := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(domain.NewWorld(),
		WithMetrics(rec),
		WithClock(ClockFunc(func() time.Time { return freeze })),
	)
	if err := RegisterAction[setCounter](svc.World()); err != nil {
		t.Fatalf("register: %v", err)
	}

	svc.Enqueue(Perform(setCounter{Value: 2}), Undo{}, Redo{})
	if err := svc.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(rec.ops) != 3 {
		t.Fatalf("observed %d commands, want 3", len(rec.ops))
	}
	if rec.ops[1] != "undo" || rec.ops[2] != "redo" {
		t.Fatalf("observed ops = %v", rec.ops)
	}
	for i, ok := range rec.oks {
		if !ok {
			t.Fatalf("command %d observed as failure", i)
		}
	}
}

func TestServiceTracesFailures(t *testing.T) {
	tracer := NewJSONTracer(nil)
	svc := NewService(domain.NewWorld(), WithTracer(tracer))
	svc.Enqueue(failingCommand{err: errors.New("broken")})
	if err := svc.Drain(context.Background()); err == nil {
		t.Fatalf("drain should surface the failure")
	}
	entries := tracer.Entries()
	if len(entries) != 1 {
		t.Fatalf("traced %d spans, want 1", len(entries))
	}
	if entries[0].Status != "error" || entries[0].Error != "broken" {
		t.Fatalf("span = %+v", entries[0])
	}
}

func TestHistoryAccessors(t *testing.T) {
	svc := NewService(domain.NewWorld())
	if got := svc.History(); got.Len() != 0 {
		t.Fatalf("fresh service history len = %d", got.Len())
	}

	if err := RegisterAction[setCounter](svc.World()); err != nil {
		t.Fatalf("register: %v", err)
	}
	svc.Enqueue(Perform(setCounter{Value: 1}))
	if err := svc.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	snapshot := svc.History()
	if snapshot.Len() != 1 || snapshot.Index() != 1 {
		t.Fatalf("history snapshot len=%d index=%d", snapshot.Len(), snapshot.Index())
	}
	// The snapshot is detached from the live resource.
	snapshot.Back()
	if svc.History().Index() != 1 {
		t.Fatalf("mutating the snapshot leaked into the live history")
	}

	replacement := NewHistory()
	svc.ReplaceHistory(replacement)
	if svc.History().Len() != 0 {
		t.Fatalf("ReplaceHistory did not take effect")
	}
}

func TestOptionsIgnoreNil(t *testing.T) {
	svc := NewService(domain.NewWorld(), WithLogger(nil), WithClock(nil))
	if svc.logger == nil || svc.clock == nil {
		t.Fatalf("nil options overwrote defaults")
	}
}
