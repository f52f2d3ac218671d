package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "undo", true, 2*time.Millisecond)
	rec.Observe(ctx, "undo", true, 3*time.Millisecond)
	rec.Observe(ctx, "undo", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	if got := snap.DurationsMS["undo"]; got != 6 {
		t.Fatalf("undo durations = %v ms, want 6", got)
	}
	if snap.Results["undo"]["success"] != 2 || snap.Results["undo"]["error"] != 1 {
		t.Fatalf("undo results = %v", snap.Results["undo"])
	}
	if rec.Name() == "" {
		t.Fatalf("generated expvar name is empty")
	}
}

func TestExpvarSnapshotIsDetached(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.Observe(context.Background(), "redo", true, time.Millisecond)
	snap := rec.Snapshot()
	snap.Results["redo"]["success"] = 99
	if rec.Snapshot().Results["redo"]["success"] != 1 {
		t.Fatalf("snapshot mutation leaked into the recorder")
	}
}

func TestJSONTracerEmitsAndRetains(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "perform")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "undo")
	span.End(errors.New("detached"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("retained %d entries, want 2", len(entries))
	}
	if entries[0].Op != "perform" || entries[0].Status != "success" {
		t.Fatalf("first span = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "detached" {
		t.Fatalf("second span = %+v", entries[1])
	}

	dec := json.NewDecoder(&buf)
	var lines int
	for dec.More() {
		var entry JSONTraceEntry
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode emitted span: %v", err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("emitted %d JSON lines, want 2", lines)
	}
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	ctx := context.Background()
	rec.Observe(ctx, "perform rewindcore/internal/game.SetLevel", true, 5*time.Millisecond)
	rec.Observe(ctx, "undo", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	if got := testutil.ToFloat64(rec.results.WithLabelValues("undo", "error")); got != 1 {
		t.Fatalf("undo error counter = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 1 {
		t.Fatalf("duration series = %d, want 1", got)
	}
}

func TestPrometheusRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first construct: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("second registration on the same registry should fail")
	}
}
