package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsRecorder receives one observation per drained command.
type MetricsRecorder interface {
	Observe(ctx context.Context, op string, success bool, duration time.Duration)
}

// Tracer opens a span around each drained command.
type Tracer interface {
	Start(ctx context.Context, op string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span, recording the command outcome.
type TraceSpan interface {
	End(err error)
}

var expvarSeq uint64

// ExpvarMetricsRecorder aggregates command timings and outcome counters and
// publishes them via expvar, for deployments that want process-local metrics
// without an external scrape target.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
}

// ExpvarMetricsSnapshot is a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs a recorder published under name. An
// empty name gets a generated unique one.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("rewind_command_metrics_%d", atomic.AddUint64(&expvarSeq, 1))
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for op, counts := range r.results {
		cp := make(map[string]int64, len(counts))
		for status, n := range counts {
			cp[status] = n
		}
		results[op] = cp
	}
	return ExpvarMetricsSnapshot{
		DurationsMS: durations,
		Results:     results,
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	if op == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.mu.Lock()
	r.durations[op] += float64(duration) / float64(time.Millisecond)
	if _, ok := r.results[op]; !ok {
		r.results[op] = make(map[string]int64, 2)
	}
	r.results[op][status]++
	r.mu.Unlock()
}

// JSONTraceEntry is one serialized command span.
type JSONTraceEntry struct {
	Op         string    `json:"op"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer writes command spans as JSON lines and retains them for
// inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	entries []JSONTraceEntry
	enc     *json.Encoder
}

// NewJSONTracer constructs a tracer emitting to w. A nil writer retains
// spans in memory only.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONTraceTracer{enc: enc}
}

// Entries returns a copy of all recorded spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]JSONTraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, op: op, started: time.Now().UTC()}
}

type jsonTraceSpan struct {
	tracer  *JSONTraceTracer
	op      string
	started time.Time
}

func (s *jsonTraceSpan) End(err error) {
	status := "success"
	var msg string
	if err != nil {
		status = "error"
		msg = err.Error()
	}
	ended := time.Now().UTC()
	entry := JSONTraceEntry{
		Op:         s.op,
		Status:     status,
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		Error:      msg,
		StartedAt:  s.started,
		EndedAt:    ended,
	}
	s.tracer.mu.Lock()
	s.tracer.entries = append(s.tracer.entries, entry)
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(entry)
	}
	s.tracer.mu.Unlock()
}
