package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rewindcore/pkg/domain"
)

// Clock supplies the current time for command timing.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Service owns the world and the command queue. Commands enqueue from
// anywhere; Drain executes them one at a time in enqueue order, so no two
// commands ever run concurrently against the world and no history mutation
// is observable mid-flight.
type Service struct {
	world   *domain.World
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer

	mu    sync.Mutex
	queue []Command
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the engine logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the timing source, mostly for tests.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetrics installs a metrics recorder observing every drained command.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer installs a tracer spanning every drained command.
func WithTracer(t Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService constructs a service around an existing world.
func NewService(world *domain.World, opts ...Option) *Service {
	s := &Service{
		world:  world,
		clock:  ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// World returns the world the service executes against.
func (s *Service) World() *domain.World { return s.world }

// Enqueue appends commands to the pending queue.
func (s *Service) Enqueue(cmds ...Command) {
	s.mu.Lock()
	s.queue = append(s.queue, cmds...)
	s.mu.Unlock()
}

// Pending returns the number of queued commands.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Drain executes every pending command in enqueue order. The first failing
// command aborts the drain and its error is returned; commands already
// executed stay committed. Context cancellation is honored between commands,
// never inside one.
func (s *Service) Drain(ctx context.Context) error {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return nil
		}
		cmd := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.run(ctx, cmd); err != nil {
			return err
		}
	}
}

func (s *Service) run(ctx context.Context, cmd Command) error {
	op := cmd.Name()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}
	start := s.clock.Now()
	err := cmd.Run(s.world, s.logger)
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, s.clock.Now().Sub(start))
	}
	if span != nil {
		span.End(err)
	}
	if err != nil {
		s.logger.Error("command aborted", "op", op, "error", err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// History returns a copy of the current history resource for inspection or
// persistence. An absent resource reads as an empty history.
func (s *Service) History() History {
	hist, ok := domain.Resource[History](s.world)
	if !ok {
		return History{}
	}
	return hist.Clone()
}

// ReplaceHistory swaps in a different history wholesale, as a scene load
// does after restoring and remapping persisted entries.
func (s *Service) ReplaceHistory(h History) {
	domain.InsertResource(s.world, h)
}
