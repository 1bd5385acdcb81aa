package growth

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/farmplot/internal/entity"
	"github.com/samdwyer/farmplot/internal/telemetry"
)

// timerEpsilon absorbs float drift when summing per-tick deltas.
const timerEpsilon = 1e-9

// Scheduler is the per-plant timed state machine. A plant is Idle until it is
// within GrowthDistance of the resource, then Growing until GrowthTime has
// accumulated, at which point its entity is replaced by the next stage's kind.
//
// Tick must be called from a single goroutine.
type Scheduler struct {
	name     string
	cfg      Config
	query    entity.SpatialQuery
	replacer entity.Replacer
	registry *Registry

	logger        *log.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider

	started       metric.Int64Counter
	advanced      metric.Int64Counter
	spawnFailures metric.Int64Counter
	purged        metric.Int64Counter
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for warnings. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithTracer sets the tracer for transition spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Scheduler) { s.tracer = t }
}

// WithMeterProvider sets where transition counters are recorded.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Scheduler) { s.meterProvider = mp }
}

// WithName overrides the name used in logs, span names and metric names.
func WithName(name string) Option {
	return func(s *Scheduler) { s.name = name }
}

// New creates a growth scheduler. It returns a *ConfigError if cfg is
// inconsistent.
func New(cfg Config, query entity.SpatialQuery, replacer entity.Replacer, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newScheduler("growth", cfg, query, replacer, opts)
}

func newScheduler(name string, cfg Config, query entity.SpatialQuery, replacer entity.Replacer, opts []Option) (*Scheduler, error) {
	s := &Scheduler{
		name:     name,
		cfg:      cfg,
		query:    query,
		replacer: replacer,
		registry: NewRegistry(query),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = telemetry.Tracer(s.name)
	}

	var meter metric.Meter
	if s.meterProvider != nil {
		meter = s.meterProvider.Meter("farmplot/" + s.name)
	} else {
		meter = telemetry.Meter(s.name)
	}
	if err := s.initInstruments(meter); err != nil {
		return nil, err
	}

	s.registry.onPurge = func(p *TrackedPlant) {
		s.purged.Add(context.Background(), 1, metric.WithAttributes(stageAttr(p.stage)))
	}
	return s, nil
}

func (s *Scheduler) initInstruments(meter metric.Meter) error {
	var err error
	if s.started, err = meter.Int64Counter(s.name+".transitions.started",
		metric.WithDescription("Timed transitions started")); err != nil {
		return fmt.Errorf("create started counter: %w", err)
	}
	if s.advanced, err = meter.Int64Counter(s.name+".stages.advanced",
		metric.WithDescription("Plants replaced by their next stage")); err != nil {
		return fmt.Errorf("create advanced counter: %w", err)
	}
	if s.spawnFailures, err = meter.Int64Counter(s.name+".spawn.failures",
		metric.WithDescription("Replacements whose spawn failed")); err != nil {
		return fmt.Errorf("create spawn failure counter: %w", err)
	}
	if s.purged, err = meter.Int64Counter(s.name+".plants.purged",
		metric.WithDescription("Tracked plants dropped because their entity was destroyed")); err != nil {
		return fmt.Errorf("create purged counter: %w", err)
	}
	return nil
}

// Registry returns the scheduler's plant registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Config returns the scheduler's configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Name returns the scheduler's name.
func (s *Scheduler) Name() string {
	return s.name
}

// Tick runs one simulation step of dt seconds.
//
// Without a live resource entity no plant starts growing, but transitions
// already in flight keep their timers running and complete on schedule.
// Plants at the table's terminal stage stay idle for good.
// Failures are per plant and never stop the step.
func (s *Scheduler) Tick(ctx context.Context, dt float64) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}

	if s.cfg.Tracking == TrackEveryTick {
		for _, h := range s.query.FindByTag(s.cfg.TargetTag) {
			s.registry.track(h)
		}
	}

	resource, haveResource := s.resourcePosition()

	for p := range s.registry.Live() {
		if p.transitioning {
			s.registry.advance(p, dt)
			if s.elapsed(p) {
				s.complete(ctx, p)
			}
			continue
		}

		if !haveResource || p.stage >= s.cfg.Table.Terminal() {
			continue
		}
		pos, err := s.query.Position(p.handle)
		if err != nil {
			continue
		}
		if entity.Distance(pos, resource) > s.cfg.GrowthDistance {
			continue
		}

		if s.registry.begin(p) {
			s.started.Add(ctx, 1, metric.WithAttributes(stageAttr(p.stage)))
			if s.elapsed(p) {
				s.complete(ctx, p)
			}
		}
	}
}

func (s *Scheduler) elapsed(p *TrackedPlant) bool {
	return p.elapsed+timerEpsilon >= s.cfg.GrowthTime
}

// resourcePosition finds the first entity tagged ResourceTag.
func (s *Scheduler) resourcePosition() (mgl64.Vec3, bool) {
	handles := s.query.FindByTag(s.cfg.ResourceTag)
	if len(handles) == 0 {
		return mgl64.Vec3{}, false
	}
	pos, err := s.query.Position(handles[0])
	if err != nil {
		return mgl64.Vec3{}, false
	}
	return pos, true
}

// complete ends p's transition. On a failed replacement p stays Growing so the
// next tick retries.
func (s *Scheduler) complete(ctx context.Context, p *TrackedPlant) {
	row, ok := s.cfg.Table.Lookup(p.stage)
	if !ok {
		s.registry.finish(p)
		return
	}

	pos, err := s.query.Position(p.handle)
	if err != nil {
		return
	}
	rot, err := s.query.Rotation(p.handle)
	if err != nil {
		return
	}

	ctx, span := s.tracer.Start(ctx, s.name+".advance", trace.WithAttributes(
		attribute.String("plant.handle", p.handle.String()),
		attribute.String("stage.from", row.From.String()),
		attribute.String("stage.to", row.To.String()),
		attribute.String("prefab", row.Kind),
	))
	defer span.End()

	h, err := s.replacer.Replace(p.handle, row.Kind, pos, rot)
	if err != nil {
		attempts := s.registry.fail(p)
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace failed")
		span.SetAttributes(attribute.Int("replace.attempts", attempts))
		s.spawnFailures.Add(ctx, 1, metric.WithAttributes(stageAttr(p.stage)))
		if attempts == 1 {
			s.logger.Printf("warning: %s: plant %s stuck at %s: %v", s.name, p.handle, p.stage, err)
		}
		return
	}

	if p.failures > 0 {
		s.logger.Printf("%s: plant %s advanced to %s after %d failed attempts", s.name, p.handle, row.To, p.failures)
	}
	s.registry.Replace(p, h, row.To)
	s.registry.finish(p)
	s.advanced.Add(ctx, 1, metric.WithAttributes(stageAttr(row.To)))
}

func stageAttr(s Stage) attribute.KeyValue {
	return attribute.String("stage", s.String())
}
