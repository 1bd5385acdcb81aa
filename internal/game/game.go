package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/farmplot/internal/entity"
	"github.com/samdwyer/farmplot/internal/gamedata"
	"github.com/samdwyer/farmplot/internal/growth"
	"github.com/samdwyer/farmplot/internal/livestock"
	"github.com/samdwyer/farmplot/internal/scene"
	"github.com/samdwyer/farmplot/internal/telemetry"
	"github.com/samdwyer/farmplot/internal/ui"
	"github.com/samdwyer/farmplot/internal/world"
)

// Game holds the entire game state.
type Game struct {
	cfg     Config
	prefabs *gamedata.PrefabRegistry
	layout  gamedata.LayoutDef
	scene   *scene.Scene
	field   *world.Field

	growth   *growth.Scheduler
	reveal   *growth.Scheduler
	wanderer *livestock.Wanderer
	grazer   *livestock.Grazer
	forager  *livestock.Forager

	screen   *ui.Screen
	renderer *ui.Renderer

	state   State
	running bool
	pouring bool
	steps   int
	elapsed float64

	logger        *log.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
}

// Option customises a Game.
type Option func(*Game)

// WithLogger sets the logger handed to every behaviour.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// WithTracer sets the tracer for game and scheduler spans.
func WithTracer(t trace.Tracer) Option {
	return func(g *Game) { g.tracer = t }
}

// WithMeterProvider sets where scheduler counters are recorded.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(g *Game) { g.meterProvider = mp }
}

// WithLayout replaces the embedded scene layout.
func WithLayout(layout gamedata.LayoutDef) Option {
	return func(g *Game) { g.layout = layout }
}

// New builds the farm: the scene from the layout, the field under it, and
// every behaviour. The growth registry starts with the entities tagged
// cfg.SeedTag. No terminal is opened until Run.
func New(ctx context.Context, cfg Config, opts ...Option) (*Game, error) {
	prefabs, err := gamedata.LoadPrefabRegistry()
	if err != nil {
		return nil, err
	}
	layout, err := gamedata.LoadLayout()
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:     cfg,
		prefabs: prefabs,
		layout:  layout,
		state:   StatePlaying,
		pouring: true,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.tracer == nil {
		g.tracer = telemetry.Tracer("game")
	}

	if err := cfg.Validate(prefabs); err != nil {
		return nil, err
	}

	ctx, span := g.tracer.Start(ctx, "game.init")
	defer span.End()

	if err := g.build(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("layout.name", g.layout.Name),
		attribute.Int("scene.entities", g.scene.Len()),
		attribute.Int("growth.plants", g.growth.Registry().Len()),
		attribute.String("replace.order", cfg.ReplaceOrder.String()),
	)
	return g, nil
}

func (g *Game) build(ctx context.Context) error {
	g.scene = scene.New(g.prefabs, g.cfg.ReplaceOrder)
	if err := g.scene.Populate(ctx, g.layout); err != nil {
		return err
	}

	g.field = world.NewField(g.layout)
	g.field.Generate(ctx)

	schedOpts := []growth.Option{growth.WithLogger(g.logger)}
	if g.meterProvider != nil {
		schedOpts = append(schedOpts, growth.WithMeterProvider(g.meterProvider))
	}

	var err error
	gate := pourGate{Scene: g.scene, tag: g.cfg.Growth.ResourceTag, pouring: &g.pouring}
	if g.growth, err = growth.New(g.cfg.Growth, gate, g.scene, schedOpts...); err != nil {
		return err
	}
	g.growth.Registry().Initialize(g.scene.FindByTag(g.cfg.SeedTag))

	if g.reveal, err = growth.NewOneShot(g.cfg.Reveal, g.scene, g.scene, schedOpts...); err != nil {
		return err
	}

	seed := g.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if g.wanderer, err = livestock.NewWanderer(g.cfg.Wander, g.scene, g.field, rand.New(rand.NewSource(seed))); err != nil {
		return fmt.Errorf("wander: %w", err)
	}
	if g.grazer, err = livestock.NewGrazer(g.cfg.Graze, g.scene); err != nil {
		return fmt.Errorf("graze: %w", err)
	}
	if g.forager, err = livestock.NewForager(g.cfg.Forage, g.scene); err != nil {
		return fmt.Errorf("forage: %w", err)
	}
	return nil
}

// pourGate hides the watering can from growth while it is not pouring.
type pourGate struct {
	*scene.Scene
	tag     string
	pouring *bool
}

func (p pourGate) FindByTag(tag string) []entity.Handle {
	if tag == p.tag && !*p.pouring {
		return []entity.Handle{}
	}
	return p.Scene.FindByTag(tag)
}

// Scene returns the game's scene.
func (g *Game) Scene() *scene.Scene { return g.scene }

// Field returns the terrain under the scene.
func (g *Game) Field() *world.Field { return g.field }

// Growth returns the watering-driven growth scheduler.
func (g *Game) Growth() *growth.Scheduler { return g.growth }

// Reveal returns the harrow's one-shot scheduler.
func (g *Game) Reveal() *growth.Scheduler { return g.reveal }

// Grazer returns the sheep growth behaviour.
func (g *Game) Grazer() *livestock.Grazer { return g.grazer }

// Forager returns the plant-eating behaviour.
func (g *Game) Forager() *livestock.Forager { return g.forager }

// State returns whether the simulation is playing or paused.
func (g *Game) State() State { return g.state }

// Pouring reports whether the watering can currently waters plants.
func (g *Game) Pouring() bool { return g.pouring }

// Steps returns how many steps have run.
func (g *Game) Steps() int { return g.steps }

// Elapsed returns the simulated time in seconds.
func (g *Game) Elapsed() float64 { return g.elapsed }

// Step advances every behaviour by dt seconds, in a fixed order: reveal,
// growth, wander, graze, forage. It does nothing while paused.
func (g *Game) Step(ctx context.Context, dt float64) {
	if g.state == StatePaused {
		return
	}
	g.reveal.Tick(ctx, dt)
	g.growth.Tick(ctx, dt)
	g.wanderer.Tick(ctx, dt)
	g.grazer.Tick(ctx, dt)
	g.forager.Tick(ctx, dt)
	g.steps++
	g.elapsed += dt
}

// Simulate runs steps fixed steps without a terminal.
func (g *Game) Simulate(ctx context.Context, steps int) error {
	ctx, span := g.tracer.Start(ctx, "game.simulate", trace.WithAttributes(
		attribute.Int("steps", steps),
	))
	defer span.End()

	dt := g.cfg.StepSeconds()
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return err
		}
		g.Step(ctx, dt)
	}

	for stage, n := range g.growth.Registry().StageCounts() {
		span.SetAttributes(attribute.Int("plants."+stage.String(), n))
	}
	span.SetAttributes(attribute.Int("plants.eaten", g.forager.Eaten()))
	return nil
}

// Run opens the terminal and executes the main game loop until the player
// quits or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	screen, err := ui.NewScreen()
	if err != nil {
		return err
	}
	g.screen = screen
	g.renderer = ui.NewRenderer(screen, g.prefabs)
	defer g.Close()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(screen, events, done)

	dt := g.cfg.StepSeconds()
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	g.running = true
	g.render()
	for g.running {
		select {
		case <-ctx.Done():
			g.running = false
		case ev, ok := <-events:
			if !ok {
				g.running = false
				continue
			}
			g.handleInput(ctx, ev)
			g.render()
		case <-ticker.C:
			g.Step(ctx, dt)
			g.render()
		}
	}
	return nil
}

// pumpEvents forwards terminal events to the loop until the screen closes.
func pumpEvents(screen *ui.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (g *Game) render() {
	g.renderer.Render(ui.View{
		Field:    g.field,
		Entities: g.scene.Entities(),
		Status:   g.Status(),
	})
}

// Status returns the lines shown under the field.
func (g *Game) Status() []string {
	counts := g.growth.Registry().StageCounts()
	line := fmt.Sprintf("t=%.1fs %s  seed:%d small:%d medium:%d tomato:%d large:%d  bunches:%d eaten:%d",
		g.elapsed, g.state,
		counts[growth.StageSeed], counts[growth.StageSmall], counts[growth.StageMedium],
		counts[growth.StageTomatoMedium], counts[growth.StageTomatoLarge],
		len(g.scene.FindByTag(g.bunchTag())), g.forager.Eaten())

	can := "dry"
	if g.pouring {
		can = "pouring"
	}
	return []string{
		line,
		"can: " + can + "  arrows: can  wasd: harrow  space: pour  p: pause  q: quit",
	}
}

func (g *Game) bunchTag() string {
	if def := g.prefabs.GetByID(g.cfg.Reveal.Kind); def != nil {
		return def.Tag
	}
	return ""
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKey(ctx, ev.Key(), ev.Rune())
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKey processes keyboard input.
func (g *Game) handleKey(ctx context.Context, key tcell.Key, r rune) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false

	case tcell.KeyUp:
		g.MoveTool(g.cfg.Growth.ResourceTag, 0, -1)
	case tcell.KeyDown:
		g.MoveTool(g.cfg.Growth.ResourceTag, 0, 1)
	case tcell.KeyLeft:
		g.MoveTool(g.cfg.Growth.ResourceTag, -1, 0)
	case tcell.KeyRight:
		g.MoveTool(g.cfg.Growth.ResourceTag, 1, 0)

	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			g.running = false
		case 'w', 'W':
			g.MoveTool(g.cfg.Reveal.ActorTag, 0, -1)
		case 's', 'S':
			g.MoveTool(g.cfg.Reveal.ActorTag, 0, 1)
		case 'a', 'A':
			g.MoveTool(g.cfg.Reveal.ActorTag, -1, 0)
		case 'd', 'D':
			g.MoveTool(g.cfg.Reveal.ActorTag, 1, 0)
		case ' ':
			g.pouring = !g.pouring
		case 'p', 'P':
			g.TogglePause()
		}
	}
}

// TogglePause switches between playing and paused.
func (g *Game) TogglePause() {
	if g.state == StatePaused {
		g.state = StatePlaying
	} else {
		g.state = StatePaused
	}
}

// MoveTool moves the first entity tagged tag by one field cell. It reports
// false when there is no such entity or the target cell is impassable.
func (g *Game) MoveTool(tag string, dx, dy int) bool {
	h, ok := g.scene.FindFirstByTag(tag)
	if !ok {
		return false
	}
	pos, err := g.scene.Position(h)
	if err != nil {
		return false
	}

	x, y := g.field.CellAt(pos)
	if !g.field.IsPassable(x+dx, y+dy) {
		return false
	}
	next := g.field.WorldPos(x+dx, y+dy)
	next[1] = pos.Y()
	return g.scene.Move(h, next) == nil
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
		g.screen = nil
	}
}
