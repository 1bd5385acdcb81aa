package livestock

import (
	"context"
	"errors"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/samdwyer/farmplot/internal/entity"
)

// Activity is what a sheep is doing between decisions.
type Activity int

const (
	ActivityWalk Activity = iota
	ActivityTurnLeft
	ActivityTurnRight
	ActivitySit
	ActivityStand
	ActivityEat
	activityCount
)

// String returns the activity name.
func (a Activity) String() string {
	switch a {
	case ActivityWalk:
		return "walk"
	case ActivityTurnLeft:
		return "turn_left"
	case ActivityTurnRight:
		return "turn_right"
	case ActivitySit:
		return "sit"
	case ActivityStand:
		return "stand"
	case ActivityEat:
		return "eat"
	default:
		return "unknown"
	}
}

// Mover is a scene whose entities can be repositioned.
type Mover interface {
	entity.SpatialQuery
	SetPose(h entity.Handle, pose entity.Pose) error
}

// Terrain answers whether a sheep may stand at a position.
type Terrain interface {
	WalkableAt(pos mgl64.Vec3) bool
}

// WandererConfig configures sheep movement.
type WandererConfig struct {
	SheepTag        string
	MoveSpeed       float64  // Metres per second while walking
	TurnInterval    float64  // Seconds between activity changes
	DetectionRadius float64  // Obstacles closer than this make the sheep turn
	ObstacleTags    []string // Tags of entities sheep steer around
}

type wanderState struct {
	activity Activity
	sinceAct float64
}

// Wanderer walks sheep around the plot, picking a random activity every
// TurnInterval and steering away from obstacles and impassable ground.
type Wanderer struct {
	cfg     WandererConfig
	world   Mover
	terrain Terrain
	rng     *rand.Rand
	sheep   map[entity.Handle]*wanderState
}

// NewWanderer creates a wanderer. terrain may be nil for an unbounded plot.
func NewWanderer(cfg WandererConfig, world Mover, terrain Terrain, rng *rand.Rand) (*Wanderer, error) {
	if cfg.SheepTag == "" {
		return nil, errors.New("wanderer needs a sheep tag")
	}
	if cfg.MoveSpeed < 0 || !(cfg.TurnInterval > 0) {
		return nil, errors.New("wanderer speed must be non-negative and turn interval positive")
	}
	if rng == nil {
		return nil, errors.New("wanderer needs a random source")
	}
	return &Wanderer{
		cfg:     cfg,
		world:   world,
		terrain: terrain,
		rng:     rng,
		sheep:   make(map[entity.Handle]*wanderState),
	}, nil
}

// Tick moves every sheep by dt seconds.
func (w *Wanderer) Tick(ctx context.Context, dt float64) {
	for _, h := range w.world.FindByTag(w.cfg.SheepTag) {
		st, ok := w.sheep[h]
		if !ok {
			st = &wanderState{}
			w.sheep[h] = st
			w.choose(h, st)
		}

		st.sinceAct += dt
		if st.sinceAct >= w.cfg.TurnInterval {
			st.sinceAct = 0
			w.choose(h, st)
		}

		if st.activity == ActivityWalk {
			w.avoidObstacles(h)
			w.stepForward(h, dt)
		}
	}
}

// ActivityOf returns the sheep's current activity.
func (w *Wanderer) ActivityOf(h entity.Handle) (Activity, bool) {
	st, ok := w.sheep[h]
	if !ok {
		return 0, false
	}
	return st.activity, true
}

func (w *Wanderer) choose(h entity.Handle, st *wanderState) {
	st.activity = Activity(w.rng.Intn(int(activityCount)))
	switch st.activity {
	case ActivityTurnLeft:
		w.turn(h, -90)
	case ActivityTurnRight:
		w.turn(h, 90)
	}
}

// avoidObstacles turns away from the closest obstacle within DetectionRadius:
// left if it is on the right, right if on the left, around if dead ahead.
func (w *Wanderer) avoidObstacles(h entity.Handle) {
	if w.cfg.DetectionRadius <= 0 {
		return
	}
	pos, err := w.world.Position(h)
	if err != nil {
		return
	}

	var closest mgl64.Vec3
	best := w.cfg.DetectionRadius
	found := false
	for _, tag := range w.cfg.ObstacleTags {
		for _, o := range w.world.FindByTag(tag) {
			if o == h {
				continue
			}
			p, err := w.world.Position(o)
			if err != nil {
				continue
			}
			if d := entity.Distance(p, pos); d <= best {
				best, closest, found = d, p, true
			}
		}
	}
	if !found {
		return
	}

	rot, _ := w.world.Rotation(h)
	side := rot.Rotate(mgl64.Vec3{1, 0, 0}).Dot(closest.Sub(pos))
	switch {
	case side > 0:
		w.turn(h, -90)
	case side < 0:
		w.turn(h, 90)
	default:
		w.turn(h, 180)
	}
}

func (w *Wanderer) stepForward(h entity.Handle, dt float64) {
	pos, err := w.world.Position(h)
	if err != nil {
		return
	}
	rot, _ := w.world.Rotation(h)
	next := pos.Add(entity.Forward(rot).Mul(w.cfg.MoveSpeed * dt))

	if w.terrain != nil && !w.terrain.WalkableAt(next) {
		w.turn(h, 180)
		return
	}
	_ = w.world.SetPose(h, entity.Pose{Position: next, Rotation: rot})
}

func (w *Wanderer) turn(h entity.Handle, deg float64) {
	pose, err := w.pose(h)
	if err != nil {
		return
	}
	yaw := mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 1, 0})
	pose.Rotation = yaw.Mul(pose.Rotation).Normalize()
	_ = w.world.SetPose(h, pose)
}

func (w *Wanderer) pose(h entity.Handle) (entity.Pose, error) {
	pos, err := w.world.Position(h)
	if err != nil {
		return entity.Pose{}, err
	}
	rot, err := w.world.Rotation(h)
	if err != nil {
		return entity.Pose{}, err
	}
	return entity.Pose{Position: pos, Rotation: rot}, nil
}
