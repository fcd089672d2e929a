package engine

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physim/internal/core/events/bus"
	"github.com/zeusync/physim/internal/core/models"
	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

var v = physics.V

func newBall(name string, pos physics.Vec2) *models.Body {
	return models.NewBody(models.BodyConfig{
		Name:       name,
		Position:   pos,
		Mass:       10,
		Collidable: true,
		Simulated:  true,
		Components: []models.CollisionComponent{models.NewCollisionShape(shapes.NewCircle(physics.Zero, 1))},
		Effects:    []models.GlobalEffect{models.Gravity{Gs: 1}},
	})
}

func newGround(name string, height float64) *models.Body {
	return models.NewBody(models.BodyConfig{
		Name:       name,
		Collidable: true,
		Components: []models.CollisionComponent{models.NewCollisionPlane(v(0, 1), v(0, height))},
	})
}

// dropScene is a 10 kg ball of radius 1 released at y=20 over the ground.
func dropScene(t *testing.T, opts ...Option) (*Engine, *models.Body) {
	t.Helper()
	e, err := New(DefaultConfig(), opts...)
	require.NoError(t, err)
	ball := newBall("ball", v(0, 20))
	e.Add(ball, newGround("ground", 0))
	return e, ball
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cases := map[string]Config{
		"zero tick":            {TickLength: 0, TimeRatio: 1},
		"nan tick":             {TickLength: math.NaN(), TimeRatio: 1},
		"zero ratio":           {TickLength: 0.01},
		"infinite ratio":       {TickLength: 0.01, TimeRatio: math.Inf(1)},
		"negative restitution": {TickLength: 0.01, TimeRatio: 1, Restitution: -0.1},
	}
	for name, cfg := range cases {
		_, err := New(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestUpdate_FirstCallIsBaseline(t *testing.T) {
	e, ball := dropScene(t)

	require.NoError(t, e.Update(5000))
	assert.Equal(t, v(0, 20), ball.Position)
	assert.Zero(t, e.Tick())

	require.NoError(t, e.Update(5000))
	require.NoError(t, e.Update(5000))
	assert.Equal(t, v(0, 20), ball.Position, "repeated timestamps run no ticks")
	assert.Zero(t, e.Tick())
}

func TestUpdate_TickCounting(t *testing.T) {
	e, _ := dropScene(t)

	require.NoError(t, e.Update(0))
	require.NoError(t, e.Update(12.5))
	assert.Equal(t, uint64(1), e.Tick(), "1.5 ticks elapsed")

	require.NoError(t, e.Update(12.5))
	assert.Equal(t, uint64(1), e.Tick())

	require.NoError(t, e.Update(25))
	assert.Equal(t, uint64(2), e.Tick(), "the half tick left over was dropped")
}

func TestUpdate_PartialTicksAccumulateUntilOneRuns(t *testing.T) {
	e, _ := dropScene(t)

	require.NoError(t, e.Update(0))
	require.NoError(t, e.Update(10))
	assert.Equal(t, uint64(1), e.Tick())

	require.NoError(t, e.Update(15))
	assert.Equal(t, uint64(1), e.Tick(), "0.6 ticks since the last recorded timestamp")

	require.NoError(t, e.Update(20))
	assert.Equal(t, uint64(2), e.Tick(), "1.2 ticks since the last recorded timestamp")
}

func TestUpdate_TimeRatio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeRatio = 2
	e, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, e.Update(0))
	require.NoError(t, e.Update(12.5))
	assert.Equal(t, uint64(3), e.Tick())
}

func TestStep_FreeFall(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	ball := newBall("ball", v(0, 20))
	e.Add(ball)

	require.NoError(t, e.Step(1))

	dt := DefaultTickLength
	assert.InDelta(t, -9.8*dt, ball.Velocity.Y, 1e-12)
	assert.InDelta(t, 20-9.8*dt*dt, ball.Position.Y, 1e-12)
	assert.Equal(t, v(0, 20), ball.PreviousPosition)
	assert.Zero(t, ball.Velocity.X)

	assert.ErrorIs(t, e.Step(-1), ErrNegativeSteps)
}

func TestStep_StaticBodiesStayPut(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	crate := newBall("crate", v(4, 4))
	crate.Simulated = false
	e.Add(crate)

	require.NoError(t, e.Step(50))
	assert.Equal(t, v(4, 4), crate.Position)
	assert.Equal(t, physics.Zero, crate.Velocity)
}

func TestStep_DropSettlesOnGround(t *testing.T) {
	e, ball := dropScene(t)

	var heights []float64
	for range 15 * 120 {
		require.NoError(t, e.Step(1))
		heights = append(heights, ball.Position.Y)
	}

	var peaks []float64
	for i := 1; i < len(heights)-1; i++ {
		if heights[i] > heights[i-1] && heights[i] >= heights[i+1] && heights[i] > 1.1 {
			peaks = append(peaks, heights[i])
		}
	}
	require.GreaterOrEqual(t, len(peaks), 3, "the ball bounces")
	for i := 1; i < len(peaks); i++ {
		assert.Less(t, peaks[i], peaks[i-1], "bounce peaks decrease")
	}
	assert.Less(t, peaks[0], 20.0)

	assert.InDelta(t, 1.0, ball.Position.Y, 0.05, "resting on the ground")
	assert.Less(t, math.Abs(ball.Velocity.Y), 0.5)
	assert.InDelta(t, 0, ball.Position.X, 1e-12)
	for _, h := range heights {
		assert.Greater(t, h, 0.5, "never sinks through the ground")
	}
}

func TestStep_Restitution(t *testing.T) {
	b := bus.New()
	e, ball := dropScene(t, WithBus(b))

	var events []CollisionEvent
	_, err := b.Subscribe(EventCollision, func(ev bus.Event) error {
		events = append(events, ev.Data().(CollisionEvent))
		return nil
	})
	require.NoError(t, err)

	for i := 0; len(events) == 0 && i < 10*120; i++ {
		require.NoError(t, e.Step(1))
	}
	require.Len(t, events, 1)

	hit := events[0]
	assert.Equal(t, ball.ID, hit.Body)
	assert.Equal(t, "ground", hit.OtherName)
	assert.True(t, hit.Plane)
	assert.Equal(t, v(0, 1), hit.Normal)
	assert.InDelta(t, 1.0, hit.Position.Y, 1e-9)
	assert.Greater(t, hit.Speed, 15.0)
	assert.InDelta(t, DefaultRestitution*hit.Speed, ball.Velocity.Y, 1e-9, "rebound is restitution times impact speed")
	assert.Equal(t, uint64(1), e.Metrics().Collisions)
}

func TestStep_RestitutionBoundsEveryBounce(t *testing.T) {
	b := bus.New()
	e, ball := dropScene(t, WithBus(b))

	var events []CollisionEvent
	_, err := b.Subscribe(EventCollision, func(ev bus.Event) error {
		events = append(events, ev.Data().(CollisionEvent))
		return nil
	})
	require.NoError(t, err)

	impacts := 0
	for range 15 * 120 {
		before := len(events)
		require.NoError(t, e.Step(1))
		if len(events) == before {
			continue
		}
		hit := events[len(events)-1]
		rebound := ball.Velocity.Dot(hit.Normal)
		assert.LessOrEqual(t, rebound, DefaultRestitution*hit.Speed+1e-9, "tick %d", hit.Tick)
		if hit.Speed > 1 {
			impacts++
		}
	}
	assert.GreaterOrEqual(t, impacts, 3, "the ball bounces repeatedly")
	assert.Equal(t, uint64(len(events)), e.Metrics().Collisions)
}

func TestStep_FirstCollisionWins(t *testing.T) {
	b := bus.New()
	e, err := New(DefaultConfig(), WithBus(b))
	require.NoError(t, err)

	ball := newBall("ball", v(0, 0.5))
	ball.PreviousPosition = v(0, 1.5)
	ball.Velocity = v(0, -5)
	e.Add(ball, newGround("high", 0.2), newGround("low", 0))

	var others []string
	_, _ = b.Subscribe(EventCollision, func(ev bus.Event) error {
		others = append(others, ev.Data().(CollisionEvent).OtherName)
		return nil
	})

	require.NoError(t, e.Step(1))
	assert.Equal(t, []string{"high"}, others)
	assert.InDelta(t, 1.2+ball.Velocity.Y*DefaultTickLength, ball.Position.Y, 1e-9)
}

func TestStep_HeadOnBalls(t *testing.T) {
	b := bus.New()
	e, err := New(DefaultConfig(), WithBus(b))
	require.NoError(t, err)

	left := newBall("left", v(0, 0))
	right := newBall("right", v(2.505, 0))
	left.GlobalEffects, right.GlobalEffects = nil, nil
	left.Velocity, right.Velocity = v(1, 0), v(-1, 0)
	e.Add(left, right)

	var first *CollisionEvent
	_, _ = b.Subscribe(EventCollision, func(ev bus.Event) error {
		if first == nil {
			hit := ev.Data().(CollisionEvent)
			first = &hit
		}
		return nil
	})
	for i := 0; first == nil && i < 60; i++ {
		require.NoError(t, e.Step(1))
	}
	require.NotNil(t, first)

	// left moves first, so right is the body that finds the overlap
	assert.Equal(t, "right", first.BodyName)
	assert.InDelta(t, 2, first.Speed, 1e-9)
	assert.InDelta(t, 1, left.Velocity.X, 1e-12)
	// reduced mass of 5 kg over a 10 kg body: Δv = 2 · 1.6 · 5 / 10
	assert.InDelta(t, 0.6, right.Velocity.X, 1e-9)
	assert.GreaterOrEqual(t, right.Position.X-left.Position.X, 2.0)
}

func TestStep_PropagatesCollisionErrors(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	broken := newBall("broken", v(0, 5))
	broken.AddComponent(nil)
	broken.CollisionComponents[0], broken.CollisionComponents[1] = broken.CollisionComponents[1], broken.CollisionComponents[0]
	e.Add(broken, newGround("ground", 0))

	err = e.Step(1)
	assert.ErrorIs(t, err, models.ErrUnknownComponent)
	assert.Equal(t, uint64(1), e.Metrics().ErrorCount)

	require.NoError(t, e.Update(0))
	err = e.Update(100)
	assert.ErrorIs(t, err, models.ErrUnknownComponent)
}

func TestEngine_Determinism(t *testing.T) {
	run := func() Frame {
		e, _ := dropScene(t)
		require.NoError(t, e.Step(500))
		return e.Snapshot()
	}

	a, b := run(), run()
	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Bodies[0].ID, b.Bodies[0].ID, "ids differ between runs")

	e, _ := dropScene(t)
	assert.NotEqual(t, a.Hash, e.Snapshot().Hash)
}

func TestEngine_Snapshot(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	ball := newBall("ball", v(1, 2))
	crate := models.NewBody(models.BodyConfig{
		Name:       "crate",
		Position:   v(5, 5),
		Mass:       1,
		Collidable: true,
		Components: []models.CollisionComponent{models.NewCollisionShape(shapes.NewSquare(v(-1, 1), 2))},
	})
	ground := newGround("ground", 0)
	e.Add(ball, crate, ground)

	f := e.Snapshot()
	require.Len(t, f.Bodies, 3)
	assert.Zero(t, f.Tick)
	assert.Equal(t, f.Digest(), f.Hash)

	want := BodyState{
		ID:        ball.ID.String(),
		Name:      "ball",
		Simulated: true,
		Position:  v(1, 2),
		Shapes:    []ShapeState{{Kind: "circle", Center: v(1, 2), Radius: 1}},
	}
	if diff := cmp.Diff(want, f.Bodies[0]); diff != "" {
		t.Errorf("ball state mismatch (-want +got):\n%s", diff)
	}

	wantCrate := []ShapeState{{
		Kind:   "polygon",
		Center: v(5, 5),
		Points: []physics.Vec2{v(4, 6), v(6, 6), v(6, 4), v(4, 4)},
	}}
	if diff := cmp.Diff(wantCrate, f.Bodies[1].Shapes); diff != "" {
		t.Errorf("crate shapes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []PlaneState{{Position: v(0, 0), Normal: v(0, 1)}}, f.Bodies[2].Planes)

	_, err = json.Marshal(f)
	require.NoError(t, err)

	require.NoError(t, e.Step(12))
	f = e.Snapshot()
	assert.Equal(t, uint64(12), f.Tick)
	assert.InDelta(t, 0.1, f.Time, 1e-12)
	assert.Equal(t, ball.Position, f.Bodies[0].Position)
	assert.Equal(t, v(5, 5), f.Bodies[1].Position, "static bodies are not integrated")
}

func TestShapeState_Shape(t *testing.T) {
	circle, ok := ShapeState{Kind: "circle", Center: v(1, 1), Radius: 2}.Shape()
	require.True(t, ok)
	assert.Equal(t, shapes.KindCircle, circle.Kind())

	line, ok := ShapeState{Kind: "line", Points: []physics.Vec2{v(0, 0), v(2, 0)}}.Shape()
	require.True(t, ok)
	assert.Equal(t, v(1, 0), line.Position())

	poly, ok := ShapeState{Kind: "polygon", Points: []physics.Vec2{v(0, 0), v(2, 0), v(0, 2)}}.Shape()
	require.True(t, ok)
	assert.True(t, shapes.Intersects(poly, shapes.NewCircle(v(0.5, 0.5), 0.1)))
}

func TestShapeState_ShapeRejectsMalformed(t *testing.T) {
	for name, s := range map[string]ShapeState{
		"unknown kind":   {Kind: "blob", Center: v(1, 1), Radius: 2},
		"line one point": {Kind: "line", Points: []physics.Vec2{v(0, 0)}},
		"line 3 points":  {Kind: "line", Points: []physics.Vec2{v(0, 0), v(1, 0), v(2, 0)}},
		"polygon 2 pts":  {Kind: "polygon", Points: []physics.Vec2{v(0, 0), v(2, 0)}},
	} {
		shape, ok := s.Shape()
		assert.False(t, ok, name)
		assert.Nil(t, shape, name)
	}
}

func TestEngine_Metrics(t *testing.T) {
	clock := time.Unix(0, 0)
	e, _ := dropScene(t, WithClock(func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}))

	require.NoError(t, e.Update(0))
	require.NoError(t, e.Update(50))

	m := e.Metrics()
	assert.Equal(t, uint64(6), m.Ticks)
	assert.Equal(t, uint64(1), m.ExecutionCount)
	assert.Equal(t, time.Millisecond, m.TotalExecutionTime)
	assert.Equal(t, uint64(2), m.EntitiesProcessed)
	assert.Zero(t, m.ErrorCount)
	assert.Equal(t, "physics", e.Name())
	assert.Len(t, e.Bodies(), 2)
}
