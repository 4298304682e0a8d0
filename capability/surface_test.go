package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/botexec/world"
)

func newTestSurface(t *testing.T, size int, start world.Coord, facing world.Direction) (*Surface, *world.Grid, *world.Agent) {
	t.Helper()
	g, err := world.NewGrid(size, size)
	require.NoError(t, err)
	a := world.NewAgent(start, facing)
	return NewSurface(g, a), g, a
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		op, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, op.String())
		assert.True(t, op.Valid())
	}

	for _, name := range []string{"", "open", "exec", "MoveForward", "move"} {
		_, ok := Lookup(name)
		assert.False(t, ok, name)
	}
}

func TestOpKinds(t *testing.T) {
	mutators := map[Op]bool{OpMoveForward: true, OpTurnLeft: true, OpTurnRight: true, OpTurnAround: true}
	for _, op := range All() {
		if mutators[op] {
			assert.Equal(t, Mutator, op.Kind(), op.String())
		} else {
			assert.Equal(t, Sensor, op.Kind(), op.String())
		}
	}
	assert.Len(t, All(), 11)
	assert.False(t, OpInvalid.Valid())
	assert.Equal(t, "invalid", Op(200).String())
}

func TestInvoke_OnlyMutatorsAreLogged(t *testing.T) {
	s, _, _ := newTestSurface(t, 5, world.C(0, 0), world.East)
	ctx := context.Background()

	for _, op := range []Op{OpIsClear, OpMoveForward, OpGetPosition, OpTurnRight, OpIsGem, OpTurnLeft, OpTurnAround, OpGetDirection, OpGetGemCount, OpAtGoal, OpIsGoal} {
		_, err := s.Invoke(ctx, op)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"move_forward", "turn_right", "turn_left", "turn_around"}, s.Actions())
	assert.Equal(t, 4, s.ActionCount())
}

func TestInvoke_MoveReturnsPosition(t *testing.T) {
	s, _, a := newTestSurface(t, 5, world.C(1, 1), world.North)

	res, err := s.Invoke(context.Background(), OpMoveForward)
	require.NoError(t, err)
	assert.Equal(t, ResultPosition, res.Kind)
	assert.Equal(t, world.C(1, 0), res.Pos)
	assert.Equal(t, world.C(1, 0), a.Position())
	assert.Equal(t, "(1, 0)", res.String())
}

func TestInvoke_IsClear(t *testing.T) {
	s, g, _ := newTestSurface(t, 3, world.C(0, 0), world.East)
	ctx := context.Background()

	res, err := s.Invoke(ctx, OpIsClear)
	require.NoError(t, err)
	assert.True(t, res.Bool)

	g.Set(1, 0, world.Wall)
	res, err = s.Invoke(ctx, OpIsClear)
	require.NoError(t, err)
	assert.False(t, res.Bool)

	_, err = s.Invoke(ctx, OpTurnLeft)
	require.NoError(t, err)
	res, err = s.Invoke(ctx, OpIsClear)
	require.NoError(t, err)
	assert.False(t, res.Bool, "out of bounds reads as wall")
}

func TestInvoke_Sensors(t *testing.T) {
	s, g, _ := newTestSurface(t, 4, world.C(0, 0), world.South)
	g.Set(0, 0, world.Collectible)
	g.Set(3, 3, world.Collectible)
	ctx := context.Background()

	res, err := s.Invoke(ctx, OpIsGem)
	require.NoError(t, err)
	assert.True(t, res.Bool)

	res, err = s.Invoke(ctx, OpGetGemCount)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Int)

	res, err = s.Invoke(ctx, OpGetDirection)
	require.NoError(t, err)
	assert.Equal(t, "south", res.Any())

	res, err = s.Invoke(ctx, OpIsGoal)
	require.NoError(t, err)
	assert.Equal(t, false, res.Any())
}

func TestInvoke_PickUpOnDeparture(t *testing.T) {
	s, g, a := newTestSurface(t, 3, world.C(0, 0), world.East)
	g.Set(0, 0, world.Collectible)
	g.Set(1, 0, world.Collectible)
	ctx := context.Background()

	_, err := s.Invoke(ctx, OpMoveForward)
	require.NoError(t, err)
	assert.Equal(t, world.Empty, g.Get(0, 0))
	assert.Equal(t, 1, a.CollectedCount())

	res, err := s.Invoke(ctx, OpIsGem)
	require.NoError(t, err)
	assert.True(t, res.Bool, "gem under the agent is still visible")

	s.Settle()
	assert.Equal(t, 2, a.CollectedCount())
	assert.Equal(t, 0, g.CollectibleCount())

	s.Settle()
	assert.Equal(t, 2, a.CollectedCount())
}

func TestInvoke_WalksThroughWalls(t *testing.T) {
	s, g, a := newTestSurface(t, 3, world.C(0, 0), world.East)
	g.Set(1, 0, world.Wall)

	_, err := s.Invoke(context.Background(), OpMoveForward)
	require.NoError(t, err)
	assert.Equal(t, world.C(1, 0), a.Position())
}

func TestInvoke_CancelledContext(t *testing.T) {
	s, _, a := newTestSurface(t, 3, world.C(0, 0), world.East)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Invoke(ctx, OpMoveForward)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, world.C(0, 0), a.Position())
	assert.Empty(t, s.Actions())
}

func TestInvoke_UnknownOp(t *testing.T) {
	s, _, _ := newTestSurface(t, 3, world.C(0, 0), world.East)

	_, err := s.Invoke(context.Background(), OpInvalid)
	require.ErrorIs(t, err, ErrUnknownOp)
	assert.Zero(t, s.ActionCount())
}

func TestActionsIsACopy(t *testing.T) {
	s, _, _ := newTestSurface(t, 3, world.C(0, 0), world.East)
	_, err := s.Invoke(context.Background(), OpTurnLeft)
	require.NoError(t, err)

	got := s.Actions()
	got[0] = "tampered"
	assert.Equal(t, []string{"turn_left"}, s.Actions())
}
