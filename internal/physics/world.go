// Package physics implements the coin-pusher table's rigid-body
// simulation: a fixed-step semi-implicit Euler integrator over a small,
// fixed set of static colliders (floor, walls), one kinematic pusher
// platform, and many dynamic coins.
//
// No off-the-shelf 3D rigid-body engine was available among the retrieved
// examples (the corpus's physics is all 2D, car-on-a-road collision), so
// this package is a from-scratch deterministic kernel: semi-implicit Euler
// integration plus AABB/cylinder overlap tests, using mgl32 for the vector
// and quaternion math the same way the pack's dragonfly/Gekko3D examples
// do.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Zombieliu/coinpusher/config"
	"github.com/Zombieliu/coinpusher/internal/protocol"
)

// staticBox is an axis-aligned box collider that never moves.
type staticBox struct {
	Center      mgl32.Vec3
	Half        mgl32.Vec3
	Friction    float32
	Restitution float32
}

func (b staticBox) min() mgl32.Vec3 { return b.Center.Sub(b.Half) }
func (b staticBox) max() mgl32.Vec3 { return b.Center.Add(b.Half) }

// pusherState is the kinematic push platform: it oscillates along Z
// between PushMinZ and PushMaxZ at PushSpeed, reversing direction at
// either bound.
type pusherState struct {
	z        float32
	dir      float32 // +1 moving toward max, -1 moving toward min
	half     mgl32.Vec3
	centerX  float32
	centerY  float32
}

// coinBody is one dynamic coin on the table.
type coinBody struct {
	ID         protocol.CoinID
	Owner      *protocol.PlayerID
	Pos        mgl32.Vec3
	Vel        mgl32.Vec3
	Orient     mgl32.Quat
	AngVel     mgl32.Vec3
	Radius     float32
	HalfHeight float32
}

// CollectedCoin pairs a coin id with the player credited for it, emitted
// when the coin crosses the reward line (spec §4.1 step 3).
type CollectedCoin struct {
	CoinID protocol.CoinID
	Owner  *protocol.PlayerID
}

// StepResult is everything Step observed about coins leaving the table
// during one tick.
type StepResult struct {
	Collected []CollectedCoin
	Removed   []protocol.CoinID
}

// World is one room's physics simulation. It is never accessed from
// outside its owning Room (spec §5): no exported method takes a lock,
// because none is needed.
type World struct {
	config protocol.RoomConfig
	gravity mgl32.Vec3

	floor, leftWall, rightWall, backWall staticBox
	pusher pusherState

	coins      map[protocol.CoinID]*coinBody
	nextCoinID protocol.CoinID
	grid       *broadGrid
}

// NewWorld builds the static table geometry, the pusher, and the initial
// tiled set of coins for a fresh room.
func NewWorld(cfg protocol.RoomConfig) *World {
	w := &World{
		config:  cfg,
		gravity: mgl32.Vec3{0, cfg.Gravity, 0},
		floor: staticBox{
			Center:      mgl32.Vec3{config.FloorCenterX, config.FloorCenterY, config.FloorCenterZ},
			Half:        mgl32.Vec3{config.FloorHalfX, config.FloorHalfY, config.FloorHalfZ},
			Friction:    config.FloorFriction,
			Restitution: config.FloorRestitution,
		},
		leftWall: staticBox{
			Center:      mgl32.Vec3{config.LeftWallCenterX, config.WallCenterY, config.SideWallCenterZ},
			Half:        mgl32.Vec3{config.SideWallHalfX, config.WallHalfY, config.SideWallHalfZ},
			Friction:    config.WallFriction,
			Restitution: 0,
		},
		rightWall: staticBox{
			Center:      mgl32.Vec3{config.RightWallCenterX, config.WallCenterY, config.SideWallCenterZ},
			Half:        mgl32.Vec3{config.SideWallHalfX, config.WallHalfY, config.SideWallHalfZ},
			Friction:    config.WallFriction,
			Restitution: 0,
		},
		backWall: staticBox{
			Center:      mgl32.Vec3{config.BackWallCenterX, config.WallCenterY, config.BackWallCenterZ},
			Half:        mgl32.Vec3{config.BackWallHalfX, config.WallHalfY, config.BackWallHalfZ},
			Friction:    config.WallFriction,
			Restitution: 0,
		},
		pusher: pusherState{
			z:       cfg.PushMinZ,
			dir:     1,
			half:    mgl32.Vec3{config.PusherHalfX, config.PusherHalfY, config.PusherHalfZ},
			centerX: 0,
			centerY: config.PusherCenterY,
		},
		coins:      make(map[protocol.CoinID]*coinBody),
		nextCoinID: 1,
		grid:       newBroadGrid(config.CollisionGridCellSize),
	}
	w.createInitialCoins()
	return w
}

// createInitialCoins tiles the table with the starting rack of coins. The
// loop bounds and step size are fixed; the resulting count is a derived
// integer, never hard-coded (spec §9 open question).
func (w *World) createInitialCoins() {
	y := float32(config.GoldOnStandPosY)
	z := float32(config.GoldOnStandMinZ)
	for z < float32(config.GoldOnStandMaxZ) {
		x := float32(0)
		for {
			if x == 0 {
				w.spawnCoinAtPosition(0, y, z, nil)
			} else {
				w.spawnCoinAtPosition(x, y, z, nil)
				w.spawnCoinAtPosition(-x, y, z, nil)
			}
			x += float32(config.GoldSize)
			if x > float32(config.GoldOnStandMaxX) {
				break
			}
		}
		z += float32(config.GoldSize)
	}
}

// spawnCoinAtPosition creates a coin at an explicit position, bypassing
// the drop-height/drop-z defaults SpawnCoin uses.
func (w *World) spawnCoinAtPosition(x, y, z float32, owner *protocol.PlayerID) protocol.CoinID {
	id := w.nextCoinID
	w.nextCoinID++
	w.coins[id] = &coinBody{
		ID:         id,
		Owner:      owner,
		Pos:        mgl32.Vec3{x, y, z},
		Vel:        mgl32.Vec3{0, 0, 0},
		Orient:     mgl32.QuatIdent(),
		AngVel:     mgl32.Vec3{0, 0, 0},
		Radius:     w.config.CoinRadius,
		HalfHeight: w.config.CoinHeight / 2,
	}
	return id
}

// SpawnCoin drops a new coin above the table at lateral offset x, owned
// by owner. This is the path a PlayerDropCoin event takes (spec §4.1).
func (w *World) SpawnCoin(x float32, owner *protocol.PlayerID) protocol.CoinID {
	return w.spawnCoinAtPosition(x, w.config.DropHeight, config.CoinDropZ, owner)
}

// PushZ returns the pusher platform's current Z coordinate.
func (w *World) PushZ() float32 {
	return w.pusher.z
}

// CollectCoinStates returns the externally-visible state of every coin
// currently on the table, in no particular order.
func (w *World) CollectCoinStates() []protocol.CoinState {
	out := make([]protocol.CoinState, 0, len(w.coins))
	for _, c := range w.coins {
		out = append(out, protocol.CoinState{
			ID:  c.ID,
			Pos: protocol.Position{X: c.Pos[0], Y: c.Pos[1], Z: c.Pos[2]},
			Rot: protocol.Rotation{X: c.Orient.V[0], Y: c.Orient.V[1], Z: c.Orient.V[2], W: c.Orient.W},
		})
	}
	return out
}

// Step advances the simulation by dt seconds: moves the pusher, integrates
// every coin under gravity, resolves collisions against the static
// geometry / pusher / other coins, and removes coins that fell off the
// table (spec §4.1).
func (w *World) Step(dt float32) StepResult {
	w.stepPusher(dt)

	for _, c := range w.coins {
		w.integrateCoin(c, dt)
	}

	w.grid.rebuild(w.coins)
	for _, pk := range w.grid.potentialPairs() {
		a, aok := w.coins[pk.a]
		b, bok := w.coins[pk.b]
		if aok && bok {
			resolveCoinCoin(a, b)
		}
	}

	return w.collectDepartures()
}

func (w *World) stepPusher(dt float32) {
	newZ := w.pusher.z + w.pusher.dir*w.config.PushSpeed*dt
	if newZ >= w.config.PushMaxZ {
		newZ = w.config.PushMaxZ
		w.pusher.dir = -1
	} else if newZ <= w.config.PushMinZ {
		newZ = w.config.PushMinZ
		w.pusher.dir = 1
	}
	w.pusher.z = newZ
}

func (w *World) integrateCoin(c *coinBody, dt float32) {
	c.Vel = c.Vel.Add(w.gravity.Mul(dt))
	c.Pos = c.Pos.Add(c.Vel.Mul(dt))

	w.resolveFloor(c)
	w.resolveWall(c, w.leftWall, true)
	w.resolveWall(c, w.rightWall, true)
	w.resolveWall(c, w.backWall, false)
	w.resolvePusher(c, dt)
	w.integrateSpin(c, dt)
}

func (w *World) resolveFloor(c *coinBody) {
	fmin, fmax := w.floor.min(), w.floor.max()
	if c.Pos[0] < fmin[0] || c.Pos[0] > fmax[0] || c.Pos[2] < fmin[2] || c.Pos[2] > fmax[2] {
		return // past the floor's edge: nothing to land on
	}
	top := fmax[1]
	restY := top + c.HalfHeight
	if c.Pos[1] < restY {
		c.Pos[1] = restY
		if c.Vel[1] < 0 {
			c.Vel[1] = 0
		}
		friction := 1 - w.floor.Friction
		if friction < 0 {
			friction = 0
		}
		c.Vel[0] *= friction
		c.Vel[2] *= friction
	}
}

// resolveWall clamps a coin's X (for side walls) or Z (for the back wall)
// against one static wall box, damping velocity into the wall by its
// restitution.
func (w *World) resolveWall(c *coinBody, wall staticBox, onXAxis bool) {
	if onXAxis {
		min, max := wall.min()[0], wall.max()[0]
		if wall.Center[0] < 0 {
			// left wall: keep coins to the right of its inner face
			bound := max + c.Radius
			if c.Pos[0] < bound {
				c.Pos[0] = bound
				if c.Vel[0] < 0 {
					c.Vel[0] = -c.Vel[0] * wall.Restitution
				}
			}
		} else {
			bound := min - c.Radius
			if c.Pos[0] > bound {
				c.Pos[0] = bound
				if c.Vel[0] > 0 {
					c.Vel[0] = -c.Vel[0] * wall.Restitution
				}
			}
		}
	} else {
		bound := wall.max()[2] + c.Radius
		if c.Pos[2] < bound {
			c.Pos[2] = bound
			if c.Vel[2] < 0 {
				c.Vel[2] = -c.Vel[2] * wall.Restitution
			}
		}
	}
}

// resolvePusher carries a coin resting against the pusher box along with
// the platform's own motion for that step.
func (w *World) resolvePusher(c *coinBody, dt float32) {
	half := w.pusher.half
	minX, maxX := w.pusher.centerX-half[0]-c.Radius, w.pusher.centerX+half[0]+c.Radius
	minY, maxY := w.pusher.centerY-half[1]-c.HalfHeight, w.pusher.centerY+half[1]+c.HalfHeight
	minZ := w.pusher.z - half[2] - c.Radius

	if c.Pos[0] < minX || c.Pos[0] > maxX || c.Pos[1] < minY || c.Pos[1] > maxY {
		return
	}
	if c.Pos[2] >= minZ && c.Pos[2] <= w.pusher.z {
		// Resting on the platform's push face: carry it along.
		c.Pos[2] += w.pusher.dir * w.config.PushSpeed * dt
	} else if c.Pos[2] < minZ {
		c.Pos[2] = minZ
		if c.Vel[2] < 0 {
			c.Vel[2] = 0
		}
	}
}

// integrateSpin applies a small tumbling rotation proportional to
// horizontal velocity, enough to give clients a plausible rolling coin
// without a full angular-dynamics solve.
func (w *World) integrateSpin(c *coinBody, dt float32) {
	speed := float32(math.Hypot(float64(c.Vel[0]), float64(c.Vel[2])))
	if speed < 1e-4 {
		return
	}
	axis := mgl32.Vec3{-c.Vel[2], 0, c.Vel[0]}.Normalize()
	angle := speed / c.Radius * dt
	delta := mgl32.QuatRotate(angle, axis)
	c.Orient = delta.Mul(c.Orient).Normalize()
}

// resolveCoinCoin separates two overlapping coins symmetrically along
// their XZ center line.
func resolveCoinCoin(a, b *coinBody) {
	delta := mgl32.Vec3{a.Pos[0] - b.Pos[0], 0, a.Pos[2] - b.Pos[2]}
	dist := float32(math.Hypot(float64(delta[0]), float64(delta[2])))
	minDist := a.Radius + b.Radius
	if dist >= minDist || dist < 1e-6 {
		return
	}
	if absf32(a.Pos[1]-b.Pos[1]) >= a.HalfHeight+b.HalfHeight {
		return
	}
	push := delta.Mul(1 / dist).Mul((minDist - dist) / 2)
	a.Pos[0] += push[0]
	a.Pos[2] += push[2]
	b.Pos[0] -= push[0]
	b.Pos[2] -= push[2]
}

// collectDepartures removes coins that fell past the floor-escape
// threshold, crediting reward-line crossers to their owner.
func (w *World) collectDepartures() StepResult {
	var result StepResult
	for id, c := range w.coins {
		if c.Pos[1] >= config.FloorEscapeY {
			continue
		}
		result.Removed = append(result.Removed, id)
		if c.Pos[2] > w.config.RewardLineZ && absf32(c.Pos[0]) < config.RewardXBound {
			result.Collected = append(result.Collected, CollectedCoin{CoinID: id, Owner: c.Owner})
		}
		delete(w.coins, id)
	}
	return result
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
