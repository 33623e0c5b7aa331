package mission

import (
	"log/slog"
	"math"
	"sort"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
)

type attackState int

const (
	attackPreparing attackState = iota
	attackAttacking
	attackRetreating
)

func (s attackState) String() string {
	switch s {
	case attackAttacking:
		return "attacking"
	case attackRetreating:
		return "retreating"
	default:
		return "preparing"
	}
}

// AttackMission assembles a unit composition at the rally point, sends it at
// the enemy through a CombatSquad, and falls back to the rally point once no
// enemy has been seen for a while.
type AttackMission struct {
	name  string
	tun   config.Missions
	squad *CombatSquad

	state      attackState
	priority   float64
	stateSince int
	started    bool

	target       model.Point
	targetIndex  int
	retargetedAt int
}

func NewAttackMission(name string, tun config.Tuning) *AttackMission {
	return &AttackMission{
		name:     name,
		tun:      tun.Missions,
		squad:    NewCombatSquad(tun.Squad),
		priority: tun.Missions.AttackInitialPriority,
	}
}

func (m *AttackMission) Name() string        { return m.name }
func (m *AttackMission) Priority() float64   { return m.priority }
func (m *AttackMission) IsActive() bool      { return true }
func (m *AttackMission) UnitsLocked() bool   { return m.state == attackAttacking }
func (m *AttackMission) OnDisband(*Context)  {}
func (m *AttackMission) State() string       { return m.state.String() }
func (m *AttackMission) Squad() *CombatSquad { return m.squad }

func (m *AttackMission) setState(s attackState, tick int) {
	slog.Info("attack mission state", "mission", m.name, "from", m.state, "to", s, "tick", tick)
	m.state = s
	m.stateSince = tick
}

func (m *AttackMission) Update(ctx *Context) Action {
	tick := ctx.Tick()
	if !m.started {
		m.started = true
		m.stateSince = tick
	}
	units := ctx.Units()

	switch m.state {
	case attackPreparing:
		return m.prepare(ctx, units, tick)

	case attackAttacking:
		if len(units) == 0 {
			return Disband{Reason: "squad destroyed"}
		}
		if !ctx.Awareness.ShouldAttack() {
			m.setState(attackRetreating, tick)
			return None{}
		}
		m.squad.SetTarget(m.target)
		m.squad.Update(ctx, units)

		quietSince := max(m.squad.LastContactTick(), m.stateSince)
		switch {
		case tick-quietSince >= m.tun.AttackTimeoutTicks:
			m.setState(attackRetreating, tick)
		case tick-max(quietSince, m.retargetedAt) >= m.tun.AttackRetargetTicks:
			m.target = m.pickTarget(ctx, units)
			m.retargetedAt = tick
			m.squad.forceEvaluation()
			slog.Debug("attack retarget", "mission", m.name, "x", m.target.X, "y", m.target.Y)
		}
		return None{}

	default:
		rally := ctx.Awareness.RallyPoint()
		for _, u := range units {
			ctx.Orders.Push(orders.Move(u.ID, rally))
		}
		return Disband{}
	}
}

// prepare ramps priority while the composition is incomplete and requests
// the type with the largest deficit.
func (m *AttackMission) prepare(ctx *Context, units []model.Actor, tick int) Action {
	rally := ctx.Awareness.RallyPoint()
	m.squad.MoveAll(ctx, units, rally, m.squad.GatherRadius(len(units)))

	missingType, missing := m.deficit(units)
	waited := tick-m.stateSince >= m.tun.AttackTimeoutTicks
	if missing == 0 || waited && len(units) >= m.tun.AttackMinUnits {
		m.target = m.pickTarget(ctx, units)
		m.retargetedAt = tick
		m.setState(attackAttacking, tick)
		return None{}
	}
	if waited {
		return Disband{Reason: "could not assemble attack force"}
	}

	m.priority = min(m.tun.AttackMaxPriority, m.priority+m.tun.AttackPriorityRamp)
	return RequestUnits{
		Types:    []string{missingType},
		Count:    missing,
		Priority: m.priority,
		Near:     rally,
		HasNear:  true,
	}
}

// deficit returns the composition type furthest from its target count and
// how many of it are still missing. Ties go to the alphabetically first type.
func (m *AttackMission) deficit(units []model.Actor) (string, int) {
	have := make(map[string]int)
	for _, u := range units {
		have[model.BaseType(u.Type)]++
	}
	types := make([]string, 0, len(m.tun.AttackComposition))
	for t := range m.tun.AttackComposition {
		types = append(types, t)
	}
	sort.Strings(types)

	bestType, best := "", 0
	for _, t := range types {
		if d := m.tun.AttackComposition[t] - have[model.BaseType(t)]; d > best {
			bestType, best = t, d
		}
	}
	return bestType, best
}

// pickTarget prefers the visible enemy building closest to the squad, then
// cycles through enemy start locations.
func (m *AttackMission) pickTarget(ctx *Context, units []model.Actor) model.Point {
	from, ok := model.Centroid(positions(units))
	if !ok {
		from = ctx.Awareness.RallyPoint()
	}
	best, bestDist := model.Point{}, math.Inf(1)
	for _, b := range ctx.World.Actors(model.Enemy, func(a model.Actor) bool { return a.Building }) {
		if d := b.Pos.DistanceTo(from); d < bestDist {
			best, bestDist = b.Pos, d
		}
	}
	if !math.IsInf(bestDist, 1) {
		return best
	}

	var starts []model.Point
	for _, p := range ctx.World.StartLocations() {
		if p != ctx.World.OwnStart() {
			starts = append(starts, p)
		}
	}
	if len(starts) == 0 {
		return from
	}
	p := starts[m.targetIndex%len(starts)]
	m.targetIndex++
	return p
}
