package mission

import (
	"math"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/rules"
)

// DefenceMission is the standing base-defence mission. Idle, it holds
// nearby combatants at a low priority any other mission may override.
// While hostiles are inside the defence radius it raises its priority and
// locks its units.
type DefenceMission struct {
	tun     config.Missions
	squad   *CombatSquad
	engaged bool
	active  bool
}

func NewDefenceMission(tun config.Tuning) *DefenceMission {
	return &DefenceMission{tun: tun.Missions, squad: NewCombatSquad(tun.Squad), active: true}
}

func (m *DefenceMission) Name() string       { return "defence" }
func (m *DefenceMission) IsActive() bool     { return m.active }
func (m *DefenceMission) UnitsLocked() bool  { return m.engaged }
func (m *DefenceMission) Engaged() bool      { return m.engaged }
func (m *DefenceMission) OnDisband(*Context) {}

func (m *DefenceMission) Priority() float64 {
	if m.engaged {
		return m.tun.DefenceEngagedPriority
	}
	return m.tun.DefenceIdlePriority
}

// base is the construction yard nearest our start, else any own building.
func (m *DefenceMission) base(w model.World) (model.Point, bool) {
	buildings := w.Actors(model.Self, func(a model.Actor) bool { return a.Building })
	if len(buildings) == 0 {
		return model.Point{}, false
	}
	best, bestDist := buildings[0].Pos, math.Inf(1)
	for _, b := range buildings {
		if !rules.IsRole("construction_yard", b.Type) {
			continue
		}
		if d := b.Pos.DistanceTo(w.OwnStart()); d < bestDist {
			best, bestDist = b.Pos, d
		}
	}
	return best, true
}

func (m *DefenceMission) Update(ctx *Context) Action {
	base, ok := m.base(ctx.World)
	if !ok {
		m.active = false
		return None{}
	}

	hostiles := ctx.Awareness.HostilesNear(base, m.tun.DefenceRadius)
	m.engaged = len(hostiles) > 0
	if !m.engaged {
		return GrabCombatants{Point: base, Radius: m.tun.DefenceRadius, Priority: m.Priority()}
	}

	nearest, nearestDist := hostiles[0].Pos, math.Inf(1)
	for _, h := range hostiles {
		if d := h.Pos.DistanceTo(base); d < nearestDist {
			nearest, nearestDist = h.Pos, d
		}
	}
	m.squad.SetTarget(nearest)
	m.squad.Update(ctx, ctx.Units())
	return GrabCombatants{Point: base, Radius: m.tun.DefenceRadius, Priority: m.Priority()}
}
