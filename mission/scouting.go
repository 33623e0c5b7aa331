package mission

import (
	"github.com/nstehr/vimy/vimy-tactics/awareness"
	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/orders"
)

// scoutRetryDecay scales the priority of a target that timed out before it
// goes back on the queue, so it stops shadowing the rest.
const scoutRetryDecay = 0.5

// ScoutingMission borrows one fast unit and walks it through targets pulled
// from the scouting manager. Targets the scout has no ground path to are
// skipped. A target it cannot reach in time goes back on the queue at a
// decayed priority; one it still holds when disbanded goes back unchanged.
type ScoutingMission struct {
	name string
	tun  config.Missions
	log  *orderLog

	started     int
	hasStarted  bool
	hadScout    bool
	target      awareness.ScoutTarget
	hasTarget   bool
	targetSince int
	visited     int
}

func NewScoutingMission(name string, tun config.Tuning) *ScoutingMission {
	return &ScoutingMission{name: name, tun: tun.Missions, log: newOrderLog()}
}

func (m *ScoutingMission) Name() string      { return m.name }
func (m *ScoutingMission) Priority() float64 { return m.tun.ScoutPriority }
func (m *ScoutingMission) IsActive() bool    { return true }
func (m *ScoutingMission) UnitsLocked() bool { return false }
func (m *ScoutingMission) Visited() int      { return m.visited }

// Target returns the target currently being visited.
func (m *ScoutingMission) Target() (awareness.ScoutTarget, bool) {
	return m.target, m.hasTarget
}

func (m *ScoutingMission) OnDisband(ctx *Context) {
	if m.hasTarget {
		ctx.Awareness.Scouting().AddTarget(m.target)
		m.hasTarget = false
	}
}

func (m *ScoutingMission) Update(ctx *Context) Action {
	tick := ctx.Tick()
	if !m.hasStarted {
		m.started, m.hasStarted = tick, true
	}
	units := ctx.Units()
	if len(units) == 0 {
		if m.hadScout {
			return Disband{Reason: "scout lost"}
		}
		if tick-m.started >= m.tun.ScoutTimeoutTicks {
			return Disband{Reason: "no scout available"}
		}
		return RequestUnits{
			Types:    m.tun.ScoutUnitTypes,
			Count:    1,
			Priority: m.tun.ScoutPriority,
			Near:     ctx.World.OwnStart(),
			HasNear:  true,
		}
	}
	m.hadScout = true
	scout := units[0]
	scouting := ctx.Awareness.Scouting()

	if m.hasTarget {
		p := m.target.Point
		switch {
		case ctx.World.IsVisible(p.X, p.Y) || scout.Pos.DistanceTo(p) <= m.tun.ScoutArrivalRange:
			m.hasTarget = false
			m.visited++
		case tick-m.targetSince >= m.tun.ScoutTimeoutTicks:
			m.target.Priority *= scoutRetryDecay
			scouting.AddTarget(m.target)
			m.hasTarget = false
			return Disband{Reason: "scout target timed out"}
		}
	}

	// Permanent targets this scout cannot walk to stay queued for another.
	var deferred []awareness.ScoutTarget
	for !m.hasTarget {
		t, ok := scouting.GetNewScoutTarget()
		if !ok {
			break
		}
		if ctx.World.IsVisible(t.Point.X, t.Point.Y) {
			continue
		}
		if !ctx.World.Reachable(scout.Pos, t.Point) {
			if t.Permanent {
				deferred = append(deferred, t)
			}
			continue
		}
		m.target, m.hasTarget, m.targetSince = t, true, tick
	}
	for _, t := range deferred {
		scouting.AddTarget(t)
	}
	if !m.hasTarget {
		return Disband{}
	}
	m.log.issue(ctx.Orders, orders.Move(scout.ID, m.target.Point))
	return None{}
}
