package mission

import (
	"strconv"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
	"github.com/nstehr/vimy/vimy-tactics/rules"
)

func engineerMissionName(target int) string {
	return "engineer-" + strconv.Itoa(target)
}

// EngineerMission sends one engineer to capture a building. The mission
// ends when the building becomes ours or can no longer be found.
type EngineerMission struct {
	target int
	tun    config.Missions
	log    *orderLog

	started     int
	hasStarted  bool
	hadEngineer bool
}

func NewEngineerMission(target int, tun config.Tuning) *EngineerMission {
	return &EngineerMission{target: target, tun: tun.Missions, log: newOrderLog()}
}

func (m *EngineerMission) Name() string       { return engineerMissionName(m.target) }
func (m *EngineerMission) Priority() float64  { return m.tun.EngineerPriority }
func (m *EngineerMission) IsActive() bool     { return true }
func (m *EngineerMission) UnitsLocked() bool  { return m.hadEngineer }
func (m *EngineerMission) OnDisband(*Context) {}

func (m *EngineerMission) Update(ctx *Context) Action {
	tick := ctx.Tick()
	if !m.hasStarted {
		m.started, m.hasStarted = tick, true
	}
	target, ok := ctx.World.Actor(m.target)
	if !ok {
		return Disband{Reason: "capture target gone"}
	}
	if target.Relation == model.Self {
		return Disband{}
	}
	if tick-m.started >= m.tun.EngineerTimeoutTicks {
		return Disband{Reason: "capture timed out"}
	}

	units := ctx.Units()
	if len(units) == 0 {
		if m.hadEngineer {
			return Disband{Reason: "engineer lost"}
		}
		return RequestUnits{
			Types:    rules.RoleTypes("engineer"),
			Count:    1,
			Priority: m.tun.EngineerPriority,
			Near:     target.Pos,
			HasNear:  true,
		}
	}
	m.hadEngineer = true
	m.log.issue(ctx.Orders, orders.Capture(units[0].ID, m.target))
	return None{}
}
