package mission

import (
	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
	"github.com/nstehr/vimy/vimy-tactics/rules"
)

// deployRange is how close an MCV must be to its site before deploying.
const deployRange = 1.5

// ExpansionMission drives an MCV to the expansion candidate and deploys it.
// It succeeds when the MCV disappears after the deploy order.
type ExpansionMission struct {
	tun config.Missions
	log *orderLog

	started    int
	hasStarted bool
	hadMCV     bool
	deployed   bool
	site       model.Point
	hasSite    bool
}

func NewExpansionMission(tun config.Tuning) *ExpansionMission {
	return &ExpansionMission{tun: tun.Missions, log: newOrderLog()}
}

func (m *ExpansionMission) Name() string       { return "expansion" }
func (m *ExpansionMission) Priority() float64  { return m.tun.ExpansionPriority }
func (m *ExpansionMission) IsActive() bool     { return true }
func (m *ExpansionMission) UnitsLocked() bool  { return m.hadMCV }
func (m *ExpansionMission) OnDisband(*Context) {}

// Site returns the chosen expansion location.
func (m *ExpansionMission) Site() (model.Point, bool) { return m.site, m.hasSite }

func (m *ExpansionMission) Update(ctx *Context) Action {
	tick := ctx.Tick()
	if !m.hasStarted {
		m.started, m.hasStarted = tick, true
	}
	units := ctx.Units()
	if len(units) == 0 {
		switch {
		case m.deployed:
			return Disband{}
		case m.hadMCV:
			return Disband{Reason: "mcv lost"}
		}
	}
	if tick-m.started >= m.tun.ExpansionTimeoutTicks {
		return Disband{Reason: "expansion timed out"}
	}
	if len(units) == 0 {
		return RequestUnits{
			Types:    rules.RoleTypes("mcv"),
			Count:    1,
			Priority: m.tun.ExpansionPriority,
			Near:     ctx.World.OwnStart(),
			HasNear:  true,
		}
	}
	m.hadMCV = true

	if !m.hasSite {
		site, ok := ctx.Awareness.ExpansionCandidate(ctx.World)
		if !ok {
			return Disband{Reason: "no expansion site"}
		}
		m.site, m.hasSite = site, true
	}

	mcv := units[0]
	if mcv.Pos.DistanceTo(m.site) <= deployRange {
		m.log.issue(ctx.Orders, orders.Deploy(mcv.ID))
		m.deployed = true
		return None{}
	}
	m.log.issue(ctx.Orders, orders.Move(mcv.ID, m.site))
	return None{}
}
