// Package mission turns match awareness into unit orders. A Controller owns
// every mission and the unit-claim map; missions delegate unit-level combat
// to a CombatSquad and queue their orders on a Batcher.
package mission

import (
	"github.com/nstehr/vimy/vimy-tactics/awareness"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
	"github.com/nstehr/vimy/vimy-tactics/rules"
)

// Mission is one goal-directed unit of tactical intent. Missions never hold
// unit references themselves; the controller hands them their live claimed
// units through the Context on every update.
type Mission interface {
	Name() string
	Priority() float64
	IsActive() bool
	// UnitsLocked makes the mission's units immune to claims from any other
	// mission, whatever its priority.
	UnitsLocked() bool
	Update(ctx *Context) Action
	OnDisband(ctx *Context)
}

// Awareness is what missions read from the match model.
type Awareness interface {
	rules.Awareness
	HostilesNear(p model.Point, radius float64) []awareness.Hostile
	RallyPoint() model.Point
}

// Context is valid for a single mission callback.
type Context struct {
	World     model.World
	Awareness Awareness
	Orders    *orders.Batcher

	units []model.Actor
}

// Units returns the live units currently claimed by the mission being called.
func (c *Context) Units() []model.Actor { return c.units }

func (c *Context) Tick() int { return c.World.Tick() }

// Action is a mission's request to the controller for this tick.
type Action interface {
	isAction()
}

type None struct{}

// Disband ends the mission. A non-empty Reason marks it as failed, which
// puts the factory that created it on cooldown.
type Disband struct {
	Reason string
}

// RequestUnits claims up to Count own units of the given types, nearest to
// Near when HasNear is set. An empty Types list accepts any combatant.
type RequestUnits struct {
	Types    []string
	Count    int
	Priority float64
	Near     model.Point
	HasNear  bool
}

type RequestSpecificUnits struct {
	IDs      []int
	Priority float64
}

// GrabCombatants claims every own combatant within Radius of Point.
type GrabCombatants struct {
	Point    model.Point
	Radius   float64
	Priority float64
}

type ReleaseUnits struct {
	IDs []int
}

func (None) isAction()                 {}
func (Disband) isAction()              {}
func (RequestUnits) isAction()         {}
func (RequestSpecificUnits) isAction() {}
func (GrabCombatants) isAction()       {}
func (ReleaseUnits) isAction()         {}

// orderLog remembers the last order given to each unit so an identical
// order is not re-issued and does not interrupt the unit. It forgets
// everything once the batcher reports a failed flush, since the remembered
// orders may never have been delivered.
type orderLog struct {
	last     map[int]orders.BatchableAction
	failures int
}

func newOrderLog() *orderLog {
	return &orderLog{last: make(map[int]orders.BatchableAction)}
}

func (l *orderLog) issue(b *orders.Batcher, a orders.BatchableAction) bool {
	if n := b.Failures(); n != l.failures {
		clear(l.last)
		l.failures = n
	}
	if prev, ok := l.last[a.UnitID]; ok && prev == a {
		return false
	}
	l.last[a.UnitID] = a
	b.Push(a)
	return true
}

// retain forgets units that are no longer present.
func (l *orderLog) retain(units []model.Actor) {
	keep := make(map[int]bool, len(units))
	for _, u := range units {
		keep[u.ID] = true
	}
	for id := range l.last {
		if !keep[id] {
			delete(l.last, id)
		}
	}
}

func positions(units []model.Actor) []model.Point {
	out := make([]model.Point, len(units))
	for i, u := range units {
		out[i] = u.Pos
	}
	return out
}
