package mission

import (
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
	"github.com/nstehr/vimy/vimy-tactics/rules"
)

// Controller is the arena that owns all missions and the unit-claim map.
// Missions are referenced by name; a unit is claimed by at most one mission.
// All mutation happens inside OnAiUpdate and AddMission on the tick goroutine.
type Controller struct {
	tun config.Tuning

	missions []Mission // insertion order; polling order
	byName   map[string]Mission
	claims   map[int]string // unit id → mission name

	factories []*Factory
	origin    map[string]*Factory // mission name → factory that created it
	engine    *rules.Engine
}

func NewController(tun config.Tuning) *Controller {
	return &Controller{
		tun:    tun,
		byName: make(map[string]Mission),
		claims: make(map[int]string),
		origin: make(map[string]*Factory),
	}
}

// AddMission registers m unless a mission with the same name exists.
func (c *Controller) AddMission(m Mission) bool {
	if _, ok := c.byName[m.Name()]; ok {
		return false
	}
	c.missions = append(c.missions, m)
	c.byName[m.Name()] = m
	slog.Info("mission added", "mission", m.Name(), "priority", m.Priority())
	return true
}

func (c *Controller) HasMission(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// MissionCount counts missions whose name starts with prefix.
func (c *Controller) MissionCount(prefix string) int {
	n := 0
	for _, m := range c.missions {
		if strings.HasPrefix(m.Name(), prefix) {
			n++
		}
	}
	return n
}

// Missions returns mission names in polling order.
func (c *Controller) Missions() []string {
	out := make([]string, len(c.missions))
	for i, m := range c.missions {
		out[i] = m.Name()
	}
	return out
}

// MissionFor returns the name of the mission that claims the unit.
func (c *Controller) MissionFor(unit int) (string, bool) {
	name, ok := c.claims[unit]
	return name, ok
}

// ClaimedUnits returns the ids claimed by the named mission, ascending.
func (c *Controller) ClaimedUnits(name string) []int {
	var out []int
	for id, holder := range c.claims {
		if holder == name {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

type pendingClaim struct {
	mission Mission
	action  Action
}

// OnAiUpdate runs one controller pass: prune dead claims, drop inactive
// missions, poll every mission, apply disbands, apply claims by descending
// priority, then run the mission factories.
func (c *Controller) OnAiUpdate(w model.World, aw Awareness, b *orders.Batcher) {
	ctx := &Context{World: w, Awareness: aw, Orders: b}
	c.pruneClaims(w)

	for _, m := range slices.Clone(c.missions) {
		if !m.IsActive() {
			c.disband(ctx, m, "")
		}
	}

	var disbands []pendingClaim
	var claims []pendingClaim
	for _, m := range slices.Clone(c.missions) {
		ctx.units = c.units(w, m.Name())
		switch a := m.Update(ctx).(type) {
		case nil, None:
		case Disband:
			disbands = append(disbands, pendingClaim{m, a})
		default:
			claims = append(claims, pendingClaim{m, a})
		}
	}
	for _, d := range disbands {
		c.disband(ctx, d.mission, d.action.(Disband).Reason)
	}

	sort.SliceStable(claims, func(i, j int) bool {
		return claimPriority(claims[i].action) > claimPriority(claims[j].action)
	})
	for _, p := range claims {
		if c.byName[p.mission.Name()] != p.mission {
			continue
		}
		c.applyClaim(w, p.mission, p.action)
	}

	if c.engine != nil {
		c.engine.Evaluate(rules.RuleEnv{World: w, Awareness: aw, Missions: c})
	}
}

// claimPriority orders claim processing. Releases go first so freed units
// are available to the requests that follow.
func claimPriority(a Action) float64 {
	switch a := a.(type) {
	case ReleaseUnits:
		return math.Inf(1)
	case RequestUnits:
		return a.Priority
	case RequestSpecificUnits:
		return a.Priority
	case GrabCombatants:
		return a.Priority
	}
	return math.Inf(-1)
}

// pruneClaims drops claims on units that no longer exist or are not ours.
func (c *Controller) pruneClaims(w model.World) {
	for id := range c.claims {
		if a, ok := w.Actor(id); !ok || a.Relation != model.Self {
			delete(c.claims, id)
		}
	}
}

func (c *Controller) units(w model.World, name string) []model.Actor {
	var out []model.Actor
	for _, id := range c.ClaimedUnits(name) {
		if a, ok := w.Actor(id); ok {
			out = append(out, a)
		}
	}
	return out
}

func (c *Controller) disband(ctx *Context, m Mission, reason string) {
	name := m.Name()
	ctx.units = c.units(ctx.World, name)
	m.OnDisband(ctx)
	for id, holder := range c.claims {
		if holder == name {
			delete(c.claims, id)
		}
	}
	c.missions = slices.DeleteFunc(c.missions, func(x Mission) bool { return x.Name() == name })
	delete(c.byName, name)

	f := c.origin[name]
	delete(c.origin, name)
	if reason == "" {
		slog.Info("mission disbanded", "mission", name, "units", len(ctx.units))
		return
	}
	slog.Info("mission failed", "mission", name, "reason", reason, "units", len(ctx.units))
	if f != nil {
		f.OnMissionFailed(m, reason, ctx.World.Tick())
	}
}

// transferable reports whether m may claim the unit at the given priority.
// Units of locked missions never move; otherwise strictly higher priority wins.
func (c *Controller) transferable(unit int, m Mission, priority float64) bool {
	holderName, ok := c.claims[unit]
	if !ok {
		return true
	}
	if holderName == m.Name() {
		return false
	}
	holder, ok := c.byName[holderName]
	if !ok {
		return true
	}
	if holder.UnitsLocked() {
		return false
	}
	return priority > holder.Priority()
}

func (c *Controller) claim(unit int, m Mission) {
	if prev, ok := c.claims[unit]; ok {
		slog.Debug("unit reassigned", "unit", unit, "from", prev, "to", m.Name())
	}
	c.claims[unit] = m.Name()
}

func (c *Controller) applyClaim(w model.World, m Mission, a Action) {
	switch a := a.(type) {
	case ReleaseUnits:
		for _, id := range a.IDs {
			if c.claims[id] == m.Name() {
				delete(c.claims, id)
			}
		}

	case RequestSpecificUnits:
		for _, id := range a.IDs {
			u, ok := w.Actor(id)
			if ok && u.Relation == model.Self && !u.Building && c.transferable(id, m, a.Priority) {
				c.claim(id, m)
			}
		}

	case GrabCombatants:
		for _, u := range w.Actors(model.Self, func(x model.Actor) bool {
			return x.IsCombatant() && x.Pos.DistanceTo(a.Point) <= a.Radius
		}) {
			if c.transferable(u.ID, m, a.Priority) {
				c.claim(u.ID, m)
			}
		}

	case RequestUnits:
		if a.Count <= 0 {
			return
		}
		candidates := w.Actors(model.Self, func(x model.Actor) bool {
			return !x.Building && matchesTypes(x, a.Types) && c.transferable(x.ID, m, a.Priority)
		})
		if a.HasNear {
			sort.SliceStable(candidates, func(i, j int) bool {
				return candidates[i].Pos.DistanceTo(a.Near) < candidates[j].Pos.DistanceTo(a.Near)
			})
		}
		for _, u := range candidates[:min(a.Count, len(candidates))] {
			c.claim(u.ID, m)
		}
	}
}

func matchesTypes(a model.Actor, types []string) bool {
	if len(types) == 0 {
		return a.IsCombatant()
	}
	base := model.BaseType(a.Type)
	for _, t := range types {
		if model.BaseType(t) == base {
			return true
		}
	}
	return false
}
