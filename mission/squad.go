package mission

import (
	"log/slog"
	"math"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
)

type SquadMode int

const (
	Gathering SquadMode = iota
	Attacking
)

func (m SquadMode) String() string {
	if m == Attacking {
		return "attacking"
	}
	return "gathering"
}

// NoContact is LastContactTick before the squad has seen any hostile.
const NoContact = -1

// CombatSquad is the unit-level behaviour of a fighting group. Gathering
// pulls stragglers to the centre of mass; attacking has each unit pick the
// best-weighted hostile in scan range or advance on the target area. Two
// spread thresholds give hysteresis between the modes.
type CombatSquad struct {
	tun         config.Squad
	mode        SquadMode
	target      model.Point
	lastEval    int
	lastContact int
	log         *orderLog
}

func NewCombatSquad(tun config.Squad) *CombatSquad {
	return &CombatSquad{
		tun:         tun,
		lastEval:    math.MinInt32,
		lastContact: NoContact,
		log:         newOrderLog(),
	}
}

func (s *CombatSquad) Mode() SquadMode         { return s.mode }
func (s *CombatSquad) Target() model.Point     { return s.target }
func (s *CombatSquad) SetTarget(p model.Point) { s.target = p }
func (s *CombatSquad) LastContactTick() int    { return s.lastContact }
func (s *CombatSquad) forceEvaluation()        { s.lastEval = math.MinInt32 }

// GatherRadius is the spread under which a gathering squad commits.
func (s *CombatSquad) GatherRadius(n int) float64 {
	return math.Sqrt(float64(n))*s.tun.GatherRatio + s.tun.GatherMinRadius
}

// BreakRadius is the spread over which an attacking squad regroups.
func (s *CombatSquad) BreakRadius(n int) float64 {
	return math.Sqrt(float64(n))*s.tun.GatherRatio + s.tun.GatherMaxRadius
}

// spread returns the centre of mass and the largest distance from it.
func spread(units []model.Actor) (model.Point, float64) {
	center, _ := model.Centroid(positions(units))
	r := 0.0
	for _, u := range units {
		r = max(r, u.Pos.DistanceTo(center))
	}
	return center, r
}

// Update re-evaluates the squad at most once per EvaluateIntervalTicks and
// reports whether it did. An empty squad does not consume the interval.
func (s *CombatSquad) Update(ctx *Context, units []model.Actor) bool {
	tick := ctx.Tick()
	if tick-s.lastEval < s.tun.EvaluateIntervalTicks {
		return false
	}
	s.log.retain(units)
	if len(units) == 0 {
		return false
	}
	s.lastEval = tick

	center, r := spread(units)
	switch s.mode {
	case Gathering:
		if r <= s.GatherRadius(len(units)) {
			s.setMode(Attacking, len(units), r)
		}
	case Attacking:
		if r > s.BreakRadius(len(units)) {
			s.setMode(Gathering, len(units), r)
		}
	}

	if s.mode == Gathering {
		limit := s.GatherRadius(len(units))
		for _, u := range units {
			if u.Pos.DistanceTo(center) > limit {
				s.log.issue(ctx.Orders, orders.Move(u.ID, center))
			}
		}
		return true
	}
	s.attack(ctx, units)
	return true
}

func (s *CombatSquad) setMode(m SquadMode, n int, r float64) {
	slog.Debug("squad mode", "from", s.mode, "to", m, "units", n, "spread", r)
	s.mode = m
}

// scanRadius follows the shortest-ranged armed unit so the squad engages at
// a distance every member can fight at.
func (s *CombatSquad) scanRadius(units []model.Actor) float64 {
	shortest := math.Inf(1)
	for _, u := range units {
		if r := u.WeaponRange(); r > 0 {
			shortest = min(shortest, r)
		}
	}
	if math.IsInf(shortest, 1) {
		return s.tun.MinScanRadius
	}
	return max(s.tun.MinScanRadius, shortest*s.tun.ScanFactor)
}

func (s *CombatSquad) attack(ctx *Context, units []model.Actor) {
	radius := s.scanRadius(units)
	for _, u := range units {
		if target, ok := s.bestTarget(ctx, u, radius); ok {
			s.lastContact = ctx.Tick()
			s.log.issue(ctx.Orders, orders.Attack(u.ID, target))
			continue
		}
		s.log.issue(ctx.Orders, orders.AttackMove(u.ID, s.target))
	}
}

// bestTarget picks the hostile near u with the highest weight per distance
// that u can actually shoot at.
func (s *CombatSquad) bestTarget(ctx *Context, u model.Actor, radius float64) (int, bool) {
	best, bestScore := 0, 0.0
	for _, h := range ctx.Awareness.HostilesNear(u.Pos, radius) {
		enemy, ok := ctx.World.Actor(h.ID)
		if !ok {
			continue
		}
		if enemy.IsAir() && !u.IsAntiAir() || !enemy.IsAir() && !u.IsAntiGround() {
			continue
		}
		weight := 1.0
		if enemy.Building {
			weight *= s.tun.BuildingWeight
		}
		if enemy.IsHarvester() && s.tun.TargetHarvesters {
			weight *= s.tun.HarvesterWeight
		}
		score := weight / (1 + u.Pos.DistanceTo(enemy.Pos))
		if score > bestScore {
			best, bestScore = h.ID, score
		}
	}
	return best, bestScore > 0
}

// MoveAll sends every unit farther than within from p towards it.
func (s *CombatSquad) MoveAll(ctx *Context, units []model.Actor, p model.Point, within float64) {
	s.log.retain(units)
	for _, u := range units {
		if u.Pos.DistanceTo(p) > within {
			s.log.issue(ctx.Orders, orders.Move(u.ID, p))
		}
	}
}
