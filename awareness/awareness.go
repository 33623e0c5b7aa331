// Package awareness maintains the agent's model of the match: sector
// visibility and threat, open build space, scouting targets, a hostile
// spatial index and the global threat estimate.
package awareness

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
)

// economyTypes are buildings an expansion should keep its distance from.
var economyTypes = map[string]bool{
	"fact": true, // Construction Yard
	"proc": true, // Ore Refinery
}

// MatchAwareness is created once per game and refreshed every tick with a
// bounded amount of work.
type MatchAwareness struct {
	tun config.Awareness

	sectors    *SectorCache
	buildSpace *BuildSpaceCache
	scouting   *ScoutingManager
	hostiles   *HostileIndex

	threat         *GlobalThreat
	lastThreatTick int
	forceThreat    bool

	shouldAttack bool

	rally         model.Point
	lastRallyTick int

	world    model.World
	occupied map[model.Point]bool
}

// New builds the caches for a map of the given size.
func New(width, height int, tun config.Tuning) (*MatchAwareness, error) {
	sectors, err := NewSectorCache(width, height, tun.Awareness.SectorSize, tun.Awareness.DiffuseDecay)
	if err != nil {
		return nil, fmt.Errorf("sector cache: %w", err)
	}
	a := &MatchAwareness{
		tun:           tun.Awareness,
		sectors:       sectors,
		scouting:      NewScoutingManager(tun.Scouting),
		hostiles:      NewHostileIndex(width, height),
		lastRallyTick: math.MinInt32,
		occupied:      make(map[model.Point]bool),
	}
	bs, err := NewBuildSpaceCache(width, height, a.isBuildable)
	if err != nil {
		return nil, fmt.Errorf("build space cache: %w", err)
	}
	a.buildSpace = bs
	return a, nil
}

// isBuildable reads the current world: static buildability, minus tiles
// occupied by any visible structure.
func (a *MatchAwareness) isBuildable(x, y int) bool {
	if a.world == nil {
		return false
	}
	t, ok := a.world.Tile(x, y)
	return ok && t.Buildable && !a.occupied[model.Point{X: x, Y: y}]
}

func (a *MatchAwareness) markOccupied(w model.World) {
	clear(a.occupied)
	for _, rel := range []model.Relation{model.Self, model.Ally, model.Enemy, model.Neutral} {
		for _, b := range w.Actors(rel, func(x model.Actor) bool { return x.Building }) {
			a.occupied[b.Pos] = true
		}
	}
}

func (a *MatchAwareness) OnGameStart(w model.World) error {
	a.world = w
	a.rally = w.OwnStart()
	if err := a.scouting.OnGameStart(w, a.sectors); err != nil {
		return err
	}
	return nil
}

// OnAiUpdate refreshes the model for the tick. Errors come only from cache
// update functions and leave the caches in an unknown state.
func (a *MatchAwareness) OnAiUpdate(w model.World) error {
	a.world = w
	tick := w.Tick()

	a.markOccupied(w)
	a.hostiles.Rebuild(w.Actors(model.Enemy, nil))

	if err := a.sectors.UpdateSectors(w, a.hostiles, tick, a.tun.SectorBudget); err != nil {
		return fmt.Errorf("update sectors: %w", err)
	}
	if err := a.buildSpace.Update(tick, a.tun.BuildSpaceBudget); err != nil {
		return fmt.Errorf("update build space: %w", err)
	}
	a.scouting.OnAiUpdate(w, a.sectors)

	if a.forceThreat || a.threat == nil || tick-a.lastThreatTick >= a.tun.ThreatIntervalTicks {
		a.refreshThreat(w)
	}
	if tick-a.lastRallyTick >= a.tun.RallyIntervalTicks {
		a.lastRallyTick = tick
		a.rally = a.computeRallyPoint(w)
	}
	return nil
}

func (a *MatchAwareness) refreshThreat(w model.World) {
	visibility := a.sectors.AverageVisibility()
	if visibility < a.tun.ThreatMinVisibility {
		return
	}
	var visible []model.Actor
	visible = append(visible, w.Actors(model.Enemy, nil)...)
	visible = append(visible, w.Actors(model.Self, nil)...)
	g := CalculateGlobalThreat(visible, visibility)
	a.threat = &g
	a.lastThreatTick = w.Tick()
	a.forceThreat = false

	was := a.shouldAttack
	a.shouldAttack = a.checkShouldAttack(g, w.Tick())
	if was != a.shouldAttack {
		slog.Info("attack posture changed", "tick", w.Tick(), "shouldAttack", a.shouldAttack,
			"antiGround", g.AvailableAntiGroundPower, "landThreat", g.OffensiveLandThreat,
			"defensiveThreat", g.DefensiveThreat)
	}
}

// checkShouldAttack applies hysteresis: while defending the enemy threat is
// inflated, while attacking it is deflated, and both factors shrink over time.
func (a *MatchAwareness) checkShouldAttack(g GlobalThreat, tick int) bool {
	h := a.tun.Attack
	factor := h.DefendingFactor
	if a.shouldAttack {
		factor = h.AttackingFactor
	}
	if h.DecayTicks > 0 {
		factor *= math.Max(h.Floor, 1-float64(tick)/float64(h.DecayTicks))
	}
	groundPower := g.AvailableAntiGroundPower * 1.1
	groundThreat := (factor*g.OffensiveLandThreat + g.DefensiveThreat) * 1.1
	airPower := g.AvailableAirPower * 1.1
	airThreat := (factor*g.OffensiveAntiAirThreat + g.DefensiveThreat) * 1.1
	return groundPower > groundThreat || airPower > airThreat
}

// InvalidateThreat forces a threat recomputation on the next update.
func (a *MatchAwareness) InvalidateThreat() { a.forceThreat = true }

// computeRallyPoint moves from our base towards the closest enemy start.
func (a *MatchAwareness) computeRallyPoint(w model.World) model.Point {
	base := w.OwnStart()
	target, ok := a.nearestEnemyStart(w, base)
	if !ok {
		return base
	}
	return base.Towards(target, a.tun.RallyDistance)
}

func (a *MatchAwareness) nearestEnemyStart(w model.World, from model.Point) (model.Point, bool) {
	best, bestDist := model.Point{}, math.MaxFloat64
	for _, p := range w.StartLocations() {
		if p == w.OwnStart() {
			continue
		}
		if d := p.DistanceTo(from); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist < math.MaxFloat64
}

// HostilesNear returns hostiles within radius of p.
func (a *MatchAwareness) HostilesNear(p model.Point, radius float64) []Hostile {
	return a.hostiles.QueryRadius(p, radius)
}

// Threat returns the latest estimate; false until the first computation.
func (a *MatchAwareness) Threat() (GlobalThreat, bool) {
	if a.threat == nil {
		return GlobalThreat{}, false
	}
	return *a.threat, true
}

func (a *MatchAwareness) ShouldAttack() bool           { return a.shouldAttack }
func (a *MatchAwareness) RallyPoint() model.Point      { return a.rally }
func (a *MatchAwareness) Sectors() *SectorCache        { return a.sectors }
func (a *MatchAwareness) BuildSpace() *BuildSpaceCache { return a.buildSpace }
func (a *MatchAwareness) Scouting() *ScoutingManager   { return a.scouting }

// ExpansionCandidate picks a start location with clear build space, nearby
// resources, and no economy building of ours close by. Score favours money
// and proximity to our base.
func (a *MatchAwareness) ExpansionCandidate(w model.World) (model.Point, bool) {
	var economy []model.Point
	for _, b := range w.Actors(model.Self, func(x model.Actor) bool { return x.Building }) {
		if economyTypes[model.BaseType(b.Type)] {
			economy = append(economy, b.Pos)
		}
	}
	base := w.OwnStart()

	best, bestScore, found := model.Point{}, math.Inf(-1), false
	for _, p := range w.StartLocations() {
		if !w.Reachable(base, p) && p != base {
			continue
		}
		if tooClose(p, economy, a.tun.ExpansionMinEconomyDistance) {
			continue
		}
		if len(a.HostilesNear(p, a.tun.ExpansionMoneyRadius)) > 0 {
			continue
		}
		if d, err := a.buildSpace.DistanceAt(p.X, p.Y); err != nil || d < a.tun.ExpansionMinClearance {
			continue
		}
		money := a.sectors.MoneyNear(p, a.tun.ExpansionMoneyRadius)
		if money <= 0 {
			continue
		}
		score := money - p.DistanceTo(base)*10
		if score > bestScore {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}

func tooClose(p model.Point, others []model.Point, dist float64) bool {
	for _, o := range others {
		if o.DistanceTo(p) < dist {
			return true
		}
	}
	return false
}
