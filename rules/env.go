package rules

import (
	"github.com/nstehr/vimy/vimy-tactics/awareness"
	"github.com/nstehr/vimy/vimy-tactics/model"
)

// Awareness is the slice of the match model rule conditions read.
type Awareness interface {
	ShouldAttack() bool
	Threat() (awareness.GlobalThreat, bool)
	Scouting() *awareness.ScoutingManager
	ExpansionCandidate(w model.World) (model.Point, bool)
}

// MissionIndex answers which missions currently exist.
type MissionIndex interface {
	HasMission(name string) bool
	MissionCount(prefix string) int
}

// RuleEnv wraps the world and exposes helper methods callable from expr
// expressions. Awareness and Missions may be nil; helpers then report
// nothing known.
type RuleEnv struct {
	World     model.World
	Awareness Awareness
	Missions  MissionIndex
}

func (e RuleEnv) self(match func(model.Actor) bool) []model.Actor {
	if e.World == nil {
		return nil
	}
	return e.World.Actors(model.Self, match)
}

func isUnit(a model.Actor) bool     { return !a.Building }
func isBuilding(a model.Actor) bool { return a.Building }

func (e RuleEnv) HasUnit(t string) bool { return e.UnitCount(t) > 0 }

func (e RuleEnv) UnitCount(t string) int {
	return countAnyType(e.self(isUnit), []string{t})
}

func (e RuleEnv) HasBuilding(t string) bool { return e.BuildingCount(t) > 0 }

func (e RuleEnv) BuildingCount(t string) int {
	return countAnyType(e.self(isBuilding), []string{t})
}

// HasRole checks whether any own actor fills a logical role such as
// "construction_yard" or "engineer". Unknown roles are never filled.
func (e RuleEnv) HasRole(role string) bool { return e.RoleCount(role) > 0 }

func (e RuleEnv) RoleCount(role string) int {
	types := RoleTypes(role)
	if len(types) == 0 {
		return 0
	}
	return countAnyType(e.self(nil), types)
}

func (e RuleEnv) Cash() int {
	if e.World == nil {
		return 0
	}
	return e.World.Cash()
}

func (e RuleEnv) Tick() int {
	if e.World == nil {
		return 0
	}
	return e.World.Tick()
}

func (e RuleEnv) EnemiesVisible() bool {
	return e.World != nil && len(e.World.Actors(model.Enemy, nil)) > 0
}

// CombatUnitCount counts own armed mobile units.
func (e RuleEnv) CombatUnitCount() int {
	return len(e.self(func(a model.Actor) bool { return a.IsCombatant() }))
}

// Capturables returns visible neutral or enemy buildings that can be captured.
func (e RuleEnv) Capturables() []model.Actor {
	if e.World == nil {
		return nil
	}
	capturable := func(a model.Actor) bool {
		return a.Building && a.Rules != nil && a.Rules.Capturable
	}
	out := e.World.Actors(model.Neutral, capturable)
	return append(out, e.World.Actors(model.Enemy, capturable)...)
}

func (e RuleEnv) CapturableCount() int { return len(e.Capturables()) }

func (e RuleEnv) ShouldAttack() bool {
	return e.Awareness != nil && e.Awareness.ShouldAttack()
}

// ThreatCertainty is the observed map fraction behind the current threat
// estimate, or 0 before the first estimate.
func (e RuleEnv) ThreatCertainty() float64 {
	if e.Awareness == nil {
		return 0
	}
	g, ok := e.Awareness.Threat()
	if !ok {
		return 0
	}
	return g.Certainty
}

func (e RuleEnv) HasScoutTargets() bool {
	return e.Awareness != nil && e.Awareness.Scouting().HasTargets()
}

func (e RuleEnv) HasExpansionCandidate() bool {
	if e.Awareness == nil || e.World == nil {
		return false
	}
	_, ok := e.Awareness.ExpansionCandidate(e.World)
	return ok
}

func (e RuleEnv) HasMission(name string) bool {
	return e.Missions != nil && e.Missions.HasMission(name)
}

// MissionCount counts missions whose name starts with prefix.
func (e RuleEnv) MissionCount(prefix string) int {
	if e.Missions == nil {
		return 0
	}
	return e.Missions.MissionCount(prefix)
}
