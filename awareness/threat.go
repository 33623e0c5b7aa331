package awareness

import (
	"math"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// maxUnitFirepower caps a single unit's contribution so one high-end unit
// cannot dominate the totals.
const maxUnitFirepower = 800

// GlobalThreat compares our observed combat power with that of all visible
// opponents. It is a value snapshot; recomputation replaces it wholesale.
type GlobalThreat struct {
	Certainty float64 // fraction of the map currently observed

	OffensiveLandThreat    float64 // enemy mobile ground firepower
	OffensiveAirThreat     float64 // enemy aircraft firepower
	OffensiveAntiAirThreat float64 // enemy mobile anti-air firepower
	DefensiveThreat        float64 // enemy anti-ground structures

	DefensivePower           float64 // our anti-ground structures
	AvailableAntiGroundPower float64 // our anti-ground combatants
	AvailableAntiAirPower    float64 // our anti-air combatants and structures
	AvailableAirPower        float64 // our combat aircraft
}

// Firepower estimates damage output: hpRatio × (damage+1) × sqrt(range+1) /
// max(cooldown, 1), summed over weapon slots and capped.
func Firepower(a model.Actor) float64 {
	if a.Rules == nil {
		return 0
	}
	hp := a.HPRatio()
	total := 0.0
	for _, w := range a.Rules.Weapons() {
		total += hp * (w.Damage + 1) * math.Sqrt(w.Range+1) / math.Max(w.Cooldown, 1)
	}
	return math.Min(maxUnitFirepower, total)
}

// CalculateGlobalThreat buckets the firepower of the given actors. Actors are
// classified by relation and weapon projectile flags, so a structure that
// gains an anti-air weapon counts as anti-air without special cases.
func CalculateGlobalThreat(actors []model.Actor, certainty float64) GlobalThreat {
	g := GlobalThreat{Certainty: certainty}
	for _, a := range actors {
		fp := Firepower(a)
		if fp == 0 {
			continue
		}
		switch a.Relation {
		case model.Enemy:
			switch {
			case a.Building:
				if a.IsAntiGround() {
					g.DefensiveThreat += fp
				}
			case a.IsAir():
				g.OffensiveAirThreat += fp
			default:
				g.OffensiveLandThreat += fp
			}
			if !a.Building && a.IsAntiAir() {
				g.OffensiveAntiAirThreat += fp
			}
		case model.Self:
			if a.Building {
				if a.IsAntiGround() {
					g.DefensivePower += fp
				}
				if a.IsAntiAir() {
					g.AvailableAntiAirPower += fp
				}
				continue
			}
			if !a.IsCombatant() {
				continue
			}
			if a.IsAntiGround() {
				g.AvailableAntiGroundPower += fp
			}
			if a.IsAntiAir() {
				g.AvailableAntiAirPower += fp
			}
			if a.IsAir() {
				g.AvailableAirPower += fp
			}
		}
	}
	return g
}
