package agent

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/rules"
)

// EventKind identifies the category of a game event that should force a
// threat re-evaluation ahead of the regular refresh interval.
type EventKind string

const (
	EventCriticalBuildingLost EventKind = "critical_building_lost"
	EventArmyDevastated       EventKind = "army_devastated"
	EventEnemyBaseDiscovered  EventKind = "enemy_base_discovered"
	EventEconomyCrisis        EventKind = "economy_crisis"
	EventFirstContact         EventKind = "first_contact"
)

// Event represents a significant game event detected by diffing consecutive
// game states.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// stateSnapshot captures the diffable fields from a game state tick.
type stateSnapshot struct {
	buildingIDs  map[int]string // id → type for owned buildings
	combatCount  int
	harvesterCnt int
	cash         int
	enemiesSeen  bool
	enemyBase    bool // an enemy building has been seen
}

// criticalRoles are buildings whose loss fundamentally changes what the AI
// can do.
var criticalRoles = []string{"construction_yard", "war_factory", "refinery", "tech_center"}

func isCriticalBuilding(t string) bool {
	for _, role := range criticalRoles {
		if rules.IsRole(role, t) {
			return true
		}
	}
	return false
}

// takeSnapshot captures the current diffable state for next tick's comparison.
func takeSnapshot(w model.World) stateSnapshot {
	snap := stateSnapshot{
		buildingIDs: make(map[int]string),
		cash:        w.Cash(),
	}
	for _, a := range w.Actors(model.Self, nil) {
		switch {
		case a.Building:
			snap.buildingIDs[a.ID] = a.Type
		case a.IsHarvester():
			snap.harvesterCnt++
		case a.IsCombatant():
			snap.combatCount++
		}
	}
	for _, a := range w.Actors(model.Enemy, nil) {
		snap.enemiesSeen = true
		if a.Building {
			snap.enemyBase = true
			break
		}
	}
	return snap
}

// detectEvents compares cur against the previous snapshot and returns any
// triggered events. Returns nil if prev is nil (first tick).
func detectEvents(tick int, prev *stateSnapshot, cur stateSnapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event

	for id, typ := range prev.buildingIDs {
		if !isCriticalBuilding(typ) {
			continue
		}
		if _, exists := cur.buildingIDs[id]; !exists {
			events = append(events, Event{
				Kind:   EventCriticalBuildingLost,
				Tick:   tick,
				Detail: fmt.Sprintf("lost %s (id %d)", typ, id),
			})
			break // one event per tick is enough
		}
	}

	// >50% of combat units lost, with a floor of 6 to avoid early noise
	if prev.combatCount >= 6 {
		lost := prev.combatCount - cur.combatCount
		if lost > 0 && float64(lost)/float64(prev.combatCount) > 0.5 {
			events = append(events, Event{
				Kind:   EventArmyDevastated,
				Tick:   tick,
				Detail: fmt.Sprintf("%d→%d combat units", prev.combatCount, cur.combatCount),
			})
		}
	}

	if !prev.enemyBase && cur.enemyBase {
		events = append(events, Event{Kind: EventEnemyBaseDiscovered, Tick: tick})
	}

	if prev.harvesterCnt > 0 && cur.harvesterCnt == 0 {
		events = append(events, Event{Kind: EventEconomyCrisis, Tick: tick, Detail: "all harvesters lost"})
	} else if prev.cash > 1000 && cur.cash < 200 {
		events = append(events, Event{
			Kind:   EventEconomyCrisis,
			Tick:   tick,
			Detail: fmt.Sprintf("cash collapsed %d → %d", prev.cash, cur.cash),
		})
	}

	if !prev.enemiesSeen && cur.enemiesSeen {
		events = append(events, Event{Kind: EventFirstContact, Tick: tick})
	}

	return events
}
