package agent

import (
	"testing"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

var eventRules = []model.UnitRules{
	{Name: "e1", Category: model.Infantry, Combatant: true, Primary: &model.Weapon{Damage: 10, Range: 5, Cooldown: 1, AntiGround: true}},
	{Name: "3tnk", Category: model.Vehicle, Combatant: true, Primary: &model.Weapon{Damage: 60, Range: 6, Cooldown: 2, AntiGround: true}},
	{Name: "harv", Category: model.Vehicle, Harvester: true},
	{Name: "fact", Category: model.Structure},
	{Name: "powr", Category: model.Structure},
	{Name: "proc", Category: model.Structure},
	{Name: "weap", Category: model.Structure},
}

func eventMap(t *testing.T) *model.Map {
	t.Helper()
	const size = 16
	tiles := make([]model.Tile, size*size)
	for i := range tiles {
		tiles[i] = model.Tile{Terrain: model.Land, Buildable: true}
	}
	m, err := model.NewMap(model.MapInfo{
		Width: size, Height: size, Tiles: tiles,
		StartLocations: []model.Point{{X: 2, Y: 2}, {X: 13, Y: 13}},
		Rules:          eventRules,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// baseGameState returns a minimal game state for testing.
func baseGameState(tick int) model.GameState {
	return model.GameState{
		Tick:   tick,
		Player: model.Player{Name: "me", Cash: 500},
		Buildings: []model.Building{
			{ID: 1, Type: "fact", HP: 1000, MaxHP: 1000},
			{ID: 2, Type: "powr", HP: 400, MaxHP: 400},
			{ID: 3, Type: "proc", HP: 600, MaxHP: 600},
			{ID: 4, Type: "weap", HP: 800, MaxHP: 800},
		},
		Units: []model.Unit{
			{ID: 10, Type: "harv"},
			{ID: 11, Type: "3tnk", Idle: true},
			{ID: 12, Type: "3tnk", Idle: true},
			{ID: 13, Type: "3tnk", Idle: true},
			{ID: 14, Type: "3tnk", Idle: true},
			{ID: 15, Type: "3tnk", Idle: true},
			{ID: 16, Type: "3tnk", Idle: true},
			{ID: 17, Type: "e1", Idle: true},
			{ID: 18, Type: "e1", Idle: true},
		},
	}
}

func snap(t *testing.T, m *model.Map, gs model.GameState) stateSnapshot {
	t.Helper()
	w, err := model.NewSnapshot(m, gs)
	if err != nil {
		t.Fatal(err)
	}
	return takeSnapshot(w)
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestDetectEvents_NoEvents(t *testing.T) {
	m := eventMap(t)
	prev := snap(t, m, baseGameState(100))

	events := detectEvents(101, &prev, snap(t, m, baseGameState(101)))
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d: %+v", len(events), events)
	}
}

func TestDetectEvents_NilPrev(t *testing.T) {
	m := eventMap(t)
	if events := detectEvents(100, nil, snap(t, m, baseGameState(100))); events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestTakeSnapshot_Counts(t *testing.T) {
	s := snap(t, eventMap(t), baseGameState(100))
	if s.combatCount != 8 || s.harvesterCnt != 1 || len(s.buildingIDs) != 4 {
		t.Errorf("combat=%d harvesters=%d buildings=%d", s.combatCount, s.harvesterCnt, len(s.buildingIDs))
	}
	if s.enemiesSeen || s.enemyBase {
		t.Error("no enemies in the base state")
	}
}

func TestDetectEvents_BuildingLost(t *testing.T) {
	tests := []struct {
		name   string
		remove int
		typ    string
		want   bool
	}{
		{"construction yard", 1, "fact", true},
		{"faction variant", 1, "fact.england", true},
		{"refinery", 3, "proc", true},
		{"power plant", 2, "powr", false},
	}
	m := eventMap(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := baseGameState(100)
			for i := range gs.Buildings {
				if gs.Buildings[i].ID == tt.remove {
					gs.Buildings[i].Type = tt.typ
				}
			}
			prev := snap(t, m, gs)

			var kept []model.Building
			for _, b := range gs.Buildings {
				if b.ID != tt.remove {
					kept = append(kept, b)
				}
			}
			gs.Tick, gs.Buildings = 101, kept
			events := detectEvents(101, &prev, snap(t, m, gs))
			if got := hasEvent(events, EventCriticalBuildingLost); got != tt.want {
				t.Errorf("critical_building_lost = %v, want %v (%+v)", got, tt.want, events)
			}
		})
	}
}

func TestDetectEvents_ArmyDevastated(t *testing.T) {
	m := eventMap(t)
	gs := baseGameState(100)
	prev := snap(t, m, gs)

	// 8 combat units → 3
	gs.Tick = 101
	gs.Units = []model.Unit{gs.Units[0], gs.Units[1], gs.Units[2], gs.Units[3]}
	if events := detectEvents(101, &prev, snap(t, m, gs)); !hasEvent(events, EventArmyDevastated) {
		t.Errorf("expected army_devastated event, got %+v", events)
	}

	// wiped out entirely still counts
	gs.Units = gs.Units[:1]
	if events := detectEvents(102, &prev, snap(t, m, gs)); !hasEvent(events, EventArmyDevastated) {
		t.Errorf("expected army_devastated event with no units left, got %+v", events)
	}
}

func TestDetectEvents_ArmyDevastated_BelowFloor(t *testing.T) {
	m := eventMap(t)
	gs := baseGameState(100)
	gs.Units = gs.Units[:5] // harvester + 4 tanks
	prev := snap(t, m, gs)

	gs.Units = gs.Units[:2]
	if events := detectEvents(101, &prev, snap(t, m, gs)); hasEvent(events, EventArmyDevastated) {
		t.Errorf("army below the floor should not trigger, got %+v", events)
	}
}

func TestDetectEvents_EnemySightings(t *testing.T) {
	m := eventMap(t)
	gs := baseGameState(100)
	prev := snap(t, m, gs)

	gs.Enemies = []model.Foreign{{ID: 50, Owner: "them", Type: "e1", X: 8, Y: 8, HP: 50, MaxHP: 50}}
	cur := snap(t, m, gs)
	events := detectEvents(101, &prev, cur)
	if !hasEvent(events, EventFirstContact) {
		t.Errorf("expected first_contact, got %+v", events)
	}
	if hasEvent(events, EventEnemyBaseDiscovered) {
		t.Errorf("a unit is not a base, got %+v", events)
	}

	gs.Enemies = append(gs.Enemies, model.Foreign{ID: 51, Owner: "them", Type: "fact", X: 13, Y: 13, HP: 100, MaxHP: 100, Building: true})
	events = detectEvents(102, &cur, snap(t, m, gs))
	if !hasEvent(events, EventEnemyBaseDiscovered) {
		t.Errorf("expected enemy_base_discovered, got %+v", events)
	}
	if hasEvent(events, EventFirstContact) {
		t.Errorf("first_contact fires once, got %+v", events)
	}
}

func TestDetectEvents_EconomyCrisis(t *testing.T) {
	m := eventMap(t)

	gs := baseGameState(100)
	prev := snap(t, m, gs)
	gs.Units = gs.Units[1:]
	if events := detectEvents(101, &prev, snap(t, m, gs)); !hasEvent(events, EventEconomyCrisis) {
		t.Errorf("expected economy_crisis for lost harvesters, got %+v", events)
	}

	gs = baseGameState(100)
	gs.Player.Cash = 1500
	prev = snap(t, m, gs)
	gs.Player.Cash = 100
	if events := detectEvents(101, &prev, snap(t, m, gs)); !hasEvent(events, EventEconomyCrisis) {
		t.Errorf("expected economy_crisis for cash collapse, got %+v", events)
	}
}
