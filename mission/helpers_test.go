package mission

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/vimy-tactics/awareness"
	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
)

const mapSize = 64

var testRules = []model.UnitRules{
	{Name: "e1", Category: model.Infantry, Combatant: true,
		Primary: &model.Weapon{Damage: 10, Range: 5, Cooldown: 1, AntiGround: true}},
	{Name: "e3", Category: model.Infantry, Combatant: true,
		Primary: &model.Weapon{Damage: 30, Range: 6, Cooldown: 2, AntiGround: true, AntiAir: true}},
	{Name: "dog", Category: model.Infantry, Combatant: true,
		Primary: &model.Weapon{Damage: 100, Range: 1, Cooldown: 1, AntiGround: true}},
	{Name: "2tnk", Category: model.Vehicle, Combatant: true,
		Primary: &model.Weapon{Damage: 40, Range: 6, Cooldown: 2, AntiGround: true}},
	{Name: "mig", Category: model.Aircraft, Combatant: true,
		Primary: &model.Weapon{Damage: 50, Range: 4, Cooldown: 3, AntiGround: true}},
	{Name: "harv", Category: model.Vehicle, Harvester: true},
	{Name: "mcv", Category: model.Vehicle},
	{Name: "e6", Category: model.Infantry},
	{Name: "fact", Category: model.Structure},
	{Name: "oilb", Category: model.Structure, Capturable: true},
}

var testStarts = []model.Point{{X: 5, Y: 5}, {X: 58, Y: 58}, {X: 58, Y: 5}}

func testMap(t *testing.T) *model.Map {
	t.Helper()
	tiles := make([]model.Tile, mapSize*mapSize)
	for i := range tiles {
		tiles[i] = model.Tile{Terrain: model.Land, Buildable: true}
	}
	m, err := model.NewMap(model.MapInfo{
		Width: mapSize, Height: mapSize, Tiles: tiles,
		StartLocations: testStarts, Rules: testRules,
	})
	require.NoError(t, err)
	return m
}

// scene is one tick of game state on the shared test map.
type scene struct {
	tick      int
	units     []model.Unit
	buildings []model.Building
	enemies   []model.Foreign
	neutrals  []model.Foreign
	visible   func(x, y int) bool
}

func (s scene) world(t *testing.T, m *model.Map) *model.Snapshot {
	t.Helper()
	gs := model.GameState{
		Tick: s.tick, Player: model.Player{Name: "me"},
		Units: s.units, Buildings: s.buildings, Enemies: s.enemies, Neutrals: s.neutrals,
	}
	if s.visible != nil {
		vis := make([]bool, mapSize*mapSize)
		for i := range vis {
			vis[i] = s.visible(i%mapSize, i/mapSize)
		}
		gs.Visibility = model.EncodeVisibility(vis)
	}
	w, err := model.NewSnapshot(m, gs)
	require.NoError(t, err)
	return w
}

func unit(id int, typ string, x, y int) model.Unit {
	return model.Unit{ID: id, Type: typ, X: x, Y: y, HP: 100, MaxHP: 100, Idle: true}
}

func enemy(id int, typ string, x, y int) model.Foreign {
	return model.Foreign{ID: id, Owner: "them", Type: typ, X: x, Y: y, HP: 100, MaxHP: 100}
}

func enemyBuilding(id int, typ string, x, y int) model.Foreign {
	f := enemy(id, typ, x, y)
	f.Building = true
	return f
}

// fakeAwareness derives hostiles from the current world and lets tests set
// the rest directly.
type fakeAwareness struct {
	world    model.World
	rally    model.Point
	attack   bool
	scouting *awareness.ScoutingManager
	site     model.Point
	hasSite  bool
}

func newFakeAwareness() *fakeAwareness {
	return &fakeAwareness{
		rally:    model.Point{X: 10, Y: 10},
		attack:   true,
		scouting: awareness.NewScoutingManager(config.Default().Scouting),
	}
}

func (f *fakeAwareness) ShouldAttack() bool                                 { return f.attack }
func (f *fakeAwareness) RallyPoint() model.Point                            { return f.rally }
func (f *fakeAwareness) Scouting() *awareness.ScoutingManager               { return f.scouting }
func (f *fakeAwareness) Threat() (awareness.GlobalThreat, bool)             { return awareness.GlobalThreat{}, false }
func (f *fakeAwareness) ExpansionCandidate(model.World) (model.Point, bool) { return f.site, f.hasSite }

func (f *fakeAwareness) HostilesNear(p model.Point, radius float64) []awareness.Hostile {
	var out []awareness.Hostile
	for _, a := range f.world.Actors(model.Enemy, nil) {
		if a.Pos.DistanceTo(p) <= radius {
			out = append(out, awareness.Hostile{ID: a.ID, Pos: a.Pos, Threat: awareness.Firepower(a)})
		}
	}
	return out
}

// newContext builds a context whose units are the world's own actors with
// the given ids.
func newContext(w model.World, aw *fakeAwareness, ids ...int) *Context {
	aw.world = w
	ctx := &Context{World: w, Awareness: aw, Orders: orders.NewBatcher()}
	for _, id := range ids {
		if a, ok := w.Actor(id); ok {
			ctx.units = append(ctx.units, a)
		}
	}
	return ctx
}

type captureSink struct{ calls []orders.GroupedOrder }

func (s *captureSink) Issue(o orders.GroupedOrder) error {
	s.calls = append(s.calls, o)
	return nil
}

func flush(t *testing.T, b *orders.Batcher) []orders.GroupedOrder {
	t.Helper()
	sink := &captureSink{}
	_, err := b.Flush(sink)
	require.NoError(t, err)
	return sink.calls
}

func sortedIDs(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}
