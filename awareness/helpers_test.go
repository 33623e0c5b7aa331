package awareness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

var testRules = []model.UnitRules{
	{Name: "e1", Category: model.Infantry, Combatant: true,
		Primary: &model.Weapon{Damage: 10, Range: 5, Cooldown: 1, AntiGround: true}},
	{Name: "e3", Category: model.Infantry, Combatant: true,
		Primary: &model.Weapon{Damage: 30, Range: 6, Cooldown: 2, AntiGround: true, AntiAir: true}},
	{Name: "mig", Category: model.Aircraft, Combatant: true,
		Primary: &model.Weapon{Damage: 50, Range: 4, Cooldown: 3, AntiGround: true}},
	{Name: "sam", Category: model.Structure,
		Primary: &model.Weapon{Damage: 50, Range: 8, Cooldown: 2, AntiAir: true}},
	{Name: "gun", Category: model.Structure,
		Primary: &model.Weapon{Damage: 40, Range: 6, Cooldown: 2, AntiGround: true}},
	{Name: "mammoth", Category: model.Vehicle, Combatant: true,
		Primary:   &model.Weapon{Damage: 5000, Range: 8, Cooldown: 1, AntiGround: true},
		Secondary: &model.Weapon{Damage: 5000, Range: 8, Cooldown: 1, AntiAir: true}},
	{Name: "harv", Category: model.Vehicle, Harvester: true},
	{Name: "fact", Category: model.Structure},
	{Name: "proc", Category: model.Structure},
}

// worldSpec describes a test map. Tiles default to buildable land.
type worldSpec struct {
	width, height int
	tiles         func(x, y int) model.Tile
	visible       func(x, y int) bool
	starts        []model.Point
	state         model.GameState
}

func buildMap(t *testing.T, ws worldSpec) *model.Map {
	t.Helper()
	tiles := make([]model.Tile, ws.width*ws.height)
	for i := range tiles {
		x, y := i%ws.width, i/ws.width
		if ws.tiles != nil {
			tiles[i] = ws.tiles(x, y)
		} else {
			tiles[i] = model.Tile{Terrain: model.Land, Buildable: true}
		}
	}
	starts := ws.starts
	if len(starts) == 0 {
		starts = []model.Point{{X: 1, Y: 1}, {X: ws.width - 2, Y: ws.height - 2}}
	}
	m, err := model.NewMap(model.MapInfo{
		Width: ws.width, Height: ws.height, Tiles: tiles,
		StartLocations: starts, Rules: testRules,
	})
	require.NoError(t, err)
	return m
}

func snapshot(t *testing.T, m *model.Map, ws worldSpec) *model.Snapshot {
	t.Helper()
	gs := ws.state
	if gs.Player.Name == "" {
		gs.Player.Name = "me"
	}
	if ws.visible != nil {
		vis := make([]bool, ws.width*ws.height)
		for i := range vis {
			vis[i] = ws.visible(i%ws.width, i/ws.width)
		}
		gs.Visibility = model.EncodeVisibility(vis)
	}
	s, err := model.NewSnapshot(m, gs)
	require.NoError(t, err)
	return s
}

func newWorld(t *testing.T, ws worldSpec) *model.Snapshot {
	t.Helper()
	return snapshot(t, buildMap(t, ws), ws)
}

func enemy(id int, typ string, x, y int) model.Foreign {
	return model.Foreign{ID: id, Owner: "them", Type: typ, X: x, Y: y, HP: 100, MaxHP: 100}
}

func unit(id int, typ string, x, y int) model.Unit {
	return model.Unit{ID: id, Type: typ, X: x, Y: y, HP: 100, MaxHP: 100, Idle: true}
}
