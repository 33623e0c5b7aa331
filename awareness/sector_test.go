package awareness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/vimy-tactics/grid"
	"github.com/nstehr/vimy/vimy-tactics/model"
)

func TestSectorVisibilityAndThreat(t *testing.T) {
	ws := worldSpec{
		width: 16, height: 16,
		tiles: func(x, y int) model.Tile {
			if x >= 8 && y >= 8 {
				return model.Tile{Terrain: model.Cliff}
			}
			return model.Tile{Terrain: model.Land, Buildable: true, Resource: 1}
		},
		visible: func(x, y int) bool { return x < 8 },
		state:   model.GameState{Enemies: []model.Foreign{enemy(1, "e1", 2, 2)}},
	}
	w := newWorld(t, ws)
	hostiles := NewHostileIndex(16, 16)
	hostiles.Rebuild(w.Actors(model.Enemy, nil))

	sc, err := NewSectorCache(16, 16, 8, 0.95)
	require.NoError(t, err)
	require.NoError(t, sc.UpdateSectors(w, hostiles, 3, 4))

	bw, bh := sc.Bounds()
	assert.Equal(t, 2, bw)
	assert.Equal(t, 2, bh)

	home, _ := sc.Sector(0, 0)
	assert.Equal(t, 3, home.LastUpdatedTick)
	assert.Equal(t, 1.0, home.Value.VisibilityRatio)
	assert.Equal(t, 64.0, home.Value.Money)
	assert.Greater(t, home.Value.Threat, 0.0)

	east, _ := sc.Sector(1, 0)
	assert.Zero(t, east.Value.VisibilityRatio)
	assert.Zero(t, east.Value.Threat)
	assert.GreaterOrEqual(t, east.Value.DiffuseThreat, home.Value.Threat)

	cliffs, _ := sc.Sector(1, 1)
	assert.True(t, cliffs.Updated())
	assert.False(t, cliffs.Value.HasTiles)

	sc.ForEach(func(_, _ int, c grid.Cell[Sector]) {
		assert.GreaterOrEqual(t, c.Value.DiffuseThreat, c.Value.Threat)
		assert.GreaterOrEqual(t, c.Value.DiffuseThreat, 0.0)
	})

	// Three sectors have tiles: two fully visible, one not at all.
	assert.InDelta(t, 2.0/3.0, sc.AverageVisibility(), 1e-9)
}

func TestSectorUpdateRatio(t *testing.T) {
	ws := worldSpec{width: 16, height: 16}
	w := newWorld(t, ws)
	sc, err := NewSectorCache(16, 16, 8, 0.95)
	require.NoError(t, err)

	assert.Zero(t, sc.UpdateRatio(0))
	require.NoError(t, sc.UpdateSectors(w, nil, 5, 2))
	assert.Equal(t, 0.5, sc.UpdateRatio(5))
	assert.Zero(t, sc.UpdateRatio(6))

	_, ok := sc.SectorForTile(-1, 3)
	assert.False(t, ok)
	c, ok := sc.SectorForTile(9, 3)
	require.True(t, ok)
	assert.True(t, c.Updated())
}

func TestSectorCenterClampsToMap(t *testing.T) {
	sc, err := NewSectorCache(12, 12, 8, 0.95)
	require.NoError(t, err)
	assert.Equal(t, model.Point{X: 4, Y: 4}, sc.SectorCenter(0, 0))
	assert.Equal(t, model.Point{X: 11, Y: 11}, sc.SectorCenter(1, 1))

	_, err = NewSectorCache(12, 12, 0, 0.95)
	var cfgErr *model.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestDiffuseThreatDecaysAcrossEmptySectors(t *testing.T) {
	ws := worldSpec{width: 40, height: 8, state: model.GameState{
		Enemies: []model.Foreign{enemy(1, "e1", 1, 1)},
	}}
	w := newWorld(t, ws)
	hostiles := NewHostileIndex(40, 8)
	hostiles.Rebuild(w.Actors(model.Enemy, nil))
	sc, err := NewSectorCache(40, 8, 8, 0.5)
	require.NoError(t, err)
	for tick := 1; tick <= 5; tick++ {
		require.NoError(t, sc.UpdateSectors(w, hostiles, tick, 5))
	}

	prev := -1.0
	for sx := 4; sx >= 1; sx-- {
		c, _ := sc.Sector(sx, 0)
		assert.Greater(t, c.Value.DiffuseThreat, prev, "sector %d", sx)
		prev = c.Value.DiffuseThreat
	}
}

func TestDiffuseThreatSettlesAcrossGrid(t *testing.T) {
	ws := worldSpec{width: 48, height: 48, state: model.GameState{
		Enemies: []model.Foreign{
			enemy(1, "e1", 3, 3),
			enemy(2, "e3", 44, 20),
			enemy(3, "mig", 20, 42),
			enemy(4, "e1", 21, 43),
		},
	}}
	w := newWorld(t, ws)
	hostiles := NewHostileIndex(48, 48)
	hostiles.Rebuild(w.Actors(model.Enemy, nil))
	const decay = 0.8
	sc, err := NewSectorCache(48, 48, 8, decay)
	require.NoError(t, err)
	bw, bh := sc.Bounds()
	for tick := 1; tick <= bw*bh+2; tick++ {
		require.NoError(t, sc.UpdateSectors(w, hostiles, tick, bw*bh))
	}

	threatened := 0
	sc.ForEach(func(x, y int, c grid.Cell[Sector]) {
		require.True(t, c.Updated())
		v := c.Value
		if v.Threat > 0 {
			threatened++
		}
		assert.GreaterOrEqual(t, v.DiffuseThreat, max(0, v.Threat), "sector %d,%d", x, y)

		local := v.Threat
		best := 0.0
		for _, n := range sectorNeighbours {
			nc, ok := sc.Sector(x+n.dx, y+n.dy)
			if !ok {
				continue
			}
			local += nc.Value.Threat
			propagated := decay * nc.Value.DiffuseThreat * n.weight
			assert.GreaterOrEqual(t, v.DiffuseThreat+1e-9, propagated, "sector %d,%d from %+d,%+d", x, y, n.dx, n.dy)
			best = max(best, propagated)
		}
		// No amplification beyond the local sum or the strongest propagated neighbour.
		assert.InDelta(t, max(local, best), v.DiffuseThreat, 1e-9, "sector %d,%d", x, y)
	})
	assert.GreaterOrEqual(t, threatened, 3)
}
