package awareness

import (
	"math"

	"github.com/nstehr/vimy/vimy-tactics/grid"
	"github.com/nstehr/vimy/vimy-tactics/model"
)

// Sector aggregates one SectorSize×SectorSize block of tiles. A sector whose
// cell has never been updated has no meaningful values yet.
type Sector struct {
	HasTiles        bool    // false when the block has no valid tiles
	VisibilityRatio float64 // visible valid tiles / valid tiles
	Threat          float64 // firepower of hostiles inside the sector
	DiffuseThreat   float64 // Threat propagated from neighbouring sectors
	Money           float64 // harvestable resources inside the sector
}

// Neighbours are sampled in this fixed order when diffusing threat.
var sectorNeighbours = [8]struct {
	dx, dy int
	weight float64
}{
	{-1, -1, math.Sqrt2 / 2}, {0, -1, 1}, {1, -1, math.Sqrt2 / 2},
	{-1, 0, 1}, {1, 0, 1},
	{-1, 1, math.Sqrt2 / 2}, {0, 1, 1}, {1, 1, math.Sqrt2 / 2},
}

// SectorCache maintains per-sector visibility, threat and resource values on
// top of an incremental grid, a budgeted number of sectors per tick.
type SectorCache struct {
	size  int
	mapW  int
	mapH  int
	decay float64
	cache *grid.Cache[Sector]

	// Inputs for the sectors being recomputed during UpdateSectors.
	world    model.World
	hostiles *HostileIndex
}

func NewSectorCache(mapW, mapH, sectorSize int, decay float64) (*SectorCache, error) {
	if sectorSize <= 0 {
		return nil, model.Misconfigured("sectors", "sector size %d", sectorSize)
	}
	s := &SectorCache{size: sectorSize, mapW: mapW, mapH: mapH, decay: decay}
	w := (mapW + sectorSize - 1) / sectorSize
	h := (mapH + sectorSize - 1) / sectorSize
	c, err := grid.New(w, h, nil, s.updateSector, nil)
	if err != nil {
		return nil, err
	}
	s.cache = c
	return s, nil
}

// UpdateSectors recomputes up to budget sectors and stamps them with tick.
// It is the only mutator.
func (s *SectorCache) UpdateSectors(w model.World, hostiles *HostileIndex, tick, budget int) error {
	s.world, s.hostiles = w, hostiles
	defer func() { s.world, s.hostiles = nil, nil }()
	return s.cache.UpdateCells(budget, tick)
}

func (s *SectorCache) updateSector(step grid.Step, _ Sector, r grid.Reader[Sector]) (Sector, error) {
	var out Sector
	x0, y0 := step.X*s.size, step.Y*s.size
	x1, y1 := min(x0+s.size, s.mapW), min(y0+s.size, s.mapH)

	valid, visible := 0, 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			t, ok := s.world.Tile(x, y)
			if !ok || t.Terrain == model.Cliff {
				continue
			}
			valid++
			if s.world.IsVisible(x, y) {
				visible++
			}
			out.Money += float64(t.Resource)
		}
	}
	if valid > 0 {
		out.HasTiles = true
		out.VisibilityRatio = float64(visible) / float64(valid)
	}

	if s.hostiles != nil {
		for _, h := range s.hostiles.QueryRect(Rect{Min: model.Point{X: x0, Y: y0}, Max: model.Point{X: x1, Y: y1}}) {
			out.Threat += h.Threat
		}
	}

	neighbourThreat := 0.0
	bestPropagated := 0.0
	for _, n := range sectorNeighbours {
		cell, ok := r.Cell(step.X+n.dx, step.Y+n.dy)
		if !ok || !cell.Updated() {
			continue
		}
		neighbourThreat += cell.Value.Threat
		bestPropagated = max(bestPropagated, cell.Value.DiffuseThreat*n.weight)
	}
	out.DiffuseThreat = max(out.Threat+neighbourThreat, s.decay*bestPropagated)
	return out, nil
}

// Bounds returns the sector grid dimensions.
func (s *SectorCache) Bounds() (int, int) { return s.cache.Width(), s.cache.Height() }

// SectorCoords converts a tile coordinate to sector coordinates.
func (s *SectorCache) SectorCoords(x, y int) (int, int) {
	return x / s.size, y / s.size
}

// SectorCenter returns the tile at the middle of a sector, clamped to the map.
func (s *SectorCache) SectorCenter(sx, sy int) model.Point {
	return model.Point{
		X: min(sx*s.size+s.size/2, s.mapW-1),
		Y: min(sy*s.size+s.size/2, s.mapH-1),
	}
}

// Sector returns the sector at sector coordinates.
func (s *SectorCache) Sector(sx, sy int) (grid.Cell[Sector], bool) {
	return s.cache.Cell(sx, sy)
}

// SectorForTile returns the sector containing the tile.
func (s *SectorCache) SectorForTile(x, y int) (grid.Cell[Sector], bool) {
	if x < 0 || y < 0 {
		return grid.Cell[Sector]{}, false
	}
	return s.cache.Cell(s.SectorCoords(x, y))
}

func (s *SectorCache) ForEach(fn func(sx, sy int, cell grid.Cell[Sector])) {
	s.cache.ForEach(fn)
}

// UpdateRatio is the fraction of sectors refreshed at or after sinceTick.
func (s *SectorCache) UpdateRatio(sinceTick int) float64 {
	return s.cache.UpdatedSince(sinceTick)
}

// AverageVisibility is the mean visibility over scanned sectors with tiles.
func (s *SectorCache) AverageVisibility() float64 {
	total, n := 0.0, 0
	s.cache.ForEach(func(_, _ int, c grid.Cell[Sector]) {
		if c.Updated() && c.Value.HasTiles {
			total += c.Value.VisibilityRatio
			n++
		}
	})
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// MoneyNear sums sector money for sectors whose centre is within radius of p.
func (s *SectorCache) MoneyNear(p model.Point, radius float64) float64 {
	sx, sy := s.SectorCoords(p.X, p.Y)
	total := 0.0
	s.cache.ForEachInRadius(sx, sy, radius/float64(s.size)+1, func(x, y int, c grid.Cell[Sector]) {
		if c.Updated() && s.SectorCenter(x, y).DistanceTo(p) <= radius {
			total += c.Value.Money
		}
	})
	return total
}
