package model

// TerrainType classifies a single map tile.
type TerrainType byte

const (
	Land   TerrainType = 0 // passable ground
	Water  TerrainType = 1 // naval only
	Cliff  TerrainType = 2 // impassable (rock, tree, wall)
	Bridge TerrainType = 3 // land corridor over water (chokepoint)
	Ore    TerrainType = 4 // passable ground carrying resources
)

// Passable reports whether ground units can stand on the terrain.
func (t TerrainType) Passable() bool {
	return t == Land || t == Bridge || t == Ore
}

// Tile is the static description of one map cell.
type Tile struct {
	Terrain   TerrainType `json:"terrain"`
	Buildable bool        `json:"buildable"`
	Resource  int         `json:"resource"` // credits harvestable from this tile
}

// TileMap is the row-major tile grid of a map, plus the ground connectivity
// labelling used to answer reachability queries.
type TileMap struct {
	Width  int
	Height int
	Tiles  []Tile // row-major: Tiles[y*Width + x]

	components []int32 // connected-component label per tile, -1 if impassable
}

// NewTileMap validates dimensions and labels passable regions.
func NewTileMap(width, height int, tiles []Tile) (*TileMap, error) {
	if width <= 0 || height <= 0 {
		return nil, Misconfigured("tilemap", "invalid size %dx%d", width, height)
	}
	if len(tiles) != width*height {
		return nil, Misconfigured("tilemap", "expected %d tiles, got %d", width*height, len(tiles))
	}
	m := &TileMap{Width: width, Height: height, Tiles: tiles}
	m.labelComponents()
	return m, nil
}

// InBounds reports whether (x, y) lies on the map.
func (m *TileMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At returns the tile at (x, y). The second result is false out of bounds.
func (m *TileMap) At(x, y int) (Tile, bool) {
	if !m.InBounds(x, y) {
		return Tile{}, false
	}
	return m.Tiles[y*m.Width+x], true
}

// Reachable reports whether ground units can walk from one tile to the other.
func (m *TileMap) Reachable(from, to Point) bool {
	if !m.InBounds(from.X, from.Y) || !m.InBounds(to.X, to.Y) {
		return false
	}
	a := m.components[from.Y*m.Width+from.X]
	b := m.components[to.Y*m.Width+to.X]
	return a >= 0 && a == b
}

// HasWater returns true if any tile is classified as Water.
func (m *TileMap) HasWater() bool {
	for _, t := range m.Tiles {
		if t.Terrain == Water {
			return true
		}
	}
	return false
}

// labelComponents flood-fills 4-connected passable regions once per map.
func (m *TileMap) labelComponents() {
	m.components = make([]int32, len(m.Tiles))
	for i := range m.components {
		m.components[i] = -1
	}
	var label int32
	stack := make([]int, 0, 64)
	for start, t := range m.Tiles {
		if !t.Terrain.Passable() || m.components[start] >= 0 {
			continue
		}
		m.components[start] = label
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%m.Width, i/m.Width
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if !m.InBounds(nx, ny) {
					continue
				}
				j := ny*m.Width + nx
				if m.components[j] >= 0 || !m.Tiles[j].Terrain.Passable() {
					continue
				}
				m.components[j] = label
				stack = append(stack, j)
			}
		}
		label++
	}
}
