package model

import (
	"errors"
	"testing"
)

func tilesFrom(rows ...string) []Tile {
	var out []Tile
	for _, row := range rows {
		for _, c := range row {
			switch c {
			case '#':
				out = append(out, Tile{Terrain: Cliff})
			case '~':
				out = append(out, Tile{Terrain: Water})
			case '=':
				out = append(out, Tile{Terrain: Bridge})
			case '$':
				out = append(out, Tile{Terrain: Ore, Resource: 25})
			default:
				out = append(out, Tile{Terrain: Land, Buildable: true})
			}
		}
	}
	return out
}

func TestTileMapAt(t *testing.T) {
	m, err := NewTileMap(4, 2, tilesFrom(
		"..~~",
		"#=$.",
	))
	if err != nil {
		t.Fatalf("NewTileMap: %v", err)
	}

	tests := []struct {
		x, y int
		want TerrainType
	}{
		{0, 0, Land},
		{2, 0, Water},
		{0, 1, Cliff},
		{1, 1, Bridge},
		{2, 1, Ore},
	}
	for _, tc := range tests {
		got, ok := m.At(tc.x, tc.y)
		if !ok {
			t.Errorf("At(%d, %d) reported out of bounds", tc.x, tc.y)
			continue
		}
		if got.Terrain != tc.want {
			t.Errorf("At(%d, %d) = %d, want %d", tc.x, tc.y, got.Terrain, tc.want)
		}
	}
}

func TestTileMapAtOutOfBounds(t *testing.T) {
	m, err := NewTileMap(2, 2, tilesFrom("..", ".."))
	if err != nil {
		t.Fatalf("NewTileMap: %v", err)
	}
	for _, p := range []Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if _, ok := m.At(p.X, p.Y); ok {
			t.Errorf("At(%d, %d) should be out of bounds", p.X, p.Y)
		}
	}
}

func TestNewTileMapRejectsBadInput(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tiles         []Tile
	}{
		{"zero width", 0, 2, nil},
		{"negative height", 2, -1, nil},
		{"tile count mismatch", 2, 2, tilesFrom("...")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTileMap(tc.width, tc.height, tc.tiles)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestTileMapReachable(t *testing.T) {
	m, err := NewTileMap(5, 3, tilesFrom(
		"..#..",
		"..#..",
		"..=..",
	))
	if err != nil {
		t.Fatalf("NewTileMap: %v", err)
	}
	if !m.Reachable(Point{0, 0}, Point{4, 0}) {
		t.Error("expected both sides to connect over the bridge")
	}

	walled, err := NewTileMap(5, 3, tilesFrom(
		"..#..",
		"..#..",
		"..~..",
	))
	if err != nil {
		t.Fatalf("NewTileMap: %v", err)
	}
	if walled.Reachable(Point{0, 0}, Point{4, 0}) {
		t.Error("water should separate the two halves")
	}
	if walled.Reachable(Point{0, 0}, Point{2, 0}) {
		t.Error("cliff tiles are never reachable")
	}
	if walled.Reachable(Point{0, 0}, Point{9, 9}) {
		t.Error("out-of-bounds target should not be reachable")
	}
}

func TestTileMapHasWater(t *testing.T) {
	noWater, _ := NewTileMap(2, 2, tilesFrom("..", "#."))
	if noWater.HasWater() {
		t.Error("HasWater() should be false for land-only map")
	}
	withWater, _ := NewTileMap(2, 2, tilesFrom(".~", "#."))
	if !withWater.HasWater() {
		t.Error("HasWater() should be true for map with water")
	}
}
