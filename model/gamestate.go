package model

import "fmt"

// MapInfo is sent once per game during the hello handshake.
type MapInfo struct {
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	Tiles          []Tile      `json:"tiles"`
	StartLocations []Point     `json:"startLocations"`
	OwnStart       int         `json:"ownStart"` // index into StartLocations
	Rules          []UnitRules `json:"rules"`
}

type GameState struct {
	Tick       int        `json:"tick"`
	Player     Player     `json:"player"`
	Buildings  []Building `json:"buildings"`
	Units      []Unit     `json:"units"`
	Enemies    []Foreign  `json:"enemies"`
	Allies     []Foreign  `json:"allies"`
	Neutrals   []Foreign  `json:"neutrals"`
	Visibility []byte     `json:"visibility"` // row-major bitmask, LSB first
}

type Player struct {
	Name             string `json:"name"`
	Cash             int    `json:"cash"`
	Resources        int    `json:"resources"`
	ResourceCapacity int    `json:"resourceCapacity"`
	PowerProvided    int    `json:"powerProvided"`
	PowerDrained     int    `json:"powerDrained"`
}

type Unit struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	HP         int    `json:"hp"`
	MaxHP      int    `json:"maxHp"`
	Idle       bool   `json:"idle"`
	CargoCount int    `json:"cargoCount"`
}

func (u Unit) TypeName() string { return u.Type }

type Building struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxHp"`
}

func (b Building) TypeName() string { return b.Type }

// Foreign is a visible object owned by another player.
type Foreign struct {
	ID       int    `json:"id"`
	Owner    string `json:"owner"`
	Type     string `json:"type"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"maxHp"`
	Building bool   `json:"building"`
}

func (f Foreign) TypeName() string { return f.Type }

// Map is the per-game static world: tiles, start locations and rules.
type Map struct {
	Tiles          *TileMap
	StartLocations []Point
	OwnStart       Point
	Rules          *RulesCache
}

// NewMap validates the hello payload and builds the static world.
func NewMap(info MapInfo) (*Map, error) {
	tiles, err := NewTileMap(info.Width, info.Height, info.Tiles)
	if err != nil {
		return nil, err
	}
	if len(info.StartLocations) == 0 {
		return nil, Misconfigured("map", "no start locations")
	}
	if info.OwnStart < 0 || info.OwnStart >= len(info.StartLocations) {
		return nil, Misconfigured("map", "own start index %d out of range", info.OwnStart)
	}
	return &Map{
		Tiles:          tiles,
		StartLocations: info.StartLocations,
		OwnStart:       info.StartLocations[info.OwnStart],
		Rules:          NewRulesCache(info.Rules),
	}, nil
}

// Snapshot implements World for one tick of game state.
type Snapshot struct {
	m      *Map
	state  GameState
	byID   map[int]Actor
	actors []Actor // stable order: self, allies, enemies, neutrals
}

// NewSnapshot resolves every visible object against the session's rules.
func NewSnapshot(m *Map, gs GameState) (*Snapshot, error) {
	want := (m.Tiles.Width*m.Tiles.Height + 7) / 8
	if len(gs.Visibility) != 0 && len(gs.Visibility) != want {
		return nil, fmt.Errorf("visibility mask: expected %d bytes, got %d", want, len(gs.Visibility))
	}
	s := &Snapshot{m: m, state: gs, byID: make(map[int]Actor)}
	for _, b := range gs.Buildings {
		s.add(Actor{ID: b.ID, Owner: gs.Player.Name, Relation: Self, Type: b.Type,
			Pos: Point{b.X, b.Y}, HP: b.HP, MaxHP: b.MaxHP, Idle: true, Building: true})
	}
	for _, u := range gs.Units {
		s.add(Actor{ID: u.ID, Owner: gs.Player.Name, Relation: Self, Type: u.Type,
			Pos: Point{u.X, u.Y}, HP: u.HP, MaxHP: u.MaxHP, Idle: u.Idle, CargoCount: u.CargoCount})
	}
	for _, group := range []struct {
		rel  Relation
		objs []Foreign
	}{{Ally, gs.Allies}, {Enemy, gs.Enemies}, {Neutral, gs.Neutrals}} {
		for _, f := range group.objs {
			s.add(Actor{ID: f.ID, Owner: f.Owner, Relation: group.rel, Type: f.Type,
				Pos: Point{f.X, f.Y}, HP: f.HP, MaxHP: f.MaxHP, Building: f.Building})
		}
	}
	return s, nil
}

func (s *Snapshot) add(a Actor) {
	a.Rules, _ = s.m.Rules.Lookup(a.Type)
	s.byID[a.ID] = a
	s.actors = append(s.actors, a)
}

func (s *Snapshot) Tick() int           { return s.state.Tick }
func (s *Snapshot) Player() string      { return s.state.Player.Name }
func (s *Snapshot) Cash() int           { return s.state.Player.Cash }
func (s *Snapshot) State() GameState    { return s.state }
func (s *Snapshot) OwnStart() Point     { return s.m.OwnStart }
func (s *Snapshot) MapSize() (int, int) { return s.m.Tiles.Width, s.m.Tiles.Height }

func (s *Snapshot) StartLocations() []Point { return s.m.StartLocations }

func (s *Snapshot) Tile(x, y int) (Tile, bool) { return s.m.Tiles.At(x, y) }

func (s *Snapshot) Reachable(from, to Point) bool { return s.m.Tiles.Reachable(from, to) }

// IsVisible reads the visibility bitmask. A missing mask means nothing is visible.
func (s *Snapshot) IsVisible(x, y int) bool {
	if !s.m.Tiles.InBounds(x, y) {
		return false
	}
	i := y*s.m.Tiles.Width + x
	if i/8 >= len(s.state.Visibility) {
		return false
	}
	return s.state.Visibility[i/8]&(1<<(i%8)) != 0
}

func (s *Snapshot) Actor(id int) (Actor, bool) {
	a, ok := s.byID[id]
	return a, ok
}

func (s *Snapshot) Actors(rel Relation, match func(Actor) bool) []Actor {
	var out []Actor
	for _, a := range s.actors {
		if a.Relation != rel {
			continue
		}
		if match == nil || match(a) {
			out = append(out, a)
		}
	}
	return out
}

// EncodeVisibility packs a row-major visibility slice into the wire bitmask.
func EncodeVisibility(visible []bool) []byte {
	out := make([]byte, (len(visible)+7)/8)
	for i, v := range visible {
		if v {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}
