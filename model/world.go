package model

// Relation is an actor's standing relative to the agent's player.
type Relation byte

const (
	Neutral Relation = iota
	Self
	Ally
	Enemy
)

func (r Relation) String() string {
	switch r {
	case Self:
		return "self"
	case Ally:
		return "ally"
	case Enemy:
		return "enemy"
	default:
		return "neutral"
	}
}

// Actor is the unified view of any visible object, owned or foreign.
type Actor struct {
	ID         int
	Owner      string
	Relation   Relation
	Type       string
	Pos        Point
	HP         int
	MaxHP      int
	Idle       bool
	Building   bool
	CargoCount int
	Rules      *UnitRules // nil when the type is unknown to the rules cache
}

func (a Actor) TypeName() string { return a.Type }

// HPRatio returns current/max hit points, treating a zero max as full health.
func (a Actor) HPRatio() float64 {
	if a.MaxHP <= 0 {
		return 1
	}
	return float64(a.HP) / float64(a.MaxHP)
}

func (a Actor) IsAir() bool {
	return a.Rules != nil && a.Rules.Category == Aircraft
}

func (a Actor) IsCombatant() bool {
	return !a.Building && a.Rules != nil && a.Rules.Combatant
}

func (a Actor) IsHarvester() bool {
	return a.Rules != nil && a.Rules.Harvester
}

func (a Actor) IsAntiGround() bool {
	if a.Rules == nil {
		return false
	}
	for _, w := range a.Rules.Weapons() {
		if w.AntiGround {
			return true
		}
	}
	return false
}

func (a Actor) IsAntiAir() bool {
	if a.Rules == nil {
		return false
	}
	for _, w := range a.Rules.Weapons() {
		if w.AntiAir {
			return true
		}
	}
	return false
}

// WeaponRange returns the longest weapon range, or 0 for unarmed actors.
func (a Actor) WeaponRange() float64 {
	if a.Rules == nil {
		return 0
	}
	r := 0.0
	for _, w := range a.Rules.Weapons() {
		r = max(r, w.Range)
	}
	return r
}

// World is everything the tactical layer reads from the host simulation.
// Lookups of destroyed objects report absence rather than failing.
type World interface {
	Tick() int
	Player() string
	MapSize() (width, height int)
	Tile(x, y int) (Tile, bool)
	IsVisible(x, y int) bool
	Actor(id int) (Actor, bool)
	// Actors returns actors with the given relation; a nil match accepts all.
	Actors(rel Relation, match func(Actor) bool) []Actor
	StartLocations() []Point
	OwnStart() Point
	Reachable(from, to Point) bool
	Cash() int
}
