package model

import "strings"

// Category is the broad object class from the game rules.
type Category string

const (
	Infantry  Category = "infantry"
	Vehicle   Category = "vehicle"
	Aircraft  Category = "aircraft"
	Ship      Category = "ship"
	Structure Category = "building"
)

// Weapon carries the subset of weapon rules the threat model needs.
// AntiGround and AntiAir come from the projectile, not the owning unit.
type Weapon struct {
	Damage     float64 `json:"damage"`
	Range      float64 `json:"range"`    // tiles
	Cooldown   float64 `json:"cooldown"` // ticks between shots
	AntiGround bool    `json:"antiGround"`
	AntiAir    bool    `json:"antiAir"`
}

// UnitRules is the static rules entry for one object type.
type UnitRules struct {
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Cost       int      `json:"cost"`
	Primary    *Weapon  `json:"primary,omitempty"`
	Secondary  *Weapon  `json:"secondary,omitempty"`
	Combatant  bool     `json:"combatant"` // selectable fighting unit
	Harvester  bool     `json:"harvester"`
	Capturable bool     `json:"capturable"` // tech buildings engineers can take
}

// Weapons returns the non-nil weapon slots.
func (r *UnitRules) Weapons() []*Weapon {
	var out []*Weapon
	if r.Primary != nil {
		out = append(out, r.Primary)
	}
	if r.Secondary != nil {
		out = append(out, r.Secondary)
	}
	return out
}

// RulesCache resolves object rules by type name. One cache belongs to one
// game session so concurrent games never share entries.
type RulesCache struct {
	byName map[string]*UnitRules
}

func NewRulesCache(entries []UnitRules) *RulesCache {
	c := &RulesCache{byName: make(map[string]*UnitRules, len(entries))}
	for i := range entries {
		r := entries[i]
		c.byName[BaseType(r.Name)] = &r
	}
	return c
}

// Lookup returns the rules for a type, tolerating faction suffixes.
func (c *RulesCache) Lookup(typ string) (*UnitRules, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.byName[BaseType(typ)]
	return r, ok
}

func (c *RulesCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byName)
}

// BaseType strips faction variants (e.g. "fact.england" → "fact") and lowercases.
func BaseType(t string) string {
	base := strings.ToLower(t)
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return base
}
