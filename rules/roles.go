package rules

import "github.com/nstehr/vimy/vimy-tactics/model"

// typed is a generic constraint for any model type with a TypeName accessor.
type typed interface {
	TypeName() string
}

// countAnyType counts items whose base type matches any of the given types.
func countAnyType[T typed](items []T, types []string) int {
	n := 0
	for _, item := range items {
		base := model.BaseType(item.TypeName())
		for _, t := range types {
			if base == model.BaseType(t) {
				n++
				break
			}
		}
	}
	return n
}

// Unit type constants.
const (
	MCV           = "mcv"  // Mobile Construction Vehicle
	Harvester     = "harv" // Ore Harvester
	Engineer      = "e6"   // Engineer
	RifleInfantry = "e1"   // Rifle Infantry
	AttackDog     = "dog"  // Attack Dog
	Ranger        = "jeep" // Ranger
)

// Building type constants.
const (
	ConstructionYard = "fact" // Construction Yard
	PowerPlant       = "powr" // Power Plant
	Refinery         = "proc" // Ore Refinery
	WarFactory       = "weap" // War Factory
	AlliedBarracks   = "tent" // Allied Barracks
	SovietBarracks   = "barr" // Soviet Barracks
	AlliedTechCenter = "atek" // Allied Tech Center
	SovietTechCenter = "stek" // Soviet Tech Center
)

// roles is the static registry of logical roles to all faction-variant
// type names.
var roles = map[string][]string{
	"mcv":               {MCV},
	"harvester":         {Harvester},
	"engineer":          {Engineer},
	"scout":             {AttackDog, Ranger},
	"barracks":          {AlliedBarracks, SovietBarracks},
	"power_plant":       {PowerPlant},
	"refinery":          {Refinery},
	"war_factory":       {WarFactory},
	"construction_yard": {ConstructionYard},
	"tech_center":       {AlliedTechCenter, SovietTechCenter},
}

// RoleTypes returns the concrete type names for a role, or nil if unknown.
func RoleTypes(role string) []string {
	return roles[role]
}

// IsRole reports whether typ fills the given role.
func IsRole(role, typ string) bool {
	base := model.BaseType(typ)
	for _, t := range roles[role] {
		if t == base {
			return true
		}
	}
	return false
}
