// Package config holds the tunable constants of the tactical layer. None of
// the numbers here are load-bearing; they are starting points for tuning.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

type Tuning struct {
	Awareness Awareness `yaml:"awareness"`
	Scouting  Scouting  `yaml:"scouting"`
	Squad     Squad     `yaml:"squad"`
	Missions  Missions  `yaml:"missions"`
	Gates     Gates     `yaml:"gates"`
}

type Awareness struct {
	SectorSize          int     `yaml:"sector_size"`
	SectorBudget        int     `yaml:"sector_budget"`      // sectors recomputed per tick
	BuildSpaceBudget    int     `yaml:"build_space_budget"` // tiles recomputed per tick
	DiffuseDecay        float64 `yaml:"diffuse_decay"`
	ThreatIntervalTicks int     `yaml:"threat_interval_ticks"`
	ThreatMinVisibility float64 `yaml:"threat_min_visibility"`
	RallyIntervalTicks  int     `yaml:"rally_interval_ticks"`
	RallyDistance       float64 `yaml:"rally_distance"`

	ExpansionMinClearance       int     `yaml:"expansion_min_clearance"`
	ExpansionMinEconomyDistance float64 `yaml:"expansion_min_economy_distance"`
	ExpansionMoneyRadius        float64 `yaml:"expansion_money_radius"`

	Attack Hysteresis `yaml:"attack_hysteresis"`
}

// Hysteresis shapes the should-attack decision. The defending factor is used
// while holding back, the attacking factor while committed; both shrink
// linearly to Floor over DecayTicks.
type Hysteresis struct {
	DefendingFactor float64 `yaml:"defending_factor"`
	AttackingFactor float64 `yaml:"attacking_factor"`
	DecayTicks      int     `yaml:"decay_ticks"`
	Floor           float64 `yaml:"floor"`
}

type Scouting struct {
	StartLocationPriority float64 `yaml:"start_location_priority"`
	SectorPriority        float64 `yaml:"sector_priority"`
	InitialRadius         float64 `yaml:"initial_radius"`
	RadiusStep            float64 `yaml:"radius_step"`
	RadiusIntervalTicks   int     `yaml:"radius_interval_ticks"`
	MaxRadius             float64 `yaml:"max_radius"`
	VisibilitySaturation  float64 `yaml:"visibility_saturation"`
}

type Squad struct {
	EvaluateIntervalTicks int     `yaml:"evaluate_interval_ticks"`
	GatherRatio           float64 `yaml:"gather_ratio"`
	GatherMinRadius       float64 `yaml:"gather_min_radius"`
	GatherMaxRadius       float64 `yaml:"gather_max_radius"`
	ScanFactor            float64 `yaml:"scan_factor"`
	MinScanRadius         float64 `yaml:"min_scan_radius"`
	BuildingWeight        float64 `yaml:"building_weight"`
	HarvesterWeight       float64 `yaml:"harvester_weight"`
	TargetHarvesters      bool    `yaml:"target_harvesters"`
}

type Missions struct {
	FailureCooldownTicks int `yaml:"failure_cooldown_ticks"`

	AttackInitialPriority float64        `yaml:"attack_initial_priority"`
	AttackPriorityRamp    float64        `yaml:"attack_priority_ramp"`
	AttackMaxPriority     float64        `yaml:"attack_max_priority"`
	AttackComposition     map[string]int `yaml:"attack_composition"`
	AttackMinUnits        int            `yaml:"attack_min_units"`
	AttackRetargetTicks   int            `yaml:"attack_retarget_ticks"`
	AttackTimeoutTicks    int            `yaml:"attack_timeout_ticks"`

	DefenceIdlePriority    float64 `yaml:"defence_idle_priority"`
	DefenceEngagedPriority float64 `yaml:"defence_engaged_priority"`
	DefenceRadius          float64 `yaml:"defence_radius"`

	ScoutPriority     float64  `yaml:"scout_priority"`
	ScoutUnitTypes    []string `yaml:"scout_unit_types"`
	ScoutTimeoutTicks int      `yaml:"scout_timeout_ticks"`
	ScoutArrivalRange float64  `yaml:"scout_arrival_range"`

	ExpansionPriority     float64 `yaml:"expansion_priority"`
	ExpansionTimeoutTicks int     `yaml:"expansion_timeout_ticks"`

	EngineerPriority     float64 `yaml:"engineer_priority"`
	EngineerTimeoutTicks int     `yaml:"engineer_timeout_ticks"`
}

// Gates are expr conditions that decide when each mission factory may run.
type Gates struct {
	Attack    string `yaml:"attack"`
	Defence   string `yaml:"defence"`
	Scouting  string `yaml:"scouting"`
	Expansion string `yaml:"expansion"`
	Engineer  string `yaml:"engineer"`
}

// Default returns the baseline tuning at ~15 ticks per second.
func Default() Tuning {
	return Tuning{
		Awareness: Awareness{
			SectorSize:                  8,
			SectorBudget:                8,
			BuildSpaceBudget:            2000,
			DiffuseDecay:                0.95,
			ThreatIntervalTicks:         60,
			ThreatMinVisibility:         0.02,
			RallyIntervalTicks:          150,
			RallyDistance:               10,
			ExpansionMinClearance:       3,
			ExpansionMinEconomyDistance: 12,
			ExpansionMoneyRadius:        12,
			Attack: Hysteresis{
				DefendingFactor: 1.25,
				AttackingFactor: 0.75,
				DecayTicks:      15 * 60 * 30,
				Floor:           0.5,
			},
		},
		Scouting: Scouting{
			StartLocationPriority: 100,
			SectorPriority:        10,
			InitialRadius:         24,
			RadiusStep:            8,
			RadiusIntervalTicks:   450,
			MaxRadius:             256,
			VisibilitySaturation:  0.75,
		},
		Squad: Squad{
			EvaluateIntervalTicks: 15,
			GatherRatio:           1.5,
			GatherMinRadius:       5,
			GatherMaxRadius:       10,
			ScanFactor:            1.5,
			MinScanRadius:         6,
			BuildingWeight:        2,
			HarvesterWeight:       1.5,
			TargetHarvesters:      true,
		},
		Missions: Missions{
			FailureCooldownTicks:  600,
			AttackInitialPriority: 50,
			AttackPriorityRamp:    0.05,
			AttackMaxPriority:     100,
			AttackComposition: map[string]int{
				"e1": 4, "e3": 2, "1tnk": 2, "2tnk": 2, "3tnk": 2,
			},
			AttackMinUnits:         6,
			AttackRetargetTicks:    450,
			AttackTimeoutTicks:     1350,
			DefenceIdlePriority:    1,
			DefenceEngagedPriority: 200,
			DefenceRadius:          24,
			ScoutPriority:          20,
			ScoutUnitTypes:         []string{"dog", "jeep", "e1"},
			ScoutTimeoutTicks:      900,
			ScoutArrivalRange:      4,
			ExpansionPriority:      60,
			ExpansionTimeoutTicks:  3000,
			EngineerPriority:       40,
			EngineerTimeoutTicks:   2000,
		},
		Gates: Gates{
			Attack:    `ShouldAttack() && CombatUnitCount() >= 6`,
			Defence:   `HasRole("construction_yard")`,
			Scouting:  `HasScoutTargets()`,
			Expansion: `HasRole("mcv") && HasExpansionCandidate()`,
			Engineer:  `CapturableCount() > 0 && HasRole("engineer")`,
		},
	}
}

// Load reads a yaml tuning file layered over Default. Keys absent from the
// file keep their default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Resolve loads the file at path, or validated defaults when path is empty.
func Resolve(path string) (Tuning, error) {
	if path != "" {
		return Load(path)
	}
	t := Default()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("default tuning: %w", err)
	}
	return t, nil
}

// Validate rejects values that would make the caches or state machines
// misbehave rather than clamping them.
func (t Tuning) Validate() error {
	a := t.Awareness
	switch {
	case a.SectorSize <= 0:
		return model.Misconfigured("tuning", "sector_size must be positive, got %d", a.SectorSize)
	case a.SectorBudget <= 0 || a.BuildSpaceBudget <= 0:
		return model.Misconfigured("tuning", "scan budgets must be positive")
	case a.DiffuseDecay < 0 || a.DiffuseDecay >= 1:
		return model.Misconfigured("tuning", "diffuse_decay must be in [0, 1), got %v", a.DiffuseDecay)
	case a.ThreatIntervalTicks <= 0 || a.RallyIntervalTicks <= 0:
		return model.Misconfigured("tuning", "refresh intervals must be positive")
	case a.Attack.Floor <= 0 || a.Attack.Floor > 1:
		return model.Misconfigured("tuning", "attack_hysteresis.floor must be in (0, 1]")
	}
	if t.Scouting.RadiusIntervalTicks <= 0 {
		return model.Misconfigured("tuning", "scouting.radius_interval_ticks must be positive")
	}
	s := t.Squad
	if s.EvaluateIntervalTicks <= 0 {
		return model.Misconfigured("tuning", "squad.evaluate_interval_ticks must be positive")
	}
	if s.GatherMaxRadius < s.GatherMinRadius {
		return model.Misconfigured("tuning", "squad.gather_max_radius (%v) below gather_min_radius (%v)", s.GatherMaxRadius, s.GatherMinRadius)
	}
	m := t.Missions
	if m.AttackRetargetTicks >= m.AttackTimeoutTicks {
		return model.Misconfigured("tuning", "attack_retarget_ticks must be below attack_timeout_ticks")
	}
	if m.AttackMaxPriority < m.AttackInitialPriority {
		return model.Misconfigured("tuning", "attack_max_priority below attack_initial_priority")
	}
	if len(m.ScoutUnitTypes) == 0 {
		return model.Misconfigured("tuning", "scout_unit_types is empty")
	}
	return nil
}
