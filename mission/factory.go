package mission

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/rules"
)

// Factory creates missions when its gate condition holds. Gates are expr
// sources evaluated by the rule engine against rules.RuleEnv.
type Factory struct {
	Name     string
	Priority int // rule evaluation order
	Gate     string
	// Create returns the mission to add, or nil when there is nothing to do.
	// Returning a mission whose name already exists is a no-op.
	Create func(env rules.RuleEnv) Mission

	cooldown int
	failedAt int
}

// OnMissionFailed starts the factory's cooldown.
func (f *Factory) OnMissionFailed(m Mission, reason string, tick int) {
	f.failedAt = tick
	slog.Debug("factory cooling down", "factory", f.Name, "mission", m.Name(), "reason", reason, "ticks", f.cooldown)
}

func (f *Factory) coolingDown(tick int) bool {
	return tick-f.failedAt < f.cooldown
}

// UseFactories compiles the factory gates into the controller's rule engine,
// replacing any previously installed factories.
func (c *Controller) UseFactories(fs ...*Factory) error {
	var rs []*rules.Rule
	for _, f := range fs {
		f.cooldown = c.tun.Missions.FailureCooldownTicks
		f.failedAt = math.MinInt32
		rs = append(rs, &rules.Rule{
			Name:         f.Name,
			Priority:     f.Priority,
			Category:     f.Name,
			Exclusive:    true,
			ConditionSrc: f.Gate,
			Action:       func(env rules.RuleEnv) error { return c.runFactory(f, env) },
		})
	}
	if c.engine == nil {
		e, err := rules.NewEngine(rs)
		if err != nil {
			return fmt.Errorf("mission factories: %w", err)
		}
		c.engine = e
	} else if err := c.engine.Swap(rs); err != nil {
		return fmt.Errorf("mission factories: %w", err)
	}
	c.factories = fs
	return nil
}

func (c *Controller) runFactory(f *Factory, env rules.RuleEnv) error {
	if f.coolingDown(env.Tick()) {
		return nil
	}
	m := f.Create(env)
	if m == nil {
		return nil
	}
	if c.AddMission(m) {
		c.origin[m.Name()] = f
	}
	return nil
}

// DefaultFactories returns one factory per mission kind, gated by the
// tuning's conditions.
func DefaultFactories(tun config.Tuning) []*Factory {
	return []*Factory{
		{
			Name:     "defence",
			Priority: 100,
			Gate:     tun.Gates.Defence,
			Create:   func(rules.RuleEnv) Mission { return NewDefenceMission(tun) },
		},
		{
			Name:     "expansion",
			Priority: 60,
			Gate:     tun.Gates.Expansion,
			Create:   func(rules.RuleEnv) Mission { return NewExpansionMission(tun) },
		},
		{
			Name:     "attack",
			Priority: 50,
			Gate:     tun.Gates.Attack,
			Create: func(env rules.RuleEnv) Mission {
				if env.MissionCount("attack-") > 0 {
					return nil
				}
				return NewAttackMission(fmt.Sprintf("attack-%d", env.Tick()), tun)
			},
		},
		{
			Name:     "engineer",
			Priority: 40,
			Gate:     tun.Gates.Engineer,
			Create:   func(env rules.RuleEnv) Mission { return newEngineerForNearest(env, tun) },
		},
		{
			Name:     "scouting",
			Priority: 30,
			Gate:     tun.Gates.Scouting,
			Create: func(env rules.RuleEnv) Mission {
				if env.MissionCount("scout-") > 0 {
					return nil
				}
				return NewScoutingMission(fmt.Sprintf("scout-%d", env.Tick()), tun)
			},
		},
	}
}

// newEngineerForNearest targets the capturable building closest to our
// start that no engineer mission already covers.
func newEngineerForNearest(env rules.RuleEnv, tun config.Tuning) Mission {
	home := env.World.OwnStart()
	var best *model.Actor
	for _, a := range env.Capturables() {
		if env.HasMission(engineerMissionName(a.ID)) {
			continue
		}
		if best == nil || a.Pos.DistanceTo(home) < best.Pos.DistanceTo(home) {
			best = &a
		}
	}
	if best == nil {
		return nil
	}
	return NewEngineerMission(best.ID, tun)
}
