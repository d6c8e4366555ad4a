package scheduler

import "github.com/louisbranch/loreworld/internal/world"

// Physiology rates, in percent, for dt elapsed wall seconds: the divisors
// give dt/divisor per tick, sleep recovery is per minute and damage decay is
// per hour.
const (
	nutritionDecayDivisor = 900 // ~1% per 15 minutes
	hydrationDecayDivisor = 600 // ~1% per 10 minutes
	tirednessGainDivisor  = 600 // awake: ~1% per 10 minutes
	sleepRecoveryPerMin   = 5   // asleep: tiredness down, alertness up
	damageDecayPerHour    = 0.5
)

// TickPhysiology computes the physiology patch for dt elapsed wall seconds.
// Clamping and the forced-sleep rule are applied when the patch lands via
// ApplyState; the asleep branch recovers tiredness and alertness while the
// awake branch accrues tiredness until forced sleep.
func TickPhysiology(c world.Character, dt float64) world.StatePatch {
	nutrition := c.Nutrition - dt/nutritionDecayDivisor
	hydration := c.Hydration - dt/hydrationDecayDivisor
	tiredness := c.Tiredness
	alertness := c.Alertness

	if c.Alertness < world.AwakeThreshold {
		tiredness -= sleepRecoveryPerMin * dt / 60
		alertness += sleepRecoveryPerMin * dt / 60
	} else {
		tiredness += dt / tirednessGainDivisor
	}

	damage := make([]world.Damage, 0, len(c.Damage))
	for _, injury := range c.Damage {
		injury.Severity -= damageDecayPerHour * dt / 3600
		if injury.Severity > 0 {
			damage = append(damage, injury)
		}
	}

	return world.StatePatch{
		Nutrition: &nutrition,
		Hydration: &hydration,
		Tiredness: &tiredness,
		Alertness: &alertness,
		Damage:    &damage,
	}
}
