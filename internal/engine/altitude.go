package engine

// Altitude simulation constants. Altitude lives in [0, 100]; gravity pulls
// it down continuously while boosts and penalties adjust it in discrete
// steps.
const (
	StartAltitude = 50.0
	GravityRate   = 8.0 // units per second
	PenaltyAmount = 15.0

	// Boost impulse scales with height: stronger near the ground, weaker
	// near the ceiling.
	BaseBoost    = 12.0
	MinBoostMult = 1.0
	MaxBoostMult = 2.0

	// Visual smoothing. Rising is snappy, falling drifts.
	riseLerpSpeed = 9.0
	fallLerpSpeed = 2.5
	visualSnapEps = 0.05

	// MaxTickDelta absorbs pauses (suspended terminal, debugger) so a
	// single frame never applies a huge simulation jump.
	MaxTickDelta = 0.1

	// FlameDuration is how long the boost flame stays visible, in seconds.
	FlameDuration = 0.5
)

// Altitude models the rocket's height. Actual is the authoritative
// gameplay value; Visual lags it for rendering and must never drive
// gameplay decisions.
type Altitude struct {
	actual    float64
	visual    float64
	crashed   bool
	flameLeft float64
}

// NewAltitude returns an altitude model at the starting height.
func NewAltitude() *Altitude {
	return &Altitude{actual: StartAltitude, visual: StartAltitude}
}

// Actual returns the authoritative altitude.
func (a *Altitude) Actual() float64 { return a.actual }

// Visual returns the smoothed altitude for rendering only.
func (a *Altitude) Visual() float64 { return a.visual }

// Crashed reports whether the rocket has hit the ground.
func (a *Altitude) Crashed() bool { return a.crashed }

// Boosting reports whether the boost flame should be drawn.
func (a *Altitude) Boosting() bool { return a.flameLeft > 0 }

// Boost applies one boost impulse. The caller issues this as an explicit
// command, so a boost can never fire twice for one correct answer.
func (a *Altitude) Boost() {
	if a.crashed {
		return
	}
	mult := MaxBoostMult - (a.actual/100.0)*(MaxBoostMult-MinBoostMult)
	a.actual += BaseBoost * mult
	if a.actual > 100 {
		a.actual = 100
	}
	a.flameLeft = FlameDuration
}

// Penalize drops the altitude instantly. Returns true if this penalty
// caused the crash.
func (a *Altitude) Penalize(amount float64) bool {
	if a.crashed {
		return false
	}
	a.actual -= amount
	if a.actual <= 0 {
		a.actual = 0
		a.crashed = true
		return true
	}
	return false
}

// Tick advances the simulation by dt seconds. Gravity only applies while
// gravityActive (session running, no answer showing). Returns true on the
// tick where the altitude reaches zero; later ticks never re-fire it.
func (a *Altitude) Tick(dt float64, gravityActive bool) bool {
	if dt < 0 {
		dt = 0
	}
	if dt > MaxTickDelta {
		dt = MaxTickDelta
	}

	crashedNow := false
	if gravityActive && !a.crashed {
		a.actual -= GravityRate * dt
		if a.actual <= 0 {
			a.actual = 0
			a.crashed = true
			crashedNow = true
		}
	}

	if a.flameLeft > 0 {
		a.flameLeft -= dt
		if a.flameLeft < 0 {
			a.flameLeft = 0
		}
	}

	diff := a.actual - a.visual
	speed := fallLerpSpeed
	if diff > 0 {
		speed = riseLerpSpeed
	}
	a.visual += diff * speed * dt
	if abs(a.actual-a.visual) < visualSnapEps {
		a.visual = a.actual
	}

	return crashedNow
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
