// Package dynamics simulates a run of the tethered car: constant thrust
// against quadratic drag until the propellant cuts off, then a decaying
// thrust tail. Optional losses complete the force balance with lift,
// bearing friction, tether pull, nozzle misalignment, wheel inertia and
// propellant burn-off. Time is in milliseconds, velocity in m/s.
package dynamics

import (
	"errors"
	"math"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hayabusaracing/rig/pkg/numeric"
)

// Method selects the velocity integrator.
type Method string

const (
	RK4   Method = "rk4"
	Euler Method = "euler"
)

const (
	// cutoffTailFactor places the virtual origin of the thrust tail at
	// 0.2·cutoff before the cutoff.
	cutoffTailFactor = 0.2

	initialVelocity = 0.5
	// initialOffset is the starting position in m·ms before conversion.
	initialOffset = 0.5

	gravity = 9.81
)

// ErrInvalidParams is returned for physically meaningless parameters.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Params describes the car and the run.
type Params struct {
	// Mass in kilograms at the start of the run.
	Mass float64 `json:"mass" yaml:"mass"`
	// Drag is the quadratic drag coefficient in g/m.
	Drag float64 `json:"drag" yaml:"drag"`
	// Thrust in newtons while the propellant burns.
	Thrust float64 `json:"thrust" yaml:"thrust"`
	// Cutoff is when full thrust ends. Zero means thrust never ends.
	Cutoff time.Duration `json:"cutoff" yaml:"cutoff"`
	// Duration of the simulated run.
	Duration time.Duration `json:"duration" yaml:"duration"`
	// StepsPerMs is the integration grid density.
	StepsPerMs int    `json:"stepsPerMs" yaml:"stepsPerMs"`
	Method     Method `json:"method" yaml:"method"`
	// Losses of the full force balance. The zero value leaves thrust and
	// drag alone.
	Losses Losses `json:"losses" yaml:"losses"`
}

// Losses are the secondary forces acting on the car.
type Losses struct {
	// Lift is the quadratic lift coefficient in g/m. It unloads the bearings.
	Lift float64 `json:"lift" yaml:"lift"`
	// BearingStatic is the speed-independent bearing resistance in N.
	BearingStatic float64 `json:"bearingStatic" yaml:"bearingStatic"`
	// BearingFriction is the bearing friction coefficient on the normal load.
	BearingFriction float64 `json:"bearingFriction" yaml:"bearingFriction"`
	// Tether is the constant pull of the guide tether in N.
	Tether float64 `json:"tether" yaml:"tether"`
	// NozzleOffset over NozzleLever is the share of thrust lost to a
	// misaligned nozzle. Both in meters.
	NozzleOffset float64 `json:"nozzleOffset" yaml:"nozzleOffset"`
	NozzleLever  float64 `json:"nozzleLever" yaml:"nozzleLever"`
	// FrontWheelInertia and RearWheelInertia are per wheel, in kg·m², with
	// two wheels per axle of WheelRadius meters.
	FrontWheelInertia float64 `json:"frontWheelInertia" yaml:"frontWheelInertia"`
	RearWheelInertia  float64 `json:"rearWheelInertia" yaml:"rearWheelInertia"`
	WheelRadius       float64 `json:"wheelRadius" yaml:"wheelRadius"`
	// PropellantPerImpulse is the mass burnt per delivered impulse, in kg/(N·s).
	PropellantPerImpulse float64 `json:"propellantPerImpulse" yaml:"propellantPerImpulse"`
}

func (l Losses) validate() error {
	for name, v := range map[string]float64{
		"lift":                   l.Lift,
		"bearing static":         l.BearingStatic,
		"bearing friction":       l.BearingFriction,
		"tether":                 l.Tether,
		"nozzle offset":          l.NozzleOffset,
		"front wheel inertia":    l.FrontWheelInertia,
		"rear wheel inertia":     l.RearWheelInertia,
		"propellant per impulse": l.PropellantPerImpulse,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return pkgerrors.Wrapf(ErrInvalidParams, "%s must be finite and not negative, got %g", name, v)
		}
	}
	if l.NozzleOffset > 0 && !(l.NozzleLever > l.NozzleOffset) {
		return pkgerrors.Wrapf(ErrInvalidParams, "nozzle lever %g must exceed the offset %g", l.NozzleLever, l.NozzleOffset)
	}
	if (l.FrontWheelInertia > 0 || l.RearWheelInertia > 0) && !(l.WheelRadius > 0) {
		return pkgerrors.Wrapf(ErrInvalidParams, "wheel radius must be positive, got %g", l.WheelRadius)
	}
	return nil
}

// equivalentMass is the translational mass of the spinning wheels.
func (l Losses) equivalentMass() float64 {
	if l.WheelRadius <= 0 {
		return 0
	}
	return 2 * (l.FrontWheelInertia + l.RearWheelInertia) / (l.WheelRadius * l.WheelRadius)
}

// thrustEfficiency is the share of thrust along the track.
func (l Losses) thrustEfficiency() float64 {
	if l.NozzleOffset <= 0 {
		return 1
	}
	return 1 - l.NozzleOffset/l.NozzleLever
}

// DefaultParams is a 50 kg car with 2 N of thrust cut off halfway through a
// 3 s run.
var DefaultParams = Params{
	Mass:       50,
	Drag:       1,
	Thrust:     2,
	Cutoff:     1500 * time.Millisecond,
	Duration:   3000 * time.Millisecond,
	StepsPerMs: 50,
	Method:     RK4,
}

// Validate checks the parameters.
func (p Params) Validate() error {
	switch {
	case !(p.Mass > 0):
		return pkgerrors.Wrapf(ErrInvalidParams, "mass must be positive, got %g", p.Mass)
	case p.Drag < 0:
		return pkgerrors.Wrapf(ErrInvalidParams, "drag must not be negative, got %g", p.Drag)
	case p.Duration <= 0:
		return pkgerrors.Wrapf(ErrInvalidParams, "duration must be positive, got %v", p.Duration)
	case p.Cutoff < 0 || p.Cutoff > p.Duration:
		return pkgerrors.Wrapf(ErrInvalidParams, "cutoff %v must be within the run duration %v", p.Cutoff, p.Duration)
	case p.StepsPerMs <= 0:
		return pkgerrors.Wrapf(ErrInvalidParams, "steps per ms must be positive, got %d", p.StepsPerMs)
	case p.Method != "" && p.Method != RK4 && p.Method != Euler:
		return pkgerrors.Wrapf(ErrInvalidParams, "unknown integration method %q", p.Method)
	}
	if err := p.Losses.validate(); err != nil {
		return err
	}
	if m := p.massAt(ms(p.Duration)); !(m > 0) {
		return pkgerrors.Wrapf(ErrInvalidParams, "the car burns all its mass, %g kg left at the end", m)
	}
	return nil
}

// TerminalVelocity is the speed at which drag balances full thrust. Losses
// only lower the actual top speed.
func (p Params) TerminalVelocity() float64 {
	if p.Drag == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(1000 * p.Thrust / p.Drag)
}

// ThrustAt is the thrust in newtons t into the run. After the cutoff it
// decays as (t0/(t−tc+t0))^1.5.
func (p Params) ThrustAt(t time.Duration) float64 {
	return p.thrustAt(ms(t))
}

// Impulse is the thrust delivered over the first t of the run, in N·s.
func (p Params) Impulse(t time.Duration) float64 {
	return p.impulseAt(ms(t))
}

func (p Params) thrustAt(t float64) float64 {
	tc := ms(p.Cutoff)
	if tc <= 0 || t <= tc {
		return p.Thrust
	}
	t0 := tc * cutoffTailFactor
	return p.Thrust * math.Pow(t0/(t-tc+t0), 1.5)
}

func (p Params) impulseAt(t float64) float64 {
	tc := ms(p.Cutoff)
	if t <= 0 {
		return 0
	}
	if tc <= 0 || t <= tc {
		return p.Thrust * t / 1000
	}
	t0 := tc * cutoffTailFactor
	tail := 2 * t0 * (1 - math.Sqrt(t0/(t-tc+t0)))
	return p.Thrust * (tc + tail) / 1000
}

func (p Params) massAt(t float64) float64 {
	return p.Mass - p.Losses.PropellantPerImpulse*p.impulseAt(t)
}

// acceleration is dv/dt: thrust against drag and the losses, over the car
// and wheel mass. Resisting forces never push a stopped car backwards.
func (p Params) acceleration(t, v float64) float64 {
	l := p.Losses
	drag := p.Drag / 1000 * v * v
	lift := l.Lift / 1000 * v * v
	m := p.massAt(t)

	net := p.thrustAt(t)*l.thrustEfficiency() - drag
	if resist := l.BearingStatic + l.BearingFriction*math.Max(0, m*gravity-lift) + l.Tether; resist > 0 {
		if v <= 0 && net < resist {
			return 0
		}
		net -= resist
	}
	return net / (m + l.equivalentMass())
}

// Run is a simulated trajectory.
type Run struct {
	// TimeMs is the time axis in milliseconds.
	TimeMs []float64
	// Velocity in m/s.
	Velocity []float64
	// Position in meters.
	Position []float64
}

// Simulate integrates the run described by p.
func Simulate(p Params) (*Run, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	integrate := numeric.RungeKutta4
	if p.Method == Euler {
		integrate = numeric.Euler
	}

	end := ms(p.Duration)
	tc := ms(p.Cutoff)

	var ts, vs []float64
	if tc <= 0 || tc >= end {
		ts = numeric.Linspace(0, end, points(end, p.StepsPerMs))
		vs = integrate(p.acceleration, ts, initialVelocity)
	} else {
		burnT := numeric.Linspace(0, tc, points(tc, p.StepsPerMs))
		burnV := integrate(p.acceleration, burnT, initialVelocity)

		coastT := numeric.Linspace(tc, end, points(end-tc, p.StepsPerMs))
		coastV := integrate(p.acceleration, coastT, burnV[len(burnV)-1])

		// coastT[0] == tc is already the last burn sample.
		ts = append(burnT, coastT[1:]...)
		vs = append(burnV, coastV[1:]...)
	}

	// ∫v dt over milliseconds is in m·ms.
	pos := numeric.CumulativeTrapezoidXY(ts, vs, initialOffset)
	numeric.Scale(pos, 0.001)

	return &Run{TimeMs: ts, Velocity: vs, Position: pos}, nil
}

// FinishTime is the first time the car has covered distance meters.
func (r *Run) FinishTime(distance float64) (time.Duration, bool) {
	i, ok := numeric.FirstAtLeast(r.Position, distance)
	if !ok {
		return 0, false
	}
	return time.Duration(r.TimeMs[i] * float64(time.Millisecond)), true
}

// TopSpeed returns the highest velocity of the run.
func (r *Run) TopSpeed() float64 {
	top := math.Inf(-1)
	for _, v := range r.Velocity {
		top = math.Max(top, v)
	}
	return top
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func points(spanMs float64, perMs int) int {
	n := int(math.Round(spanMs * float64(perMs)))
	if n < 2 {
		n = 2
	}
	return n
}
