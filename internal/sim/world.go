// Package sim implements the rescue simulation engine: the world state,
// the per-tick decision engine, and the rescue actuator.
//
// The engine is single-threaded by design. Every Step is one complete,
// atomic state transition; callers that run it behind a server must
// serialize access themselves. All randomness flows through one injected
// entropy.Source so runs are reproducible under a fixed seed.
package sim

import (
	"log/slog"
	"math"

	"github.com/talgya/guardian-sim/internal/entropy"
	"github.com/talgya/guardian-sim/internal/epoch"
	"github.com/talgya/guardian-sim/internal/scale"
)

// Vital bounds and engine constants.
const (
	MaxHunger     = 10.0
	MaxEnergy     = 100.0
	InitialHunger = 8.0
	TickCeiling   = 10000 // Both alive at this tick is a full success

	survivalThreshold = 15.0 // Normal recharge trigger (% energy)
	criticalThreshold = 5.0  // Emergency-only floor (% energy)

	rechargePerTick = 5.0 // % energy per tick docked at base
	rechargeRadius  = 1.0 // Cells from base that count as docked
	rechargeExitAt  = 50.0

	energyPerKm = 1.0 / 50.0 // 2% per 100 km traveled

	contactRadius  = 1.5 // Cells within which rescue is by direct contact
	mortalHunger   = 1.5 // Below this, danger is immediate and mortal
	sacrificeLevel = 1.0 // Below this, the controller attempts rescue anyway
	urgentHunger   = 2.0 // Below this, a beam shot counts as urgent

	wanderChance       = 0.3
	crisisTick         = 3
	crisisJuniorHunger = 2.5
	crisisSeniorHunger = 2.0

	beamComfortEnergy = 60.0 // Above this, beaming is preferred over travel

	minSeparationCells = 5.0

	// Beam defaults when no epoch has been applied. Range scales with the
	// controller-speed multiplier.
	defaultBeamRangeKm    = 100.0
	defaultBeamEfficiency = 0.8
	defaultBeamCost       = 5.0
)

// Role identifies one of the two dependents.
type Role uint8

const (
	RoleJunior Role = iota
	RoleSenior
)

func (r Role) String() string {
	if r == RoleSenior {
		return "senior"
	}
	return "junior"
}

// Mode is the controller's current posture.
type Mode uint8

const (
	ModeObserving Mode = iota
	ModeRescuingJunior
	ModeRescuingSenior
	ModeHeroic
)

func (m Mode) String() string {
	switch m {
	case ModeRescuingJunior:
		return "Rescuing junior"
	case ModeRescuingSenior:
		return "Rescuing senior"
	case ModeHeroic:
		return "Heroic"
	default:
		return "Observing"
	}
}

// Target is what the controller is currently heading for.
type Target uint8

const (
	TargetNone Target = iota
	TargetBase
	TargetJunior
	TargetSenior
)

func targetFor(role Role) Target {
	if role == RoleSenior {
		return TargetSenior
	}
	return TargetJunior
}

// Dependent is one of the two humans the controller keeps alive.
// Hunger is a satiety score: 10 is sated, 0 is death. Death is permanent;
// a dead dependent never moves or decays again.
type Dependent struct {
	Role   Role    `json:"role"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Hunger float64 `json:"hunger"`
	Alive  bool    `json:"alive"`
}

// Controller is the autonomous rescue agent. Energy only falls with travel
// and beam use, and only rises while docked at base. At 0 the controller is
// permanently disabled.
type Controller struct {
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Energy            float64 `json:"energy"`
	Target            Target  `json:"-"`
	DistanceKm        float64 `json:"distance_km"`
	Alive             bool    `json:"alive"`
	Recharging        bool    `json:"recharging"`
	SurvivalThreshold float64 `json:"survival_threshold"`
	CriticalThreshold float64 `json:"critical_threshold"`
}

// Tunables are the externally adjustable engine parameters.
type Tunables struct {
	SpeedMult       float64 `json:"speed_mult"`
	DecayMult       float64 `json:"decay_mult"`
	DangerThreshold float64 `json:"danger_threshold"`
	RescueBonus     float64 `json:"rescue_bonus"`
}

// TunablesPatch carries a partial parameter update; nil fields are left
// untouched. Every supplied value is clamped to its documented range.
type TunablesPatch struct {
	SpeedMult       *float64 `json:"speed_mult"`
	DecayMult       *float64 `json:"decay_mult"`
	DangerThreshold *float64 `json:"danger_threshold"`
	RescueBonus     *float64 `json:"rescue_bonus"`
}

// BeamSpec is the ranged-rescue envelope currently in effect.
type BeamSpec struct {
	RangeKm    float64 `json:"range_km"`
	Efficiency float64 `json:"efficiency"`
	BaseCost   float64 `json:"base_cost"`
}

// World owns the complete state of one simulation: both dependents, the
// controller, the base, the scale-derived movement model, and run counters.
// There is exactly one live World per engine instance.
type World struct {
	rng *entropy.Source

	ScaleKey string
	Profile  scale.Profile

	Tunables        Tunables
	Beam            BeamSpec
	Epoch           *epoch.Params // Set by RandomizeEpoch, survives resets
	RandomEpoch     bool
	RandomPositions bool

	// Derived movement model, recomputed on reset and parameter updates.
	effectiveSpeedKmh   float64
	moveHumanCells      float64
	moveControllerCells float64

	Junior     Dependent
	Senior     Dependent
	Controller Controller
	BaseX      float64
	BaseY      float64

	Tick       int
	ElapsedMin int
	Mode       Mode
	Action     string
	Analysis   string
	Crisis     bool
	Outcome    *Outcome
	Running    bool

	// Per-run counters, cleared on reset.
	RescuesJunior  int
	RescuesSenior  int
	BeamsFired     int
	LastActionBeam bool
	BeamTarget     Target

	// Aggregate statistics across completed runs; survives resets.
	Stats *Stats
}

// New creates a world on the given scale with default tunables and performs
// the initial reset. Unknown scale keys fall back to the catalog default.
func New(src *entropy.Source, scaleKey string, randomPositions bool) *World {
	w := &World{
		rng:             src,
		RandomPositions: randomPositions,
		Tunables: Tunables{
			SpeedMult:       1.0,
			DecayMult:       1.0,
			DangerThreshold: 3.0,
			RescueBonus:     5.0,
		},
		Stats: &Stats{},
	}
	w.setProfile(scaleKey)
	w.Reset()
	return w
}

func (w *World) setProfile(key string) {
	p := scale.Lookup(key)
	w.ScaleKey = p.Key
	w.Profile = p
}

// SetScale switches the geographic scale and fully resets the world.
// Unknown keys are ignored.
func (w *World) SetScale(key string) {
	if !scale.Known(key) {
		slog.Debug("ignoring unknown scale key", "key", key)
		return
	}
	w.setProfile(key)
	w.Reset()
	slog.Info("scale changed", "scale", key, "cell_km", w.Profile.CellKm)
}

// Reset reinitializes the world for a new run. It never fails and always
// yields a valid state: both dependents alive at hunger 8, the controller
// and base at grid center with full energy, all counters cleared.
// Epoch parameters, aggregate stats, and the placement mode are preserved.
func (w *World) Reset() {
	w.recomputeMovement()

	if w.RandomPositions {
		w.Junior.X, w.Junior.Y = w.cornerCoord(), w.cornerCoord()
		w.Senior.X, w.Senior.Y = w.cornerCoord(), w.cornerCoord()
		// Keep the two far enough apart to make triage meaningful.
		for cellDist(w.Junior.X, w.Junior.Y, w.Senior.X, w.Senior.Y) < minSeparationCells {
			w.Senior.X, w.Senior.Y = w.cornerCoord(), w.cornerCoord()
		}
	} else {
		w.Junior.X, w.Junior.Y = 2.0, 12.0
		w.Senior.X, w.Senior.Y = 12.0, 2.0
	}
	w.Junior.Role, w.Junior.Hunger, w.Junior.Alive = RoleJunior, InitialHunger, true
	w.Senior.Role, w.Senior.Hunger, w.Senior.Alive = RoleSenior, InitialHunger, true

	center := float64(w.Profile.GridSize / 2)
	w.Controller = Controller{
		X:                 center,
		Y:                 center,
		Energy:            MaxEnergy,
		Alive:             true,
		SurvivalThreshold: survivalThreshold,
		CriticalThreshold: criticalThreshold,
	}
	w.BaseX, w.BaseY = center, center

	// Without an epoch the beam envelope derives from the speed multiplier.
	if w.Epoch == nil {
		w.Beam = BeamSpec{
			RangeKm:    defaultBeamRangeKm * w.Tunables.SpeedMult,
			Efficiency: defaultBeamEfficiency,
			BaseCost:   defaultBeamCost,
		}
	}

	w.Tick = 0
	w.ElapsedMin = 0
	w.Mode = ModeObserving
	w.Action = "Initializing..."
	w.Analysis = "Simulation starting"
	w.Crisis = false
	w.Outcome = nil
	w.Running = false
	w.RescuesJunior = 0
	w.RescuesSenior = 0
	w.BeamsFired = 0
	w.LastActionBeam = false
	w.BeamTarget = TargetNone
}

// cornerCoord draws one coordinate biased away from the grid center, so
// randomized dependents start near an edge.
func (w *World) cornerCoord() float64 {
	if w.rng.Float64() < 0.5 {
		return w.rng.Uniform(1, 5)
	}
	return w.rng.Uniform(10, 14)
}

func (w *World) recomputeMovement() {
	p := w.Profile
	w.effectiveSpeedKmh = p.ControllerSpeedKmh * w.Tunables.SpeedMult
	tickHours := float64(p.TickMinutes) / 60
	w.moveHumanCells = p.HumanSpeedKmh * tickHours / p.CellKm
	w.moveControllerCells = w.effectiveSpeedKmh * tickHours / p.CellKm
}

// Start resets the world and marks the run active. With randomEpoch set it
// first draws a fresh epoch.
func (w *World) Start(randomEpoch bool) {
	if randomEpoch {
		w.RandomizeEpoch()
	}
	w.Reset()
	w.Running = true
}

// RandomizeEpoch draws a new technology epoch and applies its parameters to
// the engine. Positions and vitals are untouched.
func (w *World) RandomizeEpoch() epoch.Params {
	ep := epoch.Generate(w.rng)
	w.Epoch = &ep
	w.RandomEpoch = true
	w.Tunables = Tunables{
		SpeedMult:       ep.SpeedMult,
		DecayMult:       ep.DecayMult,
		DangerThreshold: ep.DangerThreshold,
		RescueBonus:     ep.RescueBonus,
	}
	w.Beam = BeamSpec{RangeKm: ep.BeamRangeKm, Efficiency: ep.BeamEfficiency, BaseCost: ep.BeamBaseCost}
	w.recomputeMovement()
	slog.Info("epoch randomized",
		"tech_factor", ep.TechFactor,
		"period", ep.Period,
		"speed_mult", ep.SpeedMult,
		"decay_mult", ep.DecayMult,
	)
	return ep
}

// UpdateTunables applies a partial parameter update, clamping every supplied
// field to its documented range, and immediately recomputes the derived
// movement model. Returns the resulting tunables.
func (w *World) UpdateTunables(patch TunablesPatch) Tunables {
	if patch.SpeedMult != nil {
		w.Tunables.SpeedMult = clamp(*patch.SpeedMult, 0.1, 5.0)
	}
	if patch.DecayMult != nil {
		w.Tunables.DecayMult = clamp(*patch.DecayMult, 0.1, 5.0)
	}
	if patch.DangerThreshold != nil {
		w.Tunables.DangerThreshold = clamp(*patch.DangerThreshold, 1.0, 8.0)
	}
	if patch.RescueBonus != nil {
		w.Tunables.RescueBonus = clamp(*patch.RescueBonus, 1.0, 10.0)
	}
	w.recomputeMovement()
	return w.Tunables
}

// ToggleRandomPositions flips the placement mode for future resets.
func (w *World) ToggleRandomPositions() bool {
	w.RandomPositions = !w.RandomPositions
	return w.RandomPositions
}

// RunBatch runs count fresh simulations to their terminal outcome,
// accumulating aggregate statistics. The world is left in the final run's
// terminal state.
func (w *World) RunBatch(count int) {
	for i := 0; i < count; i++ {
		w.Reset()
		w.Running = true
		for w.Running && w.Tick < TickCeiling {
			w.Step()
		}
	}
}

func (w *World) dependent(role Role) *Dependent {
	if role == RoleSenior {
		return &w.Senior
	}
	return &w.Junior
}

// kmTo returns the controller's distance to a point in kilometers.
func (w *World) kmTo(x, y float64) float64 {
	return cellDist(w.Controller.X, w.Controller.Y, x, y) * w.Profile.CellKm
}

func cellDist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}

func (w *World) clampToGrid(v float64) float64 {
	return clamp(v, 0, float64(w.Profile.GridSize-1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
