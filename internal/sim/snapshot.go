package sim

import (
	"fmt"
	"math"

	"github.com/talgya/guardian-sim/internal/epoch"
)

// Snapshot is the wire-friendly view of the world at one point in time.
// All positions are rounded to two decimals and vitals to one, so serialized
// state stays compact and stable across encoders.
type Snapshot struct {
	Tick         int    `json:"tick"`
	ElapsedMin   int    `json:"elapsed_min"`
	ElapsedLabel string `json:"elapsed_label"`
	Mode         string `json:"mode"`
	Action       string `json:"action"`
	Analysis     string `json:"analysis"`
	Running      bool   `json:"running"`
	Crisis       bool   `json:"crisis"`
	GridSize     int    `json:"grid_size"`

	Junior     DependentView  `json:"junior"`
	Senior     DependentView  `json:"senior"`
	Controller ControllerView `json:"controller"`
	Base       PointView      `json:"base"`

	Scale  ScaleView     `json:"scale"`
	Speeds SpeedsView    `json:"speeds"`
	Params Tunables      `json:"params"`
	Beam   BeamView      `json:"beam"`
	Epoch  *epoch.Params `json:"epoch"`

	RandomEpoch     bool        `json:"random_epoch"`
	RandomPositions bool        `json:"random_positions"`
	Rescues         RescuesView `json:"rescues"`
	Outcome         *Outcome    `json:"outcome"`
}

type PointView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type DependentView struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Hunger     float64 `json:"hunger"`
	Alive      bool    `json:"alive"`
	DistanceKm float64 `json:"distance_km"`
	Danger     bool    `json:"danger"`
}

type ControllerView struct {
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Energy            float64 `json:"energy"`
	Target            *string `json:"target"`
	DistanceKm        float64 `json:"distance_km"`
	Alive             bool    `json:"alive"`
	Recharging        bool    `json:"recharging"`
	SurvivalThreshold float64 `json:"survival_threshold"`
	CriticalThreshold float64 `json:"critical_threshold"`
}

type ScaleView struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	AreaKm2     float64 `json:"area_km2"`
	CellKm      float64 `json:"cell_km"`
	Description string  `json:"description"`
}

type SpeedsView struct {
	HumanKmh               float64 `json:"human_kmh"`
	ControllerKmh          float64 `json:"controller_kmh"`
	ControllerEffectiveKmh float64 `json:"controller_effective_kmh"`
	HumanCellsPerTick      float64 `json:"human_cells_per_tick"`
	ControllerCellsPerTick float64 `json:"controller_cells_per_tick"`
	TickMinutes            int     `json:"tick_minutes"`
}

type BeamView struct {
	RangeKm    float64 `json:"range_km"`
	Efficiency float64 `json:"efficiency"`
	BaseCost   float64 `json:"base_cost"`
	Active     bool    `json:"active"`
	Target     *string `json:"target"`
}

type RescuesView struct {
	Junior int `json:"junior"`
	Senior int `json:"senior"`
}

// Snapshot builds the current wire view. It never mutates the world.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Tick:         w.Tick,
		ElapsedMin:   w.ElapsedMin,
		ElapsedLabel: FormatMinutes(w.ElapsedMin),
		Mode:         w.Mode.String(),
		Action:       w.Action,
		Analysis:     w.Analysis,
		Running:      w.Running,
		Crisis:       w.Crisis,
		GridSize:     w.Profile.GridSize,
		Junior:       w.dependentView(&w.Junior),
		Senior:       w.dependentView(&w.Senior),
		Controller: ControllerView{
			X:                 round(w.Controller.X, 2),
			Y:                 round(w.Controller.Y, 2),
			Energy:            round(w.Controller.Energy, 1),
			Target:            targetLabel(w.Controller.Target),
			DistanceKm:        round(w.Controller.DistanceKm, 1),
			Alive:             w.Controller.Alive,
			Recharging:        w.Controller.Recharging,
			SurvivalThreshold: w.Controller.SurvivalThreshold,
			CriticalThreshold: w.Controller.CriticalThreshold,
		},
		Base: PointView{X: w.BaseX, Y: w.BaseY},
		Scale: ScaleView{
			Key:         w.Profile.Key,
			Name:        w.Profile.Name,
			AreaKm2:     w.Profile.AreaKm2,
			CellKm:      round(w.Profile.CellKm, 2),
			Description: w.Profile.Description,
		},
		Speeds: SpeedsView{
			HumanKmh:               w.Profile.HumanSpeedKmh,
			ControllerKmh:          w.Profile.ControllerSpeedKmh,
			ControllerEffectiveKmh: round(w.effectiveSpeedKmh, 1),
			HumanCellsPerTick:      round(w.moveHumanCells, 3),
			ControllerCellsPerTick: round(w.moveControllerCells, 3),
			TickMinutes:            w.Profile.TickMinutes,
		},
		Params: w.Tunables,
		Beam: BeamView{
			RangeKm:    round(w.Beam.RangeKm, 0),
			Efficiency: w.Beam.Efficiency,
			BaseCost:   round(w.Beam.BaseCost, 1),
			Active:     w.LastActionBeam,
			Target:     targetLabel(w.BeamTarget),
		},
		Epoch:           w.Epoch,
		RandomEpoch:     w.RandomEpoch,
		RandomPositions: w.RandomPositions,
		Rescues:         RescuesView{Junior: w.RescuesJunior, Senior: w.RescuesSenior},
		Outcome:         w.Outcome,
	}
}

func (w *World) dependentView(d *Dependent) DependentView {
	return DependentView{
		X:          round(d.X, 2),
		Y:          round(d.Y, 2),
		Hunger:     round(d.Hunger, 1),
		Alive:      d.Alive,
		DistanceKm: round(w.kmTo(d.X, d.Y), 1),
		Danger:     d.Alive && d.Hunger < w.Tunables.DangerThreshold,
	}
}

func targetLabel(t Target) *string {
	var s string
	switch t {
	case TargetBase:
		s = "base"
	case TargetJunior:
		s = "junior"
	case TargetSenior:
		s = "senior"
	default:
		return nil
	}
	return &s
}

// FormatMinutes renders an elapsed duration for humans: "45 min" under an
// hour, "3h05" under a day, "2d 4h" beyond.
func FormatMinutes(min int) string {
	switch {
	case min < 60:
		return fmt.Sprintf("%d min", min)
	case min < 1440:
		return fmt.Sprintf("%dh%02d", min/60, min%60)
	default:
		return fmt.Sprintf("%dd %dh", min/1440, (min%1440)/60)
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
