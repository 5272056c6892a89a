package sim

import (
	"fmt"
	"log/slog"
	"math"
)

// attemptRescue performs this tick's rescue work for the chosen dependent:
// direct contact when adjacent, a beam shot when in range and affordable,
// otherwise one tick of travel toward the target.
func (w *World) attemptRescue(role Role, a assessment) {
	d := w.dependent(role)
	distKm := a.juniorKm
	if role == RoleSenior {
		distKm = a.seniorKm
	}

	w.LastActionBeam = false
	w.BeamTarget = TargetNone

	// Contact rescue: full bonus, no energy cost.
	if cellDist(w.Controller.X, w.Controller.Y, d.X, d.Y) <= contactRadius {
		d.Hunger = math.Min(MaxHunger, d.Hunger+w.Tunables.RescueBonus)
		w.bumpRescues(role)
		w.Action = fmt.Sprintf("%s RESCUED (+%.0f hunger)", role, w.Tunables.RescueBonus)
		w.Analysis = fmt.Sprintf("%s saved by direct contact", role)
		return
	}

	if distKm <= w.Beam.RangeKm && w.shouldBeam(d, distKm) && w.fireBeam(role, distKm) {
		return
	}

	w.moveControllerToward(d.X, d.Y)
	if !w.Controller.Alive {
		return
	}
	if distKm <= w.Beam.RangeKm {
		w.Action = fmt.Sprintf("Moving toward %s (%.0fkm) [beam available: %.1f%%]",
			role, distKm, w.beamCost(distKm))
	} else {
		etaMin := distKm / w.effectiveSpeedKmh * 60
		w.Action = fmt.Sprintf("Moving toward %s (%.0fkm, ETA %s)",
			role, distKm, FormatMinutes(int(etaMin)))
	}
	w.Analysis = fmt.Sprintf("%s in danger! hunger: %.1f", role, d.Hunger)
}

// shouldBeam decides whether a ranged rescue is worth the energy: urgent
// cases fire as long as the critical floor survives, otherwise the shot must
// clear the survival threshold and either save meaningful travel time or be
// comfortably affordable.
func (w *World) shouldBeam(d *Dependent, distKm float64) bool {
	cost := w.beamCost(distKm)
	e := w.Controller.Energy
	if d.Hunger < urgentHunger && e >= cost+w.Controller.CriticalThreshold {
		return true
	}
	travelTicks := distKm / w.effectiveSpeedKmh * 60 / float64(w.Profile.TickMinutes)
	if travelTicks > 3 && e >= cost+w.Controller.SurvivalThreshold {
		return true
	}
	return e > beamComfortEnergy && e >= cost+w.Controller.SurvivalThreshold
}

// beamCost is the energy price of a shot at the given distance. It grows
// linearly from the base cost up to three times the base cost at full range.
func (w *World) beamCost(distKm float64) float64 {
	return w.Beam.BaseCost * (1 + distKm/w.Beam.RangeKm*2)
}

func (w *World) fireBeam(role Role, distKm float64) bool {
	cost := w.beamCost(distKm)
	if w.Controller.Energy < cost {
		return false
	}
	d := w.dependent(role)
	bonus := w.Tunables.RescueBonus * w.Beam.Efficiency
	w.Controller.Energy -= cost
	d.Hunger = math.Min(MaxHunger, d.Hunger+bonus)
	w.bumpRescues(role)
	w.BeamsFired++
	w.LastActionBeam = true
	w.BeamTarget = targetFor(role)
	w.Action = fmt.Sprintf("BEAM fired at %s (+%.1f hunger, -%.1f%% energy)", role, bonus, cost)
	w.Analysis = fmt.Sprintf("Ranged rescue at %.0fkm (beam range: %.0fkm)", distKm, w.Beam.RangeKm)
	slog.Debug("beam fired", "role", role.String(), "distance_km", distKm, "cost", cost)
	return true
}

func (w *World) bumpRescues(role Role) {
	if role == RoleSenior {
		w.RescuesSenior++
	} else {
		w.RescuesJunior++
	}
}

// moveControllerToward advances the controller one tick toward a point,
// clamped to the grid, charging energy for the kilometers actually covered.
// Movement is the one way the controller can die: at 0% it is permanently
// disabled.
func (w *World) moveControllerToward(tx, ty float64) {
	c := &w.Controller
	dx, dy := tx-c.X, ty-c.Y
	dist := math.Max(0.1, math.Hypot(dx, dy))
	step := math.Min(w.moveControllerCells, dist)

	oldX, oldY := c.X, c.Y
	c.X = w.clampToGrid(c.X + dx/dist*step)
	c.Y = w.clampToGrid(c.Y + dy/dist*step)

	traveledKm := cellDist(oldX, oldY, c.X, c.Y) * w.Profile.CellKm
	c.DistanceKm += traveledKm
	c.Energy = math.Max(0, c.Energy-traveledKm*energyPerKm)
	if c.Energy <= 0 {
		c.Alive = false
		w.Action = "CONTROLLER LOST, energy exhausted"
		w.Analysis = "The controller overspent its reserves and shut down"
		slog.Warn("controller lost", "tick", w.Tick, "distance_km", round(c.DistanceKm, 1))
	}
}
