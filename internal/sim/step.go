package sim

import (
	"fmt"
	"log/slog"
	"math"
)

// assessment is the read-only situation picture built at the top of every
// tick. All costs are round-trip energy estimates in percent.
type assessment struct {
	juniorDanger bool
	seniorDanger bool
	juniorKm     float64
	seniorKm     float64
	juniorCost   float64
	seniorCost   float64
	critical     bool
	low          bool
}

// choiceKind identifies which policy fired this tick. The policies form an
// ordered cascade; the first one whose guard holds wins.
type choiceKind uint8

const (
	choiceCriticalReturn choiceKind = iota
	choiceQuickRescue
	choiceRechargeRetreat
	choiceObserve
	choiceRescue
	choiceHeroic
	choiceUnaffordableRetreat
	choiceTriage
	choiceForcedNearest
)

type choice struct {
	kind choiceKind
	role Role
}

// Step advances the simulation by exactly one tick. It is a no-op once a
// terminal outcome is set. With the controller down, only hunger decay and
// outcome checks run.
func (w *World) Step() {
	if w.Outcome != nil {
		return
	}
	if !w.Controller.Alive {
		w.stepUnguarded()
		return
	}

	w.Tick++
	w.ElapsedMin += w.Profile.TickMinutes

	// Docked at base: recharge before anything else this tick.
	if cellDist(w.Controller.X, w.Controller.Y, w.BaseX, w.BaseY) < rechargeRadius {
		w.Controller.Energy = math.Min(MaxEnergy, w.Controller.Energy+rechargePerTick)
		if w.Controller.Recharging && w.Controller.Energy >= rechargeExitAt {
			w.Controller.Recharging = false
		}
	}

	w.decayHunger(&w.Junior)
	w.decayHunger(&w.Senior)
	w.wander(&w.Junior)
	w.wander(&w.Senior)

	// Scripted early shock: both dependents drop into danger at once,
	// forcing the triage policies to engage.
	if w.Tick == crisisTick && !w.Crisis {
		w.Junior.Hunger = crisisJuniorHunger
		w.Senior.Hunger = crisisSeniorHunger
		w.Crisis = true
		w.Analysis = "CRISIS DETECTED! Both dependents in danger at once"
		slog.Info("crisis triggered", "tick", w.Tick)
	}

	a := w.assess()
	w.execute(w.decide(a), a)

	w.markDeaths()
	w.resolveOutcome()
}

// stepUnguarded is the degraded tick once the controller is down: time and
// hunger keep running, nobody intervenes.
func (w *World) stepUnguarded() {
	w.Tick++
	w.ElapsedMin += w.Profile.TickMinutes
	w.decayHunger(&w.Junior)
	w.decayHunger(&w.Senior)
	w.Action = "CONTROLLER DOWN"
	w.Analysis = "No protection left, the dependents are on their own"
	w.markDeaths()
	w.resolveOutcome()
}

// decayHunger applies this tick's hunger loss: a per-tick base proportional
// to tick duration, scaled by the decay multiplier and jittered.
func (w *World) decayHunger(d *Dependent) {
	if !d.Alive {
		return
	}
	base := float64(w.Profile.TickMinutes) / 2880.0 * 10.0 * w.Tunables.DecayMult
	d.Hunger = math.Max(0, d.Hunger-w.rng.Uniform(base*0.8, base*1.5))
}

// wander gives a live dependent a 30% chance of a small random drift,
// bounded by human walking speed and clamped to the grid.
func (w *World) wander(d *Dependent) {
	if !d.Alive || w.rng.Float64() >= wanderChance {
		return
	}
	step := math.Min(1.0, w.moveHumanCells)
	d.X = w.clampToGrid(d.X + w.rng.Uniform(-1, 1)*step)
	d.Y = w.clampToGrid(d.Y + w.rng.Uniform(-1, 1)*step)
}

func (w *World) assess() assessment {
	a := assessment{
		juniorDanger: w.Junior.Alive && w.Junior.Hunger < w.Tunables.DangerThreshold,
		seniorDanger: w.Senior.Alive && w.Senior.Hunger < w.Tunables.DangerThreshold,
		juniorKm:     w.kmTo(w.Junior.X, w.Junior.Y),
		seniorKm:     w.kmTo(w.Senior.X, w.Senior.Y),
	}
	a.juniorCost = a.juniorKm * energyPerKm * 2
	a.seniorCost = a.seniorKm * energyPerKm * 2
	a.critical = w.Controller.Energy <= w.Controller.CriticalThreshold
	a.low = w.Controller.Energy <= w.Controller.SurvivalThreshold
	return a
}

// decide runs the policy cascade and returns the winning choice. It is pure:
// no state is mutated here, which keeps the policy order testable on its own.
func (w *World) decide(a assessment) choice {
	e := w.Controller.Energy

	if a.critical {
		return choice{kind: choiceCriticalReturn}
	}

	mortalJunior := a.juniorDanger && w.Junior.Hunger < mortalHunger
	mortalSenior := a.seniorDanger && w.Senior.Hunger < mortalHunger
	if a.low && !mortalJunior && !mortalSenior {
		// Low on energy with no immediate deaths pending: rescue only if
		// the round trip leaves a margin above the critical floor.
		canJunior := a.juniorDanger && a.juniorCost < e-w.Controller.CriticalThreshold
		canSenior := a.seniorDanger && a.seniorCost < e-w.Controller.CriticalThreshold
		switch {
		case canJunior && a.juniorKm < a.seniorKm:
			return choice{kind: choiceQuickRescue, role: RoleJunior}
		case canSenior:
			return choice{kind: choiceQuickRescue, role: RoleSenior}
		default:
			return choice{kind: choiceRechargeRetreat}
		}
	}

	switch {
	case !a.juniorDanger && !a.seniorDanger:
		return choice{kind: choiceObserve}
	case a.juniorDanger && !a.seniorDanger:
		return w.decideSingle(RoleJunior, a.juniorCost, e)
	case a.seniorDanger && !a.juniorDanger:
		return w.decideSingle(RoleSenior, a.seniorCost, e)
	}

	// Both in danger.
	if a.juniorCost > e && a.seniorCost > e {
		return choice{kind: choiceForcedNearest}
	}
	scoreJ := w.urgencyScore(w.Junior.Hunger, a.juniorKm, a.juniorCost)
	scoreS := w.urgencyScore(w.Senior.Hunger, a.seniorKm, a.seniorCost)
	if scoreJ <= scoreS {
		return choice{kind: choiceTriage, role: RoleJunior}
	}
	return choice{kind: choiceTriage, role: RoleSenior}
}

func (w *World) decideSingle(role Role, cost, energy float64) choice {
	if cost > energy-w.Controller.CriticalThreshold {
		if w.dependent(role).Hunger < sacrificeLevel {
			return choice{kind: choiceHeroic, role: role}
		}
		return choice{kind: choiceUnaffordableRetreat, role: role}
	}
	return choice{kind: choiceRescue, role: role}
}

// urgencyScore ranks a rescue candidate: lower is more urgent. Hunger
// dominates, travel time and energy cost break ties.
func (w *World) urgencyScore(hunger, distKm, cost float64) float64 {
	travelTicks := distKm / w.effectiveSpeedKmh * 60 / float64(w.Profile.TickMinutes)
	return hunger + travelTicks*2 + cost/20
}

// execute carries out the winning choice: sets mode, target and narration,
// then performs this tick's movement or rescue attempt.
func (w *World) execute(c choice, a assessment) {
	e := w.Controller.Energy
	switch c.kind {
	case choiceCriticalReturn:
		w.Mode = ModeObserving
		w.Controller.Target = TargetBase
		w.Controller.Recharging = true
		w.Action = fmt.Sprintf("CRITICAL ENERGY (%.0f%%), emergency return to base", e)
		w.Analysis = "Survival takes priority, returning to recharge"
		w.moveControllerToward(w.BaseX, w.BaseY)

	case choiceQuickRescue:
		w.setRescueMode(c.role)
		w.Controller.Target = targetFor(c.role)
		w.Action = fmt.Sprintf("Quick rescue of %s before recharging (energy: %.0f%%)", c.role, e)
		w.attemptRescue(c.role, a)

	case choiceRechargeRetreat:
		w.Mode = ModeObserving
		w.Controller.Target = TargetBase
		w.Controller.Recharging = true
		w.Action = fmt.Sprintf("Low energy (%.0f%%), returning to base", e)
		w.Analysis = "Preventive recharge, no mortal danger detected"
		w.moveControllerToward(w.BaseX, w.BaseY)

	case choiceObserve:
		w.Mode = ModeObserving
		w.Controller.Target = TargetNone
		w.Action = fmt.Sprintf("Monitoring (junior: %.0fkm, senior: %.0fkm) [energy: %.0f%%]",
			a.juniorKm, a.seniorKm, e)
		w.Analysis = "Situation stable, both dependents safe"
		// With nothing to do the controller drifts back to the base at
		// grid center, where it tops up opportunistically.
		w.moveControllerToward(w.BaseX, w.BaseY)

	case choiceRescue:
		w.setRescueMode(c.role)
		w.Controller.Target = targetFor(c.role)
		w.attemptRescue(c.role, a)

	case choiceHeroic:
		w.Mode = ModeHeroic
		w.Controller.Target = targetFor(c.role)
		w.Action = fmt.Sprintf("SACRIFICE for %s (hunger critical: %.1f)", c.role, w.dependent(c.role).Hunger)
		w.attemptRescue(c.role, a)

	case choiceUnaffordableRetreat:
		cost := a.juniorCost
		if c.role == RoleSenior {
			cost = a.seniorCost
		}
		// Mode deliberately left unchanged: the controller keeps its
		// prior intent while it retreats.
		w.Action = fmt.Sprintf("Not enough energy for %s (need %.0f%%)", c.role, cost)
		w.Analysis = fmt.Sprintf("Dilemma: rescuing %s would likely cost the controller", c.role)
		w.moveControllerToward(w.BaseX, w.BaseY)

	case choiceTriage:
		w.Mode = ModeHeroic
		w.Analysis = w.emergencyAnalysis(a, e)
		w.Controller.Target = targetFor(c.role)
		if c.role == RoleJunior {
			w.Stats.PriorityJunior++
		} else {
			w.Stats.PrioritySenior++
		}
		w.attemptRescue(c.role, a)

	case choiceForcedNearest:
		w.Mode = ModeHeroic
		w.Analysis = w.emergencyAnalysis(a, e)
		role := RoleJunior
		if a.seniorKm < a.juniorKm {
			role = RoleSenior
		}
		w.Controller.Target = targetFor(role)
		w.attemptRescue(role, a)
	}
}

func (w *World) emergencyAnalysis(a assessment, energy float64) string {
	return fmt.Sprintf("EMERGENCY! junior: %.1f (%.0fkm), senior: %.1f (%.0fkm) [energy: %.0f%%]",
		w.Junior.Hunger, a.juniorKm, w.Senior.Hunger, a.seniorKm, energy)
}

func (w *World) setRescueMode(role Role) {
	if role == RoleSenior {
		w.Mode = ModeRescuingSenior
	} else {
		w.Mode = ModeRescuingJunior
	}
}

func (w *World) markDeaths() {
	for _, d := range []*Dependent{&w.Junior, &w.Senior} {
		if d.Alive && d.Hunger <= 0 {
			d.Alive = false
			slog.Info("dependent lost", "role", d.Role.String(), "tick", w.Tick)
		}
	}
}
