package sim

import (
	"fmt"
	"log/slog"
)

// OutcomeClass classifies a terminal state. Checks run in a fixed order, so
// a tick in which both dependents die is always classified as a total loss.
type OutcomeClass uint8

const (
	OutcomeBothDied OutcomeClass = iota
	OutcomeSeniorSurvived
	OutcomeJuniorSurvived
	OutcomeBothSurvived
)

func (c OutcomeClass) String() string {
	switch c {
	case OutcomeBothDied:
		return "both_died"
	case OutcomeSeniorSurvived:
		return "senior_survived"
	case OutcomeJuniorSurvived:
		return "junior_survived"
	default:
		return "both_survived"
	}
}

// Outcome is the terminal result of one run.
type Outcome struct {
	Class   OutcomeClass `json:"-"`
	Kind    string       `json:"class"`
	Summary string       `json:"summary"`
	Tick    int          `json:"tick"`
}

// resolveOutcome checks the terminal conditions and, on the first hit, seals
// the run: the outcome is set exactly once, the run stops, and aggregate
// statistics fold in this run's counters.
func (w *World) resolveOutcome() {
	if w.Outcome != nil {
		return
	}
	elapsed := FormatMinutes(w.ElapsedMin)

	var o *Outcome
	switch {
	case !w.Junior.Alive && !w.Senior.Alive:
		o = &Outcome{
			Class:   OutcomeBothDied,
			Summary: fmt.Sprintf("TOTAL FAILURE after %s: both dependents lost", elapsed),
		}
	case !w.Junior.Alive:
		o = &Outcome{
			Class: OutcomeSeniorSurvived,
			Summary: fmt.Sprintf("Junior lost after %s, senior survives (rescued %d times)",
				elapsed, w.RescuesSenior),
		}
	case !w.Senior.Alive:
		o = &Outcome{
			Class: OutcomeJuniorSurvived,
			Summary: fmt.Sprintf("Senior lost after %s, junior survives (rescued %d times)",
				elapsed, w.RescuesJunior),
		}
	case w.Tick >= TickCeiling:
		o = &Outcome{
			Class: OutcomeBothSurvived,
			Summary: fmt.Sprintf("SUCCESS after %s: both survive (junior %dx, senior %dx)",
				elapsed, w.RescuesJunior, w.RescuesSenior),
		}
	default:
		return
	}

	o.Kind = o.Class.String()
	o.Tick = w.Tick
	w.Outcome = o
	w.Running = false
	w.Stats.recordRun(w)
	slog.Info("run complete",
		"outcome", o.Kind,
		"tick", w.Tick,
		"elapsed", elapsed,
		"controller_alive", w.Controller.Alive,
	)
}
