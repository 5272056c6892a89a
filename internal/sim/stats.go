package sim

// Stats accumulates results across completed runs. It survives world resets
// and is only cleared on explicit request. Outcome tallies fold in when a
// run reaches a terminal state; the priority counters increment live, each
// time the triage policy picks a side.
type Stats struct {
	TotalRuns      int `json:"total_runs"`
	BothSurvived   int `json:"both_survived"`
	JuniorSurvived int `json:"junior_survived"`
	SeniorSurvived int `json:"senior_survived"`
	BothDied       int `json:"both_died"`
	ControllerLost int `json:"controller_lost"`

	RescuesJunior int     `json:"rescues_junior"`
	RescuesSenior int     `json:"rescues_senior"`
	BeamsFired    int     `json:"beams_fired"`
	DistanceKm    float64 `json:"distance_km"`

	PriorityJunior int `json:"priority_junior"`
	PrioritySenior int `json:"priority_senior"`
}

func (s *Stats) recordRun(w *World) {
	s.TotalRuns++
	switch w.Outcome.Class {
	case OutcomeBothSurvived:
		s.BothSurvived++
	case OutcomeJuniorSurvived:
		s.JuniorSurvived++
	case OutcomeSeniorSurvived:
		s.SeniorSurvived++
	case OutcomeBothDied:
		s.BothDied++
	}
	if !w.Controller.Alive {
		s.ControllerLost++
	}
	s.RescuesJunior += w.RescuesJunior
	s.RescuesSenior += w.RescuesSenior
	s.BeamsFired += w.BeamsFired
	s.DistanceKm += w.Controller.DistanceKm
}

// Reset clears every counter.
func (s *Stats) Reset() {
	*s = Stats{}
}

// Percentages derives outcome rates from the raw tallies. Empty when no run
// has completed yet.
func (s *Stats) Percentages() map[string]float64 {
	if s.TotalRuns == 0 {
		return map[string]float64{}
	}
	total := float64(s.TotalRuns)
	pct := func(n int) float64 { return round(float64(n)/total*100, 1) }
	out := map[string]float64{
		"both_survived_pct":   pct(s.BothSurvived),
		"junior_survived_pct": pct(s.JuniorSurvived),
		"senior_survived_pct": pct(s.SeniorSurvived),
		"both_died_pct":       pct(s.BothDied),
		"controller_lost_pct": pct(s.ControllerLost),
	}
	if choices := s.PriorityJunior + s.PrioritySenior; choices > 0 {
		out["priority_junior_pct"] = round(float64(s.PriorityJunior)/float64(choices)*100, 1)
		out["priority_senior_pct"] = round(float64(s.PrioritySenior)/float64(choices)*100, 1)
	}
	return out
}

// Averages derives per-run means from the raw tallies.
func (s *Stats) Averages() map[string]float64 {
	if s.TotalRuns == 0 {
		return map[string]float64{}
	}
	total := float64(s.TotalRuns)
	return map[string]float64{
		"rescues_junior_avg": round(float64(s.RescuesJunior)/total, 2),
		"rescues_senior_avg": round(float64(s.RescuesSenior)/total, 2),
		"beams_fired_avg":    round(float64(s.BeamsFired)/total, 2),
		"distance_km_avg":    round(s.DistanceKm/total, 1),
	}
}
