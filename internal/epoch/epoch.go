// Package epoch generates randomized technology-level scenarios.
// One exponential draw, the tech factor, derives every epoch parameter:
// controller speed, hunger decay, detection threshold, rescue bonus, and the
// ranged-beam envelope. The generated year is deliberately withheld.
package epoch

import (
	"math"

	"github.com/talgya/guardian-sim/internal/entropy"
)

// Caps on derived epoch parameters.
const (
	MaxTechFactor     = 200.0
	MaxSpeedMult      = 50.0
	MinDecayMult      = 0.3
	MaxDecayMult      = 3.0
	MaxDangerLevel    = 6.0
	MaxRescueBonus    = 10.0
	MaxBeamRangeKm    = 5000.0
	MaxBeamEfficiency = 0.95
	MinBeamCost       = 2.0
)

// Params is the parameter bundle derived from one tech-factor draw.
type Params struct {
	TechFactor      float64 `json:"tech_factor"`
	SpeedMult       float64 `json:"speed_mult"`
	DecayMult       float64 `json:"decay_mult"`
	DangerThreshold float64 `json:"danger_threshold"`
	RescueBonus     float64 `json:"rescue_bonus"`
	BeamRangeKm     float64 `json:"beam_range_km"`
	BeamEfficiency  float64 `json:"beam_efficiency"`
	BeamBaseCost    float64 `json:"beam_base_cost"`

	Period        string `json:"period"`
	Description   string `json:"description"`
	EstimatedYear string `json:"estimated_year"` // Never revealed
}

// Generate draws a tech factor and derives a full epoch.
// Pure function of the source; never fails.
func Generate(src *entropy.Source) Params {
	// Exponential draw favors the near future but allows the far one.
	tech := 1.0 + src.Exp(0.5)*10
	if tech > MaxTechFactor {
		tech = MaxTechFactor
	}

	p := Params{
		TechFactor:    round(tech, 1),
		EstimatedYear: "???",
	}

	// Controller speed: ~1x today, up to 50x.
	p.SpeedMult = round(math.Min(1.0+(tech-1)*0.25, MaxSpeedMult), 2)

	// Hunger decay: the future is usually kinder, but 30% of draws land in
	// a crisis timeline where conditions degrade instead.
	if src.Float64() < 0.7 {
		p.DecayMult = math.Max(MinDecayMult, 1.0-(tech-1)*0.02)
	} else {
		p.DecayMult = math.Min(MaxDecayMult, 1.0+src.Uniform(0, 1))
	}
	p.DecayMult = round(p.DecayMult, 2)

	// Better detection raises the danger threshold mildly.
	p.DangerThreshold = round(math.Min(MaxDangerLevel, 3.0+(tech-1)*0.05), 1)

	// Better technology, better rescues.
	p.RescueBonus = round(math.Min(MaxRescueBonus, 5.0+(tech-1)*0.1), 1)

	// Beam envelope: range grows linearly, efficiency approaches 95%,
	// base cost falls toward a 2% floor.
	p.BeamRangeKm = math.Min(MaxBeamRangeKm, 100*(1+(tech-1)*0.5))
	p.BeamEfficiency = math.Min(MaxBeamEfficiency, 0.8+(tech-1)*0.005)
	p.BeamBaseCost = math.Max(MinBeamCost, 5.0-(tech-1)*0.1)

	p.Period, p.Description = classify(tech)
	return p
}

// classify buckets a tech factor into a period label.
func classify(tech float64) (period, description string) {
	switch {
	case tech < 2:
		return "Near present", "Current technology"
	case tech < 5:
		return "Near future", "Advanced drones, emerging autonomy"
	case tech < 15:
		return "Mid future", "Distributed intelligence, global networks"
	case tech < 50:
		return "Advanced future", "Superintelligence, nano-drones"
	default:
		return "Far future", "Post-singularity, unimaginable technology"
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
