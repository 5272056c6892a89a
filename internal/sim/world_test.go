package sim

import (
	"math"
	"testing"

	"github.com/talgya/guardian-sim/internal/entropy"
)

func newTestWorld(t *testing.T, scaleKey string) *World {
	t.Helper()
	return New(entropy.New(42), scaleKey, false)
}

func TestResetInvariants(t *testing.T) {
	w := newTestWorld(t, "country")

	if w.Junior.X != 2 || w.Junior.Y != 12 {
		t.Errorf("junior at (%v,%v), want (2,12)", w.Junior.X, w.Junior.Y)
	}
	if w.Senior.X != 12 || w.Senior.Y != 2 {
		t.Errorf("senior at (%v,%v), want (12,2)", w.Senior.X, w.Senior.Y)
	}
	if w.Controller.X != 7 || w.Controller.Y != 7 || w.BaseX != 7 || w.BaseY != 7 {
		t.Errorf("controller/base not at grid center")
	}
	if w.Junior.Hunger != InitialHunger || w.Senior.Hunger != InitialHunger {
		t.Errorf("initial hunger = %v/%v, want %v", w.Junior.Hunger, w.Senior.Hunger, InitialHunger)
	}
	if w.Controller.Energy != MaxEnergy {
		t.Errorf("initial energy = %v, want %v", w.Controller.Energy, MaxEnergy)
	}
	if w.Tick != 0 || w.Outcome != nil || w.Running || w.Crisis {
		t.Errorf("reset left run state dirty: tick=%d outcome=%v running=%v crisis=%v",
			w.Tick, w.Outcome, w.Running, w.Crisis)
	}
	if !w.Junior.Alive || !w.Senior.Alive || !w.Controller.Alive {
		t.Error("everyone should be alive after reset")
	}
}

func TestResetRandomPlacementSeparation(t *testing.T) {
	w := New(entropy.New(7), "country", true)
	for i := 0; i < 50; i++ {
		w.Reset()
		d := cellDist(w.Junior.X, w.Junior.Y, w.Senior.X, w.Senior.Y)
		if d < minSeparationCells {
			t.Fatalf("reset %d: separation %.2f < %v", i, d, minSeparationCells)
		}
		for _, v := range []float64{w.Junior.X, w.Junior.Y, w.Senior.X, w.Senior.Y} {
			if v < 1 || v > 14 {
				t.Fatalf("reset %d: coordinate %.2f outside edge bands", i, v)
			}
		}
	}
}

func TestSetScaleUnknownKeyIgnored(t *testing.T) {
	w := newTestWorld(t, "city")
	w.Tick = 5
	w.SetScale("galaxy")
	if w.ScaleKey != "city" || w.Tick != 5 {
		t.Errorf("unknown scale key should not reset: key=%q tick=%d", w.ScaleKey, w.Tick)
	}
	w.SetScale("region")
	if w.ScaleKey != "region" || w.Tick != 0 {
		t.Errorf("known scale key should switch and reset: key=%q tick=%d", w.ScaleKey, w.Tick)
	}
}

func TestUpdateTunablesClamps(t *testing.T) {
	w := newTestWorld(t, "country")
	f := func(v float64) *float64 { return &v }

	got := w.UpdateTunables(TunablesPatch{
		SpeedMult:       f(99),
		DecayMult:       f(0),
		DangerThreshold: f(12),
		RescueBonus:     f(-3),
	})
	want := Tunables{SpeedMult: 5, DecayMult: 0.1, DangerThreshold: 8, RescueBonus: 1}
	if got != want {
		t.Errorf("clamped tunables = %+v, want %+v", got, want)
	}

	// Derived controller speed follows the multiplier immediately.
	if w.effectiveSpeedKmh != w.Profile.ControllerSpeedKmh*5 {
		t.Errorf("effective speed = %v, want %v", w.effectiveSpeedKmh, w.Profile.ControllerSpeedKmh*5)
	}

	// Partial patch leaves the rest untouched.
	got = w.UpdateTunables(TunablesPatch{DecayMult: f(2)})
	if got.SpeedMult != 5 || got.DecayMult != 2 {
		t.Errorf("partial patch = %+v", got)
	}
}

func TestRandomizeEpochAppliesParams(t *testing.T) {
	w := newTestWorld(t, "country")
	ep := w.RandomizeEpoch()

	if w.Epoch == nil {
		t.Fatal("epoch not stored")
	}
	if w.Tunables.SpeedMult != ep.SpeedMult || w.Tunables.DecayMult != ep.DecayMult {
		t.Errorf("tunables %+v do not match epoch %+v", w.Tunables, ep)
	}
	if w.Beam.RangeKm != ep.BeamRangeKm || w.Beam.Efficiency != ep.BeamEfficiency {
		t.Errorf("beam %+v does not match epoch", w.Beam)
	}

	// Epoch-derived beam parameters survive a reset.
	w.Reset()
	if w.Beam.RangeKm != ep.BeamRangeKm {
		t.Errorf("beam range %v reset away, want %v", w.Beam.RangeKm, ep.BeamRangeKm)
	}
}

func TestDefaultBeamScalesWithSpeedMult(t *testing.T) {
	w := newTestWorld(t, "country")
	f := func(v float64) *float64 { return &v }
	w.UpdateTunables(TunablesPatch{SpeedMult: f(3)})
	w.Reset()
	if w.Beam.RangeKm != defaultBeamRangeKm*3 {
		t.Errorf("beam range = %v, want %v", w.Beam.RangeKm, defaultBeamRangeKm*3)
	}
	if w.Beam.Efficiency != defaultBeamEfficiency || w.Beam.BaseCost != defaultBeamCost {
		t.Errorf("default beam = %+v", w.Beam)
	}
}

func TestToggleRandomPositions(t *testing.T) {
	w := newTestWorld(t, "country")
	if w.ToggleRandomPositions() != true {
		t.Error("first toggle should enable random placement")
	}
	if w.ToggleRandomPositions() != false {
		t.Error("second toggle should disable it")
	}
}

func TestBeamCostBounds(t *testing.T) {
	w := newTestWorld(t, "country")
	w.Beam = BeamSpec{RangeKm: 100, Efficiency: 0.8, BaseCost: 5}

	if got := w.beamCost(0); got != 5 {
		t.Errorf("cost at zero distance = %v, want base cost 5", got)
	}
	if got := w.beamCost(100); got != 15 {
		t.Errorf("cost at full range = %v, want 15", got)
	}
	prev := 0.0
	for d := 10.0; d <= 100; d += 10 {
		c := w.beamCost(d)
		if c <= prev {
			t.Fatalf("beam cost not increasing at %vkm: %v <= %v", d, c, prev)
		}
		prev = c
	}
}

func TestFireBeamChargesEnergyAndFeeds(t *testing.T) {
	w := newTestWorld(t, "country")
	w.Beam = BeamSpec{RangeKm: 100, Efficiency: 0.8, BaseCost: 5}
	w.Junior.Hunger = 2

	if !w.fireBeam(RoleJunior, 50) {
		t.Fatal("beam should fire with full energy")
	}
	if got := w.Controller.Energy; math.Abs(got-90) > 1e-9 {
		t.Errorf("energy after beam = %v, want 90", got)
	}
	if got := w.Junior.Hunger; math.Abs(got-6) > 1e-9 {
		t.Errorf("hunger after beam = %v, want 6", got)
	}
	if w.RescuesJunior != 1 || w.BeamsFired != 1 || !w.LastActionBeam {
		t.Errorf("beam counters: rescues=%d fired=%d active=%v", w.RescuesJunior, w.BeamsFired, w.LastActionBeam)
	}

	w.Controller.Energy = 5
	if w.fireBeam(RoleJunior, 100) {
		t.Error("beam should not fire when the cost exceeds remaining energy")
	}
}
