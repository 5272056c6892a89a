package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talgya/guardian-sim/internal/scale"
	"github.com/talgya/guardian-sim/internal/sim"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.snapshotLocked(nil))
}

func (s *Server) handleScales(w http.ResponseWriter, r *http.Request) {
	type scaleEntry struct {
		scale.Profile
		Current bool `json:"current"`
	}

	s.mu.Lock()
	current := s.World.ScaleKey
	s.mu.Unlock()

	catalog := scale.All()
	result := make([]scaleEntry, 0, len(scale.Order))
	for _, key := range scale.Order {
		result = append(result, scaleEntry{Profile: catalog[key], Current: key == current})
	}
	writeJSON(w, result)
}

// handleSetScale switches the world to the scale named in the path:
// POST /api/v1/scale/:key. Unknown keys are rejected before touching the
// engine.
func (s *Server) handleSetScale(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/api/v1/scale/")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "usage: /api/v1/scale/:key", http.StatusBadRequest)
		return
	}
	if !scale.Known(key) {
		http.Error(w, "unknown scale "+strconv.Quote(key), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.snapshotLocked(func(world *sim.World) {
		world.SetScale(key)
	}))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	writeJSON(w, s.snapshotLocked(func(world *sim.World) {
		world.Start(false)
	}))
}

// handleStartRandom starts a fresh run under a newly drawn epoch.
func (s *Server) handleStartRandom(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	writeJSON(w, s.snapshotLocked(func(world *sim.World) {
		world.Start(true)
	}))
}

// handleRandomize draws a new epoch and applies its parameters without
// resetting positions or vitals.
func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	writeJSON(w, s.snapshotLocked(func(world *sim.World) {
		world.RandomizeEpoch()
	}))
}

// handleStep advances one tick when a run is active; otherwise it just
// returns the current state.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	writeJSON(w, s.snapshotLocked(func(world *sim.World) {
		if world.Running {
			world.Step()
		}
	}))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	writeJSON(w, s.snapshotLocked(func(world *sim.World) {
		world.Reset()
	}))
}

// handleParams returns the current tunables on GET and applies a validated
// partial update on POST.
func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.mu.Lock()
		params := s.World.Tunables
		s.mu.Unlock()
		writeJSON(w, params)
		return
	}
	if !postOnly(w, r) {
		return
	}

	patch, err := decodeParamsPatch(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var applied sim.Tunables
	s.snapshotLocked(func(world *sim.World) {
		applied = world.UpdateTunables(patch)
	})
	slog.Info("parameters updated", "params", applied)
	writeJSON(w, applied)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := *s.World.Stats
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"totals":      stats,
		"percentages": stats.Percentages(),
		"averages":    stats.Averages(),
	})
}

func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	s.mu.Lock()
	s.World.Stats.Reset()
	s.mu.Unlock()
	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) handleTogglePositions(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	var random bool
	s.snapshotLocked(func(world *sim.World) {
		random = world.ToggleRandomPositions()
	})
	writeJSON(w, map[string]any{"random_positions": random})
}

// handleBatch runs POST /api/v1/batch/:count fresh simulations to completion
// and returns the aggregate statistics.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if !postOnly(w, r) {
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/batch/")
	count, err := strconv.Atoi(raw)
	if err != nil || count < 1 {
		http.Error(w, "usage: /api/v1/batch/:count", http.StatusBadRequest)
		return
	}
	limit := s.BatchLimit
	if limit < 1 {
		limit = 100
	}
	if count > limit {
		count = limit
	}

	var stats sim.Stats
	s.snapshotLocked(func(world *sim.World) {
		world.RunBatch(count)
		stats = *world.Stats
	})
	slog.Info("batch complete", "runs", count, "total_runs", stats.TotalRuns)

	writeJSON(w, map[string]any{
		"runs":        count,
		"totals":      stats,
		"percentages": stats.Percentages(),
		"averages":    stats.Averages(),
	})
}
