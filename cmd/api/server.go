package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pefman/w40k-sim/internal/api"
	"github.com/pefman/w40k-sim/internal/config"
	"github.com/pefman/w40k-sim/internal/engine"
	"github.com/pefman/w40k-sim/internal/game"
	"github.com/pefman/w40k-sim/internal/models"
	"github.com/pefman/w40k-sim/internal/runlog"
	"github.com/pefman/w40k-sim/internal/sim"
)

var errBadRequest = errors.New("bad request")

type server struct {
	cfg    config.Server
	log    *zap.Logger
	roster *models.Roster
	runs   *runlog.Log
	rules  *game.Ruleset
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	a := r.PathPrefix("/api").Subrouter()
	a.Use(s.logRequests)
	a.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	a.HandleFunc("/units", s.handleUnits).Methods(http.MethodGet)
	a.HandleFunc("/sim/run", s.handleRun).Methods(http.MethodPost)
	a.HandleFunc("/sim/shoot", s.handleShoot).Methods(http.MethodPost)
	a.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	a.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	r.HandleFunc("/ws/sim", s.handleWS)
	return withCORS(r)
}

// GET /api/units -> roster units available by name
func (s *server) handleUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.roster.Units)
}

// POST /api/sim/run {attacker, weapon, defender, modifiers, iterations, seed}
func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req api.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	resp, err := s.simulate(r.Context(), req, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, resp)
}

// POST /api/sim/shoot -> one trial with a roll-by-roll log
func (s *server) handleShoot(w http.ResponseWriter, r *http.Request) {
	var req api.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	attacker, weapon, defender, err := s.resolveMatchup(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	seed := req.Seed
	if seed == 0 {
		if seed, err = engine.NewSeed(); err != nil {
			s.fail(w, err)
			return
		}
	}
	out, logs, err := game.NewResolver(s.rules).Explain(engine.NewRNG(seed), attacker, weapon, defender, req.Modifiers.Modifiers())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, api.ShootResponse{Logs: logs, Damage: out.Damage, Kills: out.Kills, Stats: out.Stats})
}

// GET /api/runs?limit=N -> recent runs, newest first
func (s *server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	writeJSON(w, s.runs.List(limit))
}

// GET /api/runs/{id} -> one stored run
func (s *server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runs.Get(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, rec)
}

// resolveMatchup looks up units in the request's inline roster first, then
// in the server roster.
func (s *server) resolveMatchup(req api.RunRequest) (game.UnitProfile, game.WeaponProfile, game.UnitProfile, error) {
	roster := s.roster
	if len(req.Units) > 0 {
		merged := &models.Roster{Units: append([]models.Unit{}, req.Units...)}
		merged.Units = append(merged.Units, s.roster.Units...)
		roster = merged
	}
	return roster.Resolve(req.Matchup())
}

// simulate runs a request and records it in the run log.
func (s *server) simulate(ctx context.Context, req api.RunRequest, onProgress func(done, total int)) (api.RunResponse, error) {
	iterations := req.Iterations
	if iterations == 0 {
		iterations = s.cfg.DefaultIterations
	}
	if iterations < 0 || iterations > s.cfg.MaxIterations {
		return api.RunResponse{}, fmt.Errorf("%w: iterations must be between 1 and %d", errBadRequest, s.cfg.MaxIterations)
	}
	attacker, weapon, defender, err := s.resolveMatchup(req)
	if err != nil {
		return api.RunResponse{}, err
	}
	mods := req.Modifiers.Modifiers()

	runner := &sim.Runner{
		Resolver:      game.NewResolver(s.rules),
		Workers:       s.cfg.Workers,
		Seed:          req.Seed,
		OnProgress:    onProgress,
		ProgressEvery: max(1, iterations/20),
		Logger:        s.log,
	}
	start := time.Now()
	res, err := runner.Run(ctx, attacker, weapon, defender, mods, iterations)
	if err != nil {
		return api.RunResponse{}, err
	}
	elapsed := time.Since(start)

	rec, err := s.runs.Add(runlog.Record{
		Modifiers: mods,
		Summary:   res.Summary(req.Histogram),
		Duration:  elapsed.String(),
	})
	if err != nil {
		s.log.Warn("run log persistence failed", zap.String("run_id", rec.ID), zap.Error(err))
	}
	s.log.Info("simulation complete",
		zap.String("run_id", rec.ID),
		zap.String("attacker", res.Attacker),
		zap.String("weapon", res.Weapon),
		zap.String("defender", res.Defender),
		zap.Int("iterations", iterations),
		zap.Float64("average_damage", rec.Summary.AverageDamage),
		zap.Float64("kill_probability", rec.Summary.KillProbability),
		zap.Duration("duration", elapsed),
	)
	return api.RunResponse{ID: rec.ID, Summary: rec.Summary, Duration: rec.Duration}, nil
}

func (s *server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.log.Error("request failed", zap.Error(err))
	}
	writeError(w, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownUnit),
		errors.Is(err, models.ErrUnknownWeapon),
		errors.Is(err, runlog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, models.ErrInvalidUnit),
		errors.Is(err, engine.ErrInvalidExpression),
		errors.Is(err, sim.ErrNoIterations):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(api.ErrorBody{
		Error:   http.StatusText(code),
		Message: msg,
		Status:  code,
	})
}

// simple CORS for GET/POST/OPTIONS
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
