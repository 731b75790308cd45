package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/pkg/validation"
)

type Config struct {
	Port     int
	Hospital HospitalSimConfig
}

type Simulator struct {
	config     Config
	hospital   *HospitalSim
	httpServer *http.Server
}

func New(cfg Config) *Simulator {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}

	return &Simulator{
		config:   cfg,
		hospital: NewHospitalSim(cfg.Hospital),
	}
}

func (s *Simulator) Hospital() *HospitalSim {
	return s.hospital
}

func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Simulator) Start() error {
	mux := http.NewServeMux()

	// Routes with CORS
	mux.HandleFunc("/health", cors(s.healthHandler))
	mux.HandleFunc("/snapshot", cors(s.snapshotHandler))
	mux.HandleFunc("/status", cors(s.statusHandler))
	mux.HandleFunc("/surge", cors(s.surgeHandler))
	mux.HandleFunc("/drain", cors(s.drainHandler))
	mux.HandleFunc("/pattern", cors(s.patternHandler))

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("Simulator listening on %s", addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Simulator server error: %v", err)
		}
	}()

	return nil
}

func (s *Simulator) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// HTTP Handlers

func (s *Simulator) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "telemetry-simulator",
	})
}

func (s *Simulator) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := s.hospital.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

func (s *Simulator) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.hospital.Status())
}

type SurgeRequest struct {
	TargetCases    float64 `json:"target_cases"`
	OccupancyBoost float64 `json:"occupancy_boost"`
	Duration       string  `json:"duration"`
	RampUp         string  `json:"ramp_up"`
}

func (s *Simulator) surgeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SurgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		duration = 10 * time.Minute
	}

	rampUp, err := time.ParseDuration(req.RampUp)
	if err != nil {
		rampUp = 30 * time.Second
	}

	if req.TargetCases <= 0 {
		req.TargetCases = 12
	}
	if req.OccupancyBoost < 0 {
		req.OccupancyBoost = 0
	}

	s.hospital.InjectSurge(req.TargetCases, req.OccupancyBoost, duration, rampUp)

	logger.Infof("Injected surge: target_cases=%.0f, duration=%s", req.TargetCases, duration)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "surge injected",
		"target_cases": req.TargetCases,
		"duration":     duration.String(),
		"ramp_up":      rampUp.String(),
	})
}

type DrainRequest struct {
	TargetLevel float64 `json:"target_level"`
	Duration    string  `json:"duration"`
	RampUp      string  `json:"ramp_up"`
}

func (s *Simulator) drainHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePercent(req.TargetLevel, "target_level"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		duration = 10 * time.Minute
	}

	rampUp, err := time.ParseDuration(req.RampUp)
	if err != nil {
		rampUp = 30 * time.Second
	}

	s.hospital.InjectOxygenDrain(req.TargetLevel, duration, rampUp)

	logger.Infof("Injected oxygen drain: target_level=%.1f%%, duration=%s", req.TargetLevel, duration)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "oxygen drain injected",
		"target_level": req.TargetLevel,
		"duration":     duration.String(),
		"ramp_up":      rampUp.String(),
	})
}

type PatternRequest struct {
	Pattern string `json:"pattern"` // "steady", "daily", "weekly", "random", "night_drop", "gradual_rise"
}

func (s *Simulator) patternHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pattern := ParsePattern(req.Pattern)
	s.hospital.SetPattern(pattern)

	logger.Infof("Set activity pattern %s", pattern.Name())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "pattern set",
		"pattern": pattern.Name(),
	})
}
