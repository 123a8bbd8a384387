package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/satwatch/satwatch/internal/sim"
	"github.com/satwatch/satwatch/internal/telemetry"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent. A second false return means the value was malformed.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Server) handleTelemetryLatest(w http.ResponseWriter, r *http.Request) {
	latest, ok := s.sim.Latest()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no telemetry yet")
		return
	}
	s.writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleTelemetryHistory(w http.ResponseWriter, r *http.Request) {
	category := telemetry.Category(r.URL.Query().Get("category"))
	valid := false
	for _, c := range telemetry.Categories() {
		if c == category {
			valid = true
			break
		}
	}
	if !valid {
		s.writeError(w, http.StatusBadRequest, "unknown or missing category")
		return
	}

	minutes, ok := queryInt(r, "minutes", 5)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "minutes must be a non-negative integer")
		return
	}

	samples := s.sim.History(category, time.Duration(minutes)*time.Minute)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"minutes":  minutes,
		"count":    len(samples),
		"samples":  samples,
	})
}

func (s *Server) handleAlertsActive(w http.ResponseWriter, r *http.Request) {
	alerts := s.sim.ActiveAlerts()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

func (s *Server) handleAlertsHistory(w http.ResponseWriter, r *http.Request) {
	hours, ok := queryInt(r, "hours", 1)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "hours must be a non-negative integer")
		return
	}

	alerts := s.sim.AlertHistory(time.Duration(hours) * time.Hour)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"hours":  hours,
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// acknowledgeRequest is the optional body of an acknowledge call.
type acknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledgedBy"`
}

func (s *Server) handleAlertAcknowledge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req acknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	by := req.AcknowledgedBy
	if by == "" {
		by = "operator"
	}

	if !s.sim.Acknowledge(id, by) {
		s.writeError(w, http.StatusNotFound, "no active alert with that id")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":             id,
		"acknowledged":   true,
		"acknowledgedBy": by,
	})
}

func (s *Server) handleFaultInject(w http.ResponseWriter, r *http.Request) {
	subsystem := r.PathValue("subsystem")
	if err := s.sim.InjectFault(subsystem); err != nil {
		if errors.Is(err, sim.ErrUnknownSubsystem) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"subsystem":   subsystem,
		"faultActive": true,
	})
}

func (s *Server) handleFaultClear(w http.ResponseWriter, r *http.Request) {
	subsystem := r.PathValue("subsystem")
	if err := s.sim.ClearFault(subsystem); err != nil {
		if errors.Is(err, sim.ErrUnknownSubsystem) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"subsystem":   subsystem,
		"faultActive": false,
	})
}

func (s *Server) handleDetectorRetrain(w http.ResponseWriter, r *http.Request) {
	s.sim.RetrainDetectors()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"retrained": true,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":               s.sim.Running(),
		"missionElapsedSeconds": s.sim.MissionElapsed().Seconds(),
		"activeAlerts":          len(s.sim.ActiveAlerts()),
		"faults":                s.sim.Faults(),
	})
}
