package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/isdmx/questbox/engine"
	"github.com/isdmx/questbox/harness"
	"github.com/isdmx/questbox/history"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON keeps numbers as json.Number so that integers in the context
// reach the guest as integers.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

type executeRequest struct {
	Code    string         `json:"code"`
	Context map[string]any `json:"context"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	outcome, err := s.executor.ExecuteUserCode(r.Context(), engine.Request{Code: req.Code, Context: req.Context})
	if err != nil {
		if errors.Is(err, harness.ErrUnsupportedValue) || errors.Is(err, harness.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("execution failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "execution failed")
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

type validateRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.executor.Check(req.Code))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.executor.Stats())
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.submissions == nil {
		writeJSON(w, http.StatusOK, []history.Submission{})
		return
	}

	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	subs, err := s.submissions.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list submissions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	if subs == nil {
		subs = []history.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}
