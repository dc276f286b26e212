package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tablero/internal/core"
	"tablero/internal/log"
)

type yearEntry struct {
	Year   string   `json:"year"`
	Months []string `json:"months"`
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current(r.Context())
	if err != nil {
		s.writeGenerationError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Run-ID", snap.runID)
	w.Header().Set("Last-Modified", snap.generatedAt.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snap.body)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current(r.Context())
	if err != nil {
		s.writeGenerationError(w, r, err)
		return
	}
	out := make([]yearEntry, 0, snap.data.Len())
	for _, y := range snap.data.Entries() {
		out = append(out, yearEntry{Year: y.Key, Months: y.Value.Keys()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	year := strings.TrimSpace(r.PathValue("year"))
	if _, err := strconv.Atoi(year); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid year", RequestID: requestIDFromContext(r)})
		return
	}
	month, ok := monthParam(r.PathValue("month"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid month", RequestID: requestIDFromContext(r)})
		return
	}

	snap, err := s.current(r.Context())
	if err != nil {
		s.writeGenerationError(w, r, err)
		return
	}
	months, ok := snap.data.Get(year)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no data for year " + year, RequestID: requestIDFromContext(r)})
		return
	}
	summary, ok := months.Get(month)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no data for " + month + " " + year, RequestID: requestIDFromContext(r)})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded", RequestID: requestIDFromContext(r)})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// writeGenerationError maps a missing source to 404 and anything else to 500.
// Internal details stay in the log.
func (s *Server) writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	reqID := requestIDFromContext(r)

	if core.IsSourceNotFound(err) {
		logger.WarnContext(ctx, "Dashboard source not found", log.FieldError, err)
		writeJSON(w, http.StatusNotFound, errorBody{Error: "source data not found", RequestID: reqID})
		return
	}

	stage := ""
	var pe *core.ProcessingError
	if errors.As(err, &pe) {
		stage = pe.Stage
	}
	logger.ErrorContext(ctx, "Dashboard generation failed", log.FieldStage, stage, log.FieldError, err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "dashboard generation failed", RequestID: reqID})
}
