package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"tablero/internal/core"
	"tablero/internal/middleware/trace"
)

// monthParam accepts a Spanish month name in any case or a month number.
func monthParam(v string) (string, bool) {
	n := core.MonthNumber(strings.TrimSpace(v))
	if n == 0 {
		return "", false
	}
	return core.MonthName(n), true
}

// writeJSON writes v without escaping HTML characters.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func requestIDFromContext(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}
