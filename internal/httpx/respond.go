package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/nava-store/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrOutOfStock, http.StatusConflict},
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

// StatusOf memetakan taksonomi error domain ke status HTTP.
func StatusOf(err error) int {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return http.StatusInternalServerError
}

// message: pesan wrap tanpa suffix sentinel. 5xx tidak membocorkan detail.
func message(err error, code int) string {
	switch code {
	case http.StatusInternalServerError:
		return "internal error"
	case http.StatusServiceUnavailable:
		return "storage unavailable"
	}
	for _, s := range statusBySentinel {
		if s.code == code {
			msg := strings.TrimSuffix(err.Error(), ": "+s.err.Error())
			if msg == "" {
				return s.err.Error()
			}
			return msg
		}
	}
	return err.Error()
}

// WriteError menulis {"error": "..."} dengan status dari StatusOf.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusOf(err)
	if code >= 500 {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", code,
			"request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeJSON(w, code, map[string]string{"error": message(err, code)})
}
