// Package ingest exposes the push entry point: origin systems POST
// authorization requests here instead of waiting for the poll cycle. The
// path shares validation and dedup with the dispatcher via the submit
// fan-in.
package ingest

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viant/grantly/model/authreq"
	"github.com/viant/grantly/model/task"
	"github.com/viant/grantly/service/schema"
	"github.com/viant/grantly/service/submit"
	"github.com/viant/grantly/tracing"
)

// Handler serves the inbound webhook surface.
type Handler struct {
	token     string
	submitter *submit.Service
}

// NewHandler creates a webhook handler authenticating callers against the
// supplied bearer token.
func NewHandler(token string, submitter *submit.Service) *Handler {
	return &Handler{token: token, submitter: submitter}
}

// NewRouter wires the webhook routes.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Use(handler.authenticate)
		r.Post("/authorizations", handler.createAuthorization)
	})
	return r
}

// authenticate rejects callers without the shared bearer credential.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix ||
			subtle.ConstantTimeCompare([]byte(header[len(prefix):]), []byte(h.token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// createAuthorization validates the payload and funnels it into the shared
// submit path. A duplicate in flight is success without action; any non-2xx
// means not delivered and the caller may retry safely.
func (h *Handler) createAuthorization(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "ingest.createAuthorization", "SERVER")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	var raw map[string]interface{}
	if err = json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": []string{"body must be a JSON object"}})
		return
	}
	payload, violations := schema.Validate(task.KindAccessAuthorization, raw)
	if len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": violations})
		return
	}

	dispatched, err := h.submitter.Submit(ctx, payload, authreq.OriginWebhook, "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "delivery failed"})
		return
	}
	status := "dispatched"
	if !dispatched {
		status = "duplicate"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
