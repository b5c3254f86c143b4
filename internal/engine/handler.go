// HTTP surface for the exchange engine.
//
// All routes expect x-user-id and x-user-role headers forwarded by the
// Gateway, which owns authentication and sessions.
//
// Routes:
//
//	GET  /opportunities                       → filtered listing
//	POST /opportunities                       → create posting
//	GET  /opportunities/{id}                  → posting detail
//	POST /opportunities/{id}/status           → owner posting transition
//	POST /opportunities/{id}/view             → bump view counter
//	GET  /opportunities/{id}/responses        → owner's response list (filterable)
//	GET  /opportunities/{id}/responses/counts → per-status chip counts
//	POST /opportunities/{id}/responses        → submit response
//	POST /responses/{id}/status               → owner response transition (+notes)
//	POST /responses/{id}/notes                → owner notes update
//	GET  /my/responses                        → responses submitted by the actor
package engine

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"skillbridge/exchange-service/internal/filter"
	"skillbridge/exchange-service/internal/model"
)

// Handler adapts the Service to HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all exchange routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/opportunities", h.listOpportunities).Methods(http.MethodGet)
	r.HandleFunc("/opportunities", h.createOpportunity).Methods(http.MethodPost)
	r.HandleFunc("/opportunities/{id}", h.getOpportunity).Methods(http.MethodGet)
	r.HandleFunc("/opportunities/{id}/status", h.transitionOpportunity).Methods(http.MethodPost)
	r.HandleFunc("/opportunities/{id}/view", h.incrementView).Methods(http.MethodPost)
	r.HandleFunc("/opportunities/{id}/responses", h.listResponses).Methods(http.MethodGet)
	r.HandleFunc("/opportunities/{id}/responses", h.createResponse).Methods(http.MethodPost)
	r.HandleFunc("/opportunities/{id}/responses/counts", h.responseCounts).Methods(http.MethodGet)
	r.HandleFunc("/responses/{id}/status", h.transitionResponse).Methods(http.MethodPost)
	r.HandleFunc("/responses/{id}/notes", h.updateNotes).Methods(http.MethodPost)
	r.HandleFunc("/my/responses", h.listMyResponses).Methods(http.MethodGet)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) listOpportunities(w http.ResponseWriter, r *http.Request) {
	c := criteriaFromQuery(r)
	opportunities, err := h.svc.ListOpportunities(r.Context(), c)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, opportunities)
}

func (h *Handler) createOpportunity(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var draft model.Opportunity
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateOpportunity(r.Context(), &draft, actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonCreated(w, created)
}

func (h *Handler) getOpportunity(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetOpportunity(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, o)
}

func (h *Handler) transitionOpportunity(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body struct {
		NewStatus string `json:"newStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
		jsonError(w, "body must contain newStatus", http.StatusBadRequest)
		return
	}
	o, err := h.svc.TransitionOpportunityStatus(r.Context(), mux.Vars(r)["id"], body.NewStatus, actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, o)
}

func (h *Handler) incrementView(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.IncrementViewCount(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handler) listResponses(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	responses, err := h.svc.ListResponses(r.Context(), mux.Vars(r)["id"], criteriaFromQuery(r), actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, responses)
}

func (h *Handler) createResponse(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var draft model.Response
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateResponse(r.Context(), &draft, mux.Vars(r)["id"], actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonCreated(w, created)
}

func (h *Handler) responseCounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	counts, err := h.svc.ResponseCounts(r.Context(), mux.Vars(r)["id"], actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, counts)
}

func (h *Handler) transitionResponse(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body struct {
		NewStatus string  `json:"newStatus"`
		Notes     *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
		jsonError(w, "body must contain newStatus", http.StatusBadRequest)
		return
	}
	resp, err := h.svc.TransitionResponseStatus(r.Context(), mux.Vars(r)["id"], body.NewStatus, body.Notes, actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, resp)
}

func (h *Handler) updateNotes(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	resp, err := h.svc.UpdateResponseNotes(r.Context(), mux.Vars(r)["id"], body.Notes, actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, resp)
}

func (h *Handler) listMyResponses(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	responses, err := h.svc.ListMyResponses(r.Context(), actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	jsonOK(w, responses)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func actorFrom(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	userID := r.Header.Get("x-user-id")
	role := r.Header.Get("x-user-role")
	if userID == "" || role == "" {
		jsonError(w, "missing x-user-id or x-user-role header", http.StatusUnauthorized)
		return model.Actor{}, false
	}
	return model.Actor{ID: userID, Role: model.Role(role)}, true
}

func criteriaFromQuery(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	return filter.Criteria{
		FreeText: q.Get("q"),
		Category: q.Get("category"),
		Exchange: q.Get("type"),
		Urgency:  q.Get("urgency"),
		Location: q.Get("location"),
		Status:   q.Get("status"),
	}
}

// writeEngineError maps tagged engine errors to HTTP statuses. Forbidden is
// a deliberately generic denial.
func writeEngineError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	var sErr *InvalidStatusError
	switch {
	case errors.As(err, &vErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":    "validation failed",
			"messages": vErr.Messages,
		})
	case errors.As(err, &sErr):
		jsonError(w, sErr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		jsonError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicateResponse):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("[exchange] internal error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
