// Package handler exposes the bike CRUD endpoints. All routes require a
// session; the owner email comes from the session context.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authhandler "velofit/internal/auth/handler"
	"velofit/internal/bike/models"
	bikeservice "velofit/internal/bike/service"
	httpjson "velofit/internal/transport/http/json"
	"velofit/internal/transport/http/shared"
	dErrors "velofit/pkg/domain-errors"
)

// Handler serves /api/bikes.
type Handler struct {
	bikes *bikeservice.Service
}

// New constructs the bike handler.
func New(bikes *bikeservice.Service) *Handler {
	return &Handler{bikes: bikes}
}

// Register mounts bike routes on the given (already session-guarded) router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/bikes", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{bikeID}", h.handleGet)
		r.Put("/{bikeID}", h.handleUpdate)
		r.Delete("/{bikeID}", h.handleDelete)
	})
}

type bikeRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	StackMM        int    `json:"stack_mm"`
	ReachMM        int    `json:"reach_mm"`
	SaddleHeightMM int    `json:"saddle_height_mm"`
}

type bikeResponse struct {
	models.Bike
	Fit models.FitSummary `json:"fit"`
}

func toResponse(b *models.Bike) bikeResponse {
	return bikeResponse{Bike: *b, Fit: b.Fit()}
}

func (h *Handler) decodeInput(r *http.Request) (bikeservice.CreateInput, error) {
	var req bikeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		return bikeservice.CreateInput{}, dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		return bikeservice.CreateInput{}, dErrors.New(dErrors.CodeValidation, "unknown bike kind")
	}
	return bikeservice.CreateInput{
		Name:           req.Name,
		Kind:           kind,
		StackMM:        req.StackMM,
		ReachMM:        req.ReachMM,
		SaddleHeightMM: req.SaddleHeightMM,
	}, nil
}

func bikeID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "bikeID"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid bike id")
	}
	return id, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	owner := authhandler.SessionEmail(r.Context())
	bikes, err := h.bikes.List(r.Context(), owner)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]bikeResponse, 0, len(bikes))
	for i := range bikes {
		out = append(out, toResponse(&bikes[i]))
	}
	httpjson.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner := authhandler.SessionEmail(r.Context())
	in, err := h.decodeInput(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	bike, err := h.bikes.Create(r.Context(), owner, in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, toResponse(bike))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	owner := authhandler.SessionEmail(r.Context())
	id, err := bikeID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	bike, err := h.bikes.Get(r.Context(), owner, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, toResponse(bike))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	owner := authhandler.SessionEmail(r.Context())
	id, err := bikeID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	in, err := h.decodeInput(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	bike, err := h.bikes.Update(r.Context(), owner, id, in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, toResponse(bike))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner := authhandler.SessionEmail(r.Context())
	id, err := bikeID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.bikes.Delete(r.Context(), owner, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
