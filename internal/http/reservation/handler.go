package reservation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/http/respond"
	"github.com/kelechio/estatecore/internal/property"
	"github.com/kelechio/estatecore/internal/reservation"
)

type Handler struct {
	svc *reservation.Service
}

func NewHandler(svc *reservation.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.reserve)
	r.Post("/validate", h.validate)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.changeStatus)
	r.Delete("/{id}", h.cancel)
}

type clientRequest struct {
	ID    *uuid.UUID `json:"id,omitempty"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Phone string     `json:"phone"`
}

type reserveRequest struct {
	PropertyID   uuid.UUID     `json:"property_id"`
	PropertyType property.Type `json:"property_type"`
	Client       clientRequest `json:"client"`
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Reserve(r.Context(), reservation.ReserveParams{
		PropertyID:   req.PropertyID,
		PropertyType: req.PropertyType,
		Client: reservation.Client{
			ID:    req.Client.ID,
			Name:  req.Client.Name,
			Email: req.Client.Email,
			Phone: req.Client.Phone,
		},
	}, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "reservation created", toResponse(res))
}

type validateRequest struct {
	PropertyID   uuid.UUID     `json:"property_id"`
	PropertyType property.Type `json:"property_type"`
	Code         string        `json:"code"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Validate(r.Context(), req.PropertyID, req.PropertyType, req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "reservation is valid", toResponse(res))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "reservation found", toResponse(res))
}

type changeStatusRequest struct {
	Status reservation.Status `json:"status"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.ChangeStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "reservation status updated", toResponse(res))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Cancel(r.Context(), id, actor); err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "reservation cancelled", nil)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrPermissionDenied):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, reservation.ErrNotFound), errors.Is(err, property.ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, reservation.ErrDuplicateReservation),
		errors.Is(err, reservation.ErrPropertyAlreadyReserved),
		errors.Is(err, reservation.ErrPropertyNotAvailable),
		errors.Is(err, reservation.ErrPropertyNotReserved),
		errors.Is(err, reservation.ErrInvalidCode),
		errors.Is(err, reservation.ErrInvalidStatus),
		errors.Is(err, reservation.ErrAlreadyReviewed):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Internal(w, err)
	}
}
