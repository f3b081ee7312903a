package letter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/http/respond"
	"github.com/kelechio/estatecore/internal/letter"
	"github.com/kelechio/estatecore/internal/sale"
)

type Handler struct {
	svc *letter.Service
}

func NewHandler(svc *letter.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the same handler shape for offers and allocations; the
// kind is fixed per mount point.
func (h *Handler) Routes(kind letter.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", h.issue(kind))
		r.Get("/{id}", h.get(kind))
		r.Get("/sale/{saleID}", h.getBySale(kind))
		r.Patch("/{id}/status", h.changeStatus(kind))
		r.Delete("/{id}", h.delete(kind))
	}
}

type issueRequest struct {
	SaleID  uuid.UUID `json:"sale_id"`
	FileURL string    `json:"file_url"`
}

func (h *Handler) issue(kind letter.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFromContext(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req issueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		l, err := h.svc.Issue(r.Context(), kind, req.SaleID, req.FileURL, actor)
		if err != nil {
			h.writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, "letter issued", toResponse(l))
	}
}

func (h *Handler) get(kind letter.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid id")
			return
		}

		l, err := h.svc.Get(r.Context(), kind, id)
		if err != nil {
			h.writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, "letter found", toResponse(l))
	}
}

func (h *Handler) getBySale(kind letter.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := uuid.Parse(chi.URLParam(r, "saleID"))
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid sale id")
			return
		}

		l, err := h.svc.GetBySale(r.Context(), kind, saleID)
		if err != nil {
			h.writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, "letter found", toResponse(l))
	}
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) changeStatus(kind letter.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		l, err := h.svc.ChangeStatus(r.Context(), kind, id, req.Status, actor)
		if err != nil {
			h.writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, "letter status updated", toResponse(l))
	}
}

func (h *Handler) delete(kind letter.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		if err := h.svc.Delete(r.Context(), kind, id, actor); err != nil {
			h.writeError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, "letter deleted", nil)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrPermissionDenied):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, letter.ErrNotFound), errors.Is(err, sale.ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, letter.ErrSalePending), errors.Is(err, letter.ErrInvalidStatus):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Internal(w, err)
	}
}

type letterResponse struct {
	ID        uuid.UUID     `json:"id"`
	Kind      letter.Kind   `json:"kind"`
	SaleID    uuid.UUID     `json:"sale_id"`
	HouseID   *uuid.UUID    `json:"house_id,omitempty"`
	PlotID    *uuid.UUID    `json:"plot_id,omitempty"`
	Number    string        `json:"number"`
	FileURL   string        `json:"file_url"`
	Status    letter.Status `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

func toResponse(l *letter.Letter) letterResponse {
	return letterResponse{
		ID:        l.ID,
		Kind:      l.Kind,
		SaleID:    l.SaleID,
		HouseID:   l.HouseID,
		PlotID:    l.PlotID,
		Number:    l.Number,
		FileURL:   l.FileURL,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
