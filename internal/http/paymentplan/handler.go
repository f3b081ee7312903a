package paymentplan

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/http/respond"
	"github.com/kelechio/estatecore/internal/paymentplan"
	"github.com/kelechio/estatecore/internal/sale"
)

type Handler struct {
	svc *paymentplan.Service
}

func NewHandler(svc *paymentplan.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/cycles", h.recordCycle)
	r.Patch("/{id}/cancel", h.cancel)
}

type createPlanRequest struct {
	SaleID         uuid.UUID             `json:"sale_id"`
	Frequency      paymentplan.Frequency `json:"frequency"`
	AmountPerCycle int64                 `json:"amount_per_cycle"`
	TotalCycles    int                   `json:"total_cycles"`
	TotalAmount    int64                 `json:"total_amount,omitempty"`
	StartDate      time.Time             `json:"start_date"`
	CustomDate     *time.Time            `json:"custom_date,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Create(r.Context(), paymentplan.CreateParams{
		SaleID:         req.SaleID,
		Frequency:      req.Frequency,
		AmountPerCycle: req.AmountPerCycle,
		TotalCycles:    req.TotalCycles,
		TotalAmount:    req.TotalAmount,
		StartDate:      req.StartDate,
		CustomDate:     req.CustomDate,
	}, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "payment plan created", toResponse(p))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "payment plan found", toResponse(p))
}

func (h *Handler) recordCycle(w http.ResponseWriter, r *http.Request) {
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

	p, err := h.svc.RecordCycle(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "payment cycle recorded", toResponse(p))
}

type cancelPlanRequest struct {
	Remark string `json:"remark"`
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

	var req cancelPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Cancel(r.Context(), id, req.Remark, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "payment plan cancelled", toResponse(p))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrPermissionDenied):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, paymentplan.ErrNotFound), errors.Is(err, sale.ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, paymentplan.ErrInvalidFrequency),
		errors.Is(err, paymentplan.ErrInvalidCycles),
		errors.Is(err, paymentplan.ErrInvalidAmount),
		errors.Is(err, paymentplan.ErrPlanNotActive),
		errors.Is(err, paymentplan.ErrMissingCustomDate),
		errors.Is(err, sale.ErrNotApproved):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Internal(w, err)
	}
}

type planResponse struct {
	ID              uuid.UUID             `json:"id"`
	SaleID          uuid.UUID             `json:"sale_id"`
	Frequency       paymentplan.Frequency `json:"frequency"`
	AmountPerCycle  int64                 `json:"amount_per_cycle"`
	TotalCycles     int                   `json:"total_cycles"`
	CyclesCompleted int                   `json:"cycles_completed"`
	TotalAmount     int64                 `json:"total_amount"`
	NextPaymentDate time.Time             `json:"next_payment_date"`
	CustomDate      *time.Time            `json:"custom_date,omitempty"`
	Status          paymentplan.Status    `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       *time.Time            `json:"updated_at,omitempty"`
}

func toResponse(p *paymentplan.Plan) planResponse {
	return planResponse{
		ID:              p.ID,
		SaleID:          p.SaleID,
		Frequency:       p.Frequency,
		AmountPerCycle:  p.AmountPerCycle,
		TotalCycles:     p.TotalCycles,
		CyclesCompleted: p.CyclesCompleted,
		TotalAmount:     p.TotalAmount,
		NextPaymentDate: p.NextPaymentDate,
		CustomDate:      p.CustomDate,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
