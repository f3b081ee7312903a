package sale

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
	"github.com/kelechio/estatecore/internal/sale"
)

type Handler struct {
	svc *sale.Service
}

func NewHandler(svc *sale.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/approve", h.approve)
	r.Patch("/{id}/decline", h.decline)
	r.Post("/{id}/payments", h.recordPayment)
}

type feesRequest struct {
	Facility       int64 `json:"facility"`
	Water          int64 `json:"water"`
	Electricity    int64 `json:"electricity"`
	Supervision    int64 `json:"supervision"`
	Authority      int64 `json:"authority"`
	Other          int64 `json:"other"`
	Infrastructure int64 `json:"infrastructure"`
	Agency         int64 `json:"agency"`
}

func (f feesRequest) toFees() sale.Fees {
	return sale.Fees{
		Facility:       f.Facility,
		Water:          f.Water,
		Electricity:    f.Electricity,
		Supervision:    f.Supervision,
		Authority:      f.Authority,
		Other:          f.Other,
		Infrastructure: f.Infrastructure,
		Agency:         f.Agency,
	}
}

type createSaleRequest struct {
	PropertyID       uuid.UUID     `json:"property_id"`
	PropertyType     property.Type `json:"property_type"`
	ClientID         *uuid.UUID    `json:"client_id,omitempty"`
	ClientName       string        `json:"client_name"`
	ClientEmail      string        `json:"client_email"`
	ClientPhone      string        `json:"client_phone"`
	ClientCompany    string        `json:"client_company"`
	PropertyPrice    int64         `json:"property_price"`
	Fees             feesRequest   `json:"fees"`
	Discount         int64         `json:"discount"`
	RegistrationFees int64         `json:"registration_fees"`
	ReservationCode  string        `json:"reservation_code,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sl, err := h.svc.Create(r.Context(), sale.CreateParams{
		PropertyID:   req.PropertyID,
		PropertyType: req.PropertyType,
		Client: sale.Client{
			ID:      req.ClientID,
			Name:    req.ClientName,
			Email:   req.ClientEmail,
			Phone:   req.ClientPhone,
			Company: req.ClientCompany,
		},
		PropertyPrice:    req.PropertyPrice,
		Fees:             req.Fees.toFees(),
		Discount:         req.Discount,
		RegistrationFees: req.RegistrationFees,
		ReservationCode:  req.ReservationCode,
	}, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "sale created", toResponse(sl))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := sale.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := sale.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("payment_status"); s != "" {
		status := sale.PaymentStatus(s)
		filter.PaymentStatus = &status
	}

	sales, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "sales listed", toResponseList(sales))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	sl, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "sale found", toResponse(sl))
}

type approveSaleRequest struct {
	Fees             *feesRequest `json:"fees,omitempty"`
	Discount         *int64       `json:"discount,omitempty"`
	RegistrationFees *int64       `json:"registration_fees,omitempty"`
	PaidAmount       *int64       `json:"paid_amount,omitempty"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
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

	var req approveSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := sale.ApprovalParams{
		Discount:         req.Discount,
		RegistrationFees: req.RegistrationFees,
		PaidAmount:       req.PaidAmount,
	}

	if req.Fees != nil {
		fees := req.Fees.toFees()
		params.Fees = &fees
	}

	sl, err := h.svc.Approve(r.Context(), id, params, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "sale approved", toResponse(sl))
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request) {
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

	sl, err := h.svc.Decline(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "sale declined", toResponse(sl))
}

type paymentRequest struct {
	Amount    int64              `json:"amount"`
	Target    sale.PaymentTarget `json:"target"`
	Method    string             `json:"method"`
	Reference string             `json:"reference"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
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

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sl, err := h.svc.RecordPayment(r.Context(), id, sale.PaymentParams{
		Amount:    req.Amount,
		Target:    req.Target,
		Method:    req.Method,
		Reference: req.Reference,
	}, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, "payment recorded", toResponse(sl))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrPermissionDenied):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, sale.ErrNotFound), errors.Is(err, property.ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sale.ErrNotPending),
		errors.Is(err, sale.ErrNotApproved),
		errors.Is(err, sale.ErrInvalidAmount),
		errors.Is(err, sale.ErrInvalidTarget),
		errors.Is(err, sale.ErrPaymentExceedsPayable),
		errors.Is(err, sale.ErrReservationMismatch),
		errors.Is(err, sale.ErrReservationNotApproved),
		errors.Is(err, sale.ErrMissingPrice),
		errors.Is(err, sale.ErrPropertyNotAvailable),
		errors.Is(err, sale.ErrHoldMismatch),
		errors.Is(err, reservation.ErrInvalidCode):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Internal(w, err)
	}
}
