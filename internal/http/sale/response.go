package sale

import (
	"time"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/property"
	"github.com/kelechio/estatecore/internal/sale"
)

type feesResponse struct {
	Facility       int64 `json:"facility"`
	Water          int64 `json:"water"`
	Electricity    int64 `json:"electricity"`
	Supervision    int64 `json:"supervision"`
	Authority      int64 `json:"authority"`
	Other          int64 `json:"other"`
	Infrastructure int64 `json:"infrastructure"`
	Agency         int64 `json:"agency"`
}

func toFeesResponse(f sale.Fees) feesResponse {
	return feesResponse{
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

type saleResponse struct {
	ID                   uuid.UUID          `json:"id"`
	PropertyID           uuid.UUID          `json:"property_id"`
	PropertyType         property.Type      `json:"property_type"`
	ClientName           string             `json:"client_name"`
	ClientEmail          string             `json:"client_email"`
	ClientPhone          string             `json:"client_phone"`
	ClientCompany        string             `json:"client_company,omitempty"`
	PropertyPrice        int64              `json:"property_price"`
	Fees                 feesResponse       `json:"fees"`
	FeesPaid             feesResponse       `json:"fees_paid"`
	Discount             int64              `json:"discount"`
	PaidAmount           int64              `json:"paid_amount"`
	TotalPayable         int64              `json:"total_payable"`
	RegistrationFees     int64              `json:"registration_fees"`
	RegistrationFeesPaid bool               `json:"registration_fees_paid"`
	Status               sale.Status        `json:"status"`
	PaymentStatus        sale.PaymentStatus `json:"payment_status"`
	OfferStatus          sale.MirrorStatus  `json:"offer_status"`
	AllocationStatus     sale.MirrorStatus  `json:"allocation_status"`
	ReservationID        *uuid.UUID         `json:"reservation_id,omitempty"`
	OfferID              *uuid.UUID         `json:"offer_id,omitempty"`
	AllocationID         *uuid.UUID         `json:"allocation_id,omitempty"`
	PaymentPlanID        *uuid.UUID         `json:"payment_plan_id,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(sl *sale.Sale) saleResponse {
	return saleResponse{
		ID:                   sl.ID,
		PropertyID:           sl.PropertyID,
		PropertyType:         sl.PropertyType,
		ClientName:           sl.Client.Name,
		ClientEmail:          sl.Client.Email,
		ClientPhone:          sl.Client.Phone,
		ClientCompany:        sl.Client.Company,
		PropertyPrice:        sl.PropertyPrice,
		Fees:                 toFeesResponse(sl.Fees),
		FeesPaid:             toFeesResponse(sl.FeesPaid),
		Discount:             sl.Discount,
		PaidAmount:           sl.PaidAmount,
		TotalPayable:         sl.TotalPayable,
		RegistrationFees:     sl.RegistrationFees,
		RegistrationFeesPaid: sl.RegistrationFeesPaid,
		Status:               sl.Status,
		PaymentStatus:        sl.PaymentStatus,
		OfferStatus:          sl.OfferStatus,
		AllocationStatus:     sl.AllocationStatus,
		ReservationID:        sl.ReservationID,
		OfferID:              sl.OfferID,
		AllocationID:         sl.AllocationID,
		PaymentPlanID:        sl.PaymentPlanID,
		CreatedAt:            sl.CreatedAt,
		UpdatedAt:            sl.UpdatedAt,
	}
}

func toResponseList(sales []*sale.Sale) []saleResponse {
	resp := make([]saleResponse, len(sales))
	for i, sl := range sales {
		resp[i] = toResponse(sl)
	}

	return resp
}
