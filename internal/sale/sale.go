package sale

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/property"
)

// Status is the approval state of a sale. Approved and declined are
// terminal; payment and letter sub-states only advance once approved.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// PaymentStatus tracks the sale's running balance against its payable total.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// MirrorStatus is the sale-side copy of a letter's status. It always
// equals the child offer/allocation status after a successful letter write.
type MirrorStatus string

const (
	MirrorPending   MirrorStatus = "pending"
	MirrorOffered   MirrorStatus = "offered"
	MirrorAllocated MirrorStatus = "allocated"
	MirrorCanceled  MirrorStatus = "canceled"
)

// PaymentTarget selects which bucket a recorded payment lands in.
type PaymentTarget string

const (
	TargetProperty       PaymentTarget = "property"
	TargetFacility       PaymentTarget = "facility"
	TargetWater          PaymentTarget = "water"
	TargetElectricity    PaymentTarget = "electricity"
	TargetSupervision    PaymentTarget = "supervision"
	TargetAuthority      PaymentTarget = "authority"
	TargetOther          PaymentTarget = "other"
	TargetInfrastructure PaymentTarget = "infrastructure"
	TargetAgency         PaymentTarget = "agency"
	TargetRegistration   PaymentTarget = "registration"
)

var (
	ErrNotFound               = errors.New("sale not found")
	ErrNotPending             = errors.New("sale is not in a pending state")
	ErrNotApproved            = errors.New("sale is not approved")
	ErrInvalidAmount          = errors.New("payment amount must be positive")
	ErrInvalidTarget          = errors.New("invalid payment target")
	ErrPaymentExceedsPayable  = errors.New("payment exceeds total payable amount")
	ErrReservationMismatch    = errors.New("reservation does not match the requested property")
	ErrReservationNotApproved = errors.New("reservation is not approved or reserved")
	ErrMissingPrice           = errors.New("property price is required")
	ErrPropertyNotAvailable   = errors.New("property is not available for a direct sale")
	ErrHoldMismatch           = errors.New("property is held by another transaction")
)

// Fees is the set of named charges attached to a sale. The same shape
// doubles as the paid-so-far counterpart.
type Fees struct {
	Facility       int64
	Water          int64
	Electricity    int64
	Supervision    int64
	Authority      int64
	Other          int64
	Infrastructure int64
	Agency         int64
}

// Total sums every named fee.
func (f Fees) Total() int64 {
	return f.Facility + f.Water + f.Electricity + f.Supervision +
		f.Authority + f.Other + f.Infrastructure + f.Agency
}

// Client is the buyer snapshot taken at sale creation.
type Client struct {
	ID      *uuid.UUID
	Name    string
	Email   string
	Phone   string
	Company string
}

// Sale is the priced, fee-bearing transaction record for one property.
type Sale struct {
	ID           uuid.UUID
	PropertyID   uuid.UUID
	PropertyType property.Type
	Client       Client

	PropertyPrice        int64
	Fees                 Fees
	FeesPaid             Fees
	Discount             int64
	PaidAmount           int64
	TotalPayable         int64
	RegistrationFees     int64
	RegistrationFeesPaid bool

	Status           Status
	PaymentStatus    PaymentStatus
	OfferStatus      MirrorStatus
	AllocationStatus MirrorStatus

	ReservationID *uuid.UUID
	OfferID       *uuid.UUID
	AllocationID  *uuid.UUID
	PaymentPlanID *uuid.UUID

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ComputeTotalPayable is the single source of the financial conservation
// invariant: price plus every named fee minus discount. Registration fees
// carry their own paid flag and stay outside the total.
func ComputeTotalPayable(price int64, fees Fees, discount int64) int64 {
	return price + fees.Total() - discount
}

// HoldAgrees reports whether the property's current hold belongs to this
// sale, either directly or through the reservation backing it. A sale may
// only complete while it still holds the unit; a hold placed by anyone
// else means the sale went stale.
func (s *Sale) HoldAgrees(prop *property.Property) bool {
	if prop.HoldSaleID != nil && *prop.HoldSaleID == s.ID {
		return true
	}

	return s.ReservationID != nil && prop.HoldReservationID != nil &&
		*prop.HoldReservationID == *s.ReservationID
}

// RecomputePaymentStatus derives the payment sub-state from the balance.
func (s *Sale) RecomputePaymentStatus() {
	switch {
	case s.PaidAmount <= 0:
		s.PaymentStatus = PaymentUnpaid
	case s.PaidAmount < s.TotalPayable:
		s.PaymentStatus = PaymentPartial
	default:
		s.PaymentStatus = PaymentPaid
	}
}

// ApplyPayment lands amount in the bucket selected by target and updates
// the running balance. It rejects payments on non-approved sales and any
// payment that would push paidAmount past totalPayable.
func (s *Sale) ApplyPayment(amount int64, target PaymentTarget) error {
	if s.Status != StatusApproved {
		return ErrNotApproved
	}

	if amount <= 0 {
		return ErrInvalidAmount
	}

	if target == TargetRegistration {
		s.RegistrationFeesPaid = true
		return nil
	}

	if s.PaidAmount+amount > s.TotalPayable {
		return ErrPaymentExceedsPayable
	}

	switch target {
	case TargetProperty:
		// price payments only move the running balance
	case TargetFacility:
		s.FeesPaid.Facility += amount
	case TargetWater:
		s.FeesPaid.Water += amount
	case TargetElectricity:
		s.FeesPaid.Electricity += amount
	case TargetSupervision:
		s.FeesPaid.Supervision += amount
	case TargetAuthority:
		s.FeesPaid.Authority += amount
	case TargetOther:
		s.FeesPaid.Other += amount
	case TargetInfrastructure:
		s.FeesPaid.Infrastructure += amount
	case TargetAgency:
		s.FeesPaid.Agency += amount
	default:
		return ErrInvalidTarget
	}

	s.PaidAmount += amount
	s.RecomputePaymentStatus()

	return nil
}
