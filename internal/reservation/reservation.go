package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/property"
)

// Status is the review state of a reservation. A reservation raised by
// staff starts at StatusReserved; one raised by a client starts at
// StatusPending and is reviewed into approved or declined.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReserved Status = "reserved"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

var (
	ErrNotFound                = errors.New("reservation not found")
	ErrAlreadyReviewed         = errors.New("reservation has already been reviewed")
	ErrDuplicateReservation    = errors.New("client already holds a reservation on this property")
	ErrPropertyAlreadyReserved = errors.New("property is already reserved")
	ErrPropertyNotAvailable    = errors.New("property is not available")
	ErrPropertyNotReserved     = errors.New("property is not in a reserved state")
	ErrInvalidCode             = errors.New("invalid reservation code")
	ErrInvalidStatus           = errors.New("invalid reservation status")
)

// Client is the snapshot of the prospective buyer taken when the hold is
// placed. ID is set only when the buyer has an account.
type Client struct {
	ID    *uuid.UUID
	Name  string
	Email string
	Phone string
}

// Reservation is a temporary hold on a property ahead of a sale.
type Reservation struct {
	ID           uuid.UUID
	PropertyID   uuid.UUID
	PropertyType property.Type
	Client       Client
	Code         string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
