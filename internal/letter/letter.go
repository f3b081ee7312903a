// Package letter covers the two customer letters issued after sale
// approval: the non-binding offer letter and the binding allocation
// letter. The two flows are the same shape, so one package serves both,
// keyed by Kind.
package letter

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes an offer letter from an allocation letter.
type Kind string

const (
	KindOffer      Kind = "offer"
	KindAllocation Kind = "allocation"
)

// Status is the letter's own lifecycle state.
type Status string

const (
	StatusOffered   Status = "offered"
	StatusAllocated Status = "allocated"
	StatusCanceled  Status = "canceled"
)

// ActiveStatus is the status a letter of this kind carries while in force.
func (k Kind) ActiveStatus() Status {
	if k == KindAllocation {
		return StatusAllocated
	}

	return StatusOffered
}

// NumberPrefix is the prefix of generated letter numbers.
func (k Kind) NumberPrefix() string {
	if k == KindAllocation {
		return "AL"
	}

	return "OF"
}

var (
	ErrNotFound      = errors.New("letter not found")
	ErrSalePending   = errors.New("cannot issue a letter for a pending sale")
	ErrInvalidStatus = errors.New("invalid letter status")
)

// Letter is one offer or allocation record, 1:1 with its sale.
type Letter struct {
	ID        uuid.UUID
	Kind      Kind
	SaleID    uuid.UUID
	HouseID   *uuid.UUID
	PlotID    *uuid.UUID
	Number    string
	FileURL   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt *time.Time
}
