// Package property is the engine's surface onto the property registry:
// the availability status of every sellable unit and the reservation or
// sale currently holding it.
package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type distinguishes the two kinds of sellable unit.
type Type string

const (
	TypeHouse Type = "house"
	TypePlot  Type = "plot"
)

// Status is the registry availability state of a unit.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusReserved    Status = "reserved"
	StatusSold        Status = "sold"
	StatusUnavailable Status = "unavailable"
)

var (
	ErrNotFound = errors.New("property not found")
	ErrConflict = errors.New("property status conflict")
)

// Property is one sellable unit. At most one non-terminal reservation or
// sale may hold it; HoldReservationID/HoldSaleID record which.
type Property struct {
	ID                uuid.UUID
	Type              Type
	Block             string
	UnitNumber        string
	Price             int64 // minor currency units
	Status            Status
	HoldReservationID *uuid.UUID
	HoldSaleID        *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// Label renders the human-readable unit name used in client notifications.
func (p *Property) Label() string {
	kind := "House"
	if p.Type == TypePlot {
		kind = "Plot"
	}

	return fmt.Sprintf("%s %s, Block %s", kind, p.UnitNumber, p.Block)
}

// Registry is the external collaborator holding unit availability.
type Registry interface {
	GetByID(ctx context.Context, id uuid.UUID, t Type) (*Property, error)
	SetStatus(ctx context.Context, id uuid.UUID, t Type, status Status) error
}
