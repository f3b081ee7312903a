package paymentplan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Frequency is the installment cadence of a plan.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyCustom    Frequency = "custom"
)

// Status is the plan lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound          = errors.New("payment plan not found")
	ErrInvalidFrequency  = errors.New("invalid payment frequency")
	ErrInvalidCycles     = errors.New("total cycles must be positive")
	ErrInvalidAmount     = errors.New("amount per cycle must be positive")
	ErrPlanNotActive     = errors.New("payment plan is not active")
	ErrMissingCustomDate = errors.New("custom frequency requires a custom date")
)

// Plan is an installment schedule attached to one sale.
type Plan struct {
	ID              uuid.UUID
	SaleID          uuid.UUID
	Frequency       Frequency
	AmountPerCycle  int64
	TotalCycles     int
	CyclesCompleted int
	TotalAmount     int64
	NextPaymentDate time.Time
	CustomDate      *time.Time
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// NextDate advances from one payment date by a single frequency unit.
// Custom plans jump to the explicit custom date instead of a computed
// interval.
func NextDate(from time.Time, f Frequency, custom *time.Time) (time.Time, error) {
	switch f {
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0), nil
	case FrequencyYearly:
		return from.AddDate(1, 0, 0), nil
	case FrequencyCustom:
		if custom == nil {
			return time.Time{}, ErrMissingCustomDate
		}

		return *custom, nil
	}

	return time.Time{}, ErrInvalidFrequency
}

// RecordCycle marks one installment paid. The plan completes exactly when
// the final cycle is recorded; a completed or cancelled plan rejects
// further cycles.
func (p *Plan) RecordCycle() error {
	if p.Status != StatusActive {
		return ErrPlanNotActive
	}

	p.CyclesCompleted++

	if p.CyclesCompleted >= p.TotalCycles {
		p.Status = StatusCompleted
		return nil
	}

	next, err := NextDate(p.NextPaymentDate, p.Frequency, p.CustomDate)
	if err != nil {
		return err
	}

	p.NextPaymentDate = next

	return nil
}
