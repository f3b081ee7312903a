package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/property"
	"github.com/kelechio/estatecore/internal/reservation"
)

type reservationResponse struct {
	ID           uuid.UUID          `json:"id"`
	PropertyID   uuid.UUID          `json:"property_id"`
	PropertyType property.Type      `json:"property_type"`
	ClientName   string             `json:"client_name"`
	ClientEmail  string             `json:"client_email"`
	ClientPhone  string             `json:"client_phone"`
	Code         string             `json:"code"`
	Status       reservation.Status `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(res *reservation.Reservation) reservationResponse {
	return reservationResponse{
		ID:           res.ID,
		PropertyID:   res.PropertyID,
		PropertyType: res.PropertyType,
		ClientName:   res.Client.Name,
		ClientEmail:  res.Client.Email,
		ClientPhone:  res.Client.Phone,
		Code:         res.Code,
		Status:       res.Status,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
	}
}
