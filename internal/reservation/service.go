package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/notify"
	"github.com/kelechio/estatecore/internal/property"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reservation
type Repository interface {
	CreateHold(ctx context.Context, res *Reservation, entry history.Entry) error
	GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetByCode(ctx context.Context, propertyID uuid.UUID, t property.Type, code string) (*Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, entry history.Entry) error
	CancelHold(ctx context.Context, id uuid.UUID, entry history.Entry) (*Reservation, error)
}

type Service struct {
	repo       Repository
	registry   property.Registry
	dispatcher notify.Dispatcher
}

func NewService(repo Repository, registry property.Registry, dispatcher notify.Dispatcher) *Service {
	return &Service{repo: repo, registry: registry, dispatcher: dispatcher}
}

type ReserveParams struct {
	PropertyID   uuid.UUID
	PropertyType property.Type
	Client       Client
}

// Reserve places a hold on an available property. The availability check,
// the reservation insert and the registry update commit as one unit in the
// repository; two concurrent holds on the same unit yield one success.
func (s *Service) Reserve(ctx context.Context, params ReserveParams, actor auth.Actor) (*Reservation, error) {
	if !auth.CanPerform(actor, auth.OpReserveProperty) {
		return nil, auth.ErrPermissionDenied
	}

	status := StatusPending
	if actor.IsStaff() {
		status = StatusReserved
	}

	res := &Reservation{
		ID:           uuid.New(),
		PropertyID:   params.PropertyID,
		PropertyType: params.PropertyType,
		Client:       params.Client,
		Code:         generateCode(),
		Status:       status,
	}

	entry := history.Entry{
		EntityType: history.EntityReservation,
		EntityID:   res.ID,
		Action:     history.ActionCreated,
		Changes: map[string]any{
			"property_id": res.PropertyID.String(),
			"status":      string(res.Status),
		},
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}

	if err := s.repo.CreateHold(ctx, res, entry); err != nil {
		return nil, fmt.Errorf("creating reservation hold: %w", err)
	}

	subject := "Reservation under review"
	body := fmt.Sprintf("Dear %s, your reservation request (code %s) has been received and is under review.", res.Client.Name, res.Code)

	if res.Status == StatusReserved {
		subject = "Reservation confirmed"
		body = fmt.Sprintf("Dear %s, your reservation is confirmed. Your reservation code is %s.", res.Client.Name, res.Code)
	}

	s.dispatch(ctx, notify.Notification{
		To:       res.Client.Email,
		Subject:  subject,
		Body:     body,
		Category: notify.CategoryReservation,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return res, nil
}

// ChangeStatus moves a pending reservation to approved or declined.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, target Status, actor auth.Actor) (*Reservation, error) {
	if !auth.CanPerform(actor, auth.OpReviewReservation) {
		return nil, auth.ErrPermissionDenied
	}

	if target != StatusApproved && target != StatusDeclined {
		return nil, ErrInvalidStatus
	}

	res, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting reservation: %w", err)
	}

	if res.Status != StatusPending {
		return nil, ErrAlreadyReviewed
	}

	action := history.ActionApproved
	if target == StatusDeclined {
		action = history.ActionDeclined
	}

	entry := history.Entry{
		EntityType: history.EntityReservation,
		EntityID:   res.ID,
		Action:     action,
		Changes: map[string]any{
			"status": map[string]string{"from": string(res.Status), "to": string(target)},
		},
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}

	if err := s.repo.UpdateStatus(ctx, id, target, entry); err != nil {
		return nil, fmt.Errorf("updating reservation status: %w", err)
	}

	res.Status = target

	label := "the property"
	if p, err := s.registry.GetByID(ctx, res.PropertyID, res.PropertyType); err == nil {
		label = p.Label()
	}

	subject := fmt.Sprintf("Reservation %s", target)

	body := fmt.Sprintf("Dear %s, your reservation for %s has been approved. Your reservation code is %s.", res.Client.Name, label, res.Code)
	if target == StatusDeclined {
		body = fmt.Sprintf("Dear %s, your reservation for %s has been declined. Please contact our sales team for assistance.", res.Client.Name, label)
	}

	s.dispatch(ctx, notify.Notification{
		To:       res.Client.Email,
		Subject:  subject,
		Body:     body,
		Category: notify.CategoryReservation,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return res, nil
}

// Cancel releases the held property back to available and removes the
// reservation.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	if !auth.CanPerform(actor, auth.OpCancelReservation) {
		return auth.ErrPermissionDenied
	}

	entry := history.Entry{
		EntityType: history.EntityReservation,
		EntityID:   id,
		Action:     history.ActionCancelled,
		Changes:    map[string]any{"cancelled": true},
		ActorID:    actor.ID,
		ActorName:  actor.Name,
	}

	res, err := s.repo.CancelHold(ctx, id, entry)
	if err != nil {
		return fmt.Errorf("cancelling reservation: %w", err)
	}

	s.dispatch(ctx, notify.Notification{
		To:       res.Client.Email,
		Subject:  "Reservation cancelled",
		Body:     fmt.Sprintf("Dear %s, your reservation (code %s) has been cancelled and the property released.", res.Client.Name, res.Code),
		Category: notify.CategoryReservation,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return nil
}

// Validate looks a reservation up by its property and human-facing code.
func (s *Service) Validate(ctx context.Context, propertyID uuid.UUID, t property.Type, code string) (*Reservation, error) {
	res, err := s.repo.GetByCode(ctx, propertyID, t, code)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Get returns one reservation by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

// dispatch publishes best-effort; a delivery failure never surfaces to the
// caller because the state change has already committed.
func (s *Service) dispatch(ctx context.Context, n notify.Notification) {
	if err := s.dispatcher.Publish(ctx, n); err != nil {
		slog.Error("failed to publish reservation notification", "to", n.To, "error", err)
	}
}

func generateCode() string {
	return fmt.Sprintf("%06d", rand.IntN(1_000_000))
}
