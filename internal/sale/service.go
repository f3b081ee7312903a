package sale

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/notify"
	"github.com/kelechio/estatecore/internal/property"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale
type Repository interface {
	CreateSale(ctx context.Context, s *Sale, entry history.Entry) error
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]*Sale, error)
	ReviewSale(ctx context.Context, s *Sale, entry history.Entry) error
	RecordPayment(ctx context.Context, id uuid.UUID, amount int64, target PaymentTarget, entry history.Entry) (*Sale, error)
}

// ReservationRef is the slice of a reservation the sale workflow needs to
// bind a sale to an existing hold.
type ReservationRef struct {
	ID           uuid.UUID
	PropertyID   uuid.UUID
	PropertyType property.Type
	Status       string
}

// Reservations resolves a human-facing reservation code to its hold.
type Reservations interface {
	Validate(ctx context.Context, propertyID uuid.UUID, t property.Type, code string) (*ReservationRef, error)
}

type Service struct {
	repo         Repository
	reservations Reservations
	dispatcher   notify.Dispatcher
}

func NewService(repo Repository, reservations Reservations, dispatcher notify.Dispatcher) *Service {
	return &Service{repo: repo, reservations: reservations, dispatcher: dispatcher}
}

type CreateParams struct {
	PropertyID       uuid.UUID
	PropertyType     property.Type
	Client           Client
	PropertyPrice    int64
	Fees             Fees
	Discount         int64
	RegistrationFees int64
	ReservationCode  string
}

type ListFilter struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

// Create opens a pending sale. With a reservation code the sale binds to
// the existing hold; without one it is a direct sale and the repository
// flips the property from available to a sale-held state in the same
// transaction as the insert.
func (s *Service) Create(ctx context.Context, params CreateParams, actor auth.Actor) (*Sale, error) {
	if !auth.CanPerform(actor, auth.OpCreateSale) {
		return nil, auth.ErrPermissionDenied
	}

	if params.PropertyPrice <= 0 {
		return nil, ErrMissingPrice
	}

	sl := &Sale{
		ID:               uuid.New(),
		PropertyID:       params.PropertyID,
		PropertyType:     params.PropertyType,
		Client:           params.Client,
		PropertyPrice:    params.PropertyPrice,
		Fees:             params.Fees,
		Discount:         params.Discount,
		RegistrationFees: params.RegistrationFees,
		TotalPayable:     ComputeTotalPayable(params.PropertyPrice, params.Fees, params.Discount),
		Status:           StatusPending,
		PaymentStatus:    PaymentUnpaid,
		OfferStatus:      MirrorPending,
		AllocationStatus: MirrorPending,
	}

	if params.ReservationCode != "" {
		res, err := s.reservations.Validate(ctx, params.PropertyID, params.PropertyType, params.ReservationCode)
		if err != nil {
			return nil, fmt.Errorf("resolving reservation code: %w", err)
		}

		if res.PropertyID != params.PropertyID || res.PropertyType != params.PropertyType {
			return nil, ErrReservationMismatch
		}

		if res.Status != "approved" && res.Status != "reserved" {
			return nil, ErrReservationNotApproved
		}

		sl.ReservationID = &res.ID
	}

	entry := history.Entry{
		EntityType: history.EntitySale,
		EntityID:   sl.ID,
		Action:     history.ActionCreated,
		Changes: map[string]any{
			"property_id":   sl.PropertyID.String(),
			"total_payable": sl.TotalPayable,
			"status":        string(sl.Status),
		},
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}

	if err := s.repo.CreateSale(ctx, sl, entry); err != nil {
		return nil, fmt.Errorf("creating sale: %w", err)
	}

	s.dispatch(ctx, notify.Notification{
		To:       sl.Client.Email,
		Subject:  "Sale application received",
		Body:     fmt.Sprintf("Dear %s, your sale application has been received and is awaiting approval.", sl.Client.Name),
		Category: notify.CategorySale,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return sl, nil
}

// ApprovalParams carries the fee overrides supplied at approval time.
// Nil fields keep the values recorded at creation.
type ApprovalParams struct {
	Fees             *Fees
	Discount         *int64
	RegistrationFees *int64
	PaidAmount       *int64
}

// Approve moves a pending sale to approved, recomputes the payable total
// from any overrides and marks the property sold.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, params ApprovalParams, actor auth.Actor) (*Sale, error) {
	if !auth.CanPerform(actor, auth.OpApproveSale) {
		return nil, auth.ErrPermissionDenied
	}

	sl, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale: %w", err)
	}

	if sl.Status != StatusPending {
		return nil, ErrNotPending
	}

	if params.Fees != nil {
		sl.Fees = *params.Fees
	}

	if params.Discount != nil {
		sl.Discount = *params.Discount
	}

	if params.RegistrationFees != nil {
		sl.RegistrationFees = *params.RegistrationFees
	}

	sl.TotalPayable = ComputeTotalPayable(sl.PropertyPrice, sl.Fees, sl.Discount)

	if params.PaidAmount != nil {
		if *params.PaidAmount > sl.TotalPayable {
			return nil, ErrPaymentExceedsPayable
		}

		sl.PaidAmount = *params.PaidAmount
	}

	sl.Status = StatusApproved
	sl.RecomputePaymentStatus()

	entry := history.Entry{
		EntityType: history.EntitySale,
		EntityID:   sl.ID,
		Action:     history.ActionApproved,
		Changes: map[string]any{
			"status":        string(StatusApproved),
			"total_payable": sl.TotalPayable,
			"paid_amount":   sl.PaidAmount,
		},
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}

	if err := s.repo.ReviewSale(ctx, sl, entry); err != nil {
		return nil, fmt.Errorf("approving sale: %w", err)
	}

	s.dispatch(ctx, notify.Notification{
		To:       sl.Client.Email,
		Subject:  "Sale approved",
		Body:     fmt.Sprintf("Dear %s, congratulations! Your property purchase has been approved.", sl.Client.Name),
		Category: notify.CategorySale,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return sl, nil
}

// Decline moves a pending sale to declined and releases any hold the sale
// itself placed on the property.
func (s *Service) Decline(ctx context.Context, id uuid.UUID, actor auth.Actor) (*Sale, error) {
	if !auth.CanPerform(actor, auth.OpApproveSale) {
		return nil, auth.ErrPermissionDenied
	}

	sl, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale: %w", err)
	}

	if sl.Status != StatusPending {
		return nil, ErrNotPending
	}

	sl.Status = StatusDeclined

	entry := history.Entry{
		EntityType: history.EntitySale,
		EntityID:   sl.ID,
		Action:     history.ActionDeclined,
		Changes:    map[string]any{"status": string(StatusDeclined)},
		ActorID:    actor.ID,
		ActorName:  actor.Name,
	}

	if err := s.repo.ReviewSale(ctx, sl, entry); err != nil {
		return nil, fmt.Errorf("declining sale: %w", err)
	}

	s.dispatch(ctx, notify.Notification{
		To:       sl.Client.Email,
		Subject:  "Sale declined",
		Body:     fmt.Sprintf("Dear %s, your sale application was declined. Please contact our sales team for assistance.", sl.Client.Name),
		Category: notify.CategorySale,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return sl, nil
}

type PaymentParams struct {
	Amount    int64
	Target    PaymentTarget
	Method    string
	Reference string
}

// RecordPayment applies a payment to the selected bucket and recomputes
// the payment sub-state. The read-modify-write happens under the
// repository's row lock.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, params PaymentParams, actor auth.Actor) (*Sale, error) {
	if !auth.CanPerform(actor, auth.OpRecordSalePayment) {
		return nil, auth.ErrPermissionDenied
	}

	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := history.Entry{
		EntityType: history.EntitySale,
		EntityID:   id,
		Action:     history.ActionPayment,
		Changes: map[string]any{
			"amount":    params.Amount,
			"target":    string(params.Target),
			"method":    params.Method,
			"reference": params.Reference,
		},
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}

	sl, err := s.repo.RecordPayment(ctx, id, params.Amount, params.Target, entry)
	if err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	s.dispatch(ctx, notify.Notification{
		To:       sl.Client.Email,
		Subject:  "Payment received",
		Body:     fmt.Sprintf("Dear %s, we have received your payment. Your payment status is now %s.", sl.Client.Name, sl.PaymentStatus),
		Category: notify.CategorySale,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return sl, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, filter)
}

func (s *Service) dispatch(ctx context.Context, n notify.Notification) {
	if err := s.dispatcher.Publish(ctx, n); err != nil {
		slog.Error("failed to publish sale notification", "to", n.To, "error", err)
	}
}
