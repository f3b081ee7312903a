package paymentplan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/notify"
	"github.com/kelechio/estatecore/internal/sale"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=paymentplan
type Repository interface {
	CreatePlan(ctx context.Context, p *Plan, entry history.Entry) error
	GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error)
	// RecordCycle applies Plan.RecordCycle under the plan row lock.
	RecordCycle(ctx context.Context, id uuid.UUID, entry history.Entry) (*Plan, error)
	CancelPlan(ctx context.Context, id uuid.UUID, entry history.Entry) (*Plan, error)
}

// Sales reads the parent sale for validation and notification snapshots.
type Sales interface {
	Get(ctx context.Context, id uuid.UUID) (*sale.Sale, error)
}

type Service struct {
	repo       Repository
	sales      Sales
	dispatcher notify.Dispatcher
}

func NewService(repo Repository, sales Sales, dispatcher notify.Dispatcher) *Service {
	return &Service{repo: repo, sales: sales, dispatcher: dispatcher}
}

type CreateParams struct {
	SaleID         uuid.UUID
	Frequency      Frequency
	AmountPerCycle int64
	TotalCycles    int
	TotalAmount    int64 // computed from cycles when zero
	StartDate      time.Time
	CustomDate     *time.Time
}

// Create attaches an installment schedule to an approved sale.
func (s *Service) Create(ctx context.Context, params CreateParams, actor auth.Actor) (*Plan, error) {
	if !auth.CanPerform(actor, auth.OpCreatePaymentPlan) {
		return nil, auth.ErrPermissionDenied
	}

	if params.TotalCycles <= 0 {
		return nil, ErrInvalidCycles
	}

	if params.AmountPerCycle <= 0 {
		return nil, ErrInvalidAmount
	}

	sl, err := s.sales.Get(ctx, params.SaleID)
	if err != nil {
		return nil, fmt.Errorf("getting sale: %w", err)
	}

	if sl.Status != sale.StatusApproved {
		return nil, sale.ErrNotApproved
	}

	next, err := NextDate(params.StartDate, params.Frequency, params.CustomDate)
	if err != nil {
		return nil, err
	}

	total := params.TotalAmount
	if total == 0 {
		total = params.AmountPerCycle * int64(params.TotalCycles)
	}

	p := &Plan{
		ID:              uuid.New(),
		SaleID:          params.SaleID,
		Frequency:       params.Frequency,
		AmountPerCycle:  params.AmountPerCycle,
		TotalCycles:     params.TotalCycles,
		TotalAmount:     total,
		NextPaymentDate: next,
		CustomDate:      params.CustomDate,
		Status:          StatusActive,
	}

	entry := history.Entry{
		EntityType: history.EntityPaymentPlan,
		EntityID:   p.ID,
		Action:     history.ActionCreated,
		Changes: map[string]any{
			"sale_id":          p.SaleID.String(),
			"frequency":        string(p.Frequency),
			"total_cycles":     p.TotalCycles,
			"amount_per_cycle": p.AmountPerCycle,
		},
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}

	if err := s.repo.CreatePlan(ctx, p, entry); err != nil {
		return nil, fmt.Errorf("creating payment plan: %w", err)
	}

	s.dispatch(ctx, notify.Notification{
		To:       sl.Client.Email,
		Subject:  "Payment plan created",
		Body:     fmt.Sprintf("Dear %s, a %s payment plan of %d installments has been set up for your purchase.", sl.Client.Name, p.Frequency, p.TotalCycles),
		Category: notify.CategoryPaymentPlan,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	})

	return p, nil
}

// RecordCycle marks one installment paid and advances the next payment
// date; the plan completes on its final cycle.
func (s *Service) RecordCycle(ctx context.Context, id uuid.UUID, actor auth.Actor) (*Plan, error) {
	if !auth.CanPerform(actor, auth.OpRecordPaymentCycle) {
		return nil, auth.ErrPermissionDenied
	}

	entry := history.Entry{
		EntityType: history.EntityPaymentPlan,
		EntityID:   id,
		Action:     history.ActionCycleRecorded,
		Changes:    map[string]any{"cycle_recorded": true},
		ActorID:    actor.ID,
		ActorName:  actor.Name,
	}

	p, err := s.repo.RecordCycle(ctx, id, entry)
	if err != nil {
		return nil, fmt.Errorf("recording payment cycle: %w", err)
	}

	if p.Status == StatusCompleted {
		if sl, err := s.sales.Get(ctx, p.SaleID); err == nil {
			s.dispatch(ctx, notify.Notification{
				To:       sl.Client.Email,
				Subject:  "Payment plan completed",
				Body:     fmt.Sprintf("Dear %s, congratulations! All %d installments on your payment plan are complete.", sl.Client.Name, p.TotalCycles),
				Category: notify.CategoryPaymentPlan,
				Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
			})
		}
	}

	return p, nil
}

// Cancel stops the plan; billing does not resume.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, remark string, actor auth.Actor) (*Plan, error) {
	if !auth.CanPerform(actor, auth.OpCancelPaymentPlan) {
		return nil, auth.ErrPermissionDenied
	}

	entry := history.Entry{
		EntityType: history.EntityPaymentPlan,
		EntityID:   id,
		Action:     history.ActionCancelled,
		Changes:    map[string]any{"remark": remark},
		ActorID:    actor.ID,
		ActorName:  actor.Name,
	}

	p, err := s.repo.CancelPlan(ctx, id, entry)
	if err != nil {
		return nil, fmt.Errorf("cancelling payment plan: %w", err)
	}

	if sl, err := s.sales.Get(ctx, p.SaleID); err == nil {
		s.dispatch(ctx, notify.Notification{
			To:       sl.Client.Email,
			Subject:  "Payment plan cancelled",
			Body:     fmt.Sprintf("Dear %s, your payment plan has been cancelled. Please contact our sales team for next steps.", sl.Client.Name),
			Category: notify.CategoryPaymentPlan,
			Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
		})
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

func (s *Service) dispatch(ctx context.Context, n notify.Notification) {
	if err := s.dispatcher.Publish(ctx, n); err != nil {
		slog.Error("failed to publish payment plan notification", "to", n.To, "error", err)
	}
}
