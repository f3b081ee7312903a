package letter

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/notify"
	"github.com/kelechio/estatecore/internal/sale"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=letter
type Repository interface {
	// IssueLetter performs the lookup-before-insert upsert: an existing
	// letter for the sale gets its file URL refreshed and is put back in
	// force if canceled, otherwise the letter is inserted and the sale's
	// mirror fields are written, all in one transaction. It reports
	// whether a new letter was created.
	IssueLetter(ctx context.Context, l *Letter, entry history.Entry) (*Letter, bool, error)
	GetLetter(ctx context.Context, kind Kind, id uuid.UUID) (*Letter, error)
	GetBySale(ctx context.Context, kind Kind, saleID uuid.UUID) (*Letter, error)
	UpdateStatus(ctx context.Context, kind Kind, id uuid.UUID, status Status, entry history.Entry) (*Letter, error)
	DeleteLetter(ctx context.Context, kind Kind, id uuid.UUID, entry history.Entry) error
}

// Sales reads the parent sale for notification snapshots.
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

// Issue creates or refreshes the letter for a sale. A second call with a
// new file URL updates the existing record; it never produces a duplicate
// letter per sale. Only the first issuance notifies the client.
func (s *Service) Issue(ctx context.Context, kind Kind, saleID uuid.UUID, fileURL string, actor auth.Actor) (*Letter, error) {
	if !auth.CanPerform(actor, auth.OpIssueLetter) {
		return nil, auth.ErrPermissionDenied
	}

	l := &Letter{
		ID:      uuid.New(),
		Kind:    kind,
		SaleID:  saleID,
		Number:  generateNumber(kind),
		FileURL: fileURL,
		Status:  kind.ActiveStatus(),
	}

	entry := history.Entry{
		EntityType: entityType(kind),
		Action:     history.ActionIssued,
		Changes: map[string]any{
			"sale_id":  saleID.String(),
			"file_url": fileURL,
		},
		ActorID:   actor.ID,
		ActorName: actor.Name,
	}

	issued, created, err := s.repo.IssueLetter(ctx, l, entry)
	if err != nil {
		return nil, fmt.Errorf("issuing %s letter: %w", kind, err)
	}

	if created {
		s.notifyIssued(ctx, kind, issued)
	}

	return issued, nil
}

// ChangeStatus maps the review decision onto both the letter and the
// sale's mirror field; the repository commits both writes together.
func (s *Service) ChangeStatus(ctx context.Context, kind Kind, id uuid.UUID, target string, actor auth.Actor) (*Letter, error) {
	if !auth.CanPerform(actor, auth.OpReviewLetter) {
		return nil, auth.ErrPermissionDenied
	}

	var status Status

	switch target {
	case "approved":
		status = kind.ActiveStatus()
	case "canceled":
		status = StatusCanceled
	default:
		return nil, ErrInvalidStatus
	}

	entry := history.Entry{
		EntityType: entityType(kind),
		EntityID:   id,
		Action:     history.ActionStatusChanged,
		Changes:    map[string]any{"status": string(status)},
		ActorID:    actor.ID,
		ActorName:  actor.Name,
	}

	l, err := s.repo.UpdateStatus(ctx, kind, id, status, entry)
	if err != nil {
		return nil, fmt.Errorf("updating %s letter status: %w", kind, err)
	}

	return l, nil
}

// Delete removes the letter and resets the sale's mirror field back to
// pending so the sale can be re-issued a letter later.
func (s *Service) Delete(ctx context.Context, kind Kind, id uuid.UUID, actor auth.Actor) error {
	if !auth.CanPerform(actor, auth.OpDeleteLetter) {
		return auth.ErrPermissionDenied
	}

	entry := history.Entry{
		EntityType: entityType(kind),
		EntityID:   id,
		Action:     history.ActionDeleted,
		Changes:    map[string]any{"deleted": true},
		ActorID:    actor.ID,
		ActorName:  actor.Name,
	}

	if err := s.repo.DeleteLetter(ctx, kind, id, entry); err != nil {
		return fmt.Errorf("deleting %s letter: %w", kind, err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Letter, error) {
	return s.repo.GetLetter(ctx, kind, id)
}

func (s *Service) GetBySale(ctx context.Context, kind Kind, saleID uuid.UUID) (*Letter, error) {
	return s.repo.GetBySale(ctx, kind, saleID)
}

func (s *Service) notifyIssued(ctx context.Context, kind Kind, l *Letter) {
	sl, err := s.sales.Get(ctx, l.SaleID)
	if err != nil {
		slog.Error("failed to load sale for letter notification", "sale_id", l.SaleID, "error", err)
		return
	}

	subject := "Offer letter issued"
	body := fmt.Sprintf("Dear %s, your offer letter %s has been issued.", sl.Client.Name, l.Number)
	category := notify.CategoryOffer

	if kind == KindAllocation {
		subject = "Allocation letter issued"
		body = fmt.Sprintf("Dear %s, your allocation letter %s has been issued. The property is now formally assigned to you.", sl.Client.Name, l.Number)
		category = notify.CategoryAllocation
	}

	n := notify.Notification{
		To:       sl.Client.Email,
		Subject:  subject,
		Body:     body,
		Category: category,
		Channels: []notify.Channel{notify.ChannelEmail, notify.ChannelInApp},
	}

	if err := s.dispatcher.Publish(ctx, n); err != nil {
		slog.Error("failed to publish letter notification", "to", n.To, "error", err)
	}
}

func entityType(kind Kind) history.EntityType {
	if kind == KindAllocation {
		return history.EntityAllocation
	}

	return history.EntityOffer
}

func generateNumber(kind Kind) string {
	return fmt.Sprintf("%s%06d", kind.NumberPrefix(), rand.IntN(1_000_000))
}
