package letter_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/letter"
	"github.com/kelechio/estatecore/internal/notify"
	"github.com/kelechio/estatecore/internal/sale"
)

type captureDispatcher struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (c *captureDispatcher) Publish(_ context.Context, n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

func staffActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Name: "Staff", Role: auth.RoleStaff}
}

func managerActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Name: "Manager", Role: auth.RoleManager}
}

func TestService_Issue(t *testing.T) {
	saleID := uuid.New()

	approvedSale := &sale.Sale{
		ID:     saleID,
		Status: sale.StatusApproved,
		Client: sale.Client{Name: "Ada Obi", Email: "ada@example.com"},
	}

	t.Run("CreatesAndNotifies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := letter.NewMockRepository(ctrl)
		repo.EXPECT().
			IssueLetter(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, l *letter.Letter, _ any) (*letter.Letter, bool, error) {
				assert.Equal(t, letter.KindOffer, l.Kind)
				assert.Equal(t, letter.StatusOffered, l.Status)
				assert.True(t, strings.HasPrefix(l.Number, "OF"))
				return l, true, nil
			})

		sales := letter.NewMockSales(ctrl)
		sales.EXPECT().Get(gomock.Any(), saleID).Return(approvedSale, nil)

		dispatcher := &captureDispatcher{}
		svc := letter.NewService(repo, sales, dispatcher)

		got, err := svc.Issue(context.Background(), letter.KindOffer, saleID, "https://files.example.com/offer.pdf", staffActor())
		require.NoError(t, err)
		assert.Equal(t, saleID, got.SaleID)

		require.Len(t, dispatcher.sent, 1)
		assert.Equal(t, "Offer letter issued", dispatcher.sent[0].Subject)
	})

	t.Run("ReissueUpdatesWithoutNotifying", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		existing := &letter.Letter{
			ID:      uuid.New(),
			Kind:    letter.KindOffer,
			SaleID:  saleID,
			Number:  "OF482913",
			FileURL: "https://files.example.com/offer-v2.pdf",
			Status:  letter.StatusOffered,
		}

		repo := letter.NewMockRepository(ctrl)
		repo.EXPECT().
			IssueLetter(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(existing, false, nil)

		dispatcher := &captureDispatcher{}
		svc := letter.NewService(repo, letter.NewMockSales(ctrl), dispatcher)

		got, err := svc.Issue(context.Background(), letter.KindOffer, saleID, "https://files.example.com/offer-v2.pdf", staffActor())
		require.NoError(t, err)
		assert.Equal(t, existing.ID, got.ID)
		assert.Empty(t, dispatcher.sent)
	})

	t.Run("ReissueReactivatesCanceledLetter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		existingID := uuid.New()

		repo := letter.NewMockRepository(ctrl)
		repo.EXPECT().
			IssueLetter(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, l *letter.Letter, _ any) (*letter.Letter, bool, error) {
				// The canceled letter takes on the incoming active status.
				assert.Equal(t, letter.StatusOffered, l.Status)
				return &letter.Letter{
					ID:      existingID,
					Kind:    letter.KindOffer,
					SaleID:  saleID,
					Number:  "OF482913",
					FileURL: l.FileURL,
					Status:  l.Status,
				}, false, nil
			})

		dispatcher := &captureDispatcher{}
		svc := letter.NewService(repo, letter.NewMockSales(ctrl), dispatcher)

		got, err := svc.Issue(context.Background(), letter.KindOffer, saleID, "https://files.example.com/offer-v3.pdf", staffActor())
		require.NoError(t, err)
		assert.Equal(t, existingID, got.ID)
		assert.Equal(t, letter.StatusOffered, got.Status)
		assert.Empty(t, dispatcher.sent)
	})

	t.Run("PendingSaleRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := letter.NewMockRepository(ctrl)
		repo.EXPECT().
			IssueLetter(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, false, letter.ErrSalePending)

		svc := letter.NewService(repo, letter.NewMockSales(ctrl), notify.Nop{})

		_, err := svc.Issue(context.Background(), letter.KindOffer, saleID, "", staffActor())
		assert.ErrorIs(t, err, letter.ErrSalePending)
	})

	t.Run("AllocationNumberPrefix", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := letter.NewMockRepository(ctrl)
		repo.EXPECT().
			IssueLetter(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, l *letter.Letter, _ any) (*letter.Letter, bool, error) {
				assert.Equal(t, letter.StatusAllocated, l.Status)
				assert.True(t, strings.HasPrefix(l.Number, "AL"))
				return l, true, nil
			})

		sales := letter.NewMockSales(ctrl)
		sales.EXPECT().Get(gomock.Any(), saleID).Return(approvedSale, nil)

		svc := letter.NewService(repo, sales, notify.Nop{})

		_, err := svc.Issue(context.Background(), letter.KindAllocation, saleID, "", staffActor())
		require.NoError(t, err)
	})

	t.Run("ClientDenied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := letter.NewService(letter.NewMockRepository(ctrl), letter.NewMockSales(ctrl), notify.Nop{})

		client := auth.Actor{ID: uuid.New(), Role: auth.RoleClient}
		_, err := svc.Issue(context.Background(), letter.KindOffer, saleID, "", client)
		assert.ErrorIs(t, err, auth.ErrPermissionDenied)
	})
}

func TestService_ChangeStatus(t *testing.T) {
	type testCase struct {
		name       string
		kind       letter.Kind
		target     string
		wantStatus letter.Status
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "ApproveOffer",
			kind:       letter.KindOffer,
			target:     "approved",
			wantStatus: letter.StatusOffered,
		},
		{
			name:       "ApproveAllocation",
			kind:       letter.KindAllocation,
			target:     "approved",
			wantStatus: letter.StatusAllocated,
		},
		{
			name:       "Cancel",
			kind:       letter.KindOffer,
			target:     "canceled",
			wantStatus: letter.StatusCanceled,
		},
		{
			name:    "UnknownTarget",
			kind:    letter.KindOffer,
			target:  "archived",
			wantErr: letter.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			id := uuid.New()
			repo := letter.NewMockRepository(ctrl)

			if tt.wantErr == nil {
				repo.EXPECT().
					UpdateStatus(gomock.Any(), tt.kind, id, tt.wantStatus, gomock.Any()).
					Return(&letter.Letter{ID: id, Kind: tt.kind, Status: tt.wantStatus}, nil)
			}

			svc := letter.NewService(repo, letter.NewMockSales(ctrl), notify.Nop{})

			got, err := svc.ChangeStatus(context.Background(), tt.kind, id, tt.target, managerActor())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestService_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		id := uuid.New()
		repo := letter.NewMockRepository(ctrl)
		repo.EXPECT().DeleteLetter(gomock.Any(), letter.KindOffer, id, gomock.Any()).Return(nil)

		svc := letter.NewService(repo, letter.NewMockSales(ctrl), notify.Nop{})

		require.NoError(t, svc.Delete(context.Background(), letter.KindOffer, id, managerActor()))
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		id := uuid.New()
		repo := letter.NewMockRepository(ctrl)
		repo.EXPECT().DeleteLetter(gomock.Any(), letter.KindOffer, id, gomock.Any()).Return(letter.ErrNotFound)

		svc := letter.NewService(repo, letter.NewMockSales(ctrl), notify.Nop{})

		err := svc.Delete(context.Background(), letter.KindOffer, id, managerActor())
		assert.ErrorIs(t, err, letter.ErrNotFound)
	})

	t.Run("StaffDenied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := letter.NewService(letter.NewMockRepository(ctrl), letter.NewMockSales(ctrl), notify.Nop{})

		err := svc.Delete(context.Background(), letter.KindOffer, uuid.New(), staffActor())
		assert.ErrorIs(t, err, auth.ErrPermissionDenied)
	})
}
