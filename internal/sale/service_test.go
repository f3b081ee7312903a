package sale_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/notify"
	"github.com/kelechio/estatecore/internal/property"
	"github.com/kelechio/estatecore/internal/sale"
)

// captureDispatcher records published notifications for assertions.
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
	return auth.Actor{ID: uuid.New(), Name: "Test Staff", Role: auth.RoleStaff}
}

func managerActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Name: "Test Manager", Role: auth.RoleManager}
}

func TestService_Create(t *testing.T) {
	propertyID := uuid.New()
	reservationID := uuid.New()

	params := func() sale.CreateParams {
		return sale.CreateParams{
			PropertyID:    propertyID,
			PropertyType:  property.TypeHouse,
			Client:        sale.Client{Name: "Ada Obi", Email: "ada@example.com"},
			PropertyPrice: 5_000_000,
			Fees:          sale.Fees{Facility: 150_000, Water: 50_000},
			Discount:      100_000,
		}
	}

	type testCase struct {
		name      string
		params    func() sale.CreateParams
		actor     auth.Actor
		setupMock func(repo *sale.MockRepository, res *sale.MockReservations)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "DirectSale",
			params: params,
			actor:  staffActor(),
			setupMock: func(repo *sale.MockRepository, _ *sale.MockReservations) {
				repo.EXPECT().
					CreateSale(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, sl *sale.Sale, _ any) error {
						assert.Equal(t, sale.StatusPending, sl.Status)
						assert.Equal(t, int64(5_100_000), sl.TotalPayable)
						assert.Nil(t, sl.ReservationID)
						return nil
					})
			},
		},
		{
			name: "WithReservationCode",
			params: func() sale.CreateParams {
				p := params()
				p.ReservationCode = "482913"
				return p
			},
			actor: staffActor(),
			setupMock: func(repo *sale.MockRepository, res *sale.MockReservations) {
				res.EXPECT().
					Validate(gomock.Any(), propertyID, property.TypeHouse, "482913").
					Return(&sale.ReservationRef{
						ID:           reservationID,
						PropertyID:   propertyID,
						PropertyType: property.TypeHouse,
						Status:       "approved",
					}, nil)
				repo.EXPECT().
					CreateSale(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, sl *sale.Sale, _ any) error {
						require.NotNil(t, sl.ReservationID)
						assert.Equal(t, reservationID, *sl.ReservationID)
						return nil
					})
			},
		},
		{
			name: "ReservationNotApproved",
			params: func() sale.CreateParams {
				p := params()
				p.ReservationCode = "482913"
				return p
			},
			actor: staffActor(),
			setupMock: func(_ *sale.MockRepository, res *sale.MockReservations) {
				res.EXPECT().
					Validate(gomock.Any(), propertyID, property.TypeHouse, "482913").
					Return(&sale.ReservationRef{
						ID:           reservationID,
						PropertyID:   propertyID,
						PropertyType: property.TypeHouse,
						Status:       "pending",
					}, nil)
			},
			wantErr: sale.ErrReservationNotApproved,
		},
		{
			name: "ReservationMismatch",
			params: func() sale.CreateParams {
				p := params()
				p.ReservationCode = "482913"
				return p
			},
			actor: staffActor(),
			setupMock: func(_ *sale.MockRepository, res *sale.MockReservations) {
				res.EXPECT().
					Validate(gomock.Any(), propertyID, property.TypeHouse, "482913").
					Return(&sale.ReservationRef{
						ID:           reservationID,
						PropertyID:   uuid.New(),
						PropertyType: property.TypeHouse,
						Status:       "approved",
					}, nil)
			},
			wantErr: sale.ErrReservationMismatch,
		},
		{
			name: "MissingPrice",
			params: func() sale.CreateParams {
				p := params()
				p.PropertyPrice = 0
				return p
			},
			actor:   staffActor(),
			wantErr: sale.ErrMissingPrice,
		},
		{
			name:    "UnknownRoleDenied",
			params:  params,
			actor:   auth.Actor{ID: uuid.New(), Role: auth.Role("intern")},
			wantErr: auth.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := sale.NewMockRepository(ctrl)
			reservations := sale.NewMockReservations(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo, reservations)
			}

			svc := sale.NewService(repo, reservations, notify.Nop{})
			got, err := svc.Create(context.Background(), tt.params(), tt.actor)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, sale.PaymentUnpaid, got.PaymentStatus)
			assert.Equal(t, sale.MirrorPending, got.OfferStatus)
			assert.Equal(t, sale.MirrorPending, got.AllocationStatus)
		})
	}
}

func TestService_Approve(t *testing.T) {
	pending := func() *sale.Sale {
		return &sale.Sale{
			ID:            uuid.New(),
			PropertyPrice: 5_000_000,
			Fees:          sale.Fees{Facility: 150_000},
			TotalPayable:  5_150_000,
			Status:        sale.StatusPending,
			PaymentStatus: sale.PaymentUnpaid,
			Client:        sale.Client{Name: "Ada Obi", Email: "ada@example.com"},
		}
	}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sl := pending()
		repo := sale.NewMockRepository(ctrl)
		repo.EXPECT().GetSale(gomock.Any(), sl.ID).Return(sl, nil)
		repo.EXPECT().ReviewSale(gomock.Any(), sl, gomock.Any()).Return(nil)

		dispatcher := &captureDispatcher{}
		svc := sale.NewService(repo, sale.NewMockReservations(ctrl), dispatcher)

		got, err := svc.Approve(context.Background(), sl.ID, sale.ApprovalParams{}, managerActor())
		require.NoError(t, err)
		assert.Equal(t, sale.StatusApproved, got.Status)
		assert.Equal(t, sale.PaymentUnpaid, got.PaymentStatus)

		require.Len(t, dispatcher.sent, 1)
		assert.Equal(t, "ada@example.com", dispatcher.sent[0].To)
	})

	t.Run("OverridesRecomputeTotal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sl := pending()
		repo := sale.NewMockRepository(ctrl)
		repo.EXPECT().GetSale(gomock.Any(), sl.ID).Return(sl, nil)
		repo.EXPECT().ReviewSale(gomock.Any(), sl, gomock.Any()).Return(nil)

		svc := sale.NewService(repo, sale.NewMockReservations(ctrl), notify.Nop{})

		discount := int64(200_000)
		paid := int64(1_000_000)
		got, err := svc.Approve(context.Background(), sl.ID, sale.ApprovalParams{
			Fees:       &sale.Fees{Facility: 300_000},
			Discount:   &discount,
			PaidAmount: &paid,
		}, managerActor())

		require.NoError(t, err)
		assert.Equal(t, int64(5_100_000), got.TotalPayable)
		assert.Equal(t, int64(1_000_000), got.PaidAmount)
		assert.Equal(t, sale.PaymentPartial, got.PaymentStatus)
	})

	t.Run("PaidOverrideAboveTotal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sl := pending()
		repo := sale.NewMockRepository(ctrl)
		repo.EXPECT().GetSale(gomock.Any(), sl.ID).Return(sl, nil)

		svc := sale.NewService(repo, sale.NewMockReservations(ctrl), notify.Nop{})

		paid := int64(6_000_000)
		_, err := svc.Approve(context.Background(), sl.ID, sale.ApprovalParams{PaidAmount: &paid}, managerActor())
		assert.ErrorIs(t, err, sale.ErrPaymentExceedsPayable)
	})

	t.Run("AlreadyApproved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sl := pending()
		sl.Status = sale.StatusApproved

		repo := sale.NewMockRepository(ctrl)
		repo.EXPECT().GetSale(gomock.Any(), sl.ID).Return(sl, nil)

		svc := sale.NewService(repo, sale.NewMockReservations(ctrl), notify.Nop{})

		_, err := svc.Approve(context.Background(), sl.ID, sale.ApprovalParams{}, managerActor())
		assert.ErrorIs(t, err, sale.ErrNotPending)
	})

	t.Run("StaffDenied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := sale.NewService(sale.NewMockRepository(ctrl), sale.NewMockReservations(ctrl), notify.Nop{})

		_, err := svc.Approve(context.Background(), uuid.New(), sale.ApprovalParams{}, staffActor())
		assert.ErrorIs(t, err, auth.ErrPermissionDenied)
	})
}

func TestService_Decline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sl := &sale.Sale{
		ID:     uuid.New(),
		Status: sale.StatusPending,
		Client: sale.Client{Name: "Ada Obi", Email: "ada@example.com"},
	}

	repo := sale.NewMockRepository(ctrl)
	repo.EXPECT().GetSale(gomock.Any(), sl.ID).Return(sl, nil)
	repo.EXPECT().ReviewSale(gomock.Any(), sl, gomock.Any()).Return(nil)

	svc := sale.NewService(repo, sale.NewMockReservations(ctrl), notify.Nop{})

	got, err := svc.Decline(context.Background(), sl.ID, managerActor())
	require.NoError(t, err)
	assert.Equal(t, sale.StatusDeclined, got.Status)
}

func TestService_RecordPayment(t *testing.T) {
	saleID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := sale.NewMockRepository(ctrl)
		repo.EXPECT().
			RecordPayment(gomock.Any(), saleID, int64(250_000), sale.TargetProperty, gomock.Any()).
			Return(&sale.Sale{
				ID:            saleID,
				Status:        sale.StatusApproved,
				PaidAmount:    250_000,
				PaymentStatus: sale.PaymentPartial,
				Client:        sale.Client{Name: "Ada Obi", Email: "ada@example.com"},
			}, nil)

		svc := sale.NewService(repo, sale.NewMockReservations(ctrl), notify.Nop{})

		got, err := svc.RecordPayment(context.Background(), saleID, sale.PaymentParams{
			Amount: 250_000,
			Target: sale.TargetProperty,
			Method: "transfer",
		}, staffActor())

		require.NoError(t, err)
		assert.Equal(t, sale.PaymentPartial, got.PaymentStatus)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := sale.NewService(sale.NewMockRepository(ctrl), sale.NewMockReservations(ctrl), notify.Nop{})

		_, err := svc.RecordPayment(context.Background(), saleID, sale.PaymentParams{Amount: 0}, staffActor())
		assert.ErrorIs(t, err, sale.ErrInvalidAmount)
	})

	t.Run("RepoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := sale.NewMockRepository(ctrl)
		repo.EXPECT().
			RecordPayment(gomock.Any(), saleID, int64(100), sale.TargetWater, gomock.Any()).
			Return(nil, errors.New("db error"))

		svc := sale.NewService(repo, sale.NewMockReservations(ctrl), notify.Nop{})

		_, err := svc.RecordPayment(context.Background(), saleID, sale.PaymentParams{
			Amount: 100,
			Target: sale.TargetWater,
		}, staffActor())
		assert.Error(t, err)
	})
}
