package sale_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelechio/estatecore/internal/property"
	"github.com/kelechio/estatecore/internal/sale"
)

func TestComputeTotalPayable(t *testing.T) {
	type testCase struct {
		name     string
		price    int64
		fees     sale.Fees
		discount int64
		want     int64
	}

	tests := []testCase{
		{
			name:  "PriceOnly",
			price: 5_000_000,
			want:  5_000_000,
		},
		{
			name:     "FeesAndDiscount",
			price:    5_000_000,
			fees:     sale.Fees{Facility: 150_000, Water: 50_000},
			discount: 100_000,
			want:     5_100_000,
		},
		{
			name:  "AllFees",
			price: 1_000_000,
			fees: sale.Fees{
				Facility:       10_000,
				Water:          20_000,
				Electricity:    30_000,
				Supervision:    40_000,
				Authority:      50_000,
				Other:          60_000,
				Infrastructure: 70_000,
				Agency:         80_000,
			},
			want: 1_360_000,
		},
		{
			name:     "DiscountCoversPrice",
			price:    500_000,
			discount: 500_000,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sale.ComputeTotalPayable(tt.price, tt.fees, tt.discount))
		})
	}
}

func TestSale_HoldAgrees(t *testing.T) {
	saleID := uuid.New()
	reservationID := uuid.New()
	otherID := uuid.New()

	type testCase struct {
		name          string
		reservationID *uuid.UUID
		prop          property.Property
		want          bool
	}

	tests := []testCase{
		{
			name: "DirectSaleOwnsHold",
			prop: property.Property{Status: property.StatusReserved, HoldSaleID: &saleID},
			want: true,
		},
		{
			name:          "ReservationBackedHoldMatches",
			reservationID: &reservationID,
			prop:          property.Property{Status: property.StatusReserved, HoldReservationID: &reservationID},
			want:          true,
		},
		{
			name: "HoldByAnotherSale",
			prop: property.Property{Status: property.StatusReserved, HoldSaleID: &otherID},
			want: false,
		},
		{
			name:          "HoldByAnotherReservation",
			reservationID: &reservationID,
			prop:          property.Property{Status: property.StatusReserved, HoldReservationID: &otherID},
			want:          false,
		},
		{
			name: "BackingReservationGone",
			prop: property.Property{Status: property.StatusReserved, HoldReservationID: &otherID},
			want: false,
		},
		{
			name: "NoHoldAtAll",
			prop: property.Property{Status: property.StatusAvailable},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sale.Sale{ID: saleID, ReservationID: tt.reservationID}

			assert.Equal(t, tt.want, s.HoldAgrees(&tt.prop))
		})
	}
}

func TestSale_ApplyPayment(t *testing.T) {
	newSale := func() *sale.Sale {
		return &sale.Sale{
			Status:        sale.StatusApproved,
			PaymentStatus: sale.PaymentUnpaid,
			TotalPayable:  1_000_000,
		}
	}

	t.Run("RejectsPendingSale", func(t *testing.T) {
		s := newSale()
		s.Status = sale.StatusPending

		err := s.ApplyPayment(100, sale.TargetProperty)
		assert.ErrorIs(t, err, sale.ErrNotApproved)
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		s := newSale()

		assert.ErrorIs(t, s.ApplyPayment(0, sale.TargetProperty), sale.ErrInvalidAmount)
		assert.ErrorIs(t, s.ApplyPayment(-5, sale.TargetProperty), sale.ErrInvalidAmount)
	})

	t.Run("RejectsUnknownTarget", func(t *testing.T) {
		s := newSale()

		err := s.ApplyPayment(100, sale.PaymentTarget("tips"))
		assert.ErrorIs(t, err, sale.ErrInvalidTarget)
	})

	t.Run("RejectsOvershoot", func(t *testing.T) {
		s := newSale()
		s.PaidAmount = 900_000

		err := s.ApplyPayment(100_001, sale.TargetProperty)
		assert.ErrorIs(t, err, sale.ErrPaymentExceedsPayable)
		assert.Equal(t, int64(900_000), s.PaidAmount)
	})

	t.Run("PropertyPaymentMovesBalance", func(t *testing.T) {
		s := newSale()

		require.NoError(t, s.ApplyPayment(400_000, sale.TargetProperty))
		assert.Equal(t, int64(400_000), s.PaidAmount)
		assert.Equal(t, sale.PaymentPartial, s.PaymentStatus)
	})

	t.Run("FeePaymentFillsBucket", func(t *testing.T) {
		s := newSale()

		require.NoError(t, s.ApplyPayment(50_000, sale.TargetWater))
		assert.Equal(t, int64(50_000), s.FeesPaid.Water)
		assert.Equal(t, int64(50_000), s.PaidAmount)
	})

	t.Run("ExactBalanceSettles", func(t *testing.T) {
		s := newSale()
		s.PaidAmount = 900_000
		s.PaymentStatus = sale.PaymentPartial

		require.NoError(t, s.ApplyPayment(100_000, sale.TargetProperty))
		assert.Equal(t, int64(1_000_000), s.PaidAmount)
		assert.Equal(t, sale.PaymentPaid, s.PaymentStatus)
	})

	t.Run("RegistrationIgnoresBalance", func(t *testing.T) {
		s := newSale()
		s.PaidAmount = 1_000_000

		require.NoError(t, s.ApplyPayment(25_000, sale.TargetRegistration))
		assert.True(t, s.RegistrationFeesPaid)
		assert.Equal(t, int64(1_000_000), s.PaidAmount)
	})
}

func TestSale_RecomputePaymentStatus(t *testing.T) {
	type testCase struct {
		name string
		paid int64
		want sale.PaymentStatus
	}

	tests := []testCase{
		{name: "Unpaid", paid: 0, want: sale.PaymentUnpaid},
		{name: "Partial", paid: 1, want: sale.PaymentPartial},
		{name: "Paid", paid: 1_000_000, want: sale.PaymentPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sale.Sale{TotalPayable: 1_000_000, PaidAmount: tt.paid}
			s.RecomputePaymentStatus()
			assert.Equal(t, tt.want, s.PaymentStatus)
		})
	}
}
