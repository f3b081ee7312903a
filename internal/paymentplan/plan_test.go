package paymentplan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelechio/estatecore/internal/paymentplan"
)

func TestNextDate(t *testing.T) {
	from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	custom := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		frequency paymentplan.Frequency
		custom    *time.Time
		want      time.Time
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "Monthly",
			frequency: paymentplan.FrequencyMonthly,
			want:      time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Weekly",
			frequency: paymentplan.FrequencyWeekly,
			want:      time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Quarterly",
			frequency: paymentplan.FrequencyQuarterly,
			want:      time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Yearly",
			frequency: paymentplan.FrequencyYearly,
			want:      time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Custom",
			frequency: paymentplan.FrequencyCustom,
			custom:    &custom,
			want:      custom,
		},
		{
			name:      "CustomWithoutDate",
			frequency: paymentplan.FrequencyCustom,
			wantErr:   paymentplan.ErrMissingCustomDate,
		},
		{
			name:      "UnknownFrequency",
			frequency: paymentplan.Frequency("daily"),
			wantErr:   paymentplan.ErrInvalidFrequency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := paymentplan.NextDate(from, tt.frequency, tt.custom)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_RecordCycle(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	newPlan := func() *paymentplan.Plan {
		return &paymentplan.Plan{
			Frequency:       paymentplan.FrequencyMonthly,
			TotalCycles:     6,
			NextPaymentDate: start,
			Status:          paymentplan.StatusActive,
		}
	}

	t.Run("AdvancesDate", func(t *testing.T) {
		p := newPlan()

		require.NoError(t, p.RecordCycle())
		assert.Equal(t, 1, p.CyclesCompleted)
		assert.Equal(t, paymentplan.StatusActive, p.Status)
		assert.Equal(t, start.AddDate(0, 1, 0), p.NextPaymentDate)
	})

	t.Run("CompletesOnFinalCycle", func(t *testing.T) {
		p := newPlan()
		p.CyclesCompleted = 5
		before := p.NextPaymentDate

		require.NoError(t, p.RecordCycle())
		assert.Equal(t, 6, p.CyclesCompleted)
		assert.Equal(t, paymentplan.StatusCompleted, p.Status)
		assert.Equal(t, before, p.NextPaymentDate)
	})

	t.Run("RejectsAfterCompletion", func(t *testing.T) {
		p := newPlan()
		p.CyclesCompleted = 5
		require.NoError(t, p.RecordCycle())

		err := p.RecordCycle()
		assert.ErrorIs(t, err, paymentplan.ErrPlanNotActive)
		assert.Equal(t, 6, p.CyclesCompleted)
	})

	t.Run("RejectsCancelled", func(t *testing.T) {
		p := newPlan()
		p.Status = paymentplan.StatusCancelled

		assert.ErrorIs(t, p.RecordCycle(), paymentplan.ErrPlanNotActive)
	})
}
