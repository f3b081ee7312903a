package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelechio/estatecore/internal/auth"
)

func TestCanPerform(t *testing.T) {
	type testCase struct {
		name string
		role auth.Role
		op   auth.Operation
		want bool
	}

	tests := []testCase{
		{
			name: "ClientCanReserve",
			role: auth.RoleClient,
			op:   auth.OpReserveProperty,
			want: true,
		},
		{
			name: "ClientCanCreateSale",
			role: auth.RoleClient,
			op:   auth.OpCreateSale,
			want: true,
		},
		{
			name: "ClientCannotReviewReservation",
			role: auth.RoleClient,
			op:   auth.OpReviewReservation,
			want: false,
		},
		{
			name: "StaffCanRecordPayment",
			role: auth.RoleStaff,
			op:   auth.OpRecordSalePayment,
			want: true,
		},
		{
			name: "StaffCannotApproveSale",
			role: auth.RoleStaff,
			op:   auth.OpApproveSale,
			want: false,
		},
		{
			name: "ManagerCanApproveSale",
			role: auth.RoleManager,
			op:   auth.OpApproveSale,
			want: true,
		},
		{
			name: "StaffCanIssueLetter",
			role: auth.RoleStaff,
			op:   auth.OpIssueLetter,
			want: true,
		},
		{
			name: "StaffCannotDeleteLetter",
			role: auth.RoleStaff,
			op:   auth.OpDeleteLetter,
			want: false,
		},
		{
			name: "SuperAdminCanCancelPlan",
			role: auth.RoleSuperAdmin,
			op:   auth.OpCancelPaymentPlan,
			want: true,
		},
		{
			name: "UnknownOperationDenied",
			role: auth.RoleSuperAdmin,
			op:   auth.Operation("nonexistent.op"),
			want: false,
		},
		{
			name: "UnknownRoleDenied",
			role: auth.Role("intern"),
			op:   auth.OpReserveProperty,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := auth.Actor{ID: uuid.New(), Role: tt.role}
			assert.Equal(t, tt.want, auth.CanPerform(actor, tt.op))
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	actor := auth.Actor{
		ID:    uuid.New(),
		Name:  "Ada Obi",
		Email: "ada@example.com",
		Role:  auth.RoleManager,
	}

	token, err := auth.GenerateToken("test-secret", actor, time.Hour)
	require.NoError(t, err)

	got, err := auth.ValidateToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", auth.Actor{ID: uuid.New(), Role: auth.RoleStaff}, time.Hour)
	require.NoError(t, err)

	_, err = auth.ValidateToken("other-secret", token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", auth.Actor{ID: uuid.New(), Role: auth.RoleStaff}, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateToken("test-secret", token)
	assert.Error(t, err)
}
