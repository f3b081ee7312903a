package auth

import "errors"

// ErrPermissionDenied is returned when an actor's role is not on the
// allow-list for the attempted operation.
var ErrPermissionDenied = errors.New("permission denied")

// Operation names a mutating engine operation for permission checks.
type Operation string

const (
	OpReserveProperty    Operation = "reservation.reserve"
	OpReviewReservation  Operation = "reservation.review"
	OpCancelReservation  Operation = "reservation.cancel"
	OpCreateSale         Operation = "sale.create"
	OpApproveSale        Operation = "sale.approve"
	OpRecordSalePayment  Operation = "sale.record_payment"
	OpIssueLetter        Operation = "letter.issue"
	OpReviewLetter       Operation = "letter.review"
	OpDeleteLetter       Operation = "letter.delete"
	OpCreatePaymentPlan  Operation = "payment_plan.create"
	OpRecordPaymentCycle Operation = "payment_plan.record_cycle"
	OpCancelPaymentPlan  Operation = "payment_plan.cancel"
)

var staffRoles = []Role{RoleStaff, RoleManager, RoleAdmin, RoleSuperAdmin}

var managementRoles = []Role{RoleManager, RoleAdmin, RoleSuperAdmin}

// policy maps each operation to the roles allowed to perform it.
// Allow-lists are data here so they are not duplicated across services.
var policy = map[Operation][]Role{
	OpReserveProperty:    {RoleClient, RoleStaff, RoleManager, RoleAdmin, RoleSuperAdmin},
	OpReviewReservation:  staffRoles,
	OpCancelReservation:  staffRoles,
	OpCreateSale:         {RoleClient, RoleStaff, RoleManager, RoleAdmin, RoleSuperAdmin},
	OpApproveSale:        managementRoles,
	OpRecordSalePayment:  staffRoles,
	OpIssueLetter:        staffRoles,
	OpReviewLetter:       managementRoles,
	OpDeleteLetter:       managementRoles,
	OpCreatePaymentPlan:  staffRoles,
	OpRecordPaymentCycle: staffRoles,
	OpCancelPaymentPlan:  managementRoles,
}

// CanPerform reports whether the actor's role is on the operation's allow-list.
func CanPerform(actor Actor, op Operation) bool {
	allowed, ok := policy[op]
	if !ok {
		return false
	}

	for _, role := range allowed {
		if actor.Role == role {
			return true
		}
	}

	return false
}
