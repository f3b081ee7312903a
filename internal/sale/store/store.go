package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/property"
	propstore "github.com/kelechio/estatecore/internal/property/store"
	"github.com/kelechio/estatecore/internal/sale"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectSaleColumns = `
	id, property_id, property_type,
	client_id, client_name, client_email, client_phone, client_company,
	property_price,
	fee_facility, fee_water, fee_electricity, fee_supervision,
	fee_authority, fee_other, fee_infrastructure, fee_agency,
	paid_facility, paid_water, paid_electricity, paid_supervision,
	paid_authority, paid_other, paid_infrastructure, paid_agency,
	discount, paid_amount, total_payable,
	registration_fees, registration_fees_paid,
	status, payment_status, offer_status, allocation_status,
	reservation_id, offer_id, allocation_id, payment_plan_id,
	created_at, updated_at
`

func scanSale(s scanner) (*sale.Sale, error) {
	var (
		sl               sale.Sale
		typeStr          string
		status           string
		paymentStatus    string
		offerStatus      string
		allocationStatus string
	)

	if err := s.Scan(
		&sl.ID, &sl.PropertyID, &typeStr,
		&sl.Client.ID, &sl.Client.Name, &sl.Client.Email, &sl.Client.Phone, &sl.Client.Company,
		&sl.PropertyPrice,
		&sl.Fees.Facility, &sl.Fees.Water, &sl.Fees.Electricity, &sl.Fees.Supervision,
		&sl.Fees.Authority, &sl.Fees.Other, &sl.Fees.Infrastructure, &sl.Fees.Agency,
		&sl.FeesPaid.Facility, &sl.FeesPaid.Water, &sl.FeesPaid.Electricity, &sl.FeesPaid.Supervision,
		&sl.FeesPaid.Authority, &sl.FeesPaid.Other, &sl.FeesPaid.Infrastructure, &sl.FeesPaid.Agency,
		&sl.Discount, &sl.PaidAmount, &sl.TotalPayable,
		&sl.RegistrationFees, &sl.RegistrationFeesPaid,
		&status, &paymentStatus, &offerStatus, &allocationStatus,
		&sl.ReservationID, &sl.OfferID, &sl.AllocationID, &sl.PaymentPlanID,
		&sl.CreatedAt, &sl.UpdatedAt,
	); err != nil {
		return nil, err
	}

	sl.PropertyType = property.Type(typeStr)
	sl.Status = sale.Status(status)
	sl.PaymentStatus = sale.PaymentStatus(paymentStatus)
	sl.OfferStatus = sale.MirrorStatus(offerStatus)
	sl.AllocationStatus = sale.MirrorStatus(allocationStatus)

	return &sl, nil
}

// CreateSale inserts the sale. A direct sale (no reservation) also flips
// the property from available to a sale-held reserved state in the same
// transaction; a reservation-backed sale leaves the registry alone because
// the hold was placed at reservation time.
func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale, entry history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if sl.ReservationID == nil {
		prop, err := propstore.LockForUpdate(ctx, tx, sl.PropertyID, sl.PropertyType)
		if err != nil {
			return err
		}

		if prop.Status != property.StatusAvailable {
			return sale.ErrPropertyNotAvailable
		}

		if err := propstore.UpdateHold(ctx, tx, sl.PropertyID, sl.PropertyType, property.StatusReserved, nil, &sl.ID); err != nil {
			return err
		}
	}

	insert := `
		INSERT INTO sales (
			id, property_id, property_type,
			client_id, client_name, client_email, client_phone, client_company,
			property_price,
			fee_facility, fee_water, fee_electricity, fee_supervision,
			fee_authority, fee_other, fee_infrastructure, fee_agency,
			discount, paid_amount, total_payable,
			registration_fees, registration_fees_paid,
			status, payment_status, offer_status, allocation_status,
			reservation_id, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
			NOW(), NOW()
		)
		RETURNING created_at
	`

	if err := tx.QueryRowContext(ctx, insert,
		sl.ID, sl.PropertyID, sl.PropertyType,
		sl.Client.ID, sl.Client.Name, sl.Client.Email, sl.Client.Phone, sl.Client.Company,
		sl.PropertyPrice,
		sl.Fees.Facility, sl.Fees.Water, sl.Fees.Electricity, sl.Fees.Supervision,
		sl.Fees.Authority, sl.Fees.Other, sl.Fees.Infrastructure, sl.Fees.Agency,
		sl.Discount, sl.PaidAmount, sl.TotalPayable,
		sl.RegistrationFees, sl.RegistrationFeesPaid,
		sl.Status, sl.PaymentStatus, sl.OfferStatus, sl.AllocationStatus,
		sl.ReservationID,
	).Scan(&sl.CreatedAt); err != nil {
		return fmt.Errorf("inserting sale: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sale: %w", err)
	}

	return nil
}

func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE id = $1`

	sl, err := scanSale(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	return sl, nil
}

func (s *Store) ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.PaymentStatus != nil {
		query += fmt.Sprintf(" AND payment_status = $%d", argIdx)

		args = append(args, *filter.PaymentStatus)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []*sale.Sale

	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return sales, nil
}

// ReviewSale commits an approval or decline: the sale row, the registry
// flip and the audit entry move together. Approval requires the locked
// property's hold to still belong to this sale before it is marked sold;
// declining a direct sale releases the hold the sale placed.
func (s *Store) ReviewSale(ctx context.Context, sl *sale.Sale, entry history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	prop, err := propstore.LockForUpdate(ctx, tx, sl.PropertyID, sl.PropertyType)
	if err != nil {
		return err
	}

	update := `
		UPDATE sales
		SET fee_facility = $1, fee_water = $2, fee_electricity = $3, fee_supervision = $4,
			fee_authority = $5, fee_other = $6, fee_infrastructure = $7, fee_agency = $8,
			discount = $9, paid_amount = $10, total_payable = $11,
			registration_fees = $12, status = $13, payment_status = $14, updated_at = NOW()
		WHERE id = $15 AND status = 'pending'
	`

	res, err := tx.ExecContext(ctx, update,
		sl.Fees.Facility, sl.Fees.Water, sl.Fees.Electricity, sl.Fees.Supervision,
		sl.Fees.Authority, sl.Fees.Other, sl.Fees.Infrastructure, sl.Fees.Agency,
		sl.Discount, sl.PaidAmount, sl.TotalPayable,
		sl.RegistrationFees, sl.Status, sl.PaymentStatus, sl.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sale: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating sale: %w", err)
	}

	if n == 0 {
		return sale.ErrNotPending
	}

	switch sl.Status {
	case sale.StatusApproved:
		if !sl.HoldAgrees(prop) {
			return sale.ErrHoldMismatch
		}

		if err := propstore.UpdateHold(ctx, tx, sl.PropertyID, sl.PropertyType, property.StatusSold, nil, &sl.ID); err != nil {
			return err
		}
	case sale.StatusDeclined:
		if prop.HoldSaleID != nil && *prop.HoldSaleID == sl.ID {
			if err := propstore.UpdateHold(ctx, tx, sl.PropertyID, sl.PropertyType, property.StatusAvailable, nil, nil); err != nil {
				return err
			}
		}
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sale review: %w", err)
	}

	return nil
}

// RecordPayment applies a payment under the sale row lock so concurrent
// payments cannot overshoot the payable total.
func (s *Store) RecordPayment(ctx context.Context, id uuid.UUID, amount int64, target sale.PaymentTarget, entry history.Entry) (*sale.Sale, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`

	sl, err := scanSale(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("locking sale: %w", err)
	}

	if err := sl.ApplyPayment(amount, target); err != nil {
		return nil, err
	}

	update := `
		UPDATE sales
		SET paid_facility = $1, paid_water = $2, paid_electricity = $3, paid_supervision = $4,
			paid_authority = $5, paid_other = $6, paid_infrastructure = $7, paid_agency = $8,
			paid_amount = $9, payment_status = $10, registration_fees_paid = $11, updated_at = NOW()
		WHERE id = $12
	`

	if _, err := tx.ExecContext(ctx, update,
		sl.FeesPaid.Facility, sl.FeesPaid.Water, sl.FeesPaid.Electricity, sl.FeesPaid.Supervision,
		sl.FeesPaid.Authority, sl.FeesPaid.Other, sl.FeesPaid.Infrastructure, sl.FeesPaid.Agency,
		sl.PaidAmount, sl.PaymentStatus, sl.RegistrationFeesPaid, sl.ID,
	); err != nil {
		return nil, fmt.Errorf("applying payment: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment: %w", err)
	}

	return sl, nil
}
