package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/property"
	propstore "github.com/kelechio/estatecore/internal/property/store"
	"github.com/kelechio/estatecore/internal/reservation"
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

func scanReservation(s scanner) (*reservation.Reservation, error) {
	var (
		res     reservation.Reservation
		typeStr string
		status  string
	)

	if err := s.Scan(
		&res.ID, &res.PropertyID, &typeStr,
		&res.Client.ID, &res.Client.Name, &res.Client.Email, &res.Client.Phone,
		&res.Code, &status, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return nil, err
	}

	res.PropertyType = property.Type(typeStr)
	res.Status = reservation.Status(status)

	return &res, nil
}

const selectReservationColumns = `
	id, property_id, property_type,
	client_id, client_name, client_email, client_phone,
	code, status, created_at, updated_at
`

// CreateHold inserts the reservation and flips the property to reserved as
// one transaction. The property row lock serializes concurrent holds; the
// partial unique index on active reservations is the storage-level
// backstop for the single-holder invariant.
func (s *Store) CreateHold(ctx context.Context, res *reservation.Reservation, entry history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	prop, err := propstore.LockForUpdate(ctx, tx, res.PropertyID, res.PropertyType)
	if err != nil {
		return err
	}

	holder, err := activeHolder(ctx, tx, res.PropertyID, res.PropertyType)
	if err != nil {
		return err
	}

	if holder != nil {
		if sameClient(holder.Client, res.Client) {
			return reservation.ErrDuplicateReservation
		}

		return reservation.ErrPropertyAlreadyReserved
	}

	if prop.Status != property.StatusAvailable {
		return reservation.ErrPropertyNotAvailable
	}

	insert := `
		INSERT INTO reservations (id, property_id, property_type, client_id, client_name, client_email, client_phone, code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at
	`

	if err := tx.QueryRowContext(ctx, insert,
		res.ID, res.PropertyID, res.PropertyType,
		res.Client.ID, res.Client.Name, res.Client.Email, res.Client.Phone,
		res.Code, res.Status,
	).Scan(&res.CreatedAt); err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}

	if err := propstore.UpdateHold(ctx, tx, res.PropertyID, res.PropertyType, property.StatusReserved, &res.ID, nil); err != nil {
		return err
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reservation hold: %w", err)
	}

	return nil
}

func (s *Store) GetReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reservation.ErrNotFound
		}

		return nil, fmt.Errorf("getting reservation: %w", err)
	}

	return res, nil
}

func (s *Store) GetByCode(ctx context.Context, propertyID uuid.UUID, t property.Type, code string) (*reservation.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + `
		FROM reservations
		WHERE property_id = $1 AND property_type = $2 AND code = $3`

	res, err := scanReservation(s.db.QueryRowContext(ctx, query, propertyID, t, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reservation.ErrInvalidCode
		}

		return nil, fmt.Errorf("getting reservation by code: %w", err)
	}

	return res, nil
}

// UpdateStatus reviews a pending reservation into approved or declined.
// Approved and declined are terminal, so the write is guarded on the
// current status. Declining also releases the property back to available
// when this reservation still holds it, keeping the registry in agreement
// with the set of live reservations.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status reservation.Status, entry history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+selectReservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return reservation.ErrNotFound
		}

		return fmt.Errorf("locking reservation: %w", err)
	}

	if current.Status != reservation.StatusPending {
		return reservation.ErrAlreadyReviewed
	}

	query := `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`

	res, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}

	if n == 0 {
		return reservation.ErrAlreadyReviewed
	}

	if status == reservation.StatusDeclined {
		prop, err := propstore.LockForUpdate(ctx, tx, current.PropertyID, current.PropertyType)
		if err != nil {
			return err
		}

		if prop.HoldReservationID != nil && *prop.HoldReservationID == id {
			if err := propstore.UpdateHold(ctx, tx, current.PropertyID, current.PropertyType, property.StatusAvailable, nil, nil); err != nil {
				return err
			}
		}
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing status update: %w", err)
	}

	return nil
}

// CancelHold releases the property back to available, removes the
// reservation row and records the cancellation, all in one transaction.
func (s *Store) CancelHold(ctx context.Context, id uuid.UUID, entry history.Entry) (*reservation.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + selectReservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`

	res, err := scanReservation(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reservation.ErrNotFound
		}

		return nil, fmt.Errorf("locking reservation: %w", err)
	}

	prop, err := propstore.LockForUpdate(ctx, tx, res.PropertyID, res.PropertyType)
	if err != nil {
		return nil, err
	}

	if prop.Status != property.StatusReserved {
		return nil, reservation.ErrPropertyNotReserved
	}

	if err := propstore.UpdateHold(ctx, tx, res.PropertyID, res.PropertyType, property.StatusAvailable, nil, nil); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("deleting reservation: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cancellation: %w", err)
	}

	return res, nil
}

// activeHolder returns the reservation currently holding the property, if
// any. Cancelled reservations are deleted, so any remaining row holds.
func activeHolder(ctx context.Context, tx *sql.Tx, propertyID uuid.UUID, t property.Type) (*reservation.Reservation, error) {
	query := `SELECT ` + selectReservationColumns + `
		FROM reservations
		WHERE property_id = $1 AND property_type = $2 AND status <> 'declined'
		LIMIT 1`

	res, err := scanReservation(tx.QueryRowContext(ctx, query, propertyID, t))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("checking active reservation: %w", err)
	}

	return res, nil
}

func sameClient(a, b reservation.Client) bool {
	if a.ID != nil && b.ID != nil {
		return *a.ID == *b.ID
	}

	return a.Email == b.Email
}
