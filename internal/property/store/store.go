package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/property"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx. The reservation and
// sale stores pass their transaction in so property writes commit with the
// state change that caused them.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(s scanner) (*property.Property, error) {
	var (
		p       property.Property
		typeStr string
		status  string
	)

	if err := s.Scan(
		&p.ID, &typeStr, &p.Block, &p.UnitNumber, &p.Price, &status,
		&p.HoldReservationID, &p.HoldSaleID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Type = property.Type(typeStr)
	p.Status = property.Status(status)

	return &p, nil
}

const selectPropertyColumns = `
	id, type, block, unit_number, price, status,
	hold_reservation_id, hold_sale_id, created_at, updated_at
`

func (s *Store) GetByID(ctx context.Context, id uuid.UUID, t property.Type) (*property.Property, error) {
	query := `SELECT ` + selectPropertyColumns + `
		FROM properties
		WHERE id = $1 AND type = $2`

	p, err := scanProperty(s.db.QueryRowContext(ctx, query, id, t))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, property.ErrNotFound
		}

		return nil, fmt.Errorf("getting property: %w", err)
	}

	return p, nil
}

func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, t property.Type, status property.Status) error {
	query := `
		UPDATE properties
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND type = $3
	`

	res, err := s.db.ExecContext(ctx, query, status, id, t)
	if err != nil {
		return fmt.Errorf("setting property status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting property status: %w", err)
	}

	if n == 0 {
		return property.ErrNotFound
	}

	return nil
}

// LockForUpdate reads the property row under a row-level lock. Every
// status-bearing write path goes through this so concurrent requests on
// the same unit serialize at the database.
func LockForUpdate(ctx context.Context, q querier, id uuid.UUID, t property.Type) (*property.Property, error) {
	query := `SELECT ` + selectPropertyColumns + `
		FROM properties
		WHERE id = $1 AND type = $2
		FOR UPDATE`

	p, err := scanProperty(q.QueryRowContext(ctx, query, id, t))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, property.ErrNotFound
		}

		return nil, fmt.Errorf("locking property: %w", err)
	}

	return p, nil
}

// UpdateHold rewrites the unit's status and hold references. Callers must
// hold the row lock taken by LockForUpdate in the same transaction.
func UpdateHold(ctx context.Context, q querier, id uuid.UUID, t property.Type, status property.Status, reservationID, saleID *uuid.UUID) error {
	query := `
		UPDATE properties
		SET status = $1, hold_reservation_id = $2, hold_sale_id = $3, updated_at = NOW()
		WHERE id = $4 AND type = $5
	`

	if _, err := q.ExecContext(ctx, query, status, reservationID, saleID, id, t); err != nil {
		return fmt.Errorf("updating property hold: %w", err)
	}

	return nil
}
