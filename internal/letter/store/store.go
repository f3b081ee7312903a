package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/letter"
	"github.com/kelechio/estatecore/internal/property"
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

const selectLetterColumns = `
	id, kind, sale_id, house_id, plot_id, number, file_url, status, created_at, updated_at
`

func scanLetter(s scanner) (*letter.Letter, error) {
	var (
		l      letter.Letter
		kind   string
		status string
	)

	if err := s.Scan(
		&l.ID, &kind, &l.SaleID, &l.HouseID, &l.PlotID,
		&l.Number, &l.FileURL, &status, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	l.Kind = letter.Kind(kind)
	l.Status = letter.Status(status)

	return &l, nil
}

// mirrorColumns names the sale columns that mirror this letter kind.
func mirrorColumns(kind letter.Kind) (idCol, statusCol string) {
	if kind == letter.KindAllocation {
		return "allocation_id", "allocation_status"
	}

	return "offer_id", "offer_status"
}

// IssueLetter is the upsert behind letter issuance. The parent sale row
// is locked first, so concurrent issuance on the same sale serializes and
// at most one letter per (kind, sale) ever exists; the unique index on
// (kind, sale_id) is the storage-level backstop. Re-issuing over an
// existing letter refreshes the file and reactivates it if canceled.
func (s *Store) IssueLetter(ctx context.Context, l *letter.Letter, entry history.Entry) (*letter.Letter, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		saleStatus string
		propID     uuid.UUID
		propType   string
	)

	saleQuery := `SELECT status, property_id, property_type FROM sales WHERE id = $1 FOR UPDATE`

	if err := tx.QueryRowContext(ctx, saleQuery, l.SaleID).Scan(&saleStatus, &propID, &propType); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, letter.ErrNotFound
		}

		return nil, false, fmt.Errorf("locking sale: %w", err)
	}

	if saleStatus == "pending" {
		return nil, false, letter.ErrSalePending
	}

	existing, err := scanLetter(tx.QueryRowContext(ctx,
		`SELECT `+selectLetterColumns+` FROM letters WHERE kind = $1 AND sale_id = $2 FOR UPDATE`,
		l.Kind, l.SaleID,
	))

	switch {
	case err == sql.ErrNoRows:
		// first issuance below
	case err != nil:
		return nil, false, fmt.Errorf("looking up existing letter: %w", err)
	default:
		// Re-issuing refreshes the file and puts the letter back in force,
		// so a canceled letter returns to the kind's active status along
		// with the sale's mirror.
		update := `UPDATE letters SET file_url = $1, status = $2, updated_at = NOW() WHERE id = $3`
		if _, err := tx.ExecContext(ctx, update, l.FileURL, l.Status, existing.ID); err != nil {
			return nil, false, fmt.Errorf("updating letter file: %w", err)
		}

		existing.FileURL = l.FileURL
		existing.Status = l.Status

		_, statusCol := mirrorColumns(l.Kind)

		mirror := fmt.Sprintf(`UPDATE sales SET %s = $1, updated_at = NOW() WHERE id = $2`, statusCol)
		if _, err := tx.ExecContext(ctx, mirror, string(l.Status), l.SaleID); err != nil {
			return nil, false, fmt.Errorf("writing sale mirror: %w", err)
		}

		entry.EntityID = existing.ID
		entry.Action = history.ActionUpdated

		if err := history.Append(ctx, tx, entry); err != nil {
			return nil, false, err
		}

		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("committing letter update: %w", err)
		}

		return existing, false, nil
	}

	if property.Type(propType) == property.TypePlot {
		l.PlotID = &propID
	} else {
		l.HouseID = &propID
	}

	insert := `
		INSERT INTO letters (id, kind, sale_id, house_id, plot_id, number, file_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at
	`

	if err := tx.QueryRowContext(ctx, insert,
		l.ID, l.Kind, l.SaleID, l.HouseID, l.PlotID, l.Number, l.FileURL, l.Status,
	).Scan(&l.CreatedAt); err != nil {
		return nil, false, fmt.Errorf("inserting letter: %w", err)
	}

	idCol, statusCol := mirrorColumns(l.Kind)

	mirror := fmt.Sprintf(`UPDATE sales SET %s = $1, %s = $2, updated_at = NOW() WHERE id = $3`, idCol, statusCol)
	if _, err := tx.ExecContext(ctx, mirror, l.ID, string(l.Status), l.SaleID); err != nil {
		return nil, false, fmt.Errorf("writing sale mirror: %w", err)
	}

	entry.EntityID = l.ID

	if err := history.Append(ctx, tx, entry); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing letter issuance: %w", err)
	}

	return l, true, nil
}

func (s *Store) GetLetter(ctx context.Context, kind letter.Kind, id uuid.UUID) (*letter.Letter, error) {
	query := `SELECT ` + selectLetterColumns + ` FROM letters WHERE kind = $1 AND id = $2`

	l, err := scanLetter(s.db.QueryRowContext(ctx, query, kind, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, letter.ErrNotFound
		}

		return nil, fmt.Errorf("getting letter: %w", err)
	}

	return l, nil
}

func (s *Store) GetBySale(ctx context.Context, kind letter.Kind, saleID uuid.UUID) (*letter.Letter, error) {
	query := `SELECT ` + selectLetterColumns + ` FROM letters WHERE kind = $1 AND sale_id = $2`

	l, err := scanLetter(s.db.QueryRowContext(ctx, query, kind, saleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, letter.ErrNotFound
		}

		return nil, fmt.Errorf("getting letter by sale: %w", err)
	}

	return l, nil
}

// UpdateStatus writes the letter status and the sale's mirror field in one
// transaction so the two can never disagree.
func (s *Store) UpdateStatus(ctx context.Context, kind letter.Kind, id uuid.UUID, status letter.Status, entry history.Entry) (*letter.Letter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	update := `
		UPDATE letters
		SET status = $1, updated_at = NOW()
		WHERE kind = $2 AND id = $3
		RETURNING ` + selectLetterColumns

	l, err := scanLetter(tx.QueryRowContext(ctx, update, status, kind, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, letter.ErrNotFound
		}

		return nil, fmt.Errorf("updating letter status: %w", err)
	}

	_, statusCol := mirrorColumns(kind)

	mirror := fmt.Sprintf(`UPDATE sales SET %s = $1, updated_at = NOW() WHERE id = $2`, statusCol)
	if _, err := tx.ExecContext(ctx, mirror, string(status), l.SaleID); err != nil {
		return nil, fmt.Errorf("writing sale mirror: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	return l, nil
}

// DeleteLetter removes the letter and resets the sale mirror back to
// pending so a replacement can be issued.
func (s *Store) DeleteLetter(ctx context.Context, kind letter.Kind, id uuid.UUID, entry history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var saleID uuid.UUID

	del := `DELETE FROM letters WHERE kind = $1 AND id = $2 RETURNING sale_id`

	if err := tx.QueryRowContext(ctx, del, kind, id).Scan(&saleID); err != nil {
		if err == sql.ErrNoRows {
			return letter.ErrNotFound
		}

		return fmt.Errorf("deleting letter: %w", err)
	}

	idCol, statusCol := mirrorColumns(kind)

	mirror := fmt.Sprintf(`UPDATE sales SET %s = NULL, %s = 'pending', updated_at = NOW() WHERE id = $1`, idCol, statusCol)
	if _, err := tx.ExecContext(ctx, mirror, saleID); err != nil {
		return fmt.Errorf("resetting sale mirror: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing letter deletion: %w", err)
	}

	return nil
}
