package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/paymentplan"
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

const selectPlanColumns = `
	id, sale_id, frequency, amount_per_cycle, total_cycles, cycles_completed,
	total_amount, next_payment_date, custom_date, status, created_at, updated_at
`

func scanPlan(s scanner) (*paymentplan.Plan, error) {
	var (
		p         paymentplan.Plan
		frequency string
		status    string
	)

	if err := s.Scan(
		&p.ID, &p.SaleID, &frequency, &p.AmountPerCycle, &p.TotalCycles, &p.CyclesCompleted,
		&p.TotalAmount, &p.NextPaymentDate, &p.CustomDate, &status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Frequency = paymentplan.Frequency(frequency)
	p.Status = paymentplan.Status(status)

	return &p, nil
}

// CreatePlan inserts the plan and links it back onto the sale in one
// transaction.
func (s *Store) CreatePlan(ctx context.Context, p *paymentplan.Plan, entry history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO payment_plans (id, sale_id, frequency, amount_per_cycle, total_cycles, cycles_completed, total_amount, next_payment_date, custom_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at
	`

	if err := tx.QueryRowContext(ctx, insert,
		p.ID, p.SaleID, p.Frequency, p.AmountPerCycle, p.TotalCycles,
		p.TotalAmount, p.NextPaymentDate, p.CustomDate, p.Status,
	).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("inserting payment plan: %w", err)
	}

	link := `UPDATE sales SET payment_plan_id = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, link, p.ID, p.SaleID); err != nil {
		return fmt.Errorf("linking payment plan to sale: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing payment plan: %w", err)
	}

	return nil
}

func (s *Store) GetPlan(ctx context.Context, id uuid.UUID) (*paymentplan.Plan, error) {
	query := `SELECT ` + selectPlanColumns + ` FROM payment_plans WHERE id = $1`

	p, err := scanPlan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentplan.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment plan: %w", err)
	}

	return p, nil
}

// RecordCycle applies the cycle under a row lock so concurrent cycle
// records cannot run the counter past total_cycles.
func (s *Store) RecordCycle(ctx context.Context, id uuid.UUID, entry history.Entry) (*paymentplan.Plan, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + selectPlanColumns + ` FROM payment_plans WHERE id = $1 FOR UPDATE`

	p, err := scanPlan(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentplan.ErrNotFound
		}

		return nil, fmt.Errorf("locking payment plan: %w", err)
	}

	if err := p.RecordCycle(); err != nil {
		return nil, err
	}

	update := `
		UPDATE payment_plans
		SET cycles_completed = $1, next_payment_date = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`

	if _, err := tx.ExecContext(ctx, update, p.CyclesCompleted, p.NextPaymentDate, p.Status, p.ID); err != nil {
		return nil, fmt.Errorf("updating payment plan: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment cycle: %w", err)
	}

	return p, nil
}

// CancelPlan stops an active plan.
func (s *Store) CancelPlan(ctx context.Context, id uuid.UUID, entry history.Entry) (*paymentplan.Plan, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + selectPlanColumns + ` FROM payment_plans WHERE id = $1 FOR UPDATE`

	p, err := scanPlan(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentplan.ErrNotFound
		}

		return nil, fmt.Errorf("locking payment plan: %w", err)
	}

	if p.Status != paymentplan.StatusActive {
		return nil, paymentplan.ErrPlanNotActive
	}

	p.Status = paymentplan.StatusCancelled

	update := `UPDATE payment_plans SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, update, p.Status, p.ID); err != nil {
		return nil, fmt.Errorf("cancelling payment plan: %w", err)
	}

	if err := history.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing plan cancellation: %w", err)
	}

	return p, nil
}
