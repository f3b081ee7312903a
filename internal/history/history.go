// Package history is the append-only audit log shared by every engine
// entity. Entries are written inside the same database transaction as the
// state change they describe and are never rewritten, only extended.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies which engine entity an entry belongs to.
type EntityType string

const (
	EntityReservation EntityType = "reservation"
	EntitySale        EntityType = "sale"
	EntityOffer       EntityType = "offer"
	EntityAllocation  EntityType = "allocation"
	EntityPaymentPlan EntityType = "payment_plan"
)

// Action names the state change an entry records.
type Action string

const (
	ActionCreated       Action = "created"
	ActionStatusChanged Action = "status_changed"
	ActionApproved      Action = "approved"
	ActionDeclined      Action = "declined"
	ActionCancelled     Action = "cancelled"
	ActionPayment       Action = "payment_recorded"
	ActionIssued        Action = "issued"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionCycleRecorded Action = "cycle_recorded"
)

// Entry is one audit record: the fields that changed, who changed them,
// and when.
type Entry struct {
	ID         uuid.UUID
	EntityType EntityType
	EntityID   uuid.UUID
	Seq        int
	Action     Action
	Changes    map[string]any
	ActorID    uuid.UUID
	ActorName  string
	ActedAt    time.Time
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Append writes one entry with the next sequence number for the entity.
// Callers pass the transaction that carries the state change itself.
func Append(ctx context.Context, db DBTX, e Entry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("marshaling history changes: %w", err)
	}

	query := `
		INSERT INTO update_history (entity_type, entity_id, seq, action, changes, actor_id, actor_name, acted_at)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5, $6, NOW()
		FROM update_history
		WHERE entity_type = $1 AND entity_id = $2
	`

	if _, err := db.ExecContext(ctx, query,
		e.EntityType, e.EntityID, e.Action, changes, e.ActorID, e.ActorName,
	); err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}

	return nil
}

// ListForEntity returns the full audit trail for one entity, oldest first.
func ListForEntity(ctx context.Context, db DBTX, entityType EntityType, entityID uuid.UUID) ([]Entry, error) {
	query := `
		SELECT id, entity_type, entity_id, seq, action, changes, actor_id, actor_name, acted_at
		FROM update_history
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY seq ASC
	`

	rows, err := db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			e       Entry
			changes []byte
		)

		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Seq, &e.Action, &changes,
			&e.ActorID, &e.ActorName, &e.ActedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}

		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, fmt.Errorf("unmarshaling history changes: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return entries, nil
}
