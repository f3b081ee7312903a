package history

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kelechio/estatecore/internal/history"
	"github.com/kelechio/estatecore/internal/http/respond"
)

type Handler struct {
	db *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{entity}/{id}", h.list)
}

// entityTypes maps the URL segment onto the audit-log entity it names,
// matching the route prefixes the entities live under.
var entityTypes = map[string]history.EntityType{
	"reservations":  history.EntityReservation,
	"sales":         history.EntitySale,
	"offers":        history.EntityOffer,
	"allocations":   history.EntityAllocation,
	"payment-plans": history.EntityPaymentPlan,
}

type entryResponse struct {
	ID        uuid.UUID      `json:"id"`
	Seq       int            `json:"seq"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes"`
	ActorID   uuid.UUID      `json:"actor_id"`
	ActorName string         `json:"actor_name"`
	ActedAt   time.Time      `json:"acted_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entityTypes[chi.URLParam(r, "entity")]
	if !ok {
		respond.Error(w, http.StatusNotFound, "unknown entity type")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	entries, err := history.ListForEntity(r.Context(), h.db, entityType, id)
	if err != nil {
		respond.Internal(w, err)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			Seq:       e.Seq,
			Action:    string(e.Action),
			Changes:   e.Changes,
			ActorID:   e.ActorID,
			ActorName: e.ActorName,
			ActedAt:   e.ActedAt,
		})
	}

	respond.JSON(w, http.StatusOK, "history listed", out)
}
