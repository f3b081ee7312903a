package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/kelechio/estatecore/internal/config"
	"github.com/kelechio/estatecore/internal/database"
	estateHttp "github.com/kelechio/estatecore/internal/http"
	historyHandler "github.com/kelechio/estatecore/internal/http/history"
	letterHandler "github.com/kelechio/estatecore/internal/http/letter"
	planHandler "github.com/kelechio/estatecore/internal/http/paymentplan"
	reservationHandler "github.com/kelechio/estatecore/internal/http/reservation"
	saleHandler "github.com/kelechio/estatecore/internal/http/sale"
	"github.com/kelechio/estatecore/internal/letter"
	letterStore "github.com/kelechio/estatecore/internal/letter/store"
	"github.com/kelechio/estatecore/internal/notify"
	"github.com/kelechio/estatecore/internal/paymentplan"
	planStore "github.com/kelechio/estatecore/internal/paymentplan/store"
	"github.com/kelechio/estatecore/internal/property"
	propertyStore "github.com/kelechio/estatecore/internal/property/store"
	"github.com/kelechio/estatecore/internal/reservation"
	reservationStore "github.com/kelechio/estatecore/internal/reservation/store"
	"github.com/kelechio/estatecore/internal/sale"
	saleStore "github.com/kelechio/estatecore/internal/sale/store"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var dispatcher notify.Dispatcher = notify.Nop{}

	if cfg.AMQP.URL != "" {
		amqpDispatcher, err := notify.NewAMQPDispatcher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			slog.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer amqpDispatcher.Close()

		dispatcher = amqpDispatcher
	} else {
		slog.Warn("AMQP_URL not set, notifications are disabled")
	}

	registry := propertyStore.New(db)

	var (
		reservationService = reservation.NewService(reservationStore.New(db), registry, dispatcher)
		saleService        = sale.NewService(saleStore.New(db), reservationSource{svc: reservationService}, dispatcher)
		letterService      = letter.NewService(letterStore.New(db), saleService, dispatcher)
		planService        = paymentplan.NewService(planStore.New(db), saleService, dispatcher)
	)

	router := estateHttp.New(
		cfg.JWT.Secret,
		reservationHandler.NewHandler(reservationService),
		saleHandler.NewHandler(saleService),
		letterHandler.NewHandler(letterService),
		planHandler.NewHandler(planService),
		historyHandler.NewHandler(db),
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// reservationSource adapts the reservation service to the slice of it the
// sale workflow needs.
type reservationSource struct {
	svc *reservation.Service
}

func (r reservationSource) Validate(ctx context.Context, propertyID uuid.UUID, t property.Type, code string) (*sale.ReservationRef, error) {
	res, err := r.svc.Validate(ctx, propertyID, t, code)
	if err != nil {
		return nil, err
	}

	return &sale.ReservationRef{
		ID:           res.ID,
		PropertyID:   res.PropertyID,
		PropertyType: res.PropertyType,
		Status:       string(res.Status),
	}, nil
}
