package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kelechio/estatecore/internal/auth"
	"github.com/kelechio/estatecore/internal/http/respond"
	historyHandler "github.com/kelechio/estatecore/internal/http/history"
	letterHandler "github.com/kelechio/estatecore/internal/http/letter"
	planHandler "github.com/kelechio/estatecore/internal/http/paymentplan"
	reservationHandler "github.com/kelechio/estatecore/internal/http/reservation"
	saleHandler "github.com/kelechio/estatecore/internal/http/sale"
	"github.com/kelechio/estatecore/internal/letter"
)

func New(
	jwtSecret string,
	reservationsV1 *reservationHandler.Handler,
	salesV1 *saleHandler.Handler,
	lettersV1 *letterHandler.Handler,
	plansV1 *planHandler.Handler,
	historyV1 *historyHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(Authenticator(jwtSecret))

		r.Route("/reservations", reservationsV1.Routes)
		r.Route("/sales", salesV1.Routes)
		r.Route("/offers", lettersV1.Routes(letter.KindOffer))
		r.Route("/allocations", lettersV1.Routes(letter.KindAllocation))
		r.Route("/payment-plans", plansV1.Routes)
		r.Route("/history", historyV1.Routes)
	})

	return router
}

// Authenticator validates the bearer token and stores the resulting actor
// on the request context. Every engine route sits behind it.
func Authenticator(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Error(w, http.StatusUnauthorized, "authorization header is required")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				respond.Error(w, http.StatusUnauthorized, "authorization header must start with Bearer")
				return
			}

			actor, err := auth.ValidateToken(secret, token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithActor(r.Context(), actor)))
		})
	}
}
