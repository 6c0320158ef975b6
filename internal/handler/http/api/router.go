package api_http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"fooddelivery/internal/app/orders"
	"fooddelivery/internal/app/payments"
	"fooddelivery/internal/app/restaurants"
	"fooddelivery/internal/app/tracking"
	"fooddelivery/internal/app/users"
	"fooddelivery/internal/app/wishlist"
	"fooddelivery/internal/domain"
)

type Services struct {
	Users       users.UserService
	Restaurants restaurants.RestaurantService
	Orders      orders.OrderService
	Settlements payments.SettlementService
	Wishlist    wishlist.WishlistService
	Tracking    tracking.TrackingService
	Menu        *domain.Menu
}

// NewRouter builds the public HTTP API with the standard middleware stack.
func NewRouter(s Services, allowedOrigins []string, l *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	RegisterRoutes(r, s, l)
	return r
}

func RegisterRoutes(r chi.Router, s Services, l *zap.Logger) {
	h := NewHandler(s, l.With(zap.String("component", "HTTPHandler")))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Food delivery service is healthy!"))
	})

	r.Get("/menu", h.GetMenuHandler)

	r.Route("/restaurants", func(r chi.Router) {
		r.Get("/", h.ListRestaurantsHandler)
		r.Get("/search", h.SearchRestaurantsHandler)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)

		r.Route("/{email}", func(r chi.Router) {
			r.Get("/cart", h.ViewCartHandler)
			r.Post("/cart", h.AddToCartHandler)
			r.Delete("/cart/{item}", h.RemoveFromCartHandler)
			r.Get("/checkout", h.CheckoutHandler)

			r.Get("/orders", h.ListOrdersHandler)
			r.Post("/orders", h.PlaceOrderHandler)

			r.Get("/wishlist", h.ViewWishlistHandler)
			r.Post("/wishlist", h.AddToWishlistHandler)
			r.Delete("/wishlist", h.ClearWishlistHandler)
			r.Delete("/wishlist/{item}", h.RemoveFromWishlistHandler)
		})
	})

	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Get("/", h.GetOrderHandler)
		r.Get("/split", h.SplitOrderHandler)
		r.Get("/payments", h.ListPaymentsHandler)
		r.Post("/payments", h.SettleOrderHandler)

		r.Get("/tracking", h.GetTrackingHandler)
		r.Post("/tracking", h.StartTrackingHandler)
		r.Post("/tracking/locations", h.RecordLocationHandler)
	})
}
