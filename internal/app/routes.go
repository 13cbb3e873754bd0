package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(app.authenticate)

	r.Get("/health", app.GetHealth)

	r.Route("/show", func(r chi.Router) {
		r.Get("/all", app.GetNowShowingHandler)
		r.Get("/{id}", app.GetShowsByMovieHandler)
		r.Get("/{id}/seats", app.GetOccupiedSeatsHandler)
		r.Get("/{id}/availability", app.CheckSeatAvailabilityHandler)

		r.With(app.requireAdmin).Post("/add", app.AddShowsHandler)
	})

	r.With(app.requireAuthentication).Route("/booking", func(r chi.Router) {
		r.Post("/reserve", app.ReserveSeatsHandler)
	})

	r.With(app.requireAuthentication).Route("/user", func(r chi.Router) {
		r.Get("/bookings", app.GetUserBookingsHandler)
		r.Get("/unpaid-bookings", app.GetUnpaidBookingsHandler)
		r.Delete("/cancel-booking/{id}", app.CancelBookingHandler)
	})

	r.With(app.requireAuthentication).Route("/payment", func(r chi.Router) {
		r.Post("/create-order", app.CreateOrderHandler)
		r.Post("/verify", app.VerifyPaymentHandler)
	})

	r.With(app.requireAdmin).Route("/admin", func(r chi.Router) {
		r.Get("/dashboard", app.GetDashboardHandler)
		r.Get("/all-shows", app.GetAllShowsHandler)
		r.Get("/all-bookings", app.GetAllBookingsHandler)
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/identity", app.IdentityWebhookHandler)
	})

	return r
}
