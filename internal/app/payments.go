package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oneshowhq/oneshow/internal/domain"
)

// CreateOrderHandler opens a gateway order for one of the user's unpaid
// bookings. The charged amount always comes from the booking row, never from
// the client.
func (app *Application) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateOrderRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	booking, err := app.bookingRepo.GetByIdAndUser(r.Context(), input.BookingId, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithMsg(w, r, "Booking not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if booking.Paid {
		app.editConflictResponse(w, r, "Booking is already paid")
		return
	}

	receipt := uuid.NewString()

	order, err := app.paymentProvider.CreateOrder(r.Context(), booking.Amount, app.config.Gateway.Currency, receipt)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	err = app.bookingRepo.SetOrderID(r.Context(), booking.ID, order.OrderID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := CreateOrderResponse{
		Success:  true,
		OrderId:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyId:    order.KeyID,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// VerifyPaymentHandler checks the gateway's payment proof and promotes the
// booking to paid. Verification is idempotent: replaying a valid proof
// answers success without sending another confirmation email.
func (app *Application) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var input VerifyPaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	booking, err := app.bookingRepo.GetByIdAndUser(r.Context(), input.BookingId, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithMsg(w, r, "Booking not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if booking.OrderID == nil || *booking.OrderID != input.OrderId {
		app.badRequestResponse(w, r, fmt.Errorf("order does not belong to this booking"))
		return
	}

	if !app.paymentProvider.VerifySignature(input.OrderId, input.PaymentId, input.Signature) {
		app.badRequestResponse(w, r, domain.ErrInvalidSignature)
		return
	}

	newlyPaid, err := app.bookingRepo.MarkPaid(r.Context(), booking.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithMsg(w, r, "Booking not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if newlyPaid {
		app.sendBookingConfirmation(booking)
	}

	resp := MessageResponse{
		Success: true,
		Message: "Payment verified, booking confirmed",
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) sendBookingConfirmation(booking *domain.Booking) {
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := app.userRepo.GetById(ctx, booking.UserID)
		if err != nil {
			app.logger.Error("failed to load booking owner for confirmation email",
				"bookingId", booking.ID, "error", err)
			return
		}

		show, err := app.showRepo.GetById(ctx, booking.ShowID)
		if err != nil {
			app.logger.Error("failed to load show for confirmation email",
				"bookingId", booking.ID, "error", err)
			return
		}

		movieTitle := ""
		if show.Movie != nil {
			movieTitle = show.Movie.Title
		}

		data := map[string]any{
			"UserName":   user.Name,
			"MovieTitle": movieTitle,
			"ShowTime":   show.StartTime.Format("Mon, 02 Jan 2006 15:04"),
			"Seats":      strings.Join(booking.Seats, ", "),
			"Amount":     booking.Amount,
			"Currency":   app.config.Gateway.Currency,
			"BookingID":  booking.ID,
		}

		err = app.mailer.Send(user.Email, "booking_confirmation.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send confirmation email",
				"bookingId", booking.ID, "error", err)
		}
	})
}
