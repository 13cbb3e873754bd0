package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/oneshowhq/oneshow/internal/domain"
)

// ReserveSeatsHandler claims seats on a show for the authenticated user. The
// claim and the unpaid booking are created in a single transaction, so two
// overlapping reservations can never both succeed.
func (app *Application) ReserveSeatsHandler(w http.ResponseWriter, r *http.Request) {
	var input ReserveSeatsRequest

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

	booking := &domain.Booking{
		UserID: app.contextGetUserId(r),
		ShowID: input.ShowId,
		Seats:  input.Seats,
	}

	err = app.bookingRepo.Create(r.Context(), booking)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithMsg(w, r, "Show not found")
		case errors.Is(err, domain.ErrSeatAlreadyReserved):
			app.editConflictResponse(w, r, "One or more of the selected seats are already taken")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Seats are only held for the unpaid window; schedule the expiry check.
	err = app.scheduleBookingExpiry(booking)
	if err != nil {
		app.logger.Error("failed to schedule booking expiry",
			"bookingId", booking.ID, "error", err)
	}

	resp := ReserveSeatsResponse{
		Success: true,
		Message: "Seats reserved, please complete the payment within 10 minutes",
		Booking: toBookingResponse(booking),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetUserBookingsHandler lists the user's paid bookings, newest first.
func (app *Application) GetUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	bookings, err := app.bookingRepo.GetPaidByUser(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := UserBookingsResponse{
		Success:  true,
		Bookings: toBookingDetailResponses(bookings, time.Now()),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetUnpaidBookingsHandler lists the user's unpaid bookings with their
// remaining payment time. Stale bookings are swept first so the list never
// contains an already-expired hold.
func (app *Application) GetUnpaidBookingsHandler(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)
	now := time.Now()

	_, err := app.bookingRepo.DeleteExpiredByUser(r.Context(), userId, now)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	bookings, err := app.bookingRepo.GetUnpaidByUser(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := UserBookingsResponse{
		Success:  true,
		Bookings: toBookingDetailResponses(bookings, now),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CancelBookingHandler deletes one of the user's unpaid bookings and releases
// its seats. A booking that is missing, paid, or owned by someone else yields
// the same not-found answer.
func (app *Application) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingId, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	err = app.bookingRepo.Cancel(r.Context(), bookingId, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithMsg(w, r, "Booking not found or already paid")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := MessageResponse{
		Success: true,
		Message: "Booking cancelled and seats released",
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		Id:        booking.ID,
		ShowId:    booking.ShowID,
		Seats:     booking.Seats,
		Amount:    booking.Amount,
		IsPaid:    booking.Paid,
		ExpiresAt: booking.ExpiresAt(),
		CreatedAt: booking.CreatedAt,
	}
}

func toBookingDetailResponses(bookings []domain.BookingDetail, now time.Time) []BookingDetailResponse {
	responses := make([]BookingDetailResponse, len(bookings))

	for i, booking := range bookings {
		responses[i] = toBookingDetailResponse(booking, now)
	}

	return responses
}

func toBookingDetailResponse(booking domain.BookingDetail, now time.Time) BookingDetailResponse {
	resp := BookingDetailResponse{
		Id:        booking.ID,
		Seats:     booking.Seats,
		Amount:    booking.Amount,
		IsPaid:    booking.Paid,
		CreatedAt: booking.CreatedAt,
		Show: ShowSummary{
			Id:        booking.ShowID,
			StartTime: booking.ShowStartTime,
			Price:     booking.ShowPrice,
		},
		Movie: MovieSummary{
			Id:         booking.MovieID,
			Title:      booking.MovieTitle,
			PosterPath: booking.MoviePosterPath,
			Runtime:    booking.MovieRuntime,
		},
	}

	if !booking.Paid {
		expiresAt := booking.ExpiresAt()
		secondsRemaining := max(int64(expiresAt.Sub(now).Seconds()), 0)

		resp.ExpiresAt = &expiresAt
		resp.SecondsRemaining = &secondsRemaining
	}

	return resp
}
