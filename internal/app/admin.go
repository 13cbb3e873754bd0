package app

import (
	"net/http"
	"time"

	"github.com/oneshowhq/oneshow/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// GetDashboardHandler aggregates the booking, revenue, user and show counters
// shown on the admin dashboard.
func (app *Application) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.bookingRepo.Stats(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	totalUsers, err := app.userRepo.Count(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	upcomingShows, err := app.showRepo.GetUpcoming(r.Context(), time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := DashboardResponse{
		Success: true,
		Dashboard: Dashboard{
			TotalBookings:  stats.TotalBookings,
			PaidBookings:   stats.PaidBookings,
			UnpaidBookings: stats.UnpaidBookings,
			TotalRevenue:   stats.TotalRevenue,
			TotalUsers:     totalUsers,
			ActiveShows:    len(upcomingShows),
		},
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetAllShowsHandler lists upcoming shows with their movie details.
func (app *Application) GetAllShowsHandler(w http.ResponseWriter, r *http.Request) {
	shows, err := app.showRepo.GetUpcoming(r.Context(), time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	showResponses := make([]ShowResponse, len(shows))
	for i, show := range shows {
		showResponses[i] = toShowResponse(show)
	}

	resp := AdminShowsResponse{
		Success: true,
		Shows:   showResponses,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetAllBookingsHandler lists every booking with its owner, paginated.
func (app *Application) GetAllBookingsHandler(w http.ResponseWriter, r *http.Request) {
	pagination := domain.Pagination{
		Page:     app.readIntQuery(r, "page", DefaultPage),
		PageSize: app.readIntQuery(r, "pageSize", DefaultPageSize),
	}

	err := app.validator.Struct(pagination)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	bookings, metadata, err := app.bookingRepo.GetAll(r.Context(), pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	now := time.Now()
	bookingResponses := make([]AdminBookingResponse, len(bookings))

	for i, booking := range bookings {
		bookingResponses[i] = AdminBookingResponse{
			BookingDetailResponse: toBookingDetailResponse(booking.BookingDetail, now),
			User: UserSummary{
				Name:  booking.UserName,
				Email: booking.UserEmail,
			},
		}
	}

	resp := AdminBookingsResponse{
		Success:  true,
		Bookings: bookingResponses,
		Metadata: toMetadataResponse(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toShowResponse(show domain.Show) ShowResponse {
	resp := ShowResponse{
		Id:        show.ID,
		MovieId:   show.MovieID,
		StartTime: show.StartTime,
		Price:     show.Price,
	}

	if show.Movie != nil {
		movie := toMovieResponse(show.Movie)
		resp.Movie = &movie
	}

	return resp
}

func toMetadataResponse(metadata *domain.Metadata) MetadataResponse {
	if metadata == nil {
		return MetadataResponse{}
	}

	return MetadataResponse{
		CurrentPage:  metadata.CurrentPage,
		PageSize:     metadata.PageSize,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		TotalRecords: metadata.TotalRecords,
	}
}
